// Package alert delivers scrape reports through the Telegram Bot API.
package alert

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// maxMessageRunes is the Bot API limit for one text message.
const maxMessageRunes = 4096

type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Sender posts plain-text messages to a single chat.
type Sender struct {
	api    telegramAPI
	chatID int64
	log    *slog.Logger
}

// New creates a Sender for chatID. It calls getMe to validate the token.
func New(token string, chatID int64, log *slog.Logger) (*Sender, error) {
	if token == "" || chatID == 0 {
		return nil, errors.New("alert bot token and chat id are required")
	}
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	return newSender(api, chatID, log), nil
}

func newSender(api telegramAPI, chatID int64, log *slog.Logger) *Sender {
	if log == nil {
		log = slog.Default()
	}
	return &Sender{api: api, chatID: chatID, log: log}
}

// Send delivers text, cut to the Bot API message limit.
func (s *Sender) Send(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(s.chatID, truncate(text, maxMessageRunes))
	msg.DisableWebPagePreview = true
	if _, err := s.api.Send(msg); err != nil {
		s.log.Error("send alert", "chat_id", s.chatID, "error", err)
		return fmt.Errorf("send alert: %w", err)
	}
	return nil
}

func truncate(text string, limit int) string {
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	return string(runes[:limit-1]) + "…"
}
