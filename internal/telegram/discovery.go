package telegram

import (
	"context"
	"strings"
	"unicode"

	"tgscraper/internal/models"

	"github.com/gotd/td/tg"
)

const (
	dialogPageSize = 100
	maxDialogPages = 50
)

// CleanName derives an identifier-safe name from a channel title: lowercase,
// spaces and dashes become underscores, anything else that is not a letter,
// digit or underscore is dropped.
func CleanName(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		switch {
		case r == ' ' || r == '-':
			b.WriteRune('_')
		case r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		}
	}
	return b.String()
}

// DiscoverChannels lists the broadcast channels in the account's dialogs.
// Megagroups and forbidden channels are skipped.
func (s *Source) DiscoverChannels(ctx context.Context) ([]models.DiscoveredChannel, error) {
	seen := make(map[int64]bool)
	var out []models.DiscoveredChannel
	err := s.walkDialogs(ctx, func(ch *tg.Channel) bool {
		if !ch.Broadcast || ch.Megagroup || seen[ch.ID] {
			return true
		}
		seen[ch.ID] = true
		out = append(out, models.DiscoveredChannel{
			ChannelID: ch.ID,
			Title:     ch.Title,
			Username:  ch.Username,
			CleanName: CleanName(ch.Title),
		})
		return true
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.DiscoveredChannel{}
	}
	return out, nil
}

type dialogPage struct {
	dialogs  []tg.DialogClass
	messages []tg.MessageClass
	chats    []tg.ChatClass
	users    []tg.UserClass
	complete bool
}

func pageOf(res tg.MessagesDialogsClass) dialogPage {
	switch r := res.(type) {
	case *tg.MessagesDialogs:
		return dialogPage{dialogs: r.Dialogs, messages: r.Messages, chats: r.Chats, users: r.Users, complete: true}
	case *tg.MessagesDialogsSlice:
		return dialogPage{dialogs: r.Dialogs, messages: r.Messages, chats: r.Chats, users: r.Users}
	}
	return dialogPage{complete: true}
}

// walkDialogs pages through the dialog list and calls visit for every
// channel seen, remembering access hashes on the way. visit returns false
// to stop.
func (s *Source) walkDialogs(ctx context.Context, visit func(*tg.Channel) bool) error {
	req := &tg.MessagesGetDialogsRequest{
		OffsetPeer: &tg.InputPeerEmpty{},
		Limit:      dialogPageSize,
	}

	for range maxDialogPages {
		res, err := s.api.MessagesGetDialogs(ctx, req)
		if err != nil {
			return wrapRPC("get dialogs", err)
		}
		page := pageOf(res)
		s.remember(page.chats)

		for _, c := range page.chats {
			ch, ok := c.(*tg.Channel)
			if !ok {
				continue
			}
			if !visit(ch) {
				return nil
			}
		}

		if page.complete || len(page.dialogs) < dialogPageSize {
			return nil
		}
		next, ok := nextDialogOffset(page)
		if !ok || (next.OffsetID == req.OffsetID && next.OffsetDate == req.OffsetDate) {
			return nil
		}
		req = next
	}
	return nil
}

// nextDialogOffset builds the request for the page after the last dialog.
func nextDialogOffset(page dialogPage) (*tg.MessagesGetDialogsRequest, bool) {
	var last *tg.Dialog
	for i := len(page.dialogs) - 1; i >= 0; i-- {
		if d, ok := page.dialogs[i].(*tg.Dialog); ok {
			last = d
			break
		}
	}
	if last == nil {
		return nil, false
	}

	req := &tg.MessagesGetDialogsRequest{OffsetID: last.TopMessage, Limit: dialogPageSize}
	for _, m := range page.messages {
		switch msg := m.(type) {
		case *tg.Message:
			if msg.ID == last.TopMessage && samePeer(msg.PeerID, last.Peer) {
				req.OffsetDate = msg.Date
			}
		case *tg.MessageService:
			if msg.ID == last.TopMessage && samePeer(msg.PeerID, last.Peer) {
				req.OffsetDate = msg.Date
			}
		}
	}

	switch p := last.Peer.(type) {
	case *tg.PeerChannel:
		for _, c := range page.chats {
			if ch, ok := c.(*tg.Channel); ok && ch.ID == p.ChannelID {
				req.OffsetPeer = inputPeer(ch)
			}
		}
	case *tg.PeerChat:
		req.OffsetPeer = &tg.InputPeerChat{ChatID: p.ChatID}
	case *tg.PeerUser:
		for _, u := range page.users {
			if user, ok := u.(*tg.User); ok && user.ID == p.UserID {
				req.OffsetPeer = &tg.InputPeerUser{UserID: user.ID, AccessHash: user.AccessHash}
			}
		}
	}
	if req.OffsetPeer == nil {
		req.OffsetPeer = &tg.InputPeerEmpty{}
	}
	return req, true
}

func samePeer(a, b tg.PeerClass) bool {
	switch x := a.(type) {
	case *tg.PeerChannel:
		y, ok := b.(*tg.PeerChannel)
		return ok && x.ChannelID == y.ChannelID
	case *tg.PeerChat:
		y, ok := b.(*tg.PeerChat)
		return ok && x.ChatID == y.ChatID
	case *tg.PeerUser:
		y, ok := b.(*tg.PeerUser)
		return ok && x.UserID == y.UserID
	}
	return false
}
