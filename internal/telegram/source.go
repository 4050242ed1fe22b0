package telegram

import (
	"context"
	"fmt"
	"sync"

	"tgscraper/internal/models"

	"github.com/gotd/td/tg"
)

// historyPageSize is the largest page messages.getHistory returns.
const historyPageSize = 100

// API is the subset of the MTProto client the source calls. *tg.Client
// satisfies it.
type API interface {
	MessagesGetHistory(ctx context.Context, request *tg.MessagesGetHistoryRequest) (tg.MessagesMessagesClass, error)
	ChannelsGetMessages(ctx context.Context, request *tg.ChannelsGetMessagesRequest) (tg.MessagesMessagesClass, error)
	ChannelsGetFullChannel(ctx context.Context, channel tg.InputChannelClass) (*tg.MessagesChatFull, error)
	ContactsResolveUsername(ctx context.Context, request *tg.ContactsResolveUsernameRequest) (*tg.ContactsResolvedPeer, error)
	MessagesGetDialogs(ctx context.Context, request *tg.MessagesGetDialogsRequest) (tg.MessagesDialogsClass, error)
}

// Source reads channel posts over an authorized MTProto connection.
type Source struct {
	api API

	mu       sync.Mutex
	channels map[int64]*tg.Channel
}

func NewSource(api API) *Source {
	return &Source{api: tracedAPI{next: api}, channels: make(map[int64]*tg.Channel)}
}

func (s *Source) remember(chats []tg.ChatClass) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range chats {
		if ch, ok := c.(*tg.Channel); ok {
			s.channels[ch.ID] = ch
		}
	}
}

func (s *Source) cached(id int64) (*tg.Channel, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.channels[id]
	return ch, ok
}

// resolve finds the channel and its access hash: cache first, then the
// username, then a dialog scan.
func (s *Source) resolve(ctx context.Context, ref models.ChannelRef) (*tg.Channel, error) {
	if ch, ok := s.cached(ref.ChannelID); ok {
		return ch, nil
	}

	if ref.Username != "" {
		res, err := s.api.ContactsResolveUsername(ctx, &tg.ContactsResolveUsernameRequest{Username: ref.Username})
		if err != nil {
			return nil, wrapRPC("resolve @"+ref.Username, err)
		}
		s.remember(res.Chats)
		for _, c := range res.Chats {
			ch, ok := c.(*tg.Channel)
			if !ok {
				continue
			}
			if ref.ChannelID == 0 || ch.ID == ref.ChannelID {
				return ch, nil
			}
		}
	}

	var found *tg.Channel
	err := s.walkDialogs(ctx, func(ch *tg.Channel) bool {
		if ch.ID == ref.ChannelID {
			found = ch
			return false
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, fmt.Errorf("channel %d: %w", ref.ChannelID, ErrChannelNotFound)
	}
	return found, nil
}

func inputPeer(ch *tg.Channel) *tg.InputPeerChannel {
	return &tg.InputPeerChannel{ChannelID: ch.ID, AccessHash: ch.AccessHash}
}

func inputChannel(ch *tg.Channel) *tg.InputChannel {
	return &tg.InputChannel{ChannelID: ch.ID, AccessHash: ch.AccessHash}
}

// FetchRecentPosts returns up to limit posts, newest first. Pages are
// requested until limit is reached or history runs out.
func (s *Source) FetchRecentPosts(ctx context.Context, ref models.ChannelRef, limit int) ([]models.FetchedPost, error) {
	ch, err := s.resolve(ctx, ref)
	if err != nil {
		return nil, err
	}

	out := make([]models.FetchedPost, 0, limit)
	offsetID := 0
	for len(out) < limit {
		page := limit - len(out)
		if page > historyPageSize {
			page = historyPageSize
		}
		res, err := s.api.MessagesGetHistory(ctx, &tg.MessagesGetHistoryRequest{
			Peer:     inputPeer(ch),
			OffsetID: offsetID,
			Limit:    page,
		})
		if err != nil {
			return nil, wrapRPC("get history", err)
		}
		msgs := messagesOf(res)
		if len(msgs) == 0 {
			break
		}
		for _, m := range msgs {
			if len(out) == limit {
				break
			}
			out = append(out, convertMessage(m))
		}
		last := msgs[len(msgs)-1].ID
		if offsetID != 0 && last >= offsetID {
			break
		}
		offsetID = last
		if len(msgs) < page {
			break
		}
	}
	return out, nil
}

// FetchChannelMetadata reads channels.getFullChannel. The subscriber count
// falls back to the count carried on the channel object.
func (s *Source) FetchChannelMetadata(ctx context.Context, ref models.ChannelRef) (models.ChannelMetadata, error) {
	ch, err := s.resolve(ctx, ref)
	if err != nil {
		return models.ChannelMetadata{}, err
	}

	full, err := s.api.ChannelsGetFullChannel(ctx, inputChannel(ch))
	if err != nil {
		return models.ChannelMetadata{}, wrapRPC("get full channel", err)
	}
	s.remember(full.Chats)

	meta := models.ChannelMetadata{Title: ch.Title, Username: ch.Username}
	if cf, ok := full.FullChat.(*tg.ChannelFull); ok {
		if n, ok := cf.GetParticipantsCount(); ok {
			meta.SubscriberCount = &n
		}
	}
	for _, c := range full.Chats {
		fresh, ok := c.(*tg.Channel)
		if !ok || fresh.ID != ch.ID {
			continue
		}
		meta.Title = fresh.Title
		meta.Username = fresh.Username
		if meta.SubscriberCount == nil {
			if n, ok := fresh.GetParticipantsCount(); ok {
				meta.SubscriberCount = &n
			}
		}
	}
	if meta.SubscriberCount == nil {
		if n, ok := ch.GetParticipantsCount(); ok {
			meta.SubscriberCount = &n
		}
	}
	return meta, nil
}

// FetchPost looks up a single message by id.
func (s *Source) FetchPost(ctx context.Context, ref models.ChannelRef, messageID int) (models.FetchedPost, error) {
	ch, err := s.resolve(ctx, ref)
	if err != nil {
		return models.FetchedPost{}, err
	}

	res, err := s.api.ChannelsGetMessages(ctx, &tg.ChannelsGetMessagesRequest{
		Channel: inputChannel(ch),
		ID:      []tg.InputMessageClass{&tg.InputMessageID{ID: messageID}},
	})
	if err != nil {
		return models.FetchedPost{}, wrapRPC("get message", err)
	}
	s.remember(chatsOf(res))
	for _, m := range messagesOf(res) {
		if m.ID == messageID {
			return convertMessage(m), nil
		}
	}
	return models.FetchedPost{}, fmt.Errorf("message %d: %w", messageID, ErrMessageNotFound)
}
