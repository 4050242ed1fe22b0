package telegram

import (
	"encoding/json"
	"time"

	"tgscraper/internal/engagement"
	"tgscraper/internal/models"

	"github.com/gotd/td/tg"
)

// reactionResult maps one MTProto reaction counter onto the closed kind set.
func reactionResult(rc tg.ReactionCount) engagement.ReactionResult {
	out := engagement.ReactionResult{Count: rc.Count}
	switch r := rc.Reaction.(type) {
	case *tg.ReactionEmoji:
		out.Kind = engagement.KindStandard
		out.Emoji = r.Emoticon
	case *tg.ReactionCustomEmoji:
		out.Kind = engagement.KindCustomEmoji
		out.CustomID = r.DocumentID
	case *tg.ReactionPaid:
		out.Kind = engagement.KindPaidStar
	default:
		out.Kind = engagement.KindUnknown
	}
	return out
}

// convertMessage keeps absent counters nil and attaches the raw message JSON.
func convertMessage(m *tg.Message) models.FetchedPost {
	p := models.FetchedPost{
		MessageID: m.ID,
		Date:      time.Unix(int64(m.Date), 0).UTC(),
		Text:      m.Message,
	}
	if v, ok := m.GetViews(); ok {
		p.Views = &v
	}
	if v, ok := m.GetForwards(); ok {
		p.Forwards = &v
	}
	if r, ok := m.GetReplies(); ok {
		v := r.Replies
		p.Replies = &v
	}
	if reactions, ok := m.GetReactions(); ok {
		p.Reactions = make([]engagement.ReactionResult, 0, len(reactions.Results))
		for _, rc := range reactions.Results {
			p.Reactions = append(p.Reactions, reactionResult(rc))
		}
	}
	if b, err := json.Marshal(m); err == nil {
		raw := string(b)
		p.RawJSON = &raw
	}
	return p
}

// messagesOf unwraps every history response variant. Service and empty
// messages are dropped.
func messagesOf(res tg.MessagesMessagesClass) []*tg.Message {
	var raw []tg.MessageClass
	switch r := res.(type) {
	case *tg.MessagesMessages:
		raw = r.Messages
	case *tg.MessagesMessagesSlice:
		raw = r.Messages
	case *tg.MessagesChannelMessages:
		raw = r.Messages
	}
	out := make([]*tg.Message, 0, len(raw))
	for _, m := range raw {
		if msg, ok := m.(*tg.Message); ok {
			out = append(out, msg)
		}
	}
	return out
}

func chatsOf(res tg.MessagesMessagesClass) []tg.ChatClass {
	switch r := res.(type) {
	case *tg.MessagesMessages:
		return r.Chats
	case *tg.MessagesMessagesSlice:
		return r.Chats
	case *tg.MessagesChannelMessages:
		return r.Chats
	}
	return nil
}
