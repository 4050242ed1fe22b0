package telegram

import (
	"context"

	"tgscraper/internal/observability"

	"github.com/gotd/td/tg"
)

// tracedAPI wraps every MTProto request in a client span.
type tracedAPI struct {
	next API
}

func traced[T any](ctx context.Context, method string, call func(ctx context.Context) (T, error)) (T, error) {
	ctx, span := observability.GetTraceLayer().TraceTelegramCall(ctx, method)
	defer span.End()
	res, err := call(ctx)
	if err != nil {
		observability.RecordErrorInContext(ctx, err)
	}
	return res, err
}

func (a tracedAPI) MessagesGetHistory(ctx context.Context, r *tg.MessagesGetHistoryRequest) (tg.MessagesMessagesClass, error) {
	return traced(ctx, "messages.getHistory", func(ctx context.Context) (tg.MessagesMessagesClass, error) {
		return a.next.MessagesGetHistory(ctx, r)
	})
}

func (a tracedAPI) ChannelsGetMessages(ctx context.Context, r *tg.ChannelsGetMessagesRequest) (tg.MessagesMessagesClass, error) {
	return traced(ctx, "channels.getMessages", func(ctx context.Context) (tg.MessagesMessagesClass, error) {
		return a.next.ChannelsGetMessages(ctx, r)
	})
}

func (a tracedAPI) ChannelsGetFullChannel(ctx context.Context, ch tg.InputChannelClass) (*tg.MessagesChatFull, error) {
	return traced(ctx, "channels.getFullChannel", func(ctx context.Context) (*tg.MessagesChatFull, error) {
		return a.next.ChannelsGetFullChannel(ctx, ch)
	})
}

func (a tracedAPI) ContactsResolveUsername(ctx context.Context, r *tg.ContactsResolveUsernameRequest) (*tg.ContactsResolvedPeer, error) {
	return traced(ctx, "contacts.resolveUsername", func(ctx context.Context) (*tg.ContactsResolvedPeer, error) {
		return a.next.ContactsResolveUsername(ctx, r)
	})
}

func (a tracedAPI) MessagesGetDialogs(ctx context.Context, r *tg.MessagesGetDialogsRequest) (tg.MessagesDialogsClass, error) {
	return traced(ctx, "messages.getDialogs", func(ctx context.Context) (tg.MessagesDialogsClass, error) {
		return a.next.MessagesGetDialogs(ctx, r)
	})
}
