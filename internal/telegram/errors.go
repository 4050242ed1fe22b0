package telegram

import (
	"errors"
	"fmt"
	"time"

	"github.com/gotd/td/tgerr"
)

var (
	// ErrUnauthorized means the stored session is missing or no longer valid.
	// Run `scrape login` to create one.
	ErrUnauthorized = errors.New("telegram session is not authorized")
	// ErrNotReady is returned by fetches made before the client finished connecting.
	ErrNotReady = errors.New("telegram client is not connected")
	// ErrChannelNotFound means the access hash could not be resolved.
	ErrChannelNotFound = errors.New("channel not found")
	// ErrMessageNotFound means the requested message does not exist or was deleted.
	ErrMessageNotFound = errors.New("message not found")
)

// FloodWaitError reports a FLOOD_WAIT rejection with the wait Telegram asked for.
type FloodWaitError struct {
	Wait time.Duration
	Err  error
}

func (e *FloodWaitError) Error() string {
	return fmt.Sprintf("FLOOD_WAIT: retry after %s", e.Wait)
}

func (e *FloodWaitError) Unwrap() error {
	return e.Err
}

func wrapRPC(op string, err error) error {
	if err == nil {
		return nil
	}
	if d, ok := tgerr.AsFloodWait(err); ok {
		return fmt.Errorf("%s: %w", op, &FloodWaitError{Wait: d, Err: err})
	}
	return fmt.Errorf("%s: %w", op, err)
}
