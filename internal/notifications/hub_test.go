package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testEventuallyTimeout = time.Second
	testPollInterval      = 10 * time.Millisecond
)

func TestHub_RegisterAndUnregister(t *testing.T) {
	hub := NewHub()

	a, err := hub.Register(nil)
	require.NoError(t, err)
	b, err := hub.Register(nil)
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, 2, hub.Count())

	hub.UnregisterClient(a)
	hub.UnregisterClient(a)
	assert.Equal(t, 1, hub.Count())

	_, open := <-a.Send
	assert.False(t, open, "send buffer is closed on unregister")

	require.NoError(t, hub.Shutdown(context.Background()))
	assert.Zero(t, hub.Count())

	_, err = hub.Register(nil)
	assert.Error(t, err)
}

func TestHub_ConnectionLimit(t *testing.T) {
	hub := NewHub()
	for i := 0; i < maxWatchers; i++ {
		_, err := hub.Register(nil)
		require.NoError(t, err)
	}
	_, err := hub.Register(nil)
	assert.ErrorIs(t, err, ErrHubFull)
	_ = hub.Shutdown(context.Background())
}

func TestHub_BroadcastAll(t *testing.T) {
	hub := NewHub()
	a, _ := hub.Register(nil)
	b, _ := hub.Register(nil)

	hub.BroadcastAll(`{"type":"scrape.started"}`)

	assert.Equal(t, `{"type":"scrape.started"}`, string(<-a.Send))
	assert.Equal(t, `{"type":"scrape.started"}`, string(<-b.Send))
	_ = hub.Shutdown(context.Background())
}

func TestClient_TrySendDropsWhenFull(t *testing.T) {
	hub := NewHub()
	c, _ := hub.Register(nil)

	for i := 0; i < sendBufferSize; i++ {
		assert.True(t, c.TrySend([]byte("x")))
	}
	assert.False(t, c.TrySend([]byte("overflow")))

	hub.UnregisterClient(c)
	assert.False(t, c.TrySend([]byte("after close")), "send on a closed client must not panic")
}

func TestHub_StartWiringRelaysRedisEvents(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub()
	client, err := hub.Register(nil)
	require.NoError(t, err)

	n := NewNotifier(rdb)
	require.NoError(t, hub.StartWiring(ctx, n))

	ev, err := NewScrapeEvent(EventScrapeCompleted, "run-1", map[string]int{"new": 3})
	require.NoError(t, err)
	require.NoError(t, n.PublishScrapeEvent(ctx, ev))

	select {
	case msg := <-client.Send:
		assert.Contains(t, string(msg), `"type":"scrape.completed"`)
		assert.Contains(t, string(msg), `"run_id":"run-1"`)
		assert.Contains(t, string(msg), `"new":3`)
	case <-time.After(testEventuallyTimeout):
		t.Fatal("event was not relayed to the websocket client")
	}
	_ = hub.Shutdown(context.Background())
}
