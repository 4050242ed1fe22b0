package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { SetClient(nil) })
	return mr
}

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestAside_MissThenHit(t *testing.T) {
	mr := setupMiniredis(t)
	ctx := context.Background()

	calls := 0
	fetch := func(dest *payload) func() error {
		return func() error {
			calls++
			*dest = payload{Name: "poker", Count: 3}
			return nil
		}
	}

	var first payload
	hit, err := Aside(ctx, "stats:channels:7", &first, time.Minute, fetch(&first))
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, payload{Name: "poker", Count: 3}, first)
	assert.True(t, mr.Exists("stats:channels:7"))

	var second payload
	hit, err = Aside(ctx, "stats:channels:7", &second, time.Minute, fetch(&second))
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)

	mr.FastForward(2 * time.Minute)
	var third payload
	hit, err = Aside(ctx, "stats:channels:7", &third, time.Minute, fetch(&third))
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 2, calls)
}

func TestAside_FetchErrorNotCached(t *testing.T) {
	mr := setupMiniredis(t)

	var dest payload
	_, err := Aside(context.Background(), "stats:global", &dest, time.Minute, func() error {
		return errors.New("db down")
	})
	assert.Error(t, err)
	assert.False(t, mr.Exists("stats:global"))
}

func TestAside_NoClientCallsFetch(t *testing.T) {
	SetClient(nil)

	var dest payload
	hit, err := Aside(context.Background(), "k", &dest, time.Minute, func() error {
		dest.Count = 9
		return nil
	})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 9, dest.Count)
}

func TestInvalidateStats(t *testing.T) {
	mr := setupMiniredis(t)
	ctx := context.Background()

	require.NoError(t, SetJSON(ctx, ChannelStatsKeyFor(7), payload{}, time.Minute))
	require.NoError(t, SetJSON(ctx, GlobalStatsKey, payload{}, time.Minute))
	require.NoError(t, SetJSON(ctx, ChannelsListingKey, payload{}, time.Minute))
	require.NoError(t, mr.Set("rl:scrape:ip:1", "1"))

	InvalidateStats(ctx)

	assert.False(t, mr.Exists(ChannelStatsKeyFor(7)))
	assert.False(t, mr.Exists(GlobalStatsKey))
	assert.False(t, mr.Exists(ChannelsListingKey))
	assert.True(t, mr.Exists("rl:scrape:ip:1"))
}

func TestInitRedis_InvalidURLLeavesClientNil(t *testing.T) {
	InitRedis("redis://:bad url")
	assert.Nil(t, GetClient())
}
