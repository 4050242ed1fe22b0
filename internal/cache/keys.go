package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	ChannelStatsKey    = "stats:channels:%d"
	GlobalStatsKey     = "stats:global"
	ChannelsListingKey = "channels:with-stats"
	statsKeyPattern    = "stats:*"
)

// DefaultStatsTTL applies when STATS_CACHE_TTL_SECONDS is unset.
const DefaultStatsTTL = 5 * time.Minute

// ChannelStatsKeyFor scopes cached channel stats by the window length in days.
func ChannelStatsKeyFor(windowDays int) string {
	return fmt.Sprintf(ChannelStatsKey, windowDays)
}

func Invalidate(ctx context.Context, keys ...string) {
	if client != nil && len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}

// InvalidateStats drops every cached aggregate. Called when a scrape run or a
// channel mutation changes the underlying data.
func InvalidateStats(ctx context.Context) {
	if client == nil {
		return
	}
	iter := client.Scan(ctx, 0, statsKeyPattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	keys = append(keys, ChannelsListingKey)
	Invalidate(ctx, keys...)
}
