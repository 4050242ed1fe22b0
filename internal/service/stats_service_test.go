package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"tgscraper/internal/cache"
	"tgscraper/internal/models"
	"tgscraper/internal/repository"
	"tgscraper/internal/stats"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	cache.SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { cache.SetClient(nil) })
	return mr
}

var statsNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func sample(daysAgo, views int) stats.Sample {
	return stats.Sample{
		Date:            statsNow.Add(-time.Duration(daysAgo) * 24 * time.Hour),
		Views:           views,
		Reactions:       views / 10,
		EngagementCount: views / 5,
		EngagementRate:  0.2,
	}
}

func TestSortChannelStats(t *testing.T) {
	rows := []ChannelStats{
		{ChannelTitle: "Zeta"},
		{ChannelTitle: "Beta", SubscriberCount: intPtr(100)},
		{ChannelTitle: "Alpha"},
		{ChannelTitle: "Gamma", SubscriberCount: intPtr(5000)},
		{ChannelTitle: "Delta", SubscriberCount: intPtr(100)},
	}

	SortChannelStats(rows)

	var titles []string
	for _, r := range rows {
		titles = append(titles, r.ChannelTitle)
	}
	assert.Equal(t, []string{"Gamma", "Beta", "Delta", "Alpha", "Zeta"}, titles)
}

func TestStatsService_ChannelStats_OmitsChannelsWithoutViews(t *testing.T) {
	channels := noopChannelRepo()
	channels.listActiveFn = func(_ context.Context, ids []uint) ([]models.Channel, error) {
		assert.Nil(t, ids)
		return []models.Channel{
			{ID: 1, Title: "Small", SubscriberCount: intPtr(10)},
			{ID: 2, Title: "Empty", SubscriberCount: intPtr(99999)},
			{ID: 3, Title: "Large", SubscriberCount: intPtr(1000)},
		}, nil
	}
	posts := noopPostRepo()
	posts.statsSamplesFn = func(_ context.Context, ids []uint) (map[uint][]stats.Sample, error) {
		assert.Equal(t, []uint{1, 2, 3}, ids)
		return map[uint][]stats.Sample{
			1: {sample(1, 100), sample(20, 300)},
			3: {sample(2, 1000)},
		}, nil
	}

	svc := NewStatsService(channels, posts, StatsConfig{})
	svc.now = func() time.Time { return statsNow }

	rows, err := svc.ChannelStats(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Large", rows[0].ChannelTitle)
	assert.Equal(t, "Small", rows[1].ChannelTitle)
	assert.Equal(t, 2, rows[1].PostsAnalyzed)
	assert.Equal(t, 1, rows[1].WindowPosts)
	assert.Equal(t, 100.0, rows[1].MedianViewsWindow)
	assert.Equal(t, 7, svc.WindowDays())
}

func TestStatsService_ChannelStats_EmptyIsNotNil(t *testing.T) {
	svc := NewStatsService(noopChannelRepo(), noopPostRepo(), StatsConfig{})

	rows, err := svc.ChannelStats(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestStatsService_ChannelStats_CachedUntilInvalidated(t *testing.T) {
	mr := setupMiniredis(t)
	ctx := context.Background()

	loads := 0
	channels := noopChannelRepo()
	channels.listActiveFn = func(_ context.Context, _ []uint) ([]models.Channel, error) {
		loads++
		return []models.Channel{{ID: 1, Title: "Alpha"}}, nil
	}
	posts := noopPostRepo()
	posts.statsSamplesFn = func(_ context.Context, _ []uint) (map[uint][]stats.Sample, error) {
		return map[uint][]stats.Sample{1: {sample(1, 100)}}, nil
	}
	svc := NewStatsService(channels, posts, StatsConfig{Window: 3 * 24 * time.Hour})
	svc.now = func() time.Time { return statsNow }

	first, err := svc.ChannelStats(ctx)
	require.NoError(t, err)
	assert.True(t, mr.Exists(cache.ChannelStatsKeyFor(3)))

	second, err := svc.ChannelStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, loads)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].ChannelTitle, second[0].ChannelTitle)
	assert.Equal(t, first[0].Views, second[0].Views)

	cache.InvalidateStats(ctx)
	_, err = svc.ChannelStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, loads)
}

func TestStatsService_ChannelStats_LoadError(t *testing.T) {
	channels := noopChannelRepo()
	channels.listActiveFn = func(_ context.Context, _ []uint) ([]models.Channel, error) {
		return nil, errors.New("db down")
	}
	svc := NewStatsService(channels, noopPostRepo(), StatsConfig{})

	_, err := svc.ChannelStats(context.Background())
	assert.ErrorContains(t, err, "load channels: db down")
}

func TestStatsService_Global(t *testing.T) {
	last := statsNow.Add(-time.Hour)
	channels := noopChannelRepo()
	channels.countsFn = func(_ context.Context) (int64, int64, error) { return 5, 3, nil }
	channels.lastScrapedAtFn = func(_ context.Context) (*time.Time, error) { return &last, nil }
	posts := noopPostRepo()
	posts.countFn = func(_ context.Context) (int64, error) { return 1200, nil }

	got, err := NewStatsService(channels, posts, StatsConfig{}).Global(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(5), got.TotalChannels)
	assert.Equal(t, int64(3), got.ActiveChannels)
	assert.Equal(t, int64(1200), got.TotalMessages)
	require.NotNil(t, got.LastScrapeTime)
	assert.True(t, last.Equal(*got.LastScrapeTime))
}

func TestStatsService_ChannelsWithStats_CachesDefaultPageOnly(t *testing.T) {
	mr := setupMiniredis(t)
	ctx := context.Background()

	var filters []repository.ChannelFilter
	channels := noopChannelRepo()
	channels.listWithStatsFn = func(_ context.Context, f repository.ChannelFilter) ([]models.ChannelWithStats, error) {
		filters = append(filters, f)
		return []models.ChannelWithStats{{Channel: models.Channel{ID: 1, Title: "Alpha"}, MessagesCount: 4}}, nil
	}
	svc := NewStatsService(channels, noopPostRepo(), StatsConfig{})

	_, err := svc.ChannelsWithStats(ctx, repository.ChannelFilter{})
	require.NoError(t, err)
	rows, err := svc.ChannelsWithStats(ctx, repository.ChannelFilter{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(4), rows[0].MessagesCount)
	assert.True(t, mr.Exists(cache.ChannelsListingKey))

	_, err = svc.ChannelsWithStats(ctx, repository.ChannelFilter{IsActive: boolPtr(true)})
	require.NoError(t, err)

	require.Len(t, filters, 2)
	assert.Equal(t, DefaultChannelListLimit, filters[0].Limit)
	require.NotNil(t, filters[1].IsActive)
}
