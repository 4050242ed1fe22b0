package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"tgscraper/internal/cache"
	"tgscraper/internal/models"
	"tgscraper/internal/observability"
	"tgscraper/internal/repository"
	"tgscraper/internal/stats"
)

// DefaultChannelListLimit is the page size of channel listings.
const DefaultChannelListLimit = 100

// ChannelStats is one channel's aggregate row.
type ChannelStats struct {
	ChannelID       uint       `json:"channel_id"`
	ChannelTitle    string     `json:"channel_title"`
	Username        *string    `json:"username"`
	IsActive        bool       `json:"is_active"`
	SubscriberCount *int       `json:"subscriber_count"`
	LastScrapedAt   *time.Time `json:"last_scraped_at"`
	stats.Summary
}

// GlobalStats is the service-wide overview.
type GlobalStats struct {
	TotalChannels  int64      `json:"total_channels"`
	ActiveChannels int64      `json:"active_channels"`
	TotalMessages  int64      `json:"total_messages"`
	LastScrapeTime *time.Time `json:"last_scrape_time"`
}

// StatsConfig controls aggregation and caching.
type StatsConfig struct {
	Window   time.Duration
	CacheTTL time.Duration
}

// StatsService computes and caches read-side aggregates.
type StatsService struct {
	channels repository.ChannelRepository
	posts    repository.PostRepository
	cfg      StatsConfig
	now      func() time.Time
}

func NewStatsService(channels repository.ChannelRepository, posts repository.PostRepository, cfg StatsConfig) *StatsService {
	if cfg.Window <= 0 {
		cfg.Window = stats.DefaultWindow
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = cache.DefaultStatsTTL
	}
	return &StatsService{channels: channels, posts: posts, cfg: cfg, now: time.Now}
}

// WindowDays is the windowed-median length in whole days.
func (s *StatsService) WindowDays() int {
	return int(s.cfg.Window / (24 * time.Hour))
}

// ChannelStats aggregates every active channel. Channels without a post that
// has views are omitted. Rows are ordered by subscriber count descending,
// unknown counts last, then by title.
func (s *StatsService) ChannelStats(ctx context.Context) ([]ChannelStats, error) {
	var rows []ChannelStats
	hit, err := cache.Aside(ctx, cache.ChannelStatsKeyFor(s.WindowDays()), &rows, s.cfg.CacheTTL, func() error {
		computed, err := s.computeChannelStats(ctx)
		if err != nil {
			return err
		}
		rows = computed
		return nil
	})
	if err != nil {
		return nil, err
	}
	if hit {
		observability.StatsCacheRequests.WithLabelValues("hit").Inc()
	} else {
		observability.StatsCacheRequests.WithLabelValues("miss").Inc()
	}
	if rows == nil {
		rows = []ChannelStats{}
	}
	return rows, nil
}

func (s *StatsService) computeChannelStats(ctx context.Context) ([]ChannelStats, error) {
	channels, err := s.channels.ListActive(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("load channels: %w", err)
	}
	ids := make([]uint, len(channels))
	for i, ch := range channels {
		ids[i] = ch.ID
	}
	samples, err := s.posts.StatsSamples(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load samples: %w", err)
	}

	now := s.now().UTC()
	rows := make([]ChannelStats, 0, len(channels))
	for _, ch := range channels {
		summary, ok := stats.Aggregate(samples[ch.ID], now, s.cfg.Window)
		if !ok {
			continue
		}
		rows = append(rows, ChannelStats{
			ChannelID:       ch.ID,
			ChannelTitle:    ch.Title,
			Username:        ch.Username,
			IsActive:        ch.IsActive,
			SubscriberCount: ch.SubscriberCount,
			LastScrapedAt:   ch.LastScrapedAt,
			Summary:         summary,
		})
	}
	SortChannelStats(rows)
	return rows, nil
}

// SortChannelStats orders rows by subscriber count descending with nil last,
// breaking ties by title.
func SortChannelStats(rows []ChannelStats) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i].SubscriberCount, rows[j].SubscriberCount
		switch {
		case a != nil && b == nil:
			return true
		case a == nil && b != nil:
			return false
		case a != nil && b != nil && *a != *b:
			return *a > *b
		}
		return rows[i].ChannelTitle < rows[j].ChannelTitle
	})
}

// Global returns channel and message totals plus the latest scrape time.
func (s *StatsService) Global(ctx context.Context) (*GlobalStats, error) {
	var out GlobalStats
	_, err := cache.Aside(ctx, cache.GlobalStatsKey, &out, s.cfg.CacheTTL, func() error {
		total, active, err := s.channels.Counts(ctx)
		if err != nil {
			return fmt.Errorf("count channels: %w", err)
		}
		messages, err := s.posts.Count(ctx)
		if err != nil {
			return fmt.Errorf("count posts: %w", err)
		}
		last, err := s.channels.LastScrapedAt(ctx)
		if err != nil {
			return fmt.Errorf("last scrape time: %w", err)
		}
		out = GlobalStats{
			TotalChannels:  total,
			ActiveChannels: active,
			TotalMessages:  messages,
			LastScrapeTime: last,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ChannelsWithStats lists channels with stored-post totals. The unfiltered
// first page is cached.
func (s *StatsService) ChannelsWithStats(ctx context.Context, filter repository.ChannelFilter) ([]models.ChannelWithStats, error) {
	if filter.Limit <= 0 {
		filter.Limit = DefaultChannelListLimit
	}
	load := func() ([]models.ChannelWithStats, error) {
		return s.channels.ListWithStats(ctx, filter)
	}

	if filter.IsActive != nil || filter.Offset > 0 || filter.Limit != DefaultChannelListLimit {
		return load()
	}

	var rows []models.ChannelWithStats
	_, err := cache.Aside(ctx, cache.ChannelsListingKey, &rows, s.cfg.CacheTTL, func() error {
		loaded, err := load()
		rows = loaded
		return err
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}
