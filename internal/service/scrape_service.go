package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"tgscraper/internal/cache"
	"tgscraper/internal/featureflags"
	"tgscraper/internal/models"
	"tgscraper/internal/notifications"
	"tgscraper/internal/observability"
	"tgscraper/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

const (
	DefaultScrapeLimit = 200
	MaxScrapeLimit     = 1000
)

// completionTimeout bounds the bookkeeping after a run. It runs detached from
// the run's ctx so a cancelled or timed-out run still invalidates the stats
// cache, publishes scrape.completed and sends its alert.
const completionTimeout = 10 * time.Second

// ScrapeInput selects what a run covers. Empty ChannelIDs means every active
// channel; a zero Limit uses the configured default.
type ScrapeInput struct {
	ChannelIDs []uint `json:"channel_ids,omitempty"`
	Limit      int    `json:"limit,omitempty"`
}

// ChannelResult is one channel's outcome within a run.
type ChannelResult struct {
	ChannelID  uint   `json:"channel_id"`
	Title      string `json:"title"`
	New        int    `json:"new"`
	Updated    int    `json:"updated"`
	Error      string `json:"error,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

// ScrapeSummary reports a finished run.
type ScrapeSummary struct {
	RunID             string          `json:"run_id"`
	Success           bool            `json:"success"`
	ChannelsProcessed int             `json:"channels_processed"`
	New               int             `json:"new"`
	Updated           int             `json:"updated"`
	Errors            []string        `json:"errors"`
	StartedAt         time.Time       `json:"started_at"`
	CompletedAt       time.Time       `json:"completed_at"`
	DurationMS        int64           `json:"duration_ms"`
	Channels          []ChannelResult `json:"channels"`
}

// ScrapeConfig holds run tuning.
type ScrapeConfig struct {
	DefaultLimit int
	ChannelDelay time.Duration
}

// ScrapeDeps are the collaborators of ScrapeService. Source may be nil when
// Telegram is not configured; Events, Alerts and Flags are optional.
type ScrapeDeps struct {
	Channels repository.ChannelRepository
	Posts    repository.PostRepository
	Source   PostSource
	Events   EventPublisher
	Alerts   AlertSender
	Flags    *featureflags.Manager
}

// ScrapeService fetches posts for active channels and upserts them.
// At most one run executes at a time per process.
type ScrapeService struct {
	deps ScrapeDeps
	cfg  ScrapeConfig
	mu   sync.Mutex

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

func NewScrapeService(deps ScrapeDeps, cfg ScrapeConfig) *ScrapeService {
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = DefaultScrapeLimit
	}
	return &ScrapeService{
		deps:  deps,
		cfg:   cfg,
		now:   time.Now,
		sleep: sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Available reports whether a message source is configured.
func (s *ScrapeService) Available() bool {
	return s.deps.Source != nil
}

// Run scrapes the selected channels sequentially. Per-channel failures are
// recorded in the summary and do not stop the run. A cancelled ctx stops
// before the next channel; channels already committed stay committed.
func (s *ScrapeService) Run(ctx context.Context, in ScrapeInput) (*ScrapeSummary, error) {
	if s.deps.Source == nil {
		return nil, sourceUnavailable()
	}
	if in.Limit < 0 || in.Limit > MaxScrapeLimit {
		return nil, models.NewValidationError(fmt.Sprintf("limit must be between 1 and %d", MaxScrapeLimit))
	}
	if !s.mu.TryLock() {
		observability.ScrapeRunsTotal.WithLabelValues("skipped").Inc()
		return nil, &models.AppError{
			Code:    models.CodeConflict,
			Message: "A scrape run is already in progress",
			Err:     ErrScrapeInProgress,
		}
	}
	defer s.mu.Unlock()
	observability.ScrapeInProgress.Set(1)
	defer observability.ScrapeInProgress.Set(0)

	limit := in.Limit
	if limit == 0 {
		limit = s.cfg.DefaultLimit
	}

	summary := &ScrapeSummary{
		RunID:     observability.GenerateCorrelationID(),
		StartedAt: s.now().UTC(),
		Errors:    []string{},
		Channels:  []ChannelResult{},
	}

	span, ctx := observability.NewSpan(ctx, "scrape.run")
	defer span.End()
	span.AddAttributes(
		attribute.String("scrape.run_id", summary.RunID),
		attribute.Int("scrape.limit", limit),
	)
	ctx = observability.WithCorrelationID(ctx, summary.RunID)
	logFields := map[string]interface{}{"run_id": summary.RunID, "limit": limit}
	observability.LogAsyncOperationStart(ctx, "scrape_run", logFields)

	channels, err := s.deps.Channels.ListActive(ctx, in.ChannelIDs)
	if err != nil {
		span.SetError(err)
		observability.LogAsyncOperationError(ctx, "scrape_run", err, logFields)
		observability.RecordScrapeRun("failed", 0, 0, 0, time.Since(summary.StartedAt))
		return nil, fmt.Errorf("load channels: %w", err)
	}
	if len(channels) == 0 {
		msg := "No active channels found"
		if len(in.ChannelIDs) > 0 {
			msg = "No matching active channels found"
		}
		summary.Errors = append(summary.Errors, msg)
		s.complete(ctx, summary)
		return summary, nil
	}

	s.publish(ctx, notifications.EventScrapeStarted, summary.RunID, map[string]interface{}{
		"channels": len(channels),
		"limit":    limit,
	})

	for i, ch := range channels {
		if i > 0 {
			if err := s.sleep(ctx, s.cfg.ChannelDelay); err != nil {
				summary.Errors = append(summary.Errors, fmt.Sprintf("run cancelled: %v", err))
				break
			}
		} else if err := ctx.Err(); err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("run cancelled: %v", err))
			break
		}

		result := s.scrapeChannel(ctx, ch, limit)
		summary.ChannelsProcessed++
		summary.New += result.New
		summary.Updated += result.Updated
		if result.Error != "" {
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %s", ch.Title, result.Error))
		}
		summary.Channels = append(summary.Channels, result)
		s.publish(ctx, notifications.EventScrapeChannelCompleted, summary.RunID, result)
	}

	s.complete(ctx, summary)
	return summary, nil
}

func (s *ScrapeService) scrapeChannel(ctx context.Context, ch models.Channel, limit int) ChannelResult {
	started := time.Now()
	result := ChannelResult{ChannelID: ch.ID, Title: ch.Title}

	counts, err := s.ingestChannel(ctx, ch, limit)
	result.New = counts.New
	result.Updated = counts.Updated
	result.DurationMS = time.Since(started).Milliseconds()
	if err != nil {
		result.Error = err.Error()
		observability.LogAsyncOperationError(ctx, "scrape_channel", err, map[string]interface{}{
			"channel_id": ch.ID,
			"title":      ch.Title,
		})
	}
	return result
}

func (s *ScrapeService) ingestChannel(ctx context.Context, ch models.Channel, limit int) (repository.UpsertResult, error) {
	ref := ch.Ref()

	fetched, err := s.deps.Source.FetchRecentPosts(ctx, ref, limit)
	if err != nil {
		return repository.UpsertResult{}, fmt.Errorf("fetch posts: %w", err)
	}

	var meta *models.ChannelMetadata
	if m, err := s.deps.Source.FetchChannelMetadata(ctx, ref); err != nil {
		observability.GlobalLogger.WarnContext(ctx, "channel metadata unavailable",
			"channel_id", ch.ID, "title", ch.Title, "error", err.Error())
	} else {
		meta = &m
	}

	capture := s.deps.Flags.Enabled(featureflags.RawCapture, ch.ChannelID)

	// The source returns newest first; store in chronological order.
	batch := make([]models.IngestedPost, 0, len(fetched))
	for i := len(fetched) - 1; i >= 0; i-- {
		p := fetched[i]
		if !capture {
			p.RawJSON = nil
		}
		batch = append(batch, p.Normalize())
	}

	res, err := s.deps.Posts.UpsertBatch(ctx, ch.ID, batch, meta)
	if err != nil {
		return repository.UpsertResult{}, fmt.Errorf("store posts: %w", err)
	}
	return res, nil
}

func (s *ScrapeService) complete(ctx context.Context, summary *ScrapeSummary) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), completionTimeout)
	defer cancel()

	summary.CompletedAt = s.now().UTC()
	summary.DurationMS = summary.CompletedAt.Sub(summary.StartedAt).Milliseconds()
	summary.Success = len(summary.Errors) == 0

	failed := 0
	for _, r := range summary.Channels {
		if r.Error != "" {
			failed++
		}
	}
	outcome := "success"
	switch {
	case summary.ChannelsProcessed == 0:
		outcome = "failed"
	case !summary.Success && failed == summary.ChannelsProcessed:
		outcome = "failed"
	case !summary.Success:
		outcome = "partial"
	}
	observability.RecordScrapeRun(outcome, summary.New, summary.Updated, failed,
		summary.CompletedAt.Sub(summary.StartedAt))

	if summary.ChannelsProcessed > 0 {
		cache.InvalidateStats(ctx)
	}

	s.publish(ctx, notifications.EventScrapeCompleted, summary.RunID, summary)
	observability.LogAsyncOperationEnd(ctx, "scrape_run", map[string]interface{}{
		"run_id":             summary.RunID,
		"outcome":            outcome,
		"channels_processed": summary.ChannelsProcessed,
		"new":                summary.New,
		"updated":            summary.Updated,
		"errors":             len(summary.Errors),
	})

	if !summary.Success && summary.ChannelsProcessed > 0 && s.deps.Alerts != nil &&
		s.deps.Flags.Enabled(featureflags.ScrapeAlerts, 0) {
		if err := s.deps.Alerts.Send(ctx, FormatScrapeReport(summary)); err != nil {
			observability.GlobalLogger.WarnContext(ctx, "scrape alert not delivered", "error", err.Error())
		}
	}
}

func (s *ScrapeService) publish(ctx context.Context, eventType, runID string, payload any) {
	if s.deps.Events == nil {
		return
	}
	ev, err := notifications.NewScrapeEvent(eventType, runID, payload)
	if err == nil {
		err = s.deps.Events.PublishScrapeEvent(ctx, ev)
	}
	if err != nil {
		observability.GlobalLogger.WarnContext(ctx, "scrape event not published",
			"event", eventType, "error", err.Error())
	}
}

// FormatScrapeReport renders the alert text for a run.
func FormatScrapeReport(summary *ScrapeSummary) string {
	var b strings.Builder
	status := "completed"
	if !summary.Success {
		status = "completed with errors"
	}
	fmt.Fprintf(&b, "Scrape %s\n", status)
	fmt.Fprintf(&b, "Run: %s\n", summary.RunID)
	fmt.Fprintf(&b, "Channels: %d, new: %d, updated: %d\n",
		summary.ChannelsProcessed, summary.New, summary.Updated)
	fmt.Fprintf(&b, "Duration: %s\n", (time.Duration(summary.DurationMS) * time.Millisecond).String())
	if len(summary.Errors) > 0 {
		b.WriteString("\nErrors:\n")
		for _, e := range summary.Errors {
			fmt.Fprintf(&b, "- %s\n", e)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
