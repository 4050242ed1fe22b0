package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ScrapeRunsTotal counts scrape runs by outcome (success, partial, failed, skipped).
	ScrapeRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tgscraper_scrape_runs_total",
		Help: "Total number of scrape runs by outcome",
	}, []string{"outcome"})

	// ScrapeRunDuration records wall time of complete scrape runs.
	ScrapeRunDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tgscraper_scrape_run_duration_seconds",
		Help:    "Scrape run duration in seconds",
		Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
	})

	// ScrapePostsTotal counts upserted posts by result (new, updated).
	ScrapePostsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tgscraper_scrape_posts_total",
		Help: "Total number of posts upserted by result",
	}, []string{"result"})

	// ScrapeChannelErrors counts per-channel scrape failures.
	ScrapeChannelErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tgscraper_scrape_channel_errors_total",
		Help: "Total number of channels that failed during a scrape run",
	})

	// ScrapeInProgress is 1 while a scrape run holds the lock.
	ScrapeInProgress = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tgscraper_scrape_in_progress",
		Help: "Whether a scrape run is currently executing",
	})

	// StatsCacheRequests counts channel stats cache lookups by result (hit, miss).
	StatsCacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tgscraper_stats_cache_requests_total",
		Help: "Channel stats cache lookups by result",
	}, []string{"result"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tgscraper_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// WebSocketConnectionsTotal is the gauge of active WebSocket connections.
	WebSocketConnectionsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tgscraper_websocket_connections_total",
		Help: "Total number of active WebSocket connections",
	})

	// WebSocketEventsTotal counts events fanned out to WebSocket clients by type.
	WebSocketEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tgscraper_websocket_events_total",
		Help: "Total WebSocket events by type",
	}, []string{"event_type"})

	// WebSocketBackpressureDrops counts messages dropped due to backpressure by hub and reason.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tgscraper_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"hub", "reason"})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}

// RecordScrapeRun records the outcome of one finished scrape run.
func RecordScrapeRun(outcome string, newPosts, updatedPosts, failedChannels int, elapsed time.Duration) {
	ScrapeRunsTotal.WithLabelValues(outcome).Inc()
	ScrapeRunDuration.Observe(elapsed.Seconds())
	ScrapePostsTotal.WithLabelValues("new").Add(float64(newPosts))
	ScrapePostsTotal.WithLabelValues("updated").Add(float64(updatedPosts))
	ScrapeChannelErrors.Add(float64(failedChannels))
}
