// Package ranking selects the best-performing posts across channels.
package ranking

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"tgscraper/internal/engagement"
)

// Metric is the field posts are ranked by.
type Metric string

const (
	MetricEngagementRate   Metric = "engagement_rate"
	MetricEngagementCount  Metric = "engagement_count"
	MetricTotalReactions   Metric = "total_reactions"
	MetricViews            Metric = "views"
	MetricReactionsPerView Metric = "reactions_per_view"
)

// DefaultLimit is the number of entries returned when the caller passes n <= 0.
const DefaultLimit = 5

// PreviewRunes is the maximum preview length before truncation.
const PreviewRunes = 120

// Metrics lists every supported ranking metric.
func Metrics() []Metric {
	return []Metric{
		MetricEngagementRate,
		MetricEngagementCount,
		MetricTotalReactions,
		MetricViews,
		MetricReactionsPerView,
	}
}

// ParseMetric validates a metric name. An empty name selects engagement_rate.
func ParseMetric(raw string) (Metric, error) {
	name := strings.ToLower(strings.TrimSpace(raw))
	if name == "" {
		return MetricEngagementRate, nil
	}
	for _, m := range Metrics() {
		if string(m) == name {
			return m, nil
		}
	}
	return "", fmt.Errorf("unsupported metric %q", raw)
}

// Candidate is a stored post in the ranking pool.
type Candidate struct {
	ChannelID        uint
	ChannelTitle     string
	MessageID        int
	Date             time.Time
	Text             string
	Views            int
	Forwards         int
	Replies          int
	TotalReactions   int
	EngagementCount  int
	EngagementRate   float64
	ReactionsPerView *float64
}

// Entry is one ranked post with enough context to stand alone.
type Entry struct {
	Channel          string    `json:"channel"`
	ChannelID        uint      `json:"channel_id"`
	MessageID        int       `json:"message_id"`
	Date             time.Time `json:"date"`
	TextPreview      string    `json:"text_preview"`
	Views            int       `json:"views"`
	Forwards         int       `json:"forwards"`
	Replies          int       `json:"replies"`
	TotalReactions   int       `json:"total_reactions"`
	EngagementCount  int       `json:"engagement_count"`
	EngagementRate   float64   `json:"engagement_rate"`
	ReactionsPerView float64   `json:"reactions_per_view"`
}

// Top returns the n highest posts by metric. Posts without views or without
// engagement are excluded. Ties keep pool order.
func Top(pool []Candidate, metric Metric, n int) []Entry {
	if n <= 0 {
		n = DefaultLimit
	}

	scored := make([]Entry, 0, len(pool))
	for _, c := range pool {
		if c.Views <= 0 || c.EngagementCount <= 0 {
			continue
		}
		rpv := engagement.Round(float64(c.TotalReactions)/float64(c.Views), 6)
		if c.ReactionsPerView != nil {
			rpv = *c.ReactionsPerView
		}
		scored = append(scored, Entry{
			Channel:          c.ChannelTitle,
			ChannelID:        c.ChannelID,
			MessageID:        c.MessageID,
			Date:             c.Date,
			TextPreview:      Preview(c.Text, PreviewRunes),
			Views:            c.Views,
			Forwards:         c.Forwards,
			Replies:          c.Replies,
			TotalReactions:   c.TotalReactions,
			EngagementCount:  c.EngagementCount,
			EngagementRate:   c.EngagementRate,
			ReactionsPerView: rpv,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return value(scored[i], metric) > value(scored[j], metric)
	})

	if len(scored) > n {
		scored = scored[:n]
	}
	return scored
}

func value(e Entry, metric Metric) float64 {
	switch metric {
	case MetricEngagementCount:
		return float64(e.EngagementCount)
	case MetricTotalReactions:
		return float64(e.TotalReactions)
	case MetricViews:
		return float64(e.Views)
	case MetricReactionsPerView:
		return e.ReactionsPerView
	default:
		return e.EngagementRate
	}
}

// Preview truncates text to limit runes and appends an ellipsis when cut.
func Preview(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "…"
}
