// Package stats computes per-channel distribution statistics over stored posts.
package stats

import (
	"sort"
	"time"
)

// DefaultWindow is the trailing window used for the windowed median.
const DefaultWindow = 7 * 24 * time.Hour

// Sample is the subset of a stored post the aggregator needs.
type Sample struct {
	Date            time.Time
	Views           int
	Reactions       int
	Forwards        int
	Replies         int
	PostLength      int
	EngagementCount int
	EngagementRate  float64
}

// Distribution holds the mean and median of one metric.
type Distribution struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
}

// Summary is the aggregate for one channel.
type Summary struct {
	PostsAnalyzed          int          `json:"posts_analyzed"`
	Views                  Distribution `json:"views"`
	Reactions              Distribution `json:"reactions"`
	Forwards               Distribution `json:"forwards"`
	Replies                Distribution `json:"replies"`
	PostLength             Distribution `json:"post_length"`
	EngagementCount        Distribution `json:"engagement_count"`
	EngagementRate         Distribution `json:"engagement_rate"`
	WindowPosts            int          `json:"window_posts"`
	MedianViewsWindow      float64      `json:"median_views_window"`
	MedianViewsWindowEmpty bool         `json:"median_views_window_empty"`
	LatestMessageDate      *time.Time   `json:"latest_message_date,omitempty"`
}

// Aggregate computes the summary over samples with views > 0.
// It returns ok=false when no sample qualifies; callers omit such channels.
// The windowed median covers samples dated at or after now-window.
func Aggregate(samples []Sample, now time.Time, window time.Duration) (Summary, bool) {
	if window <= 0 {
		window = DefaultWindow
	}

	valid := make([]Sample, 0, len(samples))
	for _, s := range samples {
		if s.Views > 0 {
			valid = append(valid, s)
		}
	}
	if len(valid) == 0 {
		return Summary{}, false
	}

	n := len(valid)
	views := make([]float64, 0, n)
	reactions := make([]float64, 0, n)
	forwards := make([]float64, 0, n)
	replies := make([]float64, 0, n)
	lengths := make([]float64, 0, n)
	counts := make([]float64, 0, n)
	rates := make([]float64, 0, n)
	var windowViews []float64
	var latest time.Time

	cutoff := now.Add(-window)
	for _, s := range valid {
		views = append(views, float64(s.Views))
		reactions = append(reactions, float64(s.Reactions))
		forwards = append(forwards, float64(s.Forwards))
		replies = append(replies, float64(s.Replies))
		lengths = append(lengths, float64(s.PostLength))
		counts = append(counts, float64(s.EngagementCount))
		rates = append(rates, s.EngagementRate)
		if !s.Date.Before(cutoff) {
			windowViews = append(windowViews, float64(s.Views))
		}
		if s.Date.After(latest) {
			latest = s.Date
		}
	}

	out := Summary{
		PostsAnalyzed:   n,
		Views:           describe(views),
		Reactions:       describe(reactions),
		Forwards:        describe(forwards),
		Replies:         describe(replies),
		PostLength:      describe(lengths),
		EngagementCount: describe(counts),
		EngagementRate:  describe(rates),
		WindowPosts:     len(windowViews),
	}
	if len(windowViews) == 0 {
		out.MedianViewsWindowEmpty = true
	} else {
		out.MedianViewsWindow = Median(windowViews)
	}
	if !latest.IsZero() {
		out.LatestMessageDate = &latest
	}
	return out, true
}

func describe(values []float64) Distribution {
	return Distribution{Mean: Mean(values), Median: Median(values)}
}

// Mean returns the arithmetic mean, or 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Median returns the 50th percentile with linear interpolation.
func Median(values []float64) float64 {
	return Percentile(values, 0.5)
}

// Percentile returns the continuous percentile p (0..1) of values, matching
// PostgreSQL percentile_cont. The input slice is not modified.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	pos := p * float64(len(sorted)-1)
	lo := int(pos)
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}
