package server

import (
	"strconv"
	"time"

	"tgscraper/internal/engagement"
	"tgscraper/internal/models"
	"tgscraper/internal/service"
)

// Presentation precision. Stored and aggregated values stay unrounded.
const (
	countDecimals = 2
	rateDecimals  = 4
)

func roundCount(v float64) float64 { return engagement.Round(v, countDecimals) }

func roundRate(v float64) float64 { return engagement.Round(v, rateDecimals) }

func roundCountPtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := roundCount(*v)
	return &r
}

// ChannelWithStatsDTO is a channel listing row with stored-post totals.
type ChannelWithStatsDTO struct {
	models.Channel
	MessagesCount     int64      `json:"messages_count"`
	LatestMessageDate *time.Time `json:"latest_message_date"`
	AvgEngagementRate *float64   `json:"avg_engagement_rate"`
	AvgViews          *float64   `json:"avg_views"`
}

func toChannelWithStatsDTOs(rows []models.ChannelWithStats) []ChannelWithStatsDTO {
	out := make([]ChannelWithStatsDTO, len(rows))
	for i, r := range rows {
		out[i] = ChannelWithStatsDTO{
			Channel:           r.Channel,
			MessagesCount:     r.MessagesCount,
			LatestMessageDate: r.LatestMessageDate,
			AvgEngagementRate: roundCountPtr(r.AvgEngagementRate),
			AvgViews:          roundCountPtr(r.AvgViews),
		}
	}
	return out
}

// ChannelStatsDTO is one row of the channel statistics table.
type ChannelStatsDTO struct {
	ChannelID             uint       `json:"channel_id"`
	ChannelTitle          string     `json:"channel_title"`
	Username              *string    `json:"username"`
	IsActive              bool       `json:"is_active"`
	SubscriberCount       *int       `json:"subscriber_count"`
	LastScrapedAt         *time.Time `json:"last_scraped_at"`
	LatestMessageDate     *time.Time `json:"latest_message_date"`
	PostsAnalyzed         int        `json:"posts_analyzed"`
	AvgViews              float64    `json:"avg_views"`
	MedianViews           float64    `json:"median_views"`
	AvgReactions          float64    `json:"avg_reactions"`
	MedianReactions       float64    `json:"median_reactions"`
	AvgForwards           float64    `json:"avg_forwards"`
	MedianForwards        float64    `json:"median_forwards"`
	AvgReplies            float64    `json:"avg_replies"`
	MedianReplies         float64    `json:"median_replies"`
	AvgPostLength         float64    `json:"avg_post_length"`
	MedianPostLength      float64    `json:"median_post_length"`
	AvgEngagementCount    float64    `json:"avg_engagement_count"`
	MedianEngagementCount float64    `json:"median_engagement_count"`
	AvgEngagementRate     float64    `json:"avg_engagement_rate"`
	MedianEngagementRate  float64    `json:"median_engagement_rate"`
	WindowDays            int        `json:"window_days"`
	WindowPosts           int        `json:"window_posts"`
	MedianViews7d         float64    `json:"median_views_7d"`
	MedianViews7dEmpty    bool       `json:"median_views_7d_empty"`
}

func toChannelStatsDTO(row service.ChannelStats, windowDays int) ChannelStatsDTO {
	return ChannelStatsDTO{
		ChannelID:             row.ChannelID,
		ChannelTitle:          row.ChannelTitle,
		Username:              row.Username,
		IsActive:              row.IsActive,
		SubscriberCount:       row.SubscriberCount,
		LastScrapedAt:         row.LastScrapedAt,
		LatestMessageDate:     row.LatestMessageDate,
		PostsAnalyzed:         row.PostsAnalyzed,
		AvgViews:              roundCount(row.Views.Mean),
		MedianViews:           roundCount(row.Views.Median),
		AvgReactions:          roundCount(row.Reactions.Mean),
		MedianReactions:       roundCount(row.Reactions.Median),
		AvgForwards:           roundCount(row.Forwards.Mean),
		MedianForwards:        roundCount(row.Forwards.Median),
		AvgReplies:            roundCount(row.Replies.Mean),
		MedianReplies:         roundCount(row.Replies.Median),
		AvgPostLength:         roundCount(row.PostLength.Mean),
		MedianPostLength:      roundCount(row.PostLength.Median),
		AvgEngagementCount:    roundCount(row.EngagementCount.Mean),
		MedianEngagementCount: roundCount(row.EngagementCount.Median),
		AvgEngagementRate:     roundRate(row.EngagementRate.Mean),
		MedianEngagementRate:  roundRate(row.EngagementRate.Median),
		WindowDays:            windowDays,
		WindowPosts:           row.WindowPosts,
		MedianViews7d:         roundCount(row.MedianViewsWindow),
		MedianViews7dEmpty:    row.MedianViewsWindowEmpty,
	}
}

func toChannelStatsDTOs(rows []service.ChannelStats, windowDays int) []ChannelStatsDTO {
	out := make([]ChannelStatsDTO, len(rows))
	for i, r := range rows {
		out[i] = toChannelStatsDTO(r, windowDays)
	}
	return out
}

var channelStatsCSVHeader = []string{
	"channel_id", "channel_title", "username", "subscriber_count", "posts_analyzed",
	"avg_views", "median_views", "median_views_7d",
	"avg_reactions", "median_reactions", "avg_forwards", "median_forwards",
	"avg_replies", "median_replies", "avg_post_length", "median_post_length",
	"avg_engagement_count", "median_engagement_count",
	"avg_engagement_rate", "median_engagement_rate", "latest_message_date",
}

// csvRecord renders the row in channelStatsCSVHeader order. Unknown values
// are empty cells.
func (d ChannelStatsDTO) csvRecord() []string {
	username := ""
	if d.Username != nil {
		username = *d.Username
	}
	subscribers := ""
	if d.SubscriberCount != nil {
		subscribers = strconv.Itoa(*d.SubscriberCount)
	}
	latest := ""
	if d.LatestMessageDate != nil {
		latest = d.LatestMessageDate.UTC().Format(time.RFC3339)
	}
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	return []string{
		strconv.FormatUint(uint64(d.ChannelID), 10), d.ChannelTitle, username, subscribers,
		strconv.Itoa(d.PostsAnalyzed),
		f(d.AvgViews), f(d.MedianViews), f(d.MedianViews7d),
		f(d.AvgReactions), f(d.MedianReactions), f(d.AvgForwards), f(d.MedianForwards),
		f(d.AvgReplies), f(d.MedianReplies), f(d.AvgPostLength), f(d.MedianPostLength),
		f(d.AvgEngagementCount), f(d.MedianEngagementCount),
		f(d.AvgEngagementRate), f(d.MedianEngagementRate), latest,
	}
}
