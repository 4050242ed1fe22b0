package models

import (
	"time"
	"unicode/utf8"

	"tgscraper/internal/engagement"
)

// FetchedPost is a message as returned by the message source. Counts are nil
// when the upstream field was absent.
type FetchedPost struct {
	MessageID int
	Date      time.Time
	Text      string
	Views     *int
	Forwards  *int
	Replies   *int
	Reactions []engagement.ReactionResult
	RawJSON   *string
}

// IngestedPost is a fetched post with nullability resolved and engagement
// derived. It carries exactly the columns the upsert writes.
type IngestedPost struct {
	MessageID       int
	Date            time.Time
	Text            string
	Views           int
	Forwards        int
	Replies         int
	TotalReactions  int
	TotalPaid       int
	EngagementCount int
	EngagementRate  float64
	PostLength      int
	RawJSON         *string
}

// Normalize defaults absent counts to zero, classifies reactions and computes
// engagement. Only free reactions count toward engagement.
func (p FetchedPost) Normalize() IngestedPost {
	views := nonNegative(p.Views)
	forwards := nonNegative(p.Forwards)
	replies := nonNegative(p.Replies)

	class := engagement.Classify(p.Reactions)
	metrics := engagement.Compute(views, forwards, replies, class.TotalFree)

	return IngestedPost{
		MessageID:       p.MessageID,
		Date:            p.Date.UTC(),
		Text:            p.Text,
		Views:           views,
		Forwards:        forwards,
		Replies:         replies,
		TotalReactions:  class.TotalFree,
		TotalPaid:       class.TotalPaid,
		EngagementCount: metrics.Count,
		EngagementRate:  metrics.Rate,
		PostLength:      utf8.RuneCountInString(p.Text),
		RawJSON:         p.RawJSON,
	}
}

// ToPost builds a new row for channelID.
func (p IngestedPost) ToPost(channelID uint) Post {
	return Post{
		ChannelID:       channelID,
		MessageID:       p.MessageID,
		Date:            p.Date,
		Text:            p.Text,
		Views:           p.Views,
		Forwards:        p.Forwards,
		Replies:         p.Replies,
		TotalReactions:  p.TotalReactions,
		EngagementCount: p.EngagementCount,
		EngagementRate:  p.EngagementRate,
		PostLength:      p.PostLength,
		RawJSON:         p.RawJSON,
	}
}

// MetricUpdates returns the columns refreshed on re-scrape. Text and date are
// never touched.
func (p IngestedPost) MetricUpdates() map[string]interface{} {
	updates := map[string]interface{}{
		"views":            p.Views,
		"forwards":         p.Forwards,
		"replies":          p.Replies,
		"total_reactions":  p.TotalReactions,
		"engagement_count": p.EngagementCount,
		"engagement_rate":  p.EngagementRate,
		"post_length":      p.PostLength,
	}
	if p.RawJSON != nil {
		updates["raw_json"] = *p.RawJSON
	}
	return updates
}

func nonNegative(v *int) int {
	if v == nil || *v < 0 {
		return 0
	}
	return *v
}
