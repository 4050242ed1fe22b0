// Package models contains data structures for the application's domain models.
package models

import (
	"strconv"
	"strings"
	"time"
)

// Channel represents a tracked Telegram broadcast channel.
type Channel struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	Title           string     `gorm:"size:255;not null" json:"title"`
	Username        *string    `gorm:"size:255" json:"username"`
	ChannelID       int64      `gorm:"uniqueIndex;not null" json:"channel_id"`
	IsActive        bool       `gorm:"not null;default:true;index" json:"is_active"`
	SubscriberCount *int       `json:"subscriber_count"`
	ColorFlag       *int       `json:"color_flag"`
	Notes           *string    `gorm:"type:text" json:"notes"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	LastScrapedAt   *time.Time `json:"last_scraped_at"`
	Posts           []Post     `gorm:"foreignKey:ChannelID;constraint:OnDelete:CASCADE" json:"-"`
}

// Ref returns the identity passed to the message source.
func (c Channel) Ref() ChannelRef {
	ref := ChannelRef{ChannelID: c.ChannelID}
	if c.Username != nil {
		ref.Username = *c.Username
	}
	return ref
}

// ChannelWithStats is a channel listing row enriched with stored-post totals.
// Averages are nil when the channel has no post with views.
type ChannelWithStats struct {
	Channel
	MessagesCount     int64      `gorm:"column:messages_count" json:"messages_count"`
	LatestMessageDate *time.Time `gorm:"column:latest_message_date" json:"latest_message_date"`
	AvgEngagementRate *float64   `gorm:"column:avg_engagement_rate" json:"avg_engagement_rate"`
	AvgViews          *float64   `gorm:"column:avg_views" json:"avg_views"`
}

// ChannelRef identifies a channel for the message source.
type ChannelRef struct {
	ChannelID int64
	Username  string
}

// ChannelMetadata is full channel information returned by the message source.
type ChannelMetadata struct {
	SubscriberCount *int
	Title           string
	Username        string
}

// DiscoveredChannel is a broadcast channel found in the account's dialogs.
type DiscoveredChannel struct {
	ChannelID int64  `json:"channel_id"`
	Title     string `json:"title"`
	Username  string `json:"username,omitempty"`
	CleanName string `json:"clean_name"`
}

const markedChannelPrefix = "-100"

// NormalizeChannelID strips the -100 marker Telegram clients put in front of
// channel ids. Other values are returned unchanged.
func NormalizeChannelID(id int64) int64 {
	if id >= 0 {
		return id
	}
	s := strconv.FormatInt(id, 10)
	if !strings.HasPrefix(s, markedChannelPrefix) || len(s) == len(markedChannelPrefix) {
		return id
	}
	bare, err := strconv.ParseInt(s[len(markedChannelPrefix):], 10, 64)
	if err != nil {
		return id
	}
	return bare
}
