package models

import "time"

// Post represents one stored channel message with its engagement metrics.
type Post struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	ChannelID       uint      `gorm:"not null;uniqueIndex:idx_channel_message,priority:1" json:"channel_id"`
	MessageID       int       `gorm:"not null;uniqueIndex:idx_channel_message,priority:2" json:"message_id"`
	Date            time.Time `gorm:"not null;index" json:"date"`
	Text            string    `gorm:"type:text" json:"text"`
	Views           int       `gorm:"not null;default:0" json:"views"`
	Forwards        int       `gorm:"not null;default:0" json:"forwards"`
	Replies         int       `gorm:"not null;default:0" json:"replies"`
	TotalReactions  int       `gorm:"not null;default:0" json:"total_reactions"`
	EngagementCount int       `gorm:"not null;default:0;index" json:"engagement_count"`
	EngagementRate  float64   `gorm:"not null;default:0;index" json:"engagement_rate"`
	PostLength      int       `gorm:"not null;default:0" json:"post_length"`
	RawJSON         *string   `gorm:"column:raw_json;type:text" json:"-"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
