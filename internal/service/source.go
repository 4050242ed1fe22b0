// Package service holds the application use cases that sit between HTTP
// handlers and repositories.
package service

import (
	"context"
	"errors"

	"tgscraper/internal/models"
	"tgscraper/internal/notifications"
)

var (
	// ErrScrapeInProgress is returned when a scrape run is already executing.
	ErrScrapeInProgress = errors.New("scrape already in progress")
	// ErrSourceUnavailable is returned when no message source is configured.
	ErrSourceUnavailable = errors.New("message source not configured")
)

// PostSource is the read side of the Telegram client.
type PostSource interface {
	// FetchRecentPosts returns up to limit posts, newest first.
	FetchRecentPosts(ctx context.Context, ref models.ChannelRef, limit int) ([]models.FetchedPost, error)
	FetchChannelMetadata(ctx context.Context, ref models.ChannelRef) (models.ChannelMetadata, error)
	FetchPost(ctx context.Context, ref models.ChannelRef, messageID int) (models.FetchedPost, error)
}

// ChannelDiscoverer lists broadcast channels the account is subscribed to.
type ChannelDiscoverer interface {
	DiscoverChannels(ctx context.Context) ([]models.DiscoveredChannel, error)
}

// EventPublisher fans scrape progress out to subscribers.
type EventPublisher interface {
	PublishScrapeEvent(ctx context.Context, ev notifications.ScrapeEvent) error
}

// AlertSender delivers a plain-text report.
type AlertSender interface {
	Send(ctx context.Context, text string) error
}

func sourceUnavailable() error {
	return models.NewUnavailableError("Message source not configured", ErrSourceUnavailable)
}
