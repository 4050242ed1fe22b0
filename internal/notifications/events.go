package notifications

import (
	"encoding/json"
	"fmt"
	"time"
)

// Scrape event types published on ScrapeEventsChannel.
const (
	EventScrapeStarted          = "scrape.started"
	EventScrapeChannelCompleted = "scrape.channel_completed"
	EventScrapeCompleted        = "scrape.completed"
)

// ScrapeEventsChannel is the Redis pub/sub channel carrying scrape progress.
const ScrapeEventsChannel = "scrape:events"

// ScrapeEvent is the envelope written to Redis and relayed to WebSocket clients.
type ScrapeEvent struct {
	Type      string          `json:"type"`
	RunID     string          `json:"run_id"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// NewScrapeEvent marshals payload into a timestamped envelope.
func NewScrapeEvent(eventType, runID string, payload any) (ScrapeEvent, error) {
	ev := ScrapeEvent{Type: eventType, RunID: runID, Timestamp: time.Now().UTC()}
	if payload == nil {
		return ev, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return ScrapeEvent{}, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	ev.Payload = raw
	return ev, nil
}
