package server

import (
	"errors"
	"log"

	"tgscraper/internal/models"
	"tgscraper/internal/notifications"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// ScrapeEventsHandler streams scrape events to WebSocket watchers.
// @Summary Scrape event stream
// @Description WebSocket. Relays scrape.started, scrape.channel_completed and scrape.completed events.
// @Tags scrape
// @Param token query string false "Admin token when auth is enabled"
// @Success 101
// @Failure 426 {object} models.ErrorResponse
// @Failure 503 {object} models.ErrorResponse
// @Router /ws/scrape [get]
func (s *Server) ScrapeEventsHandler() fiber.Handler {
	upgrade := websocket.New(func(conn *websocket.Conn) {
		client, err := s.hub.Register(conn)
		if err != nil {
			log.Printf("WebSocket scrape: failed to register watcher: %v", err)
			msg := `{"error":"registration failed"}`
			if errors.Is(err, notifications.ErrHubFull) {
				msg = `{"error":"too many watchers"}`
			}
			_ = conn.WriteMessage(websocket.TextMessage, []byte(msg))
			_ = conn.Close()
			return
		}

		go client.WritePump()
		client.ReadPump()
	})

	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return models.RespondWithError(c, fiber.StatusUpgradeRequired,
				models.NewValidationError("WebSocket upgrade required"))
		}
		if s.hub == nil {
			return models.RespondWithError(c, fiber.StatusServiceUnavailable,
				models.NewUnavailableError("Scrape events require Redis", nil))
		}
		return upgrade(c)
	}
}
