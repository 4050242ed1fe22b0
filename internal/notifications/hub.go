package notifications

import (
	"context"
	"errors"
	"sync"

	"tgscraper/internal/observability"

	"github.com/gofiber/websocket/v2"
)

// maxWatchers caps concurrent scrape event subscribers per instance.
const maxWatchers = 256

// ErrHubFull is returned by Register when maxWatchers is reached.
var ErrHubFull = errors.New("scrape event hub connection limit reached")

// Hub relays scrape events from Redis to every connected websocket client.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	closed  bool
	logger  *observability.WSLogger
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		logger:  observability.NewWSLogger("scrape hub"),
	}
}

// Name returns a human-readable identifier for this hub.
func (h *Hub) Name() string { return "scrape hub" }

// Register adds a client for conn.
func (h *Hub) Register(conn *websocket.Conn) (*Client, error) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil, errors.New("scrape event hub is shut down")
	}
	if len(h.clients) >= maxWatchers {
		h.mu.Unlock()
		return nil, ErrHubFull
	}
	client := NewClient(h, conn)
	h.clients[client] = struct{}{}
	h.mu.Unlock()

	observability.WebSocketConnectionsTotal.Inc()
	h.logger.LogConnect(context.Background(), client.ID)
	return client, nil
}

// UnregisterClient removes c and closes its send buffer. Safe to call twice.
func (h *Hub) UnregisterClient(c *Client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
		close(c.Send)
	}
	h.mu.Unlock()

	if ok {
		observability.WebSocketConnectionsTotal.Dec()
		h.logger.LogDisconnect(context.Background(), c.ID, "unregistered")
	}
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// BroadcastAll sends message to every connected websocket client.
func (h *Hub) BroadcastAll(message string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	data := []byte(message)
	for c := range h.clients {
		c.TrySend(data)
	}
}

// StartWiring subscribes to scrape events through n and relays each one.
func (h *Hub) StartWiring(ctx context.Context, n *Notifier) error {
	return n.StartScrapeSubscriber(ctx, h.BroadcastAll)
}

// Shutdown sends a close frame to every client and drops them.
func (h *Hub) Shutdown(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true

	for client := range h.clients {
		if client.Conn != nil {
			_ = client.Conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "Server shutting down"))
			_ = client.Conn.Close()
		}
		close(client.Send)
		delete(h.clients, client)
		observability.WebSocketConnectionsTotal.Dec()
	}
	h.logger.LogLifecycle(context.Background(), "shutdown", nil)
	return nil
}
