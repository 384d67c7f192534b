package realtime

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/georgemunganga/printpress-backend/internal/metrics"
)

var ErrHubClosed = errors.New("realtime: hub closed")

// Hub is the registry of live connections. Every connection is kept in
// clients; admin connections are also kept in admins.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	admins  map[*Client]struct{}
	closed  bool
	logger  *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		admins:  make(map[*Client]struct{}),
		logger:  logger,
	}
}

// Register adds an authenticated client.
func (h *Hub) Register(c *Client) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrHubClosed
	}
	h.clients[c] = struct{}{}
	c.hub.Store(h)
	if c.identity.IsAdmin() {
		h.admins[c] = struct{}{}
	}
	metrics.RealtimeConnections.WithLabelValues(string(c.identity.Role)).Inc()
	h.logger.Info("realtime client registered",
		"user_id", c.identity.UserID, "role", c.identity.Role, "connection_id", c.id)
	return nil
}

// Unregister removes c from every set. Safe to call more than once.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	delete(h.admins, c)
	h.mu.Unlock()

	if ok {
		metrics.RealtimeConnections.WithLabelValues(string(c.identity.Role)).Dec()
		h.logger.Info("realtime client unregistered", "user_id", c.identity.UserID, "connection_id", c.id)
	}
}

// BroadcastToAdmins queues msg on every open admin connection and returns the
// number of connections that accepted it. It never waits on a peer; stalled
// or failed connections are dropped.
func (h *Hub) BroadcastToAdmins(msg Message) int {
	h.mu.RLock()
	targets := make([]*Client, 0, len(h.admins))
	for c := range h.admins {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	return h.deliver(targets, msg)
}

// BroadcastToUser queues msg on every connection of userID and reports
// whether at least one accepted it.
func (h *Hub) BroadcastToUser(userID uuid.UUID, msg Message) bool {
	h.mu.RLock()
	var targets []*Client
	for c := range h.clients {
		if c.identity.UserID == userID {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()

	return h.deliver(targets, msg) > 0
}

func (h *Hub) deliver(targets []*Client, msg Message) int {
	if len(targets) == 0 {
		return 0
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("realtime marshal failed", "type", msg.Type, "error", err)
		return 0
	}

	sent := 0
	for _, c := range targets {
		if err := c.write(payload); err != nil {
			h.drop(c, err)
			continue
		}
		metrics.RealtimeMessagesSent.WithLabelValues("sent").Inc()
		sent++
	}
	return sent
}

// drop unregisters and closes a connection that cannot take more frames.
func (h *Hub) drop(c *Client, err error) {
	metrics.RealtimeMessagesSent.WithLabelValues("failed").Inc()
	h.logger.Warn("realtime send failed, dropping connection",
		"user_id", c.identity.UserID, "connection_id", c.id, "error", err)
	h.Unregister(c)
	_ = c.Close()
}

// ConnectedUsers lists every open connection, oldest first.
func (h *Hub) ConnectedUsers() []ClientInfo {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return snapshot(h.clients)
}

// ConnectedAdmins lists open admin connections, oldest first.
func (h *Hub) ConnectedAdmins() []ClientInfo {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return snapshot(h.admins)
}

func snapshot(set map[*Client]struct{}) []ClientInfo {
	out := make([]ClientInfo, 0, len(set))
	for c := range set {
		out = append(out, c.Info())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ConnectedAt.Before(out[j].ConnectedAt) })
	return out
}

// Close disconnects every client and refuses new registrations.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.clients = make(map[*Client]struct{})
	h.admins = make(map[*Client]struct{})
	h.mu.Unlock()

	for _, c := range clients {
		metrics.RealtimeConnections.WithLabelValues(string(c.identity.Role)).Dec()
		_ = c.Close()
	}
	h.logger.Info("realtime hub closed", "connections", len(clients))
}
