// Package ws fans simulation output out to websocket subscribers. Delivery
// is best-effort: a slow or dead client is dropped, never waited on.
package ws

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// Envelope is the wire format for every broadcast message.
type Envelope struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Hub tracks connected clients and replicates messages to them.
type Hub struct {
	mu      sync.Mutex
	clients map[*Client]struct{}
	log     *slog.Logger

	// ClientCountChanged is called with the new count after every connect
	// or disconnect, when set.
	ClientCountChanged func(n int)
}

// NewHub creates an empty hub.
func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		log:     log,
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	cb := h.ClientCountChanged
	h.mu.Unlock()

	h.log.Info("websocket client connected", "clients", n)
	if cb != nil {
		cb(n)
	}
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)
	close(c.send)
	n := len(h.clients)
	cb := h.ClientCountChanged
	h.mu.Unlock()

	h.log.Info("websocket client disconnected", "clients", n)
	if cb != nil {
		cb(n)
	}
}

// ClientCount returns the number of connected subscribers.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Broadcast sends an enveloped message to every client. Clients whose send
// buffer is full are dropped; the caller is never blocked.
func (h *Hub) Broadcast(event string, data any) {
	payload, err := json.Marshal(Envelope{Type: event, Data: data})
	if err != nil {
		h.log.Error("broadcast marshal failed", "event", event, "err", err)
		return
	}

	h.mu.Lock()
	var dead []*Client
	for c := range h.clients {
		select {
		case c.send <- payload:
		default:
			dead = append(dead, c)
		}
	}
	h.mu.Unlock()

	for _, c := range dead {
		h.log.Warn("dropping slow websocket client")
		h.unregister(c)
		c.conn.Close()
	}
}
