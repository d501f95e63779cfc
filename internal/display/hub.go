// Package display streams session events to customer-facing screens.
package display

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"

	"github.com/noah-isme/kasir-scan/internal/events"
)

const clientBuffer = 64

// Message is one server-sent event frame.
type Message struct {
	Name string
	Data []byte
}

// Client is a connected display.
type Client struct {
	ID       string
	Messages chan Message
}

// Hub tracks connected displays and fans events out to them. It implements
// events.Notifier.
type Hub struct {
	logger *zerolog.Logger

	mu      sync.RWMutex
	clients map[string]*Client
}

// NewHub creates an empty hub. logger may be nil.
func NewHub(logger *zerolog.Logger) *Hub {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Hub{logger: logger, clients: make(map[string]*Client)}
}

// Register adds a client. Registering an existing id replaces it.
func (h *Hub) Register(id string) *Client {
	h.mu.Lock()
	defer h.mu.Unlock()

	if prev, ok := h.clients[id]; ok {
		close(prev.Messages)
	}
	c := &Client{ID: id, Messages: make(chan Message, clientBuffer)}
	h.clients[id] = c
	h.logger.Info().Str("client_id", id).Int("total_clients", len(h.clients)).Msg("display connected")
	return c
}

// Unregister removes a client and closes its channel.
func (h *Hub) Unregister(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if c, ok := h.clients[id]; ok {
		close(c.Messages)
		delete(h.clients, id)
		h.logger.Info().Str("client_id", id).Int("total_clients", len(h.clients)).Msg("display disconnected")
	}
}

// Broadcast queues msg for every client. Clients with a full buffer miss it.
func (h *Hub) Broadcast(msg Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, c := range h.clients {
		select {
		case c.Messages <- msg:
		default:
			h.logger.Warn().Str("client_id", c.ID).Str("event", msg.Name).Msg("display buffer full, dropping event")
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Notify implements events.Notifier by broadcasting the event under its topic.
func (h *Hub) Notify(_ context.Context, event events.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	h.Broadcast(Message{Name: event.Topic, Data: data})
	return nil
}
