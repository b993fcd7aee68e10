package websocket

import (
	"errors"
	"sync"

	"github.com/rs/zerolog/log"
)

// ErrClientClosed is returned when attempting to send to a closed client
var ErrClientClosed = errors.New("client is closed")

// ClientInterface defines the interface that clients must implement
type ClientInterface interface {
	ID() string
	// OwnerFilter returns the owner the client subscribed to, or "" for all owners
	OwnerFilter() string
	Send(data []byte) error
	Close() error
}

// Hub manages live-update connections.
// It is safe for concurrent use
type Hub struct {
	clients map[string]ClientInterface
	mu      sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]ClientInterface),
	}
}

// Register adds a client to the hub
func (h *Hub) Register(client ClientInterface) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client.ID()] = client

	log.Debug().
		Str("client_id", client.ID()).
		Str("owner_filter", client.OwnerFilter()).
		Msg("WebSocket client registered")
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client ClientInterface) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.clients[client.ID()]; exists {
		delete(h.clients, client.ID())
		log.Debug().
			Str("client_id", client.ID()).
			Msg("WebSocket client unregistered")
	}
}

// wants reports whether a client with ownerFilter should receive event.
// Events without an owner go to everyone.
func wants(ownerFilter string, event Event) bool {
	return ownerFilter == "" || event.OwnerID == "" || ownerFilter == event.OwnerID
}

// Broadcast sends an event to every client whose owner filter matches it
func (h *Hub) Broadcast(event Event) {
	data, err := event.ToJSON()
	if err != nil {
		log.Error().
			Err(err).
			Str("event_type", event.Type).
			Msg("Failed to serialize event")
		return
	}

	h.mu.RLock()
	// Copy clients to avoid holding lock during send
	recipients := make([]ClientInterface, 0, len(h.clients))
	for _, client := range h.clients {
		if wants(client.OwnerFilter(), event) {
			recipients = append(recipients, client)
		}
	}
	h.mu.RUnlock()

	if len(recipients) == 0 {
		return
	}

	for _, client := range recipients {
		go func(c ClientInterface) {
			if err := c.Send(data); err != nil {
				log.Warn().
					Err(err).
					Str("client_id", c.ID()).
					Msg("Failed to send to client")
			}
		}(client)
	}

	log.Debug().
		Str("event_type", event.Type).
		Str("owner_id", event.OwnerID).
		Int("client_count", len(recipients)).
		Msg("Broadcast event")
}

// ClientCount returns the number of clients that would receive events for ownerID
func (h *Hub) ClientCount(ownerID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	count := 0
	for _, client := range h.clients {
		if wants(client.OwnerFilter(), Event{OwnerID: ownerID}) {
			count++
		}
	}
	return count
}

// TotalClientCount returns the total number of connected clients
func (h *Hub) TotalClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
