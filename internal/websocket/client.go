package websocket

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// Subscription frames are tiny; anything larger is a misbehaving peer
	maxFrameSize = 512
	sendBuffer   = 256
)

// SubscriptionUpdated is the type of the frame acknowledging a subscribe request
const SubscriptionUpdated = "subscription.updated"

// SubscribeRequest is the only frame a subscriber may send. Subscribe names
// the owner whose expense events it wants; an empty value follows every owner.
type SubscribeRequest struct {
	Subscribe *string `json:"subscribe"`
}

// SubscriptionAck is sent back after the owner filter changed
type SubscriptionAck struct {
	Type    string `json:"type"`
	OwnerID string `json:"ownerId"`
}

// ParseSubscribeRequest decodes an inbound frame. ok is false when the frame
// is not a subscribe request.
func ParseSubscribeRequest(data []byte) (ownerID string, ok bool) {
	var req SubscribeRequest
	if err := json.Unmarshal(data, &req); err != nil || req.Subscribe == nil {
		return "", false
	}
	return strings.TrimSpace(*req.Subscribe), true
}

// Client is one live-update subscriber following a single owner's expenses,
// or all of them when its owner filter is empty.
type Client struct {
	id   string
	conn *websocket.Conn
	hub  *Hub
	send chan []byte

	mu          sync.RWMutex
	ownerFilter string
	closed      bool
	closeOnce   sync.Once
}

// NewClient creates a subscriber for ownerFilter on conn
func NewClient(conn *websocket.Conn, ownerFilter string, hub *Hub) *Client {
	return &Client{
		id:          uuid.New().String(),
		ownerFilter: ownerFilter,
		conn:        conn,
		hub:         hub,
		send:        make(chan []byte, sendBuffer),
	}
}

// ID returns the client's unique identifier
func (c *Client) ID() string {
	return c.id
}

// OwnerFilter returns the owner the client currently follows
func (c *Client) OwnerFilter() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ownerFilter
}

// Subscribe switches the client to ownerID's events
func (c *Client) Subscribe(ownerID string) {
	c.mu.Lock()
	c.ownerFilter = ownerID
	c.mu.Unlock()
}

// Send queues an encoded event. A full buffer means the subscriber is not
// keeping up and counts as closed.
func (c *Client) Send(data []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return ErrClientClosed
	}
	select {
	case c.send <- data:
		return nil
	default:
		return ErrClientClosed
	}
}

// Close stops the client; later calls are no-ops
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		close(c.send)
		c.mu.Unlock()

		if c.conn != nil {
			err = c.conn.Close()
		}
	})
	return err
}

// Serve runs the client until the connection drops, then unregisters it
func (c *Client) Serve() {
	go c.writeEvents()
	c.readSubscriptions()
}

func (c *Client) readSubscriptions() {
	defer func() {
		c.hub.Unregister(c)
		c.Close()
	}()

	c.conn.SetReadLimit(maxFrameSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn().Err(err).Str("client_id", c.id).Msg("WebSocket unexpected close")
			}
			return
		}
		c.handleFrame(data)
	}
}

func (c *Client) handleFrame(data []byte) {
	ownerID, ok := ParseSubscribeRequest(data)
	if !ok {
		log.Debug().Str("client_id", c.id).Msg("Ignoring unknown WebSocket frame")
		return
	}

	c.Subscribe(ownerID)
	log.Debug().Str("client_id", c.id).Str("owner_filter", ownerID).Msg("WebSocket subscription changed")

	ack, err := json.Marshal(SubscriptionAck{Type: SubscriptionUpdated, OwnerID: ownerID})
	if err != nil {
		return
	}
	if err := c.Send(ack); err != nil {
		log.Warn().Err(err).Str("client_id", c.id).Msg("Failed to acknowledge subscription")
	}
}

func (c *Client) writeEvents() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Warn().Err(err).Str("client_id", c.id).Str("owner_filter", c.OwnerFilter()).Msg("WebSocket write error")
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
