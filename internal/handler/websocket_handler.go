package handler

import (
	"net/http"
	"strings"

	"github.com/dafibh/giderler/giderler-backend/internal/websocket"
	ws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// WebSocketHandler handles WebSocket connections
type WebSocketHandler struct {
	hub            *websocket.Hub
	allowedOrigins map[string]bool
	upgrader       ws.Upgrader
}

// NewWebSocketHandler creates a new WebSocketHandler
func NewWebSocketHandler(hub *websocket.Hub, allowedOrigins []string) *WebSocketHandler {
	originMap := make(map[string]bool)
	for _, origin := range allowedOrigins {
		originMap[origin] = true
	}

	h := &WebSocketHandler{
		hub:            hub,
		allowedOrigins: originMap,
	}

	h.upgrader = ws.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}

	return h
}

// checkOrigin validates the request origin against allowed origins
func (h *WebSocketHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		// Non-browser clients send no Origin header
		return true
	}

	if h.allowedOrigins[origin] {
		return true
	}

	log.Warn().
		Str("origin", origin).
		Msg("WebSocket connection rejected: origin not allowed")
	return false
}

// HandleWS godoc
// @Summary Subscribe to expense changes
// @Description Upgrade to a WebSocket that receives expense events. With ownerId only that owner's events (and unowned ones) are delivered. Sending {"subscribe": "<ownerId>"} switches the owner; an empty value follows every owner.
// @Tags realtime
// @Param ownerId query string false "Only receive events for this owner"
// @Success 101 "Switching Protocols"
// @Router /ws [get]
func (h *WebSocketHandler) HandleWS(c echo.Context) error {
	ownerFilter := strings.TrimSpace(c.QueryParam("ownerId"))

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		log.Error().Err(err).Msg("WebSocket upgrade failed")
		return err
	}

	client := websocket.NewClient(conn, ownerFilter, h.hub)
	h.hub.Register(client)

	log.Info().
		Str("owner_filter", ownerFilter).
		Str("client_id", client.ID()).
		Msg("WebSocket client connected")

	go client.Serve()

	return nil
}
