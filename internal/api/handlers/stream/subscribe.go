package stream

import (
	"log/slog"
	"net/http"
	"time"

	"Chirp/internal/core/livefeed"
	"Chirp/internal/core/posts"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

// SubscribeHandler streams newly created posts over a WebSocket
type SubscribeHandler struct {
	hub      *livefeed.Hub
	upgrader websocket.Upgrader
}

// NewSubscribeHandler creates a new subscribe handler.
// checkOrigin may be nil to accept same-origin requests only.
func NewSubscribeHandler(hub *livefeed.Hub, checkOrigin func(r *http.Request) bool) *SubscribeHandler {
	return &SubscribeHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     checkOrigin,
		},
	}
}

// HandleSubscribe handles GET /xrpc/social.chirp.post.subscribe?authorId=...
// Each new post matching the filter is sent as one JSON text message
func (h *SubscribeHandler) HandleSubscribe(w http.ResponseWriter, r *http.Request) {
	filter := posts.Unfiltered()
	if authorID := r.URL.Query().Get("authorId"); authorID != "" {
		filter = posts.ByAuthor(authorID)
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error
		slog.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}
	defer func() {
		if closeErr := conn.Close(); closeErr != nil {
			slog.Debug("failed to close websocket", slog.String("error", closeErr.Error()))
		}
	}()

	sub := h.hub.Subscribe(filter)
	defer sub.Close()

	slog.Info("live feed subscriber connected", slog.String("filter", filter.String()))

	// Reader: handles pongs and notices when the client goes away
	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadLimit(512)
		if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			return
		}
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case post, ok := <-sub.C:
			if !ok {
				return
			}
			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := conn.WriteJSON(post); err != nil {
				slog.Debug("live feed write failed", slog.String("error", err.Error()))
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
