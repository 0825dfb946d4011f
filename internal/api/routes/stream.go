package routes

import (
	"net/http"

	"Chirp/internal/api/handlers/stream"
	"Chirp/internal/core/livefeed"

	"github.com/go-chi/chi/v5"
)

// RegisterStreamRoutes registers the live post stream
func RegisterStreamRoutes(r chi.Router, hub *livefeed.Hub, allowedOrigins []string) {
	subscribeHandler := stream.NewSubscribeHandler(hub, originChecker(allowedOrigins))

	// GET /xrpc/social.chirp.post.subscribe (WebSocket)
	r.Get("/xrpc/social.chirp.post.subscribe", subscribeHandler.HandleSubscribe)
}

// originChecker allows the configured browser origins; with none configured
// the upgrader falls back to same-origin checks
func originChecker(allowedOrigins []string) func(r *http.Request) bool {
	if len(allowedOrigins) == 0 {
		return nil
	}
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		if origin == "*" {
			return func(r *http.Request) bool { return true }
		}
		allowed[origin] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := allowed[origin]
		return ok
	}
}
