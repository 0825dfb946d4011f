package routes

import (
	"Chirp/internal/api/handlers/actor"
	"Chirp/internal/core/users"

	"github.com/go-chi/chi/v5"
)

// RegisterActorRoutes registers actor-related XRPC endpoints
func RegisterActorRoutes(r chi.Router, userService users.UserService) {
	getProfileHandler := actor.NewGetProfileHandler(userService)

	// GET /xrpc/social.chirp.actor.getProfile
	// Public endpoint, actor is a username or user id
	r.Get("/xrpc/social.chirp.actor.getProfile", getProfileHandler.HandleGetProfile)
}
