package actor

import (
	"net/http"

	"Chirp/internal/api/handlers"
	"Chirp/internal/core/users"
)

// maxActorLength bounds the actor parameter (ids are at most 255 characters)
const maxActorLength = 255

// GetProfileHandler handles actor profile lookups
type GetProfileHandler struct {
	userService users.UserService
}

// NewGetProfileHandler creates a new profile handler
func NewGetProfileHandler(userService users.UserService) *GetProfileHandler {
	return &GetProfileHandler{userService: userService}
}

// HandleGetProfile handles GET /xrpc/social.chirp.actor.getProfile?actor={username_or_id}
func (h *GetProfileHandler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	actor := r.URL.Query().Get("actor")
	if actor == "" {
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", "actor parameter is required")
		return
	}
	if len(actor) > maxActorLength {
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", "actor parameter exceeds maximum length")
		return
	}

	profile, err := h.userService.GetProfile(r.Context(), actor)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	handlers.WriteJSON(w, http.StatusOK, profile)
}
