package post

import (
	"net/http"

	"Chirp/internal/api/handlers"
	"Chirp/internal/core/posts"
)

// GetHandler handles single post lookups
type GetHandler struct {
	service posts.Service
}

// NewGetHandler creates a new get handler
func NewGetHandler(service posts.Service) *GetHandler {
	return &GetHandler{
		service: service,
	}
}

// HandleGet handles GET /xrpc/social.chirp.post.get?id=...
func (h *GetHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "id parameter is required")
		return
	}

	post, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, post)
}
