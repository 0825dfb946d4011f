package actor

import (
	"errors"
	"log/slog"
	"net/http"

	"Chirp/internal/api/handlers"
	"Chirp/internal/core/users"
)

// handleServiceError maps service errors to HTTP responses
func handleServiceError(w http.ResponseWriter, err error) {
	var invalid *users.InvalidUserError

	switch {
	case users.IsNotFound(err):
		handlers.WriteError(w, http.StatusNotFound, "ActorNotFound", "Actor not found")

	case errors.As(err, &invalid):
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", invalid.Error())

	default:
		slog.Error("unexpected error in actor handler", slog.String("error", err.Error()))
		handlers.WriteError(w, http.StatusInternalServerError, "InternalServerError", "An internal error occurred")
	}
}
