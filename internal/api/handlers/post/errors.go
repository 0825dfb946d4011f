package post

import (
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"Chirp/internal/api/handlers"
	"Chirp/internal/core/posts"
	"Chirp/internal/core/users"
)

// writeError writes a JSON error response
func writeError(w http.ResponseWriter, statusCode int, errorType, message string) {
	handlers.WriteError(w, statusCode, errorType, message)
}

// handleServiceError maps service errors to HTTP responses
func handleServiceError(w http.ResponseWriter, err error) {
	var (
		valErr  *posts.ValidationError
		rateErr *posts.RateLimitError
		userErr *users.InvalidUserError
	)

	switch {
	case errors.Is(err, posts.ErrInvalidCursor):
		writeError(w, http.StatusBadRequest, "InvalidCursor", "Cursor must carry both createdAt and id")

	case errors.As(err, &valErr):
		writeError(w, http.StatusBadRequest, "InvalidRequest", valErr.Message)

	case errors.As(err, &userErr):
		writeError(w, http.StatusBadRequest, "InvalidRequest", userErr.Error())

	case errors.Is(err, users.ErrUsernameTaken):
		writeError(w, http.StatusConflict, "UsernameTaken", "Username already belongs to another user")

	case posts.IsNotFound(err):
		writeError(w, http.StatusNotFound, "PostNotFound", "Post not found")

	case errors.Is(err, posts.ErrAuthRequired):
		writeError(w, http.StatusUnauthorized, "AuthenticationRequired", "Authentication required")

	case errors.As(err, &rateErr):
		w.Header().Set("Retry-After", retryAfterSeconds(rateErr))
		writeError(w, http.StatusTooManyRequests, "RateLimitExceeded",
			"Rate limit exceeded. Please try again later.")

	case errors.Is(err, posts.ErrRateLimiterUnavailable):
		slog.Error("post write rejected, rate limiter unavailable", slog.String("error", err.Error()))
		writeError(w, http.StatusServiceUnavailable, "ServiceUnavailable",
			"Posting is temporarily unavailable. Please try again later.")

	default:
		// Don't leak internal error details to clients
		slog.Error("unexpected error in post handler", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "InternalServerError",
			"An internal error occurred")
	}
}

// retryAfterSeconds renders the wait hint as whole seconds, rounded up
func retryAfterSeconds(err *posts.RateLimitError) string {
	secs := int(math.Ceil(err.RetryAfter.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}
