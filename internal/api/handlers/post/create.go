package post

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"Chirp/internal/api/handlers"
	"Chirp/internal/api/middleware"
	"Chirp/internal/core/posts"
	"Chirp/internal/core/users"
)

// maxBodyBytes bounds the create request; content is at most 255 characters
const maxBodyBytes = 16 * 1024

// CreateHandler handles post creation requests
type CreateHandler struct {
	service     posts.Service
	userService users.UserService
}

// NewCreateHandler creates a new create handler
func NewCreateHandler(service posts.Service, userService users.UserService) *CreateHandler {
	return &CreateHandler{
		service:     service,
		userService: userService,
	}
}

// HandleCreate handles POST /xrpc/social.chirp.post.create
// Creates a new post authored by the authenticated user
func (h *CreateHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	// 1. Limit request body size
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	// 2. Read and check the body against the input schema
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "RequestTooLarge",
				"Request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "InvalidRequest", "Invalid request body")
		return
	}
	if err := validateCreateInput(body); err != nil {
		writeError(w, http.StatusBadRequest, "InvalidRequest", err.Error())
		return
	}

	var req posts.CreatePostRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "Invalid request body")
		return
	}

	// 3. Author comes from the authenticated session; a client-provided
	// authorId is rejected by the schema above
	userID := middleware.GetUserID(r)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "AuthenticationRequired", "Authentication required")
		return
	}
	req.AuthorID = userID

	// 4. Reject bad content before indexing the author touches the database
	if err := posts.ValidateContent(req.Content); err != nil {
		handleServiceError(w, err)
		return
	}

	// 5. Make sure the author row exists and carries fresh claims
	if claims := middleware.GetJWTClaims(r); claims != nil {
		if _, err := h.userService.IndexUser(r.Context(), users.IndexUserRequest{
			ID:              userID,
			Username:        claims.Username,
			FirstName:       claims.FirstName,
			ProfileImageURL: claims.ImageURL,
		}); err != nil {
			handleServiceError(w, err)
			return
		}
	}

	// 6. Validate, rate limit and persist
	post, err := h.service.CreatePost(r.Context(), req)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	handlers.WriteJSON(w, http.StatusOK, post)
}
