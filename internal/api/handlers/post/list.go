package post

import (
	"net/http"
	"strconv"
	"time"

	"Chirp/internal/api/handlers"
	"Chirp/internal/core/posts"
)

// ListHandler serves the read side of the feed
type ListHandler struct {
	service posts.Service
}

// NewListHandler creates a new list handler
func NewListHandler(service posts.Service) *ListHandler {
	return &ListHandler{
		service: service,
	}
}

// HandleListAll handles GET /xrpc/social.chirp.post.listAll
// Returns the 100 newest posts across all authors
func (h *ListHandler) HandleListAll(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.ListAll(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, posts.ListPostsResponse{Posts: result})
}

// HandleListByAuthor handles GET /xrpc/social.chirp.post.listByAuthor?authorId=...
func (h *ListHandler) HandleListByAuthor(w http.ResponseWriter, r *http.Request) {
	authorID := r.URL.Query().Get("authorId")
	if authorID == "" {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "authorId parameter is required")
		return
	}

	result, err := h.service.ListByAuthor(r.Context(), authorID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, posts.ListPostsResponse{Posts: result})
}

// HandleListPage handles
// GET /xrpc/social.chirp.post.listPage?limit=5&cursorCreatedAt=...&cursorId=...&authorId=...
func (h *ListHandler) HandleListPage(w http.ResponseWriter, r *http.Request) {
	req, err := parsePageRequest(r)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	page, err := h.service.ListPage(r.Context(), req)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, page)
}

// parsePageRequest parses query parameters into a ListPageRequest
func parsePageRequest(r *http.Request) (posts.ListPageRequest, error) {
	q := r.URL.Query()
	req := posts.ListPageRequest{
		Limit:  posts.DefaultPageLimit,
		Author: posts.Unfiltered(),
	}

	// Optional: limit (default: 5, max: 100); range is enforced by the service
	if limitStr := q.Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			return req, posts.NewValidationError("limit", "limit must be a valid integer")
		}
		req.Limit = limit
	}

	if authorID := q.Get("authorId"); authorID != "" {
		req.Author = posts.ByAuthor(authorID)
	}

	// Optional: cursor, both halves or neither
	createdAtStr, cursorID := q.Get("cursorCreatedAt"), q.Get("cursorId")
	if createdAtStr == "" && cursorID == "" {
		return req, nil
	}
	if createdAtStr == "" || cursorID == "" {
		return req, posts.ErrInvalidCursor
	}
	createdAt, err := time.Parse(time.RFC3339Nano, createdAtStr)
	if err != nil {
		return req, posts.ErrInvalidCursor
	}
	req.Cursor = &posts.Cursor{CreatedAt: createdAt, ID: cursorID}

	return req, nil
}
