package routes

import (
	"Chirp/internal/api/handlers/post"
	"Chirp/internal/api/middleware"
	"Chirp/internal/core/posts"
	"Chirp/internal/core/users"

	"github.com/go-chi/chi/v5"
)

// RegisterPostRoutes registers post-related XRPC endpoints on the router
// Implements social.chirp.post.* endpoints
func RegisterPostRoutes(
	r chi.Router,
	service posts.Service,
	userService users.UserService,
	authMiddleware *middleware.AuthMiddleware,
) {
	listHandler := post.NewListHandler(service)
	getHandler := post.NewGetHandler(service)
	createHandler := post.NewCreateHandler(service, userService)

	// Query endpoints (GET) - public
	r.Get("/xrpc/social.chirp.post.listAll", listHandler.HandleListAll)
	r.Get("/xrpc/social.chirp.post.listByAuthor", listHandler.HandleListByAuthor)
	r.Get("/xrpc/social.chirp.post.listPage", listHandler.HandleListPage)
	r.Get("/xrpc/social.chirp.post.get", getHandler.HandleGet)

	// Procedure endpoints (POST) - require authentication
	// social.chirp.post.create is rate limited per author by the post service
	r.With(authMiddleware.RequireAuth).Post("/xrpc/social.chirp.post.create", createHandler.HandleCreate)
}
