package posts

import (
	"context"

	"Chirp/internal/core/ratelimit"
)

// Service defines the business logic interface for posts
type Service interface {
	// ListAll returns the newest posts across all authors (max ListAllLimit)
	ListAll(ctx context.Context) ([]*Post, error)

	// ListByAuthor returns the newest posts of one author (max ListAllLimit)
	ListByAuthor(ctx context.Context, authorID string) ([]*Post, error)

	// ListPage returns one cursor-paginated page of the feed
	ListPage(ctx context.Context, req ListPageRequest) (*Page, error)

	// GetByID returns a single post or ErrNotFound
	GetByID(ctx context.Context, id string) (*Post, error)

	// CreatePost creates a new post for an authenticated author
	// Flow: Validate -> Rate limit (check and increment) -> Persist -> Publish
	CreatePost(ctx context.Context, req CreatePostRequest) (*Post, error)
}

// Repository defines the data access interface for posts
type Repository interface {
	// Create inserts post, assigning CreatedAt and hydrating Author.
	// Returns ErrAuthorNotFound when the author has no user row.
	Create(ctx context.Context, post *Post) error

	// GetByID retrieves a post with its author, or ErrNotFound
	GetByID(ctx context.Context, id string) (*Post, error)

	// List returns up to q.Limit posts ordered by (createdAt DESC, id DESC),
	// restricted to q.Author and to keys strictly after q.Cursor
	List(ctx context.Context, q ListQuery) ([]*Post, error)
}

// WriteLimiter gates post creation per author.
// Limit must check and record the attempt in one atomic step.
type WriteLimiter interface {
	Limit(ctx context.Context, identifier string) (ratelimit.Decision, error)
}

// Publisher receives every successfully created post (live feed merge)
type Publisher interface {
	Publish(post *Post)
}

// PageFetcher is the slice of Service a FeedConsumer needs
type PageFetcher interface {
	ListPage(ctx context.Context, req ListPageRequest) (*Page, error)
}
