package posts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"Chirp/internal/core/ratelimit"

	"github.com/google/uuid"
	"github.com/rivo/uniseg"
)

// maxIDLength bounds post and author identifiers accepted from clients
const maxIDLength = 255

type postService struct {
	repo      Repository
	limiter   WriteLimiter
	publisher Publisher
	newID     func() (string, error)
}

// NewPostService creates a new post service
// publisher can be nil if live feed merging is not needed (e.g., in tests or minimal setups)
func NewPostService(
	repo Repository,
	limiter WriteLimiter,
	publisher Publisher, // Optional: can be nil
) Service {
	return &postService{
		repo:      repo,
		limiter:   limiter,
		publisher: publisher,
		newID:     newPostID,
	}
}

// newPostID returns a UUIDv7: unique, and its string order follows creation order
func newPostID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// ListAll returns the newest posts across all authors
func (s *postService) ListAll(ctx context.Context) ([]*Post, error) {
	rows, err := s.repo.List(ctx, ListQuery{Author: Unfiltered(), Limit: ListAllLimit})
	if err != nil {
		return nil, NewStorageError("list posts", err)
	}
	return nonNil(rows), nil
}

// ListByAuthor returns the newest posts of one author
func (s *postService) ListByAuthor(ctx context.Context, authorID string) ([]*Post, error) {
	if err := validateID("authorId", authorID); err != nil {
		return nil, err
	}

	rows, err := s.repo.List(ctx, ListQuery{Author: ByAuthor(authorID), Limit: ListAllLimit})
	if err != nil {
		return nil, NewStorageError("list author posts", err)
	}
	return nonNil(rows), nil
}

// ListPage returns one page of the feed in (createdAt DESC, id DESC) order.
//
// One row more than requested is fetched: if it comes back, more posts exist
// and the cursor is anchored on the last post actually returned. The cursor is
// an exclusive bound, so the next page starts exactly at the dropped row no
// matter how many posts were inserted at the head of the feed in between.
func (s *postService) ListPage(ctx context.Context, req ListPageRequest) (*Page, error) {
	if req.Limit < MinPageLimit || req.Limit > MaxPageLimit {
		return nil, NewValidationError("limit",
			fmt.Sprintf("limit must be between %d and %d", MinPageLimit, MaxPageLimit))
	}
	if req.Cursor != nil {
		if err := req.Cursor.Validate(); err != nil {
			return nil, err
		}
	}
	if authorID, scoped := req.Author.AuthorID(); scoped {
		if err := validateID("authorId", authorID); err != nil {
			return nil, err
		}
	}

	start := time.Now()
	rows, err := s.repo.List(ctx, ListQuery{
		Author: req.Author,
		Cursor: req.Cursor,
		Limit:  req.Limit + 1,
	})
	pageFetchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		pageFetchErrors.Inc()
		return nil, NewStorageError("list page", err)
	}

	page := &Page{Posts: nonNil(rows)}
	if len(page.Posts) > req.Limit {
		page.Posts = page.Posts[:req.Limit]
		page.NextCursor = CursorOf(page.Posts[req.Limit-1])
	}
	return page, nil
}

// GetByID returns a single post
func (s *postService) GetByID(ctx context.Context, id string) (*Post, error) {
	if err := validateID("id", id); err != nil {
		return nil, err
	}

	post, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, NewStorageError("get post", err)
	}
	return post, nil
}

// CreatePost creates a new post
// Flow:
// 1. Validate content (cheap checks before any I/O)
// 2. Require an authenticated author
// 3. Check and record one attempt against the author's write quota
// 4. Persist with a server-assigned id and creation time
// 5. Publish to live subscribers
//
// The quota is consumed before the insert. A failed insert therefore costs the
// author one unit of quota; a stored post is never left uncounted.
func (s *postService) CreatePost(ctx context.Context, req CreatePostRequest) (*Post, error) {
	if err := ValidateContent(req.Content); err != nil {
		return nil, err
	}

	if strings.TrimSpace(req.AuthorID) == "" {
		return nil, ErrAuthRequired
	}
	if err := validateID("authorId", req.AuthorID); err != nil {
		return nil, err
	}

	decision, err := s.limiter.Limit(ctx, req.AuthorID)
	if err != nil {
		slog.Error("rate limit check failed",
			slog.String("author", req.AuthorID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("%w: %v", ErrRateLimiterUnavailable, err)
	}
	if !decision.Admitted {
		slog.Info("rate limit exceeded",
			slog.String("author", req.AuthorID),
			slog.Duration("retry_after", decision.RetryAfter),
		)
		return nil, &RateLimitError{Limit: decision.Limit, RetryAfter: decision.RetryAfter}
	}

	id, err := s.newID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate post id: %w", err)
	}

	post := &Post{
		ID:       id,
		Content:  req.Content,
		AuthorID: req.AuthorID,
	}
	if err := s.repo.Create(ctx, post); err != nil {
		if errors.Is(err, ErrAuthorNotFound) {
			return nil, NewValidationError("authorId", "author is not a known user")
		}
		return nil, NewStorageError("create post", err)
	}

	slog.Info("post created",
		slog.String("id", post.ID),
		slog.String("author", post.AuthorID),
		slog.Int("remaining_quota", decision.Remaining),
	)

	if s.publisher != nil {
		s.publisher.Publish(post)
	}

	return post, nil
}

// ValidateContent enforces the content length in user-perceived characters.
// Callers with side effects ahead of CreatePost run it first.
func ValidateContent(content string) error {
	n := uniseg.GraphemeClusterCount(content)
	if n < MinContentLength {
		return NewValidationError("content", "Can't create empty post")
	}
	if n > MaxContentLength {
		return NewValidationError("content",
			fmt.Sprintf("Post too long (max %d characters)", MaxContentLength))
	}
	return nil
}

func validateID(field, id string) error {
	if strings.TrimSpace(id) == "" {
		return NewValidationError(field, field+" is required")
	}
	if len(id) > maxIDLength {
		return NewValidationError(field, field+" exceeds maximum length")
	}
	return nil
}

func nonNil(rows []*Post) []*Post {
	if rows == nil {
		return []*Post{}
	}
	return rows
}

// compile-time check that the limiter satisfies the write gate
var _ WriteLimiter = (*ratelimit.Limiter)(nil)
