package posts

import (
	"time"
)

const (
	// MinContentLength and MaxContentLength bound post content in user-perceived characters
	MinContentLength = 1
	MaxContentLength = 255

	// MinPageLimit and MaxPageLimit bound the page size accepted by ListPage
	MinPageLimit = 1
	MaxPageLimit = 100

	// DefaultPageLimit is applied by the transport when a client omits limit
	DefaultPageLimit = 5

	// ListAllLimit caps the non-paginated list endpoints
	ListAllLimit = 100
)

// Post represents a post in the AppView database
// Posts are immutable once written
type Post struct {
	CreatedAt time.Time   `json:"createdAt" db:"created_at"`
	Author    *AuthorView `json:"author,omitempty"`
	ID        string      `json:"id" db:"id"`
	Content   string      `json:"content" db:"content"`
	AuthorID  string      `json:"authorId" db:"author_id"`
}

// AuthorView is the public projection of a post's author.
// Only these fields ever leave the server.
type AuthorView struct {
	ProfileImageURL *string `json:"profileImageUrl,omitempty"`
	ID              string  `json:"id"`
	Username        string  `json:"username"`
}

// Cursor marks the last post of a previously returned page.
// It is an exclusive bound: the next page holds only posts ordered strictly after it.
type Cursor struct {
	CreatedAt time.Time `json:"createdAt"`
	ID        string    `json:"id"`
}

// CursorOf returns the cursor that resumes pagination right after p
func CursorOf(p *Post) *Cursor {
	return &Cursor{CreatedAt: p.CreatedAt, ID: p.ID}
}

// After reports whether a post with the given key comes strictly after the cursor
// in feed order (createdAt DESC, id DESC).
func (c Cursor) After(createdAt time.Time, id string) bool {
	if createdAt.Before(c.CreatedAt) {
		return true
	}
	return createdAt.Equal(c.CreatedAt) && id < c.ID
}

// Validate checks that both halves of the compound key are present
func (c Cursor) Validate() error {
	if c.CreatedAt.IsZero() {
		return ErrInvalidCursor
	}
	if c.ID == "" || len(c.ID) > maxIDLength {
		return ErrInvalidCursor
	}
	return nil
}

// AuthorFilter scopes a listing to every author or to a single one.
// The zero value is Unfiltered.
type AuthorFilter struct {
	authorID string
	scoped   bool
}

// Unfiltered matches posts from every author
func Unfiltered() AuthorFilter {
	return AuthorFilter{}
}

// ByAuthor matches only posts written by authorID
func ByAuthor(authorID string) AuthorFilter {
	return AuthorFilter{authorID: authorID, scoped: true}
}

// AuthorID returns the author the filter is scoped to, if any
func (f AuthorFilter) AuthorID() (string, bool) {
	return f.authorID, f.scoped
}

// Matches reports whether a post by authorID passes the filter
func (f AuthorFilter) Matches(authorID string) bool {
	return !f.scoped || f.authorID == authorID
}

func (f AuthorFilter) String() string {
	if !f.scoped {
		return "all"
	}
	return "author:" + f.authorID
}

// ListPageRequest is the input of a single paginated feed fetch
type ListPageRequest struct {
	Cursor *Cursor
	Author AuthorFilter
	Limit  int
}

// Page is one slice of the feed plus the cursor for the next one.
// NextCursor is nil once no further matching posts exist.
type Page struct {
	NextCursor *Cursor `json:"nextCursor,omitempty"`
	Posts      []*Post `json:"posts"`
}

// ListPostsResponse wraps the non-paginated listings
type ListPostsResponse struct {
	Posts []*Post `json:"posts"`
}

// ListQuery is what the repository executes: up to Limit rows in feed order,
// strictly after Cursor when one is given.
type ListQuery struct {
	Cursor *Cursor
	Author AuthorFilter
	Limit  int
}

// CreatePostRequest represents input for creating a new post.
// AuthorID is always taken from the authenticated identity, never from the client.
type CreatePostRequest struct {
	Content  string `json:"content"`
	AuthorID string `json:"-"`
}
