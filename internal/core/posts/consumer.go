package posts

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// sharedFetchTimeout bounds a fetch that no longer follows any single caller's context
const sharedFetchTimeout = 30 * time.Second

// ConsumerState is the pagination state of one feed consumer
type ConsumerState int

const (
	// StateInitial means no page has been fetched yet
	StateInitial ConsumerState = iota
	// StateHasMore means the last page carried a cursor
	StateHasMore
	// StateExhausted is terminal: the last page had no cursor
	StateExhausted
)

func (s ConsumerState) String() string {
	switch s {
	case StateInitial:
		return "initial"
	case StateHasMore:
		return "has_more"
	case StateExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// FeedConsumer walks a feed page by page on behalf of one reader.
//
// At most one fetch is in flight per consumer: concurrent Next calls share
// the same fetch and receive the same page. A failed fetch leaves the pages
// gathered so far and the cursor untouched, so Next can simply be retried.
type FeedConsumer struct {
	fetcher PageFetcher
	cursor  *Cursor
	author  AuthorFilter
	posts   []*Post
	seen    map[string]struct{}
	group   singleflight.Group
	pages   int
	limit   int
	state   ConsumerState
	mu      sync.Mutex
}

// NewFeedConsumer creates a consumer that fetches limit posts per page
func NewFeedConsumer(fetcher PageFetcher, author AuthorFilter, limit int) *FeedConsumer {
	return &FeedConsumer{
		fetcher: fetcher,
		author:  author,
		limit:   limit,
		seen:    make(map[string]struct{}),
	}
}

// Next fetches the page after the last one fetched.
// Returns ErrFeedExhausted once the feed has been read to the end.
//
// The shared fetch is detached from the caller that started it: a caller whose
// ctx ends stops waiting with ctx.Err(), while the fetch completes for the others
// and its page is still recorded.
func (c *FeedConsumer) Next(ctx context.Context) (*Page, error) {
	ch := c.group.DoChan("next", func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedFetchTimeout)
		defer cancel()
		return c.fetchNext(fetchCtx)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Page), nil
	}
}

func (c *FeedConsumer) fetchNext(ctx context.Context) (*Page, error) {
	c.mu.Lock()
	if c.state == StateExhausted {
		c.mu.Unlock()
		return nil, ErrFeedExhausted
	}
	req := ListPageRequest{Author: c.author, Cursor: c.cursor, Limit: c.limit}
	c.mu.Unlock()

	page, err := c.fetcher.ListPage(ctx, req)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range page.Posts {
		if _, dup := c.seen[p.ID]; dup {
			continue
		}
		c.seen[p.ID] = struct{}{}
		c.posts = append(c.posts, p)
	}
	c.pages++
	c.cursor = page.NextCursor
	if page.NextCursor == nil {
		c.state = StateExhausted
	} else {
		c.state = StateHasMore
	}
	return page, nil
}

// Prepend merges a freshly created post at the head of the accumulated feed
// without refetching. Posts outside the consumer's author filter and posts
// already present are ignored; the return value reports whether p was added.
func (c *FeedConsumer) Prepend(p *Post) bool {
	if p == nil || !c.author.Matches(p.AuthorID) {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, dup := c.seen[p.ID]; dup {
		return false
	}
	c.seen[p.ID] = struct{}{}
	c.posts = append([]*Post{p}, c.posts...)
	return true
}

// State returns the consumer's pagination state
func (c *FeedConsumer) State() ConsumerState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Posts returns a copy of every post gathered so far, newest first
func (c *FeedConsumer) Posts() []*Post {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*Post, len(c.posts))
	copy(out, c.posts)
	return out
}

// PagesFetched returns how many pages have been fetched successfully
func (c *FeedConsumer) PagesFetched() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pages
}
