package livefeed

import (
	"sync"

	"Chirp/internal/core/posts"
)

// DefaultBuffer is the per-subscriber queue length
const DefaultBuffer = 32

// Hub fans newly created posts out to live subscribers.
//
// Publish never blocks the write path: a subscriber whose queue is full
// misses the post and is expected to catch up by refetching the feed head.
type Hub struct {
	subs   map[uint64]*Subscription
	nextID uint64
	buffer int
	mu     sync.RWMutex
}

// Subscription receives posts matching its author filter on C until Close
type Subscription struct {
	C      <-chan *posts.Post
	ch     chan *posts.Post
	hub    *Hub
	filter posts.AuthorFilter
	id     uint64
	once   sync.Once
}

// NewHub creates a hub with the given per-subscriber buffer
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Hub{
		subs:   make(map[uint64]*Subscription),
		buffer: buffer,
	}
}

// Subscribe registers a subscriber for posts matching filter
func (h *Hub) Subscribe(filter posts.AuthorFilter) *Subscription {
	ch := make(chan *posts.Post, h.buffer)
	sub := &Subscription{C: ch, ch: ch, hub: h, filter: filter}

	h.mu.Lock()
	h.nextID++
	sub.id = h.nextID
	h.subs[sub.id] = sub
	h.mu.Unlock()

	subscribersGauge.Inc()
	return sub
}

// Publish delivers p to every matching subscriber without blocking
func (h *Hub) Publish(p *posts.Post) {
	if p == nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sub := range h.subs {
		if !sub.filter.Matches(p.AuthorID) {
			continue
		}
		select {
		case sub.ch <- p:
			deliveredTotal.Inc()
		default:
			droppedTotal.Inc()
		}
	}
}

// Len returns the number of active subscribers
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close unregisters the subscription and closes C. Safe to call twice.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.mu.Lock()
		delete(s.hub.subs, s.id)
		// Publish holds the read lock while sending, so closing under the
		// write lock can never race with a send
		close(s.ch)
		s.hub.mu.Unlock()
		subscribersGauge.Dec()
	})
}

// compile-time check that the hub can be handed to the post service
var _ posts.Publisher = (*Hub)(nil)
