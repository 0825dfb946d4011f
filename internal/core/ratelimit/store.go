package ratelimit

import (
	"context"
	"time"
)

// Store is the backing counter service for sliding-window limits.
//
// Hit records an attempt for key at now if fewer than limit attempts were
// admitted in (now-window, now], and reports the outcome. The check and the
// increment MUST happen as one atomic operation: two concurrent Hits for the
// same key can never both observe limit-1 and both be admitted.
// Denied attempts are not recorded.
type Store interface {
	Hit(ctx context.Context, key string, limit int, window time.Duration, now time.Time) (Result, error)
}

// Result is the outcome of a single Hit
type Result struct {
	// Oldest is the earliest admitted attempt still inside the window
	// (now when the window is empty)
	Oldest time.Time
	// Count is the number of admitted attempts in the window after this Hit
	Count    int
	Admitted bool
}
