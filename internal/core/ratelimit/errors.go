package ratelimit

import "errors"

var (
	// ErrStoreUnavailable is returned when the counter store cannot be reached.
	// The limiter denies in that case unless configured to fail open.
	ErrStoreUnavailable = errors.New("rate limit store unavailable")

	// ErrEmptyIdentifier is returned when Limit is called without an identity
	ErrEmptyIdentifier = errors.New("rate limit identifier is required")
)
