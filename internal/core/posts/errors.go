package posts

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for common post operations
var (
	// ErrNotFound is returned when a post is not found by ID
	ErrNotFound = errors.New("post not found")

	// ErrAuthorNotFound is returned when the author of a new post has no user row
	ErrAuthorNotFound = errors.New("author not found")

	// ErrAuthRequired is returned when a write is attempted without an authenticated author
	ErrAuthRequired = errors.New("authentication required")

	// ErrInvalidCursor is returned when a pagination cursor is incomplete or malformed
	ErrInvalidCursor = errors.New("invalid cursor")

	// ErrRateLimitExceeded is returned when the author has used up their write quota
	ErrRateLimitExceeded = errors.New("rate limit exceeded")

	// ErrRateLimiterUnavailable is returned when the write quota cannot be checked.
	// Writes are denied in that case unless the limiter is configured to fail open.
	ErrRateLimiterUnavailable = errors.New("rate limiter unavailable")

	// ErrFeedExhausted is returned by FeedConsumer.Next once the last page has been fetched
	ErrFeedExhausted = errors.New("feed exhausted")
)

// ValidationError represents a validation error with field context
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error (%s): %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) error {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// IsValidationError checks if error is a validation error
func IsValidationError(err error) bool {
	var valErr *ValidationError
	return errors.As(err, &valErr)
}

// RateLimitError carries the wait hint for a denied write.
// It matches ErrRateLimitExceeded under errors.Is.
type RateLimitError struct {
	RetryAfter time.Duration
	Limit      int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded: %d posts per window, retry after %s", e.Limit, e.RetryAfter.Round(time.Second))
}

func (e *RateLimitError) Is(target error) bool {
	return target == ErrRateLimitExceeded
}

// StorageError wraps a failure of the relational store.
// These are surfaced to clients as a generic failure and never retried here.
type StorageError struct {
	Err error
	Op  string
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error (%s): %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// NewStorageError wraps err as a StorageError for operation op
func NewStorageError(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

// IsStorageError checks if error is a storage error
func IsStorageError(err error) bool {
	var storageErr *StorageError
	return errors.As(err, &storageErr)
}

// IsNotFound checks if error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
