package users

import (
	"errors"
	"fmt"
)

// Sentinel errors for common user operations
var (
	// ErrUserNotFound is returned when a user lookup finds no matching record
	ErrUserNotFound = errors.New("user not found")

	// ErrUsernameTaken is returned when a username already belongs to another user
	ErrUsernameTaken = errors.New("username already taken")
)

// InvalidUserError is returned when identity claims cannot be indexed
type InvalidUserError struct {
	Field  string
	Reason string
}

func (e *InvalidUserError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsNotFound reports whether err is a user lookup miss
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound)
}
