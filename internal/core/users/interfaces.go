package users

import "context"

// UserRepository defines the interface for user data persistence
type UserRepository interface {
	// Upsert inserts the user or refreshes its claims, keeping CreatedAt.
	// Returns ErrUsernameTaken if another user already holds the username.
	Upsert(ctx context.Context, user *User) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)

	// GetProfileStats retrieves aggregated statistics for a user profile
	GetProfileStats(ctx context.Context, id string) (*ProfileStats, error)
}

// UserService defines the interface for user business logic
type UserService interface {
	// IndexUser creates or updates a user from identity claims.
	// This is idempotent: calling it again with the same id refreshes the claims.
	// Called before a user's first write so the posts foreign key holds.
	IndexUser(ctx context.Context, req IndexUserRequest) (*User, error)

	GetUserByID(ctx context.Context, id string) (*User, error)

	// GetProfile resolves actor as a username first, then as a user id
	GetProfile(ctx context.Context, actor string) (*ProfileView, error)
}
