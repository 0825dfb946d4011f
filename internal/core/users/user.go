package users

import (
	"time"
)

// AnonymousUsername is shown for users who have neither a username nor a first name
const AnonymousUsername = "Anonymous"

// User represents an account known to the Chirp AppView.
// Accounts live in the identity provider; this table only mirrors the
// claims needed to render authors next to their posts.
type User struct {
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time `json:"updatedAt" db:"updated_at"`
	FirstName       *string   `json:"firstName,omitempty" db:"first_name"`
	ID              string    `json:"id" db:"id"`
	Username        string    `json:"username,omitempty" db:"username"`
	ProfileImageURL string    `json:"profileImageUrl" db:"profile_image_url"`
}

// IndexUserRequest carries the identity claims of an authenticated user
type IndexUserRequest struct {
	FirstName       *string `json:"firstName,omitempty"`
	ID              string  `json:"id"`
	Username        string  `json:"username"`
	ProfileImageURL string  `json:"profileImageUrl"`
}

// ProfileStats contains aggregated user statistics
type ProfileStats struct {
	PostCount int `json:"postCount"`
}

// ProfileView is the public projection of a user
type ProfileView struct {
	CreatedAt       time.Time     `json:"createdAt"`
	Stats           *ProfileStats `json:"stats,omitempty"`
	ID              string        `json:"id"`
	Username        string        `json:"username"`
	ProfileImageURL string        `json:"profileImageUrl"`
}

// DisplayUsername returns the name shown for a user: the username, else the
// first name, else AnonymousUsername
func DisplayUsername(username string, firstName *string) string {
	if username != "" {
		return username
	}
	if firstName != nil && *firstName != "" {
		return *firstName
	}
	return AnonymousUsername
}
