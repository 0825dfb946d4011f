package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
)

const (
	maxIDLength       = 255
	maxUsernameLength = 64
)

// Usernames are issued by the identity provider: letters, digits, '_' and '-'
var usernameRegex = regexp.MustCompile(`^[a-z0-9_-]+$`)

type userService struct {
	userRepo UserRepository
}

// NewUserService creates a new user service
func NewUserService(userRepo UserRepository) UserService {
	return &userService{
		userRepo: userRepo,
	}
}

// IndexUser creates or refreshes a user from identity claims
func (s *userService) IndexUser(ctx context.Context, req IndexUserRequest) (*User, error) {
	req.ID = strings.TrimSpace(req.ID)
	req.Username = strings.TrimSpace(strings.ToLower(req.Username))

	if err := validateIndexRequest(req); err != nil {
		return nil, err
	}

	user := &User{
		ID:              req.ID,
		Username:        req.Username,
		FirstName:       req.FirstName,
		ProfileImageURL: strings.TrimSpace(req.ProfileImageURL),
	}

	indexed, err := s.userRepo.Upsert(ctx, user)
	if err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to index user %s: %w", req.ID, err)
	}

	slog.Debug("user indexed",
		slog.String("id", indexed.ID),
		slog.String("username", indexed.Username),
	)
	return indexed, nil
}

// GetUserByID retrieves a user by id
func (s *userService) GetUserByID(ctx context.Context, id string) (*User, error) {
	if strings.TrimSpace(id) == "" {
		return nil, &InvalidUserError{Field: "id", Reason: "is required"}
	}

	return s.userRepo.GetByID(ctx, id)
}

// GetProfile resolves actor as a username, falling back to an id lookup
func (s *userService) GetProfile(ctx context.Context, actor string) (*ProfileView, error) {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return nil, &InvalidUserError{Field: "actor", Reason: "is required"}
	}

	user, err := s.userRepo.GetByUsername(ctx, strings.ToLower(actor))
	if errors.Is(err, ErrUserNotFound) {
		user, err = s.userRepo.GetByID(ctx, actor)
	}
	if err != nil {
		return nil, err
	}

	stats, err := s.userRepo.GetProfileStats(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile stats: %w", err)
	}

	return &ProfileView{
		ID:              user.ID,
		Username:        DisplayUsername(user.Username, user.FirstName),
		ProfileImageURL: user.ProfileImageURL,
		CreatedAt:       user.CreatedAt,
		Stats:           stats,
	}, nil
}

func validateIndexRequest(req IndexUserRequest) error {
	if req.ID == "" {
		return &InvalidUserError{Field: "id", Reason: "is required"}
	}
	if len(req.ID) > maxIDLength {
		return &InvalidUserError{Field: "id", Reason: fmt.Sprintf("must be at most %d characters", maxIDLength)}
	}

	// Username is optional: some providers only issue a first name
	if req.Username == "" {
		return nil
	}
	if len(req.Username) > maxUsernameLength {
		return &InvalidUserError{Field: "username", Reason: fmt.Sprintf("must be at most %d characters", maxUsernameLength)}
	}
	if !usernameRegex.MatchString(req.Username) {
		return &InvalidUserError{Field: "username", Reason: "must contain only letters, digits, '_' and '-'"}
	}
	return nil
}
