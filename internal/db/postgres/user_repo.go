package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"Chirp/internal/core/users"

	"github.com/lib/pq"
)

type postgresUserRepo struct {
	db *sql.DB
}

// NewUserRepository creates a new PostgreSQL user repository
func NewUserRepository(db *sql.DB) users.UserRepository {
	return &postgresUserRepo{db: db}
}

const userColumns = `id, username, first_name, profile_image_url, created_at, updated_at`

// Upsert inserts the user or refreshes its claims
func (r *postgresUserRepo) Upsert(ctx context.Context, user *users.User) (*users.User, error) {
	query := `
		INSERT INTO users (id, username, first_name, profile_image_url)
		VALUES ($1, NULLIF($2, ''), $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			username = EXCLUDED.username,
			first_name = EXCLUDED.first_name,
			profile_image_url = EXCLUDED.profile_image_url,
			updated_at = NOW()
		RETURNING ` + userColumns

	var firstName sql.NullString
	if user.FirstName != nil {
		firstName = sql.NullString{String: *user.FirstName, Valid: true}
	}

	indexed, err := scanUser(r.db.QueryRowContext(ctx, query,
		user.ID, user.Username, firstName, user.ProfileImageURL))
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation && pqErr.Constraint == "users_username_key" {
			return nil, users.ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}
	return indexed, nil
}

// GetByID retrieves a user by id
func (r *postgresUserRepo) GetByID(ctx context.Context, id string) (*users.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, users.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return user, nil
}

// GetByUsername retrieves a user by username
func (r *postgresUserRepo) GetByUsername(ctx context.Context, username string) (*users.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username))
	if err == sql.ErrNoRows {
		return nil, users.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}
	return user, nil
}

// GetProfileStats retrieves aggregated statistics for a user profile
func (r *postgresUserRepo) GetProfileStats(ctx context.Context, id string) (*users.ProfileStats, error) {
	stats := &users.ProfileStats{}
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts WHERE author_id = $1`, id).
		Scan(&stats.PostCount)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile stats: %w", err)
	}
	return stats, nil
}

func scanUser(row rowScanner) (*users.User, error) {
	var (
		user                users.User
		username, firstName sql.NullString
	)
	if err := row.Scan(&user.ID, &username, &firstName, &user.ProfileImageURL, &user.CreatedAt, &user.UpdatedAt); err != nil {
		return nil, err
	}
	user.Username = username.String
	if firstName.Valid {
		user.FirstName = &firstName.String
	}
	return &user, nil
}
