package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"Chirp/internal/core/posts"
	"Chirp/internal/core/users"

	"github.com/lib/pq"
)

// PostgreSQL SQLSTATE codes the repositories translate into domain errors
const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
)

type postgresPostRepo struct {
	db *sql.DB
}

// NewPostRepository creates a new PostgreSQL post repository
func NewPostRepository(db *sql.DB) posts.Repository {
	return &postgresPostRepo{db: db}
}

// Create inserts a new post and hydrates its creation time and author.
// created_at is assigned by the database.
func (r *postgresPostRepo) Create(ctx context.Context, post *posts.Post) error {
	query := `
		WITH inserted AS (
			INSERT INTO posts (id, content, author_id)
			VALUES ($1, $2, $3)
			RETURNING id, author_id, created_at
		)
		SELECT i.created_at, u.username, u.first_name, u.profile_image_url
		FROM inserted i
		JOIN users u ON u.id = i.author_id
	`

	var (
		username, firstName sql.NullString
		imageURL            string
	)
	err := r.db.QueryRowContext(ctx, query, post.ID, post.Content, post.AuthorID).
		Scan(&post.CreatedAt, &username, &firstName, &imageURL)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pgForeignKeyViolation {
			return posts.ErrAuthorNotFound
		}
		return fmt.Errorf("failed to insert post: %w", err)
	}

	post.Author = authorView(post.AuthorID, username, firstName, imageURL)
	return nil
}

// GetByID retrieves a post with its author
func (r *postgresPostRepo) GetByID(ctx context.Context, id string) (*posts.Post, error) {
	query := `
		SELECT p.id, p.content, p.author_id, p.created_at,
			u.username, u.first_name, u.profile_image_url
		FROM posts p
		JOIN users u ON u.id = p.author_id
		WHERE p.id = $1
	`

	post, err := scanPost(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, posts.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post by id: %w", err)
	}
	return post, nil
}

// List returns up to q.Limit posts ordered by (created_at DESC, id DESC),
// optionally scoped to one author and bounded by an exclusive cursor
func (r *postgresPostRepo) List(ctx context.Context, q posts.ListQuery) ([]*posts.Post, error) {
	var (
		conditions []string
		args       []interface{}
	)

	if authorID, scoped := q.Author.AuthorID(); scoped {
		args = append(args, authorID)
		conditions = append(conditions, fmt.Sprintf("p.author_id = $%d", len(args)))
	}

	if filter, cursorArgs := buildCursorFilter(q.Cursor, len(args)+1); filter != "" {
		conditions = append(conditions, filter)
		args = append(args, cursorArgs...)
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	args = append(args, q.Limit)
	query := fmt.Sprintf(`
		SELECT p.id, p.content, p.author_id, p.created_at,
			u.username, u.first_name, u.profile_image_url
		FROM posts p
		JOIN users u ON u.id = p.author_id
		%s
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT $%d
	`, where, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query posts: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close rows", slog.String("error", closeErr.Error()))
		}
	}()

	result := make([]*posts.Post, 0, q.Limit)
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		result = append(result, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating posts: %w", err)
	}

	return result, nil
}

// buildCursorFilter returns the keyset predicate for rows strictly after the
// cursor, using parameters starting at $paramOffset
func buildCursorFilter(cursor *posts.Cursor, paramOffset int) (string, []interface{}) {
	if cursor == nil {
		return "", nil
	}

	// (created_at, id) < (cursor_created_at, cursor_id)
	filter := fmt.Sprintf("(p.created_at < $%d OR (p.created_at = $%d AND p.id < $%d))",
		paramOffset, paramOffset, paramOffset+1)
	return filter, []interface{}{cursor.CreatedAt, cursor.ID}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPost(row rowScanner) (*posts.Post, error) {
	var (
		post                posts.Post
		username, firstName sql.NullString
		imageURL            string
	)
	if err := row.Scan(
		&post.ID, &post.Content, &post.AuthorID, &post.CreatedAt,
		&username, &firstName, &imageURL,
	); err != nil {
		return nil, err
	}
	post.Author = authorView(post.AuthorID, username, firstName, imageURL)
	return &post, nil
}

func authorView(id string, username, firstName sql.NullString, imageURL string) *posts.AuthorView {
	var first *string
	if firstName.Valid {
		first = &firstName.String
	}
	view := &posts.AuthorView{
		ID:       id,
		Username: users.DisplayUsername(username.String, first),
	}
	if imageURL != "" {
		view.ProfileImageURL = &imageURL
	}
	return view
}
