package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/memoryline/yearbook/internal/domain/enums"
	"github.com/memoryline/yearbook/internal/domain/model"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrUsernameTaken = errors.New("username already taken")
)

const uniqueViolationCode = "23505"

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

// Create inserts a new account in pending status. Registration and the
// matching moderation item are committed together by the caller.
func (r *UserRepo) Create(ctx context.Context, tx pgx.Tx, username, email, passwordHash string) (model.User, error) {
	if tx == nil {
		return model.User{}, fmt.Errorf("user tx is nil")
	}
	if strings.TrimSpace(username) == "" || strings.TrimSpace(passwordHash) == "" {
		return model.User{}, fmt.Errorf("invalid user payload")
	}

	var user model.User
	err := tx.QueryRow(ctx, `
INSERT INTO users (username, email, password_hash, role, status, created_at, updated_at)
VALUES ($1, $2, $3, 'user', 'pending', NOW(), NOW())
RETURNING id, username, email, password_hash, role, status, created_at, updated_at
`, strings.TrimSpace(username), strings.TrimSpace(email), passwordHash).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.Status,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return model.User{}, ErrUsernameTaken
		}
		return model.User{}, fmt.Errorf("insert user: %w", err)
	}

	return user, nil
}

func (r *UserRepo) GetByID(ctx context.Context, userID int64) (model.User, error) {
	if r.pool == nil {
		return model.User{}, fmt.Errorf("postgres pool is nil")
	}
	if userID <= 0 {
		return model.User{}, fmt.Errorf("invalid user id")
	}

	return r.queryOne(ctx, `
SELECT id, username, email, password_hash, role, status, created_at, updated_at
FROM users
WHERE id = $1
LIMIT 1
`, userID)
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (model.User, error) {
	if r.pool == nil {
		return model.User{}, fmt.Errorf("postgres pool is nil")
	}
	if strings.TrimSpace(username) == "" {
		return model.User{}, ErrUserNotFound
	}

	return r.queryOne(ctx, `
SELECT id, username, email, password_hash, role, status, created_at, updated_at
FROM users
WHERE LOWER(username) = LOWER($1)
LIMIT 1
`, strings.TrimSpace(username))
}

// List returns accounts for a directory listing. Non-admin viewers only get
// rows that are approved or their own; admins get everything.
func (r *UserRepo) List(ctx context.Context, viewerID int64, includeAll bool, limit int) ([]model.User, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if limit <= 0 {
		limit = 100
	}

	query := `
SELECT id, username, email, password_hash, role, status, created_at, updated_at
FROM users
WHERE status = 'approved' OR id = $1
ORDER BY created_at ASC, id ASC
LIMIT $2
`
	args := []any{viewerID, limit}
	if includeAll {
		query = `
SELECT id, username, email, password_hash, role, status, created_at, updated_at
FROM users
ORDER BY created_at ASC, id ASC
LIMIT $1
`
		args = []any{limit}
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := make([]model.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	return users, nil
}

func (r *UserRepo) ApplyDecision(ctx context.Context, tx pgx.Tx, userID int64, status enums.ModerationStatus) error {
	if tx == nil {
		return fmt.Errorf("user tx is nil")
	}
	if userID <= 0 {
		return fmt.Errorf("invalid user id")
	}

	if _, err := tx.Exec(ctx, `
UPDATE users
SET status = $2, updated_at = NOW()
WHERE id = $1
`, userID, string(status)); err != nil {
		return fmt.Errorf("apply user decision: %w", err)
	}

	return nil
}

func (r *UserRepo) queryOne(ctx context.Context, query string, args ...any) (model.User, error) {
	row := r.pool.QueryRow(ctx, query, args...)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, err
	}
	return user, nil
}

func scanUser(row pgx.Row) (model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.Status,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, pgx.ErrNoRows
		}
		return model.User{}, fmt.Errorf("scan user: %w", err)
	}
	return user, nil
}
