package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/memoryline/yearbook/internal/domain/enums"
	"github.com/memoryline/yearbook/internal/domain/model"
)

var ErrProfileNotFound = errors.New("profile not found")

type ProfileRepo struct {
	pool *pgxpool.Pool
}

func NewProfileRepo(pool *pgxpool.Pool) *ProfileRepo {
	return &ProfileRepo{pool: pool}
}

func (r *ProfileRepo) Create(ctx context.Context, tx pgx.Tx, profile model.Profile) (model.Profile, error) {
	if tx == nil {
		return model.Profile{}, fmt.Errorf("profile tx is nil")
	}
	if profile.OwnerID <= 0 {
		return model.Profile{}, fmt.Errorf("invalid profile payload")
	}

	var created model.Profile
	err := tx.QueryRow(ctx, `
INSERT INTO profiles (owner_id, nickname, full_name, bio, quote, grad_year, photo_key, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, 'pending', NOW(), NOW())
RETURNING id, owner_id, nickname, full_name, bio, quote, grad_year, photo_key, status, created_at, updated_at
`,
		profile.OwnerID,
		strings.TrimSpace(profile.Nickname),
		strings.TrimSpace(profile.FullName),
		strings.TrimSpace(profile.Bio),
		strings.TrimSpace(profile.Quote),
		profile.GradYear,
		strings.TrimSpace(profile.PhotoKey),
	).Scan(
		&created.ID,
		&created.OwnerID,
		&created.Nickname,
		&created.FullName,
		&created.Bio,
		&created.Quote,
		&created.GradYear,
		&created.PhotoKey,
		&created.Status,
		&created.CreatedAt,
		&created.UpdatedAt,
	)
	if err != nil {
		return model.Profile{}, fmt.Errorf("insert profile: %w", err)
	}

	return created, nil
}

func (r *ProfileRepo) GetByID(ctx context.Context, profileID int64) (model.Profile, error) {
	if r.pool == nil {
		return model.Profile{}, fmt.Errorf("postgres pool is nil")
	}
	if profileID <= 0 {
		return model.Profile{}, fmt.Errorf("invalid profile id")
	}

	var profile model.Profile
	err := r.pool.QueryRow(ctx, `
SELECT id, owner_id, nickname, full_name, bio, quote, grad_year, photo_key, status, created_at, updated_at
FROM profiles
WHERE id = $1
LIMIT 1
`, profileID).Scan(
		&profile.ID,
		&profile.OwnerID,
		&profile.Nickname,
		&profile.FullName,
		&profile.Bio,
		&profile.Quote,
		&profile.GradYear,
		&profile.PhotoKey,
		&profile.Status,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Profile{}, ErrProfileNotFound
		}
		return model.Profile{}, fmt.Errorf("query profile: %w", err)
	}

	return profile, nil
}

// List returns candidate rows for a listing. The SQL keeps the result small
// (approved rows plus the viewer's own); the service applies the visibility
// rules on top, including the completeness gate.
func (r *ProfileRepo) List(ctx context.Context, viewerID int64, includeAll bool, limit int) ([]model.Profile, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if limit <= 0 {
		limit = 100
	}

	query := `
SELECT id, owner_id, nickname, full_name, bio, quote, grad_year, photo_key, status, created_at, updated_at
FROM profiles
WHERE status = 'approved' OR owner_id = $1
ORDER BY created_at ASC, id ASC
LIMIT $2
`
	args := []any{viewerID, limit}
	if includeAll {
		query = `
SELECT id, owner_id, nickname, full_name, bio, quote, grad_year, photo_key, status, created_at, updated_at
FROM profiles
ORDER BY created_at ASC, id ASC
LIMIT $1
`
		args = []any{limit}
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	profiles := make([]model.Profile, 0)
	for rows.Next() {
		var profile model.Profile
		if err := rows.Scan(
			&profile.ID,
			&profile.OwnerID,
			&profile.Nickname,
			&profile.FullName,
			&profile.Bio,
			&profile.Quote,
			&profile.GradYear,
			&profile.PhotoKey,
			&profile.Status,
			&profile.CreatedAt,
			&profile.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		profiles = append(profiles, profile)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate profiles: %w", err)
	}

	return profiles, nil
}

func (r *ProfileRepo) ApplyDecision(ctx context.Context, tx pgx.Tx, profileID int64, status enums.ModerationStatus) error {
	if tx == nil {
		return fmt.Errorf("profile tx is nil")
	}
	if profileID <= 0 {
		return fmt.Errorf("invalid profile id")
	}

	if _, err := tx.Exec(ctx, `
UPDATE profiles
SET status = $2, updated_at = NOW()
WHERE id = $1
`, profileID, string(status)); err != nil {
		return fmt.Errorf("apply profile decision: %w", err)
	}

	return nil
}
