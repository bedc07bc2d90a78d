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

var ErrPhotoNotFound = errors.New("photo not found")

type PhotoRepo struct {
	pool *pgxpool.Pool
}

func NewPhotoRepo(pool *pgxpool.Pool) *PhotoRepo {
	return &PhotoRepo{pool: pool}
}

func (r *PhotoRepo) Create(ctx context.Context, tx pgx.Tx, photo model.Photo) (model.Photo, error) {
	if tx == nil {
		return model.Photo{}, fmt.Errorf("photo tx is nil")
	}
	if photo.OwnerID <= 0 || strings.TrimSpace(photo.ObjectKey) == "" {
		return model.Photo{}, fmt.Errorf("invalid photo payload")
	}

	var created model.Photo
	err := tx.QueryRow(ctx, `
INSERT INTO photos (owner_id, event_id, caption, object_key, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, 'pending', NOW(), NOW())
RETURNING id, owner_id, event_id, caption, object_key, status, created_at, updated_at
`,
		photo.OwnerID,
		photo.EventID,
		strings.TrimSpace(photo.Caption),
		strings.TrimSpace(photo.ObjectKey),
	).Scan(
		&created.ID,
		&created.OwnerID,
		&created.EventID,
		&created.Caption,
		&created.ObjectKey,
		&created.Status,
		&created.CreatedAt,
		&created.UpdatedAt,
	)
	if err != nil {
		return model.Photo{}, fmt.Errorf("insert photo: %w", err)
	}

	return created, nil
}

func (r *PhotoRepo) GetByID(ctx context.Context, photoID int64) (model.Photo, error) {
	if r.pool == nil {
		return model.Photo{}, fmt.Errorf("postgres pool is nil")
	}
	if photoID <= 0 {
		return model.Photo{}, fmt.Errorf("invalid photo id")
	}

	var photo model.Photo
	err := r.pool.QueryRow(ctx, `
SELECT id, owner_id, event_id, caption, object_key, status, created_at, updated_at
FROM photos
WHERE id = $1
LIMIT 1
`, photoID).Scan(
		&photo.ID,
		&photo.OwnerID,
		&photo.EventID,
		&photo.Caption,
		&photo.ObjectKey,
		&photo.Status,
		&photo.CreatedAt,
		&photo.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Photo{}, ErrPhotoNotFound
		}
		return model.Photo{}, fmt.Errorf("query photo: %w", err)
	}

	return photo, nil
}

// List returns gallery candidates, optionally scoped to one event.
func (r *PhotoRepo) List(ctx context.Context, viewerID int64, includeAll bool, eventID *int64, limit int) ([]model.Photo, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if limit <= 0 {
		limit = 100
	}

	visibility := "(status = 'approved' OR owner_id = $1)"
	args := []any{viewerID}
	if includeAll {
		visibility = "TRUE"
		args = args[:0]
	}

	query := fmt.Sprintf(`
SELECT id, owner_id, event_id, caption, object_key, status, created_at, updated_at
FROM photos
WHERE %s
`, visibility)
	if eventID != nil {
		args = append(args, *eventID)
		query += fmt.Sprintf("  AND event_id = $%d\n", len(args))
	}
	args = append(args, limit)
	query += fmt.Sprintf("ORDER BY created_at ASC, id ASC\nLIMIT $%d\n", len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list photos: %w", err)
	}
	defer rows.Close()

	photos := make([]model.Photo, 0)
	for rows.Next() {
		var photo model.Photo
		if err := rows.Scan(
			&photo.ID,
			&photo.OwnerID,
			&photo.EventID,
			&photo.Caption,
			&photo.ObjectKey,
			&photo.Status,
			&photo.CreatedAt,
			&photo.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan photo: %w", err)
		}
		photos = append(photos, photo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate photos: %w", err)
	}

	return photos, nil
}

func (r *PhotoRepo) ApplyDecision(ctx context.Context, tx pgx.Tx, photoID int64, status enums.ModerationStatus) error {
	if tx == nil {
		return fmt.Errorf("photo tx is nil")
	}
	if photoID <= 0 {
		return fmt.Errorf("invalid photo id")
	}

	if _, err := tx.Exec(ctx, `
UPDATE photos
SET status = $2, updated_at = NOW()
WHERE id = $1
`, photoID, string(status)); err != nil {
		return fmt.Errorf("apply photo decision: %w", err)
	}

	return nil
}

// ClearObjectKey empties the stored object reference after the binary has
// been removed for a rejected photo. The row itself stays for audit.
func (r *PhotoRepo) ClearObjectKey(ctx context.Context, photoID int64) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if photoID <= 0 {
		return fmt.Errorf("invalid photo id")
	}

	if _, err := r.pool.Exec(ctx, `
UPDATE photos
SET object_key = '', updated_at = NOW()
WHERE id = $1
`, photoID); err != nil {
		return fmt.Errorf("clear photo object key: %w", err)
	}

	return nil
}
