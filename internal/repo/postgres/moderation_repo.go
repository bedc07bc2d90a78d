package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/memoryline/yearbook/internal/domain/enums"
)

var (
	ErrModerationItemNotFound = errors.New("moderation item not found")
	ErrModerationItemDecided  = errors.New("moderation item already decided")
)

type ModerationRepo struct {
	pool *pgxpool.Pool
}

type ModerationItemRecord struct {
	ID           int64
	EntityKind   string
	EntityID     int64
	OwnerID      int64
	Status       string
	ModeratorID  *int64
	RejectReason *string
	DecidedAt    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func NewModerationRepo(pool *pgxpool.Pool) *ModerationRepo {
	return &ModerationRepo{pool: pool}
}

// CreatePending inserts the queue row for a freshly submitted entity. Runs on
// the same transaction that inserts the entity row, so a submission is never
// half-created.
func (r *ModerationRepo) CreatePending(ctx context.Context, tx pgx.Tx, kind enums.EntityKind, entityID, ownerID int64) error {
	if tx == nil {
		return fmt.Errorf("moderation tx is nil")
	}
	if entityID <= 0 || ownerID <= 0 {
		return fmt.Errorf("invalid moderation payload")
	}

	if _, err := tx.Exec(ctx, `
INSERT INTO moderation_items (
	entity_kind,
	entity_id,
	owner_id,
	status,
	created_at,
	updated_at
) VALUES ($1, $2, $3, 'pending', NOW(), NOW())
`, string(kind), entityID, ownerID); err != nil {
		return fmt.Errorf("create moderation item: %w", err)
	}

	return nil
}

// ListPending returns a full snapshot of the pending queue for one kind,
// oldest first. Order is the backend's to choose; callers treat the slice as
// a cache, not as truth.
func (r *ModerationRepo) ListPending(ctx context.Context, kind enums.EntityKind, limit int) ([]ModerationItemRecord, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, entity_kind, entity_id, owner_id, status, moderator_id, reject_reason, decided_at, created_at, updated_at
FROM moderation_items
WHERE entity_kind = $1 AND status = 'pending'
ORDER BY created_at ASC, id ASC
LIMIT $2
`, string(kind), limit)
	if err != nil {
		return nil, fmt.Errorf("list pending moderation items: %w", err)
	}
	defer rows.Close()

	items := make([]ModerationItemRecord, 0)
	for rows.Next() {
		var item ModerationItemRecord
		if err := rows.Scan(
			&item.ID,
			&item.EntityKind,
			&item.EntityID,
			&item.OwnerID,
			&item.Status,
			&item.ModeratorID,
			&item.RejectReason,
			&item.DecidedAt,
			&item.CreatedAt,
			&item.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan moderation item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending moderation items: %w", err)
	}

	return items, nil
}

func (r *ModerationRepo) CountPending(ctx context.Context, kind enums.EntityKind) (int, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}

	var count int
	if err := r.pool.QueryRow(ctx, `
SELECT COUNT(*)
FROM moderation_items
WHERE entity_kind = $1 AND status = 'pending'
`, string(kind)).Scan(&count); err != nil {
		return 0, fmt.Errorf("count pending moderation items: %w", err)
	}

	return count, nil
}

func (r *ModerationRepo) GetByEntity(ctx context.Context, kind enums.EntityKind, entityID int64) (ModerationItemRecord, error) {
	if r.pool == nil {
		return ModerationItemRecord{}, fmt.Errorf("postgres pool is nil")
	}
	if entityID <= 0 {
		return ModerationItemRecord{}, fmt.Errorf("invalid entity id")
	}

	var item ModerationItemRecord
	err := r.pool.QueryRow(ctx, `
SELECT id, entity_kind, entity_id, owner_id, status, moderator_id, reject_reason, decided_at, created_at, updated_at
FROM moderation_items
WHERE entity_kind = $1 AND entity_id = $2
LIMIT 1
`, string(kind), entityID).Scan(
		&item.ID,
		&item.EntityKind,
		&item.EntityID,
		&item.OwnerID,
		&item.Status,
		&item.ModeratorID,
		&item.RejectReason,
		&item.DecidedAt,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ModerationItemRecord{}, ErrModerationItemNotFound
		}
		return ModerationItemRecord{}, fmt.Errorf("query moderation item: %w", err)
	}

	return item, nil
}

// Decide flips a pending item to its terminal status. The row is locked and
// re-checked inside the caller's transaction: a second admin racing on the
// same entity gets ErrModerationItemDecided, never a double transition.
func (r *ModerationRepo) Decide(
	ctx context.Context,
	tx pgx.Tx,
	kind enums.EntityKind,
	entityID int64,
	status enums.ModerationStatus,
	moderatorID int64,
	rejectReason string,
) (ModerationItemRecord, error) {
	if tx == nil {
		return ModerationItemRecord{}, fmt.Errorf("moderation tx is nil")
	}
	if entityID <= 0 || moderatorID <= 0 {
		return ModerationItemRecord{}, fmt.Errorf("invalid decision payload")
	}
	if !status.Decided() {
		return ModerationItemRecord{}, fmt.Errorf("status %q is not a decision", status)
	}

	var current string
	err := tx.QueryRow(ctx, `
SELECT status
FROM moderation_items
WHERE entity_kind = $1 AND entity_id = $2
FOR UPDATE
`, string(kind), entityID).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ModerationItemRecord{}, ErrModerationItemNotFound
		}
		return ModerationItemRecord{}, fmt.Errorf("lock moderation item: %w", err)
	}
	if current != string(enums.ModerationStatusPending) {
		return ModerationItemRecord{}, ErrModerationItemDecided
	}

	var item ModerationItemRecord
	err = tx.QueryRow(ctx, `
UPDATE moderation_items
SET
	status = $3,
	moderator_id = $4,
	reject_reason = NULLIF($5, ''),
	decided_at = NOW(),
	updated_at = NOW()
WHERE entity_kind = $1 AND entity_id = $2 AND status = 'pending'
RETURNING id, entity_kind, entity_id, owner_id, status, moderator_id, reject_reason, decided_at, created_at, updated_at
`, string(kind), entityID, string(status), moderatorID, strings.TrimSpace(rejectReason)).Scan(
		&item.ID,
		&item.EntityKind,
		&item.EntityID,
		&item.OwnerID,
		&item.Status,
		&item.ModeratorID,
		&item.RejectReason,
		&item.DecidedAt,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ModerationItemRecord{}, ErrModerationItemDecided
		}
		return ModerationItemRecord{}, fmt.Errorf("decide moderation item: %w", err)
	}

	return item, nil
}
