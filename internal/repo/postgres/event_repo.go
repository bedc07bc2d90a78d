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

var ErrEventNotFound = errors.New("event not found")

type EventRepo struct {
	pool *pgxpool.Pool
}

func NewEventRepo(pool *pgxpool.Pool) *EventRepo {
	return &EventRepo{pool: pool}
}

func (r *EventRepo) Create(ctx context.Context, tx pgx.Tx, event model.Event) (model.Event, error) {
	if tx == nil {
		return model.Event{}, fmt.Errorf("event tx is nil")
	}
	if event.OwnerID <= 0 || strings.TrimSpace(event.Title) == "" {
		return model.Event{}, fmt.Errorf("invalid event payload")
	}

	var created model.Event
	err := tx.QueryRow(ctx, `
INSERT INTO events (owner_id, title, description, location, starts_at, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, 'pending', NOW(), NOW())
RETURNING id, owner_id, title, description, location, starts_at, status, created_at, updated_at
`,
		event.OwnerID,
		strings.TrimSpace(event.Title),
		strings.TrimSpace(event.Description),
		strings.TrimSpace(event.Location),
		event.StartsAt,
	).Scan(
		&created.ID,
		&created.OwnerID,
		&created.Title,
		&created.Description,
		&created.Location,
		&created.StartsAt,
		&created.Status,
		&created.CreatedAt,
		&created.UpdatedAt,
	)
	if err != nil {
		return model.Event{}, fmt.Errorf("insert event: %w", err)
	}

	return created, nil
}

func (r *EventRepo) GetByID(ctx context.Context, eventID int64) (model.Event, error) {
	if r.pool == nil {
		return model.Event{}, fmt.Errorf("postgres pool is nil")
	}
	if eventID <= 0 {
		return model.Event{}, fmt.Errorf("invalid event id")
	}

	var event model.Event
	err := r.pool.QueryRow(ctx, `
SELECT id, owner_id, title, description, location, starts_at, status, created_at, updated_at
FROM events
WHERE id = $1
LIMIT 1
`, eventID).Scan(
		&event.ID,
		&event.OwnerID,
		&event.Title,
		&event.Description,
		&event.Location,
		&event.StartsAt,
		&event.Status,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Event{}, ErrEventNotFound
		}
		return model.Event{}, fmt.Errorf("query event: %w", err)
	}

	return event, nil
}

func (r *EventRepo) List(ctx context.Context, viewerID int64, includeAll bool, limit int) ([]model.Event, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if limit <= 0 {
		limit = 100
	}

	query := `
SELECT id, owner_id, title, description, location, starts_at, status, created_at, updated_at
FROM events
WHERE status = 'approved' OR owner_id = $1
ORDER BY starts_at ASC, id ASC
LIMIT $2
`
	args := []any{viewerID, limit}
	if includeAll {
		query = `
SELECT id, owner_id, title, description, location, starts_at, status, created_at, updated_at
FROM events
ORDER BY starts_at ASC, id ASC
LIMIT $1
`
		args = []any{limit}
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	events := make([]model.Event, 0)
	for rows.Next() {
		var event model.Event
		if err := rows.Scan(
			&event.ID,
			&event.OwnerID,
			&event.Title,
			&event.Description,
			&event.Location,
			&event.StartsAt,
			&event.Status,
			&event.CreatedAt,
			&event.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}

	return events, nil
}

func (r *EventRepo) ApplyDecision(ctx context.Context, tx pgx.Tx, eventID int64, status enums.ModerationStatus) error {
	if tx == nil {
		return fmt.Errorf("event tx is nil")
	}
	if eventID <= 0 {
		return fmt.Errorf("invalid event id")
	}

	if _, err := tx.Exec(ctx, `
UPDATE events
SET status = $2, updated_at = NOW()
WHERE id = $1
`, eventID, string(status)); err != nil {
		return fmt.Errorf("apply event decision: %w", err)
	}

	return nil
}
