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

var ErrMemoryNotFound = errors.New("memory not found")

type MemoryRepo struct {
	pool *pgxpool.Pool
}

func NewMemoryRepo(pool *pgxpool.Pool) *MemoryRepo {
	return &MemoryRepo{pool: pool}
}

func (r *MemoryRepo) Create(ctx context.Context, tx pgx.Tx, memory model.Memory) (model.Memory, error) {
	if tx == nil {
		return model.Memory{}, fmt.Errorf("memory tx is nil")
	}
	if memory.OwnerID <= 0 || strings.TrimSpace(memory.Body) == "" {
		return model.Memory{}, fmt.Errorf("invalid memory payload")
	}

	var created model.Memory
	err := tx.QueryRow(ctx, `
INSERT INTO memories (owner_id, title, body, status, created_at, updated_at)
VALUES ($1, $2, $3, 'pending', NOW(), NOW())
RETURNING id, owner_id, title, body, status, created_at, updated_at
`,
		memory.OwnerID,
		strings.TrimSpace(memory.Title),
		strings.TrimSpace(memory.Body),
	).Scan(
		&created.ID,
		&created.OwnerID,
		&created.Title,
		&created.Body,
		&created.Status,
		&created.CreatedAt,
		&created.UpdatedAt,
	)
	if err != nil {
		return model.Memory{}, fmt.Errorf("insert memory: %w", err)
	}

	return created, nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, memoryID int64) (model.Memory, error) {
	if r.pool == nil {
		return model.Memory{}, fmt.Errorf("postgres pool is nil")
	}
	if memoryID <= 0 {
		return model.Memory{}, fmt.Errorf("invalid memory id")
	}

	var memory model.Memory
	err := r.pool.QueryRow(ctx, `
SELECT id, owner_id, title, body, status, created_at, updated_at
FROM memories
WHERE id = $1
LIMIT 1
`, memoryID).Scan(
		&memory.ID,
		&memory.OwnerID,
		&memory.Title,
		&memory.Body,
		&memory.Status,
		&memory.CreatedAt,
		&memory.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Memory{}, ErrMemoryNotFound
		}
		return model.Memory{}, fmt.Errorf("query memory: %w", err)
	}

	return memory, nil
}

func (r *MemoryRepo) List(ctx context.Context, viewerID int64, includeAll bool, limit int) ([]model.Memory, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if limit <= 0 {
		limit = 100
	}

	query := `
SELECT id, owner_id, title, body, status, created_at, updated_at
FROM memories
WHERE status = 'approved' OR owner_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2
`
	args := []any{viewerID, limit}
	if includeAll {
		query = `
SELECT id, owner_id, title, body, status, created_at, updated_at
FROM memories
ORDER BY created_at DESC, id DESC
LIMIT $1
`
		args = []any{limit}
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list memories: %w", err)
	}
	defer rows.Close()

	memories := make([]model.Memory, 0)
	for rows.Next() {
		var memory model.Memory
		if err := rows.Scan(
			&memory.ID,
			&memory.OwnerID,
			&memory.Title,
			&memory.Body,
			&memory.Status,
			&memory.CreatedAt,
			&memory.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan memory: %w", err)
		}
		memories = append(memories, memory)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate memories: %w", err)
	}

	return memories, nil
}

func (r *MemoryRepo) ApplyDecision(ctx context.Context, tx pgx.Tx, memoryID int64, status enums.ModerationStatus) error {
	if tx == nil {
		return fmt.Errorf("memory tx is nil")
	}
	if memoryID <= 0 {
		return fmt.Errorf("invalid memory id")
	}

	if _, err := tx.Exec(ctx, `
UPDATE memories
SET status = $2, updated_at = NOW()
WHERE id = $1
`, memoryID, string(status)); err != nil {
		return fmt.Errorf("apply memory decision: %w", err)
	}

	return nil
}
