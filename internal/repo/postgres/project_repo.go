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

var ErrProjectNotFound = errors.New("project not found")

type ProjectRepo struct {
	pool *pgxpool.Pool
}

func NewProjectRepo(pool *pgxpool.Pool) *ProjectRepo {
	return &ProjectRepo{pool: pool}
}

func (r *ProjectRepo) Create(ctx context.Context, tx pgx.Tx, project model.Project) (model.Project, error) {
	if tx == nil {
		return model.Project{}, fmt.Errorf("project tx is nil")
	}
	if project.OwnerID <= 0 || strings.TrimSpace(project.Title) == "" {
		return model.Project{}, fmt.Errorf("invalid project payload")
	}

	var created model.Project
	err := tx.QueryRow(ctx, `
INSERT INTO projects (owner_id, title, description, repo_url, demo_url, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, 'pending', NOW(), NOW())
RETURNING id, owner_id, title, description, repo_url, demo_url, status, created_at, updated_at
`,
		project.OwnerID,
		strings.TrimSpace(project.Title),
		strings.TrimSpace(project.Description),
		strings.TrimSpace(project.RepoURL),
		strings.TrimSpace(project.DemoURL),
	).Scan(
		&created.ID,
		&created.OwnerID,
		&created.Title,
		&created.Description,
		&created.RepoURL,
		&created.DemoURL,
		&created.Status,
		&created.CreatedAt,
		&created.UpdatedAt,
	)
	if err != nil {
		return model.Project{}, fmt.Errorf("insert project: %w", err)
	}

	return created, nil
}

func (r *ProjectRepo) GetByID(ctx context.Context, projectID int64) (model.Project, error) {
	if r.pool == nil {
		return model.Project{}, fmt.Errorf("postgres pool is nil")
	}
	if projectID <= 0 {
		return model.Project{}, fmt.Errorf("invalid project id")
	}

	var project model.Project
	err := r.pool.QueryRow(ctx, `
SELECT id, owner_id, title, description, repo_url, demo_url, status, created_at, updated_at
FROM projects
WHERE id = $1
LIMIT 1
`, projectID).Scan(
		&project.ID,
		&project.OwnerID,
		&project.Title,
		&project.Description,
		&project.RepoURL,
		&project.DemoURL,
		&project.Status,
		&project.CreatedAt,
		&project.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Project{}, ErrProjectNotFound
		}
		return model.Project{}, fmt.Errorf("query project: %w", err)
	}

	return project, nil
}

func (r *ProjectRepo) List(ctx context.Context, viewerID int64, includeAll bool, limit int) ([]model.Project, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if limit <= 0 {
		limit = 100
	}

	query := `
SELECT id, owner_id, title, description, repo_url, demo_url, status, created_at, updated_at
FROM projects
WHERE status = 'approved' OR owner_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2
`
	args := []any{viewerID, limit}
	if includeAll {
		query = `
SELECT id, owner_id, title, description, repo_url, demo_url, status, created_at, updated_at
FROM projects
ORDER BY created_at DESC, id DESC
LIMIT $1
`
		args = []any{limit}
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	projects := make([]model.Project, 0)
	for rows.Next() {
		var project model.Project
		if err := rows.Scan(
			&project.ID,
			&project.OwnerID,
			&project.Title,
			&project.Description,
			&project.RepoURL,
			&project.DemoURL,
			&project.Status,
			&project.CreatedAt,
			&project.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, project)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate projects: %w", err)
	}

	return projects, nil
}

func (r *ProjectRepo) ApplyDecision(ctx context.Context, tx pgx.Tx, projectID int64, status enums.ModerationStatus) error {
	if tx == nil {
		return fmt.Errorf("project tx is nil")
	}
	if projectID <= 0 {
		return fmt.Errorf("invalid project id")
	}

	if _, err := tx.Exec(ctx, `
UPDATE projects
SET status = $2, updated_at = NOW()
WHERE id = $1
`, projectID, string(status)); err != nil {
		return fmt.Errorf("apply project decision: %w", err)
	}

	return nil
}
