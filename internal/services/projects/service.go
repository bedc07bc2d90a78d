package projects

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/memoryline/yearbook/internal/domain/enums"
	"github.com/memoryline/yearbook/internal/domain/model"
	"github.com/memoryline/yearbook/internal/domain/rules"
	pgrepo "github.com/memoryline/yearbook/internal/repo/postgres"
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("project not found")
)

type Store interface {
	Create(ctx context.Context, tx pgx.Tx, project model.Project) (model.Project, error)
	GetByID(ctx context.Context, projectID int64) (model.Project, error)
	List(ctx context.Context, viewerID int64, includeAll bool, limit int) ([]model.Project, error)
}

type QueueWriter interface {
	CreatePending(ctx context.Context, tx pgx.Tx, kind enums.EntityKind, entityID, ownerID int64) error
}

type TxRunner interface {
	RunTx(ctx context.Context, fn func(context.Context, pgx.Tx) error) error
}

type Service struct {
	tx        TxRunner
	store     Store
	queue     QueueWriter
	policy    rules.Policy
	listLimit int
}

type SubmitInput struct {
	Title       string
	Description string
	RepoURL     string
	DemoURL     string
}

func NewService(tx TxRunner, store Store, queue QueueWriter, policy rules.Policy, listLimit int) *Service {
	if listLimit <= 0 {
		listLimit = 100
	}
	return &Service{
		tx:        tx,
		store:     store,
		queue:     queue,
		policy:    policy,
		listLimit: listLimit,
	}
}

func (s *Service) Submit(ctx context.Context, ownerID int64, in SubmitInput) (model.Project, error) {
	if ownerID <= 0 {
		return model.Project{}, fmt.Errorf("invalid owner id: %w", ErrValidation)
	}
	if s.tx == nil || s.store == nil || s.queue == nil {
		return model.Project{}, fmt.Errorf("project service dependencies are not configured")
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return model.Project{}, fmt.Errorf("title is required: %w", ErrValidation)
	}

	repoURL, err := normalizeURL(in.RepoURL)
	if err != nil {
		return model.Project{}, fmt.Errorf("repo url: %w", err)
	}
	demoURL, err := normalizeURL(in.DemoURL)
	if err != nil {
		return model.Project{}, fmt.Errorf("demo url: %w", err)
	}

	var created model.Project
	err = s.tx.RunTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		project, err := s.store.Create(ctx, tx, model.Project{
			OwnerID:     ownerID,
			Title:       title,
			Description: strings.TrimSpace(in.Description),
			RepoURL:     repoURL,
			DemoURL:     demoURL,
			Status:      enums.ModerationStatusPending,
		})
		if err != nil {
			return fmt.Errorf("create project: %w", err)
		}
		created = project

		return s.queue.CreatePending(ctx, tx, enums.EntityKindProject, project.ID, ownerID)
	})
	if err != nil {
		return model.Project{}, err
	}

	return created, nil
}

func (s *Service) List(ctx context.Context, viewer rules.Viewer) ([]model.Project, error) {
	if s.store == nil {
		return nil, fmt.Errorf("project store is nil")
	}

	projects, err := s.store.List(ctx, viewer.UserID, viewer.IsAdmin, s.listLimit)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	visible := make([]model.Project, 0, len(projects))
	for _, project := range projects {
		entity := rules.Entity{OwnerID: project.OwnerID, Status: project.Status}
		if rules.Visible(viewer, entity, s.policy.Complete(enums.EntityKindProject, project)) {
			visible = append(visible, project)
		}
	}

	return visible, nil
}

func (s *Service) Get(ctx context.Context, viewer rules.Viewer, projectID int64) (model.Project, error) {
	if projectID <= 0 {
		return model.Project{}, fmt.Errorf("invalid project id: %w", ErrValidation)
	}
	if s.store == nil {
		return model.Project{}, fmt.Errorf("project store is nil")
	}

	project, err := s.store.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrProjectNotFound) {
			return model.Project{}, ErrNotFound
		}
		return model.Project{}, fmt.Errorf("get project: %w", err)
	}

	entity := rules.Entity{OwnerID: project.OwnerID, Status: project.Status}
	if !rules.Visible(viewer, entity, s.policy.Complete(enums.EntityKindProject, project)) {
		return model.Project{}, ErrNotFound
	}

	return project, nil
}

func normalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}

	parsed, err := url.Parse(raw)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return "", ErrValidation
	}
	return parsed.String(), nil
}
