package memories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/memoryline/yearbook/internal/domain/enums"
	"github.com/memoryline/yearbook/internal/domain/model"
	"github.com/memoryline/yearbook/internal/domain/rules"
	pgrepo "github.com/memoryline/yearbook/internal/repo/postgres"
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("memory not found")
)

const maxBodyLen = 5000

type Store interface {
	Create(ctx context.Context, tx pgx.Tx, memory model.Memory) (model.Memory, error)
	GetByID(ctx context.Context, memoryID int64) (model.Memory, error)
	List(ctx context.Context, viewerID int64, includeAll bool, limit int) ([]model.Memory, error)
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

func (s *Service) Submit(ctx context.Context, ownerID int64, title, body string) (model.Memory, error) {
	if ownerID <= 0 {
		return model.Memory{}, fmt.Errorf("invalid owner id: %w", ErrValidation)
	}
	if s.tx == nil || s.store == nil || s.queue == nil {
		return model.Memory{}, fmt.Errorf("memory service dependencies are not configured")
	}

	title = strings.TrimSpace(title)
	body = strings.TrimSpace(body)
	if title == "" || body == "" {
		return model.Memory{}, fmt.Errorf("title and body are required: %w", ErrValidation)
	}
	if len(body) > maxBodyLen {
		return model.Memory{}, fmt.Errorf("body is too long: %w", ErrValidation)
	}

	var created model.Memory
	err := s.tx.RunTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		memory, err := s.store.Create(ctx, tx, model.Memory{
			OwnerID: ownerID,
			Title:   title,
			Body:    body,
			Status:  enums.ModerationStatusPending,
		})
		if err != nil {
			return fmt.Errorf("create memory: %w", err)
		}
		created = memory

		return s.queue.CreatePending(ctx, tx, enums.EntityKindMemory, memory.ID, ownerID)
	})
	if err != nil {
		return model.Memory{}, err
	}

	return created, nil
}

func (s *Service) List(ctx context.Context, viewer rules.Viewer) ([]model.Memory, error) {
	if s.store == nil {
		return nil, fmt.Errorf("memory store is nil")
	}

	memories, err := s.store.List(ctx, viewer.UserID, viewer.IsAdmin, s.listLimit)
	if err != nil {
		return nil, fmt.Errorf("list memories: %w", err)
	}

	visible := make([]model.Memory, 0, len(memories))
	for _, memory := range memories {
		entity := rules.Entity{OwnerID: memory.OwnerID, Status: memory.Status}
		if rules.Visible(viewer, entity, s.policy.Complete(enums.EntityKindMemory, memory)) {
			visible = append(visible, memory)
		}
	}

	return visible, nil
}

func (s *Service) Get(ctx context.Context, viewer rules.Viewer, memoryID int64) (model.Memory, error) {
	if memoryID <= 0 {
		return model.Memory{}, fmt.Errorf("invalid memory id: %w", ErrValidation)
	}
	if s.store == nil {
		return model.Memory{}, fmt.Errorf("memory store is nil")
	}

	memory, err := s.store.GetByID(ctx, memoryID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrMemoryNotFound) {
			return model.Memory{}, ErrNotFound
		}
		return model.Memory{}, fmt.Errorf("get memory: %w", err)
	}

	entity := rules.Entity{OwnerID: memory.OwnerID, Status: memory.Status}
	if !rules.Visible(viewer, entity, s.policy.Complete(enums.EntityKindMemory, memory)) {
		return model.Memory{}, ErrNotFound
	}

	return memory, nil
}
