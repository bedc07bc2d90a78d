package events

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/memoryline/yearbook/internal/domain/enums"
	"github.com/memoryline/yearbook/internal/domain/model"
	"github.com/memoryline/yearbook/internal/domain/rules"
	pgrepo "github.com/memoryline/yearbook/internal/repo/postgres"
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("event not found")
)

type Store interface {
	Create(ctx context.Context, tx pgx.Tx, event model.Event) (model.Event, error)
	GetByID(ctx context.Context, eventID int64) (model.Event, error)
	List(ctx context.Context, viewerID int64, includeAll bool, limit int) ([]model.Event, error)
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
	Location    string
	StartsAt    time.Time
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

func (s *Service) Submit(ctx context.Context, ownerID int64, in SubmitInput) (model.Event, error) {
	if ownerID <= 0 {
		return model.Event{}, fmt.Errorf("invalid owner id: %w", ErrValidation)
	}
	if s.tx == nil || s.store == nil || s.queue == nil {
		return model.Event{}, fmt.Errorf("event service dependencies are not configured")
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return model.Event{}, fmt.Errorf("title is required: %w", ErrValidation)
	}
	if in.StartsAt.IsZero() {
		return model.Event{}, fmt.Errorf("start time is required: %w", ErrValidation)
	}

	var created model.Event
	err := s.tx.RunTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		event, err := s.store.Create(ctx, tx, model.Event{
			OwnerID:     ownerID,
			Title:       title,
			Description: strings.TrimSpace(in.Description),
			Location:    strings.TrimSpace(in.Location),
			StartsAt:    in.StartsAt.UTC(),
			Status:      enums.ModerationStatusPending,
		})
		if err != nil {
			return fmt.Errorf("create event: %w", err)
		}
		created = event

		return s.queue.CreatePending(ctx, tx, enums.EntityKindEvent, event.ID, ownerID)
	})
	if err != nil {
		return model.Event{}, err
	}

	return created, nil
}

func (s *Service) List(ctx context.Context, viewer rules.Viewer) ([]model.Event, error) {
	if s.store == nil {
		return nil, fmt.Errorf("event store is nil")
	}

	events, err := s.store.List(ctx, viewer.UserID, viewer.IsAdmin, s.listLimit)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	visible := make([]model.Event, 0, len(events))
	for _, event := range events {
		entity := rules.Entity{OwnerID: event.OwnerID, Status: event.Status}
		if rules.Visible(viewer, entity, s.policy.Complete(enums.EntityKindEvent, event)) {
			visible = append(visible, event)
		}
	}

	return visible, nil
}

func (s *Service) Get(ctx context.Context, viewer rules.Viewer, eventID int64) (model.Event, error) {
	if eventID <= 0 {
		return model.Event{}, fmt.Errorf("invalid event id: %w", ErrValidation)
	}
	if s.store == nil {
		return model.Event{}, fmt.Errorf("event store is nil")
	}

	event, err := s.store.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrEventNotFound) {
			return model.Event{}, ErrNotFound
		}
		return model.Event{}, fmt.Errorf("get event: %w", err)
	}

	entity := rules.Entity{OwnerID: event.OwnerID, Status: event.Status}
	if !rules.Visible(viewer, entity, s.policy.Complete(enums.EntityKindEvent, event)) {
		return model.Event{}, ErrNotFound
	}

	return event, nil
}
