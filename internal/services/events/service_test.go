package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/memoryline/yearbook/internal/domain/enums"
	"github.com/memoryline/yearbook/internal/domain/model"
	"github.com/memoryline/yearbook/internal/domain/rules"
)

type fakeTxRunner struct{}

func (fakeTxRunner) RunTx(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
	return fn(ctx, nil)
}

type fakeStore struct {
	nextID int64
	events map[int64]model.Event
}

func newFakeStore() *fakeStore {
	return &fakeStore{nextID: 1, events: map[int64]model.Event{}}
}

func (s *fakeStore) Create(_ context.Context, _ pgx.Tx, event model.Event) (model.Event, error) {
	event.ID = s.nextID
	s.nextID++
	s.events[event.ID] = event
	return event, nil
}

func (s *fakeStore) GetByID(_ context.Context, eventID int64) (model.Event, error) {
	event, ok := s.events[eventID]
	if !ok {
		return model.Event{}, errors.New("missing")
	}
	return event, nil
}

func (s *fakeStore) List(_ context.Context, viewerID int64, includeAll bool, _ int) ([]model.Event, error) {
	out := make([]model.Event, 0)
	for _, event := range s.events {
		if includeAll || event.Status == enums.ModerationStatusApproved || event.OwnerID == viewerID {
			out = append(out, event)
		}
	}
	return out, nil
}

type fakeQueue struct {
	enqueued []int64
}

func (q *fakeQueue) CreatePending(_ context.Context, _ pgx.Tx, kind enums.EntityKind, entityID, _ int64) error {
	if kind != enums.EntityKindEvent {
		return errors.New("unexpected kind")
	}
	q.enqueued = append(q.enqueued, entityID)
	return nil
}

func TestSubmitCreatesPendingEvent(t *testing.T) {
	store := newFakeStore()
	queue := &fakeQueue{}
	svc := NewService(fakeTxRunner{}, store, queue, rules.DefaultPolicy(), 100)

	created, err := svc.Submit(context.Background(), 7, SubmitInput{
		Title:    "Reunion",
		Location: "Old gym",
		StartsAt: time.Now().Add(24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if created.Status != enums.ModerationStatusPending {
		t.Fatalf("new event must be pending, got %s", created.Status)
	}
	if len(queue.enqueued) != 1 || queue.enqueued[0] != created.ID {
		t.Fatalf("event not enqueued for moderation: %v", queue.enqueued)
	}

	if _, err := svc.Submit(context.Background(), 7, SubmitInput{Title: " ", StartsAt: time.Now()}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for empty title, got %v", err)
	}
	if _, err := svc.Submit(context.Background(), 7, SubmitInput{Title: "x"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for missing start time, got %v", err)
	}
}

func TestListAndGetApplyVisibility(t *testing.T) {
	store := newFakeStore()
	store.events[1] = model.Event{ID: 1, OwnerID: 1, Title: "a", Status: enums.ModerationStatusApproved}
	store.events[2] = model.Event{ID: 2, OwnerID: 2, Title: "b", Status: enums.ModerationStatusPending}
	svc := NewService(fakeTxRunner{}, store, &fakeQueue{}, rules.DefaultPolicy(), 100)

	ctx := context.Background()

	events, err := svc.List(ctx, rules.Viewer{})
	if err != nil {
		t.Fatalf("list as anonymous: %v", err)
	}
	if len(events) != 1 || events[0].ID != 1 {
		t.Fatalf("anonymous should see only approved events, got %+v", events)
	}

	if _, err := svc.Get(ctx, rules.Viewer{UserID: 9}, 2); !errors.Is(err, ErrNotFound) {
		t.Fatalf("stranger must get not-found for a pending event, got %v", err)
	}
	if _, err := svc.Get(ctx, rules.Viewer{UserID: 2}, 2); err != nil {
		t.Fatalf("owner must see their pending event: %v", err)
	}
}
