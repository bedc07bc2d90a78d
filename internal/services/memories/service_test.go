package memories

import (
	"context"
	"errors"
	"strings"
	"testing"

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
	nextID   int64
	memories map[int64]model.Memory
}

func newFakeStore() *fakeStore {
	return &fakeStore{nextID: 1, memories: map[int64]model.Memory{}}
}

func (s *fakeStore) Create(_ context.Context, _ pgx.Tx, memory model.Memory) (model.Memory, error) {
	memory.ID = s.nextID
	s.nextID++
	s.memories[memory.ID] = memory
	return memory, nil
}

func (s *fakeStore) GetByID(_ context.Context, memoryID int64) (model.Memory, error) {
	memory, ok := s.memories[memoryID]
	if !ok {
		return model.Memory{}, errors.New("missing")
	}
	return memory, nil
}

func (s *fakeStore) List(_ context.Context, viewerID int64, includeAll bool, _ int) ([]model.Memory, error) {
	out := make([]model.Memory, 0)
	for _, memory := range s.memories {
		if includeAll || memory.Status == enums.ModerationStatusApproved || memory.OwnerID == viewerID {
			out = append(out, memory)
		}
	}
	return out, nil
}

type fakeQueue struct {
	enqueued []int64
}

func (q *fakeQueue) CreatePending(_ context.Context, _ pgx.Tx, kind enums.EntityKind, entityID, _ int64) error {
	if kind != enums.EntityKindMemory {
		return errors.New("unexpected kind")
	}
	q.enqueued = append(q.enqueued, entityID)
	return nil
}

func TestSubmitCreatesPendingMemory(t *testing.T) {
	store := newFakeStore()
	queue := &fakeQueue{}
	svc := NewService(fakeTxRunner{}, store, queue, rules.DefaultPolicy(), 100)

	created, err := svc.Submit(context.Background(), 7, "Last bell", "We stayed until midnight.")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if created.Status != enums.ModerationStatusPending {
		t.Fatalf("new memory must be pending, got %s", created.Status)
	}
	if len(queue.enqueued) != 1 || queue.enqueued[0] != created.ID {
		t.Fatalf("memory not enqueued for moderation: %v", queue.enqueued)
	}

	if _, err := svc.Submit(context.Background(), 7, "", "body"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for empty title, got %v", err)
	}
	if _, err := svc.Submit(context.Background(), 7, "t", strings.Repeat("x", maxBodyLen+1)); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for oversized body, got %v", err)
	}
}

func TestListAppliesVisibility(t *testing.T) {
	store := newFakeStore()
	store.memories[1] = model.Memory{ID: 1, OwnerID: 1, Status: enums.ModerationStatusApproved}
	store.memories[2] = model.Memory{ID: 2, OwnerID: 2, Status: enums.ModerationStatusRejected}
	svc := NewService(fakeTxRunner{}, store, &fakeQueue{}, rules.DefaultPolicy(), 100)

	ctx := context.Background()

	memories, err := svc.List(ctx, rules.Viewer{})
	if err != nil {
		t.Fatalf("list as anonymous: %v", err)
	}
	if len(memories) != 1 || memories[0].ID != 1 {
		t.Fatalf("anonymous should see only approved memories, got %+v", memories)
	}

	memories, err = svc.List(ctx, rules.Viewer{UserID: 2})
	if err != nil {
		t.Fatalf("list as owner: %v", err)
	}
	if len(memories) != 2 {
		t.Fatalf("owner should see their rejected memory too, got %+v", memories)
	}
}
