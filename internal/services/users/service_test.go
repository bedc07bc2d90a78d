package users

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"

	"github.com/memoryline/yearbook/internal/domain/enums"
	"github.com/memoryline/yearbook/internal/domain/model"
	"github.com/memoryline/yearbook/internal/domain/rules"
	pgrepo "github.com/memoryline/yearbook/internal/repo/postgres"
)

type fakeTxRunner struct{}

func (fakeTxRunner) RunTx(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
	return fn(ctx, nil)
}

type fakeStore struct {
	nextID int64
	users  map[int64]model.User
}

func newFakeStore() *fakeStore {
	return &fakeStore{nextID: 1, users: map[int64]model.User{}}
}

func (s *fakeStore) Create(_ context.Context, _ pgx.Tx, username, email, passwordHash string) (model.User, error) {
	for _, user := range s.users {
		if user.Username == username {
			return model.User{}, pgrepo.ErrUsernameTaken
		}
	}
	user := model.User{
		ID:           s.nextID,
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         enums.RoleUser,
		Status:       enums.ModerationStatusPending,
	}
	s.nextID++
	s.users[user.ID] = user
	return user, nil
}

func (s *fakeStore) GetByID(_ context.Context, userID int64) (model.User, error) {
	user, ok := s.users[userID]
	if !ok {
		return model.User{}, pgrepo.ErrUserNotFound
	}
	return user, nil
}

func (s *fakeStore) List(_ context.Context, viewerID int64, includeAll bool, _ int) ([]model.User, error) {
	out := make([]model.User, 0)
	for _, user := range s.users {
		if includeAll || user.Status == enums.ModerationStatusApproved || user.ID == viewerID {
			out = append(out, user)
		}
	}
	return out, nil
}

type fakeQueue struct {
	enqueued []int64
}

func (q *fakeQueue) CreatePending(_ context.Context, _ pgx.Tx, kind enums.EntityKind, entityID, ownerID int64) error {
	if kind != enums.EntityKindUser {
		return errors.New("unexpected kind")
	}
	if entityID != ownerID {
		return errors.New("account queue rows must be self-owned")
	}
	q.enqueued = append(q.enqueued, entityID)
	return nil
}

func TestRegisterCreatesPendingAccount(t *testing.T) {
	store := newFakeStore()
	queue := &fakeQueue{}
	svc := NewService(fakeTxRunner{}, store, queue, 100)

	created, err := svc.Register(context.Background(), "Grad.2024", "grad@example.com", "s3cret-pass")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if created.Username != "grad.2024" {
		t.Fatalf("username not normalized: %q", created.Username)
	}
	if created.Status != enums.ModerationStatusPending {
		t.Fatalf("new account must be pending, got %s", created.Status)
	}
	if len(queue.enqueued) != 1 || queue.enqueued[0] != created.ID {
		t.Fatalf("account not enqueued for moderation: %v", queue.enqueued)
	}

	if _, err := svc.Register(context.Background(), "grad.2024", "other@example.com", "s3cret-pass"); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := NewService(fakeTxRunner{}, newFakeStore(), &fakeQueue{}, 100)

	tests := []struct {
		name     string
		username string
		email    string
		password string
	}{
		{name: "short username", username: "ab", email: "a@example.com", password: "longenough"},
		{name: "bad characters", username: "has space", email: "a@example.com", password: "longenough"},
		{name: "long username", username: strings.Repeat("a", 40), email: "a@example.com", password: "longenough"},
		{name: "bad email", username: "alice", email: "not-an-email", password: "longenough"},
		{name: "short password", username: "alice", email: "a@example.com", password: "short"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Register(context.Background(), tt.username, tt.email, tt.password); !errors.Is(err, ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestListAppliesVisibility(t *testing.T) {
	store := newFakeStore()
	store.users[1] = model.User{ID: 1, Username: "a", Status: enums.ModerationStatusApproved}
	store.users[2] = model.User{ID: 2, Username: "b", Status: enums.ModerationStatusPending}
	store.users[3] = model.User{ID: 3, Username: "c", Status: enums.ModerationStatusRejected}
	svc := NewService(fakeTxRunner{}, store, &fakeQueue{}, 100)

	ctx := context.Background()

	users, err := svc.List(ctx, rules.Viewer{})
	if err != nil {
		t.Fatalf("list as anonymous: %v", err)
	}
	if len(users) != 1 || users[0].ID != 1 {
		t.Fatalf("anonymous should see only approved accounts, got %+v", users)
	}

	users, err = svc.List(ctx, rules.Viewer{UserID: 2})
	if err != nil {
		t.Fatalf("list as pending member: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("members always see themselves, got %+v", users)
	}

	users, err = svc.List(ctx, rules.Viewer{IsAdmin: true, UserID: 9})
	if err != nil {
		t.Fatalf("list as admin: %v", err)
	}
	if len(users) != 3 {
		t.Fatalf("admin should see the full roster, got %d", len(users))
	}
}
