package photos

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
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
	nextID    int64
	photos    map[int64]model.Photo
	createErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{nextID: 1, photos: map[int64]model.Photo{}}
}

func (s *fakeStore) Create(_ context.Context, _ pgx.Tx, photo model.Photo) (model.Photo, error) {
	if s.createErr != nil {
		return model.Photo{}, s.createErr
	}
	photo.ID = s.nextID
	s.nextID++
	s.photos[photo.ID] = photo
	return photo, nil
}

func (s *fakeStore) GetByID(_ context.Context, photoID int64) (model.Photo, error) {
	photo, ok := s.photos[photoID]
	if !ok {
		return model.Photo{}, errors.New("missing")
	}
	return photo, nil
}

func (s *fakeStore) List(_ context.Context, viewerID int64, includeAll bool, eventID *int64, _ int) ([]model.Photo, error) {
	out := make([]model.Photo, 0)
	for _, photo := range s.photos {
		if eventID != nil && (photo.EventID == nil || *photo.EventID != *eventID) {
			continue
		}
		if includeAll || photo.Status == enums.ModerationStatusApproved || photo.OwnerID == viewerID {
			out = append(out, photo)
		}
	}
	return out, nil
}

type fakeQueue struct {
	enqueued []int64
}

func (q *fakeQueue) CreatePending(_ context.Context, _ pgx.Tx, kind enums.EntityKind, entityID, _ int64) error {
	if kind != enums.EntityKindPhoto {
		return errors.New("unexpected kind")
	}
	q.enqueued = append(q.enqueued, entityID)
	return nil
}

type fakeStorage struct {
	objects map[string][]byte
	deleted []string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string][]byte{}}
}

func (s *fakeStorage) EnsureBucket(_ context.Context) error { return nil }

func (s *fakeStorage) PutObject(_ context.Context, key string, body io.Reader, _ int64, _ string) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	s.objects[key] = data
	return nil
}

func (s *fakeStorage) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://signed.example/" + key, nil
}

func (s *fakeStorage) Delete(_ context.Context, key string) error {
	delete(s.objects, key)
	s.deleted = append(s.deleted, key)
	return nil
}

func newTestService(store *fakeStore, queue *fakeQueue, storage *fakeStorage) *Service {
	return NewService(fakeTxRunner{}, store, queue, storage, rules.DefaultPolicy(), time.Minute, 100)
}

func TestUploadCreatesPendingPhoto(t *testing.T) {
	store := newFakeStore()
	queue := &fakeQueue{}
	storage := newFakeStorage()
	svc := newTestService(store, queue, storage)

	created, err := svc.Upload(context.Background(), 7, UploadInput{
		Caption:     "grad day",
		FileName:    "grad.JPG",
		ContentType: "image/jpeg",
		Body:        bytes.NewReader([]byte("img")),
		Size:        3,
	})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if created.Status != enums.ModerationStatusPending {
		t.Fatalf("new photo must be pending, got %s", created.Status)
	}
	if !strings.HasPrefix(created.ObjectKey, "photos/7/") || !strings.HasSuffix(created.ObjectKey, ".jpg") {
		t.Fatalf("unexpected object key %q", created.ObjectKey)
	}
	if _, ok := storage.objects[created.ObjectKey]; !ok {
		t.Fatalf("object not stored under %q", created.ObjectKey)
	}
	if len(queue.enqueued) != 1 || queue.enqueued[0] != created.ID {
		t.Fatalf("photo not enqueued for moderation: %v", queue.enqueued)
	}
}

func TestUploadRollsBackObjectOnDBFailure(t *testing.T) {
	store := newFakeStore()
	store.createErr = errors.New("db down")
	storage := newFakeStorage()
	svc := newTestService(store, &fakeQueue{}, storage)

	_, err := svc.Upload(context.Background(), 7, UploadInput{
		FileName: "a.png",
		Body:     bytes.NewReader([]byte("img")),
		Size:     3,
	})
	if err == nil {
		t.Fatalf("expected upload to fail")
	}
	if len(storage.objects) != 0 {
		t.Fatalf("orphaned object left in storage: %v", storage.objects)
	}
	if len(storage.deleted) != 1 {
		t.Fatalf("expected one rollback delete, got %v", storage.deleted)
	}
}

func TestUploadValidation(t *testing.T) {
	svc := newTestService(newFakeStore(), &fakeQueue{}, newFakeStorage())

	if _, err := svc.Upload(context.Background(), 7, UploadInput{Size: 0}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for empty body, got %v", err)
	}
	if _, err := svc.Upload(context.Background(), 7, UploadInput{
		Body: bytes.NewReader([]byte("x")),
		Size: maxPhotoSize + 1,
	}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for oversized photo, got %v", err)
	}
}

func TestListAppliesVisibility(t *testing.T) {
	store := newFakeStore()
	eventID := int64(55)
	store.photos[1] = model.Photo{ID: 1, OwnerID: 1, ObjectKey: "k1", Status: enums.ModerationStatusApproved}
	store.photos[2] = model.Photo{ID: 2, OwnerID: 2, ObjectKey: "k2", Status: enums.ModerationStatusPending}
	store.photos[3] = model.Photo{ID: 3, OwnerID: 1, EventID: &eventID, ObjectKey: "k3", Status: enums.ModerationStatusApproved}
	svc := newTestService(store, &fakeQueue{}, newFakeStorage())

	ctx := context.Background()

	views, err := svc.List(ctx, rules.Viewer{}, nil)
	if err != nil {
		t.Fatalf("list as anonymous: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("anonymous should see only approved photos, got %+v", views)
	}
	for _, view := range views {
		if view.URL == "" {
			t.Fatalf("approved photo must carry a signed url: %+v", view)
		}
	}

	views, err = svc.List(ctx, rules.Viewer{UserID: 2}, nil)
	if err != nil {
		t.Fatalf("list as owner: %v", err)
	}
	if len(views) != 3 {
		t.Fatalf("owner should also see their pending photo, got %d", len(views))
	}

	views, err = svc.List(ctx, rules.Viewer{}, &eventID)
	if err != nil {
		t.Fatalf("list by event: %v", err)
	}
	if len(views) != 1 || views[0].ID != 3 {
		t.Fatalf("event filter not applied, got %+v", views)
	}
}
