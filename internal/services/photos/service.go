package photos

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/memoryline/yearbook/internal/domain/enums"
	"github.com/memoryline/yearbook/internal/domain/model"
	"github.com/memoryline/yearbook/internal/domain/rules"
	pgrepo "github.com/memoryline/yearbook/internal/repo/postgres"
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("photo not found")
)

const maxPhotoSize = 10 << 20

type Store interface {
	Create(ctx context.Context, tx pgx.Tx, photo model.Photo) (model.Photo, error)
	GetByID(ctx context.Context, photoID int64) (model.Photo, error)
	List(ctx context.Context, viewerID int64, includeAll bool, eventID *int64, limit int) ([]model.Photo, error)
}

type QueueWriter interface {
	CreatePending(ctx context.Context, tx pgx.Tx, kind enums.EntityKind, entityID, ownerID int64) error
}

type TxRunner interface {
	RunTx(ctx context.Context, fn func(context.Context, pgx.Tx) error) error
}

type ObjectStorage interface {
	EnsureBucket(ctx context.Context) error
	PutObject(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

type Service struct {
	tx        TxRunner
	store     Store
	queue     QueueWriter
	storage   ObjectStorage
	policy    rules.Policy
	signedTTL time.Duration
	listLimit int
}

type UploadInput struct {
	EventID     *int64
	Caption     string
	FileName    string
	ContentType string
	Body        io.Reader
	Size        int64
}

// View is a photo as rendered for a viewer. URL is empty for rejected photos
// whose object has already been removed.
type View struct {
	model.Photo
	URL string `json:"url,omitempty"`
}

func NewService(tx TxRunner, store Store, queue QueueWriter, storage ObjectStorage, policy rules.Policy, signedTTL time.Duration, listLimit int) *Service {
	if signedTTL <= 0 {
		signedTTL = 5 * time.Minute
	}
	if listLimit <= 0 {
		listLimit = 100
	}
	return &Service{
		tx:        tx,
		store:     store,
		queue:     queue,
		storage:   storage,
		policy:    policy,
		signedTTL: signedTTL,
		listLimit: listLimit,
	}
}

// Upload stores the binary first, then creates the pending row and the queue
// entry in one transaction. A failed transaction rolls the object back out of
// storage.
func (s *Service) Upload(ctx context.Context, ownerID int64, in UploadInput) (model.Photo, error) {
	if ownerID <= 0 || in.Body == nil || in.Size <= 0 {
		return model.Photo{}, fmt.Errorf("invalid upload payload: %w", ErrValidation)
	}
	if in.Size > maxPhotoSize {
		return model.Photo{}, fmt.Errorf("photo exceeds size limit: %w", ErrValidation)
	}
	if s.tx == nil || s.store == nil || s.queue == nil || s.storage == nil {
		return model.Photo{}, fmt.Errorf("photo service dependencies are not configured")
	}

	if err := s.storage.EnsureBucket(ctx); err != nil {
		return model.Photo{}, fmt.Errorf("ensure bucket: %w", err)
	}

	objectKey := buildObjectKey(ownerID, in.FileName)

	contentType := strings.TrimSpace(in.ContentType)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	if err := s.storage.PutObject(ctx, objectKey, in.Body, in.Size, contentType); err != nil {
		return model.Photo{}, fmt.Errorf("put object: %w", err)
	}

	var created model.Photo
	err := s.tx.RunTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		photo, err := s.store.Create(ctx, tx, model.Photo{
			OwnerID:   ownerID,
			EventID:   in.EventID,
			Caption:   strings.TrimSpace(in.Caption),
			ObjectKey: objectKey,
			Status:    enums.ModerationStatusPending,
		})
		if err != nil {
			return fmt.Errorf("create photo record: %w", err)
		}
		created = photo

		return s.queue.CreatePending(ctx, tx, enums.EntityKindPhoto, photo.ID, ownerID)
	})
	if err != nil {
		_ = s.storage.Delete(ctx, objectKey)
		return model.Photo{}, err
	}

	return created, nil
}

func (s *Service) List(ctx context.Context, viewer rules.Viewer, eventID *int64) ([]View, error) {
	if s.store == nil {
		return nil, fmt.Errorf("photo store is nil")
	}

	photos, err := s.store.List(ctx, viewer.UserID, viewer.IsAdmin, eventID, s.listLimit)
	if err != nil {
		return nil, fmt.Errorf("list photos: %w", err)
	}

	views := make([]View, 0, len(photos))
	for _, photo := range photos {
		entity := rules.Entity{OwnerID: photo.OwnerID, Status: photo.Status}
		if !rules.Visible(viewer, entity, s.policy.Complete(enums.EntityKindPhoto, photo)) {
			continue
		}

		view, err := s.render(ctx, photo)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}

	return views, nil
}

func (s *Service) Get(ctx context.Context, viewer rules.Viewer, photoID int64) (View, error) {
	if photoID <= 0 {
		return View{}, fmt.Errorf("invalid photo id: %w", ErrValidation)
	}
	if s.store == nil {
		return View{}, fmt.Errorf("photo store is nil")
	}

	photo, err := s.store.GetByID(ctx, photoID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrPhotoNotFound) {
			return View{}, ErrNotFound
		}
		return View{}, fmt.Errorf("get photo: %w", err)
	}

	entity := rules.Entity{OwnerID: photo.OwnerID, Status: photo.Status}
	if !rules.Visible(viewer, entity, s.policy.Complete(enums.EntityKindPhoto, photo)) {
		return View{}, ErrNotFound
	}

	return s.render(ctx, photo)
}

func (s *Service) render(ctx context.Context, photo model.Photo) (View, error) {
	view := View{Photo: photo}
	if photo.ObjectKey != "" && s.storage != nil {
		url, err := s.storage.PresignGet(ctx, photo.ObjectKey, s.signedTTL)
		if err != nil {
			return View{}, fmt.Errorf("sign photo url: %w", err)
		}
		view.URL = url
	}
	return view, nil
}

func buildObjectKey(ownerID int64, fileName string) string {
	ext := strings.ToLower(path.Ext(strings.TrimSpace(fileName)))
	if len(ext) > 8 {
		ext = ""
	}
	return fmt.Sprintf("photos/%d/%s%s", ownerID, uuid.NewString(), ext)
}
