package moderation

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/memoryline/yearbook/internal/domain/enums"
	pgrepo "github.com/memoryline/yearbook/internal/repo/postgres"
)

// ObjectRemover deletes one stored media object.
type ObjectRemover interface {
	Delete(ctx context.Context, key string) error
}

// NewSources binds every moderatable kind to its repository. The photo source
// also gets the object store so a reject can drop the binary.
func NewSources(
	profiles *pgrepo.ProfileRepo,
	users *pgrepo.UserRepo,
	events *pgrepo.EventRepo,
	photos *pgrepo.PhotoRepo,
	memories *pgrepo.MemoryRepo,
	projects *pgrepo.ProjectRepo,
	storage ObjectRemover,
) map[enums.EntityKind]EntitySource {
	return map[enums.EntityKind]EntitySource{
		enums.EntityKindProfile: profileSource{repo: profiles},
		enums.EntityKindUser:    userSource{repo: users},
		enums.EntityKindEvent:   eventSource{repo: events},
		enums.EntityKindPhoto:   photoSource{repo: photos, storage: storage},
		enums.EntityKindMemory:  memorySource{repo: memories},
		enums.EntityKindProject: projectSource{repo: projects},
	}
}

type profileSource struct {
	repo *pgrepo.ProfileRepo
}

func (s profileSource) ApplyDecision(ctx context.Context, tx pgx.Tx, entityID int64, status enums.ModerationStatus) error {
	return s.repo.ApplyDecision(ctx, tx, entityID, status)
}

func (s profileSource) Summary(ctx context.Context, entityID int64) (EntitySummary, error) {
	profile, err := s.repo.GetByID(ctx, entityID)
	if err != nil {
		return EntitySummary{}, err
	}
	return EntitySummary{
		Title:     profile.Nickname,
		Preview:   profile.Bio,
		ObjectKey: profile.PhotoKey,
	}, nil
}

type userSource struct {
	repo *pgrepo.UserRepo
}

func (s userSource) ApplyDecision(ctx context.Context, tx pgx.Tx, entityID int64, status enums.ModerationStatus) error {
	return s.repo.ApplyDecision(ctx, tx, entityID, status)
}

func (s userSource) Summary(ctx context.Context, entityID int64) (EntitySummary, error) {
	user, err := s.repo.GetByID(ctx, entityID)
	if err != nil {
		return EntitySummary{}, err
	}
	return EntitySummary{
		Title:   user.Username,
		Preview: user.Email,
	}, nil
}

type eventSource struct {
	repo *pgrepo.EventRepo
}

func (s eventSource) ApplyDecision(ctx context.Context, tx pgx.Tx, entityID int64, status enums.ModerationStatus) error {
	return s.repo.ApplyDecision(ctx, tx, entityID, status)
}

func (s eventSource) Summary(ctx context.Context, entityID int64) (EntitySummary, error) {
	event, err := s.repo.GetByID(ctx, entityID)
	if err != nil {
		return EntitySummary{}, err
	}
	return EntitySummary{
		Title:   event.Title,
		Preview: event.Description,
	}, nil
}

type photoSource struct {
	repo    *pgrepo.PhotoRepo
	storage ObjectRemover
}

func (s photoSource) ApplyDecision(ctx context.Context, tx pgx.Tx, entityID int64, status enums.ModerationStatus) error {
	return s.repo.ApplyDecision(ctx, tx, entityID, status)
}

func (s photoSource) Summary(ctx context.Context, entityID int64) (EntitySummary, error) {
	photo, err := s.repo.GetByID(ctx, entityID)
	if err != nil {
		return EntitySummary{}, err
	}
	return EntitySummary{
		Title:     photo.Caption,
		ObjectKey: photo.ObjectKey,
	}, nil
}

// CleanupRejected removes the binary from the object store and blanks the
// key on the retained row. Runs after the decision commits: the object store
// is not part of the transaction.
func (s photoSource) CleanupRejected(ctx context.Context, entityID int64) error {
	photo, err := s.repo.GetByID(ctx, entityID)
	if err != nil {
		return err
	}
	if photo.ObjectKey == "" {
		return nil
	}

	if s.storage != nil {
		if err := s.storage.Delete(ctx, photo.ObjectKey); err != nil {
			return fmt.Errorf("delete rejected photo object: %w", err)
		}
	}

	return s.repo.ClearObjectKey(ctx, entityID)
}

type memorySource struct {
	repo *pgrepo.MemoryRepo
}

func (s memorySource) ApplyDecision(ctx context.Context, tx pgx.Tx, entityID int64, status enums.ModerationStatus) error {
	return s.repo.ApplyDecision(ctx, tx, entityID, status)
}

func (s memorySource) Summary(ctx context.Context, entityID int64) (EntitySummary, error) {
	memory, err := s.repo.GetByID(ctx, entityID)
	if err != nil {
		return EntitySummary{}, err
	}
	return EntitySummary{
		Title:   memory.Title,
		Preview: memory.Body,
	}, nil
}

type projectSource struct {
	repo *pgrepo.ProjectRepo
}

func (s projectSource) ApplyDecision(ctx context.Context, tx pgx.Tx, entityID int64, status enums.ModerationStatus) error {
	return s.repo.ApplyDecision(ctx, tx, entityID, status)
}

func (s projectSource) Summary(ctx context.Context, entityID int64) (EntitySummary, error) {
	project, err := s.repo.GetByID(ctx, entityID)
	if err != nil {
		return EntitySummary{}, err
	}
	return EntitySummary{
		Title:   project.Title,
		Preview: project.Description,
	}, nil
}
