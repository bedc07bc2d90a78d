package moderation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/memoryline/yearbook/internal/domain/enums"
	pgrepo "github.com/memoryline/yearbook/internal/repo/postgres"
	authsvc "github.com/memoryline/yearbook/internal/services/auth"
)

type Config struct {
	PendingPageLimit int
	SignedURLTTL     time.Duration
}

type Service struct {
	tx       TxRunner
	queue    QueueStore
	sources  map[enums.EntityKind]EntitySource
	cache    CountCache
	signer   URLSigner
	sessions ApprovalNotifier
	cfg      Config
}

func NewService(
	tx TxRunner,
	queue QueueStore,
	sources map[enums.EntityKind]EntitySource,
	cache CountCache,
	signer URLSigner,
	sessions ApprovalNotifier,
	cfg Config,
) *Service {
	if cfg.PendingPageLimit <= 0 {
		cfg.PendingPageLimit = 100
	}
	if cfg.SignedURLTTL <= 0 {
		cfg.SignedURLTTL = 5 * time.Minute
	}

	return &Service{
		tx:       tx,
		queue:    queue,
		sources:  sources,
		cache:    cache,
		signer:   signer,
		sessions: sessions,
		cfg:      cfg,
	}
}

// ListPending returns a snapshot of one kind's queue, oldest first. The
// snapshot is advisory: a decision between the list and a later action
// surfaces as a conflict, never as a double transition.
func (s *Service) ListPending(ctx context.Context, actor authsvc.Identity, kind enums.EntityKind) ([]QueueItem, error) {
	if !actor.IsAdmin() {
		return nil, ErrNotAdmin
	}
	source, ok := s.sources[kind]
	if !ok {
		return nil, ErrUnknownKind
	}
	if s.queue == nil {
		return nil, fmt.Errorf("moderation queue store is not configured")
	}

	records, err := s.queue.ListPending(ctx, kind, s.cfg.PendingPageLimit)
	if err != nil {
		return nil, fmt.Errorf("list pending queue: %w", err)
	}

	queueSize, err := s.pendingCount(ctx, kind)
	if err != nil {
		return nil, err
	}

	items := make([]QueueItem, 0, len(records))
	for _, record := range records {
		item := QueueItem{
			ItemID:      record.ID,
			Kind:        kind,
			EntityID:    record.EntityID,
			OwnerID:     record.OwnerID,
			QueueSize:   queueSize,
			SubmittedAt: record.CreatedAt,
		}

		summary, err := source.Summary(ctx, record.EntityID)
		if err != nil {
			// The entity row vanished under the queue row; surface the
			// bare item rather than failing the whole snapshot.
			items = append(items, item)
			continue
		}
		item.Title = summary.Title
		item.Preview = summary.Preview

		if summary.ObjectKey != "" && s.signer != nil {
			url, signErr := s.signer.PresignGet(ctx, summary.ObjectKey, s.cfg.SignedURLTTL)
			if signErr != nil {
				return nil, fmt.Errorf("sign queue item media: %w", signErr)
			}
			item.PhotoURL = url
		}

		items = append(items, item)
	}

	return items, nil
}

func (s *Service) Approve(ctx context.Context, actor authsvc.Identity, kind enums.EntityKind, entityID int64) (Decision, error) {
	decision, err := s.decide(ctx, actor, kind, entityID, enums.ModerationStatusApproved, "")
	if err != nil {
		return Decision{}, err
	}

	if kind == enums.EntityKindUser && s.sessions != nil {
		if err := s.sessions.SetApproved(ctx, entityID, true); err != nil {
			return Decision{}, fmt.Errorf("propagate account approval: %w", err)
		}
	}

	return decision, nil
}

func (s *Service) Reject(ctx context.Context, actor authsvc.Identity, kind enums.EntityKind, entityID int64, reason string) (Decision, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return Decision{}, ErrRejectReasonRequired
	}

	decision, err := s.decide(ctx, actor, kind, entityID, enums.ModerationStatusRejected, reason)
	if err != nil {
		return Decision{}, err
	}

	if cleanup, ok := s.sources[kind].(RejectCleanup); ok {
		if err := cleanup.CleanupRejected(ctx, entityID); err != nil {
			return Decision{}, fmt.Errorf("cleanup rejected entity: %w", err)
		}
	}

	return decision, nil
}

func (s *Service) decide(ctx context.Context, actor authsvc.Identity, kind enums.EntityKind, entityID int64, status enums.ModerationStatus, reason string) (Decision, error) {
	if !actor.IsAdmin() {
		return Decision{}, ErrNotAdmin
	}
	source, ok := s.sources[kind]
	if !ok {
		return Decision{}, ErrUnknownKind
	}
	if entityID <= 0 {
		return Decision{}, fmt.Errorf("invalid entity id")
	}
	if s.tx == nil || s.queue == nil {
		return Decision{}, fmt.Errorf("moderation service dependencies are not configured")
	}

	var record pgrepo.ModerationItemRecord
	err := s.tx.RunTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		decided, err := s.queue.Decide(ctx, tx, kind, entityID, status, actor.UserID, reason)
		if err != nil {
			return err
		}
		record = decided

		return source.ApplyDecision(ctx, tx, entityID, status)
	})
	if err != nil {
		if errors.Is(err, pgrepo.ErrModerationItemNotFound) || errors.Is(err, pgrepo.ErrModerationItemDecided) {
			return Decision{}, err
		}
		return Decision{}, fmt.Errorf("decide %s/%d: %w", kind, entityID, err)
	}

	if s.cache != nil {
		_ = s.cache.InvalidatePendingCount(ctx, kind)
	}

	decidedAt := time.Now().UTC()
	if record.DecidedAt != nil {
		decidedAt = *record.DecidedAt
	}

	return Decision{
		Kind:         kind,
		EntityID:     entityID,
		Status:       status,
		ModeratorID:  actor.UserID,
		RejectReason: reason,
		DecidedAt:    decidedAt,
	}, nil
}

func (s *Service) pendingCount(ctx context.Context, kind enums.EntityKind) (int, error) {
	if s.cache != nil {
		if count, err := s.cache.GetPendingCount(ctx, kind); err == nil {
			return count, nil
		}
	}

	count, err := s.queue.CountPending(ctx, kind)
	if err != nil {
		return 0, fmt.Errorf("count pending queue: %w", err)
	}

	if s.cache != nil {
		_ = s.cache.SetPendingCount(ctx, kind, count)
	}

	return count, nil
}
