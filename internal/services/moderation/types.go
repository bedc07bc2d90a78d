package moderation

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/memoryline/yearbook/internal/domain/enums"
	pgrepo "github.com/memoryline/yearbook/internal/repo/postgres"
)

var (
	ErrNotAdmin             = errors.New("moderation requires admin role")
	ErrUnknownKind          = errors.New("unknown entity kind")
	ErrRejectReasonRequired = errors.New("reject reason is required")
)

type TxRunner interface {
	RunTx(ctx context.Context, fn func(context.Context, pgx.Tx) error) error
}

type QueueStore interface {
	ListPending(ctx context.Context, kind enums.EntityKind, limit int) ([]pgrepo.ModerationItemRecord, error)
	CountPending(ctx context.Context, kind enums.EntityKind) (int, error)
	Decide(ctx context.Context, tx pgx.Tx, kind enums.EntityKind, entityID int64, status enums.ModerationStatus, moderatorID int64, rejectReason string) (pgrepo.ModerationItemRecord, error)
}

type CountCache interface {
	GetPendingCount(ctx context.Context, kind enums.EntityKind) (int, error)
	SetPendingCount(ctx context.Context, kind enums.EntityKind, count int) error
	InvalidatePendingCount(ctx context.Context, kind enums.EntityKind) error
}

type URLSigner interface {
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// ApprovalNotifier propagates an account decision to the session store so
// live sessions pick up the new approved flag.
type ApprovalNotifier interface {
	SetApproved(ctx context.Context, userID int64, approved bool) error
}

// EntitySummary is the kind-agnostic card shown next to a queue item.
type EntitySummary struct {
	Title     string
	Preview   string
	ObjectKey string
}

// EntitySource adapts one moderatable kind: flipping its status row inside
// the decision transaction and describing it for the queue.
type EntitySource interface {
	ApplyDecision(ctx context.Context, tx pgx.Tx, entityID int64, status enums.ModerationStatus) error
	Summary(ctx context.Context, entityID int64) (EntitySummary, error)
}

// RejectCleanup is implemented by sources that hold external state which must
// go away after a reject commits. The queue row itself is always retained.
type RejectCleanup interface {
	CleanupRejected(ctx context.Context, entityID int64) error
}

type QueueItem struct {
	ItemID      int64
	Kind        enums.EntityKind
	EntityID    int64
	OwnerID     int64
	Title       string
	Preview     string
	PhotoURL    string
	QueueSize   int
	SubmittedAt time.Time
}

type Decision struct {
	Kind         enums.EntityKind
	EntityID     int64
	Status       enums.ModerationStatus
	ModeratorID  int64
	RejectReason string
	DecidedAt    time.Time
}
