package model

import (
	"time"

	"github.com/memoryline/yearbook/internal/domain/enums"
)

// ModerationItem is one row of the moderation queue. There is exactly one
// item per submitted entity, keyed by (kind, entity id). The item records the
// decision and who made it; the entity table carries the same status so
// listings never need to join the queue.
type ModerationItem struct {
	ID           int64                  `json:"id"`
	EntityKind   enums.EntityKind       `json:"entity_kind"`
	EntityID     int64                  `json:"entity_id"`
	OwnerID      int64                  `json:"owner_id"`
	Status       enums.ModerationStatus `json:"status"`
	ModeratorID  *int64                 `json:"moderator_id,omitempty"`
	RejectReason string                 `json:"reject_reason,omitempty"`
	DecidedAt    *time.Time             `json:"decided_at,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
	UpdatedAt    time.Time              `json:"updated_at"`
}
