package model

import (
	"time"

	"github.com/memoryline/yearbook/internal/domain/enums"
)

// Photo is a gallery image. The binary lives in object storage under
// ObjectKey; the row is the moderatable record. A rejected photo keeps its
// row for audit but the stored object is removed.
type Photo struct {
	ID        int64                  `json:"id"`
	OwnerID   int64                  `json:"owner_id"`
	EventID   *int64                 `json:"event_id,omitempty"`
	Caption   string                 `json:"caption"`
	ObjectKey string                 `json:"object_key"`
	Status    enums.ModerationStatus `json:"status"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}
