package model

import (
	"time"

	"github.com/memoryline/yearbook/internal/domain/enums"
)

type Event struct {
	ID          int64                  `json:"id"`
	OwnerID     int64                  `json:"owner_id"`
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	Location    string                 `json:"location"`
	StartsAt    time.Time              `json:"starts_at"`
	Status      enums.ModerationStatus `json:"status"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
}
