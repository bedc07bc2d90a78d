package model

import (
	"time"

	"github.com/memoryline/yearbook/internal/domain/enums"
)

type Memory struct {
	ID        int64                  `json:"id"`
	OwnerID   int64                  `json:"owner_id"`
	Title     string                 `json:"title"`
	Body      string                 `json:"body"`
	Status    enums.ModerationStatus `json:"status"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}
