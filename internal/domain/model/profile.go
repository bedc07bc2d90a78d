package model

import (
	"time"

	"github.com/memoryline/yearbook/internal/domain/enums"
)

// Profile is a classmate's yearbook page.
type Profile struct {
	ID        int64                  `json:"id"`
	OwnerID   int64                  `json:"owner_id"`
	Nickname  string                 `json:"nickname"`
	FullName  string                 `json:"full_name"`
	Bio       string                 `json:"bio"`
	Quote     string                 `json:"quote"`
	GradYear  int                    `json:"grad_year"`
	PhotoKey  string                 `json:"photo_key"`
	Status    enums.ModerationStatus `json:"status"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}
