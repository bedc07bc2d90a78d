package model

import (
	"time"

	"github.com/memoryline/yearbook/internal/domain/enums"
)

type Project struct {
	ID          int64                  `json:"id"`
	OwnerID     int64                  `json:"owner_id"`
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	RepoURL     string                 `json:"repo_url"`
	DemoURL     string                 `json:"demo_url"`
	Status      enums.ModerationStatus `json:"status"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
}
