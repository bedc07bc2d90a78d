package model

import (
	"time"

	"github.com/memoryline/yearbook/internal/domain/enums"
)

// User is an account registration. Accounts themselves are moderatable:
// a freshly registered account sits in pending status until an admin
// approves it.
type User struct {
	ID           int64                  `json:"id"`
	Username     string                 `json:"username"`
	Email        string                 `json:"email"`
	PasswordHash string                 `json:"-"`
	Role         enums.Role             `json:"role"`
	Status       enums.ModerationStatus `json:"status"`
	CreatedAt    time.Time              `json:"created_at"`
	UpdatedAt    time.Time              `json:"updated_at"`
}

func (u User) Approved() bool {
	return u.Status == enums.ModerationStatusApproved
}
