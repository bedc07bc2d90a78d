package auth

import (
	"errors"
	"time"

	"github.com/memoryline/yearbook/internal/domain/enums"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionNotFound    = errors.New("session not found")
	ErrRefreshNotFound    = errors.New("refresh token not found")
)

// SessionRecord is the authoritative per-session state in Redis. Approved is
// stored here and re-read on every request, so flipping an account's
// moderation status takes effect without a new login.
type SessionRecord struct {
	SID       string
	UserID    int64
	Role      enums.Role
	Approved  bool
	ExpiresAt time.Time
}

type AccessClaims struct {
	UserID    int64
	SID       string
	Role      enums.Role
	ExpiresAt time.Time
}

type Me struct {
	ID       int64
	Username string
	Role     enums.Role
	Approved bool
}

type AuthResult struct {
	AccessToken   string
	RefreshToken  string
	AccessExpires time.Time
	Me            Me
}
