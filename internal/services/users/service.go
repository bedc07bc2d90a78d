package users

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/memoryline/yearbook/internal/domain/enums"
	"github.com/memoryline/yearbook/internal/domain/model"
	"github.com/memoryline/yearbook/internal/domain/rules"
	pgrepo "github.com/memoryline/yearbook/internal/repo/postgres"
	authsvc "github.com/memoryline/yearbook/internal/services/auth"
)

var (
	ErrValidation    = errors.New("validation error")
	ErrUsernameTaken = errors.New("username already taken")
	ErrNotFound      = errors.New("user not found")
)

const (
	minUsernameLen = 3
	maxUsernameLen = 32
	minPasswordLen = 8
)

type Store interface {
	Create(ctx context.Context, tx pgx.Tx, username, email, passwordHash string) (model.User, error)
	GetByID(ctx context.Context, userID int64) (model.User, error)
	List(ctx context.Context, viewerID int64, includeAll bool, limit int) ([]model.User, error)
}

type QueueWriter interface {
	CreatePending(ctx context.Context, tx pgx.Tx, kind enums.EntityKind, entityID, ownerID int64) error
}

type TxRunner interface {
	RunTx(ctx context.Context, fn func(context.Context, pgx.Tx) error) error
}

type Service struct {
	tx        TxRunner
	store     Store
	queue     QueueWriter
	listLimit int
}

func NewService(tx TxRunner, store Store, queue QueueWriter, listLimit int) *Service {
	if listLimit <= 0 {
		listLimit = 100
	}
	return &Service{
		tx:        tx,
		store:     store,
		queue:     queue,
		listLimit: listLimit,
	}
}

// Register creates the account in pending status and enqueues it: accounts
// themselves go through moderation before they appear in the directory. The
// queue row's owner is the account itself.
func (s *Service) Register(ctx context.Context, username, email, password string) (model.User, error) {
	if s.tx == nil || s.store == nil || s.queue == nil {
		return model.User{}, fmt.Errorf("user service dependencies are not configured")
	}

	username = strings.ToLower(strings.TrimSpace(username))
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validateRegistration(username, email, password); err != nil {
		return model.User{}, err
	}

	hash, err := authsvc.HashPassword(password)
	if err != nil {
		return model.User{}, fmt.Errorf("hash password: %w", err)
	}

	var created model.User
	err = s.tx.RunTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		user, err := s.store.Create(ctx, tx, username, email, hash)
		if err != nil {
			if errors.Is(err, pgrepo.ErrUsernameTaken) {
				return ErrUsernameTaken
			}
			return fmt.Errorf("create user: %w", err)
		}
		created = user

		return s.queue.CreatePending(ctx, tx, enums.EntityKindUser, user.ID, user.ID)
	})
	if err != nil {
		return model.User{}, err
	}

	return created, nil
}

// List renders the member directory: approved accounts for everyone, plus
// the viewer's own account and, for admins, the full roster.
func (s *Service) List(ctx context.Context, viewer rules.Viewer) ([]model.User, error) {
	if s.store == nil {
		return nil, fmt.Errorf("user store is nil")
	}

	users, err := s.store.List(ctx, viewer.UserID, viewer.IsAdmin, s.listLimit)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	visible := make([]model.User, 0, len(users))
	for _, user := range users {
		entity := rules.Entity{OwnerID: user.ID, Status: user.Status}
		if rules.Visible(viewer, entity, true) {
			visible = append(visible, user)
		}
	}

	return visible, nil
}

func (s *Service) Get(ctx context.Context, viewer rules.Viewer, userID int64) (model.User, error) {
	if userID <= 0 {
		return model.User{}, fmt.Errorf("invalid user id: %w", ErrValidation)
	}
	if s.store == nil {
		return model.User{}, fmt.Errorf("user store is nil")
	}

	user, err := s.store.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return model.User{}, ErrNotFound
		}
		return model.User{}, fmt.Errorf("get user: %w", err)
	}

	entity := rules.Entity{OwnerID: user.ID, Status: user.Status}
	if !rules.Visible(viewer, entity, true) {
		return model.User{}, ErrNotFound
	}

	return user, nil
}

func validateRegistration(username, email, password string) error {
	if len(username) < minUsernameLen || len(username) > maxUsernameLen {
		return fmt.Errorf("username length out of range: %w", ErrValidation)
	}
	for _, r := range username {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '_' && r != '.' {
			return fmt.Errorf("username has invalid characters: %w", ErrValidation)
		}
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("invalid email: %w", ErrValidation)
	}
	if len(password) < minPasswordLen {
		return fmt.Errorf("password is too short: %w", ErrValidation)
	}
	return nil
}
