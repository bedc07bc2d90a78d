package profiles

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/memoryline/yearbook/internal/domain/enums"
	"github.com/memoryline/yearbook/internal/domain/model"
	"github.com/memoryline/yearbook/internal/domain/rules"
	pgrepo "github.com/memoryline/yearbook/internal/repo/postgres"
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("profile not found")
)

const maxBioLen = 2000

type Store interface {
	Create(ctx context.Context, tx pgx.Tx, profile model.Profile) (model.Profile, error)
	GetByID(ctx context.Context, profileID int64) (model.Profile, error)
	List(ctx context.Context, viewerID int64, includeAll bool, limit int) ([]model.Profile, error)
}

type QueueWriter interface {
	CreatePending(ctx context.Context, tx pgx.Tx, kind enums.EntityKind, entityID, ownerID int64) error
}

type TxRunner interface {
	RunTx(ctx context.Context, fn func(context.Context, pgx.Tx) error) error
}

type URLSigner interface {
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

type Service struct {
	tx        TxRunner
	store     Store
	queue     QueueWriter
	policy    rules.Policy
	signer    URLSigner
	signedTTL time.Duration
	listLimit int
}

type SubmitInput struct {
	Nickname string
	FullName string
	Bio      string
	Quote    string
	GradYear int
	PhotoKey string
}

// View is a profile as rendered for a viewer. PhotoURL is a short-lived
// presigned link, empty when the profile has no photo.
type View struct {
	model.Profile
	PhotoURL string `json:"photo_url,omitempty"`
}

func NewService(tx TxRunner, store Store, queue QueueWriter, policy rules.Policy, signer URLSigner, signedTTL time.Duration, listLimit int) *Service {
	if signedTTL <= 0 {
		signedTTL = 5 * time.Minute
	}
	if listLimit <= 0 {
		listLimit = 100
	}

	return &Service{
		tx:        tx,
		store:     store,
		queue:     queue,
		policy:    policy,
		signer:    signer,
		signedTTL: signedTTL,
		listLimit: listLimit,
	}
}

// Submit creates the profile in pending status and enqueues it for
// moderation in the same transaction.
func (s *Service) Submit(ctx context.Context, ownerID int64, in SubmitInput) (model.Profile, error) {
	if ownerID <= 0 {
		return model.Profile{}, fmt.Errorf("invalid owner id: %w", ErrValidation)
	}
	if s.tx == nil || s.store == nil || s.queue == nil {
		return model.Profile{}, fmt.Errorf("profile service dependencies are not configured")
	}

	normalized, err := normalizeInput(in)
	if err != nil {
		return model.Profile{}, err
	}

	var created model.Profile
	err = s.tx.RunTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		profile, err := s.store.Create(ctx, tx, model.Profile{
			OwnerID:  ownerID,
			Nickname: normalized.Nickname,
			FullName: normalized.FullName,
			Bio:      normalized.Bio,
			Quote:    normalized.Quote,
			GradYear: normalized.GradYear,
			PhotoKey: normalized.PhotoKey,
			Status:   enums.ModerationStatusPending,
		})
		if err != nil {
			return fmt.Errorf("create profile: %w", err)
		}
		created = profile

		return s.queue.CreatePending(ctx, tx, enums.EntityKindProfile, profile.ID, ownerID)
	})
	if err != nil {
		return model.Profile{}, err
	}

	return created, nil
}

// List returns the profiles visible to the viewer. The SQL prefilter trims
// the bulk; the in-process rules are authoritative and also apply the
// completeness gate, which SQL does not know about.
func (s *Service) List(ctx context.Context, viewer rules.Viewer) ([]View, error) {
	if s.store == nil {
		return nil, fmt.Errorf("profile store is nil")
	}

	profiles, err := s.store.List(ctx, viewer.UserID, viewer.IsAdmin, s.listLimit)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}

	views := make([]View, 0, len(profiles))
	for _, profile := range profiles {
		entity := rules.Entity{OwnerID: profile.OwnerID, Status: profile.Status}
		complete := s.policy.Complete(enums.EntityKindProfile, profile)
		if !rules.Visible(viewer, entity, complete) {
			continue
		}

		view, err := s.render(ctx, profile)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}

	return views, nil
}

func (s *Service) Get(ctx context.Context, viewer rules.Viewer, profileID int64) (View, error) {
	if profileID <= 0 {
		return View{}, fmt.Errorf("invalid profile id: %w", ErrValidation)
	}
	if s.store == nil {
		return View{}, fmt.Errorf("profile store is nil")
	}

	profile, err := s.store.GetByID(ctx, profileID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrProfileNotFound) {
			return View{}, ErrNotFound
		}
		return View{}, fmt.Errorf("get profile: %w", err)
	}

	entity := rules.Entity{OwnerID: profile.OwnerID, Status: profile.Status}
	complete := s.policy.Complete(enums.EntityKindProfile, profile)
	if !rules.Visible(viewer, entity, complete) {
		// Hidden and missing are indistinguishable to the caller.
		return View{}, ErrNotFound
	}

	return s.render(ctx, profile)
}

func (s *Service) render(ctx context.Context, profile model.Profile) (View, error) {
	view := View{Profile: profile}
	if profile.PhotoKey != "" && s.signer != nil {
		url, err := s.signer.PresignGet(ctx, profile.PhotoKey, s.signedTTL)
		if err != nil {
			return View{}, fmt.Errorf("sign profile photo: %w", err)
		}
		view.PhotoURL = url
	}
	return view, nil
}

func normalizeInput(in SubmitInput) (SubmitInput, error) {
	out := SubmitInput{
		Nickname: strings.TrimSpace(in.Nickname),
		FullName: strings.TrimSpace(in.FullName),
		Bio:      strings.TrimSpace(in.Bio),
		Quote:    strings.TrimSpace(in.Quote),
		GradYear: in.GradYear,
		PhotoKey: strings.TrimSpace(in.PhotoKey),
	}

	if out.Nickname == "" {
		return SubmitInput{}, fmt.Errorf("nickname is required: %w", ErrValidation)
	}
	if len(out.Bio) > maxBioLen {
		return SubmitInput{}, fmt.Errorf("bio is too long: %w", ErrValidation)
	}
	if out.GradYear != 0 && (out.GradYear < 1950 || out.GradYear > 2100) {
		return SubmitInput{}, fmt.Errorf("grad year out of range: %w", ErrValidation)
	}

	return out, nil
}
