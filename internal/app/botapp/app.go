// Package botapp is the moderator console: a Telegram bot that browses
// pending queues and dispatches approve/reject decisions through the
// moderation API.
package botapp

import (
	"context"
	"fmt"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/memoryline/yearbook/internal/config"
	"github.com/memoryline/yearbook/internal/domain/enums"
	"github.com/memoryline/yearbook/internal/infra/telegram"
	"github.com/memoryline/yearbook/internal/modclient"
)

// ModerationAPI is the slice of the moderation client the bot uses.
type ModerationAPI interface {
	ListPending(ctx context.Context, kind enums.EntityKind) ([]modclient.QueueItem, error)
	Approve(ctx context.Context, kind enums.EntityKind, entityID int64) (modclient.Decision, error)
	Reject(ctx context.Context, kind enums.EntityKind, entityID int64, reason string) (modclient.Decision, error)
}

type sender interface {
	Send(msg tgbotapi.Chattable) error
}

// rejectState tracks a moderator mid-reject: the decision is held until they
// reply with a reason, so a mistaken tap never reaches the API.
type rejectState struct {
	ActorID   int64
	Kind      enums.EntityKind
	EntityID  int64
	MessageID int
}

type App struct {
	cfg    config.BotConfig
	logger *zap.Logger
	tg     sender
	poller *telegram.Client
	api    ModerationAPI

	rejectMu     sync.Mutex
	rejectByChat map[int64]rejectState

	// inflight guards against double taps: one decision per item at a time.
	inflightMu sync.Mutex
	inflight   map[string]struct{}
}

func New(cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	api, err := modclient.NewClient(cfg.Bot.APIBaseURL, cfg.Bot.AdminToken, cfg.Bot.HTTPTimeout)
	if err != nil {
		return nil, fmt.Errorf("create moderation client: %w", err)
	}

	app := &App{
		cfg:          cfg.Bot,
		logger:       logger,
		api:          api,
		rejectByChat: map[int64]rejectState{},
		inflight:     map[string]struct{}{},
	}

	poller, err := telegram.NewClient(cfg.Bot.Token, cfg.Bot.PollTimeout, logger, app.routeUpdate)
	if err != nil {
		return nil, fmt.Errorf("create telegram client: %w", err)
	}
	app.poller = poller
	app.tg = poller

	return app, nil
}

func (a *App) Run(ctx context.Context) error {
	a.logger.Info("moderator bot started")
	return a.poller.Start(ctx)
}

func (a *App) tryAcquire(kind enums.EntityKind, entityID int64) bool {
	key := fmt.Sprintf("%s/%d", kind, entityID)

	a.inflightMu.Lock()
	defer a.inflightMu.Unlock()
	if _, busy := a.inflight[key]; busy {
		return false
	}
	a.inflight[key] = struct{}{}
	return true
}

func (a *App) release(kind enums.EntityKind, entityID int64) {
	key := fmt.Sprintf("%s/%d", kind, entityID)

	a.inflightMu.Lock()
	defer a.inflightMu.Unlock()
	delete(a.inflight, key)
}
