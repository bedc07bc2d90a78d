package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minio/minio-go/v7"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/memoryline/yearbook/internal/config"
	"github.com/memoryline/yearbook/internal/domain/rules"
	s3infra "github.com/memoryline/yearbook/internal/infra/s3"
	pgrepo "github.com/memoryline/yearbook/internal/repo/postgres"
	redrepo "github.com/memoryline/yearbook/internal/repo/redis"
	authsvc "github.com/memoryline/yearbook/internal/services/auth"
	eventsvc "github.com/memoryline/yearbook/internal/services/events"
	memorysvc "github.com/memoryline/yearbook/internal/services/memories"
	modsvc "github.com/memoryline/yearbook/internal/services/moderation"
	photosvc "github.com/memoryline/yearbook/internal/services/photos"
	profilesvc "github.com/memoryline/yearbook/internal/services/profiles"
	projectsvc "github.com/memoryline/yearbook/internal/services/projects"
	usersvc "github.com/memoryline/yearbook/internal/services/users"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	postgres   *pgxpool.Pool
	redis      *goredis.Client
	s3         *minio.Client
	httpRouter http.Handler
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log)

	pool, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	redisClient := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)

	var s3Client *minio.Client
	if c, err := s3infra.NewClient(s3infra.Config{
		Endpoint:  cfg.S3.Endpoint,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		Region:    cfg.S3.Region,
		UseSSL:    cfg.S3.UseSSL,
	}); err != nil {
		log.Warn("s3 init failed, continuing without object storage", zap.Error(err))
	} else {
		s3Client = c
	}
	storage := s3infra.NewStorage(s3Client, cfg.S3.Bucket)

	txManager := pgrepo.NewTxManager(pool)
	sessionRepo := redrepo.NewSessionRepo(redisClient)
	queueCache := redrepo.NewQueueCache(redisClient, 0)
	userRepo := pgrepo.NewUserRepo(pool)
	profileRepo := pgrepo.NewProfileRepo(pool)
	eventRepo := pgrepo.NewEventRepo(pool)
	photoRepo := pgrepo.NewPhotoRepo(pool)
	memoryRepo := pgrepo.NewMemoryRepo(pool)
	projectRepo := pgrepo.NewProjectRepo(pool)
	moderationRepo := pgrepo.NewModerationRepo(pool)

	policy := rules.Policy{}
	if cfg.Moderation.GateProfiles {
		policy = rules.DefaultPolicy()
	}

	jwtManager := authsvc.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTAccessTTL)
	authService := authsvc.NewService(jwtManager, userRepo, sessionRepo, cfg.Auth.RefreshTTL)
	userService := usersvc.NewService(txManager, userRepo, moderationRepo, 0)
	profileService := profilesvc.NewService(txManager, profileRepo, moderationRepo, policy, storage, cfg.Moderation.SignedURLTTL, 0)
	eventService := eventsvc.NewService(txManager, eventRepo, moderationRepo, policy, 0)
	photoService := photosvc.NewService(txManager, photoRepo, moderationRepo, storage, policy, cfg.Moderation.SignedURLTTL, 0)
	memoryService := memorysvc.NewService(txManager, memoryRepo, moderationRepo, policy, 0)
	projectService := projectsvc.NewService(txManager, projectRepo, moderationRepo, policy, 0)

	sources := modsvc.NewSources(profileRepo, userRepo, eventRepo, photoRepo, memoryRepo, projectRepo, storage)
	moderationService := modsvc.NewService(txManager, moderationRepo, sources, queueCache, storage, sessionRepo, modsvc.Config{
		PendingPageLimit: cfg.Moderation.PendingPageLimit,
		SignedURLTTL:     cfg.Moderation.SignedURLTTL,
	})

	RegisterRoutes(r, Dependencies{
		AuthService:       authService,
		UserService:       userService,
		ProfileService:    profileService,
		EventService:      eventService,
		PhotoService:      photoService,
		MemoryService:     memoryService,
		ProjectService:    projectService,
		ModerationService: moderationService,
		Logger:            log,
		Config:            cfg,
	})

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		postgres:   pool,
		redis:      redisClient,
		s3:         s3Client,
		httpRouter: r,
	}, nil
}

func (a *App) Run() error {
	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}
