package apiapp

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/memoryline/yearbook/internal/config"
	"github.com/memoryline/yearbook/internal/domain/enums"
	authsvc "github.com/memoryline/yearbook/internal/services/auth"
	eventsvc "github.com/memoryline/yearbook/internal/services/events"
	memorysvc "github.com/memoryline/yearbook/internal/services/memories"
	modsvc "github.com/memoryline/yearbook/internal/services/moderation"
	photosvc "github.com/memoryline/yearbook/internal/services/photos"
	profilesvc "github.com/memoryline/yearbook/internal/services/profiles"
	projectsvc "github.com/memoryline/yearbook/internal/services/projects"
	usersvc "github.com/memoryline/yearbook/internal/services/users"
	"github.com/memoryline/yearbook/internal/transport/http/handlers"
)

type Dependencies struct {
	AuthService       *authsvc.Service
	UserService       *usersvc.Service
	ProfileService    *profilesvc.Service
	EventService      *eventsvc.Service
	PhotoService      *photosvc.Service
	MemoryService     *memorysvc.Service
	ProjectService    *projectsvc.Service
	ModerationService *modsvc.Service
	Logger            *zap.Logger
	Config            config.Config
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(deps.AuthService, deps.UserService)
	usersHandler := handlers.NewUsersHandler(deps.UserService)
	profilesHandler := handlers.NewProfilesHandler(deps.ProfileService)
	eventsHandler := handlers.NewEventsHandler(deps.EventService)
	photosHandler := handlers.NewPhotosHandler(deps.PhotoService)
	memoriesHandler := handlers.NewMemoriesHandler(deps.MemoryService)
	projectsHandler := handlers.NewProjectsHandler(deps.ProjectService)
	moderationHandler := handlers.NewModerationHandler(deps.ModerationService)

	authMW := AuthMiddleware(deps.AuthService, deps.Logger)
	viewerMW := OptionalAuthMiddleware(deps.AuthService, deps.Logger)
	adminMW := RequireRole(enums.RoleAdmin)

	r.Get("/healthz", healthHandler.Get)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/refresh", authHandler.Refresh)
		r.With(authMW).Post("/logout", authHandler.Logout)
		r.With(authMW).Post("/logout_all", authHandler.LogoutAll)
		r.With(authMW).Get("/me", authHandler.Me)
	})

	// Listing routes take an optional identity: the same route serves
	// anonymous visitors, owners checking their pending submissions and
	// admins seeing everything.
	r.Route("/profiles", func(r chi.Router) {
		r.With(viewerMW).Get("/", profilesHandler.List)
		r.With(viewerMW).Get("/{id}", profilesHandler.Get)
		r.With(authMW).Post("/", profilesHandler.Submit)
	})
	r.Route("/events", func(r chi.Router) {
		r.With(viewerMW).Get("/", eventsHandler.List)
		r.With(viewerMW).Get("/{id}", eventsHandler.Get)
		r.With(authMW).Post("/", eventsHandler.Submit)
	})
	r.Route("/photos", func(r chi.Router) {
		r.With(viewerMW).Get("/", photosHandler.List)
		r.With(viewerMW).Get("/{id}", photosHandler.Get)
		r.With(authMW).Post("/", photosHandler.Upload)
	})
	r.Route("/memories", func(r chi.Router) {
		r.With(viewerMW).Get("/", memoriesHandler.List)
		r.With(viewerMW).Get("/{id}", memoriesHandler.Get)
		r.With(authMW).Post("/", memoriesHandler.Submit)
	})
	r.Route("/projects", func(r chi.Router) {
		r.With(viewerMW).Get("/", projectsHandler.List)
		r.With(viewerMW).Get("/{id}", projectsHandler.Get)
		r.With(authMW).Post("/", projectsHandler.Submit)
	})
	r.Route("/users", func(r chi.Router) {
		r.With(viewerMW).Get("/", usersHandler.List)
		r.With(viewerMW).Get("/{id}", usersHandler.Get)
	})

	r.Route("/admin/moderation", func(r chi.Router) {
		r.Use(authMW, adminMW)
		r.Get("/{kind}/pending", moderationHandler.ListPending)
		r.Post("/{kind}/{id}/approve", moderationHandler.Approve)
		r.Post("/{kind}/{id}/reject", moderationHandler.Reject)
	})
}
