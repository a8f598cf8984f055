package router

import (
	"github.com/anonto42/bharat-link/backend/internal/handlers"
	"github.com/anonto42/bharat-link/backend/internal/middleware"
	"github.com/anonto42/bharat-link/backend/internal/realtime"
	"github.com/anonto42/bharat-link/backend/internal/repositories"
	"github.com/anonto42/bharat-link/backend/internal/services"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Deps are the collaborators the HTTP layer is built from.
type Deps struct {
	Feed          *services.FeedService
	Graph         *services.SocialGraphService
	Notifications *services.NotificationService
	Activity      *services.ActivityService
	Users         repositories.UserRepository
	Hub           *realtime.Hub
	Auth          middleware.Authenticator
	Log           *zap.Logger
}

// SetupRoutes configures all application routes
func SetupRoutes(e *echo.Echo, d Deps) {
	e.HTTPErrorHandler = handlers.NewHTTPErrorHandler(d.Log)

	e.GET("/health", handlers.HealthCheck)
	d.Hub.RegisterRoutes(e)

	requireAuth := middleware.RequireAuth(d.Auth)
	optionalAuth := middleware.OptionalAuth(d.Auth)

	api := e.Group("/api/v1")

	handlers.NewPostHandler(d.Feed).RegisterPostRoutes(api, requireAuth, optionalAuth)
	handlers.NewLikeHandler(d.Feed).RegisterLikeRoutes(api, requireAuth)
	handlers.NewCommentHandler(d.Feed).RegisterCommentRoutes(api, requireAuth)

	protected := api.Group("", requireAuth)
	handlers.NewConnectionHandler(d.Graph).RegisterConnectionRoutes(protected)
	handlers.NewUserHandler(d.Users, d.Activity).RegisterUserRoutes(protected)
	handlers.NewNotificationHandler(d.Notifications).RegisterNotificationRoutes(protected)

	d.Log.Info("routes configured", zap.Int("count", len(e.Routes())))
}
