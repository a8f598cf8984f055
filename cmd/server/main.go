package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/anonto42/bharat-link/backend/internal/app"
	"github.com/anonto42/bharat-link/backend/internal/jobs"
	"github.com/anonto42/bharat-link/backend/internal/router"
	"github.com/anonto42/bharat-link/backend/pkg/config"
	"github.com/anonto42/bharat-link/backend/pkg/logger"
	"github.com/anonto42/bharat-link/backend/validators"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Must("development").Fatal("failed to load configuration", zap.Error(err))
	}
	log := logger.Must(cfg.Env)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to initialize application", zap.Error(err))
	}
	defer a.Close()

	auth, err := a.Authenticator(ctx)
	if err != nil {
		log.Fatal("failed to initialize authentication", zap.Error(err))
	}

	if a.Bridge != nil {
		go func() {
			if err := a.Bridge.Run(ctx); err != nil {
				log.Error("realtime backplane stopped", zap.Error(err))
			}
		}()
	}
	go jobs.NewNotificationSweeper(a.Notifications, cfg.NotificationRetentionDays, cfg.NotificationSweepInterval, log).Run(ctx)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validators.NewValidator()

	config.SetupMiddleware(e, cfg, log)
	router.SetupRoutes(e, router.Deps{
		Feed:          a.Feed,
		Graph:         a.Graph,
		Notifications: a.Notifications,
		Activity:      a.Activity,
		Users:         a.Users,
		Hub:           a.Hub,
		Auth:          auth,
		Log:           log,
	})

	go func() {
		log.Info("server listening", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}
