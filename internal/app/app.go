// Package app assembles storage, services and the realtime gateway from
// configuration. The server and the feedctl CLI both start from here.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/anonto42/bharat-link/backend/internal/middleware"
	"github.com/anonto42/bharat-link/backend/internal/realtime"
	"github.com/anonto42/bharat-link/backend/internal/repositories"
	"github.com/anonto42/bharat-link/backend/internal/services"
	"github.com/anonto42/bharat-link/backend/pkg/config"
	"github.com/anonto42/bharat-link/backend/pkg/firebase"
	"go.uber.org/zap"
)

type App struct {
	Config *config.Config
	DB     *config.DB
	Log    *zap.Logger

	Hub     *realtime.Hub
	Bridge  *realtime.RedisBridge // nil without Redis
	Emitter realtime.Emitter

	Users         repositories.UserRepository
	Activity      *services.ActivityService
	Notifications *services.NotificationService
	Feed          *services.FeedService
	Graph         *services.SocialGraphService
}

// New connects to every configured store, migrates the schema and wires the
// services.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	db, err := config.InitDB(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	if err := repositories.Migrate(db.Postgres); err != nil {
		db.CloseDB()
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	log.Info("schema migrated")

	var activityRepo repositories.ActivityRepository
	if db.Mongo != nil {
		mongoRepo := repositories.NewMongoActivityRepository(db.Mongo.Database(cfg.MongoDatabase))
		if err := mongoRepo.EnsureIndexes(ctx); err != nil {
			log.Warn("failed to ensure activity indexes", zap.Error(err))
		}
		activityRepo = mongoRepo
	}

	hub := realtime.NewHub(log, cfg.CORSOrigins)
	var emitter realtime.Emitter = hub
	var bridge *realtime.RedisBridge
	if db.Redis != nil {
		bridge = realtime.NewRedisBridge(db.Redis, hub, log)
		emitter = bridge
	}

	pg := db.Postgres
	users := repositories.NewPostgresUserRepository(pg)
	posts := repositories.NewPostgresPostRepository(pg)
	likes := repositories.NewPostgresLikeRepository(pg)
	comments := repositories.NewPostgresCommentRepository(pg)
	connections := repositories.NewPostgresConnectionRepository(pg)
	notificationRepo := repositories.NewPostgresNotificationRepository(pg)

	activity := services.NewActivityService(activityRepo, log, time.Now)
	notifications := services.NewNotificationService(notificationRepo, users, emitter, log, time.Now)
	feed := services.NewFeedService(services.FeedDeps{
		Posts:         posts,
		Likes:         likes,
		Comments:      comments,
		Users:         users,
		Notifications: notifications,
		Activity:      activity,
		Emitter:       emitter,
		Limits:        services.Limits{PostMaxLength: cfg.PostMaxLength, CommentMaxLength: cfg.CommentMaxLength},
		Log:           log,
		Now:           time.Now,
	})
	graph := services.NewSocialGraphService(connections, users, notifications, activity, time.Now)

	return &App{
		Config:        cfg,
		DB:            db,
		Log:           log,
		Hub:           hub,
		Bridge:        bridge,
		Emitter:       emitter,
		Users:         users,
		Activity:      activity,
		Notifications: notifications,
		Feed:          feed,
		Graph:         graph,
	}, nil
}

// Authenticator builds the principal resolver selected by AUTH_PROVIDER.
func (a *App) Authenticator(ctx context.Context) (middleware.Authenticator, error) {
	switch a.Config.AuthProvider {
	case "jwt":
		return middleware.NewJWTAuthenticator(a.Config.JWTSecret), nil
	case "firebase":
		fb, err := firebase.InitFirebase(ctx, a.Config.FirebaseCredentialsPath)
		if err != nil {
			return nil, err
		}
		a.Log.Info("firebase auth client initialized")
		return middleware.NewFirebaseAuthenticator(fb.AuthClient, a.Users, a.Log), nil
	default:
		return nil, fmt.Errorf("unknown auth provider %q", a.Config.AuthProvider)
	}
}

func (a *App) Close() {
	a.DB.CloseDB()
}
