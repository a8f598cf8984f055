// Package jobs holds background work that runs inside the server process.
package jobs

import (
	"context"
	"time"

	"github.com/anonto42/bharat-link/backend/internal/services"
	"go.uber.org/zap"
)

// NotificationSweeper periodically deletes read notifications past retention.
type NotificationSweeper struct {
	notifications *services.NotificationService
	retentionDays int
	interval      time.Duration
	log           *zap.Logger
}

func NewNotificationSweeper(notifications *services.NotificationService, retentionDays int, interval time.Duration, log *zap.Logger) *NotificationSweeper {
	return &NotificationSweeper{
		notifications: notifications,
		retentionDays: retentionDays,
		interval:      interval,
		log:           log.Named("sweeper"),
	}
}

// Run sweeps once immediately and then every interval until ctx is done.
func (s *NotificationSweeper) Run(ctx context.Context) {
	if s.interval <= 0 {
		s.log.Info("notification sweeper disabled")
		return
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		s.Sweep(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Sweep runs one pass and reports how many rows were removed.
func (s *NotificationSweeper) Sweep(ctx context.Context) int64 {
	deleted, err := s.notifications.DeleteOldNotifications(ctx, s.retentionDays)
	if err != nil {
		if ctx.Err() == nil {
			s.log.Error("notification sweep failed", zap.Error(err))
		}
		return 0
	}
	if deleted > 0 {
		s.log.Info("pruned read notifications", zap.Int64("deleted", deleted), zap.Int("retention_days", s.retentionDays))
	}
	return deleted
}
