package services

import (
	"context"

	"github.com/anonto42/bharat-link/backend/internal/models"
	"github.com/anonto42/bharat-link/backend/internal/repositories"
	apperrors "github.com/anonto42/bharat-link/backend/pkg/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultActivityLimit = 20
	maxActivityLimit     = 100
)

// ActivityService appends domain events to the activity log. Recording is
// best effort: failures are logged and never reach the caller. A nil
// repository disables the log.
type ActivityService struct {
	repo repositories.ActivityRepository
	log  *zap.Logger
	now  Clock
}

func NewActivityService(repo repositories.ActivityRepository, log *zap.Logger, now Clock) *ActivityService {
	return &ActivityService{repo: repo, log: log.Named("activity"), now: now}
}

func (s *ActivityService) Record(ctx context.Context, a models.Activity) {
	if s == nil || s.repo == nil {
		return
	}
	a.ID = uuid.NewString()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = s.now()
	}
	if err := s.repo.RecordActivity(ctx, &a); err != nil {
		s.log.Warn("failed to record activity", zap.String("event", a.Event), zap.Error(err))
	}
}

// GetUserActivity lists the newest events the user acted in or was targeted by.
func (s *ActivityService) GetUserActivity(ctx context.Context, userID string, limit int) ([]models.Activity, error) {
	if s == nil || s.repo == nil {
		return []models.Activity{}, nil
	}
	switch {
	case limit <= 0:
		limit = defaultActivityLimit
	case limit > maxActivityLimit:
		limit = maxActivityLimit
	}
	items, err := s.repo.GetActivitiesByUserID(ctx, userID, int64(limit))
	if err != nil {
		return nil, apperrors.ErrStorage(err)
	}
	return items, nil
}
