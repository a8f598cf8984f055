package services

import (
	"context"
	"time"

	"github.com/anonto42/bharat-link/backend/internal/models"
	"github.com/anonto42/bharat-link/backend/internal/realtime"
	"github.com/anonto42/bharat-link/backend/internal/repositories"
	apperrors "github.com/anonto42/bharat-link/backend/pkg/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultRetentionDays is how long read notifications are kept.
const DefaultRetentionDays = 30

type NotificationService struct {
	notifications repositories.NotificationRepository
	users         repositories.UserRepository
	emitter       realtime.Emitter
	log           *zap.Logger
	now           Clock
}

func NewNotificationService(
	notifications repositories.NotificationRepository,
	users repositories.UserRepository,
	emitter realtime.Emitter,
	log *zap.Logger,
	now Clock,
) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		users:         users,
		emitter:       emitter,
		log:           log.Named("notifications"),
		now:           now,
	}
}

// CreateNotification stores a notification, or refreshes the timestamp of the
// matching unread one. Self-notifications are skipped and return nil.
func (s *NotificationService) CreateNotification(ctx context.Context, in models.CreateNotificationInput) (*models.NotificationView, error) {
	if in.UserID == in.ActorID {
		return nil, nil
	}

	n := &models.Notification{
		ID:        uuid.NewString(),
		UserID:    in.UserID,
		Type:      in.Type,
		ActorID:   in.ActorID,
		PostID:    in.PostID,
		CommentID: in.CommentID,
		Message:   in.Message,
		CreatedAt: s.now(),
	}
	if err := s.notifications.UpsertNotification(ctx, n); err != nil {
		return nil, apperrors.ErrStorage(err)
	}

	views, err := s.decorate(ctx, []models.Notification{*n})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// Notify creates the notification and pushes it to the recipient's room.
// Failures are logged; the triggering action has already committed.
func (s *NotificationService) Notify(ctx context.Context, in models.CreateNotificationInput) {
	view, err := s.CreateNotification(ctx, in)
	if err != nil {
		s.log.Error("failed to create notification",
			zap.String("type", string(in.Type)),
			zap.String("user_id", in.UserID),
			zap.Error(err))
		return
	}
	if view == nil {
		return
	}
	s.emitter.EmitToUser(in.UserID, realtime.EventNotificationNew, view)
}

func (s *NotificationService) GetNotifications(ctx context.Context, userID, cursor string, limit int) (*models.Page[models.NotificationView], error) {
	limit = clampLimit(limit, DefaultNotificationLimit)

	rows, err := s.notifications.ListNotifications(ctx, userID, repositories.ListOptions{Cursor: cursor, Limit: limit + 1})
	if err != nil {
		if empty, mapped := listFailure(err); !empty {
			return nil, mapped
		}
		return &models.Page[models.NotificationView]{Items: []models.NotificationView{}}, nil
	}
	rows, next, hasMore := pageOf(rows, limit, func(n models.Notification) string { return n.ID })

	items, err := s.decorate(ctx, rows)
	if err != nil {
		return nil, err
	}
	return &models.Page[models.NotificationView]{Items: items, NextCursor: next, HasMore: hasMore}, nil
}

func (s *NotificationService) GetUnreadCount(ctx context.Context, userID string) (int64, error) {
	n, err := s.notifications.GetUnreadCount(ctx, userID)
	return n, storage(err, nil)
}

func (s *NotificationService) MarkAsRead(ctx context.Context, notificationID, userID string) (*models.Notification, error) {
	n, err := s.notifications.MarkAsRead(ctx, notificationID, userID)
	if err != nil {
		return nil, storage(err, apperrors.ErrNotificationNotFound)
	}
	return n, nil
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID string) (int64, error) {
	n, err := s.notifications.MarkAllAsRead(ctx, userID)
	return n, storage(err, nil)
}

// DeleteOldNotifications removes read notifications older than daysOld days.
func (s *NotificationService) DeleteOldNotifications(ctx context.Context, daysOld int) (int64, error) {
	if daysOld <= 0 {
		daysOld = DefaultRetentionDays
	}
	cutoff := s.now().Add(-time.Duration(daysOld) * 24 * time.Hour)
	n, err := s.notifications.DeleteReadBefore(ctx, cutoff)
	return n, storage(err, nil)
}

func (s *NotificationService) decorate(ctx context.Context, rows []models.Notification) ([]models.NotificationView, error) {
	ids := make([]string, 0, len(rows))
	for _, n := range rows {
		ids = append(ids, n.ActorID)
	}
	actors, err := summaries(ctx, s.users, ids)
	if err != nil {
		return nil, err
	}
	views := make([]models.NotificationView, 0, len(rows))
	for _, n := range rows {
		views = append(views, models.NotificationView{Notification: n, Actor: actors[n.ActorID]})
	}
	return views, nil
}
