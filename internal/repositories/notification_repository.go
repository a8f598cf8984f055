package repositories

import (
	"context"
	"time"

	"github.com/anonto42/bharat-link/backend/internal/models"
	"gorm.io/gorm"
)

// NotificationRepository defines the interface for notification operations
type NotificationRepository interface {
	// UpsertNotification inserts n, or when an unread notification with the
	// same (user, type, actor, post, comment) exists, moves its created_at to
	// n.CreatedAt. n is overwritten with the stored row.
	UpsertNotification(ctx context.Context, n *models.Notification) error
	ListNotifications(ctx context.Context, userID string, opts ListOptions) ([]models.Notification, error)
	GetUnreadCount(ctx context.Context, userID string) (int64, error)
	MarkAsRead(ctx context.Context, id, userID string) (*models.Notification, error)
	MarkAllAsRead(ctx context.Context, userID string) (int64, error)
	DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type postgresNotificationRepository struct {
	db *gorm.DB
}

func NewPostgresNotificationRepository(db *gorm.DB) NotificationRepository {
	return &postgresNotificationRepository{db: db}
}

const upsertNotificationSQL = `INSERT INTO notifications
	(id, user_id, type, actor_id, post_id, comment_id, message, read, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, false, ?)
ON CONFLICT (user_id, type, actor_id, COALESCE(post_id, ` + nilUUID + `), COALESCE(comment_id, ` + nilUUID + `))
	WHERE NOT read
DO UPDATE SET created_at = EXCLUDED.created_at
RETURNING *`

func (r *postgresNotificationRepository) UpsertNotification(ctx context.Context, n *models.Notification) error {
	var stored models.Notification
	err := r.db.WithContext(ctx).Raw(upsertNotificationSQL,
		n.ID, n.UserID, n.Type, n.ActorID, n.PostID, n.CommentID, n.Message, n.CreatedAt,
	).Scan(&stored).Error
	if err != nil {
		return translate(err, "notificationRepo.UpsertNotification")
	}
	*n = stored
	return nil
}

func (r *postgresNotificationRepository) ListNotifications(ctx context.Context, userID string, opts ListOptions) ([]models.Notification, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if opts.Cursor != "" {
		var anchor models.Notification
		err := r.db.WithContext(ctx).Select("id", "created_at").
			First(&anchor, "id = ? AND user_id = ?", opts.Cursor, userID).Error
		if err != nil {
			return nil, translateCursor(err, "notificationRepo.ListNotifications.Cursor")
		}
		q = q.Where("(created_at, id) < (?, ?)", anchor.CreatedAt, anchor.ID)
	}

	var notifications []models.Notification
	err := q.Order("created_at DESC").Order("id DESC").Limit(opts.Limit).Find(&notifications).Error
	return notifications, translate(err, "notificationRepo.ListNotifications")
}

func (r *postgresNotificationRepository) GetUnreadCount(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND read = false", userID).Count(&count).Error
	return count, translate(err, "notificationRepo.GetUnreadCount")
}

// MarkAsRead only touches a notification owned by userID; any other id is
// reported as ErrNotFound.
func (r *postgresNotificationRepository) MarkAsRead(ctx context.Context, id, userID string) (*models.Notification, error) {
	var n models.Notification
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&n, "id = ? AND user_id = ?", id, userID).Error; err != nil {
			return err
		}
		if n.Read {
			return nil
		}
		if err := tx.Model(&n).Update("read", true).Error; err != nil {
			return err
		}
		n.Read = true
		return nil
	})
	if err != nil {
		return nil, translate(err, "notificationRepo.MarkAsRead")
	}
	return &n, nil
}

func (r *postgresNotificationRepository) MarkAllAsRead(ctx context.Context, userID string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND read = false", userID).
		Update("read", true)
	return res.RowsAffected, translate(res.Error, "notificationRepo.MarkAllAsRead")
}

func (r *postgresNotificationRepository) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("read = true AND created_at < ?", cutoff).
		Delete(&models.Notification{})
	return res.RowsAffected, translate(res.Error, "notificationRepo.DeleteReadBefore")
}
