package models

import "time"

type NotificationType string

const (
	NotificationLike    NotificationType = "LIKE"
	NotificationComment NotificationType = "COMMENT"
	NotificationFollow  NotificationType = "FOLLOW"
)

// Notification is durable per-recipient state. At most one unread row exists
// per (UserID, Type, ActorID, PostID, CommentID).
type Notification struct {
	ID        string           `json:"id" gorm:"type:uuid;primaryKey"`
	UserID    string           `json:"userId" gorm:"type:uuid;not null;index:idx_notifications_user_created,priority:1"`
	Type      NotificationType `json:"type" gorm:"size:20;not null"`
	ActorID   string           `json:"actorId" gorm:"type:uuid;not null"`
	PostID    *string          `json:"postId" gorm:"type:uuid"`
	CommentID *string          `json:"commentId" gorm:"type:uuid"`
	Message   string           `json:"message" gorm:"type:text;not null"`
	Read      bool             `json:"read" gorm:"not null;default:false"`
	CreatedAt time.Time        `json:"createdAt" gorm:"index:idx_notifications_user_created,priority:2"`
}

type NotificationView struct {
	Notification
	Actor UserSummary `json:"actor"`
}

// CreateNotificationInput is what producers hand to the notification service.
type CreateNotificationInput struct {
	UserID    string
	Type      NotificationType
	ActorID   string
	PostID    *string
	CommentID *string
	Message   string
}
