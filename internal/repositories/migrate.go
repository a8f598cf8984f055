package repositories

import (
	"github.com/anonto42/bharat-link/backend/internal/models"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

const nilUUID = "'00000000-0000-0000-0000-000000000000'::uuid"

// unreadDedupIndex enforces at most one unread notification per
// (recipient, type, actor, post, comment). Nullable columns are coalesced so
// NULLs collide.
const unreadDedupIndex = `CREATE UNIQUE INDEX IF NOT EXISTS idx_notifications_unread_dedup
	ON notifications (user_id, type, actor_id, COALESCE(post_id, ` + nilUUID + `), COALESCE(comment_id, ` + nilUUID + `))
	WHERE NOT read`

// Migrate creates or updates every table the feed owns.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Comment{},
		&models.Like{},
		&models.Connection{},
		&models.Notification{},
	); err != nil {
		return errors.Wrap(err, "auto migrate")
	}
	if err := db.Exec(unreadDedupIndex).Error; err != nil {
		return errors.Wrap(err, "create notification dedup index")
	}
	return nil
}
