package repositories

import (
	"context"

	"github.com/anonto42/bharat-link/backend/internal/models"
	"gorm.io/gorm"
)

// ConnectionRepository defines the interface for follow edge operations
type ConnectionRepository interface {
	CreateConnection(ctx context.Context, conn *models.Connection) error
	GetConnection(ctx context.Context, followerID, followingID string) (*models.Connection, error)
	DeleteConnection(ctx context.Context, followerID, followingID string) error
	GetFollowers(ctx context.Context, userID string) ([]models.UserSummary, error)
	GetFollowing(ctx context.Context, userID string) ([]models.UserSummary, error)
	GetFollowersCount(ctx context.Context, userID string) (int64, error)
	GetFollowingCount(ctx context.Context, userID string) (int64, error)
}

// PostgresConnectionRepository implements ConnectionRepository for PostgreSQL
type PostgresConnectionRepository struct {
	db *gorm.DB
}

// NewPostgresConnectionRepository creates a new PostgresConnectionRepository
func NewPostgresConnectionRepository(db *gorm.DB) *PostgresConnectionRepository {
	return &PostgresConnectionRepository{db: db}
}

// CreateConnection inserts a follow edge. An existing edge yields ErrDuplicate.
func (r *PostgresConnectionRepository) CreateConnection(ctx context.Context, conn *models.Connection) error {
	return translate(r.db.WithContext(ctx).Create(conn).Error, "connectionRepo.CreateConnection")
}

func (r *PostgresConnectionRepository) GetConnection(ctx context.Context, followerID, followingID string) (*models.Connection, error) {
	var conn models.Connection
	err := r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		First(&conn).Error
	if err != nil {
		return nil, translate(err, "connectionRepo.GetConnection")
	}
	return &conn, nil
}

func (r *PostgresConnectionRepository) DeleteConnection(ctx context.Context, followerID, followingID string) error {
	res := r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&models.Connection{})
	if res.Error != nil {
		return translate(res.Error, "connectionRepo.DeleteConnection")
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "connectionRepo.DeleteConnection")
	}
	return nil
}

func (r *PostgresConnectionRepository) GetFollowers(ctx context.Context, userID string) ([]models.UserSummary, error) {
	return r.counterparts(ctx, "follower_id", "following_id", userID, "connectionRepo.GetFollowers")
}

func (r *PostgresConnectionRepository) GetFollowing(ctx context.Context, userID string) ([]models.UserSummary, error) {
	return r.counterparts(ctx, "following_id", "follower_id", userID, "connectionRepo.GetFollowing")
}

// counterparts lists the users on the other end of userID's accepted edges,
// most recent edge first.
func (r *PostgresConnectionRepository) counterparts(ctx context.Context, joinCol, matchCol, userID, op string) ([]models.UserSummary, error) {
	users := []models.UserSummary{}
	err := r.db.WithContext(ctx).Table("connections").
		Select("users.id, users.name, users.profile_image, users.headline").
		Joins("JOIN users ON users.id = connections."+joinCol).
		Where("connections."+matchCol+" = ? AND connections.status = ?", userID, models.ConnectionAccepted).
		Order("connections.created_at DESC").Order("connections.id DESC").
		Scan(&users).Error
	return users, translate(err, op)
}

func (r *PostgresConnectionRepository) GetFollowersCount(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Connection{}).
		Where("following_id = ? AND status = ?", userID, models.ConnectionAccepted).
		Count(&count).Error
	return count, translate(err, "connectionRepo.GetFollowersCount")
}

func (r *PostgresConnectionRepository) GetFollowingCount(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Connection{}).
		Where("follower_id = ? AND status = ?", userID, models.ConnectionAccepted).
		Count(&count).Error
	return count, translate(err, "connectionRepo.GetFollowingCount")
}
