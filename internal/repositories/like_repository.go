package repositories

import (
	"context"

	"github.com/anonto42/bharat-link/backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LikeRepository defines the interface for like data operations
type LikeRepository interface {
	// ToggleLike flips the (post, user) like and adjusts the post counter in
	// one transaction. It reports whether the post is liked afterwards.
	ToggleLike(ctx context.Context, postID, userID string) (bool, error)
	HasUserLikedPost(ctx context.Context, postID, userID string) (bool, error)
	GetLikesCount(ctx context.Context, postID string) (int, error)
	CountLikesByPostIDs(ctx context.Context, postIDs []string) (map[string]int64, error)
}

// PostgresLikeRepository implements LikeRepository for PostgreSQL
type PostgresLikeRepository struct {
	db *gorm.DB
}

// NewPostgresLikeRepository creates a new PostgresLikeRepository
func NewPostgresLikeRepository(db *gorm.DB) *PostgresLikeRepository {
	return &PostgresLikeRepository{db: db}
}

func (r *PostgresLikeRepository) ToggleLike(ctx context.Context, postID, userID string) (bool, error) {
	var liked bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The row lock serializes concurrent toggles on the same post.
		var post models.Post
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").First(&post, "id = ?", postID).Error; err != nil {
			return err
		}

		res := tx.Where("post_id = ? AND user_id = ?", postID, userID).Delete(&models.Like{})
		if res.Error != nil {
			return res.Error
		}
		delta := -1
		if res.RowsAffected == 0 {
			like := models.Like{ID: uuid.NewString(), PostID: postID, UserID: userID}
			if err := tx.Create(&like).Error; err != nil {
				return err
			}
			delta = 1
			liked = true
		}

		return tx.Model(&models.Post{}).Where("id = ?", postID).
			UpdateColumn("likes_count", gorm.Expr("likes_count + ?", delta)).Error
	})
	if err != nil {
		return false, translate(err, "likeRepo.ToggleLike")
	}
	return liked, nil
}

func (r *PostgresLikeRepository) HasUserLikedPost(ctx context.Context, postID, userID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Like{}).
		Where("post_id = ? AND user_id = ?", postID, userID).Count(&count).Error
	return count > 0, translate(err, "likeRepo.HasUserLikedPost")
}

// GetLikesCount reads the denormalized counter, used after a toggle commits.
func (r *PostgresLikeRepository) GetLikesCount(ctx context.Context, postID string) (int, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Select("likes_count").First(&post, "id = ?", postID).Error; err != nil {
		return 0, translate(err, "likeRepo.GetLikesCount")
	}
	return post.LikesCount, nil
}

func (r *PostgresLikeRepository) CountLikesByPostIDs(ctx context.Context, postIDs []string) (map[string]int64, error) {
	return countByPost(ctx, r.db, &models.Like{}, postIDs, "likeRepo.CountLikesByPostIDs")
}

type postCount struct {
	PostID string
	Count  int64
}

func countByPost(ctx context.Context, db *gorm.DB, model any, postIDs []string, op string) (map[string]int64, error) {
	out := make(map[string]int64, len(postIDs))
	if len(postIDs) == 0 {
		return out, nil
	}
	var rows []postCount
	err := db.WithContext(ctx).Model(model).
		Select("post_id, COUNT(*) AS count").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&rows).Error
	if err != nil {
		return nil, translate(err, op)
	}
	for _, row := range rows {
		out[row.PostID] = row.Count
	}
	return out, nil
}
