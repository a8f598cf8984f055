package repositories

import (
	"context"

	"github.com/anonto42/bharat-link/backend/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostFilter narrows a post listing to one author when AuthorID is set.
type PostFilter struct {
	ListOptions
	AuthorID string
}

// PostUpdate carries a partial update; nil fields are left untouched.
type PostUpdate struct {
	Content *string
	Media   *[]string
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id string) (*models.Post, error)
	ListPosts(ctx context.Context, filter PostFilter) ([]models.Post, error)
	UpdatePost(ctx context.Context, id string, update PostUpdate) (*models.Post, error)
	// DeletePostCascade removes comments, likes and the post in one transaction.
	DeletePostCascade(ctx context.Context, id string) error
	// ReconcileLikesCount recomputes likes_count from like rows for one post,
	// or every post when postID is empty, returning how many were corrected.
	ReconcileLikesCount(ctx context.Context, postID string) (int64, error)
}

// PostgresPostRepository implements PostRepository for PostgreSQL
type PostgresPostRepository struct {
	db *gorm.DB
}

// NewPostgresPostRepository creates a new PostgresPostRepository
func NewPostgresPostRepository(db *gorm.DB) *PostgresPostRepository {
	return &PostgresPostRepository{db: db}
}

func (r *PostgresPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	if post.Media == nil {
		post.Media = datatypes.JSONSlice[string]{}
	}
	return translate(r.db.WithContext(ctx).Create(post).Error, "postRepo.CreatePost")
}

func (r *PostgresPostRepository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, "id = ?", id).Error; err != nil {
		return nil, translate(err, "postRepo.GetPostByID")
	}
	return &post, nil
}

// ListPosts returns posts newest first, ties broken by id. A cursor that
// does not name an existing post yields ErrUnknownCursor.
func (r *PostgresPostRepository) ListPosts(ctx context.Context, filter PostFilter) ([]models.Post, error) {
	q := r.db.WithContext(ctx).Model(&models.Post{})
	if filter.AuthorID != "" {
		q = q.Where("author_id = ?", filter.AuthorID)
	}
	if filter.Cursor != "" {
		var anchor models.Post
		if err := r.db.WithContext(ctx).Select("id", "created_at").First(&anchor, "id = ?", filter.Cursor).Error; err != nil {
			return nil, translateCursor(err, "postRepo.ListPosts.Cursor")
		}
		q = q.Where("(created_at, id) < (?, ?)", anchor.CreatedAt, anchor.ID)
	}

	var posts []models.Post
	err := q.Order("created_at DESC").Order("id DESC").Limit(filter.Limit).Find(&posts).Error
	return posts, translate(err, "postRepo.ListPosts")
}

func (r *PostgresPostRepository) UpdatePost(ctx context.Context, id string, update PostUpdate) (*models.Post, error) {
	values := map[string]any{}
	if update.Content != nil {
		values["content"] = *update.Content
	}
	if update.Media != nil {
		values["media"] = datatypes.JSONSlice[string](*update.Media)
	}

	var post models.Post
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(values) > 0 {
			res := tx.Model(&models.Post{}).Where("id = ?", id).Updates(values)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return gorm.ErrRecordNotFound
			}
		}
		return tx.First(&post, "id = ?", id).Error
	})
	if err != nil {
		return nil, translate(err, "postRepo.UpdatePost")
	}
	return &post, nil
}

func (r *PostgresPostRepository) DeletePostCascade(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.Post{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	return translate(err, "postRepo.DeletePostCascade")
}

const reconcileLikesSQL = `UPDATE posts SET likes_count = agg.cnt
FROM (
	SELECT p.id, COUNT(l.id) AS cnt
	FROM posts p LEFT JOIN likes l ON l.post_id = p.id
	WHERE (@post_id = '' OR p.id::text = @post_id)
	GROUP BY p.id
) AS agg
WHERE posts.id = agg.id AND posts.likes_count <> agg.cnt`

// ReconcileLikesCount locks the target posts before counting, the same lock
// ToggleLike takes, so no toggle can commit between the count and the write.
func (r *PostgresPostRepository) ReconcileLikesCount(ctx context.Context, postID string) (int64, error) {
	var fixed int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Model(&models.Post{}).Clauses(clause.Locking{Strength: "UPDATE"}).Order("id")
		if postID != "" {
			q = q.Where("id = ?", postID)
		}
		var locked []string
		if err := q.Pluck("id", &locked).Error; err != nil {
			return err
		}
		if len(locked) == 0 {
			return nil
		}
		res := tx.Exec(reconcileLikesSQL, map[string]any{"post_id": postID})
		fixed = res.RowsAffected
		return res.Error
	})
	return fixed, translate(err, "postRepo.ReconcileLikesCount")
}
