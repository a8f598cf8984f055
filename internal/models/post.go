package models

import (
	"time"

	"gorm.io/datatypes"
)

// Post is a short-form feed entry. LikesCount is denormalized and only ever
// changed inside the like toggle transaction.
type Post struct {
	ID         string                      `json:"id" gorm:"type:uuid;primaryKey"`
	AuthorID   string                      `json:"authorId" gorm:"type:uuid;not null;index:idx_posts_author_created,priority:1"`
	Content    string                      `json:"content" gorm:"type:text;not null"`
	Media      datatypes.JSONSlice[string] `json:"media" gorm:"type:jsonb;not null;default:'[]'"`
	LikesCount int                         `json:"likesCount" gorm:"not null;default:0"`
	CreatedAt  time.Time                   `json:"createdAt" gorm:"index:idx_posts_created;index:idx_posts_author_created,priority:2"`
	UpdatedAt  time.Time                   `json:"updatedAt"`
}

// PostCounts mirrors the aggregate block returned with every post.
type PostCounts struct {
	Comments int64 `json:"comments"`
	Likes    int64 `json:"likes"`
}

// PostView is a post enriched for API responses and realtime events.
type PostView struct {
	Post
	Author  UserSummary `json:"author"`
	Count   PostCounts  `json:"_count"`
	IsLiked *bool       `json:"isLiked,omitempty"`
}

// CreatePostRequest defines the request body for creating a new post
type CreatePostRequest struct {
	Content string   `json:"content" validate:"notblank"`
	Media   []string `json:"media,omitempty" validate:"omitempty,dive,required"`
}

// UpdatePostRequest defines the request body for updating an existing post.
// Nil fields are left unchanged.
type UpdatePostRequest struct {
	Content *string   `json:"content,omitempty" validate:"omitempty"`
	Media   *[]string `json:"media,omitempty" validate:"omitempty,dive,required"`
}

// PostLikedEvent is the payload of post:liked.
type PostLikedEvent struct {
	PostID     string `json:"postId"`
	LikesCount int    `json:"likesCount"`
	Liked      bool   `json:"liked"`
}

// PostDeletedEvent is the payload of post:deleted.
type PostDeletedEvent struct {
	PostID string `json:"postId"`
}

// LikeResult is what a like toggle reports back to the caller.
type LikeResult struct {
	Liked      bool `json:"liked"`
	LikesCount int  `json:"likesCount"`
}
