package models

import "time"

// Comment represents a comment on a post. Comments are never edited and are
// only removed together with their post.
type Comment struct {
	ID        string    `json:"id" gorm:"type:uuid;primaryKey"`
	PostID    string    `json:"postId" gorm:"type:uuid;not null;index:idx_comments_post_created,priority:1"`
	AuthorID  string    `json:"authorId" gorm:"type:uuid;not null"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"createdAt" gorm:"index:idx_comments_post_created,priority:2"`
}

type CommentView struct {
	Comment
	Author UserSummary `json:"author"`
}

// CreateCommentRequest defines the request body for creating a new comment
type CreateCommentRequest struct {
	Content string `json:"content" validate:"notblank"`
}

// CommentAddedEvent is the payload of comment:added.
type CommentAddedEvent struct {
	PostID  string      `json:"postId"`
	Comment CommentView `json:"comment"`
}
