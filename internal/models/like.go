package models

import "time"

// Like is unique per (post, user); its presence is the source of truth for
// Post.LikesCount.
type Like struct {
	ID        string    `json:"id" gorm:"type:uuid;primaryKey"`
	PostID    string    `json:"postId" gorm:"type:uuid;not null;uniqueIndex:idx_likes_post_user,priority:1"`
	UserID    string    `json:"userId" gorm:"type:uuid;not null;uniqueIndex:idx_likes_post_user,priority:2;index"`
	CreatedAt time.Time `json:"createdAt"`
}
