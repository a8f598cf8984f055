package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// User is owned by the identity/profile subsystem. The feed only reads it,
// except for the first-login upsert done by the Firebase authenticator.
type User struct {
	ID           string    `json:"id" gorm:"type:uuid;primaryKey"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	Name         string    `json:"name" gorm:"not null"`
	ProfileImage *string   `json:"profileImage"`
	Headline     *string   `json:"headline"`
	FirebaseUID  *string   `json:"-" gorm:"uniqueIndex"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UserSummary is the public projection embedded in posts, comments,
// notifications and follower lists.
type UserSummary struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	ProfileImage *string `json:"profileImage"`
	Headline     *string `json:"headline,omitempty"`
}

func (u *User) ToSummary() UserSummary {
	return UserSummary{
		ID:           u.ID,
		Name:         u.Name,
		ProfileImage: u.ProfileImage,
		Headline:     u.Headline,
	}
}

// JwtCustomClaims are the claims of locally signed access tokens.
type JwtCustomClaims struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}
