package models

import "time"

const ConnectionAccepted = "ACCEPTED"

// Connection is a directed follow edge. Status is always ACCEPTED: there is
// no request workflow yet.
type Connection struct {
	ID          string    `json:"id" gorm:"type:uuid;primaryKey"`
	FollowerID  string    `json:"followerId" gorm:"type:uuid;not null;uniqueIndex:idx_connections_pair,priority:1;check:chk_connections_not_self,follower_id <> following_id"`
	FollowingID string    `json:"followingId" gorm:"type:uuid;not null;uniqueIndex:idx_connections_pair,priority:2;index"`
	Status      string    `json:"status" gorm:"size:20;not null;default:'ACCEPTED'"`
	CreatedAt   time.Time `json:"createdAt"`
}

type ConnectionView struct {
	Connection
	Following UserSummary `json:"following"`
}

type ConnectionStatus struct {
	IsFollowing bool    `json:"isFollowing"`
	Status      *string `json:"status"`
}

type FollowCounts struct {
	Followers int64 `json:"followers"`
	Following int64 `json:"following"`
}
