package models

import "time"

// Activity is one entry of the append-only activity log kept in MongoDB.
type Activity struct {
	ID           string         `json:"id" bson:"_id"`
	Event        string         `json:"event" bson:"event"`
	ActorID      string         `json:"actorId" bson:"actor_id"`
	TargetUserID string         `json:"targetUserId,omitempty" bson:"target_user_id,omitempty"`
	PostID       string         `json:"postId,omitempty" bson:"post_id,omitempty"`
	Data         map[string]any `json:"data,omitempty" bson:"data,omitempty"`
	CreatedAt    time.Time      `json:"createdAt" bson:"created_at"`
}
