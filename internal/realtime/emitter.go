// Package realtime is the WebSocket gateway. Services push events through the
// Emitter interface; connected clients receive them as JSON frames.
package realtime

// Event names pushed to clients.
const (
	EventPostCreated     = "post:created"
	EventPostUpdated     = "post:updated"
	EventPostDeleted     = "post:deleted"
	EventPostLiked       = "post:liked"
	EventCommentAdded    = "comment:added"
	EventNotificationNew = "notification:new"
)

// Client to server events.
const (
	EventJoinUser  = "join:user"
	EventLeaveUser = "leave:user"
)

// Emitter delivers events fire-and-forget. Implementations must not block the
// caller on slow or absent receivers and never report delivery failures.
type Emitter interface {
	EmitToUser(userID, event string, payload any)
	EmitGlobal(event string, payload any)
}

// Frame is the wire shape of every message in both directions.
type Frame struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// RoomFor names the private room of a user.
func RoomFor(userID string) string {
	return "user:" + userID
}

// Nop discards every event.
type Nop struct{}

func (Nop) EmitToUser(string, string, any) {}
func (Nop) EmitGlobal(string, any)         {}
