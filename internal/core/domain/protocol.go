package domain

import (
	"time"

	"github.com/google/uuid"
)

// Topic name layout on the broadcast channel. Topics are created
// implicitly on first publish or subscribe and carry no state.
func TopicMessages(convID uuid.UUID) string {
	return "messages:" + convID.String()
}

func TopicOnline(userID uuid.UUID) string {
	return "online:" + userID.String()
}

// PresenceUpdate is the payload published on online:<userID> whenever
// the tracker confirms an online/offline transition. Exactly one update
// per transition, never one per heartbeat.
type PresenceUpdate struct {
	UserID     uuid.UUID `json:"user_id"`
	IsOnline   bool      `json:"is_online"`
	LastSeenAt time.Time `json:"last_seen_at"`
}
