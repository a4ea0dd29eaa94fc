package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Team is the top-level isolation boundary — every user belongs to exactly
// one team, and the team ID scopes the watercooler room name and anonymous
// invite tokens.
type Team struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// WatercoolerRoom returns the deterministic SFU room name for this team's
// always-available room.
func (t Team) WatercoolerRoom() string {
	return fmt.Sprintf("team-%s-watercooler", t.ID)
}

// User is a person within a team. Immutable from the hub's perspective once
// authenticated — the hub never writes user records, only reads them.
type User struct {
	ID          uuid.UUID `json:"id"`
	TeamID      uuid.UUID `json:"team_id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}

// UserWithActivity annotates a User with whether they currently have a live
// WebSocket session anywhere in the cluster, per internal/presence.
type UserWithActivity struct {
	User
	IsActive bool `json:"is_active"`
}

// CallRecord is a metadata-only audit row for one call: who called whom,
// which SFU room they were routed to, and when the call started/ended. It
// carries no message content or media — only enough to answer "what calls
// has this team had" for a history view.
type CallRecord struct {
	ID        int64      `json:"id"`
	TeamID    uuid.UUID  `json:"team_id"`
	CallerID  uuid.UUID  `json:"caller_id"`
	CalleeID  uuid.UUID  `json:"callee_id"`
	RoomID    string     `json:"room_id"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
}
