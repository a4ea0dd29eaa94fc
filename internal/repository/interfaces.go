// Package repository defines the persistence contracts the hub depends on
// (C7 Persistence Adapter). The hub never writes user or team data — it
// only reads identity for auth and presence, and owns one write path of its
// own: the call history audit log.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pairhub/signalhub/internal/models"
)

// UserRepository resolves identity. Every method is read-only: user
// accounts are provisioned by an external system (spec.md §1's Non-goal on
// signup/login), the hub only ever looks them up.
type UserRepository interface {
	// GetByID returns a user by ID. Returns nil, nil if not found.
	GetByID(ctx context.Context, userID uuid.UUID) (*models.User, error)

	// GetByEmail returns a user by email, used to resolve a bearer token's
	// claim into a full identity. Returns nil, nil if not found.
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// ListTeammates returns every user on teamID other than excludeID,
	// newest first. Used to fan out teammate_online on connect.
	ListTeammates(ctx context.Context, teamID uuid.UUID, excludeID uuid.UUID) ([]models.User, error)
}

// TeamRepository resolves team identity, needed to build watercooler room
// names and anonymous redirect tokens.
type TeamRepository interface {
	// GetByID returns a team by ID. Returns nil, nil if not found.
	GetByID(ctx context.Context, teamID uuid.UUID) (*models.Team, error)
}

// CallRecordRepository is the hub's one owned write path: a metadata-only
// audit log of calls, with no message content or media.
type CallRecordRepository interface {
	// Create inserts a new call record at ACTIVE (no EndedAt) and returns it
	// with ID and StartedAt populated.
	Create(ctx context.Context, teamID, callerID, calleeID uuid.UUID, roomID string) (*models.CallRecord, error)

	// MarkEnded sets EndedAt on the record for roomID. No-op if roomID
	// doesn't match any record (e.g. already ended, or from before this
	// process started).
	MarkEnded(ctx context.Context, roomID string, endedAt time.Time) error

	// ListByTeam returns call records for teamID, newest first, cursor
	// paginated the same way the teacher paginates messages: before=0 means
	// the first page, before=<id> means "older than id". Returns an empty
	// slice, not nil, when there are no records.
	ListByTeam(ctx context.Context, teamID uuid.UUID, before int64, limit int) ([]models.CallRecord, error)
}
