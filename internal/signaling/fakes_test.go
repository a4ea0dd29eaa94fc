package signaling

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pairhub/signalhub/internal/models"
)

// fakeUserRepo satisfies repository.UserRepository against an in-memory
// slice, for tests that don't want a database.
type fakeUserRepo struct {
	users []models.User
}

func (f *fakeUserRepo) GetByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	for _, u := range f.users {
		if u.ID == userID {
			cp := u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			cp := u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) ListTeammates(ctx context.Context, teamID uuid.UUID, excludeID uuid.UUID) ([]models.User, error) {
	var out []models.User
	for _, u := range f.users {
		if u.TeamID == teamID && u.ID != excludeID {
			out = append(out, u)
		}
	}
	return out, nil
}

// fakeCallRepo records Create/MarkEnded calls without touching a database.
type fakeCallRepo struct {
	created []models.CallRecord
	ended   []string
	nextID  int64
}

func (f *fakeCallRepo) Create(ctx context.Context, teamID, callerID, calleeID uuid.UUID, roomID string) (*models.CallRecord, error) {
	f.nextID++
	rec := models.CallRecord{
		ID:        f.nextID,
		TeamID:    teamID,
		CallerID:  callerID,
		CalleeID:  calleeID,
		RoomID:    roomID,
		StartedAt: time.Now(),
	}
	f.created = append(f.created, rec)
	return &rec, nil
}

func (f *fakeCallRepo) MarkEnded(ctx context.Context, roomID string, endedAt time.Time) error {
	f.ended = append(f.ended, roomID)
	return nil
}

func (f *fakeCallRepo) ListByTeam(ctx context.Context, teamID uuid.UUID, before int64, limit int) ([]models.CallRecord, error) {
	return nil, nil
}

// fakeIssuer mints deterministic, inspectable "tokens" instead of real JWTs.
type fakeIssuer struct {
	calls int
}

func (f *fakeIssuer) IssueCallTokens(ctx context.Context, roomID, participantID, displayName string) (string, string, error) {
	f.calls++
	return fmt.Sprintf("video:%s:%s:%s", roomID, participantID, displayName), fmt.Sprintf("audio:%s:%s:%s", roomID, participantID, displayName), nil
}
