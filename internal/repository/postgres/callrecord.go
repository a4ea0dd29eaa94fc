package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pairhub/signalhub/internal/models"
)

// CallRecordStore is a metadata-only audit log of calls: who called whom,
// which room, when it started and ended. No message content, no media.
// Its shape (RETURNING insert, cursor pagination) is carried over from the
// teacher's MessageStore — the closest analogue in the original domain.
type CallRecordStore struct {
	pool *pgxpool.Pool
}

func NewCallRecordStore(pool *pgxpool.Pool) *CallRecordStore {
	return &CallRecordStore{pool: pool}
}

func (s *CallRecordStore) Create(ctx context.Context, teamID, callerID, calleeID uuid.UUID, roomID string) (*models.CallRecord, error) {
	query := `
		INSERT INTO call_records (team_id, caller_id, callee_id, room_id, started_at)
		VALUES ($1, $2, $3, $4, now())
		RETURNING id, team_id, caller_id, callee_id, room_id, started_at, ended_at`

	var rec models.CallRecord
	err := s.pool.QueryRow(ctx, query, teamID, callerID, calleeID, roomID).Scan(
		&rec.ID,
		&rec.TeamID,
		&rec.CallerID,
		&rec.CalleeID,
		&rec.RoomID,
		&rec.StartedAt,
		&rec.EndedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert call record: %w", err)
	}
	return &rec, nil
}

func (s *CallRecordStore) MarkEnded(ctx context.Context, roomID string, endedAt time.Time) error {
	query := `
		UPDATE call_records
		SET ended_at = $2
		WHERE room_id = $1 AND ended_at IS NULL`

	if _, err := s.pool.Exec(ctx, query, roomID, endedAt); err != nil {
		return fmt.Errorf("mark call ended: %w", err)
	}
	return nil
}

// ListByTeam paginates the same way the teacher paginates messages:
// before=0 is the first page, before=<id> means "older than id".
func (s *CallRecordStore) ListByTeam(ctx context.Context, teamID uuid.UUID, before int64, limit int) ([]models.CallRecord, error) {
	var query string
	var args []any

	if before > 0 {
		query = `
			SELECT id, team_id, caller_id, callee_id, room_id, started_at, ended_at
			FROM call_records
			WHERE team_id = $1 AND id < $2
			ORDER BY id DESC
			LIMIT $3`
		args = []any{teamID, before, limit}
	} else {
		query = `
			SELECT id, team_id, caller_id, callee_id, room_id, started_at, ended_at
			FROM call_records
			WHERE team_id = $1
			ORDER BY id DESC
			LIMIT $2`
		args = []any{teamID, limit}
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list call records: %w", err)
	}
	defer rows.Close()

	records := make([]models.CallRecord, 0)
	for rows.Next() {
		var rec models.CallRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.TeamID,
			&rec.CallerID,
			&rec.CalleeID,
			&rec.RoomID,
			&rec.StartedAt,
			&rec.EndedAt,
		); err != nil {
			return nil, fmt.Errorf("scan call record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate call records: %w", err)
	}

	return records, nil
}
