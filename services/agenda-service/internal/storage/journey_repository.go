package storage

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/paaulosilvaassis/loveodonto-sub003/libs/db"
	"github.com/paaulosilvaassis/loveodonto-sub003/services/agenda-service/internal/model"
)

// JourneyRepository persists the per-day journey audit rows. Rows are
// written only through journey transitions and the lazy ensure on the day
// view; there is no independent create path.
type JourneyRepository struct {
	pool *db.Pool
}

func NewJourneyRepository(pool *db.Pool) *JourneyRepository {
	return &JourneyRepository{pool: pool}
}

// Upsert writes the entry for (date, appointment), replacing stage and
// timestamps wholesale. Runs inside the transition's transaction so the
// appointment row and its audit row commit together.
func (r *JourneyRepository) Upsert(ctx context.Context, tx pgx.Tx, e model.JourneyEntry) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO journey_entries
			(date, appointment_id, stage, checked_in_at, called_at, started_at, finished_at, canceled_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (date, appointment_id) DO UPDATE
		SET stage = EXCLUDED.stage,
			checked_in_at = EXCLUDED.checked_in_at,
			called_at = EXCLUDED.called_at,
			started_at = EXCLUDED.started_at,
			finished_at = EXCLUDED.finished_at,
			canceled_at = EXCLUDED.canceled_at,
			updated_at = EXCLUDED.updated_at
	`, e.Date, e.AppointmentID, e.Stage, e.CheckedInAt, e.CalledAt, e.StartedAt,
		e.FinishedAt, e.CanceledAt, e.UpdatedAt)
	return err
}

// Ensure lazily creates the entry the first time an appointment shows up on
// a day view. Existing rows are left untouched.
func (r *JourneyRepository) Ensure(ctx context.Context, e model.JourneyEntry) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO journey_entries
			(date, appointment_id, stage, checked_in_at, called_at, started_at, finished_at, canceled_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (date, appointment_id) DO NOTHING
	`, e.Date, e.AppointmentID, e.Stage, e.CheckedInAt, e.CalledAt, e.StartedAt,
		e.FinishedAt, e.CanceledAt, e.UpdatedAt)
	return err
}

func (r *JourneyRepository) ListByDate(ctx context.Context, date string) ([]model.JourneyEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT date::text, appointment_id::text, stage,
			checked_in_at, called_at, started_at, finished_at, canceled_at, updated_at
		FROM journey_entries
		WHERE date = $1
		ORDER BY updated_at ASC, appointment_id ASC
	`, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.JourneyEntry
	for rows.Next() {
		var e model.JourneyEntry
		if err := rows.Scan(
			&e.Date,
			&e.AppointmentID,
			&e.Stage,
			&e.CheckedInAt,
			&e.CalledAt,
			&e.StartedAt,
			&e.FinishedAt,
			&e.CanceledAt,
			&e.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}
