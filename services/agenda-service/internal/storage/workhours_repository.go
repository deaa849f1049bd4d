package storage

import (
	"context"

	"github.com/paaulosilvaassis/loveodonto-sub003/libs/db"
	"github.com/paaulosilvaassis/loveodonto-sub003/services/agenda-service/internal/model"
)

// WorkHoursRepository is the local cache of professional working hours. The
// admin console owns the data; agenda-service keeps this copy fresh through
// the admin.workhours.updated.v1 consumer and reads it when resolving
// agenda windows.
type WorkHoursRepository struct {
	pool *db.Pool
}

func NewWorkHoursRepository(pool *db.Pool) *WorkHoursRepository {
	return &WorkHoursRepository{pool: pool}
}

// ListByProfessional returns every configured entry across the week. Times
// stay raw text: malformed values are the resolver's problem, not the
// store's.
func (r *WorkHoursRepository) ListByProfessional(ctx context.Context, professionalID string) ([]model.WorkHourEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT professional_id::text, weekday, active,
			COALESCE(start_time, ''), COALESCE(end_time, ''),
			COALESCE(break_start, ''), COALESCE(break_end, ''),
			COALESCE(slot_minutes, 0)
		FROM professional_work_hours
		WHERE professional_id = $1
		ORDER BY weekday ASC, start_time ASC
	`, professionalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.WorkHourEntry
	for rows.Next() {
		var e model.WorkHourEntry
		if err := rows.Scan(
			&e.ProfessionalID,
			&e.Weekday,
			&e.Active,
			&e.Start,
			&e.End,
			&e.BreakStart,
			&e.BreakEnd,
			&e.SlotMinutes,
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

func (r *WorkHoursRepository) Upsert(ctx context.Context, e model.WorkHourEntry) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO professional_work_hours
			(professional_id, weekday, active, start_time, end_time, break_start, break_end, slot_minutes)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''), NULLIF($8, 0))
		ON CONFLICT (professional_id, weekday, start_time) DO UPDATE
		SET active = EXCLUDED.active,
			end_time = EXCLUDED.end_time,
			break_start = EXCLUDED.break_start,
			break_end = EXCLUDED.break_end,
			slot_minutes = EXCLUDED.slot_minutes,
			updated_at = now()
	`, e.ProfessionalID, e.Weekday, e.Active, e.Start, e.End, e.BreakStart, e.BreakEnd, e.SlotMinutes)
	return err
}
