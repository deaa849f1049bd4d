package inbox

import (
	"context"

	"github.com/paaulosilvaassis/loveodonto-sub003/libs/db"
)

// Repository deduplicates consumed events by id. The outbox publisher
// delivers at-least-once, so the first insert of an id wins and every later
// delivery is a replay.
type Repository struct {
	pool *db.Pool
}

func NewRepository(pool *db.Pool) *Repository {
	return &Repository{pool: pool}
}

// Record claims the event id. It returns false when the id was already
// claimed, meaning the event was handled before and must be skipped.
func (r *Repository) Record(ctx context.Context, eventID string, eventType string) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`INSERT INTO inbox_events (event_id, event_type)
		 VALUES ($1, $2)
		 ON CONFLICT (event_id) DO NOTHING`,
		eventID, eventType)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
