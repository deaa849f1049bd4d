package storage

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/paaulosilvaassis/loveodonto-sub003/libs/db"
	"github.com/paaulosilvaassis/loveodonto-sub003/services/agenda-service/internal/conflict"
	"github.com/paaulosilvaassis/loveodonto-sub003/services/agenda-service/internal/model"
)

type AppointmentRepository struct {
	pool *db.Pool
}

func NewAppointmentRepository(pool *db.Pool) *AppointmentRepository {
	return &AppointmentRepository{pool: pool}
}

func (r *AppointmentRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

// LockResource serializes booking decisions for one (date, professional,
// room) triple for the duration of the transaction. Holding this lock across
// the conflict check and the insert is what keeps the two-occupant cap safe
// under concurrent bookings.
func (r *AppointmentRepository) LockResource(ctx context.Context, tx pgx.Tx, date string, key model.ResourceKey) error {
	_, err := tx.Exec(ctx, `
		SELECT pg_advisory_xact_lock(hashtextextended($1, 0))
	`, date+"|"+key.String())
	return err
}

const appointmentColumns = `
	id::text, date::text, start_minute, end_minute,
	COALESCE(professional_id, ''), COALESCE(room_id, ''), COALESCE(patient_id, ''),
	status, slot_capacity,
	checked_in_at, called_at, started_at, finished_at, canceled_at,
	COALESCE(cancel_reason, ''), COALESCE(canceled_by, ''), created_at`

func scanAppointment(row pgx.Row) (model.Appointment, error) {
	var a model.Appointment
	err := row.Scan(
		&a.ID,
		&a.Date,
		&a.StartMin,
		&a.EndMin,
		&a.ProfessionalID,
		&a.RoomID,
		&a.PatientID,
		&a.Status,
		&a.SlotCapacity,
		&a.CheckedInAt,
		&a.CalledAt,
		&a.StartedAt,
		&a.FinishedAt,
		&a.CanceledAt,
		&a.CancelReason,
		&a.CanceledBy,
		&a.CreatedAt,
	)
	if err != nil {
		return model.Appointment{}, err
	}
	a.SlotCapacity = model.NormalizeSlotCapacity(a.SlotCapacity)
	return a, nil
}

func (r *AppointmentRepository) Create(ctx context.Context, tx pgx.Tx, a *model.Appointment) (string, error) {
	var id string
	err := tx.QueryRow(ctx, `
		INSERT INTO appointments
			(date, start_minute, end_minute, professional_id, room_id, patient_id, status, slot_capacity)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), $7, $8)
		RETURNING id::text
	`, a.Date, a.StartMin, a.EndMin, a.ProfessionalID, a.RoomID, a.PatientID,
		a.Status, model.NormalizeSlotCapacity(a.SlotCapacity)).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *AppointmentRepository) Get(ctx context.Context, id string) (model.Appointment, error) {
	return scanAppointment(r.pool.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE id = $1
	`, id))
}

// GetForUpdate row-locks the appointment so a journey transition is a single
// atomic read-modify-write.
func (r *AppointmentRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (model.Appointment, error) {
	return scanAppointment(tx.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE id = $1
		FOR UPDATE
	`, id))
}

// UpdateSchedule rewrites the time/resource fields after a reschedule.
func (r *AppointmentRepository) UpdateSchedule(ctx context.Context, tx pgx.Tx, a model.Appointment) error {
	tag, err := tx.Exec(ctx, `
		UPDATE appointments
		SET date = $2,
			start_minute = $3,
			end_minute = $4,
			professional_id = NULLIF($5, ''),
			room_id = NULLIF($6, ''),
			slot_capacity = $7
		WHERE id = $1
	`, a.ID, a.Date, a.StartMin, a.EndMin, a.ProfessionalID, a.RoomID,
		model.NormalizeSlotCapacity(a.SlotCapacity))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// UpdateJourney persists the status and journey timestamps after a
// transition. Nil pointers clear columns, which is how returnToWaitingRoom
// rolls back calledAt/startedAt.
func (r *AppointmentRepository) UpdateJourney(ctx context.Context, tx pgx.Tx, a model.Appointment) error {
	tag, err := tx.Exec(ctx, `
		UPDATE appointments
		SET status = $2,
			room_id = NULLIF($3, ''),
			checked_in_at = $4,
			called_at = $5,
			started_at = $6,
			finished_at = $7,
			canceled_at = $8,
			cancel_reason = NULLIF($9, ''),
			canceled_by = NULLIF($10, '')
		WHERE id = $1
	`, a.ID, a.Status, a.RoomID, a.CheckedInAt, a.CalledAt, a.StartedAt,
		a.FinishedAt, a.CanceledAt, a.CancelReason, a.CanceledBy)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// ListSchedulables returns everything occupying the resource on one date as
// conflict items: live appointments plus blocks. Canceled and no-show rows
// no longer hold their slot.
func (r *AppointmentRepository) ListSchedulables(ctx context.Context, tx pgx.Tx, date string, key model.ResourceKey) ([]conflict.Item, error) {
	appts, err := r.listAppointments(ctx, tx, date, key)
	if err != nil {
		return nil, err
	}
	items := make([]conflict.Item, 0, len(appts))
	for _, a := range appts {
		items = append(items, conflict.AppointmentItem(a))
	}

	blocks, err := r.listBlocksTx(ctx, tx, date, key)
	if err != nil {
		return nil, err
	}
	for _, b := range blocks {
		items = append(items, conflict.BlockItem(b))
	}
	return items, nil
}

func (r *AppointmentRepository) listAppointments(ctx context.Context, tx pgx.Tx, date string, key model.ResourceKey) ([]model.Appointment, error) {
	roomFilter := key.RoomID
	if roomFilter == "no-room" {
		roomFilter = ""
	}
	rows, err := tx.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE date = $1
			AND COALESCE(professional_id, '') = $2
			AND COALESCE(room_id, '') = $3
			AND status NOT IN ('canceled', 'cancelled', 'no-show', 'noshow')
		ORDER BY start_minute ASC
	`, date, key.ProfessionalID, roomFilter)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAppointments(rows)
}

// ListByDateProfessional feeds the day view: every appointment for the
// professional on the date, canceled ones included (the agenda greys them
// out rather than hiding them).
func (r *AppointmentRepository) ListByDateProfessional(ctx context.Context, date, professionalID string) ([]model.Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE date = $1 AND COALESCE(professional_id, '') = $2
		ORDER BY start_minute ASC, id ASC
	`, date, professionalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAppointments(rows)
}

func collectAppointments(rows pgx.Rows) ([]model.Appointment, error) {
	var out []model.Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// --- idempotency -----------------------------------------------------------

type IdempotencyRecord struct {
	IdempotencyKey  string
	AppointmentID   string
	StatusCode      int
	ResponsePayload []byte
}

func (r *AppointmentRepository) LockIdempotencyKey(ctx context.Context, tx pgx.Tx, key string) (IdempotencyRecord, bool, error) {
	rec, err := r.selectIdempotencyForUpdate(ctx, tx, key)
	if err == nil {
		return rec, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return IdempotencyRecord{}, false, err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO agenda_idempotency_keys (idempotency_key)
		VALUES ($1)
		ON CONFLICT (idempotency_key) DO NOTHING
	`, key)
	if err != nil {
		return IdempotencyRecord{}, false, err
	}

	rec, err = r.selectIdempotencyForUpdate(ctx, tx, key)
	if err != nil {
		return IdempotencyRecord{}, false, err
	}
	return rec, false, nil
}

func (r *AppointmentRepository) FinalizeIdempotency(ctx context.Context, tx pgx.Tx, key, appointmentID string, statusCode int, response []byte) error {
	_, err := tx.Exec(ctx, `
		UPDATE agenda_idempotency_keys
		SET appointment_id = NULLIF($2, '')::uuid,
			status_code = $3,
			response_payload = $4,
			updated_at = now()
		WHERE idempotency_key = $1
	`, key, appointmentID, statusCode, response)
	return err
}

func (r *AppointmentRepository) selectIdempotencyForUpdate(ctx context.Context, tx pgx.Tx, key string) (IdempotencyRecord, error) {
	var rec IdempotencyRecord
	var responseText string
	err := tx.QueryRow(ctx, `
		SELECT idempotency_key,
			COALESCE(appointment_id::text, ''),
			COALESCE(status_code, 0),
			COALESCE(response_payload::text, '')
		FROM agenda_idempotency_keys
		WHERE idempotency_key = $1
		FOR UPDATE
	`, key).Scan(
		&rec.IdempotencyKey,
		&rec.AppointmentID,
		&rec.StatusCode,
		&responseText,
	)
	if err != nil {
		return IdempotencyRecord{}, err
	}
	if responseText != "" {
		rec.ResponsePayload = []byte(responseText)
	}
	return rec, nil
}

// --- blocks ----------------------------------------------------------------

const blockColumns = `
	id::text, date::text, start_minute, end_minute,
	COALESCE(professional_id, ''), COALESCE(room_id, ''), COALESCE(reason, ''), created_at`

func scanBlock(row pgx.Row) (model.Block, error) {
	var b model.Block
	err := row.Scan(
		&b.ID,
		&b.Date,
		&b.StartMin,
		&b.EndMin,
		&b.ProfessionalID,
		&b.RoomID,
		&b.Reason,
		&b.CreatedAt,
	)
	return b, err
}

func (r *AppointmentRepository) CreateBlock(ctx context.Context, tx pgx.Tx, b *model.Block) (string, error) {
	var id string
	err := tx.QueryRow(ctx, `
		INSERT INTO agenda_blocks (date, start_minute, end_minute, professional_id, room_id, reason)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''))
		RETURNING id::text
	`, b.Date, b.StartMin, b.EndMin, b.ProfessionalID, b.RoomID, b.Reason).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *AppointmentRepository) DeleteBlock(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM agenda_blocks WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *AppointmentRepository) listBlocksTx(ctx context.Context, tx pgx.Tx, date string, key model.ResourceKey) ([]model.Block, error) {
	roomFilter := key.RoomID
	if roomFilter == "no-room" {
		roomFilter = ""
	}
	rows, err := tx.Query(ctx, `
		SELECT `+blockColumns+`
		FROM agenda_blocks
		WHERE date = $1
			AND COALESCE(professional_id, '') = $2
			AND COALESCE(room_id, '') = $3
		ORDER BY start_minute ASC
	`, date, key.ProfessionalID, roomFilter)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBlocks(rows)
}

func (r *AppointmentRepository) ListBlocksByDateProfessional(ctx context.Context, date, professionalID string) ([]model.Block, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+blockColumns+`
		FROM agenda_blocks
		WHERE date = $1 AND COALESCE(professional_id, '') = $2
		ORDER BY start_minute ASC, id ASC
	`, date, professionalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBlocks(rows)
}

func collectBlocks(rows pgx.Rows) ([]model.Block, error) {
	var out []model.Block
	for rows.Next() {
		b, err := scanBlock(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}
