package model

import "time"

// JourneyEntry is the per-day audit row mirroring an appointment's lifecycle
// stage and timestamps, keyed by (Date, AppointmentID). It is written only by
// journey transitions and the lazy ensure on the day view, never by UI code.
type JourneyEntry struct {
	Date          string
	AppointmentID string
	Stage         string
	CheckedInAt   *time.Time
	CalledAt      *time.Time
	StartedAt     *time.Time
	FinishedAt    *time.Time
	CanceledAt    *time.Time
	UpdatedAt     time.Time
}
