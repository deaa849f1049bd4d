// Package journey models the patient journey through an appointment:
// scheduled, waiting room, consulting room, finished (or canceled/no-show).
// Transition functions mutate the appointment passed in and report
// ErrInvalidTransition without touching it when the precondition fails, so a
// caller that persists only on nil error never writes a partial state.
package journey

import (
	"errors"
	"fmt"
	"time"

	"github.com/paaulosilvaassis/loveodonto-sub003/services/agenda-service/internal/model"
)

var (
	// ErrInvalidTransition marks a precondition failure. Callers surface the
	// wrapped message to the operator and must not assume any write happened.
	ErrInvalidTransition = errors.New("invalid journey transition")

	// ErrReasonRequired is returned by Cancel when no reason is given.
	ErrReasonRequired = errors.New("cancel requires a reason")
)

// Stage is the coarse lifecycle bucket shown on the waiting-room panel.
type Stage string

const (
	StageScheduled        Stage = "scheduled"
	StageWaitingRoom      Stage = "waiting-room"
	StageInConsultingRoom Stage = "in-consulting-room"
	StageFinished         Stage = "finished"
	StageCanceled         Stage = "canceled"
	StageNoShow           Stage = "no-show"
)

// stageByStatus is the exhaustive mapping from stored status values,
// including the legacy spellings older records still carry.
var stageByStatus = map[model.Status]Stage{
	model.StatusScheduled:            StageScheduled,
	model.StatusConfirmed:            StageScheduled,
	model.StatusAwaitingConfirmation: StageScheduled,
	model.StatusLate:                 StageScheduled,
	model.StatusCheckedIn:            StageWaitingRoom,
	model.StatusInConsultingRoom:     StageInConsultingRoom,
	model.StatusFinished:             StageFinished,
	model.StatusCanceled:             StageCanceled,
	model.StatusNoShow:               StageNoShow,

	// Legacy values from pre-migration records.
	"booked":    StageScheduled,
	"pending":   StageScheduled,
	"arrived":   StageWaitingRoom,
	"attending": StageInConsultingRoom,
	"done":      StageFinished,
	"cancelled": StageCanceled,
	"noshow":    StageNoShow,
}

// StageFromStatus is total: unknown status values map to StageScheduled,
// the safest macro-stage, rather than failing the whole day view.
func StageFromStatus(s model.Status) Stage {
	if stage, ok := stageByStatus[s]; ok {
		return stage
	}
	return StageScheduled
}

// ConfirmArrival moves a scheduled-family appointment into the waiting room.
// Re-confirming an already checked-in appointment is rejected so CheckedInAt
// stays meaningful.
func ConfirmArrival(a *model.Appointment, now time.Time) error {
	if StageFromStatus(a.Status) != StageScheduled {
		return fmt.Errorf("%w: cannot confirm arrival from status %q", ErrInvalidTransition, a.Status)
	}
	a.Status = model.StatusCheckedIn
	if a.CheckedInAt == nil {
		a.CheckedInAt = &now
	}
	return nil
}

// SendToConsultingRoom calls the patient in. Normally the patient must be in
// the waiting room; force allows skipping check-in (walk-straight-in), in
// which case the waiting-room timestamps are backfilled with now.
func SendToConsultingRoom(a *model.Appointment, roomID string, force bool, now time.Time) error {
	stage := StageFromStatus(a.Status)
	if stage != StageWaitingRoom && !(force && stage == StageScheduled) {
		return fmt.Errorf("%w: cannot send to consulting room from status %q", ErrInvalidTransition, a.Status)
	}
	a.Status = model.StatusInConsultingRoom
	if roomID != "" {
		a.RoomID = roomID
	}
	if a.CheckedInAt == nil {
		a.CheckedInAt = &now
	}
	if a.CalledAt == nil {
		a.CalledAt = &now
	}
	if a.StartedAt == nil {
		a.StartedAt = &now
	}
	return nil
}

// Finish completes an appointment that is in the consulting room.
func Finish(a *model.Appointment, now time.Time) error {
	if StageFromStatus(a.Status) != StageInConsultingRoom {
		return fmt.Errorf("%w: cannot finish from status %q", ErrInvalidTransition, a.Status)
	}
	a.Status = model.StatusFinished
	if a.FinishedAt == nil {
		a.FinishedAt = &now
	}
	return nil
}

// Cancel retires the appointment. Finished and already-canceled appointments
// are terminal; everything else can be canceled with a reason.
func Cancel(a *model.Appointment, reason, canceledBy string, now time.Time) error {
	if reason == "" {
		return ErrReasonRequired
	}
	stage := StageFromStatus(a.Status)
	if stage == StageFinished || stage == StageCanceled {
		return fmt.Errorf("%w: cannot cancel from status %q", ErrInvalidTransition, a.Status)
	}
	a.Status = model.StatusCanceled
	a.CancelReason = reason
	a.CanceledBy = canceledBy
	a.CanceledAt = &now
	return nil
}

// MarkNoShow records that the patient never completed the visit. Terminal
// states (finished, canceled) and repeat calls are rejected.
func MarkNoShow(a *model.Appointment, now time.Time) error {
	switch StageFromStatus(a.Status) {
	case StageFinished, StageCanceled, StageNoShow:
		return fmt.Errorf("%w: cannot mark no-show from status %q", ErrInvalidTransition, a.Status)
	}
	a.Status = model.StatusNoShow
	return nil
}

// ReturnToWaitingRoom rolls an in-consulting-room appointment back to the
// waiting room, explicitly clearing the consulting-room timestamps. This is
// the only transition that un-sets journey timestamps.
func ReturnToWaitingRoom(a *model.Appointment, now time.Time) error {
	if StageFromStatus(a.Status) != StageInConsultingRoom {
		return fmt.Errorf("%w: cannot return to waiting room from status %q", ErrInvalidTransition, a.Status)
	}
	a.Status = model.StatusCheckedIn
	a.CalledAt = nil
	a.StartedAt = nil
	a.FinishedAt = nil
	if a.CheckedInAt == nil {
		a.CheckedInAt = &now
	}
	return nil
}

// EntryFor derives the journey audit row for an appointment on its date.
func EntryFor(a model.Appointment, now time.Time) model.JourneyEntry {
	return model.JourneyEntry{
		Date:          a.Date,
		AppointmentID: a.ID,
		Stage:         string(StageFromStatus(a.Status)),
		CheckedInAt:   a.CheckedInAt,
		CalledAt:      a.CalledAt,
		StartedAt:     a.StartedAt,
		FinishedAt:    a.FinishedAt,
		CanceledAt:    a.CanceledAt,
		UpdatedAt:     now,
	}
}
