package journey

import (
	"errors"
	"testing"
	"time"

	"github.com/paaulosilvaassis/loveodonto-sub003/services/agenda-service/internal/model"
)

var now = time.Date(2026, 2, 2, 10, 0, 0, 0, time.UTC)

func scheduled() model.Appointment {
	return model.Appointment{
		ID:             "apt-1",
		Date:           "2026-02-02",
		StartMin:       600,
		EndMin:         660,
		ProfessionalID: "p1",
		Status:         model.StatusScheduled,
		SlotCapacity:   1,
	}
}

func TestStageFromStatus(t *testing.T) {
	cases := map[model.Status]Stage{
		model.StatusScheduled:            StageScheduled,
		model.StatusConfirmed:            StageScheduled,
		model.StatusAwaitingConfirmation: StageScheduled,
		model.StatusLate:                 StageScheduled,
		model.StatusCheckedIn:            StageWaitingRoom,
		model.StatusInConsultingRoom:     StageInConsultingRoom,
		model.StatusFinished:             StageFinished,
		model.StatusCanceled:             StageCanceled,
		model.StatusNoShow:               StageNoShow,
		"cancelled":                      StageCanceled, // legacy spelling
		"arrived":                        StageWaitingRoom,
		"totally-unknown":                StageScheduled, // safe default
		"":                               StageScheduled,
	}
	for status, want := range cases {
		if got := StageFromStatus(status); got != want {
			t.Fatalf("StageFromStatus(%q) = %q, want %q", status, got, want)
		}
	}
}

func TestConfirmArrival(t *testing.T) {
	a := scheduled()
	if err := ConfirmArrival(&a, now); err != nil {
		t.Fatalf("confirm from scheduled failed: %v", err)
	}
	if a.Status != model.StatusCheckedIn {
		t.Fatalf("expected checked-in, got %q", a.Status)
	}
	if a.CheckedInAt == nil || !a.CheckedInAt.Equal(now) {
		t.Fatalf("expected CheckedInAt=now, got %v", a.CheckedInAt)
	}

	// Re-entrant confirm is rejected, timestamp untouched.
	later := now.Add(5 * time.Minute)
	if err := ConfirmArrival(&a, later); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if !a.CheckedInAt.Equal(now) {
		t.Fatalf("re-entrant confirm must not move CheckedInAt")
	}
}

func TestConfirmArrivalFromScheduledFamily(t *testing.T) {
	for _, st := range []model.Status{model.StatusConfirmed, model.StatusAwaitingConfirmation, model.StatusLate} {
		a := scheduled()
		a.Status = st
		if err := ConfirmArrival(&a, now); err != nil {
			t.Fatalf("confirm from %q failed: %v", st, err)
		}
	}
}

func TestSendToConsultingRoom(t *testing.T) {
	a := scheduled()
	if err := SendToConsultingRoom(&a, "r2", false, now); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected rejection from scheduled without force, got %v", err)
	}

	if err := ConfirmArrival(&a, now); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	called := now.Add(10 * time.Minute)
	if err := SendToConsultingRoom(&a, "r2", false, called); err != nil {
		t.Fatalf("send from waiting room failed: %v", err)
	}
	if a.Status != model.StatusInConsultingRoom {
		t.Fatalf("expected in-consulting-room, got %q", a.Status)
	}
	if a.RoomID != "r2" {
		t.Fatalf("expected assigned room recorded, got %q", a.RoomID)
	}
	if a.CheckedInAt == nil || !a.CheckedInAt.Equal(now) {
		t.Fatalf("check-in timestamp must be preserved")
	}
	if a.CalledAt == nil || a.StartedAt == nil || !a.CalledAt.Equal(called) || !a.StartedAt.Equal(called) {
		t.Fatalf("expected CalledAt and StartedAt set to call time")
	}
}

func TestSendToConsultingRoomForced(t *testing.T) {
	a := scheduled()
	if err := SendToConsultingRoom(&a, "", true, now); err != nil {
		t.Fatalf("forced send from scheduled failed: %v", err)
	}
	// Walk-straight-in backfills the waiting-room timestamps.
	if a.CheckedInAt == nil || a.CalledAt == nil || a.StartedAt == nil {
		t.Fatalf("forced send must backfill timestamps: %+v", a)
	}
	if a.RoomID != "" {
		t.Fatalf("empty room id must not overwrite the appointment room")
	}
}

func TestFinishOnlyFromConsultingRoom(t *testing.T) {
	a := scheduled()
	if err := Finish(&a, now); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition finishing from scheduled, got %v", err)
	}
	a.Status = model.StatusCheckedIn
	if err := Finish(&a, now); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition finishing from waiting room, got %v", err)
	}

	a.Status = model.StatusInConsultingRoom
	if err := Finish(&a, now); err != nil {
		t.Fatalf("finish failed: %v", err)
	}
	if a.Status != model.StatusFinished || a.FinishedAt == nil {
		t.Fatalf("expected finished with timestamp, got %+v", a)
	}
}

func TestCancelRequiresReason(t *testing.T) {
	a := scheduled()
	if err := Cancel(&a, "", "dr.silva", now); !errors.Is(err, ErrReasonRequired) {
		t.Fatalf("expected ErrReasonRequired, got %v", err)
	}
	if a.Status != model.StatusScheduled {
		t.Fatalf("failed cancel must not mutate the appointment")
	}

	if err := Cancel(&a, "patient asked", "dr.silva", now); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if a.Status != model.StatusCanceled || a.CanceledAt == nil || a.CancelReason != "patient asked" || a.CanceledBy != "dr.silva" {
		t.Fatalf("cancel fields not recorded: %+v", a)
	}
}

func TestCanceledIsTerminal(t *testing.T) {
	a := scheduled()
	if err := Cancel(&a, "duplicate booking", "reception", now); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	if err := ConfirmArrival(&a, now); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("confirm after cancel must fail, got %v", err)
	}
	if err := SendToConsultingRoom(&a, "r1", true, now); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("send after cancel must fail, got %v", err)
	}
	if err := Finish(&a, now); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("finish after cancel must fail, got %v", err)
	}
	if err := MarkNoShow(&a, now); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("no-show after cancel must fail, got %v", err)
	}
	if err := Cancel(&a, "again", "reception", now); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("double cancel must fail, got %v", err)
	}
}

func TestCancelFromAnyNonTerminal(t *testing.T) {
	for _, st := range []model.Status{model.StatusScheduled, model.StatusCheckedIn, model.StatusInConsultingRoom, model.StatusNoShow} {
		a := scheduled()
		a.Status = st
		if err := Cancel(&a, "closing early", "admin", now); err != nil {
			t.Fatalf("cancel from %q failed: %v", st, err)
		}
	}
	a := scheduled()
	a.Status = model.StatusFinished
	if err := Cancel(&a, "nope", "admin", now); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("cancel of finished appointment must fail, got %v", err)
	}
}

func TestMarkNoShow(t *testing.T) {
	a := scheduled()
	if err := MarkNoShow(&a, now); err != nil {
		t.Fatalf("no-show from scheduled failed: %v", err)
	}
	if a.Status != model.StatusNoShow {
		t.Fatalf("expected no-show, got %q", a.Status)
	}
	if err := MarkNoShow(&a, now); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("repeat no-show must fail, got %v", err)
	}
}

func TestReturnToWaitingRoomClearsTimestamps(t *testing.T) {
	a := scheduled()
	if err := ConfirmArrival(&a, now); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if err := SendToConsultingRoom(&a, "r1", false, now.Add(time.Minute)); err != nil {
		t.Fatalf("send failed: %v", err)
	}

	if err := ReturnToWaitingRoom(&a, now.Add(2*time.Minute)); err != nil {
		t.Fatalf("return failed: %v", err)
	}
	if a.Status != model.StatusCheckedIn {
		t.Fatalf("expected checked-in after return, got %q", a.Status)
	}
	if a.CalledAt != nil || a.StartedAt != nil || a.FinishedAt != nil {
		t.Fatalf("return must clear consulting-room timestamps: %+v", a)
	}
	if a.CheckedInAt == nil {
		t.Fatalf("check-in timestamp survives the rollback")
	}

	// Only valid from the consulting room.
	if err := ReturnToWaitingRoom(&a, now); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("return from waiting room must fail, got %v", err)
	}
}

func TestEntryForMirrorsAppointment(t *testing.T) {
	a := scheduled()
	_ = ConfirmArrival(&a, now)
	e := EntryFor(a, now)
	if e.Date != a.Date || e.AppointmentID != a.ID {
		t.Fatalf("entry key mismatch: %+v", e)
	}
	if e.Stage != string(StageWaitingRoom) {
		t.Fatalf("expected waiting-room stage, got %q", e.Stage)
	}
	if e.CheckedInAt == nil || !e.CheckedInAt.Equal(now) {
		t.Fatalf("entry must mirror timestamps")
	}
	if !e.UpdatedAt.Equal(now) {
		t.Fatalf("expected UpdatedAt=now")
	}
}
