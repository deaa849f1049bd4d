package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/paaulosilvaassis/loveodonto-sub003/services/agenda-service/internal/model"
	"github.com/paaulosilvaassis/loveodonto-sub003/services/agenda-service/internal/schedule"
)

type fixedHours struct {
	entries []model.WorkHourEntry
}

func (f fixedHours) WorkHours(_ context.Context, _ string) ([]model.WorkHourEntry, error) {
	return f.entries, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestAgendaHandler(entries []model.WorkHourEntry) *AgendaHandler {
	return NewAgendaHandler(nil, nil, nil, discardLogger(), fixedHours{entries: entries}, schedule.Fallback{
		Start:       "08:00",
		End:         "18:00",
		SlotMinutes: 30,
	})
}

func TestParseSlot(t *testing.T) {
	cases := []struct {
		name    string
		date    string
		start   string
		end     string
		wantErr bool
	}{
		{"ok", "2026-03-10", "09:00", "09:30", false},
		{"bad date", "2026/03/10", "09:00", "09:30", true},
		{"bad start", "2026-03-10", "9am", "09:30", true},
		{"bad end", "2026-03-10", "09:00", "", true},
		{"end before start", "2026-03-10", "10:00", "09:30", true},
		{"zero length", "2026-03-10", "09:00", "09:00", true},
	}
	for _, tc := range cases {
		slot, msg := parseSlot(tc.date, tc.start, tc.end)
		if tc.wantErr {
			if msg == "" {
				t.Fatalf("%s: expected validation message", tc.name)
			}
			continue
		}
		if msg != "" {
			t.Fatalf("%s: unexpected validation message %q", tc.name, msg)
		}
		if slot.StartMin != 540 || slot.EndMin != 570 {
			t.Fatalf("%s: unexpected minutes %d-%d", tc.name, slot.StartMin, slot.EndMin)
		}
	}
}

func TestCreateRejectsBadRequests(t *testing.T) {
	h := newTestAgendaHandler(nil)

	cases := []struct {
		name       string
		method     string
		body       string
		wantStatus int
	}{
		{"wrong method", http.MethodGet, "", http.StatusMethodNotAllowed},
		{"invalid json", http.MethodPost, "{", http.StatusBadRequest},
		{"missing professional", http.MethodPost, `{"date":"2026-03-10","start":"09:00","end":"09:30"}`, http.StatusBadRequest},
		{"bad date", http.MethodPost, `{"date":"soon","start":"09:00","end":"09:30","professional_id":"p1"}`, http.StatusBadRequest},
		{"inverted times", http.MethodPost, `{"date":"2026-03-10","start":"10:00","end":"09:00","professional_id":"p1"}`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		r := httptest.NewRequest(tc.method, "/api/v1/appointments", strings.NewReader(tc.body))
		w := httptest.NewRecorder()
		h.Create(w, r)
		if w.Code != tc.wantStatus {
			t.Fatalf("%s: got status %d, want %d", tc.name, w.Code, tc.wantStatus)
		}
	}
}

func TestCreateRejectsOutsideWorkingHours(t *testing.T) {
	h := newTestAgendaHandler([]model.WorkHourEntry{
		{ProfessionalID: "p1", Weekday: 1, Active: true, Start: "09:00", End: "12:00"},
	})

	body := `{"date":"2026-03-10","start":"13:00","end":"13:30","professional_id":"p1"}`
	r := httptest.NewRequest(http.MethodPost, "/api/v1/appointments", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.Create(w, r)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("got status %d, want 422", w.Code)
	}
}

func TestScheduleResolvesWindow(t *testing.T) {
	h := newTestAgendaHandler([]model.WorkHourEntry{
		{ProfessionalID: "p1", Weekday: 1, Active: true, Start: "09:00", End: "17:00", SlotMinutes: 20},
	})

	r := httptest.NewRequest(http.MethodGet, "/api/v1/schedule?professional_id=p1", nil)
	w := httptest.NewRecorder()
	h.Schedule(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", w.Code)
	}

	var resp scheduleResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Start != "09:00" || resp.End != "17:00" || resp.SlotMinutes != 20 {
		t.Fatalf("unexpected window: %+v", resp)
	}
	if !resp.HasConfig || !resp.IsValid {
		t.Fatalf("expected configured valid window, got %+v", resp)
	}
}

func TestScheduleFallsBackWithoutConfig(t *testing.T) {
	h := newTestAgendaHandler(nil)

	r := httptest.NewRequest(http.MethodGet, "/api/v1/schedule?professional_id=p1", nil)
	w := httptest.NewRecorder()
	h.Schedule(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", w.Code)
	}

	var resp scheduleResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Start != "08:00" || resp.End != "18:00" {
		t.Fatalf("expected fallback window, got %+v", resp)
	}
	if resp.HasConfig || resp.IsValid {
		t.Fatalf("expected unconfigured window flags, got %+v", resp)
	}
}

func TestScheduleRequiresProfessional(t *testing.T) {
	h := newTestAgendaHandler(nil)
	r := httptest.NewRequest(http.MethodGet, "/api/v1/schedule", nil)
	w := httptest.NewRecorder()
	h.Schedule(w, r)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want 400", w.Code)
	}
}

func TestRescheduleCapacityKeepsStoredValueWhenUnset(t *testing.T) {
	if got := rescheduleCapacity(2, nil); got != 2 {
		t.Fatalf("omitted fit_in demoted capacity to %d, want 2", got)
	}
	if got := rescheduleCapacity(1, nil); got != 1 {
		t.Fatalf("omitted fit_in changed capacity to %d, want 1", got)
	}
	// Legacy rows may carry values outside {1,2}; they normalize to 1.
	if got := rescheduleCapacity(0, nil); got != 1 {
		t.Fatalf("unset capacity normalized to %d, want 1", got)
	}

	on, off := true, false
	if got := rescheduleCapacity(1, &on); got != 2 {
		t.Fatalf("explicit fit_in=true gave capacity %d, want 2", got)
	}
	if got := rescheduleCapacity(2, &off); got != 1 {
		t.Fatalf("explicit fit_in=false gave capacity %d, want 1", got)
	}
}
