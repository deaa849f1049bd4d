package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/paaulosilvaassis/loveodonto-sub003/services/agenda-service/internal/journey"
)

func TestWriteTransitionError(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"invalid transition", fmt.Errorf("%w: cannot finish", journey.ErrInvalidTransition), http.StatusConflict},
		{"reason required", journey.ErrReasonRequired, http.StatusBadRequest},
		{"unexpected", fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		writeTransitionError(w, tc.err)
		if w.Code != tc.wantStatus {
			t.Fatalf("%s: got status %d, want %d", tc.name, w.Code, tc.wantStatus)
		}
	}
}

func TestJourneyTransitionsRejectBadRequests(t *testing.T) {
	h := NewJourneyHandler(nil, nil, nil, discardLogger())

	endpoints := map[string]http.HandlerFunc{
		"check-in":          h.CheckIn,
		"send-to-room":      h.SendToRoom,
		"finish":            h.Finish,
		"return-to-waiting": h.ReturnToWaiting,
		"no-show":           h.NoShow,
	}

	for name, fn := range endpoints {
		r := httptest.NewRequest(http.MethodGet, "/api/v1/journey/"+name, nil)
		w := httptest.NewRecorder()
		fn(w, r)
		if w.Code != http.StatusMethodNotAllowed {
			t.Fatalf("%s: got status %d, want 405", name, w.Code)
		}

		r = httptest.NewRequest(http.MethodPost, "/api/v1/journey/"+name, strings.NewReader(`{"appointment_id":""}`))
		w = httptest.NewRecorder()
		fn(w, r)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s: got status %d, want 400", name, w.Code)
		}
	}
}

func TestJourneyListRejectsBadDate(t *testing.T) {
	h := NewJourneyHandler(nil, nil, nil, discardLogger())
	r := httptest.NewRequest(http.MethodGet, "/api/v1/journey?date=tomorrow", nil)
	w := httptest.NewRecorder()
	h.List(w, r)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want 400", w.Code)
	}
}
