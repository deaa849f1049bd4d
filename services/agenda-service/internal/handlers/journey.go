package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/paaulosilvaassis/loveodonto-sub003/services/agenda-service/internal/journey"
	"github.com/paaulosilvaassis/loveodonto-sub003/services/agenda-service/internal/model"
	"github.com/paaulosilvaassis/loveodonto-sub003/services/agenda-service/internal/outbox"
	"github.com/paaulosilvaassis/loveodonto-sub003/services/agenda-service/internal/storage"
	"github.com/paaulosilvaassis/loveodonto-sub003/services/agenda-service/internal/timeutil"
)

type JourneyHandler struct {
	repo        *storage.AppointmentRepository
	journeyRepo *storage.JourneyRepository
	outboxRepo  *outbox.Repository
	logger      *slog.Logger
}

func NewJourneyHandler(repo *storage.AppointmentRepository, journeyRepo *storage.JourneyRepository, outboxRepo *outbox.Repository, logger *slog.Logger) *JourneyHandler {
	return &JourneyHandler{
		repo:        repo,
		journeyRepo: journeyRepo,
		outboxRepo:  outboxRepo,
		logger:      logger,
	}
}

type transitionRequest struct {
	AppointmentID string `json:"appointment_id"`
	RoomID        string `json:"room_id"`
	Force         bool   `json:"force"`
}

type transitionResponse struct {
	AppointmentID string `json:"appointment_id"`
	Status        string `json:"status"`
	Stage         string `json:"stage"`
}

type transitionFunc func(a *model.Appointment, now time.Time) error

func writeTransitionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, journey.ErrInvalidTransition):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, journey.ErrReasonRequired):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "transition failed", http.StatusInternalServerError)
	}
}

func (h *JourneyHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, func(req transitionRequest) transitionFunc {
		return journey.ConfirmArrival
	})
}

func (h *JourneyHandler) SendToRoom(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, func(req transitionRequest) transitionFunc {
		return func(a *model.Appointment, now time.Time) error {
			return journey.SendToConsultingRoom(a, strings.TrimSpace(req.RoomID), req.Force, now)
		}
	})
}

func (h *JourneyHandler) Finish(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, func(req transitionRequest) transitionFunc {
		return journey.Finish
	})
}

func (h *JourneyHandler) ReturnToWaiting(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, func(req transitionRequest) transitionFunc {
		return journey.ReturnToWaitingRoom
	})
}

func (h *JourneyHandler) NoShow(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, func(req transitionRequest) transitionFunc {
		return journey.MarkNoShow
	})
}

// apply runs one journey transition as a single transaction: row lock, pure
// transition, appointment update, journey upsert, outbox event.
func (h *JourneyHandler) apply(w http.ResponseWriter, r *http.Request, bind func(req transitionRequest) transitionFunc) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req transitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.AppointmentID = strings.TrimSpace(req.AppointmentID)
	if req.AppointmentID == "" {
		http.Error(w, "appointment_id required", http.StatusBadRequest)
		return
	}
	transition := bind(req)

	ctx := r.Context()
	tx, err := h.repo.Begin(ctx)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	appt, err := h.repo.GetForUpdate(ctx, tx, req.AppointmentID)
	if err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "appointment not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to load appointment", http.StatusInternalServerError)
		return
	}

	now := time.Now().UTC()
	if err := transition(&appt, now); err != nil {
		writeTransitionError(w, err)
		return
	}

	if err := h.repo.UpdateJourney(ctx, tx, appt); err != nil {
		http.Error(w, "failed to update appointment", http.StatusInternalServerError)
		return
	}
	if err := h.journeyRepo.Upsert(ctx, tx, journey.EntryFor(appt, now)); err != nil {
		http.Error(w, "failed to record journey entry", http.StatusInternalServerError)
		return
	}

	stage := journey.StageFromStatus(appt.Status)
	evtPayload, err := json.Marshal(map[string]any{
		"appointment_id":  appt.ID,
		"date":            appt.Date,
		"professional_id": appt.ProfessionalID,
		"room_id":         appt.RoomID,
		"status":          string(appt.Status),
		"stage":           string(stage),
		"updated_at":      now.Format(time.RFC3339),
	})
	if err != nil {
		http.Error(w, "failed to build event payload", http.StatusInternalServerError)
		return
	}
	if err := h.outboxRepo.Insert(ctx, tx, outbox.Event{
		AggregateType: "appointment",
		AggregateID:   appt.ID,
		EventType:     outbox.EventJourneyUpdated,
		Payload:       evtPayload,
	}); err != nil {
		http.Error(w, "failed to write outbox event", http.StatusInternalServerError)
		return
	}

	if err := tx.Commit(ctx); err != nil {
		http.Error(w, "failed to commit", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, transitionResponse{
		AppointmentID: appt.ID,
		Status:        string(appt.Status),
		Stage:         string(stage),
	})
}

type journeyEntryItem struct {
	AppointmentID string `json:"appointment_id"`
	Stage         string `json:"stage"`
	CheckedInAt   string `json:"checked_in_at,omitempty"`
	CalledAt      string `json:"called_at,omitempty"`
	StartedAt     string `json:"started_at,omitempty"`
	FinishedAt    string `json:"finished_at,omitempty"`
	CanceledAt    string `json:"canceled_at,omitempty"`
	UpdatedAt     string `json:"updated_at"`
}

func (h *JourneyHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	date := strings.TrimSpace(r.URL.Query().Get("date"))
	if !timeutil.ValidDate(date) {
		http.Error(w, "invalid date (expected YYYY-MM-DD)", http.StatusBadRequest)
		return
	}

	entries, err := h.journeyRepo.ListByDate(r.Context(), date)
	if err != nil {
		http.Error(w, "failed to load journey entries", http.StatusInternalServerError)
		return
	}

	items := make([]journeyEntryItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, journeyEntryItem{
			AppointmentID: e.AppointmentID,
			Stage:         e.Stage,
			CheckedInAt:   formatOptional(e.CheckedInAt),
			CalledAt:      formatOptional(e.CalledAt),
			StartedAt:     formatOptional(e.StartedAt),
			FinishedAt:    formatOptional(e.FinishedAt),
			CanceledAt:    formatOptional(e.CanceledAt),
			UpdatedAt:     e.UpdatedAt.UTC().Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, items)
}

func formatOptional(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
