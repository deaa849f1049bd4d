package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/paaulosilvaassis/loveodonto-sub003/services/agenda-service/internal/conflict"
	"github.com/paaulosilvaassis/loveodonto-sub003/services/agenda-service/internal/journey"
	"github.com/paaulosilvaassis/loveodonto-sub003/services/agenda-service/internal/lanes"
	"github.com/paaulosilvaassis/loveodonto-sub003/services/agenda-service/internal/model"
	"github.com/paaulosilvaassis/loveodonto-sub003/services/agenda-service/internal/outbox"
	"github.com/paaulosilvaassis/loveodonto-sub003/services/agenda-service/internal/schedule"
	"github.com/paaulosilvaassis/loveodonto-sub003/services/agenda-service/internal/storage"
	"github.com/paaulosilvaassis/loveodonto-sub003/services/agenda-service/internal/timeutil"
	"github.com/paaulosilvaassis/loveodonto-sub003/services/agenda-service/internal/workhours"
)

type AgendaHandler struct {
	repo        *storage.AppointmentRepository
	journeyRepo *storage.JourneyRepository
	outboxRepo  *outbox.Repository
	logger      *slog.Logger
	hours       workhours.Provider
	fallback    schedule.Fallback
}

func NewAgendaHandler(repo *storage.AppointmentRepository, journeyRepo *storage.JourneyRepository, outboxRepo *outbox.Repository, logger *slog.Logger, hours workhours.Provider, fallback schedule.Fallback) *AgendaHandler {
	return &AgendaHandler{
		repo:        repo,
		journeyRepo: journeyRepo,
		outboxRepo:  outboxRepo,
		logger:      logger,
		hours:       hours,
		fallback:    fallback,
	}
}

type createAppointmentRequest struct {
	Date           string `json:"date"`
	Start          string `json:"start"`
	End            string `json:"end"`
	ProfessionalID string `json:"professional_id"`
	RoomID         string `json:"room_id"`
	PatientID      string `json:"patient_id"`
	FitIn          bool   `json:"fit_in"`
}

type createAppointmentResponse struct {
	AppointmentID string `json:"appointment_id"`
}

type rescheduleRequest struct {
	AppointmentID  string `json:"appointment_id"`
	Date           string `json:"date"`
	Start          string `json:"start"`
	End            string `json:"end"`
	ProfessionalID string `json:"professional_id"`
	RoomID         string `json:"room_id"`
	// Pointer so an omitted field keeps the stored capacity instead of
	// silently demoting a fit-in appointment.
	FitIn *bool `json:"fit_in"`
}

type cancelRequest struct {
	AppointmentID string `json:"appointment_id"`
	Reason        string `json:"reason"`
	CanceledBy    string `json:"canceled_by"`
}

type cancelResponse struct {
	AppointmentID string `json:"appointment_id"`
	Status        string `json:"status"`
	CanceledAt    string `json:"canceled_at"`
}

type createBlockRequest struct {
	Date           string `json:"date"`
	Start          string `json:"start"`
	End            string `json:"end"`
	ProfessionalID string `json:"professional_id"`
	RoomID         string `json:"room_id"`
	Reason         string `json:"reason"`
}

type createBlockResponse struct {
	BlockID string `json:"block_id"`
}

// slotInput is the validated time placement shared by bookings, reschedules
// and blocks.
type slotInput struct {
	Date     string
	StartMin int
	EndMin   int
}

func parseSlot(date, start, end string) (slotInput, string) {
	if !timeutil.ValidDate(date) {
		return slotInput{}, "invalid date (expected YYYY-MM-DD)"
	}
	startMin, ok := timeutil.ParseHHMM(start)
	if !ok {
		return slotInput{}, "invalid start (expected HH:MM)"
	}
	endMin, ok := timeutil.ParseHHMM(end)
	if !ok {
		return slotInput{}, "invalid end (expected HH:MM)"
	}
	if endMin <= startMin {
		return slotInput{}, "end must be after start"
	}
	return slotInput{Date: date, StartMin: startMin, EndMin: endMin}, ""
}

func (h *AgendaHandler) resolveWindow(ctx context.Context, professionalID string) schedule.Window {
	entries, err := h.hours.WorkHours(ctx, professionalID)
	if err != nil {
		h.logger.Warn("work hours fetch failed; using fallback window", "err", err, "professional_id", professionalID)
		entries = nil
	}
	return schedule.Resolve(entries, h.fallback)
}

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "failed to build response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_, _ = w.Write(body)
}

func (h *AgendaHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req createAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.ProfessionalID = strings.TrimSpace(req.ProfessionalID)
	req.RoomID = strings.TrimSpace(req.RoomID)
	req.PatientID = strings.TrimSpace(req.PatientID)
	if req.ProfessionalID == "" {
		http.Error(w, "professional_id required", http.StatusBadRequest)
		return
	}

	slot, msg := parseSlot(req.Date, req.Start, req.End)
	if msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}

	capacity := 1
	if req.FitIn {
		capacity = 2
	}
	appt := &model.Appointment{
		Date:           slot.Date,
		StartMin:       slot.StartMin,
		EndMin:         slot.EndMin,
		ProfessionalID: req.ProfessionalID,
		RoomID:         req.RoomID,
		PatientID:      req.PatientID,
		Status:         model.StatusScheduled,
		SlotCapacity:   capacity,
	}

	ctx := r.Context()
	window := h.resolveWindow(ctx, req.ProfessionalID)
	if !window.Contains(slot.StartMin, slot.EndMin) {
		http.Error(w, "requested time is outside working hours", http.StatusUnprocessableEntity)
		return
	}

	tx, err := h.repo.Begin(ctx)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	idempotencyKey := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if idempotencyKey != "" {
		rec, exists, err := h.repo.LockIdempotencyKey(ctx, tx, idempotencyKey)
		if err != nil {
			http.Error(w, "failed to lock idempotency key", http.StatusInternalServerError)
			return
		}
		if exists && rec.StatusCode > 0 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(rec.StatusCode)
			if len(rec.ResponsePayload) > 0 {
				_, _ = w.Write(rec.ResponsePayload)
				return
			}
			_ = json.NewEncoder(w).Encode(createAppointmentResponse{AppointmentID: rec.AppointmentID})
			return
		}
	}

	key := appt.Resource()
	if err := h.repo.LockResource(ctx, tx, slot.Date, key); err != nil {
		http.Error(w, "failed to lock agenda resource", http.StatusInternalServerError)
		return
	}
	existing, err := h.repo.ListSchedulables(ctx, tx, slot.Date, key)
	if err != nil {
		http.Error(w, "failed to load agenda", http.StatusInternalServerError)
		return
	}
	decision := conflict.CanPlace(existing, conflict.Item{
		Resource: key,
		StartMin: slot.StartMin,
		EndMin:   slot.EndMin,
		Capacity: capacity,
	}, "")
	if !decision.OK {
		if idempotencyKey != "" {
			if h.finalizeIdempotencyError(ctx, tx, idempotencyKey, http.StatusConflict, decision.Reason) {
				_ = tx.Commit(ctx)
				writeJSON(w, http.StatusConflict, map[string]string{"error": decision.Reason})
				return
			}
		}
		writeJSON(w, http.StatusConflict, map[string]string{"error": decision.Reason})
		return
	}

	id, err := h.repo.Create(ctx, tx, appt)
	if err != nil {
		http.Error(w, "failed to create appointment", http.StatusInternalServerError)
		return
	}

	evtPayload, err := json.Marshal(map[string]any{
		"appointment_id":  id,
		"date":            appt.Date,
		"start":           timeutil.FormatMinutes(appt.StartMin),
		"end":             timeutil.FormatMinutes(appt.EndMin),
		"professional_id": appt.ProfessionalID,
		"room_id":         appt.RoomID,
		"patient_id":      appt.PatientID,
		"fit_in":          capacity == 2,
	})
	if err != nil {
		http.Error(w, "failed to build event payload", http.StatusInternalServerError)
		return
	}
	if err := h.outboxRepo.Insert(ctx, tx, outbox.Event{
		AggregateType: "appointment",
		AggregateID:   id,
		EventType:     outbox.EventAppointmentBooked,
		Payload:       evtPayload,
	}); err != nil {
		http.Error(w, "failed to write outbox event", http.StatusInternalServerError)
		return
	}

	respBody, err := json.Marshal(createAppointmentResponse{AppointmentID: id})
	if err != nil {
		http.Error(w, "failed to build response", http.StatusInternalServerError)
		return
	}
	if idempotencyKey != "" {
		if err := h.repo.FinalizeIdempotency(ctx, tx, idempotencyKey, id, http.StatusCreated, respBody); err != nil {
			http.Error(w, "failed to finalize idempotency key", http.StatusInternalServerError)
			return
		}
	}

	if err := tx.Commit(ctx); err != nil {
		http.Error(w, "failed to commit", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_, _ = w.Write(respBody)
}

// rescheduleCapacity keeps the appointment's stored capacity when the
// request leaves fit_in unset; an explicit value overrides it either way.
func rescheduleCapacity(current int, fitIn *bool) int {
	if fitIn == nil {
		return model.NormalizeSlotCapacity(current)
	}
	if *fitIn {
		return 2
	}
	return 1
}

func (h *AgendaHandler) Reschedule(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req rescheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.AppointmentID = strings.TrimSpace(req.AppointmentID)
	if req.AppointmentID == "" {
		http.Error(w, "appointment_id required", http.StatusBadRequest)
		return
	}
	slot, msg := parseSlot(req.Date, req.Start, req.End)
	if msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}

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

	stage := journey.StageFromStatus(appt.Status)
	if stage == journey.StageFinished || stage == journey.StageCanceled {
		http.Error(w, "appointment can no longer be moved", http.StatusConflict)
		return
	}

	prev := appt
	appt.Date = slot.Date
	appt.StartMin = slot.StartMin
	appt.EndMin = slot.EndMin
	if pid := strings.TrimSpace(req.ProfessionalID); pid != "" {
		appt.ProfessionalID = pid
	}
	if rid := strings.TrimSpace(req.RoomID); rid != "" {
		appt.RoomID = rid
	}
	capacity := rescheduleCapacity(appt.SlotCapacity, req.FitIn)
	appt.SlotCapacity = capacity

	window := h.resolveWindow(ctx, appt.ProfessionalID)
	if !window.Contains(slot.StartMin, slot.EndMin) {
		http.Error(w, "requested time is outside working hours", http.StatusUnprocessableEntity)
		return
	}

	key := appt.Resource()
	if err := h.repo.LockResource(ctx, tx, slot.Date, key); err != nil {
		http.Error(w, "failed to lock agenda resource", http.StatusInternalServerError)
		return
	}
	existing, err := h.repo.ListSchedulables(ctx, tx, slot.Date, key)
	if err != nil {
		http.Error(w, "failed to load agenda", http.StatusInternalServerError)
		return
	}
	decision := conflict.CanPlace(existing, conflict.Item{
		Resource: key,
		StartMin: slot.StartMin,
		EndMin:   slot.EndMin,
		Capacity: capacity,
	}, appt.ID)
	if !decision.OK {
		writeJSON(w, http.StatusConflict, map[string]string{"error": decision.Reason})
		return
	}

	if err := h.repo.UpdateSchedule(ctx, tx, appt); err != nil {
		http.Error(w, "failed to reschedule appointment", http.StatusInternalServerError)
		return
	}

	evtPayload, err := json.Marshal(map[string]any{
		"appointment_id":  appt.ID,
		"date":            appt.Date,
		"start":           timeutil.FormatMinutes(appt.StartMin),
		"end":             timeutil.FormatMinutes(appt.EndMin),
		"professional_id": appt.ProfessionalID,
		"room_id":         appt.RoomID,
		"previous_date":   prev.Date,
		"previous_start":  timeutil.FormatMinutes(prev.StartMin),
		"previous_end":    timeutil.FormatMinutes(prev.EndMin),
	})
	if err != nil {
		http.Error(w, "failed to build event payload", http.StatusInternalServerError)
		return
	}
	if err := h.outboxRepo.Insert(ctx, tx, outbox.Event{
		AggregateType: "appointment",
		AggregateID:   appt.ID,
		EventType:     outbox.EventAppointmentRescheduled,
		Payload:       evtPayload,
	}); err != nil {
		http.Error(w, "failed to write outbox event", http.StatusInternalServerError)
		return
	}

	if err := tx.Commit(ctx); err != nil {
		http.Error(w, "failed to commit", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"appointment_id": appt.ID,
		"date":           appt.Date,
		"start":          timeutil.FormatMinutes(appt.StartMin),
		"end":            timeutil.FormatMinutes(appt.EndMin),
	})
}

func (h *AgendaHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req cancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.AppointmentID = strings.TrimSpace(req.AppointmentID)
	req.Reason = strings.TrimSpace(req.Reason)
	req.CanceledBy = strings.TrimSpace(req.CanceledBy)
	if req.AppointmentID == "" {
		http.Error(w, "appointment_id required", http.StatusBadRequest)
		return
	}

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

	// Re-canceling is a no-op, not an error.
	if journey.StageFromStatus(appt.Status) == journey.StageCanceled && appt.CanceledAt != nil {
		h.writeCancelResponse(w, appt.ID, *appt.CanceledAt)
		return
	}

	now := time.Now().UTC()
	if err := journey.Cancel(&appt, req.Reason, req.CanceledBy, now); err != nil {
		writeTransitionError(w, err)
		return
	}

	if err := h.repo.UpdateJourney(ctx, tx, appt); err != nil {
		http.Error(w, "failed to cancel appointment", http.StatusInternalServerError)
		return
	}
	if err := h.journeyRepo.Upsert(ctx, tx, journey.EntryFor(appt, now)); err != nil {
		http.Error(w, "failed to record journey entry", http.StatusInternalServerError)
		return
	}

	evtPayload, err := json.Marshal(map[string]any{
		"appointment_id":  appt.ID,
		"date":            appt.Date,
		"professional_id": appt.ProfessionalID,
		"patient_id":      appt.PatientID,
		"canceled_at":     now.Format(time.RFC3339),
		"reason":          req.Reason,
		"canceled_by":     req.CanceledBy,
	})
	if err != nil {
		http.Error(w, "failed to build event payload", http.StatusInternalServerError)
		return
	}
	if err := h.outboxRepo.Insert(ctx, tx, outbox.Event{
		AggregateType: "appointment",
		AggregateID:   appt.ID,
		EventType:     outbox.EventAppointmentCanceled,
		Payload:       evtPayload,
	}); err != nil {
		http.Error(w, "failed to write outbox event", http.StatusInternalServerError)
		return
	}

	if err := tx.Commit(ctx); err != nil {
		http.Error(w, "failed to commit", http.StatusInternalServerError)
		return
	}
	h.writeCancelResponse(w, appt.ID, now)
}

func (h *AgendaHandler) writeCancelResponse(w http.ResponseWriter, appointmentID string, canceledAt time.Time) {
	writeJSON(w, http.StatusOK, cancelResponse{
		AppointmentID: appointmentID,
		Status:        string(model.StatusCanceled),
		CanceledAt:    canceledAt.UTC().Format(time.RFC3339),
	})
}

func (h *AgendaHandler) finalizeIdempotencyError(ctx context.Context, tx pgx.Tx, key string, statusCode int, msg string) bool {
	body, err := json.Marshal(map[string]string{"error": msg})
	if err != nil {
		return false
	}
	if err := h.repo.FinalizeIdempotency(ctx, tx, key, "", statusCode, body); err != nil {
		h.logger.Error("failed to finalize idempotency (error)", "err", err)
		return false
	}
	return true
}

func (h *AgendaHandler) CreateBlock(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodDelete {
		h.deleteBlock(w, r)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req createBlockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.ProfessionalID = strings.TrimSpace(req.ProfessionalID)
	req.RoomID = strings.TrimSpace(req.RoomID)
	if req.ProfessionalID == "" {
		http.Error(w, "professional_id required", http.StatusBadRequest)
		return
	}
	slot, msg := parseSlot(req.Date, req.Start, req.End)
	if msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}

	block := &model.Block{
		Date:           slot.Date,
		StartMin:       slot.StartMin,
		EndMin:         slot.EndMin,
		ProfessionalID: req.ProfessionalID,
		RoomID:         req.RoomID,
		Reason:         strings.TrimSpace(req.Reason),
	}

	ctx := r.Context()
	tx, err := h.repo.Begin(ctx)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	key := block.Resource()
	if err := h.repo.LockResource(ctx, tx, slot.Date, key); err != nil {
		http.Error(w, "failed to lock agenda resource", http.StatusInternalServerError)
		return
	}
	existing, err := h.repo.ListSchedulables(ctx, tx, slot.Date, key)
	if err != nil {
		http.Error(w, "failed to load agenda", http.StatusInternalServerError)
		return
	}
	decision := conflict.CanPlace(existing, conflict.Item{
		Resource: key,
		StartMin: slot.StartMin,
		EndMin:   slot.EndMin,
		Capacity: 1,
	}, "")
	if !decision.OK {
		writeJSON(w, http.StatusConflict, map[string]string{"error": decision.Reason})
		return
	}

	id, err := h.repo.CreateBlock(ctx, tx, block)
	if err != nil {
		http.Error(w, "failed to create block", http.StatusInternalServerError)
		return
	}
	if err := tx.Commit(ctx); err != nil {
		http.Error(w, "failed to commit", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, createBlockResponse{BlockID: id})
}

func (h *AgendaHandler) deleteBlock(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		http.Error(w, "id required", http.StatusBadRequest)
		return
	}
	if err := h.repo.DeleteBlock(r.Context(), id); err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "block not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to delete block", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type scheduleResponse struct {
	ProfessionalID string `json:"professional_id"`
	Start          string `json:"start"`
	End            string `json:"end"`
	SlotMinutes    int    `json:"slot_minutes"`
	HasConfig      bool   `json:"has_config"`
	IsValid        bool   `json:"is_valid"`
}

func (h *AgendaHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	professionalID := strings.TrimSpace(r.URL.Query().Get("professional_id"))
	if professionalID == "" {
		http.Error(w, "professional_id required", http.StatusBadRequest)
		return
	}

	window := h.resolveWindow(r.Context(), professionalID)
	writeJSON(w, http.StatusOK, scheduleResponse{
		ProfessionalID: professionalID,
		Start:          window.Start(),
		End:            window.End(),
		SlotMinutes:    window.SlotMinutes,
		HasConfig:      window.HasConfig,
		IsValid:        window.Valid,
	})
}

type agendaItem struct {
	AppointmentID string `json:"appointment_id"`
	PatientID     string `json:"patient_id,omitempty"`
	RoomID        string `json:"room_id,omitempty"`
	Status        string `json:"status"`
	Stage         string `json:"stage"`
	Start         string `json:"start"`
	End           string `json:"end"`
	StartMinute   int    `json:"start_minute"`
	EndMinute     int    `json:"end_minute"`
	FitIn         bool   `json:"fit_in"`
	Lane          int    `json:"lane"`
	Columns       int    `json:"columns"`
	CancelReason  string `json:"cancel_reason,omitempty"`
}

type agendaBlock struct {
	BlockID     string `json:"block_id"`
	RoomID      string `json:"room_id,omitempty"`
	Start       string `json:"start"`
	End         string `json:"end"`
	StartMinute int    `json:"start_minute"`
	EndMinute   int    `json:"end_minute"`
	Reason      string `json:"reason,omitempty"`
	Lane        int    `json:"lane"`
	Columns     int    `json:"columns"`
}

type agendaResponse struct {
	Date           string           `json:"date"`
	ProfessionalID string           `json:"professional_id"`
	Window         scheduleResponse `json:"window"`
	Items          []agendaItem     `json:"items"`
	Blocks         []agendaBlock    `json:"blocks"`
}

// Agenda renders the day view. Live appointments and blocks sharing a
// resource key are laid out side by side; canceled and no-show rows are
// returned greyed out in a single column so the history stays visible.
func (h *AgendaHandler) Agenda(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	date := strings.TrimSpace(r.URL.Query().Get("date"))
	professionalID := strings.TrimSpace(r.URL.Query().Get("professional_id"))
	if !timeutil.ValidDate(date) {
		http.Error(w, "invalid date (expected YYYY-MM-DD)", http.StatusBadRequest)
		return
	}
	if professionalID == "" {
		http.Error(w, "professional_id required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	appts, err := h.repo.ListByDateProfessional(ctx, date, professionalID)
	if err != nil {
		http.Error(w, "failed to load agenda", http.StatusInternalServerError)
		return
	}
	blocks, err := h.repo.ListBlocksByDateProfessional(ctx, date, professionalID)
	if err != nil {
		http.Error(w, "failed to load blocks", http.StatusInternalServerError)
		return
	}

	// Lanes are computed per resource key over everything still occupying
	// time: live appointments plus blocks.
	laneItems := make(map[model.ResourceKey][]lanes.Item)
	for _, a := range appts {
		stage := journey.StageFromStatus(a.Status)
		if stage == journey.StageCanceled || stage == journey.StageNoShow {
			continue
		}
		key := a.Resource()
		laneItems[key] = append(laneItems[key], lanes.Item{ID: a.ID, StartMin: a.StartMin, EndMin: a.EndMin})
	}
	for _, b := range blocks {
		key := b.Resource()
		laneItems[key] = append(laneItems[key], lanes.Item{ID: b.ID, StartMin: b.StartMin, EndMin: b.EndMin})
	}
	placements := make(map[string]lanes.Placement)
	for _, items := range laneItems {
		for id, p := range lanes.Layout(items) {
			placements[id] = p
		}
	}

	now := time.Now().UTC()
	items := make([]agendaItem, 0, len(appts))
	for _, a := range appts {
		stage := journey.StageFromStatus(a.Status)
		placement := lanes.Placement{Lane: 0, Columns: 1}
		if p, ok := placements[a.ID]; ok {
			placement = p
		}
		items = append(items, agendaItem{
			AppointmentID: a.ID,
			PatientID:     a.PatientID,
			RoomID:        a.RoomID,
			Status:        string(a.Status),
			Stage:         string(stage),
			Start:         timeutil.FormatMinutes(a.StartMin),
			End:           timeutil.FormatMinutes(a.EndMin),
			StartMinute:   a.StartMin,
			EndMinute:     a.EndMin,
			FitIn:         model.NormalizeSlotCapacity(a.SlotCapacity) == 2,
			Lane:          placement.Lane,
			Columns:       placement.Columns,
			CancelReason:  a.CancelReason,
		})

		// First time an appointment shows up on the panel it gets its
		// journey row; transitions keep it current afterwards.
		if err := h.journeyRepo.Ensure(ctx, journey.EntryFor(a, now)); err != nil {
			h.logger.Warn("journey ensure failed", "err", err, "appointment_id", a.ID)
		}
	}

	blockItems := make([]agendaBlock, 0, len(blocks))
	for _, b := range blocks {
		placement := lanes.Placement{Lane: 0, Columns: 1}
		if p, ok := placements[b.ID]; ok {
			placement = p
		}
		blockItems = append(blockItems, agendaBlock{
			BlockID:     b.ID,
			RoomID:      b.RoomID,
			Start:       timeutil.FormatMinutes(b.StartMin),
			End:         timeutil.FormatMinutes(b.EndMin),
			StartMinute: b.StartMin,
			EndMinute:   b.EndMin,
			Reason:      b.Reason,
			Lane:        placement.Lane,
			Columns:     placement.Columns,
		})
	}

	window := h.resolveWindow(ctx, professionalID)
	writeJSON(w, http.StatusOK, agendaResponse{
		Date:           date,
		ProfessionalID: professionalID,
		Window: scheduleResponse{
			ProfessionalID: professionalID,
			Start:          window.Start(),
			End:            window.End(),
			SlotMinutes:    window.SlotMinutes,
			HasConfig:      window.HasConfig,
			IsValid:        window.Valid,
		},
		Items:  items,
		Blocks: blockItems,
	})
}
