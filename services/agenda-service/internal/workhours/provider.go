package workhours

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/paaulosilvaassis/loveodonto-sub003/services/agenda-service/internal/model"
	"github.com/paaulosilvaassis/loveodonto-sub003/services/agenda-service/internal/storage"
)

// Provider returns the configured weekly hours for a professional. The
// default implementation reads the local cache kept fresh by the
// admin.workhours.updated.v1 consumer; a gRPC-backed one can query the
// admin service directly.
type Provider interface {
	WorkHours(ctx context.Context, professionalID string) ([]model.WorkHourEntry, error)
}

type storeProvider struct {
	repo *storage.WorkHoursRepository
}

func NewStoreProvider(repo *storage.WorkHoursRepository) Provider {
	return &storeProvider{repo: repo}
}

func (p *storeProvider) WorkHours(ctx context.Context, professionalID string) ([]model.WorkHourEntry, error) {
	return p.repo.ListByProfessional(ctx, professionalID)
}

// UpdateEvent is the payload of admin.workhours.updated.v1.
type UpdateEvent struct {
	ProfessionalID string `json:"professional_id"`
	Weekday        int    `json:"weekday"`
	Active         bool   `json:"active"`
	Start          string `json:"start"`
	End            string `json:"end"`
	BreakStart     string `json:"break_start"`
	BreakEnd       string `json:"break_end"`
	SlotMinutes    int    `json:"slot_minutes"`
}

// ParseUpdateEvent validates the identifying fields only. Time strings stay
// raw: the resolver tolerates malformed values, dropping the event would not.
func ParseUpdateEvent(payload []byte) (UpdateEvent, error) {
	var evt UpdateEvent
	if err := json.Unmarshal(payload, &evt); err != nil {
		return UpdateEvent{}, fmt.Errorf("invalid work-hours payload: %w", err)
	}
	evt.ProfessionalID = strings.TrimSpace(evt.ProfessionalID)
	if evt.ProfessionalID == "" {
		return UpdateEvent{}, fmt.Errorf("work-hours event missing professional_id")
	}
	if evt.Weekday < 0 || evt.Weekday > 6 {
		return UpdateEvent{}, fmt.Errorf("work-hours event weekday %d out of range", evt.Weekday)
	}
	return evt, nil
}

func (e UpdateEvent) Entry() model.WorkHourEntry {
	return model.WorkHourEntry{
		ProfessionalID: e.ProfessionalID,
		Weekday:        e.Weekday,
		Active:         e.Active,
		Start:          e.Start,
		End:            e.End,
		BreakStart:     e.BreakStart,
		BreakEnd:       e.BreakEnd,
		SlotMinutes:    e.SlotMinutes,
	}
}
