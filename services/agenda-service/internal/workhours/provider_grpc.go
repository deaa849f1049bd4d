//go:build protogen

package workhours

import (
	"context"
	"log/slog"
	"time"

	"github.com/paaulosilvaassis/loveodonto-sub003/libs/grpcx"
	adminv1 "github.com/paaulosilvaassis/loveodonto-sub003/protos/gen/admin/v1"
	"github.com/paaulosilvaassis/loveodonto-sub003/services/agenda-service/internal/model"
	"github.com/paaulosilvaassis/loveodonto-sub003/services/agenda-service/internal/storage"
)

type grpcProvider struct {
	client   adminv1.AdminServiceClient
	fallback Provider
	logger   *slog.Logger
}

// NewAdminProvider queries the admin service for working hours, falling back
// to the local cache when the call fails or no address is configured.
func NewAdminProvider(logger *slog.Logger, repo *storage.WorkHoursRepository, addr string) (Provider, error) {
	fallback := NewStoreProvider(repo)
	if addr == "" {
		return fallback, nil
	}
	conn, err := grpcx.Dial(context.Background(), addr, 3*time.Second)
	if err != nil {
		return nil, err
	}
	return &grpcProvider{
		client:   adminv1.NewAdminServiceClient(conn),
		fallback: fallback,
		logger:   logger,
	}, nil
}

func (p *grpcProvider) WorkHours(ctx context.Context, professionalID string) ([]model.WorkHourEntry, error) {
	resp, err := p.client.GetWorkHours(ctx, &adminv1.WorkHoursRequest{
		ProfessionalId: professionalID,
	})
	if err != nil {
		p.logger.Warn("admin work-hours fetch failed; using local cache", "err", err)
		return p.fallback.WorkHours(ctx, professionalID)
	}

	var entries []model.WorkHourEntry
	for _, e := range resp.GetEntries() {
		entries = append(entries, model.WorkHourEntry{
			ProfessionalID: professionalID,
			Weekday:        int(e.GetWeekday()),
			Active:         e.GetActive(),
			Start:          e.GetStart(),
			End:            e.GetEnd(),
			BreakStart:     e.GetBreakStart(),
			BreakEnd:       e.GetBreakEnd(),
			SlotMinutes:    int(e.GetSlotMinutes()),
		})
	}
	return entries, nil
}
