//go:build protogen

package grpcserver

import (
	"context"
	"time"

	agendav1 "github.com/paaulosilvaassis/loveodonto-sub003/protos/gen/agenda/v1"
	"github.com/paaulosilvaassis/loveodonto-sub003/services/agenda-service/internal/schedule"
	"github.com/paaulosilvaassis/loveodonto-sub003/services/agenda-service/internal/storage"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/timestamppb"
)

type server struct {
	agendav1.UnimplementedAgendaServiceServer
	hoursRepo *storage.WorkHoursRepository
	fallback  schedule.Fallback
}

// Register exposes the resolved agenda window to other services (the patient
// portal uses it to render bookable ranges without calling the HTTP API).
func Register(grpcServer *grpc.Server, hoursRepo *storage.WorkHoursRepository, fallback schedule.Fallback) {
	agendav1.RegisterAgendaServiceServer(grpcServer, &server{hoursRepo: hoursRepo, fallback: fallback})
}

func (s *server) GetScheduleWindow(ctx context.Context, req *agendav1.ScheduleWindowRequest) (*agendav1.ScheduleWindowResponse, error) {
	entries, err := s.hoursRepo.ListByProfessional(ctx, req.GetProfessionalId())
	if err != nil {
		entries = nil
	}
	window := schedule.Resolve(entries, s.fallback)
	return &agendav1.ScheduleWindowResponse{
		ProfessionalId: req.GetProfessionalId(),
		Start:          window.Start(),
		End:            window.End(),
		SlotMinutes:    int32(window.SlotMinutes),
		HasConfig:      window.HasConfig,
		IsValid:        window.Valid,
		ResolvedAt:     timestamppb.New(time.Now().UTC()),
	}, nil
}
