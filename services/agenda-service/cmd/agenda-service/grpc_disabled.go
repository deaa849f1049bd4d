//go:build !protogen

package main

import (
	"context"
	"log/slog"

	"github.com/paaulosilvaassis/loveodonto-sub003/services/agenda-service/internal/schedule"
	"github.com/paaulosilvaassis/loveodonto-sub003/services/agenda-service/internal/storage"
)

func startGrpcServer(_ context.Context, _ *slog.Logger, _ *storage.WorkHoursRepository, _ schedule.Fallback) error {
	return nil
}
