//go:build protogen

package main

import (
	"context"
	"log/slog"
	"net"

	"github.com/paaulosilvaassis/loveodonto-sub003/libs/config"
	"github.com/paaulosilvaassis/loveodonto-sub003/libs/grpcx"
	"github.com/paaulosilvaassis/loveodonto-sub003/services/agenda-service/internal/grpcserver"
	"github.com/paaulosilvaassis/loveodonto-sub003/services/agenda-service/internal/schedule"
	"github.com/paaulosilvaassis/loveodonto-sub003/services/agenda-service/internal/storage"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
)

func startGrpcServer(ctx context.Context, logger *slog.Logger, hoursRepo *storage.WorkHoursRepository, fallback schedule.Fallback) error {
	port, err := config.Port("GRPC_PORT", "9094")
	if err != nil {
		return err
	}
	lis, err := net.Listen("tcp", ":"+port)
	if err != nil {
		return err
	}

	srv := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(grpcx.UnaryServerRequestIDInterceptor()),
	)
	grpcserver.Register(srv, hoursRepo, fallback)

	go func() {
		logger.Info("grpc server starting", "addr", lis.Addr().String())
		if err := srv.Serve(lis); err != nil {
			logger.Error("grpc server error", "err", err)
		}
	}()

	go func() {
		<-ctx.Done()
		srv.GracefulStop()
	}()

	return nil
}
