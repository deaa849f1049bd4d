package main

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/paaulosilvaassis/loveodonto-sub003/libs/config"
	"github.com/paaulosilvaassis/loveodonto-sub003/libs/db"
	"github.com/paaulosilvaassis/loveodonto-sub003/libs/httpx"
	"github.com/paaulosilvaassis/loveodonto-sub003/libs/kafkax"
	otelx "github.com/paaulosilvaassis/loveodonto-sub003/libs/otel"
	"github.com/paaulosilvaassis/loveodonto-sub003/libs/runtime"
	"github.com/paaulosilvaassis/loveodonto-sub003/services/agenda-service/internal/consumer"
	"github.com/paaulosilvaassis/loveodonto-sub003/services/agenda-service/internal/handlers"
	"github.com/paaulosilvaassis/loveodonto-sub003/services/agenda-service/internal/inbox"
	"github.com/paaulosilvaassis/loveodonto-sub003/services/agenda-service/internal/outbox"
	"github.com/paaulosilvaassis/loveodonto-sub003/services/agenda-service/internal/schedule"
	"github.com/paaulosilvaassis/loveodonto-sub003/services/agenda-service/internal/storage"
	"github.com/paaulosilvaassis/loveodonto-sub003/services/agenda-service/internal/workhours"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	service := config.String("SERVICE_NAME", "agenda-service")
	port, err := config.Port("PORT", "8084")
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(service)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	dbURL, err := config.RequiredString("DATABASE_URL")
	if err != nil {
		panic(err)
	}
	pool, err := db.Connect(ctx, dbURL)
	if err != nil {
		logger.Error("db connection failed", "err", err)
		panic(err)
	}
	defer pool.Close()

	repo := storage.NewAppointmentRepository(pool)
	journeyRepo := storage.NewJourneyRepository(pool)
	hoursRepo := storage.NewWorkHoursRepository(pool)
	outboxRepo := outbox.NewRepository(pool)
	inboxRepo := inbox.NewRepository(pool)

	fallback := schedule.Fallback{
		Start:       config.String("AGENDA_FALLBACK_START", "08:00"),
		End:         config.String("AGENDA_FALLBACK_END", "18:00"),
		SlotMinutes: config.Int("AGENDA_SLOT_MINUTES", 30),
	}
	hoursProvider, err := workhours.NewAdminProvider(logger, hoursRepo, config.String("ADMIN_GRPC_ADDR", ""))
	if err != nil {
		logger.Error("work hours provider init failed; using local cache", "err", err)
		hoursProvider = workhours.NewStoreProvider(hoursRepo)
	}

	outboxPublisher := outbox.NewPublisher(pool, outboxRepo, logger, outbox.PublisherConfig{
		Brokers:   config.String("KAFKA_BROKERS", ""),
		PollEvery: 2 * time.Second,
		BatchSize: 50,
	})
	go outboxPublisher.Run(ctx)

	// Keep the local work-hours cache in sync with the admin console.
	workHoursTopic := config.String("KAFKA_CONSUME_TOPIC", "admin.workhours.updated.v1")
	if strings.TrimSpace(workHoursTopic) != "" {
		consumerCfg := consumer.Config{
			Brokers: config.String("KAFKA_BROKERS", ""),
			GroupID: config.String("KAFKA_GROUP_ID", "agenda-service"),
			Topic:   workHoursTopic,
		}
		eventConsumer := consumer.New(logger, inboxRepo, consumerCfg, func(ctx context.Context, msg kafka.Message) error {
			evt, err := workhours.ParseUpdateEvent(msg.Value)
			if err != nil {
				logger.Error("invalid event payload", "err", err, "topic", msg.Topic)
				return nil
			}
			return hoursRepo.Upsert(ctx, evt.Entry())
		})
		go eventConsumer.Run(ctx)
	}

	if err := startGrpcServer(ctx, logger, hoursRepo, fallback); err != nil {
		logger.Error("grpc server init failed", "err", err)
	}

	agendaHandler := handlers.NewAgendaHandler(repo, journeyRepo, outboxRepo, logger, hoursProvider, fallback)
	journeyHandler := handlers.NewJourneyHandler(repo, journeyRepo, outboxRepo, logger)

	mux := runtime.NewBaseMuxWithReady(
		runtime.ReadyCheck{Name: "db", Check: pool.ReadyCheck()},
		runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(config.String("KAFKA_BROKERS", ""))},
	)
	mux.HandleFunc("/api/v1/appointments", agendaHandler.Create)
	mux.HandleFunc("/api/v1/appointments/reschedule", agendaHandler.Reschedule)
	mux.HandleFunc("/api/v1/appointments/cancel", agendaHandler.Cancel)
	mux.HandleFunc("/api/v1/agenda", agendaHandler.Agenda)
	mux.HandleFunc("/api/v1/blocks", agendaHandler.CreateBlock)
	mux.HandleFunc("/api/v1/schedule", agendaHandler.Schedule)
	mux.HandleFunc("/api/v1/journey", journeyHandler.List)
	mux.HandleFunc("/api/v1/journey/check-in", journeyHandler.CheckIn)
	mux.HandleFunc("/api/v1/journey/send-to-room", journeyHandler.SendToRoom)
	mux.HandleFunc("/api/v1/journey/finish", journeyHandler.Finish)
	mux.HandleFunc("/api/v1/journey/return-to-waiting", journeyHandler.ReturnToWaiting)
	mux.HandleFunc("/api/v1/journey/no-show", journeyHandler.NoShow)

	rateLimit := rateLimitMiddleware(ctx, logger)
	httpHandler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithCORS(httpx.CORSPolicy{
			AllowedOrigins: splitList(config.String("CORS_ALLOWED_ORIGINS", "")),
			AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type", "Idempotency-Key", httpx.RequestIDHeader},
			MaxAge:         10 * time.Minute,
		}),
		rateLimit,
		httpx.WithBodyLimit(1<<20),
		httpx.WithTimeout(15*time.Second),
	)
	httpHandler = otelhttp.NewHandler(httpHandler, "agenda")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           httpHandler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	logger.Info("http server stopped")
}

func splitList(raw string) []string {
	var out []string
	for _, v := range strings.Split(raw, ",") {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// rateLimitMiddleware prefers the shared Redis limiter so multiple instances
// enforce one budget; without REDIS_ADDR it degrades to a per-instance
// in-memory window.
func rateLimitMiddleware(ctx context.Context, logger *slog.Logger) httpx.Middleware {
	limit := config.Int("RATE_LIMIT_PER_MINUTE", 120)
	addr := strings.TrimSpace(config.String("REDIS_ADDR", ""))
	if addr == "" {
		return httpx.NewRateLimiter(limit, time.Minute).Middleware()
	}

	rdb := redis.NewClient(&redis.Options{Addr: addr})
	go func() {
		<-ctx.Done()
		_ = rdb.Close()
	}()
	limiter := httpx.NewRedisRateLimiter(rdb, limit, time.Minute, "agenda")
	return limiter.Middleware(logger, config.Bool("RATE_LIMIT_FAIL_OPEN", true))
}
