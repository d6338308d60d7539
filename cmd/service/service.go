package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	configs "classroom_service/config"
	"classroom_service/internal/auth"
	"classroom_service/internal/cache"
	"classroom_service/internal/gate"
	"classroom_service/internal/middleware"
	"classroom_service/internal/repository"
	"classroom_service/internal/server/httpapi"
	"classroom_service/internal/service"
	"classroom_service/pkg/db"
	"classroom_service/pkg/kafka"
	"classroom_service/pkg/logger"
	"classroom_service/pkg/logging"

	_ "github.com/lib/pq"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := logger.New()
	defer func() { _ = log.Sync() }()

	cfg, err := configs.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	dbConfig := db.Config{
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		DBName:   cfg.DB.DBName,
		SSLMode:  cfg.DB.SSLMode,
	}

	pg, err := db.NewPostgres(dbConfig)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pg.Close()

	redisConn := redis.NewClient(&redis.Options{
		Addr: cfg.Redis.Address,
	})
	sessionCache := cache.NewRedisCache(redisConn)
	authenticator := auth.NewSessionAuthenticator(sessionCache)

	kafkaProducer, err := kafka.NewProducer(kafka.Config{Brokers: cfg.Kafka.Brokers})
	if err != nil {
		log.Fatalf("Failed to create Kafka producer: %v", err)
	}
	defer kafkaProducer.Close()

	assignmentRepo := repository.NewAssignmentRepository(pg.DB())
	submissionRepo := repository.NewSubmissionRepository(pg.DB())

	assignmentService := service.NewAssignmentService(assignmentRepo)
	submissionService := service.NewSubmissionService(
		submissionRepo,
		assignmentRepo,
		kafkaProducer,
	)

	accessGate := gate.New(cfg.Auth.SignInURL, cfg.Auth.ForbiddenURL)
	handler := httpapi.NewHandler(assignmentService, submissionService)

	ctxLogger := logging.New(log.ZapLogger)

	r := chi.NewRouter()
	r.Use(middleware.NewLoggingMiddleware(ctxLogger))
	r.Use(func(next http.Handler) http.Handler {
		return http.MaxBytesHandler(next, cfg.HTTP.MaxBodyBytes)
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	handler.RegisterRoutes(r, accessGate, authenticator)

	worker := NewReminderWorker(assignmentRepo, kafkaProducer, log, cfg.Worker.Interval, cfg.Worker.DueSoonWindow)
	go worker.Start(ctx)

	srv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: r,
	}

	go func() {
		log.Info("Starting HTTP server", zap.String("address", cfg.HTTP.Address))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to serve: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Info("Server stopped")
}
