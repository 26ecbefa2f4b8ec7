package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"biliticket/admission/internal/clock"
	"biliticket/admission/internal/config"
	"biliticket/admission/internal/directory"
	"biliticket/admission/internal/handler"
	"biliticket/admission/internal/metrics"
	"biliticket/admission/internal/model"
	"biliticket/admission/internal/repository"
	"biliticket/admission/internal/service"
	jwtpkg "biliticket/admission/pkg/jwt"
)

type repositories struct {
	teams    repository.TeamRepository
	bookings repository.BookingRepository
	tickets  repository.TicketRepository
}

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	// 1. Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// 2. Initialize logger
	var logger *zap.Logger
	if cfg.Log.Format == "json" {
		logger, _ = zap.NewProduction()
	} else {
		logger, _ = zap.NewDevelopment()
	}
	defer logger.Sync()

	// 3. Storage backend
	var repos repositories
	switch cfg.Storage.Backend {
	case "postgres":
		db, err := config.NewPostgresDB(cfg.Database.Postgres)
		if err != nil {
			logger.Fatal("failed to connect to postgres", zap.Error(err))
		}
		if cfg.Database.Postgres.AutoMigrate {
			if err := model.AutoMigrate(db); err != nil {
				logger.Fatal("failed to auto-migrate", zap.Error(err))
			}
			logger.Info("database migration completed")
		}
		repos = repositories{
			teams:    repository.NewPGTeamRepository(db),
			bookings: repository.NewPGBookingRepository(db),
			tickets:  repository.NewPGTicketRepository(db),
		}
		logger.Info("using postgres storage")
	case "memory":
		repos = repositories{
			teams:    repository.NewMemoryTeamRepository(),
			bookings: repository.NewMemoryBookingRepository(),
			tickets:  repository.NewMemoryTicketRepository(),
		}
		logger.Warn("using in-memory storage, data is lost on restart")
	default:
		logger.Fatal("unknown storage backend", zap.String("backend", cfg.Storage.Backend))
	}

	// 4. Attempt counters (Redis or in-memory)
	var attempts repository.AttemptStore
	switch cfg.State.Backend {
	case "redis":
		redisClient, err := config.NewRedisClient(cfg.Database.Redis)
		if err != nil {
			logger.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer redisClient.Close()
		attempts = repository.NewRedisAttemptStore(redisClient)
		logger.Info("using redis attempt store")
	case "memory":
		attempts = repository.NewMemoryAttemptStore()
		logger.Info("using in-memory attempt store")
	default:
		logger.Fatal("unknown state backend", zap.String("backend", cfg.State.Backend))
	}

	// 5. Directory, clock, metrics
	events := directory.NewStaticEventCatalog(cfg.Events, cfg.Teams)
	users := directory.NewStaticUserDirectory(cfg.Users)
	clk := clock.NewSystem()
	m := metrics.New()

	// 6. Services
	joinLimiter := service.NewRateLimiter(attempts, "join",
		cfg.RateLimit.JoinAttempts, cfg.RateLimit.JoinWindow, logger)
	verifyLimiter := service.NewRateLimiter(attempts, "verify",
		cfg.RateLimit.VerifyAttempts, cfg.RateLimit.VerifyWindow, logger)

	teamService := service.NewTeamService(repos.teams, events, clk, logger,
		service.WithJoinLimiter(joinLimiter))
	bookingService := service.NewBookingService(repos.bookings, teamService, events, clk, logger)
	ticketService := service.NewTicketService(repos.tickets, bookingService, clk, logger)
	entryService := service.NewEntryService(repos.tickets, bookingService, teamService, events, users, clk, logger,
		service.WithVerifyLimiter(verifyLimiter),
		service.WithVerificationRecorder(m))

	// 7. Router
	jwtManager := jwtpkg.NewManager(cfg.JWT.SigningKey, cfg.JWT.Issuer, cfg.JWT.TokenTTL)
	router := handler.SetupRouter(cfg, logger, jwtManager, m, handler.Handlers{
		Team:    handler.NewTeamHandler(teamService, logger),
		Booking: handler.NewBookingHandler(bookingService, ticketService, logger),
		Entry:   handler.NewEntryHandler(entryService, logger),
	})

	// 8. Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("server starting", zap.String("addr", addr), zap.Int("events", len(cfg.Events)))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	// 9. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}
	logger.Info("server exited gracefully")
}
