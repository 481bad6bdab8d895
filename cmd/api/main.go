package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/travel-approval/internal/api/http"
	"github.com/spec-kit/travel-approval/internal/api/http/handlers"
	"github.com/spec-kit/travel-approval/internal/auth"
	"github.com/spec-kit/travel-approval/internal/config"
	"github.com/spec-kit/travel-approval/internal/events"
	"github.com/spec-kit/travel-approval/internal/mailer"
	"github.com/spec-kit/travel-approval/internal/observability"
	"github.com/spec-kit/travel-approval/internal/persistence"
	"github.com/spec-kit/travel-approval/internal/queue"
	"github.com/spec-kit/travel-approval/internal/repository"
	"github.com/spec-kit/travel-approval/internal/service"
	"github.com/spec-kit/travel-approval/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	requestRepo := repository.NewTravelRequestRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()

	var jobs queue.Queue
	if redis.Client != nil {
		jobs = queue.NewRedisQueue(redis.Client, cfg.Notification.QueueName)
	} else {
		jobs = queue.NewMemoryQueue(0)
	}

	authService := service.NewAuthService(*cfg, userRepo, dispatcher)
	travelService := service.NewTravelRequestService(requestRepo, dispatcher)
	notificationService := service.NewNotificationService(dispatcher, jobs, logger, cfg.Notification)
	notificationService.RegisterHandlers()

	var mail mailer.Mailer
	if cfg.Notification.SMTPHost != "" {
		mail = mailer.NewSMTPMailer(cfg.Notification)
	} else {
		mail = mailer.NewLogMailer(logger)
	}
	if cfg.Notification.WorkerEnabled {
		notificationWorker := worker.NewNotificationWorker(jobs, mail, logger)
		go notificationWorker.Run(ctx)
	}

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)

	app := fiber.New()
	metrics := observability.NewMetrics()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	healthHandler := handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis)
	usersHandler := handlers.NewUsersHandler(authService)
	travelHandler := handlers.NewTravelRequestsHandler(travelService)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         healthHandler,
		Users:          usersHandler,
		TravelRequests: travelHandler,
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
