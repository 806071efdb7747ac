package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/it-helpdesk/internal/api/http"
	"github.com/spec-kit/it-helpdesk/internal/api/http/handlers"
	"github.com/spec-kit/it-helpdesk/internal/auth"
	"github.com/spec-kit/it-helpdesk/internal/config"
	"github.com/spec-kit/it-helpdesk/internal/events"
	"github.com/spec-kit/it-helpdesk/internal/observability"
	"github.com/spec-kit/it-helpdesk/internal/persistence"
	"github.com/spec-kit/it-helpdesk/internal/repository"
	"github.com/spec-kit/it-helpdesk/internal/service"
	"github.com/spec-kit/it-helpdesk/internal/worker"
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
	ticketRepo := repository.NewTicketRepository(pool)
	commentRepo := repository.NewCommentRepository(pool)
	attachmentRepo := repository.NewAttachmentRepository(pool)
	notificationRepo := repository.NewNotificationRepository(pool)
	departmentRepo := repository.NewDepartmentRepository(pool)
	applicationRepo := repository.NewApplicationRepository(pool)
	materielRepo := repository.NewMaterielRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()

	authService := service.NewAuthService(*cfg, userRepo)
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)

	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:     ticketRepo,
		UserRepo:       userRepo,
		CommentRepo:    commentRepo,
		AttachmentRepo: attachmentRepo,
		Dispatcher:     dispatcher,
	})
	directoryService := service.NewDirectoryService(service.DirectoryDependencies{
		UserRepo:        userRepo,
		DepartmentRepo:  departmentRepo,
		ApplicationRepo: applicationRepo,
		MaterielRepo:    materielRepo,
		Auth:            authService,
	})
	workloadService := service.NewWorkloadService(ticketRepo, userRepo)
	reportingService := service.NewReportingService(service.ReportingDependencies{
		TicketRepo:      ticketRepo,
		UserRepo:        userRepo,
		DepartmentRepo:  departmentRepo,
		ApplicationRepo: applicationRepo,
		MaterielRepo:    materielRepo,
	})
	notificationService := service.NewNotificationService(notificationRepo, dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Tickets:        handlers.NewTicketHandler(ticketService, directoryService),
		Technician:     handlers.NewTechnicianHandler(ticketService),
		Admin:          handlers.NewAdminHandler(ticketService, directoryService, workloadService),
		Reporting:      handlers.NewReportingHandler(reportingService),
		Notifications:  handlers.NewNotificationHandler(notificationService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
