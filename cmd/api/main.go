package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/request-workflow/internal/api/http"
	"github.com/spec-kit/request-workflow/internal/api/http/handlers"
	"github.com/spec-kit/request-workflow/internal/cache"
	"github.com/spec-kit/request-workflow/internal/config"
	"github.com/spec-kit/request-workflow/internal/directory"
	"github.com/spec-kit/request-workflow/internal/domain"
	"github.com/spec-kit/request-workflow/internal/events"
	"github.com/spec-kit/request-workflow/internal/observability"
	"github.com/spec-kit/request-workflow/internal/persistence"
	"github.com/spec-kit/request-workflow/internal/policy"
	"github.com/spec-kit/request-workflow/internal/repository"
	"github.com/spec-kit/request-workflow/internal/service"
	"github.com/spec-kit/request-workflow/internal/worker"
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

	pool := pg.PoolHandle()
	if pool != nil && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pool, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	policies, err := policy.LoadFile(cfg.Workflow.PolicyFile)
	if err != nil {
		logger.Fatal("failed to load category policies", zap.Error(err))
	}

	var (
		ticketRepo       repository.TicketRepository
		historyRepo      repository.HistoryRepository
		conversationRepo repository.ConversationRepository
		auditRepo        repository.AuditRepository
	)
	if pool != nil {
		ticketRepo = repository.NewTicketRepository(pool)
		historyRepo = repository.NewHistoryRepository(pool)
		conversationRepo = repository.NewConversationRepository(pool)
		auditRepo = repository.NewAuditRepository(pool)
	} else {
		store := repository.NewMemoryStore()
		ticketRepo = store.Tickets()
		historyRepo = store.History()
		conversationRepo = store.Conversations()
		auditRepo = store.Audit()
	}

	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()

	core := service.NewCore(service.CoreDependencies{
		TicketRepo:  ticketRepo,
		HistoryRepo: historyRepo,
		Dispatcher:  dispatcher,
		Policies:    policies,
	})

	listCache := cache.NewRedisListCache(redis.Client, cfg.Workflow.ListCacheTTL(), logger)
	intakeService := service.NewIntakeService(service.IntakeDependencies{
		Core:             core,
		ConversationRepo: conversationRepo,
		ListCache:        listCache,
		DefaultSLA: domain.SLABudget{
			ApprovalHours:   cfg.Workflow.DefaultApprovalHours,
			ProcessingHours: cfg.Workflow.DefaultProcessingHours,
		},
	})
	approvalService := service.NewApprovalService(core)
	routingService := service.NewRoutingService(core)
	assignmentService := service.NewAssignmentService(core)
	progressService := service.NewProgressService(core)
	closureService := service.NewClosureService(core)

	staticDirectory := directory.NewStaticDirectory()
	notificationService := service.NewNotificationService(dispatcher, staticDirectory, logger, cfg.Notification)
	auditService := service.NewAuditService(dispatcher, auditRepo, logger)

	worker.StartNotificationWorker(notificationService)
	worker.StartAuditWorker(auditService)

	sweeper := worker.NewSLASweeper(worker.SLASweeperDependencies{
		TicketRepo: ticketRepo,
		Closures:   closureService,
		Logger:     logger,
		Interval:   cfg.Workflow.SweepInterval(),
	})
	go sweeper.Run(ctx)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	healthHandler := handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis)
	ticketsHandler := handlers.NewTicketsHandler(intakeService)
	workflowHandler := handlers.NewWorkflowHandler(handlers.WorkflowHandlerDependencies{
		Approvals:   approvalService,
		Routing:     routingService,
		Assignments: assignmentService,
		Progress:    progressService,
		Closures:    closureService,
		Metrics:     metrics,
	})

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:   healthHandler,
		Tickets:  ticketsHandler,
		Workflow: workflowHandler,
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
