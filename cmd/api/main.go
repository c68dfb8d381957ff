package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/chat-ticketing/internal/api/http"
	"github.com/spec-kit/chat-ticketing/internal/api/http/handlers"
	"github.com/spec-kit/chat-ticketing/internal/auth"
	"github.com/spec-kit/chat-ticketing/internal/cache"
	"github.com/spec-kit/chat-ticketing/internal/config"
	"github.com/spec-kit/chat-ticketing/internal/events"
	"github.com/spec-kit/chat-ticketing/internal/observability"
	"github.com/spec-kit/chat-ticketing/internal/persistence"
	"github.com/spec-kit/chat-ticketing/internal/repository"
	"github.com/spec-kit/chat-ticketing/internal/service"
	"github.com/spec-kit/chat-ticketing/internal/worker"
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
	contactRepo := repository.NewContactRepository(pool)
	queueRepo := repository.NewQueueRepository(pool)
	whatsappRepo := repository.NewWhatsappRepository(pool)
	messageRepo := repository.NewMessageRepository(pool)

	unreadCache := cache.NewUnreadCache(redis.Client, cfg.Redis.UnreadTTL())
	dispatcher := events.NewInMemoryDispatcher()

	authService := service.NewAuthService(*cfg, userRepo)
	queryService := service.NewTicketQueryService(userRepo, ticketRepo, unreadCache)
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:   ticketRepo,
		ContactRepo:  contactRepo,
		QueueRepo:    queueRepo,
		WhatsappRepo: whatsappRepo,
		MessageRepo:  messageRepo,
		UnreadCache:  unreadCache,
		Dispatcher:   dispatcher,
	})
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)
	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Users:          handlers.NewUsersHandler(authService),
		Tickets:        handlers.NewTicketsHandler(queryService, ticketService),
		Queues:         handlers.NewQueuesHandler(queueRepo),
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
