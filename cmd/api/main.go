package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spec-kit/support-intel/internal/analyzer"
	httptransport "github.com/spec-kit/support-intel/internal/api/http"
	"github.com/spec-kit/support-intel/internal/api/http/handlers"
	"github.com/spec-kit/support-intel/internal/auth"
	"github.com/spec-kit/support-intel/internal/chat"
	"github.com/spec-kit/support-intel/internal/config"
	"github.com/spec-kit/support-intel/internal/events"
	"github.com/spec-kit/support-intel/internal/inbox"
	"github.com/spec-kit/support-intel/internal/observability"
	"github.com/spec-kit/support-intel/internal/persistence"
	"github.com/spec-kit/support-intel/internal/service"
	"github.com/spec-kit/support-intel/internal/storage"
	"github.com/spec-kit/support-intel/internal/worker"
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

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	pool := pg.PoolHandle()
	smartStore := storage.NewSmartStore(
		storage.NewPostgresStore(pool),
		storage.NewRedisStore(redis.Client),
		logger,
	)

	ticketService := service.NewTicketService(service.TicketDependencies{
		Store:      smartStore,
		Analyzer:   analyzer.NewClient(cfg.Analyzer, logger),
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
	})
	if err := ticketService.Bootstrap(ctx); err != nil {
		logger.Fatal("failed to load ticket state", zap.Error(err))
	}

	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	inboxService := inbox.NewService(inbox.Dependencies{
		Client:   inbox.NewClient(cfg.Inbox, logger),
		Repo:     inbox.NewRepository(pool),
		State:    inbox.NewState(redis.Client, cfg.Inbox.SeenIDCapacity),
		Tickets:  ticketService,
		Metrics:  metrics,
		Logger:   logger,
		FetchMax: cfg.Inbox.FetchMax,
	})
	chatService := chat.NewService(chat.NewRepository(pool), ticketService, logger)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Session:        handlers.NewSessionHandler(cfg.Auth, tokens),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Inbox:          handlers.NewInboxHandler(inboxService),
		Chat:           handlers.NewChatHandler(chatService),
		AuthMiddleware: auth.NewMiddleware(tokens),
	})

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return app.Listen(cfg.App.Addr())
	})

	if cfg.Inbox.Enabled && cfg.Inbox.WebAppURL != "" {
		poller := inbox.NewPoller(inboxService, cfg.Inbox.PollInterval(), logger)
		group.Go(func() error {
			return poller.Run(groupCtx)
		})
	}

	group.Go(func() error {
		waitForShutdown(logger)
		cancel()
		return app.Shutdown()
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("service exited with error", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
