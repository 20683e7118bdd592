package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/support-console/internal/api/http"
	"github.com/spec-kit/support-console/internal/api/http/handlers"
	"github.com/spec-kit/support-console/internal/auth"
	"github.com/spec-kit/support-console/internal/cache"
	"github.com/spec-kit/support-console/internal/config"
	"github.com/spec-kit/support-console/internal/events"
	"github.com/spec-kit/support-console/internal/observability"
	"github.com/spec-kit/support-console/internal/persistence"
	"github.com/spec-kit/support-console/internal/rag"
	"github.com/spec-kit/support-console/internal/repository"
	"github.com/spec-kit/support-console/internal/service"
	"github.com/spec-kit/support-console/internal/storage"
	"github.com/spec-kit/support-console/internal/telegram"
	"github.com/spec-kit/support-console/internal/worker"
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
	operatorRepo := repository.NewOperatorRepository(pool)
	chatRepo := repository.NewChatRepository(pool)
	messageRepo := repository.NewMessageRepository(pool)
	noteRepo := repository.NewNoteRepository(pool)
	caseRepo := repository.NewCaseRepository(pool)
	cannedRepo := repository.NewCannedResponseRepository(pool)
	attachmentRepo := repository.NewAttachmentRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()

	fileStore, err := storage.NewStore(cfg.Uploads.Dir, logger)
	if err != nil {
		logger.Fatal("failed to init upload storage", zap.Error(err))
	}

	userService := service.NewUserService(userRepo)
	chatService := service.NewChatService(service.ChatDependencies{
		ChatRepo:     chatRepo,
		OperatorRepo: operatorRepo,
		MessageRepo:  messageRepo,
		UserRepo:     userRepo,
		Dispatcher:   dispatcher,
	})
	messageService := service.NewMessageService(service.MessageDependencies{
		MessageRepo: messageRepo,
		ChatRepo:    chatRepo,
		Dispatcher:  dispatcher,
	})
	authService := service.NewAuthService(*cfg, operatorRepo)
	noteService := service.NewNoteService(noteRepo, chatRepo)
	caseService := service.NewCaseService(caseRepo, chatRepo)
	cannedService := service.NewCannedResponseService(cannedRepo)
	attachmentService := service.NewAttachmentService(attachmentRepo, chatRepo, fileStore)
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	var sender telegram.Sender
	if cfg.Telegram.BotToken == "" {
		logger.Warn("TG_BOT_TOKEN not set, telegram replies disabled")
	} else {
		bot, err := telegram.NewBot(cfg.Telegram, logger)
		if err != nil {
			logger.Fatal("failed to init telegram bot", zap.Error(err))
		}
		if err := bot.RegisterWebhook(cfg.Telegram); err != nil {
			logger.Warn("telegram webhook registration failed", zap.Error(err))
		}
		sender = bot
	}

	ingestionService := telegram.NewService(telegram.Dependencies{
		Sender:   sender,
		Users:    userService,
		Chats:    chatService,
		Messages: messageService,
		RAG:      rag.NewHTTPClient(cfg.RAG),
		Logger:   logger,
	})

	authMiddleware := auth.NewMiddleware(authService.TokenManager(), operatorRepo)
	cacheMiddleware := cache.NewMiddleware(redis.Client, cfg.Cache.TTL(), cfg.Cache.Enabled, logger)

	app := fiber.New(fiber.Config{
		AppName:   cfg.App.Name,
		BodyLimit: cfg.Uploads.MaxSizeMB * 1024 * 1024,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:          handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:            handlers.NewAuthHandler(authService),
		Chats:           handlers.NewChatsHandler(chatService),
		Messages:        handlers.NewMessagesHandler(messageService),
		Notes:           handlers.NewNotesHandler(noteService),
		Cases:           handlers.NewCasesHandler(caseService),
		CannedResponses: handlers.NewCannedResponsesHandler(cannedService),
		Attachments:     handlers.NewAttachmentsHandler(attachmentService, cfg.Uploads.MaxSizeMB),
		Users:           handlers.NewUsersHandler(userService),
		Stats:           handlers.NewStatsHandler(chatService, metrics),
		Telegram:        handlers.NewTelegramHandler(ingestionService, logger),
		AuthMiddleware:  authMiddleware,
		Cache:           cacheMiddleware,
		WebhookPath:     cfg.Telegram.WebhookPath,
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
