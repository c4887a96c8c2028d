package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	httpAdapter "github.com/propfolio/backoffice/internal/adapter/http"
	"github.com/propfolio/backoffice/internal/adapter/http/handler"
	"github.com/propfolio/backoffice/internal/adapter/queue"
	postgresRepo "github.com/propfolio/backoffice/internal/adapter/repository/postgres"
	redisRepo "github.com/propfolio/backoffice/internal/adapter/repository/redis"
	"github.com/propfolio/backoffice/internal/infrastructure/auth"
	"github.com/propfolio/backoffice/internal/infrastructure/config"
	"github.com/propfolio/backoffice/internal/infrastructure/eventpublisher"
	"github.com/propfolio/backoffice/internal/infrastructure/logger"
	"github.com/propfolio/backoffice/internal/infrastructure/oracle"
	"github.com/propfolio/backoffice/internal/infrastructure/postgres"
	"github.com/propfolio/backoffice/internal/infrastructure/redis"
	"github.com/propfolio/backoffice/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	log.Logger = appLogger

	ctx := context.Background()

	// Run migrations
	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Connect to PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	// Gemini serves both fuzzy matching and document extraction
	gemini, err := oracle.NewGemini(ctx, cfg.GeminiModel, appLogger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create gemini client")
	}

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	statementRepo := postgresRepo.NewStatementRepository(pool)
	propertyRepo := postgresRepo.NewPropertyRepository(pool)
	lineItemRepo := postgresRepo.NewLineItemRepository(pool)
	outboxRepo := postgresRepo.NewOutboxRepository(pool)
	jobStore := redisRepo.NewJobStateStore(redisClient, cfg.JobStateTTL)
	importQueue := queue.NewRedisQueue(redisClient)
	idGen := postgresRepo.NewULIDGenerator()

	// Initialize use cases
	matcher := usecase.NewPropertyMatcher(gemini, appLogger)
	totalsUC := usecase.NewTotalsUseCase(txManager, statementRepo, lineItemRepo, appLogger)
	statementUC := usecase.NewStatementUseCase(statementRepo, lineItemRepo)
	importUC := usecase.NewImportUseCase(usecase.ImportUseCaseConfig{
		TxManager:     txManager,
		StatementRepo: statementRepo,
		PropertyRepo:  propertyRepo,
		LineItemRepo:  lineItemRepo,
		Parser:        gemini,
		Matcher:       matcher,
		Totals:        totalsUC,
		OutboxRepo:    outboxRepo,
		Queue:         importQueue,
		JobStore:      jobStore,
		IDGen:         idGen,
		Logger:        appLogger,
	})

	// Initialize handlers
	importHandler := handler.NewImportHandler(importUC)
	statementHandler := handler.NewStatementHandler(statementUC, totalsUC)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		ImportHandler:    importHandler,
		StatementHandler: statementHandler,
		HealthHandler:    healthHandler,
		JWTManager:       auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration),
		InternalToken:    cfg.InternalToken,
		Logger:           appLogger,
	})

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	// Start dispatcher and event publisher in goroutines
	dispatchCtx, stopDispatcher := context.WithCancel(ctx)
	defer stopDispatcher()

	publisher := eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: outboxRepo,
		Publisher:  eventpublisher.NewLogPublisher(nil),
	})

	go func() {
		if err := publisher.Start(dispatchCtx); err != nil && err != context.Canceled {
			log.Error().Err(err).Msg("event publisher stopped")
		}
	}()

	if cfg.DispatcherEnabled {
		dispatcher := queue.NewDispatcher(queue.DispatcherConfig{
			Client:           redisClient,
			ProcessURL:       cfg.ProcessURL(),
			InternalToken:    cfg.InternalToken,
			JobStore:         jobStore,
			RedeliveryBudget: cfg.QueueRedeliveryBudget,
			Logger:           appLogger,
		})

		go func() {
			if err := dispatcher.Run(dispatchCtx); err != nil && err != context.Canceled {
				log.Error().Err(err).Msg("dispatcher stopped")
			}
		}()
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")
	stopDispatcher()

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
