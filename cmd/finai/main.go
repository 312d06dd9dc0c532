package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"finai/internal/amqp"
	"finai/internal/backend"
	"finai/internal/cache"
	"finai/internal/chat"
	"finai/internal/cli"
	apphttp "finai/internal/http"
	"finai/internal/log"
	"finai/internal/services"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, logger := cli.Bootstrap()

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	checks := map[string]apphttp.ReadinessCheck{
		"sqlite": repo.Ping,
	}

	// Without AMQP the CRB check runs inline during the upload request.
	var publisher services.ScreeningPublisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err)
			os.Exit(1)
		}
		defer amqpClient.Close()
		publisher = amqpClient
		checks["amqp"] = amqpClient.Check
		logger.Info("AMQP publisher initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP disabled, screening KYC documents inline")
	}

	onboarding := services.NewOnboardingService(repo, publisher, services.NewScreener(), cfg.UploadDir, logger)
	logger.Info("Onboarding ready", "upload_dir", cfg.UploadDir, "async_screening", onboarding.Async())

	cacheManager := cache.NewManager(logger)
	defer cacheManager.Stop()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid session backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	startCtx, cancelStart := context.WithTimeout(context.Background(), 5*time.Second)
	sessions, err := backend.NewFactory(logger, cacheManager).CreateSessionBackend(startCtx, backendCfg)
	cancelStart()
	if err != nil {
		logger.Error("Failed to create session backend", log.FieldError, err)
		os.Exit(1)
	}
	if sessions.Cleanup != nil {
		defer sessions.Cleanup()
	}
	if sessions.Check != nil {
		checks[backendCfg.Type.String()] = sessions.Check
	}
	var sessionStats apphttp.SessionStats
	if sessions.Stats != nil {
		sessionStats = sessions.Stats
	}
	cacheManager.StartCleanup(backend.CleanupInterval)

	chatOpts := chat.Options{Sessions: sessions.Store, Timeout: cfg.LLMTimeout, Logger: logger}
	if cfg.AIEnabled() {
		chatOpts.Completer = chat.NewAnthropicCompleter(cfg.AnthropicAPIKey, cfg.LLMModel)
		logger.Info("Chat model enabled", "model", cfg.LLMModel)
	} else {
		logger.Info("ANTHROPIC_API_KEY not set, chat replies are local only")
	}

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Dependencies{
		Assistant:          chat.New(chatOpts),
		Onboarding:         onboarding,
		KYCStats:           repo,
		Sessions:           sessionStats,
		Checks:             checks,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Logger:             logger,
	})

	ctx, done := cli.GracefulShutdown(logger, shutdownTimeout, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
	})

	logger.Info("Starting finai server", "port", cfg.Port, "session_backend", cfg.SessionBackend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
