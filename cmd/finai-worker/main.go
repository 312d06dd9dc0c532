package main

import (
	"os"
	"time"

	"finai/internal/amqp"
	"finai/internal/cli"
	"finai/internal/log"
	"finai/internal/services"
	"finai/internal/worker"
)

func main() {
	cfg, logger := cli.Bootstrap()
	logger.Info("Starting finai-worker")

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	// The worker screens documents itself, so its service never publishes.
	onboarding := services.NewOnboardingService(repo, nil, services.NewScreener(), cfg.UploadDir, logger)
	screeningWorker := worker.NewScreeningWorker(onboarding, cfg.ScreenBatchSize, logger)

	var consumer worker.Consumer
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err)
			os.Exit(1)
		}
		defer amqpClient.Close()
		consumer = amqpClient
	} else {
		logger.Info("AMQP disabled, only sweeping pending documents", "interval", cfg.ScreenInterval)
	}

	ctx, done := cli.GracefulShutdown(logger, 10*time.Second, nil)

	if err := screeningWorker.Run(ctx, consumer, cfg.ScreenInterval); err != nil {
		logger.Error("Screening worker stopped", log.FieldError, err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("finai-worker stopped")
}
