package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"expenses/internal/amqp"
	"expenses/internal/cli"
	"expenses/internal/log"
	"expenses/internal/ratelimit"
	gsheet "expenses/internal/sheets/google"
	"expenses/internal/storage"
	"expenses/internal/worker"
)

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker, slog.LevelInfo)
	logger.Info("Starting expenses-worker")

	cfg, err := cli.LoadAndValidateConfig(logger)
	if err != nil {
		return err
	}
	if err := cfg.ValidateSheets(); err != nil {
		logger.Error("The worker needs Google Sheets settings", log.FieldError, err)
		return err
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath, logger)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", log.FieldError, err, "path", cfg.SQLiteDBPath)
		return err
	}
	defer repo.Close()

	sheetsClient, err := gsheet.NewFromConfig(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", log.FieldError, err)
		return err
	}
	info, _ := sheetsClient.Info(ctx)
	logger.Info("Google Sheets client initialized",
		"spreadsheet", info.Spreadsheet,
		log.FieldSheet, info.Worksheet)

	syncWorker := worker.NewSyncWorker(repo, sheetsClient, cfg.SyncBatchSize, logger).
		WithLimiter(ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: cfg.SheetsWritesPerMinute}))

	logger.Info("Performing startup sync check...")
	if err := syncWorker.StartupSyncCheck(ctx); err != nil {
		logger.Error("Failed startup sync check", log.FieldError, err)
	}

	g, gctx := errgroup.WithContext(ctx)

	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err)
			return err
		}
		defer amqpClient.Close()

		g.Go(func() error {
			return amqpClient.ConsumeReceiptSync(gctx, syncWorker.HandleSyncMessage)
		})
	} else {
		logger.Info("AMQP disabled, relying on periodic sync", "interval", cfg.SyncInterval)
	}

	g.Go(func() error {
		return syncWorker.RunPeriodic(gctx, cfg.SyncInterval)
	})

	err = g.Wait()
	if ctx.Err() != nil {
		<-done
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped", log.FieldError, err)
		return err
	}
	logger.Info("Worker shutdown complete")
	return nil
}
