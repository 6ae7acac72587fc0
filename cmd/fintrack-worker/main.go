package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/amqp"
	"fintrack/internal/cli"
	"fintrack/internal/sheets/google"
	"fintrack/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the export worker")
		os.Exit(1)
	}

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	exporter, err := google.NewFromEnv(context.Background())
	if err != nil {
		logger.Error("Failed to initialize Sheets exporter", "error", err)
		os.Exit(1)
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to connect to AMQP broker", "error", err, "url", cfg.AMQPURL)
		os.Exit(1)
	}
	defer client.Close()

	w := worker.NewExportWorker(repo, exporter)

	ctx, done := cli.GracefulShutdown(logger, 15*time.Second, nil)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return client.ConsumeWithRetry(gctx, func(event *amqp.TransactionEvent) error {
			return w.HandleEvent(gctx, event)
		})
	})

	g.Go(func() error {
		ticker := time.NewTicker(cfg.ExportInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case <-ticker.C:
				if _, err := w.Sweep(gctx, cfg.ExportBatchSize); err != nil && !errors.Is(err, context.Canceled) {
					logger.Error("Export sweep failed", "error", err)
				}
			}
		}
	})

	logger.Info("Export worker started",
		"queue", cfg.AMQPQueue,
		"sweep_interval", cfg.ExportInterval,
		"batch_size", cfg.ExportBatchSize)

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Export worker stopped", "error", err)
	}

	cli.WaitForShutdown(ctx, done)
}
