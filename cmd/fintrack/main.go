package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"fintrack/internal/backend"
	"fintrack/internal/cli"
	apphttp "fintrack/internal/http"
	"fintrack/internal/services"
	"fintrack/internal/store"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	factory := backend.NewFactory(logger)
	result, err := factory.CreateBackend(backend.Config{
		Type:         backend.Type(cfg.DataBackend),
		SQLiteDBPath: cfg.SQLiteDBPath,
		AMQPURL:      cfg.AMQPURL,
		AMQPExchange: cfg.AMQPExchange,
		AMQPQueue:    cfg.AMQPQueue,
	}, cfg.LedgerUser)
	if err != nil {
		logger.Error("Failed to create backend", "error", err, "backend", cfg.DataBackend)
		return
	}

	st := store.New(result.Repo, cfg.LedgerUser)
	loadCtx, loadCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := st.Load(loadCtx); err != nil {
		logger.Error("Failed to load ledger", "error", err)
		loadCancel()
		if result.Cleanup != nil {
			result.Cleanup()
		}
		return
	}
	loadCancel()
	logger.Info("Ledger loaded", "transactions", len(st.List()), "user", cfg.LedgerUser)

	svc := services.NewTransactionService(st, result.Events)

	srv := apphttp.NewServer(":"+cfg.Port, svc, st)
	srv.ReadHeaderTimeout = 5 * time.Second
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 15 * time.Second
	srv.IdleTimeout = 60 * time.Second

	ctx, done := cli.GracefulShutdown(logger, 15*time.Second, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown failed", "error", err)
		}
		if err := svc.Close(); err != nil {
			logger.Error("Service close failed", "error", err)
		}
		if result.Cleanup != nil {
			result.Cleanup()
		}
	})

	logger.Info("Server starting", "addr", srv.Addr, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server failed", "error", err)
		return
	}

	cli.WaitForShutdown(ctx, done)
}
