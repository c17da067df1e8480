package main

import (
	"context"
	"errors"
	"os"
	"time"

	"fatura/internal/aggregation"
	"fatura/internal/amqp"
	"fatura/internal/backend"
	"fatura/internal/cache"
	"fatura/internal/cli"
	"fatura/internal/config"
	"fatura/internal/services"
	"fatura/internal/worker"
)

func main() {
	logger, cfg := cli.Bootstrap("sync-worker", (*config.Config).ValidateWorker)
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required by the sync worker")
		os.Exit(1)
	}

	store := cli.OpenStore(logger, cfg.SQLiteDBPath)
	defer store.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	exporter, err := backend.New(ctx, backend.TypeFor(cfg), cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize export backend", "error", err)
		os.Exit(1)
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	// Cache keys carry the ledger version, so matrices cached here never
	// outlive a write made by another process.
	matrices := cache.NewLRUCache[*aggregation.Matrix](8, 10*time.Minute)
	summary := services.NewSummaryService(store, matrices)
	syncWorker := worker.NewSyncWorker(summary, exporter, cfg.SyncBatchSize)

	if err := syncWorker.StartupSync(ctx); err != nil {
		// Don't exit - the next change or tick retries
		logger.Error("Startup sync failed", "error", err)
	}

	go func() {
		if err := amqpClient.ConsumeLedgerChanges(ctx, syncWorker.HandleLedgerChange); err != nil {
			if !errors.Is(err, context.Canceled) {
				logger.Error("Message consumption failed", "error", err)
			}
			cancel()
		}
	}()

	done := make(chan struct{})
	go func() {
		defer close(done)
		syncWorker.Run(ctx, cfg.SyncInterval)
	}()

	if sig := cli.WaitForSignal(ctx); sig != nil {
		logger.Info("Shutdown signal received", "signal", sig.String())
	} else {
		logger.Info("Context cancelled")
	}

	logger.Info("Shutting down sync-worker...")
	cancel()

	// Run flushes pending years on the way out.
	select {
	case <-done:
		logger.Info("Sync-worker shutdown complete")
	case <-time.After(30 * time.Second):
		logger.Warn("Shutdown timeout reached")
	}
}
