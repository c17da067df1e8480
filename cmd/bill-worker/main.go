package main

import (
	"context"
	"os"
	"time"

	"fatura/internal/cli"
	"fatura/internal/config"
	"fatura/internal/services"
)

func main() {
	logger, cfg := cli.Bootstrap("bill-worker", (*config.Config).ValidateWorker)

	store := cli.OpenStore(logger, cfg.SQLiteDBPath)
	defer store.Close()

	// Generated transactions are announced like any other ledger write, so
	// the sync worker re-exports the summary.
	publisher, closePublisher := cli.OpenPublisher(logger, cfg)
	defer closePublisher()

	ledger := services.NewLedgerService(store, publisher)
	scheduler := services.NewScheduler(
		services.NewBillProcessor(ledger),
		services.NewStatusUpdater(ledger),
		services.SchedulerConfig{PollInterval: cfg.BillInterval},
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger.Info("Bill scheduler configured", "interval", cfg.BillInterval, "sqlite_db", cfg.SQLiteDBPath)
	if err := scheduler.Start(ctx); err != nil {
		logger.Error("Failed to start scheduler", "error", err)
		os.Exit(1)
	}

	if sig := cli.WaitForSignal(ctx); sig != nil {
		logger.Info("Shutdown signal received", "signal", sig.String())
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := scheduler.Stop(shutdownCtx); err != nil {
		logger.Warn("Shutdown timeout reached", "error", err)
	}
	cancel()
	logger.Info("Bill-worker shutdown complete")
}
