// Package cli holds the start-up steps the fatura binaries share.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"fatura/internal/amqp"
	"fatura/internal/config"
	"fatura/internal/log"
	"fatura/internal/services"
	"fatura/internal/storage"
)

// Bootstrap loads .env, installs the process logger and returns the
// configuration checked by validate. It exits the process when validation
// fails.
func Bootstrap(component string, validate func(*config.Config) error) (*log.Logger, *config.Config) {
	// Optional outside local development.
	_ = godotenv.Load()

	logger := log.Setup(component)
	logger.Info("Starting " + component)

	cfg := config.Load()
	if validate != nil {
		if err := validate(cfg); err != nil {
			logger.Error("Configuration validation failed", "error", err)
			os.Exit(1)
		}
	}
	return logger, cfg
}

// OpenStore opens the SQLite ledger at dbPath, applying migrations. It
// exits the process on failure.
func OpenStore(logger *log.Logger, dbPath string) *storage.SQLiteStore {
	store, err := storage.New(dbPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite store", "error", err, "path", dbPath)
		os.Exit(1)
	}
	return store
}

// OpenPublisher connects the ledger change publisher. The result is nil
// when AMQP is disabled or unreachable; writes then go unannounced. The
// returned close func is never nil.
func OpenPublisher(logger *log.Logger, cfg *config.Config) (services.LedgerPublisher, func()) {
	if cfg.AMQPURL == "" {
		logger.Info("AMQP disabled - ledger changes will not be published")
		return nil, func() {}
	}
	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Warn("Failed to initialize AMQP client, continuing in SQLite-only mode", "error", err)
		return nil, func() {}
	}
	logger.Info("AMQP publisher initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	return client, func() {
		if err := client.Close(); err != nil {
			logger.Warn("Failed to close AMQP client", "error", err)
		}
	}
}

// WaitForSignal blocks until SIGINT or SIGTERM arrives or ctx is done. It
// returns the signal, or nil when ctx ended first.
func WaitForSignal(ctx context.Context) os.Signal {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case sig := <-sigChan:
		return sig
	case <-ctx.Done():
		return nil
	}
}
