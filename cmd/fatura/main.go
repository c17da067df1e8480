package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"fatura/internal/aggregation"
	"fatura/internal/auth"
	"fatura/internal/cache"
	"fatura/internal/cli"
	"fatura/internal/config"
	apphttp "fatura/internal/http"
	"fatura/internal/services"
)

func main() {
	logger, cfg := cli.Bootstrap("fatura", (*config.Config).Validate)

	store := cli.OpenStore(logger, cfg.SQLiteDBPath)
	defer store.Close()

	// Without a broker the API still works; exported sheets just go stale.
	publisher, closePublisher := cli.OpenPublisher(logger, cfg)
	defer closePublisher()

	matrices := cache.NewLRUCache[*aggregation.Matrix](16, 10*time.Minute)
	caches := cache.NewManager()
	caches.Register(matrices)

	ledger := services.NewLedgerService(store, publisher)
	summary := services.NewSummaryService(store, matrices)
	ledger.OnChange(summary.Invalidate)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	caches.StartCleanup(ctx, 5*time.Minute)

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Ledger:       ledger,
		Installments: services.NewInstallmentService(ledger),
		Invoices:     services.NewInvoiceService(store),
		Summary:      summary,
		Auth:         auth.NewPasswordAuthenticator(store),
		Tokens:       auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL),
		Ready:        store,
		Caches:       caches,
		Logger:       logger,
	})

	go func() {
		if sig := cli.WaitForSignal(ctx); sig != nil {
			logger.Info("Shutdown signal received", "signal", sig.String())
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Listening", "port", cfg.Port, "db", cfg.SQLiteDBPath)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
