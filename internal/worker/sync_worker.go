// Package worker keeps the exported summary sheets in step with the ledger.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"fatura/internal/aggregation"
	"fatura/internal/amqp"
	"fatura/internal/sheets"
)

// MatrixBuilder builds the summary matrix of a year.
// *services.SummaryService implements it.
type MatrixBuilder interface {
	Monthly(ctx context.Context, year int) (*aggregation.Matrix, error)
}

// SyncWorker exports the summary of every year a ledger change touches.
//
// Changes are coalesced twice: a message older than the last export of its
// year is dropped, since that export already read the change, and pending
// years are exported together once batchSize of them pile up or on the
// next Run tick.
type SyncWorker struct {
	summary   MatrixBuilder
	exporter  sheets.MatrixExporter
	batchSize int
	now       func() time.Time

	mu         sync.Mutex
	pending    map[int]time.Time
	lastExport map[int]time.Time
}

func NewSyncWorker(summary MatrixBuilder, exporter sheets.MatrixExporter, batchSize int) *SyncWorker {
	if batchSize < 1 {
		batchSize = 1
	}
	return &SyncWorker{
		summary:    summary,
		exporter:   exporter,
		batchSize:  batchSize,
		now:        time.Now,
		pending:    make(map[int]time.Time),
		lastExport: make(map[int]time.Time),
	}
}

// HandleLedgerChange processes a single ledger change message from AMQP.
// An error makes the consumer requeue the message.
func (w *SyncWorker) HandleLedgerChange(ctx context.Context, msg *amqp.LedgerChangedMessage) error {
	w.mu.Lock()
	if last, ok := w.lastExport[msg.Year]; ok && !msg.Timestamp.After(last) {
		w.mu.Unlock()
		slog.DebugContext(ctx, "Ledger change already exported",
			"entity", msg.Entity,
			"id", msg.ID,
			"year", msg.Year)
		return nil
	}
	if _, ok := w.pending[msg.Year]; !ok {
		w.pending[msg.Year] = msg.Timestamp
	}
	full := len(w.pending) >= w.batchSize
	w.mu.Unlock()

	slog.InfoContext(ctx, "Processing ledger change",
		"entity", msg.Entity,
		"id", msg.ID,
		"op", msg.Op,
		"year", msg.Year)

	if full {
		return w.Flush(ctx)
	}
	return nil
}

// Pending lists the years waiting for an export, in order.
func (w *SyncWorker) Pending() []int {
	w.mu.Lock()
	defer w.mu.Unlock()
	years := make([]int, 0, len(w.pending))
	for y := range w.pending {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// Flush exports every pending year. Years that fail stay pending.
func (w *SyncWorker) Flush(ctx context.Context) error {
	w.mu.Lock()
	batch := w.pending
	w.pending = make(map[int]time.Time)
	w.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}
	years := make([]int, 0, len(batch))
	for y := range batch {
		years = append(years, y)
	}
	sort.Ints(years)

	var errs []error
	for _, year := range years {
		if err := w.SyncYear(ctx, year); err != nil {
			errs = append(errs, err)
			w.mu.Lock()
			if _, ok := w.pending[year]; !ok {
				w.pending[year] = batch[year]
			}
			w.mu.Unlock()
		}
	}
	return errors.Join(errs...)
}

// SyncYear rebuilds the matrix of year and exports it.
func (w *SyncWorker) SyncYear(ctx context.Context, year int) error {
	started := w.now()

	m, err := w.summary.Monthly(ctx, year)
	if err != nil {
		return fmt.Errorf("build summary %d: %w", year, err)
	}
	if err := w.exporter.ExportMatrix(ctx, year, m); err != nil {
		slog.ErrorContext(ctx, "Failed to export summary", "year", year, "error", err)
		return fmt.Errorf("export summary %d: %w", year, err)
	}

	w.mu.Lock()
	if started.After(w.lastExport[year]) {
		w.lastExport[year] = started
	}
	w.mu.Unlock()

	slog.InfoContext(ctx, "Successfully exported summary",
		"year", year,
		"columns", len(m.Columns),
		"duration", w.now().Sub(started))
	return nil
}

// StartupSync exports the current year, recovering from messages missed
// while the worker was down.
func (w *SyncWorker) StartupSync(ctx context.Context) error {
	year := w.now().Year()
	slog.InfoContext(ctx, "Performing startup sync", "year", year)
	return w.SyncYear(ctx, year)
}

// Run flushes pending years every interval until ctx is done.
func (w *SyncWorker) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// Best effort: export what is left before leaving.
			flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
			if err := w.Flush(flushCtx); err != nil {
				slog.ErrorContext(flushCtx, "Final flush failed", "error", err)
			}
			cancel()
			return
		case <-ticker.C:
			if err := w.Flush(ctx); err != nil {
				slog.ErrorContext(ctx, "Periodic sync failed", "error", err)
			}
		}
	}
}
