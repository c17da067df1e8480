package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"fatura/internal/aggregation"
	"fatura/internal/amqp"
	"fatura/internal/core"
	"fatura/internal/sheets/memory"
)

type fakeBuilder struct {
	mu    sync.Mutex
	calls []int
	err   error
}

func (b *fakeBuilder) Monthly(_ context.Context, year int) (*aggregation.Matrix, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, year)
	if b.err != nil {
		return nil, b.err
	}
	return aggregation.Build(aggregation.Input{
		Transactions: []core.Transaction{
			{Description: "Salário", PurchaseDate: "2026-01-05", Amount: core.Cents(500000), Direction: core.Income},
		},
		Now: time.Date(year, 6, 1, 0, 0, 0, 0, time.UTC),
	}), nil
}

func (b *fakeBuilder) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.calls)
}

type failingExporter struct{}

func (failingExporter) ExportMatrix(context.Context, int, *aggregation.Matrix) error {
	return errors.New("quota exceeded")
}

func message(year int, ts time.Time) *amqp.LedgerChangedMessage {
	return &amqp.LedgerChangedMessage{Entity: "transaction", ID: "t1", Op: amqp.OpCreate, Year: year, Timestamp: ts}
}

func TestHandleLedgerChangeBatches(t *testing.T) {
	builder := &fakeBuilder{}
	store := memory.New()
	w := NewSyncWorker(builder, store, 2)
	ctx := context.Background()
	ts := time.Now()

	if err := w.HandleLedgerChange(ctx, message(2026, ts)); err != nil {
		t.Fatalf("HandleLedgerChange failed: %v", err)
	}
	if err := w.HandleLedgerChange(ctx, message(2026, ts)); err != nil {
		t.Fatalf("HandleLedgerChange failed: %v", err)
	}
	if builder.count() != 0 {
		t.Errorf("Expected no export before the batch fills, got %d", builder.count())
	}
	if pending := w.Pending(); len(pending) != 1 || pending[0] != 2026 {
		t.Errorf("Expected 2026 pending, got %v", pending)
	}

	// A second year fills the batch.
	if err := w.HandleLedgerChange(ctx, message(2027, ts)); err != nil {
		t.Fatalf("HandleLedgerChange failed: %v", err)
	}
	if builder.count() != 2 {
		t.Errorf("Expected 2 exports, got %d", builder.count())
	}
	if len(w.Pending()) != 0 {
		t.Errorf("Expected nothing pending, got %v", w.Pending())
	}
	if years := store.Years(); len(years) != 2 {
		t.Errorf("Expected 2 exported years, got %v", years)
	}
}

func TestHandleLedgerChangeSkipsExported(t *testing.T) {
	builder := &fakeBuilder{}
	w := NewSyncWorker(builder, memory.New(), 1)
	ctx := context.Background()

	exportedAt := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	w.now = func() time.Time { return exportedAt }
	if err := w.SyncYear(ctx, 2026); err != nil {
		t.Fatalf("SyncYear failed: %v", err)
	}

	// Written before the export started: already included.
	if err := w.HandleLedgerChange(ctx, message(2026, exportedAt.Add(-time.Second))); err != nil {
		t.Fatalf("HandleLedgerChange failed: %v", err)
	}
	if builder.count() != 1 {
		t.Errorf("Expected the stale change to be skipped, got %d builds", builder.count())
	}

	if err := w.HandleLedgerChange(ctx, message(2026, exportedAt.Add(time.Second))); err != nil {
		t.Fatalf("HandleLedgerChange failed: %v", err)
	}
	if builder.count() != 2 {
		t.Errorf("Expected a newer change to export again, got %d builds", builder.count())
	}
}

func TestFlushKeepsFailedYears(t *testing.T) {
	builder := &fakeBuilder{}
	w := NewSyncWorker(builder, failingExporter{}, 10)
	ctx := context.Background()

	if err := w.HandleLedgerChange(ctx, message(2026, time.Now())); err != nil {
		t.Fatalf("HandleLedgerChange failed: %v", err)
	}
	if err := w.Flush(ctx); err == nil {
		t.Error("Expected Flush to report the export failure")
	}
	if pending := w.Pending(); len(pending) != 1 || pending[0] != 2026 {
		t.Errorf("Expected 2026 to stay pending, got %v", pending)
	}
}

func TestHandleLedgerChangeReportsBuildErrors(t *testing.T) {
	builder := &fakeBuilder{err: errors.New("database is locked")}
	w := NewSyncWorker(builder, memory.New(), 1)

	if err := w.HandleLedgerChange(context.Background(), message(2026, time.Now())); err == nil {
		t.Error("Expected an error so the message is requeued")
	}
}

func TestStartupSync(t *testing.T) {
	builder := &fakeBuilder{}
	store := memory.New()
	w := NewSyncWorker(builder, store, 10)
	w.now = func() time.Time { return time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC) }

	if err := w.StartupSync(context.Background()); err != nil {
		t.Fatalf("StartupSync failed: %v", err)
	}
	table, err := store.ReadTable(context.Background(), 2026)
	if err != nil {
		t.Fatalf("ReadTable failed: %v", err)
	}
	if len(table) == 0 || table[0][0] != "" {
		t.Errorf("Expected an exported table with a header row, got %v", table)
	}
}

func TestRunFlushesOnTick(t *testing.T) {
	builder := &fakeBuilder{}
	w := NewSyncWorker(builder, memory.New(), 10)
	ctx, cancel := context.WithCancel(context.Background())

	if err := w.HandleLedgerChange(ctx, message(2026, time.Now())); err != nil {
		t.Fatalf("HandleLedgerChange failed: %v", err)
	}

	done := make(chan struct{})
	go func() {
		w.Run(ctx, 10*time.Millisecond)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for builder.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	<-done

	if builder.count() == 0 {
		t.Error("Expected Run to export the pending year")
	}
}
