package services

import (
	"context"
	"testing"
	"time"

	"fatura/internal/core"
	"fatura/internal/storage"
)

func TestDefaultSchedulerConfig(t *testing.T) {
	config := DefaultSchedulerConfig()
	if config.PollInterval != time.Hour {
		t.Errorf("expected PollInterval 1h, got %v", config.PollInterval)
	}

	s := NewScheduler(nil, nil, SchedulerConfig{})
	if s.config.PollInterval != time.Hour {
		t.Errorf("expected zero interval to fall back to 1h, got %v", s.config.PollInterval)
	}
}

func TestScheduler_StartStop(t *testing.T) {
	s := NewScheduler(nil, nil, SchedulerConfig{PollInterval: 50 * time.Millisecond})
	ctx := context.Background()

	if s.IsRunning() {
		t.Error("scheduler should not be running initially")
	}
	if err := s.Stop(ctx); err != nil {
		t.Errorf("Stop should not error when not running: %v", err)
	}

	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := s.Start(ctx); err == nil {
		t.Error("expected error when starting already running scheduler")
	}

	stopCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	if err := s.Stop(stopCtx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if s.IsRunning() {
		t.Error("scheduler should not be running after Stop")
	}
}

func TestScheduler_RunOnce(t *testing.T) {
	ledger, store, _ := newTestLedger(t)
	ctx := context.Background()

	bill := &core.Bill{Name: "Luz", DefaultAmount: core.Cents(18000), DayOfMonth: 1, Active: true}
	if err := ledger.CreateBill(ctx, bill); err != nil {
		t.Fatalf("CreateBill failed: %v", err)
	}

	s := NewScheduler(NewBillProcessor(ledger), NewStatusUpdater(ledger), DefaultSchedulerConfig())
	s.now = func() time.Time { return testNow }
	s.RunOnce(ctx)

	// Generated for 2026-03-01 and already past due on the 10th.
	txs, err := store.ListTransactions(ctx, storage.TransactionFilter{Status: core.Overdue})
	if err != nil {
		t.Fatalf("ListTransactions failed: %v", err)
	}
	if len(txs) != 1 || txs[0].BillID != bill.ID {
		t.Errorf("Expected the bill's transaction to be overdue, got %d", len(txs))
	}
}
