package services

import (
	"context"
	"testing"
	"time"

	"fatura/internal/aggregation"
	"fatura/internal/cache"
	"fatura/internal/core"
)

func TestSummaryCachesPerLedgerVersion(t *testing.T) {
	ledger, store, _ := newTestLedger(t)
	ctx := context.Background()

	matrices := cache.NewLRUCache[*aggregation.Matrix](8, time.Minute)
	svc := NewSummaryService(store, matrices)
	svc.now = func() time.Time { return testNow }

	first, err := svc.Monthly(ctx, 2026)
	if err != nil {
		t.Fatalf("Monthly failed: %v", err)
	}
	second, err := svc.Monthly(ctx, 2026)
	if err != nil {
		t.Fatalf("Monthly failed: %v", err)
	}
	if first != second {
		t.Error("Expected the cached matrix on the second call")
	}

	createChecking(t, ledger)
	third, err := svc.Monthly(ctx, 2026)
	if err != nil {
		t.Fatalf("Monthly failed: %v", err)
	}
	if third == first {
		t.Error("Expected a rebuilt matrix after a ledger write")
	}

	svc.Invalidate()
	if matrices.Size() != 0 {
		t.Errorf("Expected an empty cache after Invalidate, got %d", matrices.Size())
	}
}

func TestSummaryIncludesIncome(t *testing.T) {
	ledger, store, _ := newTestLedger(t)
	ctx := context.Background()
	acc := createChecking(t, ledger)

	tx := &core.Transaction{
		AccountID:    acc.ID,
		PurchaseDate: "2026-03-05",
		Description:  "Salário",
		Amount:       core.Cents(500000),
		Direction:    core.Income,
	}
	if err := ledger.CreateTransaction(ctx, tx); err != nil {
		t.Fatalf("CreateTransaction failed: %v", err)
	}

	svc := NewSummaryService(store, nil)
	svc.now = func() time.Time { return testNow }
	m, err := svc.Monthly(ctx, 0)
	if err != nil {
		t.Fatalf("Monthly failed: %v", err)
	}
	if got := m.Value(m.Income.Total, "2026-03"); got != 500000 {
		t.Errorf("Expected March income 500000, got %d", got)
	}
}
