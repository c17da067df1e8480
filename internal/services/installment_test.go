package services

import (
	"context"
	"errors"
	"testing"

	"fatura/internal/core"
)

func TestInstallmentCreate(t *testing.T) {
	ledger, _, pub := newTestLedger(t)
	ctx := context.Background()
	card := createCard(t, ledger, 5, 12)
	pub.reset()

	svc := NewInstallmentService(ledger)
	template := core.Transaction{
		AccountID:    card.ID,
		PurchaseDate: "2026-11-20",
		Description:  "Geladeira",
		Amount:       core.Cents(100000),
	}
	plan, err := svc.Create(ctx, template, 3)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if len(plan) != 3 {
		t.Fatalf("Expected 3 installments, got %d", len(plan))
	}

	wantMonths := []string{"2026-12", "2027-01", "2027-02"}
	var sum int64
	for i, tx := range plan {
		if tx.ID == "" {
			t.Errorf("Installment %d has no id", i+1)
		}
		if tx.InvoiceMonth != wantMonths[i] {
			t.Errorf("Installment %d: expected month %s, got %s", i+1, wantMonths[i], tx.InvoiceMonth)
		}
		sum += tx.Amount.Cents
	}
	if sum != 100000 {
		t.Errorf("Expected installments to sum to 100000, got %d", sum)
	}
	if plan[0].Status != core.Confirmed || plan[1].Status != core.Planned {
		t.Errorf("Expected confirmed then planned, got %s, %s", plan[0].Status, plan[1].Status)
	}
	if plan[2].Description != "Geladeira (3/3)" {
		t.Errorf("Unexpected description %q", plan[2].Description)
	}

	group, err := svc.Group(ctx, plan[0].Installment.GroupID)
	if err != nil {
		t.Fatalf("Group failed: %v", err)
	}
	if len(group) != 3 || group[0].Installment.Current != 1 || group[2].Installment.Current != 3 {
		t.Errorf("Expected the group in installment order, got %d items", len(group))
	}

	if years := pub.years(); len(years) != 2 || years[0] != 2026 || years[1] != 2027 {
		t.Errorf("Expected messages for 2026 and 2027, got %v", years)
	}
}

func TestInstallmentPreviewDoesNotStore(t *testing.T) {
	ledger, store, _ := newTestLedger(t)
	ctx := context.Background()
	card := createCard(t, ledger, 5, 12)

	svc := NewInstallmentService(ledger)
	plan, err := svc.Preview(ctx, core.Transaction{
		AccountID:    card.ID,
		PurchaseDate: "2026-03-01",
		Description:  "Notebook",
		Amount:       core.Cents(1000),
	}, 3)
	if err != nil {
		t.Fatalf("Preview failed: %v", err)
	}
	if plan[0].Amount.Cents != 334 || plan[1].Amount.Cents != 333 {
		t.Errorf("Expected remainder on the first installment, got %d, %d", plan[0].Amount.Cents, plan[1].Amount.Cents)
	}

	version, err := store.LedgerVersion(ctx)
	if err != nil {
		t.Fatalf("LedgerVersion failed: %v", err)
	}
	// Only the card was written.
	if version != 1 {
		t.Errorf("Expected ledger version 1, got %d", version)
	}
}

func TestInstallmentValidation(t *testing.T) {
	ledger, _, _ := newTestLedger(t)
	svc := NewInstallmentService(ledger)
	ctx := context.Background()

	base := core.Transaction{PurchaseDate: "2026-03-01", Description: "TV", Amount: core.Cents(1000)}

	tests := []struct {
		name     string
		template core.Transaction
		n        int
	}{
		{"zero installments", base, 0},
		{"too many installments", base, 121},
		{"missing date", core.Transaction{Description: "TV", Amount: core.Cents(1000)}, 2},
		{"unknown card", core.Transaction{AccountID: "nope", PurchaseDate: "2026-03-01", Description: "TV", Amount: core.Cents(1000)}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Preview(ctx, tt.template, tt.n); !errors.Is(err, ErrValidation) {
				t.Errorf("Expected ErrValidation, got %v", err)
			}
		})
	}
}
