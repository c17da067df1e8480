package services

import (
	"context"
	"errors"
	"testing"

	"fatura/internal/core"
)

func TestInvoiceTotal(t *testing.T) {
	txs := []core.Transaction{
		{Description: "Mercado", Amount: core.Cents(10000), Direction: core.Expense},
		{Description: "Posto", Amount: core.Cents(5000), Direction: core.Expense},
		{Description: "Estorno", Amount: core.Cents(2000), Direction: core.Income},
		{Description: "Pagamento fatura", Amount: core.Cents(99999), Direction: core.Income},
	}
	if got := InvoiceTotal(txs); got.Cents != 13000 {
		t.Errorf("Expected 13000, got %d", got.Cents)
	}

	refundOnly := []core.Transaction{{Description: "Estorno", Amount: core.Cents(2000), Direction: core.Income}}
	if got := InvoiceTotal(refundOnly); got.Cents != 0 {
		t.Errorf("Expected total floored at 0, got %d", got.Cents)
	}
}

func TestInvoiceRecompute(t *testing.T) {
	ledger, store, _ := newTestLedger(t)
	ctx := context.Background()
	card := createCard(t, ledger, 5, 12)

	for _, tx := range []*core.Transaction{
		{AccountID: card.ID, PurchaseDate: "2026-03-06", Description: "Mercado", Amount: core.Cents(10000)},
		{AccountID: card.ID, PurchaseDate: "2026-03-20", Description: "Cinema", Amount: core.Cents(4000)},
		{AccountID: card.ID, PurchaseDate: "2026-04-02", Description: "Posto", Amount: core.Cents(6000)},
		{AccountID: card.ID, PurchaseDate: "2026-05-01", Description: "Fora do ciclo", Amount: core.Cents(7000)},
	} {
		if err := ledger.CreateTransaction(ctx, tx); err != nil {
			t.Fatalf("CreateTransaction failed: %v", err)
		}
	}

	svc := NewInvoiceService(store)
	inv, err := svc.Recompute(ctx, card.ID, "2026-04-01")
	if err != nil {
		t.Fatalf("Recompute failed: %v", err)
	}
	if inv.Month != "2026-04" || inv.Total.Cents != 20000 || inv.DueDate != "2026-04-12" {
		t.Errorf("Unexpected invoice: %+v", inv)
	}
	if inv.Status != core.InvoiceOpen {
		t.Errorf("Expected open status, got %s", inv.Status)
	}

	// A paid invoice keeps its status when recomputed.
	inv.Status = core.InvoicePaid
	if err := store.UpsertInvoice(ctx, inv); err != nil {
		t.Fatalf("UpsertInvoice failed: %v", err)
	}
	again, err := svc.Recompute(ctx, card.ID, "2026-04")
	if err != nil {
		t.Fatalf("Recompute failed: %v", err)
	}
	if again.ID != inv.ID || again.Status != core.InvoicePaid {
		t.Errorf("Expected same paid invoice, got %+v", again)
	}

	list, err := svc.List(ctx, card.ID, "")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("Expected 1 invoice, got %d", len(list))
	}
}

func TestInvoiceRecomputeValidation(t *testing.T) {
	ledger, store, _ := newTestLedger(t)
	ctx := context.Background()
	acc := createChecking(t, ledger)
	svc := NewInvoiceService(store)

	if _, err := svc.Recompute(ctx, acc.ID, "2026-04"); !errors.Is(err, ErrValidation) {
		t.Errorf("Expected ErrValidation for a checking account, got %v", err)
	}
	if _, err := svc.Recompute(ctx, acc.ID, "abril"); !errors.Is(err, ErrValidation) {
		t.Errorf("Expected ErrValidation for a bad month, got %v", err)
	}
	if _, err := svc.Recompute(ctx, "", "2026-04"); !errors.Is(err, ErrValidation) {
		t.Errorf("Expected ErrValidation without an account, got %v", err)
	}
	if _, err := svc.List(ctx, "", "x"); !errors.Is(err, ErrValidation) {
		t.Errorf("Expected ErrValidation for a bad list month, got %v", err)
	}
}
