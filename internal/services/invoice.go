package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"fatura/internal/billing"
	"fatura/internal/core"
	"fatura/internal/storage"
)

// InvoiceService derives credit-card invoices from the ledger.
type InvoiceService struct {
	store storage.Store
}

func NewInvoiceService(store storage.Store) *InvoiceService {
	return &InvoiceService{store: store}
}

func (s *InvoiceService) List(ctx context.Context, accountID, month string) ([]core.Invoice, error) {
	if month != "" {
		m := core.MonthOf(month)
		if m == "" {
			return nil, invalid(core.ErrInvalidMonth)
		}
		month = m
	}
	return s.store.ListInvoices(ctx, accountID, month)
}

// InvoiceTotal sums the card movements billed in an invoice: expenses add,
// credits such as refunds subtract, invoice payments are ignored. The
// total never goes below zero.
func InvoiceTotal(transactions []core.Transaction) core.Money {
	var cents int64
	for _, t := range transactions {
		if t.IsInvoicePayment() {
			continue
		}
		switch t.Direction {
		case core.Expense:
			cents += t.Amount.Cents
		case core.Income:
			cents -= t.Amount.Cents
		}
	}
	if cents < 0 {
		cents = 0
	}
	return core.Cents(cents)
}

// Recompute rebuilds the invoice of a card for month (YYYY-MM) from its
// transactions and stores it. A closed or paid invoice keeps its status.
func (s *InvoiceService) Recompute(ctx context.Context, accountID, month string) (*core.Invoice, error) {
	month = core.MonthOf(month)
	if month == "" {
		return nil, invalid(core.ErrInvalidMonth)
	}
	if accountID == "" {
		return nil, invalid(errors.New("account_id is required"))
	}

	var (
		account      *core.Account
		transactions []core.Transaction
		existing     []core.Invoice
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		account, err = s.store.GetAccount(gctx, accountID)
		return err
	})
	g.Go(func() error {
		var err error
		transactions, err = s.store.ListTransactions(gctx, storage.TransactionFilter{AccountID: accountID, InvoiceMonth: month})
		return err
	})
	g.Go(func() error {
		var err error
		existing, err = s.store.ListInvoices(gctx, accountID, month)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load invoice data: %w", err)
	}
	if !account.IsCreditCard() {
		return nil, invalid(fmt.Errorf("account %q is not a credit card", accountID))
	}

	inv := &core.Invoice{
		AccountID: accountID,
		Month:     month,
		Total:     InvoiceTotal(transactions),
		Status:    core.InvoiceOpen,
	}
	if account.Statement != nil {
		inv.DueDate = billing.DueDate(month, account.Statement.DueDay)
	}
	if len(existing) > 0 {
		inv.ID = existing[0].ID
		if existing[0].Status != core.InvoiceOpen && existing[0].Status != "" {
			inv.Status = existing[0].Status
		}
	}

	if err := s.store.UpsertInvoice(ctx, inv); err != nil {
		return nil, fmt.Errorf("store invoice: %w", err)
	}
	slog.InfoContext(ctx, "Invoice recomputed",
		"account_id", accountID,
		"invoice_month", month,
		"amount_cents", inv.Total.Cents,
		"count", len(transactions))
	return inv, nil
}
