package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fatura/internal/core"
)

// BillProcessor turns due bills into planned transactions, once per bill
// and month.
type BillProcessor struct {
	ledger *LedgerService
}

func NewBillProcessor(ledger *LedgerService) *BillProcessor {
	return &BillProcessor{ledger: ledger}
}

// inWindow reports whether month lies within the bill's start and end.
func inWindow(b core.Bill, month core.YearMonth) bool {
	if start, err := core.ParseYearMonth(b.StartMonth); err == nil && month.Before(start) {
		return false
	}
	if end, err := core.ParseYearMonth(b.EndMonth); err == nil && month.After(end) {
		return false
	}
	return true
}

// plannedFor builds the transaction a bill generates for month.
func plannedFor(b core.Bill, month core.YearMonth) core.Transaction {
	day := b.DayOfMonth
	if last := month.DaysIn(); day > last {
		day = last
	}
	date := fmt.Sprintf("%s-%02d", month, day)
	kind := core.KindRecurring
	if b.IsInvoice() {
		kind = core.KindInvoicePayment
	}
	return core.Transaction{
		AccountID:    b.AccountID,
		PurchaseDate: date,
		Date:         date,
		Merchant:     b.Payee,
		Description:  b.Name,
		CategoryID:   b.CategoryID,
		Amount:       b.DefaultAmount,
		Direction:    core.Expense,
		Status:       core.Planned,
		Kind:         kind,
		BillID:       b.ID,
	}
}

// ProcessDueBills generates the planned transactions of every due bill for
// the month of now and returns how many were created. A failing bill is
// logged and skipped.
func (p *BillProcessor) ProcessDueBills(ctx context.Context, now time.Time) (int, error) {
	if p.ledger == nil {
		return 0, errors.New("processor not properly initialized")
	}

	bills, err := p.ledger.store.ListBills(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list bills: %w", err)
	}

	month := core.MonthFromTime(now)
	slog.InfoContext(ctx, "Processing bills",
		"total", len(bills),
		"month", month.String())

	processed := 0
	for _, b := range bills {
		if !b.Active || !inWindow(b, month) {
			continue
		}
		// Financed purchases already exist as installment transactions.
		if b.InstallmentGroupID != "" {
			continue
		}

		last, err := p.ledger.store.BillLastGenerated(ctx, b.ID)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to read bill generation", "bill_id", b.ID, "error", err)
			continue
		}
		lastYM, _ := core.ParseYearMonth(last)
		if !GetDuenessChecker(b.Kind).IsDue(lastYM, now, b) {
			continue
		}

		tx := plannedFor(b, month)
		if err := p.ledger.CreateTransaction(ctx, &tx); err != nil {
			slog.ErrorContext(ctx, "Failed to create transaction from bill",
				"bill_id", b.ID,
				"name", b.Name,
				"error", err)
			continue
		}

		if err := p.ledger.store.MarkBillGenerated(ctx, b.ID, month.String()); err != nil {
			slog.ErrorContext(ctx, "Failed to record bill generation",
				"bill_id", b.ID,
				"error", err)
			// Continue anyway - the transaction was created
		}

		processed++
		slog.InfoContext(ctx, "Created planned transaction from bill",
			"bill_id", b.ID,
			"transaction_id", tx.ID,
			"amount_cents", tx.Amount.Cents,
			"invoice_month", tx.InvoiceMonth)
	}

	slog.InfoContext(ctx, "Bill processing complete",
		"processed", processed,
		"total_checked", len(bills))

	return processed, nil
}
