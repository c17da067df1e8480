package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fatura/internal/core"
	"fatura/internal/storage"
)

// StatusUpdater moves planned transactions past their charge date to overdue.
type StatusUpdater struct {
	ledger *LedgerService
}

func NewStatusUpdater(ledger *LedgerService) *StatusUpdater {
	return &StatusUpdater{ledger: ledger}
}

// MarkOverdue flags every planned transaction charged before the day of
// now and returns how many changed.
func (u *StatusUpdater) MarkOverdue(ctx context.Context, now time.Time) (int, error) {
	today := core.FormatDate(now)
	planned, err := u.ledger.store.ListTransactions(ctx, storage.TransactionFilter{
		Status:        core.Planned,
		ChargedBefore: today,
	})
	if err != nil {
		return 0, fmt.Errorf("list planned transactions: %w", err)
	}

	updated := 0
	for i := range planned {
		t := planned[i]
		t.Status = core.Overdue
		if err := u.ledger.UpdateTransaction(ctx, &t); err != nil {
			slog.ErrorContext(ctx, "Failed to mark transaction overdue", "id", t.ID, "error", err)
			continue
		}
		updated++
	}
	if updated > 0 {
		slog.InfoContext(ctx, "Marked transactions overdue", "count", updated, "before", today)
	}
	return updated, nil
}
