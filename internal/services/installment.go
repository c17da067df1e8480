package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"fatura/internal/amqp"
	"fatura/internal/core"
	"fatura/internal/installments"
	"fatura/internal/storage"
)

// InstallmentService previews and books purchases paid in installments.
type InstallmentService struct {
	ledger *LedgerService
}

func NewInstallmentService(ledger *LedgerService) *InstallmentService {
	return &InstallmentService{ledger: ledger}
}

// Preview returns the installments a purchase would be split into without
// storing anything.
func (s *InstallmentService) Preview(ctx context.Context, template core.Transaction, n int) ([]core.Transaction, error) {
	var card *core.Account
	if template.AccountID != "" {
		a, err := s.ledger.store.GetAccount(ctx, template.AccountID)
		switch {
		case errors.Is(err, storage.ErrNotFound):
			return nil, invalid(fmt.Errorf("unknown account %q", template.AccountID))
		case err != nil:
			return nil, fmt.Errorf("load account: %w", err)
		}
		card = a
	}
	if template.PurchaseDate == "" && template.InvoiceMonth == "" {
		return nil, invalid(errors.New("purchase_date is required"))
	}

	plan, err := installments.Plan(template, n, card)
	if err != nil {
		return nil, invalid(err)
	}
	for i := range plan {
		if err := plan[i].Validate(); err != nil {
			return nil, invalid(fmt.Errorf("installment %d: %w", i+1, err))
		}
	}
	return plan, nil
}

// Create books the plan atomically: all installments are stored or none.
func (s *InstallmentService) Create(ctx context.Context, template core.Transaction, n int) ([]core.Transaction, error) {
	plan, err := s.Preview(ctx, template, n)
	if err != nil {
		return nil, err
	}
	if err := s.ledger.store.CreateTransactions(ctx, plan); err != nil {
		return nil, fmt.Errorf("create installments: %w", err)
	}

	groupID := plan[0].Installment.GroupID
	slog.InfoContext(ctx, "Installment plan created",
		"group_id", groupID,
		"count", len(plan),
		"amount_cents", template.Amount.Cents,
		"first_invoice_month", plan[0].InvoiceMonth)

	var years []int
	for i := range plan {
		years = append(years, transactionYears(&plan[i])...)
	}
	s.ledger.changed(ctx, EntityTransaction, groupID, amqp.OpCreate, years...)
	return plan, nil
}

// Group returns the stored installments of a purchase.
func (s *InstallmentService) Group(ctx context.Context, groupID string) ([]core.Transaction, error) {
	return s.ledger.store.ListTransactionsByGroup(ctx, groupID)
}
