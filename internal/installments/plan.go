package installments

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"fatura/internal/billing"
	"fatura/internal/core"
)

// MaxInstallments bounds how many parts a single purchase may be split into.
const MaxInstallments = 120

var ErrInvalidCount = errors.New("installment count must be between 1 and 120")

// Plan explodes a purchase into n installment transactions sharing a new
// group id. The first installment is billed in the invoice month resolved
// for the purchase; each following one is billed a month later. Only the
// first installment keeps the template status, the rest are planned.
func Plan(template core.Transaction, n int, card *core.Account) ([]core.Transaction, error) {
	if n < 1 || n > MaxInstallments {
		return nil, ErrInvalidCount
	}
	if err := template.Amount.Validate(); err != nil {
		return nil, err
	}

	first := template.InvoiceMonth
	if first == "" {
		first = billing.ForAccount(template.PurchaseDate, card)
	}
	firstYM, err := core.ParseYearMonth(first)
	if err != nil {
		return nil, fmt.Errorf("resolve first invoice month: %w", err)
	}

	dueDay := 0
	if card != nil && card.Statement != nil {
		dueDay = card.Statement.DueDay
	}
	status := template.Status
	if status == "" {
		status = core.Confirmed
	}
	if template.Direction == "" {
		template.Direction = core.Expense
	}

	groupID := uuid.NewString()
	amounts := SplitCents(template.Amount.Cents, n)
	out := make([]core.Transaction, n)
	for i, cents := range amounts {
		tx := template
		tx.ID = ""
		tx.Amount = core.Cents(cents)
		tx.Kind = core.KindInstallment
		tx.Installment = &core.Installment{GroupID: groupID, Current: i + 1, Total: n}
		tx.InvoiceMonth = firstYM.AddMonths(i).String()
		if dueDay > 0 {
			tx.ChargeDate = billing.DueDate(tx.InvoiceMonth, dueDay)
		}
		if n > 1 {
			tx.Description = fmt.Sprintf("%s (%d/%d)", template.Description, i+1, n)
		}
		tx.Status = core.Planned
		if i == 0 {
			tx.Status = status
		}
		out[i] = tx
	}
	return out, nil
}
