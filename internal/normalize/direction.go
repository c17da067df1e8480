// Package normalize converts REST payloads into the canonical core model
// and back.
//
// Payloads in the wild mix snake_case and camelCase, Portuguese and English
// enum values, signed and unsigned amounts, and YYYY-MM-01 invoice months.
// All of that is resolved here, once, on ingress. Business logic only ever
// sees core types with unsigned amounts and an explicit direction.
package normalize

import (
	"strings"

	"fatura/internal/core"
)

var incomeWords = map[string]bool{
	"in": true, "income": true, "entrada": true, "receita": true,
	"credit": true, "credito": true, "deposit": true, "inflow": true,
}

var expenseWords = map[string]bool{
	"out": true, "expense": true, "saida": true, "despesa": true,
	"debit": true, "debito": true, "outflow": true, "gasto": true,
}

// ClassifyDirection resolves a movement direction. Recognized direction text
// wins; otherwise the sign of signedCents decides, positive meaning income.
// With no usable text and a zero amount the movement counts as an expense.
func ClassifyDirection(raw string, signedCents int64) core.Direction {
	word := core.Fold(raw)
	switch {
	case incomeWords[word]:
		return core.Income
	case expenseWords[word]:
		return core.Expense
	case signedCents > 0:
		return core.Income
	default:
		return core.Expense
	}
}

// Status maps English and Portuguese status spellings. Unknown or empty
// values are treated as confirmed.
func Status(raw string) core.Status {
	switch core.Fold(raw) {
	case "planned", "planejado", "previsto", "pending", "pendente", "scheduled", "agendado":
		return core.Planned
	case "paid", "pago", "quitado", "settled":
		return core.Paid
	case "overdue", "atrasado", "vencido", "late":
		return core.Overdue
	default:
		return core.Confirmed
	}
}

// Kind maps the free-text transaction kind. Anything that mentions a payment
// is an invoice payment.
func Kind(raw string) core.Kind {
	k := core.Fold(raw)
	switch {
	case k == "":
		return core.KindOneOff
	case strings.Contains(k, "bill_payment"), strings.Contains(k, "invoice_payment"), strings.Contains(k, "payment"):
		return core.KindInvoicePayment
	case strings.Contains(k, "installment"), strings.Contains(k, "parcela"):
		return core.KindInstallment
	case strings.Contains(k, "recurring"), strings.Contains(k, "recorrente"), k == "fixed", k == "fixa":
		return core.KindRecurring
	default:
		return core.KindOneOff
	}
}

// AccountType maps account type spellings. Unknown values fall back to
// checking unless the payload carried a statement.
func AccountType(raw string, hasStatement bool) core.AccountType {
	switch core.Fold(raw) {
	case "credit_card", "creditcard", "credit", "card", "cartao", "cartao_credito", "cartao de credito":
		return core.CreditCard
	case "checking", "conta", "conta_corrente", "conta corrente", "bank", "debit":
		return core.Checking
	}
	if hasStatement {
		return core.CreditCard
	}
	return core.Checking
}

// InvoiceMonthToWire renders YYYY-MM as the YYYY-MM-01 form the API stores.
func InvoiceMonthToWire(month string) string {
	ym, err := core.ParseYearMonth(month)
	if err != nil {
		return ""
	}
	return ym.FirstDay()
}

// InvoiceMonthFromWire truncates YYYY-MM-01 (or any date) to YYYY-MM.
func InvoiceMonthFromWire(s string) string {
	return core.MonthOf(s)
}

func normalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if t, err := core.ParseDate(s); err == nil {
		return core.FormatDate(t)
	}
	return s
}
