// Package billing resolves which credit-card invoice a purchase belongs to.
//
// A card closes its statement on the cutoff day. Purchases made on or
// before the cutoff land in the invoice of the same month; later purchases
// roll into the next month's invoice. Nothing here returns an error: bad
// input degrades to the best answer available.
package billing

import (
	"fmt"
	"strconv"
	"strings"

	"fatura/internal/core"
)

// InvoiceMonth returns the YYYY-MM invoice a purchase made on purchaseDate
// (YYYY-MM-DD) falls into for a card with the given cutoff day. A cutoff that
// is not positive leaves the purchase in its own month. Only the month and
// the day number are read, so "2026-02-30" still resolves. An unparseable
// date yields "".
func InvoiceMonth(purchaseDate string, cutoffDay int) string {
	base, day, ok := splitDate(purchaseDate)
	if !ok {
		return ""
	}
	if cutoffDay <= 0 || day <= cutoffDay {
		return base.String()
	}
	return base.AddMonths(1).String()
}

// splitDate reads YYYY-MM-DD component by component. The day only has to
// be in 1..31.
func splitDate(s string) (core.YearMonth, int, bool) {
	s = strings.TrimSpace(s)
	if len(s) < 10 || s[7] != '-' {
		return core.YearMonth{}, 0, false
	}
	ym, err := core.ParseYearMonth(s[:7])
	if err != nil {
		return core.YearMonth{}, 0, false
	}
	day, err := strconv.Atoi(s[8:10])
	if err != nil || day < 1 || day > 31 {
		return core.YearMonth{}, 0, false
	}
	return ym, day, true
}

// ReferenceMonth returns the month a purchase billed in invoiceMonth was
// actually made in: one month earlier. Dates are accepted and truncated.
func ReferenceMonth(invoiceMonth string) string {
	ym, err := core.ParseYearMonth(invoiceMonth)
	if err != nil {
		return ""
	}
	return ym.AddMonths(-1).String()
}

// ForAccount resolves the invoice month for a purchase on the given account.
// Non-card accounts and missing accounts keep the purchase month.
func ForAccount(purchaseDate string, account *core.Account) string {
	if account == nil || !account.IsCreditCard() {
		return InvoiceMonth(purchaseDate, 0)
	}
	return InvoiceMonth(purchaseDate, account.CutoffDay())
}

// DueDate returns the YYYY-MM-DD payment date of an invoice, clamping the
// due day to the length of the month. It returns "" on bad input.
func DueDate(invoiceMonth string, dueDay int) string {
	ym, err := core.ParseYearMonth(invoiceMonth)
	if err != nil || dueDay <= 0 {
		return ""
	}
	if last := ym.DaysIn(); dueDay > last {
		dueDay = last
	}
	return fmt.Sprintf("%s-%02d", ym, dueDay)
}
