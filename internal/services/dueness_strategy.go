package services

import (
	"strings"
	"sync"
	"time"

	"fatura/internal/core"
)

// DuenessChecker decides whether a bill's planned transaction for the
// current month should be generated now.
type DuenessChecker interface {
	// IsDue reports whether the month of now is due, given the last month a
	// transaction was generated for (zero when never).
	IsDue(lastGenerated core.YearMonth, now time.Time, bill core.Bill) bool
}

// MonthlyChecker generates once per month, LeadDays before the bill's day.
// Days past the end of the month fall on its last day.
type MonthlyChecker struct {
	LeadDays int
}

func (c MonthlyChecker) IsDue(lastGenerated core.YearMonth, now time.Time, bill core.Bill) bool {
	current := core.MonthFromTime(now)
	if !lastGenerated.IsZero() && !lastGenerated.Before(current) {
		return false
	}
	target := bill.DayOfMonth
	if last := current.DaysIn(); target > last {
		target = last
	}
	return now.Day()+c.LeadDays >= target
}

// invoiceLeadDays plans card invoice payments as the statement closes.
const invoiceLeadDays = 10

var (
	duenessMu         sync.RWMutex
	defaultChecker    DuenessChecker = MonthlyChecker{}
	duenessStrategies                = map[string]DuenessChecker{
		"invoice":      MonthlyChecker{LeadDays: invoiceLeadDays},
		"card_invoice": MonthlyChecker{LeadDays: invoiceLeadDays},
		"fatura":       MonthlyChecker{LeadDays: invoiceLeadDays},
	}
)

// GetDuenessChecker returns the checker registered for a bill kind, or the
// default monthly checker.
func GetDuenessChecker(kind string) DuenessChecker {
	duenessMu.RLock()
	defer duenessMu.RUnlock()
	if checker, ok := duenessStrategies[strings.ToLower(strings.TrimSpace(kind))]; ok {
		return checker
	}
	return defaultChecker
}

// RegisterDuenessChecker sets the checker used for bills of kind.
func RegisterDuenessChecker(kind string, checker DuenessChecker) {
	duenessMu.Lock()
	defer duenessMu.Unlock()
	duenessStrategies[strings.ToLower(strings.TrimSpace(kind))] = checker
}
