package aggregation

import (
	"regexp"
	"strconv"
	"strings"

	"fatura/internal/core"
)

var installmentMarkers = []*regexp.Regexp{
	regexp.MustCompile(`\(\s*\d+\s*/\s*\d+\s*\)`),
	regexp.MustCompile(`(?i)\bparcela\s+\d+\s*(de|/)\s*\d+\b`),
	regexp.MustCompile(`\b\d+\s*/\s*\d+\b`),
}

// billName folds a bill name and strips installment markers such as
// "(3/12)", "3/12" and "parcela 3 de 12".
func billName(name string) string {
	n := core.Fold(name)
	for _, re := range installmentMarkers {
		n = re.ReplaceAllString(n, " ")
	}
	n = strings.Join(strings.Fields(n), " ")
	return strings.Trim(n, " -–")
}

// BillKey returns the grouping key of a bill. An installment series id
// always wins over the fingerprint.
func BillKey(b core.Bill) string {
	if b.InstallmentGroupID != "" {
		return "group:" + b.InstallmentGroupID
	}
	return "bill:" + strings.Join([]string{
		billName(b.Name),
		core.Fold(b.Payee),
		b.CategoryID,
		core.Fold(b.Kind),
		strconv.FormatInt(b.DefaultAmount.Abs().Cents, 10),
		strconv.Itoa(b.DayOfMonth),
	}, "|")
}

type billGroup struct {
	key   string
	label string
	cents int64
	start string
	end   string
}

// groupBills merges active non-invoice bills by key. A group keeps the
// first bill's amount and spans the earliest start to the latest end; an
// open start or end on any member leaves that side open.
func groupBills(bills []core.Bill) []*billGroup {
	byKey := make(map[string]*billGroup)
	openStart := make(map[string]bool)
	openEnd := make(map[string]bool)
	var order []*billGroup

	for _, b := range bills {
		if !b.Active || b.IsInvoice() {
			continue
		}
		key := BillKey(b)
		start, end := core.MonthOf(b.StartMonth), core.MonthOf(b.EndMonth)

		g, ok := byKey[key]
		if !ok {
			label := stripMarkers(b.Name)
			if label == "" {
				label = b.Name
			}
			g = &billGroup{key: key, label: label, cents: b.DefaultAmount.Abs().Cents, start: start, end: end}
			byKey[key] = g
			order = append(order, g)
			openStart[key] = start == ""
			openEnd[key] = end == ""
			continue
		}

		if start == "" {
			openStart[key] = true
		} else if g.start == "" || start < g.start {
			g.start = start
		}
		if end == "" {
			openEnd[key] = true
		} else if end > g.end {
			g.end = end
		}
	}

	for _, g := range order {
		if openStart[g.key] {
			g.start = ""
		}
		if openEnd[g.key] {
			g.end = ""
		}
	}
	return order
}

// stripMarkers removes installment markers but keeps the original casing,
// for display.
func stripMarkers(name string) string {
	out := name
	for _, re := range installmentMarkers {
		out = re.ReplaceAllString(out, " ")
	}
	return strings.Trim(strings.Join(strings.Fields(out), " "), " -–")
}
