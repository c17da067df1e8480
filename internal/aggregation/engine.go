package aggregation

import (
	"sort"

	"fatura/internal/billing"
	"fatura/internal/core"
)

// accountIndex resolves transactions to accounts by id, then by the folded
// legacy card name.
type accountIndex struct {
	byID   map[string]core.Account
	byName map[string]string
}

func newAccountIndex(accounts []core.Account) accountIndex {
	idx := accountIndex{
		byID:   make(map[string]core.Account, len(accounts)),
		byName: make(map[string]string, len(accounts)),
	}
	for _, a := range accounts {
		if a.ID == "" {
			continue
		}
		idx.byID[a.ID] = a
		name := core.Fold(a.Name)
		if _, taken := idx.byName[name]; name != "" && !taken {
			idx.byName[name] = a.ID
		}
	}
	return idx
}

// resolve returns the account id of tx, or "" when nothing matches.
func (idx accountIndex) resolve(tx core.Transaction) string {
	if tx.AccountID != "" {
		return tx.AccountID
	}
	if tx.LegacyCard != "" {
		return idx.byName[core.Fold(tx.LegacyCard)]
	}
	return ""
}

func (idx accountIndex) label(id string) string {
	if a, ok := idx.byID[id]; ok && a.Name != "" {
		return a.Name
	}
	return id
}

// cardSpend is one deduplicated card expense placed at its reference month.
type cardSpend struct {
	card  string
	month string
	cents int64
}

// Build computes the summary matrix. It never fails: transactions and bills
// that cannot be placed are left out.
func Build(in Input) *Matrix {
	idx := newAccountIndex(in.Accounts)

	spends := collectCardSpend(in.Transactions, idx)
	months := make([]string, 0, len(spends))
	for _, s := range spends {
		months = append(months, s.month)
	}
	cols := buildColumns(months, in.Now.Year())

	m := &Matrix{Columns: cols.cols}
	m.Cards = cardSection(cols, idx, in.Accounts, spends)
	m.Income = incomeSection(cols, idx, in.Transactions)
	m.Bills = billSection(cols, in.Bills)

	result := cols.newRow("result", LabelResult)
	for i := range result.Cents {
		result.Cents[i] = m.Income.Total.Cents[i] - (m.Cards.Total.Cents[i] + m.Bills.Total.Cents[i])
	}
	m.Result = *result
	return m
}

func collectCardSpend(txs []core.Transaction, idx accountIndex) []cardSpend {
	seen := make(map[string]bool)
	var out []cardSpend
	for _, tx := range txs {
		id := idx.resolve(tx)
		acc, ok := idx.byID[id]
		if !ok || !acc.Active || !acc.IsCreditCard() {
			continue
		}
		if tx.Direction != core.Expense || tx.IsInvoicePayment() {
			continue
		}
		if tx.ID != "" {
			if seen[tx.ID] {
				continue
			}
			seen[tx.ID] = true
		}
		invoice := tx.InvoiceMonth
		if invoice == "" {
			invoice = billing.InvoiceMonth(tx.PurchaseDate, acc.CutoffDay())
		}
		ref := billing.ReferenceMonth(invoice)
		if ref == "" {
			continue
		}
		out = append(out, cardSpend{card: id, month: ref, cents: tx.Amount.Abs().Cents})
	}
	return out
}

func cardSection(cols columnSet, idx accountIndex, accounts []core.Account, spends []cardSpend) Section {
	rows := make(map[string]*Row)
	for _, a := range accounts {
		if a.ID != "" && a.Active && a.IsCreditCard() {
			rows[a.ID] = cols.newRow(a.ID, idx.label(a.ID))
		}
	}
	for _, s := range spends {
		cols.add(rows[s.card], s.month, s.cents)
	}
	return section(cols, "cards", LabelCards, rows)
}

// incomeMonth is the first readable month among the transaction dates.
func incomeMonth(tx core.Transaction) string {
	for _, d := range []string{tx.PurchaseDate, tx.ChargeDate, tx.Date, tx.CreatedAt} {
		if m := core.MonthOf(d); m != "" {
			return m
		}
	}
	return ""
}

func isIncome(tx core.Transaction) bool {
	return tx.Direction == core.Income && !tx.IsInvoicePayment()
}

func incomeSection(cols columnSet, idx accountIndex, txs []core.Transaction) Section {
	// Rows exist for every account that ever received income, whatever the
	// visible range.
	rows := make(map[string]*Row)
	for _, tx := range txs {
		if !isIncome(tx) {
			continue
		}
		id := idx.resolve(tx)
		if id == "" {
			id = UnknownAccountID
		}
		if _, ok := rows[id]; ok {
			continue
		}
		label := idx.label(id)
		if id == UnknownAccountID {
			label = LabelUnknownAccount
		}
		rows[id] = cols.newRow(id, label)
	}

	for _, tx := range txs {
		if !isIncome(tx) {
			continue
		}
		id := idx.resolve(tx)
		if id == "" {
			id = UnknownAccountID
		}
		cols.add(rows[id], incomeMonth(tx), tx.Amount.Abs().Cents)
	}
	return section(cols, "income", LabelIncome, rows)
}

func billSection(cols columnSet, bills []core.Bill) Section {
	rows := make(map[string]*Row)
	for _, g := range groupBills(bills) {
		r := cols.newRow(g.key, g.label)
		start, end := cols.first, cols.last
		if g.start != "" {
			if ym, err := core.ParseYearMonth(g.start); err == nil {
				start = ym
			}
		}
		if g.end != "" {
			if ym, err := core.ParseYearMonth(g.end); err == nil {
				end = ym
			}
		}
		cur := start
		for i := 0; i < maxBillMonths && !cur.After(end); i++ {
			cols.add(r, cur.String(), g.cents)
			cur = cur.AddMonths(1)
		}
		rows[g.key] = r
	}
	return section(cols, "bills", LabelBills, rows)
}

// section totals each row, sorts rows by label then id and sums the section.
// The unknown-account row always sorts last.
func section(cols columnSet, id, name string, rows map[string]*Row) Section {
	s := Section{Name: name, Rows: make([]Row, 0, len(rows))}
	for _, r := range rows {
		cols.total(r)
		s.Rows = append(s.Rows, *r)
	}
	sort.Slice(s.Rows, func(i, j int) bool {
		a, b := s.Rows[i], s.Rows[j]
		if (a.ID == UnknownAccountID) != (b.ID == UnknownAccountID) {
			return b.ID == UnknownAccountID
		}
		if a.Label != b.Label {
			return a.Label < b.Label
		}
		return a.ID < b.ID
	})

	total := cols.newRow(id, name)
	for _, r := range s.Rows {
		for i, c := range r.Cents {
			total.Cents[i] += c
		}
	}
	s.Total = *total
	return s
}
