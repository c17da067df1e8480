// Package aggregation builds the monthly summary matrix: income per account,
// card spend per card and recurring bills per bill group, with year and
// grand totals and a signed result row.
package aggregation

import (
	"time"

	"github.com/shopspring/decimal"

	"fatura/internal/core"
)

type ColumnKind string

const (
	ColumnMonth      ColumnKind = "month"
	ColumnYearTotal  ColumnKind = "year_total"
	ColumnGrandTotal ColumnKind = "grand_total"
)

// Row labels shown in the rendered table.
const (
	LabelIncome         = "Entradas"
	LabelCards          = "Cartões"
	LabelBills          = "Contas"
	LabelResult         = "RESULTADO"
	LabelUnknownAccount = "Conta desconhecida"
	UnknownAccountID    = "unknown"
)

// maxBillMonths caps the months a single bill group is replicated over.
const maxBillMonths = 240

type Column struct {
	Key   string     `json:"key"`
	Label string     `json:"label"`
	Kind  ColumnKind `json:"kind"`
	Year  int        `json:"year"`
	Month int        `json:"month,omitempty"`
}

// Row holds one value per matrix column, in cents.
type Row struct {
	ID    string  `json:"id"`
	Label string  `json:"label"`
	Cents []int64 `json:"cents"`
}

type Section struct {
	Name  string `json:"name"`
	Total Row    `json:"total"`
	Rows  []Row  `json:"rows"`
}

// Matrix is the full summary. Every row has len(Columns) values.
type Matrix struct {
	Columns []Column `json:"columns"`
	Income  Section  `json:"income"`
	Cards   Section  `json:"cards"`
	Bills   Section  `json:"bills"`
	Result  Row      `json:"result"`
}

// Input is everything the engine reads. Now picks the baseline year.
type Input struct {
	Transactions []core.Transaction
	Accounts     []core.Account
	Bills        []core.Bill
	Now          time.Time
}

// Amounts returns the row values in currency units.
func (r Row) Amounts() []decimal.Decimal {
	out := make([]decimal.Decimal, len(r.Cents))
	for i, c := range r.Cents {
		out[i] = decimal.New(c, -2)
	}
	return out
}

// Value returns the cents stored under a column key, or 0.
func (m *Matrix) Value(r Row, key string) int64 {
	for i, c := range m.Columns {
		if c.Key == key {
			return r.Cents[i]
		}
	}
	return 0
}

// Years lists the calendar years the matrix spans.
func (m *Matrix) Years() []int {
	var years []int
	for _, c := range m.Columns {
		if c.Kind == ColumnYearTotal {
			years = append(years, c.Year)
		}
	}
	return years
}
