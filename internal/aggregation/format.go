package aggregation

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

const (
	currencyPrefix   = "R$ "
	zeroPlaceholder  = "-"
	brlIntegerFormat = "#.###," // "." thousands, no decimals; cents are appended after ","
)

// Format renders cents as "R$ 1.234,56". Zero renders as "-". Unsigned
// values are shown as magnitudes; signed values keep a leading minus.
func Format(cents int64, signed bool) string {
	if cents == 0 {
		return zeroPlaceholder
	}
	neg := cents < 0
	if neg {
		cents = -cents
	}
	s := fmt.Sprintf("%s%s,%02d", currencyPrefix, humanize.FormatInteger(brlIntegerFormat, int(cents/100)), cents%100)
	if neg && signed {
		return "-" + s
	}
	return s
}

// Display formats every value of the row.
func (r Row) Display(signed bool) []string {
	out := make([]string, len(r.Cents))
	for i, c := range r.Cents {
		out[i] = Format(c, signed)
	}
	return out
}

// Table renders the matrix as text cells: a header row, then each section
// total followed by its rows, then the result row.
func (m *Matrix) Table() [][]string {
	header := make([]string, 0, len(m.Columns)+1)
	header = append(header, "")
	for _, c := range m.Columns {
		header = append(header, c.Label)
	}
	table := [][]string{header}

	line := func(label string, r Row, signed bool) []string {
		return append([]string{label}, r.Display(signed)...)
	}
	for _, s := range []Section{m.Income, m.Cards, m.Bills} {
		table = append(table, line(s.Name, s.Total, false))
		for _, r := range s.Rows {
			table = append(table, line("  "+r.Label, r, false))
		}
	}
	table = append(table, line(m.Result.Label, m.Result, true))
	return table
}
