package aggregation

import (
	"fmt"
	"strconv"

	"fatura/internal/core"
)

var monthAbbrev = [12]string{"jan", "fev", "mar", "abr", "mai", "jun", "jul", "ago", "set", "out", "nov", "dez"}

// columnSet is the column layout plus an index from month key to column.
type columnSet struct {
	cols    []Column
	byMonth map[string]int
	first   core.YearMonth
	last    core.YearMonth
}

// buildColumns spans every year between the earliest and latest of months
// and the baseline year. Each year gets 12 month columns and a subtotal.
func buildColumns(months []string, baseline int) columnSet {
	minYear, maxYear := baseline, baseline
	for _, m := range months {
		ym, err := core.ParseYearMonth(m)
		if err != nil {
			continue
		}
		minYear = min(minYear, ym.Year)
		maxYear = max(maxYear, ym.Year)
	}

	cs := columnSet{
		byMonth: make(map[string]int),
		first:   core.YearMonth{Year: minYear, Month: 1},
		last:    core.YearMonth{Year: maxYear, Month: 12},
	}
	for y := minYear; y <= maxYear; y++ {
		for mo := 1; mo <= 12; mo++ {
			ym := core.YearMonth{Year: y, Month: mo}
			cs.byMonth[ym.String()] = len(cs.cols)
			cs.cols = append(cs.cols, Column{
				Key:   ym.String(),
				Label: fmt.Sprintf("%s/%02d", monthAbbrev[mo-1], y%100),
				Kind:  ColumnMonth,
				Year:  y,
				Month: mo,
			})
		}
		cs.cols = append(cs.cols, Column{
			Key:   strconv.Itoa(y),
			Label: "Total " + strconv.Itoa(y),
			Kind:  ColumnYearTotal,
			Year:  y,
		})
	}
	cs.cols = append(cs.cols, Column{Key: "total", Label: "Total geral", Kind: ColumnGrandTotal})
	return cs
}

func (cs columnSet) newRow(id, label string) *Row {
	return &Row{ID: id, Label: label, Cents: make([]int64, len(cs.cols))}
}

// add puts cents into the month column; months outside the range are dropped.
func (cs columnSet) add(r *Row, month string, cents int64) bool {
	i, ok := cs.byMonth[month]
	if !ok {
		return false
	}
	r.Cents[i] += cents
	return true
}

// total fills the year subtotal and grand total columns from the months.
func (cs columnSet) total(r *Row) {
	var year, grand int64
	for i, c := range cs.cols {
		switch c.Kind {
		case ColumnMonth:
			year += r.Cents[i]
		case ColumnYearTotal:
			r.Cents[i] = year
			grand += year
			year = 0
		case ColumnGrandTotal:
			r.Cents[i] = grand
		}
	}
}
