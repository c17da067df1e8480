package google

import (
	"fmt"
	"strconv"
	"strings"

	"fatura/internal/core"
)

// yearPrefixedName returns "<year> <base>" unless base already starts with a 4-digit year.
func yearPrefixedName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return base
	}
	if len(base) >= 5 {
		if y, err := strconv.Atoi(base[0:4]); err == nil && base[4] == ' ' && y > 1900 && y < 3000 {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}

// a1Range quotes sheet for A1 notation; names with spaces need it.
func a1Range(sheet, cells string) string {
	return fmt.Sprintf("'%s'!%s", strings.ReplaceAll(sheet, "'", "''"), cells)
}

func toValues(table [][]string) [][]any {
	out := make([][]any, len(table))
	for i, row := range table {
		cells := make([]any, len(row))
		for j, v := range row {
			cells[j] = v
		}
		out[i] = cells
	}
	return out
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func indexOf(arr []string, target string) int {
	for i, v := range arr {
		if strings.EqualFold(strings.TrimSpace(v), strings.TrimSpace(target)) {
			return i
		}
	}
	return -1
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}

// CellCents reads a rendered amount back into cents. The zero placeholder
// "-" is 0; "-R$ 1,00" keeps its sign.
func CellCents(cell string) (int64, bool) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return 0, false
	}
	if cell == "-" {
		return 0, true
	}
	negative := strings.HasPrefix(cell, "-")
	cents, err := core.ParseAmount(strings.TrimPrefix(cell, "-"))
	if err != nil {
		return 0, false
	}
	if negative {
		cents = -cents
	}
	return cents, true
}

// RowTotal looks up label in the first column of an exported table and
// returns the amount in the column headed column.
func RowTotal(table [][]string, label, column string) (int64, bool) {
	if len(table) == 0 {
		return 0, false
	}
	col := indexOf(table[0], column)
	if col < 0 {
		return 0, false
	}
	for _, row := range table[1:] {
		if strings.EqualFold(strings.TrimSpace(safeGet(row, 0)), strings.TrimSpace(label)) {
			return CellCents(safeGet(row, col))
		}
	}
	return 0, false
}
