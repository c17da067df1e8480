// Package installments splits a purchase into equal installments that add
// up exactly to the original amount.
package installments

import (
	"math"

	"github.com/shopspring/decimal"
)

// SplitCents divides totalCents into n parts. Remainder cents go to the
// first parts, so every part differs from another by at most one cent and
// the parts sum to totalCents.
//
// The quotient is floored, not truncated, so the remainder is always in
// [0, n). For negative totals this puts the less negative values first:
// SplitCents(-10, 3) is [-3, -3, -4]. It returns nil when n < 1.
func SplitCents(totalCents int64, n int) []int64 {
	if n < 1 {
		return nil
	}
	div := int64(n)
	base := floorDiv(totalCents, div)
	rem := totalCents - base*div

	out := make([]int64, n)
	for i := range out {
		out[i] = base
		if int64(i) < rem {
			out[i]++
		}
	}
	return out
}

// Split divides a decimal total into n installments. The total is first
// rounded to cents half up (floor(total*100 + 0.5)), including for negative
// totals; non-finite totals count as zero.
func Split(total float64, n int) []float64 {
	parts := SplitCents(ToCents(total), n)
	if parts == nil {
		return nil
	}
	out := make([]float64, len(parts))
	for i, c := range parts {
		out[i] = decimal.New(c, -2).InexactFloat64()
	}
	return out
}

// ToCents rounds a decimal amount to whole cents, half up.
func ToCents(total float64) int64 {
	if math.IsNaN(total) || math.IsInf(total, 0) {
		return 0
	}
	return int64(math.Floor(total*100 + 0.5))
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
