package installments

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name  string
		total float64
		n     int
		want  []float64
	}{
		{name: "remainder goes to the first installments", total: 123.23, n: 4, want: []float64{30.81, 30.81, 30.81, 30.80}},
		{name: "single installment", total: 99.999, n: 1, want: []float64{100.00}},
		{name: "even split", total: 100, n: 4, want: []float64{25, 25, 25, 25}},
		{name: "one cent over three", total: 0.01, n: 3, want: []float64{0.01, 0, 0}},
		{name: "negative total", total: -0.10, n: 3, want: []float64{-0.03, -0.03, -0.04}},
		{name: "not a number", total: math.NaN(), n: 2, want: []float64{0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Split(tt.total, tt.n))
		})
	}
}

func TestSplitInvalidCount(t *testing.T) {
	assert.Nil(t, Split(10, 0))
	assert.Nil(t, SplitCents(1000, -1))
}

func TestSplitCentsProperties(t *testing.T) {
	totals := []int64{0, 1, 7, 99, 100, 12323, 99999, -1, -10, -12323, 1_000_000_007}
	for _, total := range totals {
		for n := 1; n <= 13; n++ {
			parts := SplitCents(total, n)
			require.Len(t, parts, n)

			var sum int64
			lo, hi := parts[0], parts[0]
			for i, p := range parts {
				sum += p
				lo = min(lo, p)
				hi = max(hi, p)
				if i > 0 {
					assert.LessOrEqual(t, p, parts[i-1], "parts must be non-increasing (total=%d n=%d)", total, n)
				}
			}
			assert.Equal(t, total, sum, "total=%d n=%d", total, n)
			assert.LessOrEqual(t, hi-lo, int64(1), "total=%d n=%d", total, n)
		}
	}
}

func TestToCentsRoundsHalfUp(t *testing.T) {
	assert.Equal(t, int64(12323), ToCents(123.23))
	assert.Equal(t, int64(1), ToCents(0.005))
	assert.Equal(t, int64(0), ToCents(-0.005))
	assert.Equal(t, int64(0), ToCents(math.Inf(1)))
}
