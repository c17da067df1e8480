// Package core provides money parsing and handling utilities.
//
// Money is always kept in integer cents. Conversion to and from decimal
// strings goes through shopspring/decimal so no float rounding leaks into
// stored values.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Money is an amount in cents. Inside the core it is a magnitude; the
// direction of a movement is carried separately.
type Money struct {
	Cents int64 `json:"cents"`
}

// Cents is a shorthand constructor.
func Cents(c int64) Money { return Money{Cents: c} }

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Abs returns the magnitude of m.
func (m Money) Abs() Money {
	if m.Cents < 0 {
		return Money{Cents: -m.Cents}
	}
	return m
}

func (m Money) Add(o Money) Money { return Money{Cents: m.Cents + o.Cents} }

func (m Money) IsZero() bool { return m.Cents == 0 }

// Decimal returns the amount in currency units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// String renders the amount with two decimal places and a dot separator.
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// FromDecimal converts currency units to cents, rounding half away from zero.
func FromDecimal(d decimal.Decimal) Money {
	return Money{Cents: d.Shift(2).Round(0).IntPart()}
}

// ParseAmount converts a decimal string to signed cents.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators, and
// thousands separators when both are present ("1.234,56" or "1,234.56").
// Rounding is half away from zero on the third decimal place.
//
// Examples:
//
//	ParseAmount("12.34")    -> 1234, nil
//	ParseAmount("12,345")   -> 1235, nil
//	ParseAmount("-1.234,5") -> -123450, nil
func ParseAmount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "R$")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")
	switch {
	case lastDot >= 0 && lastComma >= 0 && lastComma > lastDot:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case lastDot >= 0 && lastComma >= 0:
		s = strings.ReplaceAll(s, ",", "")
	case lastComma >= 0:
		if strings.Count(s, ",") > 1 {
			return 0, ErrInvalidAmount
		}
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	const maxUnits = (1<<63 - 1) / 1000
	if d.Abs().GreaterThan(decimal.NewFromInt(maxUnits)) {
		return 0, ErrInvalidAmount
	}
	return FromDecimal(d).Cents, nil
}

// ParseDecimalToCents parses a strictly positive amount, as typed in a form.
func ParseDecimalToCents(s string) (int64, error) {
	cents, err := ParseAmount(s)
	if err != nil {
		return 0, err
	}
	if strings.HasPrefix(strings.TrimSpace(s), "-") || cents <= 0 {
		return 0, ErrInvalidAmount
	}
	return cents, nil
}
