package core

import (
	"fmt"
	"strings"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	MonthLayout = "2006-01"
)

// YearMonth identifies a calendar month.
type YearMonth struct {
	Year  int
	Month int
}

// NewYearMonth normalizes month overflow, so NewYearMonth(2025, 13) is 2026-01.
func NewYearMonth(year, month int) YearMonth {
	idx := year*12 + (month - 1)
	return fromIndex(idx)
}

func fromIndex(idx int) YearMonth {
	y := idx / 12
	m := idx % 12
	if m < 0 {
		m += 12
		y--
	}
	return YearMonth{Year: y, Month: m + 1}
}

// Index returns a monotonically increasing month number, handy for ranges.
func (ym YearMonth) Index() int { return ym.Year*12 + ym.Month - 1 }

func (ym YearMonth) AddMonths(n int) YearMonth { return fromIndex(ym.Index() + n) }

func (ym YearMonth) Before(o YearMonth) bool { return ym.Index() < o.Index() }

func (ym YearMonth) After(o YearMonth) bool { return ym.Index() > o.Index() }

func (ym YearMonth) IsZero() bool { return ym.Year == 0 && ym.Month == 0 }

func (ym YearMonth) String() string {
	if ym.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d", ym.Year, ym.Month)
}

// FirstDay returns the month in the YYYY-MM-01 form used on the wire.
func (ym YearMonth) FirstDay() string {
	if ym.IsZero() {
		return ""
	}
	return ym.String() + "-01"
}

// DaysIn returns the number of days in the month.
func (ym YearMonth) DaysIn() int {
	return time.Date(ym.Year, time.Month(ym.Month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ParseYearMonth accepts "YYYY-MM" and anything that starts with
// "YYYY-MM-DD" (dates and RFC 3339 timestamps), truncating to the month.
func ParseYearMonth(s string) (YearMonth, error) {
	s = strings.TrimSpace(s)
	if len(s) < 7 {
		return YearMonth{}, ErrInvalidMonth
	}
	t, err := time.Parse(MonthLayout, s[:7])
	if err != nil {
		return YearMonth{}, ErrInvalidMonth
	}
	if len(s) > 7 && s[7] != '-' {
		return YearMonth{}, ErrInvalidMonth
	}
	return YearMonth{Year: t.Year(), Month: int(t.Month())}, nil
}

// MonthOf truncates a date, timestamp or month string to YYYY-MM. It returns
// "" when s cannot be read.
func MonthOf(s string) string {
	ym, err := ParseYearMonth(s)
	if err != nil {
		return ""
	}
	return ym.String()
}

// MonthFromTime returns the YearMonth of t.
func MonthFromTime(t time.Time) YearMonth {
	return YearMonth{Year: t.Year(), Month: int(t.Month())}
}

// ParseDate parses an ISO YYYY-MM-DD date. Timestamps are truncated to the date.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) < 10 {
		return time.Time{}, ErrInvalidDate
	}
	t, err := time.Parse(DateLayout, s[:10])
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// FormatDate renders t as YYYY-MM-DD.
func FormatDate(t time.Time) string { return t.Format(DateLayout) }
