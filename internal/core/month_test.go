package core

import "testing"

func TestYearMonthArithmetic(t *testing.T) {
	cases := []struct {
		start YearMonth
		n     int
		want  string
	}{
		{YearMonth{2026, 1}, -1, "2025-12"},
		{YearMonth{2025, 12}, 1, "2026-01"},
		{YearMonth{2026, 3}, 24, "2028-03"},
		{YearMonth{2026, 3}, -15, "2024-12"},
	}
	for _, tc := range cases {
		if got := tc.start.AddMonths(tc.n).String(); got != tc.want {
			t.Fatalf("%v + %d = %s, want %s", tc.start, tc.n, got, tc.want)
		}
	}
	if NewYearMonth(2025, 13).String() != "2026-01" {
		t.Fatal("month overflow not normalized")
	}
}

func TestParseYearMonth(t *testing.T) {
	cases := map[string]string{
		"2026-02":              "2026-02",
		"2026-02-01":           "2026-02",
		"2026-02-17T10:00:00Z": "2026-02",
		"2026-13":              "",
		"2026/02":              "",
		"":                     "",
		"garbage":              "",
	}
	for in, want := range cases {
		if got := MonthOf(in); got != want {
			t.Fatalf("MonthOf(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDaysIn(t *testing.T) {
	if d := (YearMonth{2024, 2}).DaysIn(); d != 29 {
		t.Fatalf("leap february got %d", d)
	}
	if d := (YearMonth{2026, 4}).DaysIn(); d != 30 {
		t.Fatalf("april got %d", d)
	}
}

func TestFoldAndSlugify(t *testing.T) {
	if got := Fold("  Cartão   NUBANK "); got != "cartao nubank" {
		t.Fatalf("Fold got %q", got)
	}
	if got := Slugify("Alimentação & Mercado"); got != "alimentacao-mercado" {
		t.Fatalf("Slugify got %q", got)
	}
}
