package core

import "testing"

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"1.005", 101, true},
		{"-12.345", -1235, true},
		{"1.234,56", 123456, true},
		{"1,234.56", 123456, true},
		{"R$ 10,00", 1000, true},
		{"1,2,3", 0, false},
		{"abc", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"0.01", 1, true},
		{" 2.50 ", 250, true},
		{"-1", 0, false},
		{"0", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestMoneyString(t *testing.T) {
	if got := Cents(123456).String(); got != "1234.56" {
		t.Fatalf("got %q", got)
	}
	if got := Cents(-5).String(); got != "-0.05" {
		t.Fatalf("got %q", got)
	}
	if got := Cents(-5).Abs(); got.Cents != 5 {
		t.Fatalf("abs got %d", got.Cents)
	}
}
