package google

import (
	"context"
	"strings"
	"testing"
	"time"

	"fatura/internal/aggregation"
	"fatura/internal/core"
)

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Options{CredentialsJSON: "{}"})
	if err == nil || err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNew_MissingCredentials(t *testing.T) {
	_, err := New(context.Background(), Options{SpreadsheetID: "sheet"})
	if err == nil || !strings.Contains(err.Error(), "missing service account credentials") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNew_UnreadableCredentialsFile(t *testing.T) {
	_, err := New(context.Background(), Options{SpreadsheetID: "sheet", CredentialsFile: "/nonexistent/sa.json"})
	if err == nil || !strings.Contains(err.Error(), "read service account file") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNewFromEnv_MissingSpreadsheetID(t *testing.T) {
	t.Setenv("GOOGLE_SPREADSHEET_ID", "")
	if _, err := NewFromEnv(context.Background()); err == nil {
		t.Fatal("expected error for missing GOOGLE_SPREADSHEET_ID")
	}
}

func TestClient_NotInitialized(t *testing.T) {
	c := &Client{spreadsheetID: "test", sheetBase: "Resumo"}
	if err := c.ExportMatrix(context.Background(), 2026, &aggregation.Matrix{}); err == nil {
		t.Error("expected error with nil service")
	}
	if _, err := c.ReadTable(context.Background(), 2026); err == nil {
		t.Error("expected error with nil service")
	}
	if got := c.SheetName(2026); got != "2026 Resumo" {
		t.Errorf("SheetName = %q", got)
	}
}

func TestYearPrefixedName(t *testing.T) {
	tests := []struct {
		base string
		year int
		want string
	}{
		{"Resumo", 2026, "2026 Resumo"},
		{"  Resumo  ", 2025, "2025 Resumo"},
		{"2024 Resumo", 2026, "2024 Resumo"},
		{"", 2026, ""},
		{"12345", 2026, "2026 12345"},
	}
	for _, tt := range tests {
		if got := yearPrefixedName(tt.base, tt.year); got != tt.want {
			t.Errorf("yearPrefixedName(%q, %d) = %q, want %q", tt.base, tt.year, got, tt.want)
		}
	}
}

func TestA1Range(t *testing.T) {
	if got := a1Range("2026 Resumo", "A1"); got != "'2026 Resumo'!A1" {
		t.Errorf("a1Range = %q", got)
	}
	if got := a1Range("Ana's", "A:ZZ"); got != "'Ana''s'!A:ZZ" {
		t.Errorf("a1Range = %q", got)
	}
}

func TestCellCents(t *testing.T) {
	tests := []struct {
		cell string
		want int64
		ok   bool
	}{
		{"-", 0, true},
		{"R$ 1.234,56", 123456, true},
		{"R$ 0,05", 5, true},
		{"-R$ 33,50", -3350, true},
		{"", 0, false},
		{"abc", 0, false},
	}
	for _, tt := range tests {
		got, ok := CellCents(tt.cell)
		if got != tt.want || ok != tt.ok {
			t.Errorf("CellCents(%q) = %d, %v; want %d, %v", tt.cell, got, ok, tt.want, tt.ok)
		}
	}
}

// Format and CellCents must agree, since exported sheets are read back.
func TestCellCentsReadsFormat(t *testing.T) {
	for _, cents := range []int64{0, 1, 99, 100, 123456, 100000000, -250} {
		got, ok := CellCents(aggregation.Format(cents, true))
		if !ok || got != cents {
			t.Errorf("round trip of %d gave %d (ok=%v)", cents, got, ok)
		}
	}
}

func TestRowTotal(t *testing.T) {
	m := aggregation.Build(salaryInput())
	table := m.Table()

	got, ok := RowTotal(table, aggregation.LabelResult, "Total 2026")
	if !ok || got != 500000 {
		t.Errorf("RowTotal(result) = %d, %v", got, ok)
	}
	if _, ok := RowTotal(table, "missing", "Total 2026"); ok {
		t.Error("expected missing label to fail")
	}
	if _, ok := RowTotal(table, aggregation.LabelResult, "Total 1999"); ok {
		t.Error("expected missing column to fail")
	}
	if _, ok := RowTotal(nil, aggregation.LabelResult, "Total 2026"); ok {
		t.Error("expected empty table to fail")
	}
}

func TestToValuesAndBack(t *testing.T) {
	table := [][]string{{"", "jan/26"}, {"Entradas", "R$ 1,00"}}
	values := toValues(table)
	if len(values) != 2 || values[1][1] != "R$ 1,00" {
		t.Fatalf("toValues = %v", values)
	}
	back := toStrings([]any{" a ", 12, 1.5})
	if back[0] != "a" || back[1] != "12" || back[2] != "1.5" {
		t.Errorf("toStrings = %v", back)
	}
}

func salaryInput() aggregation.Input {
	salary := core.Transaction{
		ID:           "t1",
		AccountID:    "chk",
		PurchaseDate: "2026-02-05",
		Description:  "Salário",
		Amount:       core.Cents(500000),
		Direction:    core.Income,
		Status:       core.Paid,
		Kind:         core.KindOneOff,
	}
	return aggregation.Input{
		Accounts:     []core.Account{{ID: "chk", Type: core.Checking, Name: "Conta", Active: true}},
		Transactions: []core.Transaction{salary},
		Now:          time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
	}
}
