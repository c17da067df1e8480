package services

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"fatura/internal/amqp"
	"fatura/internal/core"
	"fatura/internal/storage"
)

type fakePublisher struct {
	mu   sync.Mutex
	msgs []*amqp.LedgerChangedMessage
	err  error
}

func (p *fakePublisher) PublishLedgerChange(_ context.Context, msg *amqp.LedgerChangedMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, msg)
	return p.err
}

func (p *fakePublisher) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = nil
}

func (p *fakePublisher) years() []int {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]int, 0, len(p.msgs))
	for _, m := range p.msgs {
		out = append(out, m.Year)
	}
	return out
}

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestLedger(t *testing.T) (*LedgerService, *storage.SQLiteStore, *fakePublisher) {
	t.Helper()
	store, err := storage.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	pub := &fakePublisher{}
	ledger := NewLedgerService(store, pub)
	ledger.now = func() time.Time { return testNow }
	return ledger, store, pub
}

func createCard(t *testing.T, ledger *LedgerService, cutoff, due int) *core.Account {
	t.Helper()
	card := &core.Account{
		Type:      core.CreditCard,
		Name:      "Nubank",
		Active:    true,
		Statement: &core.Statement{CutoffDay: cutoff, DueDay: due},
	}
	if err := ledger.CreateAccount(context.Background(), card); err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}
	return card
}

func createChecking(t *testing.T, ledger *LedgerService) *core.Account {
	t.Helper()
	acc := &core.Account{Type: core.Checking, Name: "Itaú", Active: true}
	if err := ledger.CreateAccount(context.Background(), acc); err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}
	return acc
}

func TestCreateTransactionOnCard(t *testing.T) {
	ledger, _, pub := newTestLedger(t)
	ctx := context.Background()
	card := createCard(t, ledger, 5, 12)
	pub.reset()

	tx := &core.Transaction{
		AccountID:    card.ID,
		PurchaseDate: "2026-03-10",
		Description:  "Mercado",
		Amount:       core.Cents(15990),
	}
	if err := ledger.CreateTransaction(ctx, tx); err != nil {
		t.Fatalf("CreateTransaction failed: %v", err)
	}

	if tx.InvoiceMonth != "2026-04" {
		t.Errorf("Expected invoice month 2026-04, got %q", tx.InvoiceMonth)
	}
	if tx.ChargeDate != "2026-04-12" {
		t.Errorf("Expected charge date 2026-04-12, got %q", tx.ChargeDate)
	}
	if tx.Direction != core.Expense || tx.Status != core.Confirmed || tx.Kind != core.KindOneOff {
		t.Errorf("Unexpected defaults: %s %s %s", tx.Direction, tx.Status, tx.Kind)
	}

	years := pub.years()
	if len(years) != 1 || years[0] != 2026 {
		t.Errorf("Expected one message for 2026, got %v", years)
	}
	if msg := pub.msgs[0]; msg.Entity != EntityTransaction || msg.Op != amqp.OpCreate || msg.ID != tx.ID {
		t.Errorf("Unexpected message: %+v", msg)
	}
}

func TestCreateTransactionAcrossYears(t *testing.T) {
	ledger, _, pub := newTestLedger(t)
	card := createCard(t, ledger, 5, 12)
	pub.reset()

	tx := &core.Transaction{
		AccountID:    card.ID,
		PurchaseDate: "2026-12-20",
		Description:  "Presentes",
		Amount:       core.Cents(30000),
	}
	if err := ledger.CreateTransaction(context.Background(), tx); err != nil {
		t.Fatalf("CreateTransaction failed: %v", err)
	}
	if tx.InvoiceMonth != "2027-01" {
		t.Errorf("Expected invoice month 2027-01, got %q", tx.InvoiceMonth)
	}

	years := pub.years()
	if len(years) != 2 || years[0] != 2026 || years[1] != 2027 {
		t.Errorf("Expected messages for 2026 and 2027, got %v", years)
	}
}

func TestCreateTransactionOnChecking(t *testing.T) {
	ledger, _, _ := newTestLedger(t)
	acc := createChecking(t, ledger)

	tx := &core.Transaction{
		AccountID:    acc.ID,
		PurchaseDate: "2026-03-15",
		Description:  "Salário",
		Amount:       core.Cents(500000),
		Direction:    core.Income,
	}
	if err := ledger.CreateTransaction(context.Background(), tx); err != nil {
		t.Fatalf("CreateTransaction failed: %v", err)
	}
	if tx.InvoiceMonth != "" {
		t.Errorf("Expected no invoice month, got %q", tx.InvoiceMonth)
	}
	if tx.ChargeDate != "2026-03-15" {
		t.Errorf("Expected charge date to follow the purchase, got %q", tx.ChargeDate)
	}
}

func TestCreateTransactionValidation(t *testing.T) {
	ledger, store, pub := newTestLedger(t)
	ctx := context.Background()

	tests := []struct {
		name string
		tx   core.Transaction
	}{
		{"unknown account", core.Transaction{AccountID: "missing", Description: "x", Amount: core.Cents(100)}},
		{"empty description", core.Transaction{Description: "  ", Amount: core.Cents(100)}},
		{"zero amount", core.Transaction{Description: "x"}},
		{"bad direction", core.Transaction{Description: "x", Amount: core.Cents(100), Direction: "sideways"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := tt.tx
			err := ledger.CreateTransaction(ctx, &tx)
			if !errors.Is(err, ErrValidation) {
				t.Errorf("Expected ErrValidation, got %v", err)
			}
		})
	}

	if got, _ := store.ListTransactions(ctx, storage.TransactionFilter{}); len(got) != 0 {
		t.Errorf("Expected nothing stored, got %d transactions", len(got))
	}
	if len(pub.years()) != 0 {
		t.Errorf("Expected no messages, got %v", pub.years())
	}
}

func TestUpdateTransactionResolvesInvoiceAgain(t *testing.T) {
	ledger, store, _ := newTestLedger(t)
	ctx := context.Background()
	card := createCard(t, ledger, 5, 12)

	tx := &core.Transaction{
		AccountID:    card.ID,
		PurchaseDate: "2026-03-03",
		Description:  "Farmácia",
		Amount:       core.Cents(4500),
	}
	if err := ledger.CreateTransaction(ctx, tx); err != nil {
		t.Fatalf("CreateTransaction failed: %v", err)
	}
	if tx.InvoiceMonth != "2026-03" {
		t.Fatalf("Expected invoice month 2026-03, got %q", tx.InvoiceMonth)
	}

	tx.PurchaseDate = "2026-03-20"
	if err := ledger.UpdateTransaction(ctx, tx); err != nil {
		t.Fatalf("UpdateTransaction failed: %v", err)
	}

	got, err := store.GetTransaction(ctx, tx.ID)
	if err != nil {
		t.Fatalf("GetTransaction failed: %v", err)
	}
	if got.InvoiceMonth != "2026-04" || got.ChargeDate != "2026-04-12" {
		t.Errorf("Expected invoice 2026-04 due 2026-04-12, got %q %q", got.InvoiceMonth, got.ChargeDate)
	}
}

func TestDeleteTransactionPublishes(t *testing.T) {
	ledger, store, pub := newTestLedger(t)
	ctx := context.Background()

	tx := &core.Transaction{PurchaseDate: "2025-06-01", Description: "Livro", Amount: core.Cents(8000)}
	if err := ledger.CreateTransaction(ctx, tx); err != nil {
		t.Fatalf("CreateTransaction failed: %v", err)
	}
	pub.reset()

	if err := ledger.DeleteTransaction(ctx, tx.ID); err != nil {
		t.Fatalf("DeleteTransaction failed: %v", err)
	}
	if _, err := store.GetTransaction(ctx, tx.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
	if years := pub.years(); len(years) != 1 || years[0] != 2025 {
		t.Errorf("Expected one message for 2025, got %v", years)
	}
	if err := ledger.DeleteTransaction(ctx, tx.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound on second delete, got %v", err)
	}
}

func TestPublishFailureDoesNotFailWrite(t *testing.T) {
	ledger, store, pub := newTestLedger(t)
	pub.err = errors.New("broker down")

	acc := createChecking(t, ledger)
	if _, err := store.GetAccount(context.Background(), acc.ID); err != nil {
		t.Errorf("Expected account to be stored, got %v", err)
	}
}

func TestOnChangeHooks(t *testing.T) {
	ledger, _, _ := newTestLedger(t)
	calls := 0
	ledger.OnChange(func() { calls++ })

	createChecking(t, ledger)
	bill := &core.Bill{Name: "Aluguel", DefaultAmount: core.Cents(250000), DayOfMonth: 5, Active: true}
	if err := ledger.CreateBill(context.Background(), bill); err != nil {
		t.Fatalf("CreateBill failed: %v", err)
	}
	if calls != 2 {
		t.Errorf("Expected 2 hook calls, got %d", calls)
	}
}

func TestNilPublisher(t *testing.T) {
	store, err := storage.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	ledger := NewLedgerService(store, nil)
	acc := &core.Account{Type: core.Checking, Name: "Caixa", Active: true}
	if err := ledger.CreateAccount(context.Background(), acc); err != nil {
		t.Errorf("CreateAccount without publisher failed: %v", err)
	}
}

func TestBillMonthsNormalized(t *testing.T) {
	ledger, _, _ := newTestLedger(t)
	bill := &core.Bill{
		Name:          "Internet",
		DefaultAmount: core.Cents(9990),
		DayOfMonth:    10,
		StartMonth:    "2026-01-01",
		EndMonth:      "2026-12-31",
		Active:        true,
	}
	if err := ledger.CreateBill(context.Background(), bill); err != nil {
		t.Fatalf("CreateBill failed: %v", err)
	}
	if bill.StartMonth != "2026-01" || bill.EndMonth != "2026-12" {
		t.Errorf("Expected months 2026-01..2026-12, got %q..%q", bill.StartMonth, bill.EndMonth)
	}

	bad := &core.Bill{Name: "Academia", DefaultAmount: core.Cents(100), DayOfMonth: 40}
	if err := ledger.CreateBill(context.Background(), bad); !errors.Is(err, ErrValidation) {
		t.Errorf("Expected ErrValidation for day 40, got %v", err)
	}
}

func TestCategoryWritesAreNotPublished(t *testing.T) {
	ledger, _, pub := newTestLedger(t)
	ctx := context.Background()

	c := &core.Category{Name: "Alimentação", Active: true}
	if err := ledger.CreateCategory(ctx, c); err != nil {
		t.Fatalf("CreateCategory failed: %v", err)
	}
	c.Name = "Comida"
	c.Slug = "comida"
	if err := ledger.UpdateCategory(ctx, c); err != nil {
		t.Fatalf("UpdateCategory failed: %v", err)
	}
	if c.Slug != "alimentacao" {
		t.Errorf("Expected slug to stay alimentacao, got %q", c.Slug)
	}
	if len(pub.years()) != 0 {
		t.Errorf("Expected no messages for categories, got %v", pub.years())
	}
}
