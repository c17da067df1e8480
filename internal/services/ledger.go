// Package services orchestrates the ledger: validation, billing-cycle
// resolution, persistence, change notification and the derived views
// (summary matrix, invoices).
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"fatura/internal/amqp"
	"fatura/internal/billing"
	"fatura/internal/core"
	"fatura/internal/log"
	"fatura/internal/storage"
)

// ErrValidation wraps every input problem reported by the services.
var ErrValidation = errors.New("validation failed")

// Entities named in ledger change messages.
const (
	EntityAccount     = "account"
	EntityTransaction = "transaction"
	EntityBill        = "bill"
)

// LedgerPublisher announces ledger writes. *amqp.Client implements it.
type LedgerPublisher interface {
	PublishLedgerChange(ctx context.Context, msg *amqp.LedgerChangedMessage) error
}

func invalid(err error) error {
	return fmt.Errorf("%w: %w", ErrValidation, err)
}

// LedgerService is the write path for accounts, transactions, bills and
// categories. Every successful write to the ledger publishes a change
// message and runs the registered change hooks.
type LedgerService struct {
	store     storage.Store
	publisher LedgerPublisher
	now       func() time.Time

	mu    sync.Mutex
	hooks []func()
}

// NewLedgerService builds the service. publisher may be nil.
func NewLedgerService(store storage.Store, publisher LedgerPublisher) *LedgerService {
	return &LedgerService{store: store, publisher: publisher, now: time.Now}
}

// OnChange registers fn to run after every ledger write.
func (s *LedgerService) OnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, fn)
}

// changed notifies hooks and publishes one message per affected year.
// Publishing failures are logged and never fail the write.
func (s *LedgerService) changed(ctx context.Context, entity, id, op string, years ...int) {
	s.mu.Lock()
	hooks := append([]func(){}, s.hooks...)
	s.mu.Unlock()
	for _, fn := range hooks {
		fn()
	}

	if s.publisher == nil {
		slog.DebugContext(ctx, "No publisher configured, skipping ledger change", "entity", entity, "id", id)
		return
	}
	if len(years) == 0 {
		years = []int{s.now().Year()}
	}
	for _, year := range uniqueYears(years) {
		msg := amqp.NewLedgerChangedMessage(entity, id, op, year)
		if err := s.publisher.PublishLedgerChange(ctx, msg); err != nil {
			slog.ErrorContext(ctx, "Failed to publish ledger change",
				"entity", entity,
				"id", id,
				"year", year,
				"error", err)
		}
	}
}

func uniqueYears(years []int) []int {
	seen := make(map[int]bool, len(years))
	out := make([]int, 0, len(years))
	for _, y := range years {
		if y <= 0 || seen[y] {
			continue
		}
		seen[y] = true
		out = append(out, y)
	}
	sort.Ints(out)
	return out
}

// transactionYears lists the summary years a transaction shows up in: its
// invoice month, the reference month of that invoice and its own dates.
func transactionYears(t *core.Transaction) []int {
	var years []int
	add := func(month string) {
		if ym, err := core.ParseYearMonth(month); err == nil {
			years = append(years, ym.Year)
		}
	}
	add(t.InvoiceMonth)
	add(billing.ReferenceMonth(t.InvoiceMonth))
	add(t.PurchaseDate)
	add(t.ChargeDate)
	add(t.Date)
	return years
}

// Accounts

func (s *LedgerService) ListAccounts(ctx context.Context) ([]core.Account, error) {
	return s.store.ListAccounts(ctx)
}

func (s *LedgerService) GetAccount(ctx context.Context, id string) (*core.Account, error) {
	return s.store.GetAccount(ctx, id)
}

func (s *LedgerService) CreateAccount(ctx context.Context, a *core.Account) error {
	if err := a.Validate(); err != nil {
		return invalid(err)
	}
	if err := s.store.CreateAccount(ctx, a); err != nil {
		return fmt.Errorf("create account: %w", err)
	}
	slog.InfoContext(ctx, "Account created", "id", a.ID, "type", a.Type)
	s.changed(ctx, EntityAccount, a.ID, amqp.OpCreate)
	return nil
}

func (s *LedgerService) UpdateAccount(ctx context.Context, a *core.Account) error {
	if err := a.Validate(); err != nil {
		return invalid(err)
	}
	if err := s.store.UpdateAccount(ctx, a); err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	s.changed(ctx, EntityAccount, a.ID, amqp.OpUpdate)
	return nil
}

// DeleteAccount removes the account only. Transactions and bills keep
// their now dangling account id.
func (s *LedgerService) DeleteAccount(ctx context.Context, id string) error {
	if err := s.store.DeleteAccount(ctx, id); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	s.changed(ctx, EntityAccount, id, amqp.OpDelete)
	return nil
}

// Transactions

func (s *LedgerService) ListTransactions(ctx context.Context, f storage.TransactionFilter) ([]core.Transaction, error) {
	return s.store.ListTransactions(ctx, f)
}

func (s *LedgerService) GetTransaction(ctx context.Context, id string) (*core.Transaction, error) {
	return s.store.GetTransaction(ctx, id)
}

// prepareTransaction fills defaults and the billing-cycle fields, then
// validates. Card purchases get their invoice month from the cutoff day
// and their charge date from the due day.
func (s *LedgerService) prepareTransaction(ctx context.Context, t *core.Transaction) error {
	t.Description = strings.TrimSpace(t.Description)
	if t.Direction == "" {
		t.Direction = core.Expense
	}
	if t.Status == "" {
		t.Status = core.Confirmed
	}
	if t.Kind == "" {
		t.Kind = core.KindOneOff
		if t.Installment != nil {
			t.Kind = core.KindInstallment
		}
	}

	var account *core.Account
	if t.AccountID != "" {
		a, err := s.store.GetAccount(ctx, t.AccountID)
		switch {
		case errors.Is(err, storage.ErrNotFound):
			return invalid(fmt.Errorf("unknown account %q", t.AccountID))
		case err != nil:
			return fmt.Errorf("load account: %w", err)
		}
		account = a
	}

	purchase := t.PurchaseDate
	if purchase == "" {
		purchase = t.Date
	}
	if account != nil && account.IsCreditCard() {
		if t.InvoiceMonth == "" {
			t.InvoiceMonth = billing.ForAccount(purchase, account)
		}
		if t.ChargeDate == "" && account.Statement != nil {
			t.ChargeDate = billing.DueDate(t.InvoiceMonth, account.Statement.DueDay)
		}
	} else if t.ChargeDate == "" {
		t.ChargeDate = purchase
	}

	if err := t.Validate(); err != nil {
		return invalid(err)
	}
	return nil
}

func (s *LedgerService) CreateTransaction(ctx context.Context, t *core.Transaction) error {
	if err := s.prepareTransaction(ctx, t); err != nil {
		return err
	}
	if err := s.store.CreateTransaction(ctx, t); err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}
	log.TransactionWritten(ctx, amqp.OpCreate, t.ID, t.AccountID, t.InvoiceMonth, t.Amount.Cents, string(t.Direction))
	s.changed(ctx, EntityTransaction, t.ID, amqp.OpCreate, transactionYears(t)...)
	return nil
}

// UpdateTransaction replaces a stored transaction. When the purchase date
// or the account changes and the caller kept the old invoice month, the
// billing-cycle fields are resolved again.
func (s *LedgerService) UpdateTransaction(ctx context.Context, t *core.Transaction) error {
	old, err := s.store.GetTransaction(ctx, t.ID)
	if err != nil {
		return fmt.Errorf("load transaction: %w", err)
	}
	moved := old.PurchaseDate != t.PurchaseDate || old.AccountID != t.AccountID
	if moved && t.InvoiceMonth == old.InvoiceMonth {
		t.InvoiceMonth = ""
		if t.ChargeDate == old.ChargeDate {
			t.ChargeDate = ""
		}
	}
	if err := s.prepareTransaction(ctx, t); err != nil {
		return err
	}
	if err := s.store.UpdateTransaction(ctx, t); err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	log.TransactionWritten(ctx, amqp.OpUpdate, t.ID, t.AccountID, t.InvoiceMonth, t.Amount.Cents, string(t.Direction))
	years := append(transactionYears(old), transactionYears(t)...)
	s.changed(ctx, EntityTransaction, t.ID, amqp.OpUpdate, years...)
	return nil
}

func (s *LedgerService) DeleteTransaction(ctx context.Context, id string) error {
	old, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		return fmt.Errorf("load transaction: %w", err)
	}
	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	s.changed(ctx, EntityTransaction, id, amqp.OpDelete, transactionYears(old)...)
	return nil
}

// Bills

func (s *LedgerService) ListBills(ctx context.Context) ([]core.Bill, error) {
	return s.store.ListBills(ctx)
}

func (s *LedgerService) GetBill(ctx context.Context, id string) (*core.Bill, error) {
	return s.store.GetBill(ctx, id)
}

func normalizeBillMonths(b *core.Bill) {
	if m := core.MonthOf(b.StartMonth); m != "" {
		b.StartMonth = m
	}
	if m := core.MonthOf(b.EndMonth); m != "" {
		b.EndMonth = m
	}
}

func (s *LedgerService) CreateBill(ctx context.Context, b *core.Bill) error {
	normalizeBillMonths(b)
	if err := b.Validate(); err != nil {
		return invalid(err)
	}
	if err := s.store.CreateBill(ctx, b); err != nil {
		return fmt.Errorf("create bill: %w", err)
	}
	s.changed(ctx, EntityBill, b.ID, amqp.OpCreate)
	return nil
}

func (s *LedgerService) UpdateBill(ctx context.Context, b *core.Bill) error {
	normalizeBillMonths(b)
	if err := b.Validate(); err != nil {
		return invalid(err)
	}
	if err := s.store.UpdateBill(ctx, b); err != nil {
		return fmt.Errorf("update bill: %w", err)
	}
	s.changed(ctx, EntityBill, b.ID, amqp.OpUpdate)
	return nil
}

func (s *LedgerService) DeleteBill(ctx context.Context, id string) error {
	if err := s.store.DeleteBill(ctx, id); err != nil {
		return fmt.Errorf("delete bill: %w", err)
	}
	s.changed(ctx, EntityBill, id, amqp.OpDelete)
	return nil
}

// Categories do not feed the summary, so writes are not published.

func (s *LedgerService) ListCategories(ctx context.Context) ([]core.Category, error) {
	return s.store.ListCategories(ctx)
}

func (s *LedgerService) GetCategory(ctx context.Context, id string) (*core.Category, error) {
	return s.store.GetCategory(ctx, id)
}

func (s *LedgerService) CreateCategory(ctx context.Context, c *core.Category) error {
	if err := c.Validate(); err != nil {
		return invalid(err)
	}
	if err := s.store.CreateCategory(ctx, c); err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

// UpdateCategory keeps the stored slug whatever c.Slug says.
func (s *LedgerService) UpdateCategory(ctx context.Context, c *core.Category) error {
	if strings.TrimSpace(c.Name) == "" {
		return invalid(core.ErrEmptyName)
	}
	if err := s.store.UpdateCategory(ctx, c); err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	return nil
}

func (s *LedgerService) DeleteCategory(ctx context.Context, id string) error {
	if err := s.store.DeleteCategory(ctx, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}
