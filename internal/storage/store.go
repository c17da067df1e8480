// Package storage persists the ledger in SQLite.
//
// Every collection is independent: references between accounts,
// transactions, bills and categories are plain ids with no foreign keys,
// so deleting a row never cascades and readers tolerate dangling ids.
package storage

import (
	"context"
	"errors"

	"fatura/internal/core"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")
)

// TransactionFilter narrows ListTransactions. Zero fields match everything.
type TransactionFilter struct {
	AccountID    string
	InvoiceMonth string
	Status       core.Status
	// ChargedBefore keeps rows whose charge date is strictly earlier (YYYY-MM-DD).
	ChargedBefore string
}

// Store is the persistence port used by services and handlers.
type Store interface {
	CreateUser(ctx context.Context, user *core.User) error
	GetUserByEmail(ctx context.Context, email string) (*core.User, error)
	GetUserByID(ctx context.Context, id string) (*core.User, error)

	ListAccounts(ctx context.Context) ([]core.Account, error)
	GetAccount(ctx context.Context, id string) (*core.Account, error)
	CreateAccount(ctx context.Context, a *core.Account) error
	UpdateAccount(ctx context.Context, a *core.Account) error
	DeleteAccount(ctx context.Context, id string) error

	ListTransactions(ctx context.Context, f TransactionFilter) ([]core.Transaction, error)
	ListTransactionsByGroup(ctx context.Context, groupID string) ([]core.Transaction, error)
	GetTransaction(ctx context.Context, id string) (*core.Transaction, error)
	CreateTransaction(ctx context.Context, t *core.Transaction) error
	CreateTransactions(ctx context.Context, ts []core.Transaction) error
	UpdateTransaction(ctx context.Context, t *core.Transaction) error
	DeleteTransaction(ctx context.Context, id string) error

	ListBills(ctx context.Context) ([]core.Bill, error)
	GetBill(ctx context.Context, id string) (*core.Bill, error)
	CreateBill(ctx context.Context, b *core.Bill) error
	UpdateBill(ctx context.Context, b *core.Bill) error
	DeleteBill(ctx context.Context, id string) error
	BillLastGenerated(ctx context.Context, id string) (string, error)
	MarkBillGenerated(ctx context.Context, id, month string) error

	ListCategories(ctx context.Context) ([]core.Category, error)
	GetCategory(ctx context.Context, id string) (*core.Category, error)
	CreateCategory(ctx context.Context, c *core.Category) error
	UpdateCategory(ctx context.Context, c *core.Category) error
	DeleteCategory(ctx context.Context, id string) error

	ListInvoices(ctx context.Context, accountID, month string) ([]core.Invoice, error)
	UpsertInvoice(ctx context.Context, inv *core.Invoice) error

	// LedgerVersion increases on every write to accounts, transactions or bills.
	LedgerVersion(ctx context.Context) (int64, error)

	Ping(ctx context.Context) error
	Close() error
}
