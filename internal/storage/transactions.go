package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"fatura/internal/core"
)

const transactionColumns = `id, account_id, legacy_card, purchase_date, charge_date, date, invoice_month,
	merchant, description, category_id, amount_cents, direction, status, kind,
	installment_group_id, installment_current, installment_total, bill_id, created_at`

func scanTransaction(sc scanner) (core.Transaction, error) {
	var (
		t              core.Transaction
		groupID        string
		current, total int
	)
	err := sc.Scan(&t.ID, &t.AccountID, &t.LegacyCard, &t.PurchaseDate, &t.ChargeDate, &t.Date,
		&t.InvoiceMonth, &t.Merchant, &t.Description, &t.CategoryID, &t.Amount.Cents,
		&t.Direction, &t.Status, &t.Kind, &groupID, &current, &total, &t.BillID, &t.CreatedAt)
	if err != nil {
		return t, err
	}
	if groupID != "" || total > 0 {
		t.Installment = &core.Installment{GroupID: groupID, Current: current, Total: total}
	}
	return t, nil
}

func installmentArgs(t *core.Transaction) (string, int, int) {
	if t.Installment == nil {
		return "", 0, 0
	}
	return t.Installment.GroupID, t.Installment.Current, t.Installment.Total
}

const defaultTransactionOrder = "invoice_month, purchase_date, created_at, id"

func (s *SQLiteStore) queryTransactions(ctx context.Context, where, order string, args ...any) ([]core.Transaction, error) {
	query := "SELECT " + transactionColumns + " FROM transactions"
	if where != "" {
		query += " WHERE " + where
	}
	query += " ORDER BY " + order

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) ListTransactions(ctx context.Context, f TransactionFilter) ([]core.Transaction, error) {
	var (
		conds []string
		args  []any
	)
	if f.AccountID != "" {
		conds = append(conds, "account_id = ?")
		args = append(args, f.AccountID)
	}
	if f.InvoiceMonth != "" {
		conds = append(conds, "invoice_month = ?")
		args = append(args, f.InvoiceMonth)
	}
	if f.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, f.Status)
	}
	if f.ChargedBefore != "" {
		conds = append(conds, "charge_date <> '' AND charge_date < ?")
		args = append(args, f.ChargedBefore)
	}
	return s.queryTransactions(ctx, strings.Join(conds, " AND "), defaultTransactionOrder, args...)
}

// ListTransactionsByGroup returns the installments of a purchase in order.
func (s *SQLiteStore) ListTransactionsByGroup(ctx context.Context, groupID string) ([]core.Transaction, error) {
	if groupID == "" {
		return nil, nil
	}
	return s.queryTransactions(ctx, "installment_group_id = ?", "installment_current, id", groupID)
}

func (s *SQLiteStore) GetTransaction(ctx context.Context, id string) (*core.Transaction, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+transactionColumns+" FROM transactions WHERE id = ?", id)
	t, err := scanTransaction(row)
	if err != nil {
		if err = notFound(err); err == ErrNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return &t, nil
}

func (s *SQLiteStore) insertTransaction(ctx context.Context, tx *sql.Tx, t *core.Transaction, now string) error {
	if t.ID == "" {
		t.ID = newID()
	}
	if t.CreatedAt == "" {
		t.CreatedAt = now
	}
	groupID, current, total := installmentArgs(t)
	_, err := tx.ExecContext(ctx, `
		INSERT INTO transactions (`+transactionColumns+`, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.AccountID, t.LegacyCard, t.PurchaseDate, t.ChargeDate, t.Date, t.InvoiceMonth,
		t.Merchant, t.Description, t.CategoryID, t.Amount.Cents, t.Direction, t.Status, t.Kind,
		groupID, current, total, t.BillID, t.CreatedAt, now,
	)
	return mapConstraint(err)
}

func (s *SQLiteStore) CreateTransaction(ctx context.Context, t *core.Transaction) error {
	now := s.timestamp()
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if err := s.insertTransaction(ctx, tx, t, now); err != nil {
			return err
		}
		return bumpVersion(ctx, tx)
	})
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

// CreateTransactions inserts every transaction or none. IDs are assigned in
// place.
func (s *SQLiteStore) CreateTransactions(ctx context.Context, ts []core.Transaction) error {
	if len(ts) == 0 {
		return nil
	}
	now := s.timestamp()
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		for i := range ts {
			if err := s.insertTransaction(ctx, tx, &ts[i], now); err != nil {
				return fmt.Errorf("insert %d/%d: %w", i+1, len(ts), err)
			}
		}
		return bumpVersion(ctx, tx)
	})
	if err != nil {
		for i := range ts {
			ts[i].ID = ""
		}
		return fmt.Errorf("failed to create transactions: %w", err)
	}
	return nil
}

func (s *SQLiteStore) UpdateTransaction(ctx context.Context, t *core.Transaction) error {
	groupID, current, total := installmentArgs(t)
	err := s.writeLedger(ctx, `
		UPDATE transactions
		SET account_id = ?, legacy_card = ?, purchase_date = ?, charge_date = ?, date = ?,
		    invoice_month = ?, merchant = ?, description = ?, category_id = ?, amount_cents = ?,
		    direction = ?, status = ?, kind = ?, installment_group_id = ?,
		    installment_current = ?, installment_total = ?, bill_id = ?, updated_at = ?
		WHERE id = ?`,
		t.AccountID, t.LegacyCard, t.PurchaseDate, t.ChargeDate, t.Date,
		t.InvoiceMonth, t.Merchant, t.Description, t.CategoryID, t.Amount.Cents,
		t.Direction, t.Status, t.Kind, groupID,
		current, total, t.BillID, s.timestamp(),
		t.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	return nil
}

func (s *SQLiteStore) DeleteTransaction(ctx context.Context, id string) error {
	if err := s.writeLedger(ctx, "DELETE FROM transactions WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	return nil
}
