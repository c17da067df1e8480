package storage

import (
	"context"
	"fmt"
	"strings"

	"fatura/internal/core"
)

// ListInvoices returns invoices ordered by month, optionally narrowed to an
// account and a YYYY-MM month.
func (s *SQLiteStore) ListInvoices(ctx context.Context, accountID, month string) ([]core.Invoice, error) {
	var (
		conds []string
		args  []any
	)
	if accountID != "" {
		conds = append(conds, "account_id = ?")
		args = append(args, accountID)
	}
	if month != "" {
		conds = append(conds, "month = ?")
		args = append(args, month)
	}
	query := "SELECT id, account_id, month, due_date, total_cents, status FROM invoices"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY month, account_id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	defer rows.Close()

	var out []core.Invoice
	for rows.Next() {
		var inv core.Invoice
		if err := rows.Scan(&inv.ID, &inv.AccountID, &inv.Month, &inv.DueDate, &inv.Total.Cents, &inv.Status); err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		out = append(out, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate invoices: %w", err)
	}
	return out, nil
}

// UpsertInvoice stores the invoice of (account, month), replacing total,
// due date and status of an existing one. inv.ID is set to the stored id.
func (s *SQLiteStore) UpsertInvoice(ctx context.Context, inv *core.Invoice) error {
	if inv.ID == "" {
		inv.ID = newID()
	}
	if inv.Status == "" {
		inv.Status = core.InvoiceOpen
	}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO invoices (id, account_id, month, due_date, total_cents, status, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (account_id, month) DO UPDATE SET
			due_date = excluded.due_date,
			total_cents = excluded.total_cents,
			status = excluded.status,
			updated_at = excluded.updated_at
		RETURNING id`,
		inv.ID, inv.AccountID, inv.Month, inv.DueDate, inv.Total.Cents, inv.Status, s.timestamp(),
	).Scan(&inv.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert invoice: %w", err)
	}
	return nil
}
