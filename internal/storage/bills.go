package storage

import (
	"context"
	"fmt"

	"fatura/internal/core"
)

const billColumns = `id, name, payee, kind, default_amount_cents, day_of_month, start_month, end_month,
	category_id, installment_group_id, account_id, active`

func scanBill(sc scanner) (core.Bill, error) {
	var (
		b      core.Bill
		active int
	)
	err := sc.Scan(&b.ID, &b.Name, &b.Payee, &b.Kind, &b.DefaultAmount.Cents, &b.DayOfMonth,
		&b.StartMonth, &b.EndMonth, &b.CategoryID, &b.InstallmentGroupID, &b.AccountID, &active)
	b.Active = active != 0
	return b, err
}

func (s *SQLiteStore) ListBills(ctx context.Context) ([]core.Bill, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+billColumns+" FROM bills ORDER BY name, id")
	if err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}
	defer rows.Close()

	var out []core.Bill
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bill: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bills: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) GetBill(ctx context.Context, id string) (*core.Bill, error) {
	b, err := scanBill(s.db.QueryRowContext(ctx, "SELECT "+billColumns+" FROM bills WHERE id = ?", id))
	if err != nil {
		if err = notFound(err); err == ErrNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}
	return &b, nil
}

func (s *SQLiteStore) CreateBill(ctx context.Context, b *core.Bill) error {
	if b.ID == "" {
		b.ID = newID()
	}
	now := s.timestamp()
	err := s.writeLedger(ctx, `
		INSERT INTO bills (`+billColumns+`, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.Name, b.Payee, b.Kind, b.DefaultAmount.Cents, b.DayOfMonth, b.StartMonth, b.EndMonth,
		b.CategoryID, b.InstallmentGroupID, b.AccountID, boolInt(b.Active), now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to create bill: %w", err)
	}
	return nil
}

func (s *SQLiteStore) UpdateBill(ctx context.Context, b *core.Bill) error {
	err := s.writeLedger(ctx, `
		UPDATE bills
		SET name = ?, payee = ?, kind = ?, default_amount_cents = ?, day_of_month = ?,
		    start_month = ?, end_month = ?, category_id = ?, installment_group_id = ?,
		    account_id = ?, active = ?, updated_at = ?
		WHERE id = ?`,
		b.Name, b.Payee, b.Kind, b.DefaultAmount.Cents, b.DayOfMonth,
		b.StartMonth, b.EndMonth, b.CategoryID, b.InstallmentGroupID,
		b.AccountID, boolInt(b.Active), s.timestamp(),
		b.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update bill: %w", err)
	}
	return nil
}

func (s *SQLiteStore) DeleteBill(ctx context.Context, id string) error {
	if err := s.writeLedger(ctx, "DELETE FROM bills WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete bill: %w", err)
	}
	return nil
}

// BillLastGenerated returns the last YYYY-MM a planned transaction was
// generated for the bill, or "" when none was.
func (s *SQLiteStore) BillLastGenerated(ctx context.Context, id string) (string, error) {
	var month string
	err := s.db.QueryRowContext(ctx, "SELECT last_generated_month FROM bills WHERE id = ?", id).Scan(&month)
	if err != nil {
		if err = notFound(err); err == ErrNotFound {
			return "", err
		}
		return "", fmt.Errorf("failed to read bill generation: %w", err)
	}
	return month, nil
}

// MarkBillGenerated records month as generated. It does not bump the ledger
// version: the generated transaction already did.
func (s *SQLiteStore) MarkBillGenerated(ctx context.Context, id, month string) error {
	err := s.execOne(ctx, "UPDATE bills SET last_generated_month = ?, updated_at = ? WHERE id = ?",
		month, s.timestamp(), id)
	if err != nil {
		return fmt.Errorf("failed to mark bill generated: %w", err)
	}
	return nil
}
