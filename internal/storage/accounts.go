package storage

import (
	"context"
	"database/sql"
	"fmt"

	"fatura/internal/core"
)

const accountColumns = `id, type, name, color, active, opening_balance_cents, limit_cents, cutoff_day, due_day`

func scanAccount(sc scanner) (core.Account, error) {
	var (
		a              core.Account
		active         int
		cutoff, dueDay sql.NullInt64
	)
	err := sc.Scan(&a.ID, &a.Type, &a.Name, &a.Color, &active,
		&a.OpeningBalance.Cents, &a.Limit.Cents, &cutoff, &dueDay)
	if err != nil {
		return a, err
	}
	a.Active = active != 0
	if cutoff.Valid || dueDay.Valid {
		a.Statement = &core.Statement{CutoffDay: int(cutoff.Int64), DueDay: int(dueDay.Int64)}
	}
	return a, nil
}

func statementArgs(a *core.Account) (sql.NullInt64, sql.NullInt64) {
	if a.Statement == nil {
		return sql.NullInt64{}, sql.NullInt64{}
	}
	return nullInt(a.Statement.CutoffDay), nullInt(a.Statement.DueDay)
}

func (s *SQLiteStore) ListAccounts(ctx context.Context) ([]core.Account, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+accountColumns+" FROM accounts ORDER BY name, id")
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var out []core.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate accounts: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) GetAccount(ctx context.Context, id string) (*core.Account, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+accountColumns+" FROM accounts WHERE id = ?", id)
	a, err := scanAccount(row)
	if err != nil {
		if err = notFound(err); err == ErrNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &a, nil
}

func (s *SQLiteStore) CreateAccount(ctx context.Context, a *core.Account) error {
	if a.ID == "" {
		a.ID = newID()
	}
	cutoff, dueDay := statementArgs(a)
	now := s.timestamp()
	err := s.writeLedger(ctx, `
		INSERT INTO accounts (`+accountColumns+`, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Type, a.Name, a.Color, boolInt(a.Active),
		a.OpeningBalance.Cents, a.Limit.Cents, cutoff, dueDay, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

func (s *SQLiteStore) UpdateAccount(ctx context.Context, a *core.Account) error {
	cutoff, dueDay := statementArgs(a)
	err := s.writeLedger(ctx, `
		UPDATE accounts
		SET type = ?, name = ?, color = ?, active = ?, opening_balance_cents = ?,
		    limit_cents = ?, cutoff_day = ?, due_day = ?, updated_at = ?
		WHERE id = ?`,
		a.Type, a.Name, a.Color, boolInt(a.Active), a.OpeningBalance.Cents,
		a.Limit.Cents, cutoff, dueDay, s.timestamp(), a.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}
	return nil
}

func (s *SQLiteStore) DeleteAccount(ctx context.Context, id string) error {
	if err := s.writeLedger(ctx, "DELETE FROM accounts WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	return nil
}
