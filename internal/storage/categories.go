package storage

import (
	"context"
	"fmt"

	"fatura/internal/core"
)

const categoryColumns = `id, name, slug, color, icon, active`

func scanCategory(sc scanner) (core.Category, error) {
	var (
		c      core.Category
		active int
	)
	err := sc.Scan(&c.ID, &c.Name, &c.Slug, &c.Color, &c.Icon, &active)
	c.Active = active != 0
	return c, err
}

func (s *SQLiteStore) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+categoryColumns+" FROM categories ORDER BY name, id")
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate categories: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) GetCategory(ctx context.Context, id string) (*core.Category, error) {
	c, err := scanCategory(s.db.QueryRowContext(ctx, "SELECT "+categoryColumns+" FROM categories WHERE id = ?", id))
	if err != nil {
		if err = notFound(err); err == ErrNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return &c, nil
}

// CreateCategory derives the slug from the name when it is empty. A taken
// slug yields ErrConflict.
func (s *SQLiteStore) CreateCategory(ctx context.Context, c *core.Category) error {
	if c.ID == "" {
		c.ID = newID()
	}
	if c.Slug == "" {
		c.Slug = core.Slugify(c.Name)
	}
	now := s.timestamp()
	err := s.execOne(ctx, `
		INSERT INTO categories (`+categoryColumns+`, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Slug, c.Color, c.Icon, boolInt(c.Active), now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

// UpdateCategory never touches the slug; c.Slug is refreshed from the row.
func (s *SQLiteStore) UpdateCategory(ctx context.Context, c *core.Category) error {
	err := s.execOne(ctx, `
		UPDATE categories
		SET name = ?, color = ?, icon = ?, active = ?, updated_at = ?
		WHERE id = ?`,
		c.Name, c.Color, c.Icon, boolInt(c.Active), s.timestamp(), c.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, "SELECT slug FROM categories WHERE id = ?", c.ID).Scan(&c.Slug); err != nil {
		return fmt.Errorf("failed to reload category slug: %w", err)
	}
	return nil
}

func (s *SQLiteStore) DeleteCategory(ctx context.Context, id string) error {
	if err := s.execOne(ctx, "DELETE FROM categories WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return nil
}
