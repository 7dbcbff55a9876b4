package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

const categoryColumns = `id, name, type, description`

func scanCategory(r rowScanner) (core.Category, error) {
	var (
		c   core.Category
		typ string
	)
	if err := r.Scan(&c.ID, &c.Name, &typ, &c.Description); err != nil {
		return core.Category{}, err
	}
	c.Type = core.TransactionType(typ)
	return c, nil
}

func (s *Store) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	c.Name = strings.TrimSpace(c.Name)
	if err := c.Validate(); err != nil {
		return core.Category{}, fmt.Errorf("validate category: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO categories (name, type, description) VALUES (?, ?, ?)`,
		c.Name, string(c.Type), c.Description)
	if err != nil {
		if isUniqueViolation(err) {
			return core.Category{}, fmt.Errorf("create category %q: %w", c.Name, ErrDuplicateCategory)
		}
		return core.Category{}, wrap("insert category", err)
	}
	c.ID, err = res.LastInsertId()
	if err != nil {
		return core.Category{}, wrap("insert category", err)
	}

	slog.InfoContext(ctx, "Category created",
		log.FieldComponent, log.ComponentStorage,
		log.FieldOperation, log.OpCreate,
		log.FieldCategoryID, c.ID,
		log.FieldCategoryName, c.Name)
	return c, nil
}

func (s *Store) UpdateCategory(ctx context.Context, c core.Category) error {
	c.Name = strings.TrimSpace(c.Name)
	if err := c.Validate(); err != nil {
		return fmt.Errorf("validate category: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE categories SET name = ?, type = ?, description = ? WHERE id = ?`,
		c.Name, string(c.Type), c.Description, c.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("update category %q: %w", c.Name, ErrDuplicateCategory)
		}
		return wrap("update category", err)
	}
	if err := checkAffected(res, "category", c.ID); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Category updated",
		log.FieldComponent, log.ComponentStorage,
		log.FieldOperation, log.OpUpdate,
		log.FieldCategoryID, c.ID)
	return nil
}

// DeleteCategory fails with ErrCategoryInUse while any transaction references it.
func (s *Store) DeleteCategory(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("delete category %d: %w", id, ErrCategoryInUse)
		}
		return wrap("delete category", err)
	}
	if err := checkAffected(res, "category", id); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Category deleted",
		log.FieldComponent, log.ComponentStorage,
		log.FieldOperation, log.OpDelete,
		log.FieldCategoryID, id)
	return nil
}

func (s *Store) GetCategory(ctx context.Context, id int64) (core.Category, error) {
	c, err := scanCategory(s.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, notFound("category", id)
	}
	if err != nil {
		return core.Category{}, wrap("get category", err)
	}
	return c, nil
}

// ListCategories orders by type (expense before income) then name.
func (s *Store) ListCategories(ctx context.Context) ([]core.Category, error) {
	return s.queryCategories(ctx, "list categories",
		`SELECT `+categoryColumns+` FROM categories ORDER BY type, name`)
}

func (s *Store) ListCategoriesByType(ctx context.Context, t core.TransactionType) ([]core.Category, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return s.queryCategories(ctx, "list categories by type",
		`SELECT `+categoryColumns+` FROM categories WHERE type = ? ORDER BY name`, string(t))
}

// CategoryLookup maps every category name to its id, as used by the importer.
func (s *Store) CategoryLookup(ctx context.Context) (map[string]int64, error) {
	cats, err := s.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	lookup := make(map[string]int64, len(cats))
	for _, c := range cats {
		lookup[c.Name] = c.ID
	}
	return lookup, nil
}

func (s *Store) queryCategories(ctx context.Context, op, query string, args ...any) ([]core.Category, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrap(op, err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, wrap(op, err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(op, err)
	}
	return out, nil
}
