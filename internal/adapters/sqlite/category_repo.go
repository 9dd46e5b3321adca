package sqlite

import (
	"context"
	"database/sql"

	"github.com/example/court/internal/core/courterr"
	"github.com/example/court/internal/ports/secondary"
)

// CategoryRepository implements secondary.CategoryRepository with SQLite.
type CategoryRepository struct {
	db *sql.DB
}

// NewCategoryRepository creates a new SQLite category repository.
func NewCategoryRepository(db *sql.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// Upsert creates or updates a category by platform id.
func (r *CategoryRepository) Upsert(ctx context.Context, c *secondary.CategoryRecord) error {
	kind := c.Kind
	if kind == "" {
		kind = "custom"
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (category_id, name, role_id, kind, created_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(category_id) DO UPDATE SET name = excluded.name, role_id = excluded.role_id, kind = excluded.kind`,
		c.CategoryID, c.Name, nullInt64(c.RoleID), kind, now(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return courterr.Conflict("category.upsert", "an archive category is already registered")
		}
		return courterr.Persistence("category.upsert", err, "failed to save category")
	}
	return nil
}

// GetByID retrieves a category by platform id.
func (r *CategoryRepository) GetByID(ctx context.Context, categoryID int64) (*secondary.CategoryRecord, error) {
	record, err := scanCategory(r.db.QueryRowContext(ctx,
		"SELECT category_id, name, role_id, kind, created_at FROM categories WHERE category_id = ?", categoryID))
	if err == sql.ErrNoRows {
		return nil, courterr.NotFound("category.get", "category %d is not registered", categoryID)
	}
	if err != nil {
		return nil, courterr.Persistence("category.get", err, "failed to get category")
	}
	return record, nil
}

// GetArchive retrieves the archive category.
func (r *CategoryRepository) GetArchive(ctx context.Context) (*secondary.CategoryRecord, error) {
	record, err := scanCategory(r.db.QueryRowContext(ctx,
		"SELECT category_id, name, role_id, kind, created_at FROM categories WHERE kind = 'archive'"))
	if err == sql.ErrNoRows {
		return nil, courterr.NotFound("category.archive", "no archive category is configured")
	}
	if err != nil {
		return nil, courterr.Persistence("category.archive", err, "failed to get archive category")
	}
	return record, nil
}

// SetArchive marks a category as the archive. A previous archive becomes custom.
func (r *CategoryRepository) SetArchive(ctx context.Context, categoryID int64, name string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return courterr.Persistence("category.set_archive", err, "failed to begin transaction")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"UPDATE categories SET kind = 'custom' WHERE kind = 'archive' AND category_id != ?", categoryID); err != nil {
		return courterr.Persistence("category.set_archive", err, "failed to demote archive category")
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO categories (category_id, name, kind, created_at) VALUES (?, ?, 'archive', ?)
		ON CONFLICT(category_id) DO UPDATE SET name = excluded.name, kind = 'archive'`,
		categoryID, name, now()); err != nil {
		return courterr.Persistence("category.set_archive", err, "failed to save archive category")
	}
	if err := tx.Commit(); err != nil {
		return courterr.Persistence("category.set_archive", err, "failed to commit archive category")
	}
	return nil
}

// List returns categories, optionally of one kind, ordered by name.
func (r *CategoryRepository) List(ctx context.Context, kind string) ([]*secondary.CategoryRecord, error) {
	query := "SELECT category_id, name, role_id, kind, created_at FROM categories"
	args := []any{}
	if kind != "" {
		query += " WHERE kind = ?"
		args = append(args, kind)
	}
	query += " ORDER BY name COLLATE NOCASE, category_id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, courterr.Persistence("category.list", err, "failed to list categories")
	}
	defer rows.Close()

	var categories []*secondary.CategoryRecord
	for rows.Next() {
		record, err := scanCategory(rows)
		if err != nil {
			return nil, courterr.Persistence("category.list", err, "failed to scan category")
		}
		categories = append(categories, record)
	}
	if err := rows.Err(); err != nil {
		return nil, courterr.Persistence("category.list", err, "failed to list categories")
	}
	return categories, nil
}

// Delete removes a category.
func (r *CategoryRepository) Delete(ctx context.Context, categoryID int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM categories WHERE category_id = ?", categoryID)
	if err != nil {
		return courterr.Persistence("category.delete", err, "failed to delete category")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return courterr.NotFound("category.delete", "category %d is not registered", categoryID)
	}
	return nil
}

func scanCategory(s scanner) (*secondary.CategoryRecord, error) {
	var (
		roleID    sql.NullInt64
		createdAt sql.NullTime
	)
	record := &secondary.CategoryRecord{}
	if err := s.Scan(&record.CategoryID, &record.Name, &roleID, &record.Kind, &createdAt); err != nil {
		return nil, err
	}
	record.RoleID = roleID.Int64
	record.CreatedAt = timeOrZero(createdAt)
	return record, nil
}

// Ensure CategoryRepository implements the interface
var _ secondary.CategoryRepository = (*CategoryRepository)(nil)
