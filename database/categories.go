package database

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	apperrors "capychat/errors"
	"capychat/web/types"
)

// ListCategories returns the tenant's categories ordered by name.
func (s *PostgresStore) ListCategories(ctx context.Context, tenantID int64) ([]types.Category, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, tenant_id, name FROM categories WHERE tenant_id = $1 ORDER BY name ASC, id ASC`, tenantID)
	if err != nil {
		return nil, dbError(err, "list categories")
	}
	defer rows.Close()

	categories := []types.Category{}
	for rows.Next() {
		var c types.Category
		if err := rows.Scan(&c.ID, &c.TenantID, &c.Name); err != nil {
			return nil, dbError(err, "scan category")
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError(err, "iterate categories")
	}
	return categories, nil
}

func (s *PostgresStore) CreateCategory(ctx context.Context, tenantID int64, name string) (*types.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.Validation("category name is required")
	}
	c := types.Category{TenantID: tenantID, Name: name}
	err := s.DB.QueryRowContext(ctx,
		`INSERT INTO categories (tenant_id, name) VALUES ($1, $2) RETURNING id`, tenantID, name).Scan(&c.ID)
	if err != nil {
		return nil, dbError(err, "create category")
	}
	return &c, nil
}

// RenameCategory also rewrites the denormalized label on linked FAQs.
func (s *PostgresStore) RenameCategory(ctx context.Context, tenantID, id int64, name string) (*types.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.Validation("category name is required")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, dbError(err, "begin rename category")
	}
	defer tx.Rollback()

	c := types.Category{ID: id, TenantID: tenantID}
	err = tx.QueryRowContext(ctx,
		`UPDATE categories SET name = $1 WHERE id = $2 AND tenant_id = $3 RETURNING name`,
		name, id, tenantID).Scan(&c.Name)
	if err != nil {
		return nil, notFoundOr(err, "category %d", id)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE faq_articles SET category = $1, updated_at = NOW() WHERE category_id = $2 AND tenant_id = $3`,
		name, id, tenantID); err != nil {
		return nil, dbError(err, "relabel faqs for category %d", id)
	}
	if err := tx.Commit(); err != nil {
		return nil, dbError(err, "commit rename category")
	}
	return &c, nil
}

// DeleteCategory removes the category; linked FAQs keep their label but
// lose the link.
func (s *PostgresStore) DeleteCategory(ctx context.Context, tenantID, id int64) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM categories WHERE id = $1 AND tenant_id = $2`, id, tenantID)
	if err != nil {
		return dbError(err, "delete category %d", id)
	}
	return requireAffected(res, "category %d", id)
}

// resolveCategoryID looks a label up inside tx. Unknown labels yield nil.
func resolveCategoryID(ctx context.Context, tx *sql.Tx, tenantID int64, name string) (*int64, error) {
	if name == "" {
		return nil, nil
	}
	var id int64
	err := tx.QueryRowContext(ctx,
		`SELECT id FROM categories WHERE tenant_id = $1 AND name = $2 ORDER BY id LIMIT 1`,
		tenantID, name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, dbError(err, "resolve category %q", name)
	}
	return &id, nil
}

func requireAffected(res sql.Result, format string, args ...interface{}) error {
	n, err := res.RowsAffected()
	if err != nil {
		return dbError(err, format, args...)
	}
	if n == 0 {
		return apperrors.WrapErrorf(apperrors.ErrNotFound, format, args...)
	}
	return nil
}
