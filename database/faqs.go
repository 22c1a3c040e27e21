package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	apperrors "capychat/errors"
	"capychat/web/types"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

const faqColumns = `id, tenant_id, title, content, category, category_id, media, source_type, confidence, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFAQ(row rowScanner) (types.FAQArticle, error) {
	var (
		a          types.FAQArticle
		category   sql.NullString
		categoryID sql.NullInt64
		media      []byte
		confidence sql.NullFloat64
	)
	err := row.Scan(&a.ID, &a.TenantID, &a.Title, &a.Content, &category, &categoryID,
		&media, &a.SourceType, &confidence, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return a, err
	}
	if category.Valid {
		a.Category = &category.String
	}
	if categoryID.Valid {
		a.CategoryID = &categoryID.Int64
	}
	if confidence.Valid {
		a.Confidence = &confidence.Float64
	}
	a.Media = decodeMedia(media)
	return a, nil
}

func collectFAQs(rows *sql.Rows) ([]types.FAQArticle, error) {
	defer rows.Close()
	out := []types.FAQArticle{}
	for rows.Next() {
		a, err := scanFAQ(rows)
		if err != nil {
			return nil, dbError(err, "scan faq")
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError(err, "iterate faqs")
	}
	return out, nil
}

// escapeLike makes user text literal inside an ILIKE pattern.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// ListFAQs returns the tenant's FAQs, newest first. Query is a
// case-insensitive substring match on title or content; Category is exact.
func (s *PostgresStore) ListFAQs(ctx context.Context, tenantID int64, filter types.FAQFilter) ([]types.FAQArticle, error) {
	query := strings.TrimSpace(filter.Query)
	category := strings.TrimSpace(filter.Category)
	rows, err := s.DB.QueryContext(ctx, `SELECT `+faqColumns+` FROM faq_articles
		WHERE tenant_id = $1
		  AND ($2 = '' OR title ILIKE '%' || $2 || '%' OR content ILIKE '%' || $2 || '%')
		  AND ($3 = '' OR category = $3)
		ORDER BY id DESC`, tenantID, escapeLike(query), category)
	if err != nil {
		return nil, dbError(err, "list faqs")
	}
	return collectFAQs(rows)
}

// ListFAQProjections loads the whole tenant corpus for retrieval.
func (s *PostgresStore) ListFAQProjections(ctx context.Context, tenantID int64) ([]types.FAQProjection, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, title, content, category FROM faq_articles WHERE tenant_id = $1 ORDER BY id ASC`, tenantID)
	if err != nil {
		return nil, dbError(err, "list faq projections")
	}
	defer rows.Close()

	out := []types.FAQProjection{}
	for rows.Next() {
		var (
			p        types.FAQProjection
			category sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.Title, &p.Content, &category); err != nil {
			return nil, dbError(err, "scan faq projection")
		}
		if category.Valid {
			p.Category = &category.String
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError(err, "iterate faq projections")
	}
	return out, nil
}

func (s *PostgresStore) CountFAQs(ctx context.Context, tenantID int64) (int, error) {
	var n int
	if err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM faq_articles WHERE tenant_id = $1`, tenantID).Scan(&n); err != nil {
		return 0, dbError(err, "count faqs")
	}
	return n, nil
}

func (s *PostgresStore) ListFAQTitles(ctx context.Context, tenantID int64) ([]string, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT title FROM faq_articles WHERE tenant_id = $1`, tenantID)
	if err != nil {
		return nil, dbError(err, "list faq titles")
	}
	defer rows.Close()

	titles := []string{}
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, dbError(err, "scan faq title")
		}
		titles = append(titles, t)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError(err, "iterate faq titles")
	}
	return titles, nil
}

// InsertFAQs stores candidates in one transaction and returns the rows in
// candidate order. Any failure rolls the whole batch back.
func (s *PostgresStore) InsertFAQs(ctx context.Context, tenantID int64, candidates []types.FAQCandidate) ([]types.FAQArticle, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, dbError(err, "begin faq batch")
	}
	defer tx.Rollback()

	created := make([]types.FAQArticle, 0, len(candidates))
	for i, c := range candidates {
		a, err := insertFAQ(ctx, tx, tenantID, c, c.CategoryID)
		if err != nil {
			return nil, dbError(err, "insert faq %d of %d", i+1, len(candidates))
		}
		created = append(created, a)
	}

	if err := tx.Commit(); err != nil {
		return nil, dbError(err, "commit faq batch")
	}
	s.logger.Debug("Inserted FAQ batch", zap.Int64("tenant_id", tenantID), zap.Int("rows", len(created)))
	return created, nil
}

// CreateFAQ stores one admin-authored FAQ. The category link is resolved by
// exact name within the tenant.
func (s *PostgresStore) CreateFAQ(ctx context.Context, tenantID int64, c types.FAQCandidate) (*types.FAQArticle, error) {
	if strings.TrimSpace(c.Title) == "" || strings.TrimSpace(c.Content) == "" {
		return nil, apperrors.Validation("title and content are required")
	}
	if c.SourceType == "" {
		c.SourceType = types.SourceManual
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, dbError(err, "begin create faq")
	}
	defer tx.Rollback()

	categoryID, err := resolveCategoryID(ctx, tx, tenantID, c.Category)
	if err != nil {
		return nil, err
	}
	a, err := insertFAQ(ctx, tx, tenantID, c, categoryID)
	if err != nil {
		return nil, dbError(err, "create faq")
	}
	if err := tx.Commit(); err != nil {
		return nil, dbError(err, "commit create faq")
	}
	return &a, nil
}

func insertFAQ(ctx context.Context, tx *sql.Tx, tenantID int64, c types.FAQCandidate, categoryID *int64) (types.FAQArticle, error) {
	media, err := encodeMedia(c.Media)
	if err != nil {
		return types.FAQArticle{}, err
	}
	var category sql.NullString
	if c.Category != "" {
		category = sql.NullString{String: c.Category, Valid: true}
	}
	return scanFAQ(tx.QueryRowContext(ctx, `
		INSERT INTO faq_articles (tenant_id, title, content, category, category_id, media, source_type, confidence)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+faqColumns,
		tenantID, c.Title, c.Content, category, nullInt64(categoryID), string(media), c.SourceType, nullFloat64(c.Confidence)))
}

// UpdateFAQ applies a partial edit. A non-nil empty Category clears both
// the label and the link.
func (s *PostgresStore) UpdateFAQ(ctx context.Context, tenantID, id int64, u types.FAQUpdate) (*types.FAQArticle, error) {
	if u.Title != nil && strings.TrimSpace(*u.Title) == "" {
		return nil, apperrors.Validation("title cannot be empty")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, dbError(err, "begin update faq")
	}
	defer tx.Rollback()

	sets := []string{"updated_at = NOW()"}
	args := []any{}
	add := func(column string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if u.Title != nil {
		add("title", strings.TrimSpace(*u.Title))
	}
	if u.Content != nil {
		add("content", *u.Content)
	}
	if u.Category != nil {
		name := strings.TrimSpace(*u.Category)
		if name == "" {
			add("category", nil)
			add("category_id", nil)
		} else {
			categoryID, err := resolveCategoryID(ctx, tx, tenantID, name)
			if err != nil {
				return nil, err
			}
			add("category", name)
			add("category_id", nullInt64(categoryID))
		}
	}
	if u.Media != nil {
		media, err := encodeMedia(*u.Media)
		if err != nil {
			return nil, apperrors.WrapError(apperrors.ErrInvalidInput, "encode media")
		}
		add("media", string(media))
	}

	args = append(args, id, tenantID)
	query := fmt.Sprintf(`UPDATE faq_articles SET %s WHERE id = $%d AND tenant_id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args)-1, len(args), faqColumns)

	a, err := scanFAQ(tx.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, notFoundOr(err, "faq %d", id)
	}
	if err := tx.Commit(); err != nil {
		return nil, dbError(err, "commit update faq")
	}
	return &a, nil
}

func (s *PostgresStore) DeleteFAQ(ctx context.Context, tenantID, id int64) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM faq_articles WHERE id = $1 AND tenant_id = $2`, id, tenantID)
	if err != nil {
		return dbError(err, "delete faq %d", id)
	}
	return requireAffected(res, "faq %d", id)
}

// DeleteFAQs removes every listed id owned by the tenant and reports how
// many rows went. Ids of other tenants are ignored.
func (s *PostgresStore) DeleteFAQs(ctx context.Context, tenantID int64, ids []int64) (int, error) {
	if len(ids) == 0 {
		return 0, apperrors.Validation("ids are required")
	}
	res, err := s.DB.ExecContext(ctx,
		`DELETE FROM faq_articles WHERE tenant_id = $1 AND id = ANY($2)`, tenantID, pq.Array(ids))
	if err != nil {
		return 0, dbError(err, "delete faqs")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, dbError(err, "delete faqs")
	}
	return int(n), nil
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func nullFloat64(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
