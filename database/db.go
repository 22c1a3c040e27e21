package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	apperrors "capychat/errors"
	"capychat/web/types"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
)

// PostgresStore is the tenant-scoped relational store. Every query filters
// by tenant_id, so rows of another tenant read as not found.
type PostgresStore struct {
	DB     *sql.DB
	logger *zap.Logger
}

func NewPostgresStore(ctx context.Context, connStr string, logger *zap.Logger) (*PostgresStore, error) {
	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(20)
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, err
	}
	logger.Info("Successfully connected to the database")
	return NewWithDB(db, logger), nil
}

// NewWithDB wraps an existing handle.
func NewWithDB(db *sql.DB, logger *zap.Logger) *PostgresStore {
	return &PostgresStore{DB: db, logger: logger}
}

func (s *PostgresStore) Close() error {
	return s.DB.Close()
}

// EnsureSchema creates the required tables if they do not already exist and
// makes sure the default tenant row is present.
func (s *PostgresStore) EnsureSchema(ctx context.Context, defaultTenantKey string) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS tenants (
            id BIGSERIAL PRIMARY KEY,
            key TEXT NOT NULL UNIQUE,
            created_at TIMESTAMPTZ DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS categories (
            id BIGSERIAL PRIMARY KEY,
            tenant_id BIGINT NOT NULL REFERENCES tenants(id) ON DELETE CASCADE,
            name TEXT NOT NULL,
            created_at TIMESTAMPTZ DEFAULT NOW()
        )`,
		`CREATE INDEX IF NOT EXISTS idx_categories_tenant ON categories(tenant_id)`,
		`CREATE TABLE IF NOT EXISTS faq_articles (
            id BIGSERIAL PRIMARY KEY,
            tenant_id BIGINT NOT NULL REFERENCES tenants(id) ON DELETE CASCADE,
            title TEXT NOT NULL,
            content TEXT NOT NULL DEFAULT '',
            category TEXT,
            category_id BIGINT REFERENCES categories(id) ON DELETE SET NULL,
            media JSONB NOT NULL DEFAULT '[]'::jsonb,
            source_type TEXT NOT NULL DEFAULT 'manual',
            confidence DOUBLE PRECISION,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE INDEX IF NOT EXISTS idx_faq_articles_tenant ON faq_articles(tenant_id, id DESC)`,
		`CREATE TABLE IF NOT EXISTS site_config (
            id BIGSERIAL PRIMARY KEY,
            tenant_id BIGINT NOT NULL REFERENCES tenants(id) ON DELETE CASCADE,
            key TEXT NOT NULL,
            value TEXT NOT NULL DEFAULT '',
            UNIQUE (tenant_id, key)
        )`,
	}

	for _, stmt := range stmts {
		if _, err := s.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}

	if defaultTenantKey != "" {
		_, err := s.DB.ExecContext(ctx,
			`INSERT INTO tenants (key) VALUES ($1) ON CONFLICT (key) DO NOTHING`, defaultTenantKey)
		if err != nil {
			return fmt.Errorf("failed to seed default tenant: %w", err)
		}
	}
	return nil
}

// GetTenantByKey resolves a tenant slug.
func (s *PostgresStore) GetTenantByKey(ctx context.Context, key string) (*types.Tenant, error) {
	var t types.Tenant
	err := s.DB.QueryRowContext(ctx, `SELECT id, key FROM tenants WHERE key = $1`, key).Scan(&t.ID, &t.Key)
	if err != nil {
		return nil, notFoundOr(err, "tenant %q", key)
	}
	return &t, nil
}

// notFoundOr maps sql.ErrNoRows onto ErrNotFound and anything else onto
// ErrDatabaseOperation.
func notFoundOr(err error, format string, args ...interface{}) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.WrapErrorf(apperrors.ErrNotFound, format, args...)
	}
	return dbError(err, format, args...)
}

func dbError(err error, format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w: %v", fmt.Sprintf(format, args...), apperrors.ErrDatabaseOperation, err)
}

func encodeMedia(media []types.Media) ([]byte, error) {
	if media == nil {
		media = []types.Media{}
	}
	return json.Marshal(media)
}

func decodeMedia(raw []byte) []types.Media {
	media := []types.Media{}
	if len(raw) == 0 {
		return media
	}
	if err := json.Unmarshal(raw, &media); err != nil {
		return []types.Media{}
	}
	return media
}
