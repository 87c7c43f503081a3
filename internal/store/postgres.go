package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/slmn-lf/east-stress-store/internal/config"
)

// Postgres is the database/sql Store backed by the pgx driver.
type Postgres struct {
	db *sql.DB
}

// Connect opens and pings the database described by cfg and makes sure the
// schema exists.
func Connect(ctx context.Context, cfg config.DatabaseConfig) (*Postgres, error) {
	dsn := cfg.DSN()
	if dsn == "" {
		return nil, errors.New("missing DATABASE_URL or DB_HOST")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	p := &Postgres{db: db}
	if err := p.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("schema setup: %w", err)
	}
	return p, nil
}

// NewPostgres wraps an already opened handle. The schema is not touched.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Mode() string { return ModePostgres }

func (s *Postgres) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *Postgres) Close() error { return s.db.Close() }

func (s *Postgres) ensureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS products (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL,
			price BIGINT NOT NULL CHECK (price > 0),
			images TEXT NOT NULL DEFAULT '[]',
			total_pre_order INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL CHECK (status IN ('active','inactive')) DEFAULT 'active',
			valid_until TIMESTAMPTZ,
			whatsapp TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_products_created ON products (created_at DESC, id DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_products_status_created ON products (status, created_at DESC, id DESC)`,
		`CREATE TABLE IF NOT EXISTS additional_fields (
			id TEXT PRIMARY KEY,
			product_id TEXT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
			label TEXT NOT NULL,
			type TEXT NOT NULL CHECK (type IN ('text','number','textarea','radio')),
			options TEXT,
			position INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_additional_fields_product ON additional_fields (product_id, position)`,
		`CREATE TABLE IF NOT EXISTS pre_orders (
			id TEXT PRIMARY KEY,
			product_id TEXT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			email TEXT,
			phone TEXT NOT NULL,
			address TEXT,
			quantity INTEGER NOT NULL CHECK (quantity > 0),
			custom_fields TEXT,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_pre_orders_created ON pre_orders (created_at DESC, id DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_pre_orders_product_created ON pre_orders (product_id, created_at DESC, id DESC)`,
		`CREATE TABLE IF NOT EXISTS cms_profiles (
			id TEXT PRIMARY KEY,
			document TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS contact_messages (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL,
			message TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_contact_messages_created ON contact_messages (created_at DESC)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// mapError turns driver errors into the package sentinels.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23503":
			return fmt.Errorf("%s: %w", pgErr.ConstraintName, ErrNotFound)
		case "23505":
			return fmt.Errorf("%s: %w", pgErr.ConstraintName, ErrConflict)
		}
	}
	return err
}

func checkAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func nilIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}
