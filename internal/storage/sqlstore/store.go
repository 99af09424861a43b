// Package sqlstore implements the Record Store on database/sql.
//
// Two engines share one schema and one set of queries:
//
//   - SQLite (embedded, github.com/ncruces/go-sqlite3), the default for single-node
//     deployments and tests. The database runs in WAL mode with immediate write
//     transactions so read-then-write units of work do not deadlock.
//   - PostgreSQL (github.com/jackc/pgx/v5/stdlib) for shared deployments.
//
// Queries are written with ? placeholders and rebound per dialect. Timestamps are
// stored as unix milliseconds and attribute bags as JSON text so both engines scan
// identically.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/honeycarbs/talentsync/internal/repository"
)

var _ repository.Store = (*Store)(nil)

// Config selects and locates the database
type Config struct {
	Driver Driver
	// DSN is a file path for SQLite and a connection URL for PostgreSQL
	DSN string

	MaxOpenConns int
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store implements repository.Store over a *sql.DB or a *sql.Tx
type Store struct {
	db      *sql.DB
	q       querier
	dialect dialect
	inTx    bool
	clock   func() time.Time
}

// Open connects to the configured database and verifies connectivity.
// The caller must call Close.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	d, err := dialectFor(cfg.Driver)
	if err != nil {
		return nil, err
	}

	dsn := cfg.DSN
	if cfg.Driver == DriverSQLite || cfg.Driver == "" {
		dsn, err = sqliteDSN(cfg.DSN)
		if err != nil {
			return nil, err
		}
	}

	db, err := sql.Open(d.driverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlstore: ping database: %w", err)
	}

	maxOpen := cfg.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 25
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &Store{
		db:      db,
		q:       db,
		dialect: d,
		clock:   time.Now,
	}, nil
}

func sqliteDSN(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("sqlstore: sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("sqlstore: create database directory: %w", err)
	}

	params := url.Values{}
	params.Add("_pragma", "busy_timeout(5000)")
	params.Add("_pragma", "journal_mode(wal)")
	params.Add("_pragma", "foreign_keys(1)")
	params.Set("_txlock", "immediate")
	return "file:" + path + "?" + params.Encode(), nil
}

// DB exposes the underlying pool
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the pool; it is a no-op on a transaction-scoped store
func (s *Store) Close(_ context.Context) error {
	if s.inTx || s.db == nil {
		return nil
	}
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("sqlstore: close database: %w", err)
	}
	return nil
}

// WithinTx runs fn in a single transaction. Nested calls reuse the outer one.
func (s *Store) WithinTx(ctx context.Context, fn func(tx repository.Store) error) error {
	if s.inTx {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlstore: begin transaction: %w", err)
	}

	scoped := &Store{
		db:      s.db,
		q:       tx,
		dialect: s.dialect,
		inTx:    true,
		clock:   s.clock,
	}

	if err := fn(scoped); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlstore: commit transaction: %w", err)
	}
	return nil
}

// Migrate creates tables and indexes if they do not exist
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.q.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("sqlstore: migrate: %w", err)
		}
	}
	return nil
}

func (s *Store) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.q.ExecContext(ctx, s.dialect.rebind(query), args...)
}

func (s *Store) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.q.QueryContext(ctx, s.dialect.rebind(query), args...)
}

func (s *Store) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return s.q.QueryRowContext(ctx, s.dialect.rebind(query), args...)
}

func (s *Store) now() int64 {
	return s.clock().UnixMilli()
}

func nullFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

func nullString(v string) any {
	if v == "" {
		return nil
	}
	return v
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

func toMillis(t time.Time, fallback int64) int64 {
	if t.IsZero() {
		return fallback
	}
	return t.UnixMilli()
}
