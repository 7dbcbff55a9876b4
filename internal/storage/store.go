// Package storage persists accounts, categories and transactions in SQLite and
// keeps every account's current balance equal to its initial balance plus the
// signed sum of its transactions.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"fintrack/internal/log"

	_ "modernc.org/sqlite"
)

// createdAtLayout matches the strftime default on created_at columns.
const createdAtLayout = "2006-01-02 15:04:05"

type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used by date-relative reports.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func dsnFor(path string) string {
	return "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// Open creates the database file (and its directory) if needed and migrates it.
func Open(dbPath string, opts ...Option) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	dsn := dsnFor(dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One connection keeps the per-connection pragmas and serialises writers.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dsn); err != nil {
		db.Close()
		return nil, err
	}

	s := &Store{db: db, path: dbPath, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	slog.Debug("Database opened",
		log.FieldComponent, log.ComponentStorage,
		log.FieldOperation, log.OpStartup,
		log.FieldPath, dbPath)
	return s, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// withTx runs fn in a transaction, committing on nil and rolling back otherwise.
// fn must use the given querier only; the pool has a single connection.
func (s *Store) withTx(ctx context.Context, fn func(q querier) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return wrap("begin tx", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return wrap("commit tx", err)
	}
	return nil
}

func parseCreatedAt(s string) time.Time {
	t, err := time.Parse(createdAtLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func notFound(what string, id int64) error {
	return fmt.Errorf("%s %d: %w", what, id, ErrNotFound)
}

// checkAffected maps zero affected rows onto ErrNotFound.
func checkAffected(res sql.Result, what string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return wrap("rows affected", err)
	}
	if n == 0 {
		return notFound(what, id)
	}
	return nil
}
