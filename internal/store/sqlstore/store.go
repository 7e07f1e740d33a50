// Package sqlstore implements store.Store on database/sql, backed by SQLite
// for single-node installs or Postgres for hosted deployments.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/sensifinder/sensifinder-server/internal/store"
)

var _ store.Store = (*Store)(nil)

// Options configures Open.
type Options struct {
	Driver Driver
	// DSN is a file path for SQLite or a connection URL for Postgres.
	DSN    string
	Logger *slog.Logger
}

// Store provides SQL-backed profile persistence.
type Store struct {
	db      *sql.DB
	dialect dialect
	logger  *slog.Logger
}

// Open connects, verifies the connection and applies the schema.
func Open(ctx context.Context, opts Options) (*Store, error) {
	d, err := dialectFor(opts.Driver)
	if err != nil {
		return nil, err
	}
	if opts.DSN == "" {
		return nil, fmt.Errorf("open %s: empty dsn", d.driver)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	dsn := opts.DSN
	if d.driver == DriverSQLite {
		dsn = sqliteDSN(dsn)
	}

	db, err := sql.Open(d.driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d.driver, err)
	}

	if d.driver == DriverSQLite {
		db.SetMaxOpenConns(4)
		db.SetMaxIdleConns(2)
	} else {
		db.SetMaxOpenConns(16)
		db.SetMaxIdleConns(4)
	}
	db.SetConnMaxLifetime(time.Hour)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", d.driver, err)
	}

	if _, err := db.ExecContext(ctx, d.schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("exec schema: %w", err)
	}

	logger.Info("profile store opened", "driver", string(d.driver))

	return &Store{db: db, dialect: d, logger: logger}, nil
}

// OpenSQLite opens a SQLite store at path.
func OpenSQLite(ctx context.Context, path string, logger *slog.Logger) (*Store, error) {
	return Open(ctx, Options{Driver: DriverSQLite, DSN: path, Logger: logger})
}

// sqliteDSN turns a file path into a DSN carrying the per-connection pragmas.
// Every pooled connection gets them, not just the first.
func sqliteDSN(path string) string {
	q := url.Values{}
	for _, p := range []string{
		"journal_mode(WAL)",
		"synchronous(NORMAL)",
		"foreign_keys(ON)",
		"busy_timeout(5000)",
	} {
		q.Add("_pragma", p)
	}
	return "file:" + path + "?" + q.Encode()
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Driver reports which backend the store runs on.
func (s *Store) Driver() Driver {
	return s.dialect.driver
}

func (s *Store) q(query string) string {
	return s.dialect.rebind(query)
}

// formatTime formats a time.Time to RFC3339Nano for storage.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTime parses a RFC3339Nano string back to time.Time.
func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// nullString maps "" to NULL.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
