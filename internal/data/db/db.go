// Package db owns the local SQLite database: connection setup, schema
// migrations and the hand-written queries used by the stores.
package db

import (
	"cmp"
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// FileName is the database file created inside the data directory.
const FileName = "fleetcheck.db"

// A fresh file can refuse connections briefly while another process holds
// it, so Open pings a few times before giving up.
const (
	openAttempts = 5
	openBackoff  = 100 * time.Millisecond
)

// OpenOptions tunes the connection pool. Zero values take the defaults.
type OpenOptions struct {
	MaxOpenConns int
	MaxIdleConns int
	BusyTimeout  int // milliseconds
}

// DefaultOpenOptions returns the pool settings used when config leaves them unset.
func DefaultOpenOptions() OpenOptions {
	return OpenOptions{MaxOpenConns: 4, MaxIdleConns: 2, BusyTimeout: 5000}
}

func (o OpenOptions) orDefaults() OpenOptions {
	d := DefaultOpenOptions()
	return OpenOptions{
		MaxOpenConns: cmp.Or(max(o.MaxOpenConns, 0), d.MaxOpenConns),
		MaxIdleConns: cmp.Or(max(o.MaxIdleConns, 0), d.MaxIdleConns),
		BusyTimeout:  cmp.Or(max(o.BusyTimeout, 0), d.BusyTimeout),
	}
}

// dsn enables WAL so the sweep can write while the check-in screen reads.
func (o OpenOptions) dsn(path string) string {
	q := url.Values{}
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", o.BusyTimeout))
	return "file:" + path + "?" + q.Encode()
}

// DB is the migrated database and its query set.
type DB struct {
	conn    *sql.DB
	queries *Queries
}

// Open opens <dataDir>/fleetcheck.db, creating it if needed, and applies any
// pending migrations.
func Open(dataDir string, opts OpenOptions) (*DB, error) {
	opts = opts.orDefaults()

	conn, err := sql.Open("sqlite", opts.dsn(filepath.Join(dataDir, FileName)))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	conn.SetMaxOpenConns(opts.MaxOpenConns)
	conn.SetMaxIdleConns(opts.MaxIdleConns)

	ctx := context.Background()
	if err := waitReady(ctx, conn); err != nil {
		_ = conn.Close()
		return nil, err
	}
	if err := migrateUp(ctx, conn); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	return &DB{conn: conn, queries: New(conn)}, nil
}

func waitReady(ctx context.Context, conn *sql.DB) error {
	wait := openBackoff
	var err error
	for attempt := 1; ; attempt++ {
		if err = conn.PingContext(ctx); err == nil {
			return nil
		}
		if attempt == openAttempts {
			return fmt.Errorf("database not ready after %d attempts: %w", attempt, err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
			wait *= 2
		}
	}
}

func (db *DB) Close() error { return db.conn.Close() }

// Conn exposes the underlying connection for migrations and tests.
func (db *DB) Conn() *sql.DB { return db.conn }

func (db *DB) Queries() *Queries { return db.queries }

// Ping runs a trivial query, which unlike sql.DB.Ping touches the file.
func (db *DB) Ping(ctx context.Context) error {
	var one int
	if err := db.conn.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("query database: %w", err)
	}
	return nil
}

// WithTx runs fn inside a transaction, committing only when fn succeeds.
func (db *DB) WithTx(ctx context.Context, fn func(*Queries) error) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(db.queries.WithTx(tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
