package db

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Queries groups the statements used by the stores.
type Queries struct {
	db DBTX
}

// New binds a query set to a connection or transaction.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns a copy of q bound to tx.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// KvStore is a row of the kv_store table.
type KvStore struct {
	Key       string
	Value     []byte
	ExpiresAt sql.NullInt64
	CreatedAt int64
	UpdatedAt int64
}

// KVSetParams are the arguments to KVSet.
type KVSetParams struct {
	Key       string
	Value     []byte
	ExpiresAt sql.NullInt64
	CreatedAt int64
	UpdatedAt int64
}

const kvGet = `SELECT key, value, expires_at, created_at, updated_at FROM kv_store WHERE key = ?`

func (q *Queries) KVGet(ctx context.Context, key string) (KvStore, error) {
	var row KvStore
	err := q.db.QueryRowContext(ctx, kvGet, key).Scan(
		&row.Key, &row.Value, &row.ExpiresAt, &row.CreatedAt, &row.UpdatedAt,
	)
	return row, err
}

const kvSet = `
INSERT INTO kv_store (key, value, expires_at, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (key) DO UPDATE SET
    value      = excluded.value,
    expires_at = excluded.expires_at,
    updated_at = excluded.updated_at`

func (q *Queries) KVSet(ctx context.Context, arg KVSetParams) error {
	_, err := q.db.ExecContext(ctx, kvSet, arg.Key, arg.Value, arg.ExpiresAt, arg.CreatedAt, arg.UpdatedAt)
	return err
}

const kvDelete = `DELETE FROM kv_store WHERE key = ?`

func (q *Queries) KVDelete(ctx context.Context, key string) error {
	_, err := q.db.ExecContext(ctx, kvDelete, key)
	return err
}

const kvListKeys = `
SELECT key FROM kv_store
WHERE expires_at IS NULL OR expires_at >= ?
ORDER BY key`

func (q *Queries) KVListKeys(ctx context.Context, now sql.NullInt64) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, kvListKeys, now)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

const kvSweepExpired = `DELETE FROM kv_store WHERE expires_at IS NOT NULL AND expires_at < ?`

func (q *Queries) KVSweepExpired(ctx context.Context, now sql.NullInt64) error {
	_, err := q.db.ExecContext(ctx, kvSweepExpired, now)
	return err
}

// CheckinHistory is a row of the checkin_history table.
type CheckinHistory struct {
	ID          int64
	BatchID     string
	Kind        string
	DriverID    string
	ItemID      string
	Description string
	Ok          bool
	Error       string
	CreatedAt   int64
}

// HistoryInsertParams are the arguments to HistoryInsert.
type HistoryInsertParams struct {
	BatchID     string
	Kind        string
	DriverID    string
	ItemID      string
	Description string
	Ok          bool
	Error       string
	CreatedAt   int64
}

const historyInsert = `
INSERT INTO checkin_history (batch_id, kind, driver_id, item_id, description, ok, error, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) HistoryInsert(ctx context.Context, arg HistoryInsertParams) error {
	_, err := q.db.ExecContext(ctx, historyInsert,
		arg.BatchID, arg.Kind, arg.DriverID, arg.ItemID, arg.Description, arg.Ok, arg.Error, arg.CreatedAt,
	)
	return err
}

const historyListByDriver = `
SELECT id, batch_id, kind, driver_id, item_id, description, ok, error, created_at
FROM checkin_history
WHERE driver_id = ?
ORDER BY created_at DESC, id DESC
LIMIT ?`

func (q *Queries) HistoryListByDriver(ctx context.Context, driverID string, limit int64) ([]CheckinHistory, error) {
	rows, err := q.db.QueryContext(ctx, historyListByDriver, driverID, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []CheckinHistory
	for rows.Next() {
		var h CheckinHistory
		if err := rows.Scan(
			&h.ID, &h.BatchID, &h.Kind, &h.DriverID, &h.ItemID,
			&h.Description, &h.Ok, &h.Error, &h.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

const historyPruneBefore = `DELETE FROM checkin_history WHERE created_at < ?`

func (q *Queries) HistoryPruneBefore(ctx context.Context, before int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, historyPruneBefore, before)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
