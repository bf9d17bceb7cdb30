package db

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenOptions_OrDefaults(t *testing.T) {
	got := OpenOptions{MaxOpenConns: 8, MaxIdleConns: -1}.orDefaults()

	assert.Equal(t, 8, got.MaxOpenConns)
	assert.Equal(t, DefaultOpenOptions().MaxIdleConns, got.MaxIdleConns)
	assert.Equal(t, DefaultOpenOptions().BusyTimeout, got.BusyTimeout)
}

func TestOpenOptions_DSN(t *testing.T) {
	dsn := OpenOptions{BusyTimeout: 250}.dsn("/tmp/x.db")

	assert.Contains(t, dsn, "file:/tmp/x.db?")
	assert.Contains(t, dsn, "busy_timeout%28250%29")
	assert.Contains(t, dsn, "journal_mode%28WAL%29")
}

func TestWithTx(t *testing.T) {
	database, err := Open(t.TempDir(), OpenOptions{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	ctx := context.Background()
	require.NoError(t, database.Ping(ctx))

	boom := errors.New("boom")
	err = database.WithTx(ctx, func(q *Queries) error {
		require.NoError(t, q.KVSet(ctx, KVSetParams{Key: "rolled-back", Value: []byte("1")}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = database.Queries().KVGet(ctx, "rolled-back")
	assert.ErrorIs(t, err, sql.ErrNoRows, "write inside a failed transaction is discarded")
}
