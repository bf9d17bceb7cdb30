package stores

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/colonyops/fleetcheck/internal/core/kv"
	"github.com/colonyops/fleetcheck/internal/data/db"
)

// KVStore is the SQLite implementation of kv.KV. Values are JSON encoded.
// Expired rows are deleted when read and by SweepExpired.
type KVStore struct {
	db *db.DB
}

var _ kv.KV = (*KVStore)(nil)

// NewKVStore creates a KV store on database.
func NewKVStore(database *db.DB) *KVStore {
	return &KVStore{db: database}
}

// load returns the live row for key. A missing or expired key yields an
// error wrapping sql.ErrNoRows; expired rows are removed on the way.
func (s *KVStore) load(ctx context.Context, op, key string) (db.KvStore, error) {
	row, err := s.db.Queries().KVGet(ctx, key)
	if err != nil {
		return db.KvStore{}, fmt.Errorf("kv %s %q: %w", op, key, err)
	}

	if row.ExpiresAt.Valid && row.ExpiresAt.Int64 < time.Now().UnixNano() {
		_ = s.db.Queries().KVDelete(ctx, key)
		return db.KvStore{}, fmt.Errorf("kv %s %q: %w", op, key, sql.ErrNoRows)
	}
	return row, nil
}

// Get decodes the value stored under key into dest.
func (s *KVStore) Get(ctx context.Context, key string, dest any) error {
	row, err := s.load(ctx, "get", key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(row.Value, dest); err != nil {
		return fmt.Errorf("kv get %q: decode: %w", key, err)
	}
	return nil
}

// GetRaw returns the stored entry with its timestamps.
func (s *KVStore) GetRaw(ctx context.Context, key string) (kv.Entry, error) {
	row, err := s.load(ctx, "get raw", key)
	if err != nil {
		return kv.Entry{}, err
	}

	entry := kv.Entry{
		Key:       row.Key,
		Value:     json.RawMessage(row.Value),
		CreatedAt: time.Unix(0, row.CreatedAt),
		UpdatedAt: time.Unix(0, row.UpdatedAt),
	}
	if row.ExpiresAt.Valid {
		exp := time.Unix(0, row.ExpiresAt.Int64)
		entry.ExpiresAt = &exp
	}
	return entry, nil
}

// Has reports whether key holds an unexpired value.
func (s *KVStore) Has(ctx context.Context, key string) (bool, error) {
	_, err := s.load(ctx, "has", key)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	default:
		return false, err
	}
}

// Set stores value under key with no expiry.
func (s *KVStore) Set(ctx context.Context, key string, value any) error {
	return s.write(ctx, key, value, sql.NullInt64{})
}

// SetTTL stores value under key until ttl has passed. A non-positive ttl
// means no expiry.
func (s *KVStore) SetTTL(ctx context.Context, key string, value any, ttl time.Duration) error {
	if ttl <= 0 {
		return s.Set(ctx, key, value)
	}
	expires := sql.NullInt64{Int64: time.Now().Add(ttl).UnixNano(), Valid: true}
	return s.write(ctx, key, value, expires)
}

// Delete removes key. Deleting a missing key is not an error.
func (s *KVStore) Delete(ctx context.Context, key string) error {
	if err := s.db.Queries().KVDelete(ctx, key); err != nil {
		return fmt.Errorf("kv delete %q: %w", key, err)
	}
	return nil
}

// ListKeys returns every unexpired key, sorted.
func (s *KVStore) ListKeys(ctx context.Context) ([]string, error) {
	keys, err := s.db.Queries().KVListKeys(ctx, nowParam())
	if err != nil {
		return nil, fmt.Errorf("kv list keys: %w", err)
	}
	return keys, nil
}

// SweepExpired deletes every row whose TTL has passed.
func (s *KVStore) SweepExpired(ctx context.Context) error {
	if err := s.db.Queries().KVSweepExpired(ctx, nowParam()); err != nil {
		return fmt.Errorf("kv sweep expired: %w", err)
	}
	return nil
}

func (s *KVStore) write(ctx context.Context, key string, value any, expiresAt sql.NullInt64) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("kv set %q: encode: %w", key, err)
	}

	now := time.Now().UnixNano()
	params := db.KVSetParams{
		Key:       key,
		Value:     data,
		ExpiresAt: expiresAt,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := retryBusy(ctx, func() error { return s.db.Queries().KVSet(ctx, params) }); err != nil {
		return fmt.Errorf("kv set %q: %w", key, err)
	}
	return nil
}

func nowParam() sql.NullInt64 {
	return sql.NullInt64{Int64: time.Now().UnixNano(), Valid: true}
}
