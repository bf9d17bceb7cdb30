package kv

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// TypedKV stores values of one type under a key namespace, JSON-encoded.
type TypedKV[T any] struct {
	store  KV
	prefix string
}

// Scoped stores keys as "namespace:key" in store.
func Scoped[T any](store KV, namespace string) *TypedKV[T] {
	return &TypedKV[T]{store: store, prefix: namespace + ":"}
}

// Get returns sql.ErrNoRows for a missing or expired key.
func (t *TypedKV[T]) Get(ctx context.Context, key string) (v T, err error) {
	err = t.store.Get(ctx, t.prefix+key, &v)
	return v, err
}

func (t *TypedKV[T]) Set(ctx context.Context, key string, value T) error {
	return t.store.Set(ctx, t.prefix+key, value)
}

// SetTTL stores value until ttl elapses. A ttl of zero or less never expires.
func (t *TypedKV[T]) SetTTL(ctx context.Context, key string, value T, ttl time.Duration) error {
	return t.store.SetTTL(ctx, t.prefix+key, value, ttl)
}

func (t *TypedKV[T]) Delete(ctx context.Context, key string) error {
	return t.store.Delete(ctx, t.prefix+key)
}

// Has reports whether key holds an unexpired value.
func (t *TypedKV[T]) Has(ctx context.Context, key string) (bool, error) {
	return t.store.Has(ctx, t.prefix+key)
}

// Age returns how long ago key was last written.
func (t *TypedKV[T]) Age(ctx context.Context, key string) (time.Duration, error) {
	entry, err := t.store.GetRaw(ctx, t.prefix+key)
	if err != nil {
		return 0, err
	}
	return time.Since(entry.UpdatedAt), nil
}

// Keys returns the unprefixed keys in this namespace.
func (t *TypedKV[T]) Keys(ctx context.Context) ([]string, error) {
	all, err := t.store.ListKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("list %s keys: %w", strings.TrimSuffix(t.prefix, ":"), err)
	}

	var keys []string
	for _, k := range all {
		if rest, ok := strings.CutPrefix(k, t.prefix); ok {
			keys = append(keys, rest)
		}
	}
	return keys, nil
}
