package fleet

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/fleetcheck/internal/core/checkin"
)

func TestCachedSource(t *testing.T) {
	ctx := context.Background()

	t.Run("caches successful fetch", func(t *testing.T) {
		store := newTestKV(t)
		src := &fakeSource{items: []checkin.Item{item("A", "pending", false)}}
		cs := NewCachedSource(checkin.KindBooking, src, store, time.Hour, zerolog.Nop())

		items, err := cs.Fetch(ctx, "drv-1")
		require.NoError(t, err)
		assert.Len(t, items, 1)
		assert.False(t, cs.Last().Stale)

		has, err := store.Has(ctx, "items:booking:drv-1")
		require.NoError(t, err)
		assert.True(t, has)
	})

	t.Run("serves cache when offline", func(t *testing.T) {
		store := newTestKV(t)
		src := &fakeSource{items: []checkin.Item{item("A", "pending", false), item("B", "done", false)}}
		cs := NewCachedSource(checkin.KindBooking, src, store, time.Hour, zerolog.Nop())

		_, err := cs.Fetch(ctx, "drv-1")
		require.NoError(t, err)

		src.set(nil, checkin.ErrNoConnectivity)
		items, err := cs.Fetch(ctx, "drv-1")
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, checkin.ID("B"), items[1].ID)

		last := cs.Last()
		assert.True(t, last.Stale)
		assert.False(t, last.FetchedAt.IsZero())
	})

	t.Run("offline without cache returns error", func(t *testing.T) {
		store := newTestKV(t)
		src := &fakeSource{err: checkin.ErrNoConnectivity}
		cs := NewCachedSource(checkin.KindBooking, src, store, time.Hour, zerolog.Nop())

		_, err := cs.Fetch(ctx, "drv-1")
		require.ErrorIs(t, err, checkin.ErrNoConnectivity)
	})

	t.Run("other errors bypass cache", func(t *testing.T) {
		store := newTestKV(t)
		src := &fakeSource{items: []checkin.Item{item("A", "pending", false)}}
		cs := NewCachedSource(checkin.KindBooking, src, store, time.Hour, zerolog.Nop())

		_, err := cs.Fetch(ctx, "drv-1")
		require.NoError(t, err)

		rejected := &checkin.RemoteRejectedError{Code: 403, Message: "forbidden"}
		src.set(nil, rejected)
		_, err = cs.Fetch(ctx, "drv-1")

		var target *checkin.RemoteRejectedError
		require.True(t, errors.As(err, &target))
		assert.Equal(t, 403, target.Code)
	})

	t.Run("cache is per driver", func(t *testing.T) {
		store := newTestKV(t)
		src := &fakeSource{items: []checkin.Item{item("A", "pending", false)}}
		cs := NewCachedSource(checkin.KindLogbook, src, store, time.Hour, zerolog.Nop())

		_, err := cs.Fetch(ctx, "drv-1")
		require.NoError(t, err)

		src.set(nil, checkin.ErrNoConnectivity)
		_, err = cs.Fetch(ctx, "drv-2")
		require.ErrorIs(t, err, checkin.ErrNoConnectivity)
	})

	t.Run("forget drops cache", func(t *testing.T) {
		store := newTestKV(t)
		src := &fakeSource{items: []checkin.Item{item("A", "pending", false)}}
		cs := NewCachedSource(checkin.KindAppointment, src, store, time.Hour, zerolog.Nop())

		_, err := cs.Fetch(ctx, "drv-1")
		require.NoError(t, err)
		require.NoError(t, cs.Forget(ctx, "drv-1"))

		src.set(nil, checkin.ErrNoConnectivity)
		_, err = cs.Fetch(ctx, "drv-1")
		require.ErrorIs(t, err, checkin.ErrNoConnectivity)
	})
	t.Run("reports age and cached drivers", func(t *testing.T) {
		store := newTestKV(t)
		src := &fakeSource{items: []checkin.Item{item("A", "pending", false)}}
		cs := NewCachedSource(checkin.KindBooking, src, store, time.Hour, zerolog.Nop())

		_, ok, err := cs.Age(ctx, "drv-1")
		require.NoError(t, err)
		assert.False(t, ok, "nothing cached yet")

		_, err = cs.Fetch(ctx, "drv-1")
		require.NoError(t, err)
		_, err = cs.Fetch(ctx, "drv-2")
		require.NoError(t, err)

		age, ok, err := cs.Age(ctx, "drv-1")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Less(t, age, time.Minute)

		drivers, err := cs.CachedDrivers(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"drv-1", "drv-2"}, drivers)

		other := NewCachedSource(checkin.KindLogbook, src, store, time.Hour, zerolog.Nop())
		drivers, err = other.CachedDrivers(ctx)
		require.NoError(t, err)
		assert.Empty(t, drivers)
	})
}
