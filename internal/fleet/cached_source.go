package fleet

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/fleetcheck/internal/core/checkin"
	"github.com/colonyops/fleetcheck/internal/core/kv"
)

// cachedList is the KV representation of a fetched item list.
type cachedList struct {
	Items     []checkin.Item `json:"items"`
	FetchedAt time.Time      `json:"fetched_at"`
}

// FetchInfo describes where the last list returned by a CachedSource came from.
type FetchInfo struct {
	Stale     bool
	FetchedAt time.Time
}

// CachedSource wraps an ItemSource with an offline copy in the KV store.
// Successful fetches are cached under items:<kind>:<driver>. When the
// wrapped source cannot be reached the cached list is served instead and
// marked stale. Any other error is returned unchanged.
type CachedSource struct {
	kind  checkin.Kind
	inner checkin.ItemSource
	cache *kv.TypedKV[cachedList]
	ttl   time.Duration
	log   zerolog.Logger

	mu   sync.Mutex
	last FetchInfo
}

// NewCachedSource wraps inner for one item kind.
func NewCachedSource(kind checkin.Kind, inner checkin.ItemSource, store kv.KV, ttl time.Duration, log zerolog.Logger) *CachedSource {
	return &CachedSource{
		kind:  kind,
		inner: inner,
		cache: kv.Scoped[cachedList](store, "items:"+string(kind)),
		ttl:   ttl,
		log:   log.With().Str("component", "item-cache").Str("kind", string(kind)).Logger(),
	}
}

// Fetch implements checkin.ItemSource.
func (s *CachedSource) Fetch(ctx context.Context, subjectID string) ([]checkin.Item, error) {
	items, err := s.inner.Fetch(ctx, subjectID)
	if err == nil {
		entry := cachedList{Items: items, FetchedAt: time.Now()}
		if s.ttl > 0 {
			if err := s.cache.SetTTL(ctx, subjectID, entry, s.ttl); err != nil {
				s.log.Warn().Err(err).Msg("cache items")
			}
		}
		s.setLast(FetchInfo{FetchedAt: entry.FetchedAt})
		return items, nil
	}

	if !errors.Is(err, checkin.ErrNoConnectivity) {
		return nil, err
	}

	cached, cerr := s.cache.Get(ctx, subjectID)
	if cerr != nil {
		s.log.Debug().Err(cerr).Str("driver_id", subjectID).Msg("no cached items")
		return nil, err
	}

	s.log.Info().
		Str("driver_id", subjectID).
		Time("fetched_at", cached.FetchedAt).
		Msg("serving cached items while offline")
	s.setLast(FetchInfo{Stale: true, FetchedAt: cached.FetchedAt})
	return cached.Items, nil
}

// Last reports how the most recent successful Fetch was served.
func (s *CachedSource) Last() FetchInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Kind returns the item kind this source serves.
func (s *CachedSource) Kind() checkin.Kind { return s.kind }

// Age reports how long ago the list for subjectID was cached. ok is false
// when there is no unexpired copy.
func (s *CachedSource) Age(ctx context.Context, subjectID string) (age time.Duration, ok bool, err error) {
	has, err := s.cache.Has(ctx, subjectID)
	if err != nil || !has {
		return 0, false, err
	}
	age, err = s.cache.Age(ctx, subjectID)
	if err != nil {
		return 0, false, err
	}
	return age, true, nil
}

// CachedDrivers lists the drivers that have a cached list of this kind.
func (s *CachedSource) CachedDrivers(ctx context.Context) ([]string, error) {
	return s.cache.Keys(ctx)
}

// Forget drops the cached list for a driver.
func (s *CachedSource) Forget(ctx context.Context, subjectID string) error {
	return s.cache.Delete(ctx, subjectID)
}

func (s *CachedSource) setLast(info FetchInfo) {
	s.mu.Lock()
	s.last = info
	s.mu.Unlock()
}
