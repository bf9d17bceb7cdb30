// Package sweep runs periodic cleanup of expired local state.
package sweep

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// ExpiredSweeper deletes KV entries whose TTL has passed.
type ExpiredSweeper interface {
	SweepExpired(ctx context.Context) error
}

// HistoryPruner deletes history rows older than a given age.
type HistoryPruner interface {
	PruneOlderThan(ctx context.Context, age time.Duration) (int64, error)
}

// Options configures Start.
type Options struct {
	Interval  time.Duration
	Retention time.Duration // zero keeps history forever
}

// Start periodically sweeps expired KV entries and prunes old history.
// It blocks until the context is cancelled. history may be nil.
func Start(ctx context.Context, kvStore ExpiredSweeper, history HistoryPruner, opts Options) {
	ticker := time.NewTicker(opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			Once(ctx, kvStore, history, opts.Retention)
		}
	}
}

// Once runs a single sweep pass.
func Once(ctx context.Context, kvStore ExpiredSweeper, history HistoryPruner, retention time.Duration) {
	if err := kvStore.SweepExpired(ctx); err != nil {
		log.Debug().Err(err).Msg("kv sweep failed")
	}

	if history == nil || retention <= 0 {
		return
	}

	n, err := history.PruneOlderThan(ctx, retention)
	if err != nil {
		log.Debug().Err(err).Msg("history prune failed")
		return
	}
	if n > 0 {
		log.Debug().Int64("rows", n).Msg("pruned check-in history")
	}
}
