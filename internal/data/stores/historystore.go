package stores

import (
	"context"
	"fmt"
	"time"

	"github.com/colonyops/fleetcheck/internal/core/checkin"
	"github.com/colonyops/fleetcheck/internal/data/db"
)

// HistoryEntry is one recorded check-in attempt.
type HistoryEntry struct {
	BatchID     string       `json:"batch_id"`
	Kind        checkin.Kind `json:"kind"`
	DriverID    string       `json:"driver_id"`
	ItemID      checkin.ID   `json:"item_id"`
	Description string       `json:"description,omitempty"`
	OK          bool         `json:"ok"`
	Error       string       `json:"error,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}

// HistoryStore records check-in attempts in SQLite so drivers can review
// what was sent from this device.
type HistoryStore struct {
	db *db.DB
}

// NewHistoryStore creates a new SQLite-backed history store.
func NewHistoryStore(db *db.DB) *HistoryStore {
	return &HistoryStore{db: db}
}

// RecordBatch writes every entry of one batch in a single transaction,
// retrying when the database is busy.
func (s *HistoryStore) RecordBatch(ctx context.Context, entries []HistoryEntry) error {
	if len(entries) == 0 {
		return nil
	}

	return retryBusy(ctx, func() error { return s.recordBatch(ctx, entries) })
}

func (s *HistoryStore) recordBatch(ctx context.Context, entries []HistoryEntry) error {
	return s.db.WithTx(ctx, func(q *db.Queries) error {
		for _, e := range entries {
			createdAt := e.CreatedAt
			if createdAt.IsZero() {
				createdAt = time.Now()
			}
			if err := q.HistoryInsert(ctx, db.HistoryInsertParams{
				BatchID:     e.BatchID,
				Kind:        string(e.Kind),
				DriverID:    e.DriverID,
				ItemID:      string(e.ItemID),
				Description: e.Description,
				Ok:          e.OK,
				Error:       e.Error,
				CreatedAt:   createdAt.UnixNano(),
			}); err != nil {
				return fmt.Errorf("record history for item %s: %w", e.ItemID, err)
			}
		}
		return nil
	})
}

// ListByDriver returns the newest entries for a driver, at most limit rows.
func (s *HistoryStore) ListByDriver(ctx context.Context, driverID string, limit int) ([]HistoryEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.Queries().HistoryListByDriver(ctx, driverID, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("list history for %s: %w", driverID, err)
	}

	out := make([]HistoryEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, HistoryEntry{
			BatchID:     r.BatchID,
			Kind:        checkin.Kind(r.Kind),
			DriverID:    r.DriverID,
			ItemID:      checkin.ID(r.ItemID),
			Description: r.Description,
			OK:          r.Ok,
			Error:       r.Error,
			CreatedAt:   time.Unix(0, r.CreatedAt),
		})
	}
	return out, nil
}

// PruneOlderThan deletes entries older than the given age and returns how
// many were removed.
func (s *HistoryStore) PruneOlderThan(ctx context.Context, age time.Duration) (int64, error) {
	n, err := s.db.Queries().HistoryPruneBefore(ctx, time.Now().Add(-age).UnixNano())
	if err != nil {
		return 0, fmt.Errorf("prune history: %w", err)
	}
	return n, nil
}
