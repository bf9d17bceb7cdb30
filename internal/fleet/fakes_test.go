package fleet

import (
	"context"
	"sync"

	"github.com/colonyops/fleetcheck/internal/core/checkin"
	"github.com/colonyops/fleetcheck/internal/data/stores"
)

type fakeSource struct {
	mu       sync.Mutex
	items    []checkin.Item
	err      error
	calls    int
	subjects []string
	started  chan struct{} // receives once per fetch, before any hold
	hold     chan struct{} // when set, the next fetch waits on it
}

// Fetch captures the current list before waiting on hold, so a held fetch
// returns what the server had when it was asked.
func (f *fakeSource) Fetch(ctx context.Context, subjectID string) ([]checkin.Item, error) {
	f.mu.Lock()
	f.calls++
	f.subjects = append(f.subjects, subjectID)
	items, err := f.items, f.err
	started, hold := f.started, f.hold
	f.hold = nil
	f.mu.Unlock()

	var out []checkin.Item
	if err == nil {
		out = make([]checkin.Item, len(items))
		copy(out, items)
	}

	if started != nil {
		started <- struct{}{}
	}
	if hold != nil {
		select {
		case <-hold:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return out, err
}

// holdNext makes the next fetch block until the returned channel is closed.
func (f *fakeSource) holdNext() chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hold = make(chan struct{})
	f.started = make(chan struct{}, 8)
	return f.hold
}

func (f *fakeSource) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeSource) set(items []checkin.Item, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = items
	f.err = err
}

type fakeSink struct {
	mu      sync.Mutex
	fail    map[checkin.ID]error
	calls   []checkin.ID
	started chan checkin.ID // receives each id before the call blocks
	release chan struct{}   // when set, each call waits on it
}

func newFakeSink() *fakeSink {
	return &fakeSink{fail: map[checkin.ID]error{}}
}

func (f *fakeSink) CheckIn(ctx context.Context, id checkin.ID) error {
	f.mu.Lock()
	f.calls = append(f.calls, id)
	started, release := f.started, f.release
	err := f.fail[id]
	f.mu.Unlock()

	if started != nil {
		started <- id
	}
	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func (f *fakeSink) Calls() []checkin.ID {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]checkin.ID, len(f.calls))
	copy(out, f.calls)
	return out
}

type fakeHistory struct {
	mu      sync.Mutex
	entries []stores.HistoryEntry
}

func (f *fakeHistory) RecordBatch(_ context.Context, entries []stores.HistoryEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, entries...)
	return nil
}

func (f *fakeHistory) Entries() []stores.HistoryEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]stores.HistoryEntry(nil), f.entries...)
}

func item(id, status string, selected bool) checkin.Item {
	return checkin.Item{
		ID:          checkin.ID(id),
		Kind:        checkin.KindAppointment,
		Status:      status,
		Selected:    selected,
		Description: "Item " + id,
	}
}
