// Package testbus wraps a running EventBus and records everything published
// on it, for assertions in tests.
package testbus

import (
	"context"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/colonyops/fleetcheck/internal/core/eventbus"
)

// RecordedEvent is one publish seen on the bus.
type RecordedEvent struct {
	Event   eventbus.Event
	Payload any
}

// Bus is a started EventBus that records each event as it is queued.
type Bus struct {
	*eventbus.EventBus

	mu      sync.Mutex
	events  []RecordedEvent
	changed chan struct{} // closed and replaced on every record
}

// New starts a bus for the duration of the test.
func New(t *testing.T) *Bus {
	t.Helper()

	tb := &Bus{
		EventBus: eventbus.New(64),
		changed:  make(chan struct{}),
	}
	tb.OnPublish(tb.record)

	ctx, cancel := context.WithCancel(context.Background())
	go tb.Start(ctx)
	t.Cleanup(cancel)

	return tb
}

func (tb *Bus) record(event eventbus.Event, payload any) {
	tb.mu.Lock()
	tb.events = append(tb.events, RecordedEvent{Event: event, Payload: payload})
	close(tb.changed)
	tb.changed = make(chan struct{})
	tb.mu.Unlock()
}

// Events returns everything recorded so far, in publish order.
func (tb *Bus) Events() []RecordedEvent {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return slices.Clone(tb.events)
}

// Of returns the payloads recorded for one event, in publish order.
func (tb *Bus) Of(event eventbus.Event) []any {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	var out []any
	for _, e := range tb.events {
		if e.Event == event {
			out = append(out, e.Payload)
		}
	}
	return out
}

// Payloads returns the recorded payloads of one event as T.
func Payloads[T any](tb *Bus, event eventbus.Event) []T {
	var out []T
	for _, p := range tb.Of(event) {
		if v, ok := p.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

// WaitFor reports whether event is recorded before timeout.
func (tb *Bus) WaitFor(event eventbus.Event, timeout time.Duration) bool {
	deadline := time.After(timeout)
	for {
		tb.mu.Lock()
		found := slices.ContainsFunc(tb.events, func(e RecordedEvent) bool { return e.Event == event })
		changed := tb.changed
		tb.mu.Unlock()

		if found {
			return true
		}
		select {
		case <-changed:
		case <-deadline:
			return false
		}
	}
}

// AssertPublished fails the test unless event is recorded within 500ms.
func (tb *Bus) AssertPublished(t *testing.T, event eventbus.Event) {
	t.Helper()
	if !tb.WaitFor(event, 500*time.Millisecond) {
		t.Errorf("expected event %q to be published", event)
	}
}

// AssertNotPublished fails the test if event is recorded within wait.
func (tb *Bus) AssertNotPublished(t *testing.T, event eventbus.Event, wait time.Duration) {
	t.Helper()
	if tb.WaitFor(event, wait) {
		t.Errorf("expected event %q not to be published", event)
	}
}
