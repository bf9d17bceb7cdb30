package eventbus_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/colonyops/fleetcheck/internal/core/checkin"
	"github.com/colonyops/fleetcheck/internal/core/eventbus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startBus(t *testing.T, buffer int) *eventbus.EventBus {
	t.Helper()
	bus := eventbus.New(buffer)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go bus.Start(ctx)
	return bus
}

func TestEventBus_DeliversInOrder(t *testing.T) {
	bus := startBus(t, 16)

	var (
		mu   sync.Mutex
		got  []int
		done = make(chan struct{})
	)
	bus.SubscribeSelectionChanged(func(p eventbus.SelectionChangedPayload) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, p.Snapshot.SelectedCount)
		if len(got) == 3 {
			close(done)
		}
	})

	for i := 1; i <= 3; i++ {
		bus.PublishSelectionChanged(eventbus.SelectionChangedPayload{
			Kind:     checkin.KindAppointment,
			Snapshot: checkin.Snapshot{SelectedCount: i},
		})
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for events")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{1, 2, 3}, got)
}

func TestEventBus_RecoversSubscriberPanic(t *testing.T) {
	bus := startBus(t, 4)

	panicked := make(chan any, 1)
	bus.OnPanic(func(_ eventbus.Event, _ any, recovered any) {
		panicked <- recovered
	})

	delivered := make(chan struct{})
	bus.SubscribeDriverIdentified(func(eventbus.DriverIdentifiedPayload) {
		panic("boom")
	})
	bus.SubscribeDriverIdentified(func(eventbus.DriverIdentifiedPayload) {
		close(delivered)
	})

	bus.PublishDriverIdentified(eventbus.DriverIdentifiedPayload{DriverID: "d-1"})

	select {
	case r := <-panicked:
		assert.Equal(t, "boom", r)
	case <-time.After(time.Second):
		t.Fatal("panic hook not called")
	}

	select {
	case <-delivered:
	case <-time.After(time.Second):
		t.Fatal("second subscriber not called after panic")
	}
}

func TestEventBus_DropsWhenFull(t *testing.T) {
	// Not started: nothing drains the buffer.
	bus := eventbus.New(1)

	var dropped []eventbus.Event
	bus.OnDrop(func(e eventbus.Event, _ any) {
		dropped = append(dropped, e)
	})

	bus.PublishDriverForgotten(eventbus.DriverForgottenPayload{DriverID: "a"})
	bus.PublishDriverForgotten(eventbus.DriverForgottenPayload{DriverID: "b"})

	require.Len(t, dropped, 1)
	assert.Equal(t, eventbus.EventDriverForgotten, dropped[0])
}
