package eventbus

import (
	"context"
	"sync"
)

// Event names a topic on the bus.
type Event string

const (
	EventBusyChanged           Event = "batch.busy-changed"
	EventBatchCompleted        Event = "batch.completed"
	EventDriverForgotten       Event = "driver.forgotten"
	EventDriverIdentified      Event = "driver.identified"
	EventFetchFailed           Event = "items.fetch-failed"
	EventItemsReplaced         Event = "items.replaced"
	EventNotificationPublished Event = "notification.published"
	EventSelectionChanged      Event = "selection.changed"
)

type envelope struct {
	event   Event
	payload any
}

// EventBus delivers published events to subscribers on a single dispatch
// goroutine started with Start. Publishing never blocks; when the buffer is
// full the event is dropped and OnDrop hooks fire.
type EventBus struct {
	ch    chan envelope
	hooks hooks

	mu   sync.RWMutex
	subs map[Event][]func(any)
}

// New creates a bus with the given buffer size.
func New(buffer int) *EventBus {
	if buffer < 1 {
		buffer = 1
	}
	return &EventBus{
		ch:   make(chan envelope, buffer),
		subs: make(map[Event][]func(any)),
	}
}

// Start dispatches events until ctx is cancelled.
func (bus *EventBus) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case env := <-bus.ch:
			bus.dispatch(env)
		}
	}
}

func (bus *EventBus) dispatch(env envelope) {
	bus.mu.RLock()
	handlers := make([]func(any), len(bus.subs[env.event]))
	copy(handlers, bus.subs[env.event])
	bus.mu.RUnlock()

	for _, fn := range handlers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					bus.runOnPanic(env.event, env.payload, r)
				}
			}()
			fn(env.payload)
		}()
	}
}

func (bus *EventBus) subscribe(event Event, fn func(any)) {
	bus.mu.Lock()
	bus.subs[event] = append(bus.subs[event], fn)
	bus.mu.Unlock()
	bus.runOnSubscribe(event)
}

func (bus *EventBus) PublishBusyChanged(p BusyChangedPayload) { bus.send(EventBusyChanged, p) }

func (bus *EventBus) SubscribeBusyChanged(fn func(BusyChangedPayload)) {
	bus.subscribe(EventBusyChanged, func(p any) { fn(p.(BusyChangedPayload)) })
}

func (bus *EventBus) PublishBatchCompleted(p BatchCompletedPayload) {
	bus.send(EventBatchCompleted, p)
}

func (bus *EventBus) SubscribeBatchCompleted(fn func(BatchCompletedPayload)) {
	bus.subscribe(EventBatchCompleted, func(p any) { fn(p.(BatchCompletedPayload)) })
}

func (bus *EventBus) PublishDriverForgotten(p DriverForgottenPayload) {
	bus.send(EventDriverForgotten, p)
}

func (bus *EventBus) SubscribeDriverForgotten(fn func(DriverForgottenPayload)) {
	bus.subscribe(EventDriverForgotten, func(p any) { fn(p.(DriverForgottenPayload)) })
}

func (bus *EventBus) PublishDriverIdentified(p DriverIdentifiedPayload) {
	bus.send(EventDriverIdentified, p)
}

func (bus *EventBus) SubscribeDriverIdentified(fn func(DriverIdentifiedPayload)) {
	bus.subscribe(EventDriverIdentified, func(p any) { fn(p.(DriverIdentifiedPayload)) })
}

func (bus *EventBus) PublishFetchFailed(p FetchFailedPayload) { bus.send(EventFetchFailed, p) }

func (bus *EventBus) SubscribeFetchFailed(fn func(FetchFailedPayload)) {
	bus.subscribe(EventFetchFailed, func(p any) { fn(p.(FetchFailedPayload)) })
}

func (bus *EventBus) PublishItemsReplaced(p ItemsReplacedPayload) { bus.send(EventItemsReplaced, p) }

func (bus *EventBus) SubscribeItemsReplaced(fn func(ItemsReplacedPayload)) {
	bus.subscribe(EventItemsReplaced, func(p any) { fn(p.(ItemsReplacedPayload)) })
}

func (bus *EventBus) PublishNotificationPublished(p NotificationPublishedPayload) {
	bus.send(EventNotificationPublished, p)
}

func (bus *EventBus) SubscribeNotificationPublished(fn func(NotificationPublishedPayload)) {
	bus.subscribe(EventNotificationPublished, func(p any) { fn(p.(NotificationPublishedPayload)) })
}

func (bus *EventBus) PublishSelectionChanged(p SelectionChangedPayload) {
	bus.send(EventSelectionChanged, p)
}

func (bus *EventBus) SubscribeSelectionChanged(fn func(SelectionChangedPayload)) {
	bus.subscribe(EventSelectionChanged, func(p any) { fn(p.(SelectionChangedPayload)) })
}
