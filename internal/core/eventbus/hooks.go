package eventbus

import "sync"

// hookList is a set of callbacks that may grow while the bus is running.
// Callers iterate over a copy so hooks can register more hooks.
type hookList[F any] struct {
	mu  sync.RWMutex
	fns []F
}

func (h *hookList[F]) add(fn F) {
	h.mu.Lock()
	h.fns = append(h.fns, fn)
	h.mu.Unlock()
}

func (h *hookList[F]) list() []F {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]F(nil), h.fns...)
}

type hooks struct {
	publish   hookList[func(Event, any)]
	drop      hookList[func(Event, any)]
	subscribe hookList[func(Event)]
	panics    hookList[func(Event, any, any)]
}

// OnPublish runs fn after an event is queued.
func (bus *EventBus) OnPublish(fn func(Event, any)) { bus.hooks.publish.add(fn) }

// OnDrop runs fn when an event is discarded because the buffer is full.
func (bus *EventBus) OnDrop(fn func(Event, any)) { bus.hooks.drop.add(fn) }

// OnSubscribe runs fn after a subscriber is added.
func (bus *EventBus) OnSubscribe(fn func(Event)) { bus.hooks.subscribe.add(fn) }

// OnPanic runs fn with the recovered value when a subscriber panics. A
// panicking hook is itself recovered.
func (bus *EventBus) OnPanic(fn func(Event, any, any)) { bus.hooks.panics.add(fn) }

// send queues an event without blocking.
func (bus *EventBus) send(event Event, payload any) {
	select {
	case bus.ch <- envelope{event: event, payload: payload}:
		for _, fn := range bus.hooks.publish.list() {
			fn(event, payload)
		}
	default:
		for _, fn := range bus.hooks.drop.list() {
			fn(event, payload)
		}
	}
}

func (bus *EventBus) runOnSubscribe(event Event) {
	for _, fn := range bus.hooks.subscribe.list() {
		fn(event)
	}
}

func (bus *EventBus) runOnPanic(event Event, payload any, recovered any) {
	for _, fn := range bus.hooks.panics.list() {
		func() {
			defer func() { _ = recover() }()
			fn(event, payload, recovered)
		}()
	}
}
