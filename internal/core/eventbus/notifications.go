package eventbus

import (
	"fmt"

	"github.com/colonyops/fleetcheck/internal/core/checkin"
	"github.com/colonyops/fleetcheck/internal/core/notify"
)

// NotificationRouter maps domain events to user-facing notifications.
type NotificationRouter struct {
	bus *EventBus
}

// NewNotificationRouter constructs a router for event-to-notification mappings.
func NewNotificationRouter(bus *EventBus) *NotificationRouter {
	return &NotificationRouter{bus: bus}
}

// Register subscribes all supported event mappings.
func (r *NotificationRouter) Register() {
	if r == nil || r.bus == nil {
		return
	}

	r.bus.SubscribeBatchCompleted(func(p BatchCompletedPayload) {
		if p.Result == nil {
			return
		}
		r.notify(resultLevel(p.Result), p.Result.Message())
	})

	r.bus.SubscribeFetchFailed(func(p FetchFailedPayload) {
		r.notifyf(notify.LevelError, "could not load %s: %s", p.Kind.Plural(), p.Message)
	})

	r.bus.SubscribeDriverIdentified(func(p DriverIdentifiedPayload) {
		r.notifyf(notify.LevelInfo, "signed in as driver %s", p.DriverID)
	})

	r.bus.SubscribeDriverForgotten(func(p DriverForgottenPayload) {
		r.notifyf(notify.LevelInfo, "driver %s signed out", p.DriverID)
	})
}

func resultLevel(res checkin.Result) notify.Level {
	switch res.(type) {
	case checkin.AllSucceeded:
		return notify.LevelInfo
	case checkin.AllFailed:
		return notify.LevelError
	default:
		return notify.LevelWarning
	}
}

func (r *NotificationRouter) notify(level notify.Level, msg string) {
	r.bus.PublishNotificationPublished(NotificationPublishedPayload{
		Level:   level,
		Message: msg,
	})
}

func (r *NotificationRouter) notifyf(level notify.Level, format string, args ...any) {
	r.notify(level, fmt.Sprintf(format, args...))
}
