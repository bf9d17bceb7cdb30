package eventbus

import (
	"fmt"

	"github.com/rs/zerolog"
)

// RegisterDebugLogger logs bus activity. Publishes and subscriptions are
// logged at debug level with the payload's identifying fields; drops and
// subscriber panics are logged as warnings and errors.
func RegisterDebugLogger(bus *EventBus, logger zerolog.Logger) {
	bus.OnPublish(func(event Event, payload any) {
		logger.Debug().Str("event", string(event)).Func(payloadFields(payload)).Msg("event published")
	})

	bus.OnDrop(func(event Event, payload any) {
		logger.Warn().Str("event", string(event)).Func(payloadFields(payload)).Msg("event dropped, buffer full")
	})

	bus.OnSubscribe(func(event Event) {
		logger.Debug().Str("event", string(event)).Msg("subscriber added")
	})

	bus.OnPanic(func(event Event, _ any, recovered any) {
		logger.Error().
			Str("event", string(event)).
			Str("panic", fmt.Sprint(recovered)).
			Msg("subscriber panicked")
	})
}

func payloadFields(payload any) func(*zerolog.Event) {
	return func(e *zerolog.Event) {
		switch p := payload.(type) {
		case BusyChangedPayload:
			e.Str("kind", string(p.Kind)).Str("phase", string(p.Phase))
		case BatchCompletedPayload:
			e.Str("kind", string(p.Kind)).Str("batch_id", p.BatchID)
			if p.Result != nil {
				e.Str("outcome", string(p.Result.Outcome()))
			}
		case FetchFailedPayload:
			e.Str("kind", string(p.Kind)).Str("driver_id", p.DriverID).Err(p.Err)
		case ItemsReplacedPayload:
			e.Str("kind", string(p.Kind)).Int("items", len(p.Items))
		case SelectionChangedPayload:
			e.Str("kind", string(p.Kind)).Int("selected", p.Snapshot.SelectedCount)
		case DriverIdentifiedPayload:
			e.Str("driver_id", p.DriverID)
		case DriverForgottenPayload:
			e.Str("driver_id", p.DriverID)
		case NotificationPublishedPayload:
			e.Str("level", string(p.Level))
		}
	}
}
