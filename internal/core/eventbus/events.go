// Package eventbus provides a typed publish/subscribe event bus for
// cross-component communication within fleetcheck.
package eventbus

import (
	"github.com/colonyops/fleetcheck/internal/core/checkin"
	"github.com/colonyops/fleetcheck/internal/core/notify"
)

// Events defines all event types and their payload structs.
var Events = map[string]any{
	// Keep list sorted A-Z
	"batch.busy-changed":     BusyChangedPayload{},
	"batch.completed":        BatchCompletedPayload{},
	"driver.forgotten":       DriverForgottenPayload{},
	"driver.identified":      DriverIdentifiedPayload{},
	"items.fetch-failed":     FetchFailedPayload{},
	"items.replaced":         ItemsReplacedPayload{},
	"notification.published": NotificationPublishedPayload{},
	"selection.changed":      SelectionChangedPayload{},
}

// BusyChangedPayload is emitted when a controller moves between phases.
type BusyChangedPayload struct {
	Kind  checkin.Kind
	Phase checkin.Phase
	Busy  bool
}

// BatchCompletedPayload is emitted once the items of a batch have all been
// attempted, before the follow-up refresh finishes.
type BatchCompletedPayload struct {
	Kind    checkin.Kind
	BatchID string
	Result  checkin.Result
}

// DriverIdentifiedPayload is emitted when a scanned driver id is stored.
type DriverIdentifiedPayload struct {
	DriverID string
}

// DriverForgottenPayload is emitted when the stored driver id is cleared.
type DriverForgottenPayload struct {
	DriverID string
}

// FetchFailedPayload is emitted when the item source could not be read.
type FetchFailedPayload struct {
	Kind     checkin.Kind
	DriverID string
	Message  string
	Err      error
}

// ItemsReplacedPayload is emitted when a controller's item list is replaced.
type ItemsReplacedPayload struct {
	Kind  checkin.Kind
	Items []checkin.Item
}

// SelectionChangedPayload is emitted whenever selection flags change.
type SelectionChangedPayload struct {
	Kind     checkin.Kind
	Snapshot checkin.Snapshot
}

// NotificationPublishedPayload carries a user-facing message.
type NotificationPublishedPayload struct {
	Level   notify.Level
	Message string
}
