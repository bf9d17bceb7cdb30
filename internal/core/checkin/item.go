// Package checkin defines the checkable item domain model shared by the
// fleet services, the remote transport and the TUI.
package checkin

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Kind identifies which family of work an item belongs to.
type Kind string

const (
	KindAppointment Kind = "appointment"
	KindBooking     Kind = "booking"
	KindLogbook     Kind = "logbook"
)

// Kinds lists every supported kind in display order.
var Kinds = []Kind{KindAppointment, KindBooking, KindLogbook}

// ParseKind resolves a kind from user input, accepting singular or plural forms.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "appointment", "appointments":
		return KindAppointment, nil
	case "booking", "bookings":
		return KindBooking, nil
	case "logbook", "logbooks", "log":
		return KindLogbook, nil
	}
	return "", fmt.Errorf("unknown kind %q (want appointment, booking or logbook)", s)
}

// Plural returns the collection name used in URLs and headings.
func (k Kind) Plural() string {
	switch k {
	case KindAppointment:
		return "appointments"
	case KindBooking:
		return "bookings"
	default:
		return string(k)
	}
}

// ID is an opaque item identifier. The backend emits either strings or
// integers, both decode into the same textual form.
type ID string

// UnmarshalJSON accepts a JSON string or number.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}

	if !isIntegerLiteral(data) {
		return fmt.Errorf("item id must be a string or integer, got %s", data)
	}
	*id = ID(data)
	return nil
}

// isIntegerLiteral reports whether b is a JSON integer of any length.
func isIntegerLiteral(b []byte) bool {
	if len(b) > 0 && b[0] == '-' {
		b = b[1:]
	}
	if len(b) == 0 || (b[0] == '0' && len(b) > 1) {
		return false
	}
	for _, c := range b {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func (id ID) String() string { return string(id) }

// Item is a single appointment, booking or logbook entry that a driver may
// check in. Only ID, Status and Selected carry meaning for selection; the
// rest is payload for display.
type Item struct {
	ID          ID         `json:"id"`
	Kind        Kind       `json:"kind,omitempty"`
	Status      string     `json:"status"`
	Selected    bool       `json:"isSelected"`
	Description string     `json:"description,omitempty"`
	DriverID    string     `json:"driverId,omitempty"`
	Location    string     `json:"location,omitempty"`
	Odometer    *int64     `json:"odometer,omitempty"`
	ScheduledAt *time.Time `json:"scheduledAt,omitempty"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

// Label returns a human readable name for the item, falling back to the id.
func (it Item) Label() string {
	if it.Description != "" {
		return it.Description
	}
	return fmt.Sprintf("%s %s", it.Kind, it.ID)
}
