package checkin

import "strings"

// StatusPending is the status the backend uses for work that has not been
// checked in yet.
const StatusPending = "pending"

// StatusSet decides which item statuses are eligible for selection and
// check-in. Matching is case-insensitive and an empty status is always
// eligible.
type StatusSet struct {
	statuses map[string]struct{}
}

// NewStatusSet builds a set from the given pending-like statuses. With no
// arguments it falls back to StatusPending.
func NewStatusSet(statuses ...string) StatusSet {
	if len(statuses) == 0 {
		statuses = []string{StatusPending}
	}

	set := StatusSet{statuses: make(map[string]struct{}, len(statuses))}
	for _, s := range statuses {
		s = normalizeStatus(s)
		if s == "" {
			continue
		}
		set.statuses[s] = struct{}{}
	}
	return set
}

// DefaultStatusSet returns the set containing only StatusPending.
func DefaultStatusSet() StatusSet {
	return NewStatusSet()
}

// Eligible reports whether an item with the given status may be selected.
func (s StatusSet) Eligible(status string) bool {
	status = normalizeStatus(status)
	if status == "" {
		return true
	}
	if s.statuses == nil {
		return status == StatusPending
	}
	_, ok := s.statuses[status]
	return ok
}

// ItemEligible is a convenience for Eligible(it.Status).
func (s StatusSet) ItemEligible(it Item) bool {
	return s.Eligible(it.Status)
}

func normalizeStatus(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
