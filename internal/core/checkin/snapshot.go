package checkin

// Snapshot is the derived selection state of an item list.
type Snapshot struct {
	EligibleCount int  `json:"eligible_count"`
	SelectedCount int  `json:"selected_count"`
	AllSelected   bool `json:"all_selected"`
}

// Summarize computes the selection snapshot of items under the given status
// set. Ineligible items never count as selected, and an empty eligible
// subset is never reported as all-selected.
func Summarize(items []Item, statuses StatusSet) Snapshot {
	var snap Snapshot
	for _, it := range items {
		if !statuses.ItemEligible(it) {
			continue
		}
		snap.EligibleCount++
		if it.Selected {
			snap.SelectedCount++
		}
	}
	snap.AllSelected = snap.EligibleCount > 0 && snap.SelectedCount == snap.EligibleCount
	return snap
}

// SelectedEligible returns the eligible, selected items in list order.
func SelectedEligible(items []Item, statuses StatusSet) []Item {
	var out []Item
	for _, it := range items {
		if it.Selected && statuses.ItemEligible(it) {
			out = append(out, it)
		}
	}
	return out
}
