package checkin

import (
	"fmt"
	"strings"
)

// Outcome names a Result variant.
type Outcome string

const (
	OutcomeNoSelection       Outcome = "no_selection"
	OutcomeAlreadyInProgress Outcome = "already_in_progress"
	OutcomeAllSucceeded      Outcome = "all_succeeded"
	OutcomePartialSuccess    Outcome = "partial_success"
	OutcomeAllFailed         Outcome = "all_failed"
	OutcomeCancelled         Outcome = "cancelled"
)

// Result is the outcome of a batch check-in. It is one of NoSelection,
// AlreadyInProgress, AllSucceeded, PartialSuccess, AllFailed or Cancelled.
type Result interface {
	Outcome() Outcome
	Message() string
	isResult()
}

// ItemError records why a single item failed to check in.
type ItemError struct {
	ItemID      ID
	Description string
	Err         error
}

func (e ItemError) Error() string {
	label := e.Description
	if label == "" {
		label = string(e.ItemID)
	}
	return fmt.Sprintf("%s: %s", label, UserMessage(e.Err))
}

func (e ItemError) Unwrap() error { return e.Err }

// NoSelection means nothing eligible was selected; no check-ins were sent.
type NoSelection struct{}

// AlreadyInProgress means a batch was already running; nothing was sent.
type AlreadyInProgress struct{}

// AllSucceeded means every selected item was checked in.
type AllSucceeded struct {
	SuccessCount int
}

// PartialSuccess means some items were checked in and some failed.
type PartialSuccess struct {
	SuccessCount int
	FailureCount int
	Errors       []ItemError
}

// AllFailed means every attempted item failed.
type AllFailed struct {
	FailureCount int
	Errors       []ItemError
}

// Cancelled means the batch context ended before any item was attempted.
type Cancelled struct{}

func (NoSelection) isResult()       {}
func (AlreadyInProgress) isResult() {}
func (AllSucceeded) isResult()      {}
func (PartialSuccess) isResult()    {}
func (AllFailed) isResult()         {}
func (Cancelled) isResult()         {}

func (NoSelection) Outcome() Outcome       { return OutcomeNoSelection }
func (AlreadyInProgress) Outcome() Outcome { return OutcomeAlreadyInProgress }
func (AllSucceeded) Outcome() Outcome      { return OutcomeAllSucceeded }
func (PartialSuccess) Outcome() Outcome    { return OutcomePartialSuccess }
func (AllFailed) Outcome() Outcome         { return OutcomeAllFailed }
func (Cancelled) Outcome() Outcome         { return OutcomeCancelled }

func (NoSelection) Message() string { return "Nothing selected to check in." }

func (AlreadyInProgress) Message() string { return "A check-in is already in progress." }

func (r AllSucceeded) Message() string {
	return fmt.Sprintf("Checked in %s.", plural(r.SuccessCount, "item"))
}

func (r PartialSuccess) Message() string {
	return fmt.Sprintf("Checked in %s, %d failed:\n%s",
		plural(r.SuccessCount, "item"), r.FailureCount, joinErrors(r.Errors))
}

func (r AllFailed) Message() string {
	return fmt.Sprintf("Check-in failed for %s:\n%s", plural(r.FailureCount, "item"), joinErrors(r.Errors))
}

func (Cancelled) Message() string { return "Check-in cancelled before anything was sent." }

// Tally accumulates per-item outcomes of a batch and classifies them.
type Tally struct {
	SuccessCount int
	FailureCount int
	Errors       []ItemError
}

// Record folds one item outcome into the tally.
func (t Tally) Record(it Item, err error) Tally {
	if err == nil {
		t.SuccessCount++
		return t
	}
	t.FailureCount++
	t.Errors = append(t.Errors, ItemError{ItemID: it.ID, Description: it.Description, Err: err})
	return t
}

// Attempted returns the number of items recorded so far.
func (t Tally) Attempted() int {
	return t.SuccessCount + t.FailureCount
}

// Result classifies the tally. An empty tally classifies as Cancelled since
// a non-empty batch that attempted nothing was interrupted.
func (t Tally) Result() Result {
	switch {
	case t.SuccessCount > 0 && t.FailureCount == 0:
		return AllSucceeded{SuccessCount: t.SuccessCount}
	case t.SuccessCount > 0 && t.FailureCount > 0:
		return PartialSuccess{SuccessCount: t.SuccessCount, FailureCount: t.FailureCount, Errors: t.Errors}
	case t.FailureCount > 0:
		return AllFailed{FailureCount: t.FailureCount, Errors: t.Errors}
	default:
		return Cancelled{}
	}
}

func joinErrors(errs []ItemError) string {
	lines := make([]string, 0, len(errs))
	for _, e := range errs {
		lines = append(lines, "  - "+e.Error())
	}
	return strings.Join(lines, "\n")
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
