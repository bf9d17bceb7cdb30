package checkin

// Phase is the lifecycle state of a batch controller.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseSubmitting Phase = "submitting"
	PhaseRefreshing Phase = "refreshing"
)

// Busy reports whether the phase blocks a new submission.
func (p Phase) Busy() bool {
	return p == PhaseSubmitting || p == PhaseRefreshing
}
