package fleet

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/colonyops/fleetcheck/internal/core/checkin"
	"github.com/colonyops/fleetcheck/internal/core/eventbus"
	"github.com/colonyops/fleetcheck/internal/core/logging"
	"github.com/colonyops/fleetcheck/internal/data/stores"
)

// DefaultRefreshTimeout bounds the refresh that follows a batch when no
// timeout is configured.
const DefaultRefreshTimeout = 30 * time.Second

// HistoryRecorder persists the per-item outcome of a batch.
type HistoryRecorder interface {
	RecordBatch(ctx context.Context, entries []stores.HistoryEntry) error
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithStatuses sets the statuses treated as eligible for check-in.
func WithStatuses(statuses checkin.StatusSet) ControllerOption {
	return func(c *Controller) { c.statuses = statuses }
}

// WithRefreshTimeout bounds the refresh that follows each batch.
func WithRefreshTimeout(d time.Duration) ControllerOption {
	return func(c *Controller) {
		if d > 0 {
			c.refreshTimeout = d
		}
	}
}

// WithHistory records every attempted item of a batch.
func WithHistory(rec HistoryRecorder) ControllerOption {
	return func(c *Controller) { c.history = rec }
}

// WithBatchIDs overrides how batch ids are generated.
func WithBatchIDs(fn func() string) ControllerOption {
	return func(c *Controller) { c.newBatchID = fn }
}

// Controller owns the item list of one kind for one driver. It tracks
// selection, submits the eligible selected items as a sequential batch and
// refreshes the list once the batch is done.
//
// All state is guarded by mu. Sink and source calls are made without the
// lock held so readers never block on the network.
type Controller struct {
	kind           checkin.Kind
	subject        string
	source         checkin.ItemSource
	sink           checkin.SubmissionSink
	statuses       checkin.StatusSet
	bus            *eventbus.EventBus
	log            zerolog.Logger
	history        HistoryRecorder
	refreshTimeout time.Duration
	newBatchID     func() string

	mu         sync.Mutex
	items      []checkin.Item
	phase      checkin.Phase
	idle       chan struct{} // closed while phase is idle
	lastResult checkin.Result
	lastErr    string
	fetchGen   uint64 // bumped per fetch and per batch; older fetches are dropped
}

// NewController creates a controller for the given kind and driver.
func NewController(
	kind checkin.Kind,
	subjectID string,
	source checkin.ItemSource,
	sink checkin.SubmissionSink,
	bus *eventbus.EventBus,
	log zerolog.Logger,
	opts ...ControllerOption,
) *Controller {
	idle := make(chan struct{})
	close(idle)

	c := &Controller{
		kind:           kind,
		subject:        subjectID,
		source:         source,
		sink:           sink,
		statuses:       checkin.DefaultStatusSet(),
		bus:            bus,
		log:            logging.ForKind(log.With().Str("component", "batch-controller").Logger(), kind),
		refreshTimeout: DefaultRefreshTimeout,
		newBatchID:     uuid.NewString,
		phase:          checkin.PhaseIdle,
		idle:           idle,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Kind returns the item kind this controller manages.
func (c *Controller) Kind() checkin.Kind { return c.kind }

// Subject returns the driver id items are fetched for.
func (c *Controller) Subject() string { return c.subject }

// Statuses returns the eligibility set in use.
func (c *Controller) Statuses() checkin.StatusSet { return c.statuses }

// Items returns a copy of the current list.
func (c *Controller) Items() []checkin.Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.items)
}

// Snapshot returns the derived selection state of the current list.
func (c *Controller) Snapshot() checkin.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return checkin.Summarize(c.items, c.statuses)
}

// Phase returns the current lifecycle phase.
func (c *Controller) Phase() checkin.Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Busy reports whether a batch or its follow-up refresh is running.
func (c *Controller) Busy() bool {
	return c.Phase().Busy()
}

// LastResult returns the result of the most recent Submit, or nil.
func (c *Controller) LastResult() checkin.Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastResult
}

// LastError returns the user-facing message of the last failed fetch. It is
// cleared by the next successful fetch.
func (c *Controller) LastError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// WaitIdle blocks until the controller is idle or ctx is done.
func (c *Controller) WaitIdle(ctx context.Context) error {
	c.mu.Lock()
	idle := c.idle
	c.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SetItems replaces the list wholesale. Selection is taken from the new
// items as given.
func (c *Controller) SetItems(items []checkin.Item) {
	c.mu.Lock()
	c.items = slices.Clone(items)
	replaced := slices.Clone(c.items)
	snap := checkin.Summarize(c.items, c.statuses)
	c.mu.Unlock()

	c.publishReplaced(replaced, snap)
}

// Toggle flips the selection of the first item with the given id. Unknown
// and ineligible ids are ignored. It reports whether anything changed.
func (c *Controller) Toggle(id checkin.ID) bool {
	c.mu.Lock()
	idx := slices.IndexFunc(c.items, func(it checkin.Item) bool { return it.ID == id })
	if idx < 0 || !c.statuses.ItemEligible(c.items[idx]) {
		c.mu.Unlock()
		return false
	}
	c.items[idx].Selected = !c.items[idx].Selected
	snap := checkin.Summarize(c.items, c.statuses)
	c.mu.Unlock()

	c.publishSelection(snap)
	return true
}

// SetAllSelected sets the selection of every eligible item. Ineligible
// items keep whatever flag they arrived with.
func (c *Controller) SetAllSelected(selected bool) {
	c.mu.Lock()
	for i := range c.items {
		if c.statuses.ItemEligible(c.items[i]) {
			c.items[i].Selected = selected
		}
	}
	snap := checkin.Summarize(c.items, c.statuses)
	c.mu.Unlock()

	c.publishSelection(snap)
}

// Refresh fetches the list for the controller's driver. On success the list
// is replaced and the error slot cleared. On failure the list is kept, the
// error slot holds a user-facing message, and the error is returned.
//
// A fetch overtaken by a later fetch or by a batch is discarded.
func (c *Controller) Refresh(ctx context.Context) error {
	c.mu.Lock()
	c.fetchGen++
	gen := c.fetchGen
	c.mu.Unlock()

	items, err := c.source.Fetch(logging.WithDriverID(ctx, c.subject), c.subject)
	if err != nil {
		msg := checkin.UserMessage(err)

		c.mu.Lock()
		current := gen == c.fetchGen
		if current {
			c.lastErr = msg
		}
		c.mu.Unlock()

		if !current {
			c.log.Debug().Err(err).Msg("discarded stale fetch failure")
			return err
		}

		c.log.Warn().Err(err).Str("driver_id", c.subject).Msg("fetch items failed")
		if c.bus != nil {
			c.bus.PublishFetchFailed(eventbus.FetchFailedPayload{
				Kind:     c.kind,
				DriverID: c.subject,
				Message:  msg,
				Err:      err,
			})
		}
		return err
	}

	c.mu.Lock()
	if gen != c.fetchGen {
		c.mu.Unlock()
		c.log.Debug().Int("count", len(items)).Msg("discarded stale fetch")
		return nil
	}
	c.items = slices.Clone(items)
	c.lastErr = ""
	replaced := slices.Clone(c.items)
	snap := checkin.Summarize(c.items, c.statuses)
	c.mu.Unlock()

	c.log.Debug().Int("count", len(items)).Msg("items refreshed")
	c.publishReplaced(replaced, snap)
	return nil
}

// Load is an alias for Refresh used for the first fetch.
func (c *Controller) Load(ctx context.Context) error {
	return c.Refresh(ctx)
}

// Submit checks in every eligible, selected item one at a time, in list
// order. Item failures never stop the batch. When ctx is cancelled the
// remaining items are skipped and the result covers what was attempted.
//
// Submit returns once every item has been attempted. The follow-up refresh
// runs in the background and the controller stays busy until it ends.
func (c *Controller) Submit(ctx context.Context) checkin.Result {
	c.mu.Lock()
	if c.phase != checkin.PhaseIdle {
		c.mu.Unlock()
		c.log.Debug().Msg("submit rejected, batch in progress")
		return checkin.AlreadyInProgress{}
	}

	batch := checkin.SelectedEligible(c.items, c.statuses)
	if len(batch) == 0 {
		c.lastResult = checkin.NoSelection{}
		c.mu.Unlock()
		return checkin.NoSelection{}
	}

	c.phase = checkin.PhaseSubmitting
	c.idle = make(chan struct{})
	c.fetchGen++
	c.mu.Unlock()
	c.publishBusy(checkin.PhaseSubmitting)

	batchID := c.newBatchID()
	ctx = logging.WithBatchID(logging.WithDriverID(ctx, c.subject), batchID)
	log := c.log.With().Str("batch_id", batchID).Logger()
	log.Info().Int("items", len(batch)).Msg("batch started")

	var (
		tally   checkin.Tally
		entries = make([]stores.HistoryEntry, 0, len(batch))
	)

	for _, it := range batch {
		if ctx.Err() != nil {
			log.Warn().Int("skipped", len(batch)-tally.Attempted()).Msg("batch cancelled")
			break
		}

		err := c.sink.CheckIn(ctx, it.ID)
		tally = tally.Record(it, err)

		entry := stores.HistoryEntry{
			BatchID:     batchID,
			Kind:        c.kind,
			DriverID:    c.subject,
			ItemID:      it.ID,
			Description: it.Description,
			OK:          err == nil,
			CreatedAt:   time.Now(),
		}
		if err != nil {
			entry.Error = err.Error()
			log.Warn().Err(err).Str("item_id", string(it.ID)).Msg("check-in failed")
		} else {
			log.Debug().Str("item_id", string(it.ID)).Msg("checked in")
		}
		entries = append(entries, entry)
	}

	result := tally.Result()
	log.Info().
		Str("outcome", string(result.Outcome())).
		Int("succeeded", tally.SuccessCount).
		Int("failed", tally.FailureCount).
		Msg("batch finished")

	c.recordHistory(ctx, entries)

	c.mu.Lock()
	c.lastResult = result
	c.phase = checkin.PhaseRefreshing
	c.mu.Unlock()

	c.publishBusy(checkin.PhaseRefreshing)
	if c.bus != nil {
		c.bus.PublishBatchCompleted(eventbus.BatchCompletedPayload{
			Kind:    c.kind,
			BatchID: batchID,
			Result:  result,
		})
	}

	go c.refreshAfterBatch(ctx)

	return result
}

// refreshAfterBatch reloads the list detached from the caller's cancellation
// and returns the controller to idle whatever the outcome.
func (c *Controller) refreshAfterBatch(parent context.Context) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), c.refreshTimeout)
	defer cancel()

	_ = c.Refresh(ctx)

	c.mu.Lock()
	c.phase = checkin.PhaseIdle
	close(c.idle)
	c.mu.Unlock()

	c.publishBusy(checkin.PhaseIdle)
}

func (c *Controller) recordHistory(ctx context.Context, entries []stores.HistoryEntry) {
	if c.history == nil || len(entries) == 0 {
		return
	}
	if err := c.history.RecordBatch(context.WithoutCancel(ctx), entries); err != nil {
		c.log.Error().Err(err).Msg("record check-in history")
	}
}

func (c *Controller) publishBusy(phase checkin.Phase) {
	if c.bus == nil {
		return
	}
	c.bus.PublishBusyChanged(eventbus.BusyChangedPayload{Kind: c.kind, Phase: phase, Busy: phase.Busy()})
}

func (c *Controller) publishSelection(snap checkin.Snapshot) {
	if c.bus == nil {
		return
	}
	c.bus.PublishSelectionChanged(eventbus.SelectionChangedPayload{Kind: c.kind, Snapshot: snap})
}

func (c *Controller) publishReplaced(items []checkin.Item, snap checkin.Snapshot) {
	if c.bus == nil {
		return
	}
	c.bus.PublishItemsReplaced(eventbus.ItemsReplacedPayload{Kind: c.kind, Items: items})
	c.bus.PublishSelectionChanged(eventbus.SelectionChangedPayload{Kind: c.kind, Snapshot: snap})
}
