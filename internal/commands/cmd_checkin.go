package commands

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hay-kot/criterio"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/fleetcheck/internal/core/checkin"
	"github.com/colonyops/fleetcheck/internal/core/logging"
	"github.com/colonyops/fleetcheck/internal/core/validate"
	"github.com/colonyops/fleetcheck/internal/fleet"
	"github.com/colonyops/fleetcheck/pkg/iojson"
)

type CheckinCmd struct {
	flags *Flags
	app   *fleet.App
	input *iojson.Input[CheckinInput]

	kind string
	all  bool
}

// NewCheckinCmd creates a new checkin command
func NewCheckinCmd(flags *Flags, app *fleet.App) *CheckinCmd {
	return &CheckinCmd{
		flags: flags,
		app:   app,
		input: &iojson.Input[CheckinInput]{},
	}
}

// Register adds the checkin command to the application
func (cmd *CheckinCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "checkin",
		Usage: "Check in a batch of items",
		UsageText: `fleetcheck checkin [--kind K] id [id...]
fleetcheck checkin [--kind K] --all

Read ids from stdin:
  echo '{"ids":["17","18"]}' | fleetcheck checkin --kind booking

Read ids from file:
  fleetcheck checkin -f ids.json`,
		Description: `Checks in the given items of the identified driver, one at a time, in
list order. A failed item never stops the rest of the batch.

Ids that are unknown or not eligible are reported as skipped. Use --all to
check in every eligible item.

Input JSON schema:
  {
    "ids": ["17", "18"]
  }

Output is JSON with the batch ID, the outcome, and a result per item. The
command exits non-zero when every attempted item failed.`,
		Flags: []cli.Flag{
			cmd.input.Flag(),
			kindFlag(&cmd.kind),
			&cli.BoolFlag{
				Name:        "all",
				Usage:       "check in every eligible item",
				Destination: &cmd.all,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *CheckinCmd) run(ctx context.Context, c *cli.Command) error {
	batchID := uuid.NewString()
	logger := logging.Component("checkin").With().Str("batch_id", batchID).Logger()

	var input CheckinInput
	if !cmd.all {
		input.IDs = c.Args().Slice()
		if len(input.IDs) == 0 {
			var err error
			input, err = cmd.input.Read()
			if err != nil {
				logger.Error().Err(err).Msg("failed to read input")
				return iojson.WriteError(fmt.Sprintf("read input: %s", err), nil)
			}
		}

		if err := input.Validate(); err != nil {
			logger.Error().Err(err).Msg("input validation failed")
			return iojson.WriteError(fmt.Sprintf("invalid input: %s", err), nil)
		}
	}

	_, ctrl, err := loadController(ctx, cmd.app, cmd.kind, fleet.WithBatchIDs(func() string { return batchID }))
	if err != nil {
		logger.Error().Err(err).Msg("failed to load items")
		return iojson.WriteError(err.Error(), nil)
	}

	output, result := runCheckin(ctx, ctrl, input, cmd.all, batchID)

	logger.Info().
		Str("outcome", string(output.Outcome)).
		Int("succeeded", output.SuccessCount).
		Int("failed", output.FailureCount).
		Int("skipped", countCheckinStatus(output.Results, StatusSkipped)).
		Msg("check-in complete")

	if err := iojson.Write(output); err != nil {
		return err
	}

	if _, failed := result.(checkin.AllFailed); failed {
		return cli.Exit("", 1)
	}
	return nil
}

// runCheckin selects the requested items on ctrl, submits them and waits
// for the follow-up refresh before reporting.
func runCheckin(ctx context.Context, ctrl *fleet.Controller, input CheckinInput, all bool, batchID string) (CheckinOutput, checkin.Result) {
	output := CheckinOutput{
		BatchID:  batchID,
		Kind:     ctrl.Kind(),
		DriverID: ctrl.Subject(),
	}

	items := ctrl.Items()
	statuses := ctrl.Statuses()

	ctrl.SetAllSelected(false)
	if all {
		ctrl.SetAllSelected(true)
	} else {
		for _, raw := range input.IDs {
			id := checkin.ID(raw)
			it, ok := findItem(items, id)
			switch {
			case !ok:
				output.Results = append(output.Results, CheckinResult{ID: id, Status: StatusSkipped, Error: "not found"})
			case !statuses.ItemEligible(it):
				output.Results = append(output.Results, CheckinResult{ID: id, Description: it.Description, Status: StatusSkipped, Error: fmt.Sprintf("status %q is not eligible", it.Status)})
			default:
				ctrl.Toggle(id)
			}
		}
	}

	batch := checkin.SelectedEligible(ctrl.Items(), statuses)
	result := ctrl.Submit(ctx)
	_ = ctrl.WaitIdle(context.WithoutCancel(ctx))

	output.Outcome = result.Outcome()
	output.Message = result.Message()

	failures := map[checkin.ID]checkin.ItemError{}
	var attempted int
	switch r := result.(type) {
	case checkin.AllSucceeded:
		attempted = r.SuccessCount
		output.SuccessCount = r.SuccessCount
	case checkin.PartialSuccess:
		attempted = r.SuccessCount + r.FailureCount
		output.SuccessCount, output.FailureCount = r.SuccessCount, r.FailureCount
		for _, e := range r.Errors {
			failures[e.ItemID] = e
		}
	case checkin.AllFailed:
		attempted = r.FailureCount
		output.FailureCount = r.FailureCount
		for _, e := range r.Errors {
			failures[e.ItemID] = e
		}
	}

	for i, it := range batch {
		res := CheckinResult{ID: it.ID, Description: it.Description}
		switch e, failed := failures[it.ID]; {
		case i >= attempted:
			res.Status = StatusSkipped
			res.Error = "not attempted"
		case failed:
			res.Status = StatusFailed
			res.Error = e.Error()
		default:
			res.Status = StatusCheckedIn
		}
		output.Results = append(output.Results, res)
	}

	if msg := ctrl.LastError(); msg != "" {
		output.RefreshError = msg
	}

	return output, result
}

func findItem(items []checkin.Item, id checkin.ID) (checkin.Item, bool) {
	for _, it := range items {
		if it.ID == id {
			return it, true
		}
	}
	return checkin.Item{}, false
}

const (
	StatusCheckedIn = "checked_in" // StatusCheckedIn indicates the server accepted the check-in.
	StatusFailed    = "failed"     // StatusFailed indicates the check-in was attempted and failed.
	StatusSkipped   = "skipped"    // StatusSkipped indicates the item was not attempted.
)

// CheckinInput is the JSON input schema for fleetcheck checkin.
type CheckinInput struct {
	IDs []string `json:"ids"`
}

// Validate checks the input for errors using criterio.
func (in CheckinInput) Validate() error {
	if len(in.IDs) == 0 {
		return criterio.NewFieldErrors("ids", fmt.Errorf("array is empty"))
	}

	var errs criterio.FieldErrorsBuilder
	seen := make(map[string]bool, len(in.IDs))

	for i, id := range in.IDs {
		field := fmt.Sprintf("ids[%d]", i)

		if err := validate.ItemID(id); err != nil {
			errs = errs.Append(field, err)
			continue
		}

		if seen[id] {
			errs = errs.Append(field, fmt.Errorf("duplicate id %q", id))
			continue
		}
		seen[id] = true
	}

	return errs.ToError()
}

// CheckinResult is the output for a single item.
type CheckinResult struct {
	ID          checkin.ID `json:"id"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status"`
	Error       string     `json:"error,omitempty"`
}

// CheckinOutput is the JSON output schema.
type CheckinOutput struct {
	BatchID      string          `json:"batch_id"`
	Kind         checkin.Kind    `json:"kind"`
	DriverID     string          `json:"driver_id"`
	Outcome      checkin.Outcome `json:"outcome"`
	Message      string          `json:"message"`
	SuccessCount int             `json:"success_count"`
	FailureCount int             `json:"failure_count"`
	Results      []CheckinResult `json:"results"`
	RefreshError string          `json:"refresh_error,omitempty"`
}

func countCheckinStatus(results []CheckinResult, status string) int {
	count := 0
	for _, r := range results {
		if r.Status == status {
			count++
		}
	}
	return count
}
