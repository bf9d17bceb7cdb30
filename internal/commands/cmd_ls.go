package commands

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/fleetcheck/internal/core/checkin"
	"github.com/colonyops/fleetcheck/internal/fleet"
	"github.com/colonyops/fleetcheck/pkg/iojson"
)

type LsCmd struct {
	flags *Flags
	app   *fleet.App

	// flags
	kind       string
	jsonOutput bool
}

// NewLsCmd creates a new ls command
func NewLsCmd(flags *Flags, app *fleet.App) *LsCmd {
	return &LsCmd{flags: flags, app: app}
}

// Register adds the ls command to the application
func (cmd *LsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "ls",
		Usage:     "List the identified driver's items",
		UsageText: "fleetcheck ls [--kind appointment|booking|logbook] [--json]",
		Description: `Fetches the driver's items of one kind and shows which can be checked in.

When the fleet server cannot be reached the last cached list is shown with a
warning. Use --json for one JSON object per line.`,
		Flags: []cli.Flag{
			kindFlag(&cmd.kind),
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON lines",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.run,
	})

	return app
}

// itemInfo is the JSON output format for fleetcheck ls --json.
type itemInfo struct {
	ID          checkin.ID   `json:"id"`
	Kind        checkin.Kind `json:"kind"`
	Status      string       `json:"status"`
	Eligible    bool         `json:"eligible"`
	Description string       `json:"description,omitempty"`
	Location    string       `json:"location,omitempty"`
	ScheduledAt *time.Time   `json:"scheduled_at,omitempty"`
	Stale       bool         `json:"stale,omitempty"`
}

func (cmd *LsCmd) run(ctx context.Context, c *cli.Command) error {
	session, ctrl, err := loadController(ctx, cmd.app, cmd.kind)
	if err != nil {
		return err
	}

	items := ctrl.Items()
	statuses := ctrl.Statuses()
	fetch := session.Sources[ctrl.Kind()].Last()
	out := c.Root().Writer

	if cmd.jsonOutput {
		for _, it := range items {
			info := itemInfo{
				ID:          it.ID,
				Kind:        ctrl.Kind(),
				Status:      it.Status,
				Eligible:    statuses.ItemEligible(it),
				Description: it.Description,
				Location:    it.Location,
				ScheduledAt: it.ScheduledAt,
				Stale:       fetch.Stale,
			}
			if err := iojson.WriteLine(out, info); err != nil {
				return fmt.Errorf("encode item: %w", err)
			}
		}
		return nil
	}

	p := newPrinter(c.Root().ErrWriter)
	if fetch.Stale {
		p.Warnf("Offline: showing %s cached %s", ctrl.Kind().Plural(), fetch.FetchedAt.Format(time.DateTime))
	}

	if len(items) == 0 {
		p.Mutedf("No %s found", ctrl.Kind().Plural())
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, " \tID\tSTATUS\tWHEN\tDESCRIPTION")
	for _, it := range items {
		mark := "-"
		if statuses.ItemEligible(it) {
			mark = "*"
		}
		status := it.Status
		if status == "" {
			status = "(none)"
		}
		when := ""
		if it.ScheduledAt != nil {
			when = it.ScheduledAt.Local().Format("Jan 02 15:04")
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", mark, it.ID, status, when, it.Description)
	}
	_ = w.Flush()

	snap := ctrl.Snapshot()
	p.Mutedf("%d of %d eligible for check-in (*)", snap.EligibleCount, len(items))
	return nil
}
