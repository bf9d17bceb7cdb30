package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/fleetcheck/internal/core/styles"
	"github.com/colonyops/fleetcheck/internal/data/stores"
	"github.com/colonyops/fleetcheck/internal/fleet"
	"github.com/colonyops/fleetcheck/pkg/iojson"
)

type HistoryCmd struct {
	flags *Flags
	app   *fleet.App

	limit      int
	jsonOutput bool
}

// NewHistoryCmd creates a new history command
func NewHistoryCmd(flags *Flags, app *fleet.App) *HistoryCmd {
	return &HistoryCmd{flags: flags, app: app}
}

// Register adds the history command to the application
func (cmd *HistoryCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "history",
		Usage:       "Show recent check-ins sent from this device",
		UsageText:   "fleetcheck history [--limit N] [--json]",
		Description: "Lists the identified driver's recent check-in attempts, newest first.",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:        "limit",
				Aliases:     []string{"n"},
				Usage:       "maximum number of entries",
				Value:       20,
				Destination: &cmd.limit,
			},
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

func (cmd *HistoryCmd) run(ctx context.Context, c *cli.Command) error {
	driver, err := cmd.app.Drivers.Current(ctx)
	if err != nil {
		return err
	}

	entries, err := cmd.app.History.ListByDriver(ctx, driver.ID, cmd.limit)
	if err != nil {
		return err
	}

	out := c.Root().Writer

	if cmd.jsonOutput {
		for _, e := range entries {
			if err := iojson.WriteLine(out, e); err != nil {
				return fmt.Errorf("encode entry: %w", err)
			}
		}
		return nil
	}

	if len(entries) == 0 {
		newPrinter(c.Root().ErrWriter).Mutedf("No check-ins recorded for driver %s", driver.ID)
		return nil
	}

	rendered, err := renderHistory(driver.ID, entries, 100)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(out, rendered)
	return err
}

// historyMarkdown formats entries as a markdown table.
func historyMarkdown(driverID string, entries []stores.HistoryEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Check-ins for %s\n\n", driverID)
	b.WriteString("| When | Kind | Item | Result |\n")
	b.WriteString("|---|---|---|---|\n")

	for _, e := range entries {
		label := e.Description
		if label == "" {
			label = string(e.ItemID)
		}
		result := "checked in"
		if !e.OK {
			result = "**failed**: " + escapeCell(e.Error)
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
			e.CreatedAt.Local().Format(time.DateTime),
			e.Kind,
			escapeCell(label),
			result,
		)
	}
	return b.String()
}

func renderHistory(driverID string, entries []stores.HistoryEntry, width int) (string, error) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStyles(styles.GlamourStyle()),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("create renderer: %w", err)
	}
	return renderer.Render(historyMarkdown(driverID, entries))
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
