package commands

import (
	"context"
	"errors"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/fleetcheck/internal/core/checkin"
	"github.com/colonyops/fleetcheck/internal/fleet"
	"github.com/colonyops/fleetcheck/pkg/iojson"
)

type WhoamiCmd struct {
	flags *Flags
	app   *fleet.App

	jsonOutput bool
}

// NewWhoamiCmd creates a new whoami command
func NewWhoamiCmd(flags *Flags, app *fleet.App) *WhoamiCmd {
	return &WhoamiCmd{flags: flags, app: app}
}

// Register adds the whoami and forget commands to the application
func (cmd *WhoamiCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands,
		&cli.Command{
			Name:      "whoami",
			Usage:     "Show the identified driver",
			UsageText: "fleetcheck whoami [--json]",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:        "json",
					Usage:       "output as JSON",
					Destination: &cmd.jsonOutput,
				},
			},
			Action: cmd.runWhoami,
		},
		&cli.Command{
			Name:        "forget",
			Usage:       "Sign the current driver out of this device",
			UsageText:   "fleetcheck forget",
			Description: "Clears the identified driver and the cached item lists kept for them.",
			Action:      cmd.runForget,
		},
	)

	return app
}

func (cmd *WhoamiCmd) runWhoami(ctx context.Context, c *cli.Command) error {
	driver, err := cmd.app.Drivers.Current(ctx)
	if err != nil {
		if cmd.jsonOutput && errors.Is(err, fleet.ErrNoDriver) {
			return iojson.WriteError(err.Error(), nil)
		}
		return err
	}

	if cmd.jsonOutput {
		return iojson.Write(driver)
	}

	p := newPrinter(c.Root().Writer)
	p.Printf("%s", driver.ID)
	p.Mutedf("identified %s", driver.IdentifiedAt.Format(time.RFC1123))
	return nil
}

func (cmd *WhoamiCmd) runForget(ctx context.Context, c *cli.Command) error {
	driver, err := cmd.app.Drivers.Forget(ctx)
	if err != nil {
		return err
	}

	session := cmd.app.NewSession(driver.ID)
	for _, kind := range checkin.Kinds {
		if err := session.Sources[kind].Forget(ctx, driver.ID); err != nil {
			newPrinter(c.Root().ErrWriter).Warnf("could not clear cached %s: %v", kind.Plural(), err)
		}
	}

	newPrinter(c.Root().Writer).Successf("Driver %s signed out", driver.ID)
	return nil
}
