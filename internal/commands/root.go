package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/fleetcheck/internal/fleet"
)

const rootDescription = `fleetcheck lets a driver check in their pending fleet items in one batch.

Identify yourself once with 'fleetcheck scan <qr payload>'. After that the
driver's appointments, bookings and logbook entries are fetched from the fleet
server and cached locally for offline viewing.

Run 'fleetcheck' with no arguments to open the interactive check-in screen.`

type registrar interface {
	Register(*cli.Command) *cli.Command
}

// Root builds the full command tree bound to flags and app. app is filled in
// by the caller's Before hook, after flags are parsed.
func Root(flags *Flags, app *fleet.App) *cli.Command {
	root := &cli.Command{
		Name:        "fleetcheck",
		Usage:       "Check in fleet appointments, bookings and logbook entries",
		UsageText:   "fleetcheck [global options] command [command options]",
		Description: rootDescription,
		Flags:       globalFlags(flags),
	}

	for _, r := range []registrar{
		NewScanCmd(flags, app),
		NewWhoamiCmd(flags, app),
		NewLsCmd(flags, app),
		NewCheckinCmd(flags, app),
		NewHistoryCmd(flags, app),
		NewDoctorCmd(flags, app),
		NewConfigValidateCmd(flags),
	} {
		root = r.Register(root)
	}

	// The check-in screen is the default action and its flags live on the root.
	tui := NewTuiCmd(flags, app)
	root.Flags = append(root.Flags, tui.Flags()...)
	root.Action = func(ctx context.Context, c *cli.Command) error {
		if c.Args().Present() {
			return fmt.Errorf("unknown command %q. Run 'fleetcheck --help' for usage", c.Args().First())
		}
		return tui.Run(ctx, c)
	}

	return root
}

func globalFlags(f *Flags) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error, fatal, panic)",
			Sources:     cli.EnvVars("FLEETCHECK_LOG_LEVEL"),
			Value:       "info",
			Destination: &f.LogLevel,
		},
		&cli.StringFlag{
			Name:        "log-file",
			Usage:       "path to log file (defaults to <data-dir>/fleetcheck.log)",
			Sources:     cli.EnvVars("FLEETCHECK_LOG_FILE"),
			Destination: &f.LogFile,
		},
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "path to config file",
			Sources:     cli.EnvVars("FLEETCHECK_CONFIG"),
			Value:       DefaultConfigPath(),
			Destination: &f.ConfigPath,
		},
		&cli.StringFlag{
			Name:        "data-dir",
			Usage:       "path to data directory",
			Sources:     cli.EnvVars("FLEETCHECK_DATA_DIR"),
			Value:       DefaultDataDir(),
			Destination: &f.DataDir,
		},
		&cli.StringFlag{
			Name:        "api-url",
			Usage:       "fleet server base URL (overrides api.base_url)",
			Sources:     cli.EnvVars("FLEETCHECK_API_URL"),
			Destination: &f.APIURL,
		},
	}
}
