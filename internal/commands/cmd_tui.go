package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/fleetcheck/internal/core/checkin"
	"github.com/colonyops/fleetcheck/internal/fleet"
	"github.com/colonyops/fleetcheck/internal/tui"
)

// shutdownWait bounds how long exit waits for a post-batch refresh, which
// still writes to the item cache.
const shutdownWait = 5 * time.Second

type TuiCmd struct {
	flags *Flags
	app   *fleet.App

	kind string
}

// NewTuiCmd creates a new tui command
func NewTuiCmd(flags *Flags, app *fleet.App) *TuiCmd {
	return &TuiCmd{flags: flags, app: app}
}

// Flags returns the TUI-specific flags for registration on the root command
func (cmd *TuiCmd) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "kind",
			Aliases:     []string{"k"},
			Usage:       "list to open first (defaults to tui.default_kind)",
			Sources:     cli.EnvVars("FLEETCHECK_KIND"),
			Local:       true,
			Destination: &cmd.kind,
		},
	}
}

// Run executes the TUI. Exported for use as default command.
func (cmd *TuiCmd) Run(ctx context.Context, c *cli.Command) error {
	return cmd.run(ctx, c)
}

func (cmd *TuiCmd) run(ctx context.Context, _ *cli.Command) error {
	kindName := cmd.kind
	if kindName == "" {
		kindName = cmd.app.Config.TUI.DefaultKind
	}
	kind, err := checkin.ParseKind(kindName)
	if err != nil {
		return err
	}

	session, err := currentSession(ctx, cmd.app)
	if err != nil {
		if errors.Is(err, fleet.ErrNoDriver) {
			return fmt.Errorf("%w: run 'fleetcheck scan' first", err)
		}
		return err
	}

	m := tui.New(ctx, tui.Deps{
		Session:     session,
		Bus:         cmd.app.Bus,
		DefaultKind: kind,
	})

	_, runErr := tea.NewProgram(m, tea.WithContext(ctx)).Run()

	waitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownWait)
	defer cancel()
	if err := session.WaitIdle(waitCtx); err != nil {
		log.Warn().Err(err).Msg("exiting before refresh finished")
	}

	if runErr != nil {
		return fmt.Errorf("run tui: %w", runErr)
	}
	return nil
}
