package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/fleetcheck/internal/core/checkin"
	"github.com/colonyops/fleetcheck/internal/fleet"
)

// kindFlag builds the --kind flag shared by item commands.
func kindFlag(dest *string) *cli.StringFlag {
	names := make([]string, 0, len(checkin.Kinds))
	for _, k := range checkin.Kinds {
		names = append(names, string(k))
	}
	return &cli.StringFlag{
		Name:        "kind",
		Aliases:     []string{"k"},
		Usage:       "item kind (" + strings.Join(names, ", ") + ")",
		Value:       string(checkin.KindAppointment),
		Destination: dest,
	}
}

// currentSession resolves the identified driver and builds their session.
func currentSession(ctx context.Context, app *fleet.App, opts ...fleet.ControllerOption) (*fleet.Session, error) {
	driver, err := app.Drivers.Current(ctx)
	if err != nil {
		return nil, err
	}
	return app.NewSession(driver.ID, opts...), nil
}

// loadController fetches the list for one kind of the current driver.
func loadController(ctx context.Context, app *fleet.App, kindName string, opts ...fleet.ControllerOption) (*fleet.Session, *fleet.Controller, error) {
	kind, err := checkin.ParseKind(kindName)
	if err != nil {
		return nil, nil, err
	}

	session, err := currentSession(ctx, app, opts...)
	if err != nil {
		return nil, nil, err
	}

	ctrl := session.Controller(kind)
	if err := ctrl.Load(ctx); err != nil {
		return nil, nil, fmt.Errorf("load %s: %s", kind.Plural(), checkin.UserMessage(err))
	}
	return session, ctrl, nil
}
