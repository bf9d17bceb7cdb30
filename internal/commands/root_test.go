package commands

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/fleetcheck/internal/fleet"
)

func TestRoot_RegistersCommands(t *testing.T) {
	root := Root(&Flags{}, &fleet.App{})

	var names []string
	for _, c := range root.Commands {
		names = append(names, c.Name)
	}
	assert.ElementsMatch(t, []string{"scan", "whoami", "ls", "checkin", "history", "doctor", "config"}, names)

	for _, want := range []string{"log-level", "config", "data-dir", "api-url"} {
		found := false
		for _, f := range root.Flags {
			if f.Names()[0] == want {
				found = true
			}
		}
		assert.True(t, found, want)
	}
}

func TestRoot_RejectsUnknownCommand(t *testing.T) {
	root := Root(&Flags{}, &fleet.App{})
	root.Writer, root.ErrWriter = io.Discard, io.Discard
	root.ExitErrHandler = func(context.Context, *cli.Command, error) {}

	err := root.Run(context.Background(), []string{"fleetcheck", "chekin"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown command "chekin"`)
}
