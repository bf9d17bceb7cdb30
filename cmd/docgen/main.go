// Command docgen writes the CLI reference (docs/cli-reference.md by default)
// from the fleetcheck command tree.
package main

import (
	"fmt"
	"os"

	docs "github.com/urfave/cli-docs/v3"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/fleetcheck/internal/commands"
	"github.com/colonyops/fleetcheck/internal/fleet"
)

// Machine-specific defaults are shown as the variables they derive from.
var docDefaults = map[string]string{
	"config":   "$XDG_CONFIG_HOME/fleetcheck/config.yaml",
	"data-dir": "$XDG_DATA_HOME/fleetcheck",
}

func main() {
	root := commands.Root(&commands.Flags{}, &fleet.App{})
	for _, f := range root.Flags {
		if sf, ok := f.(*cli.StringFlag); ok {
			if v, ok := docDefaults[sf.Name]; ok {
				sf.Value = v
			}
		}
	}

	out := "docs/cli-reference.md"
	if len(os.Args) > 1 {
		out = os.Args[1]
	}

	if err := write(root, out); err != nil {
		fmt.Fprintln(os.Stderr, "docgen:", err)
		os.Exit(1)
	}
	fmt.Println("Generated", out)
}

func write(root *cli.Command, path string) error {
	md, err := docs.ToMarkdown(root)
	if err != nil {
		return fmt.Errorf("render markdown: %w", err)
	}
	if err := os.WriteFile(path, []byte(md), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
