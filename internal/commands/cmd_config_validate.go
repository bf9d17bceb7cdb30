package commands

import (
	"context"
	"errors"

	"github.com/hay-kot/criterio"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/fleetcheck/internal/core/config"
	"github.com/colonyops/fleetcheck/pkg/iojson"
)

type ConfigValidateCmd struct {
	flags  *Flags
	format string
}

// NewConfigValidateCmd creates a new config validate command.
func NewConfigValidateCmd(flags *Flags) *ConfigValidateCmd {
	return &ConfigValidateCmd{flags: flags}
}

// Register adds the config validate command to the application.
func (cmd *ConfigValidateCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "config",
		Usage: "Configuration management commands",
		Commands: []*cli.Command{
			{
				Name:        "validate",
				Usage:       "Validate configuration file",
				UsageText:   "fleetcheck config validate [options]",
				Description: "Validates the configuration file, checking the API endpoint, eligible statuses, and file paths.",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "format",
						Usage:       "output format (text, json)",
						Value:       "text",
						Destination: &cmd.format,
					},
				},
				Action: cmd.run,
			},
		},
	})

	return app
}

// validationReport is the JSON form of a validation run.
type validationReport struct {
	Valid    bool                       `json:"valid"`
	Errors   []validationError          `json:"errors,omitempty"`
	Warnings []config.ValidationWarning `json:"warnings,omitempty"`
}

type validationError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (e validationError) String() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func (cmd *ConfigValidateCmd) run(_ context.Context, c *cli.Command) error {
	cfg := cmd.flags.Config
	report := validationReport{
		Errors:   collectValidationErrors(cfg.ValidateDeep(cmd.flags.ConfigPath)),
		Warnings: cfg.Warnings(),
	}
	report.Valid = len(report.Errors) == 0

	if cmd.format == "json" {
		if err := iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, report); err != nil {
			return err
		}
	} else {
		printReport(newPrinter(c.Root().Writer), report)
	}

	if !report.Valid {
		return cli.Exit("", 1)
	}
	return nil
}

func printReport(p printer, r validationReport) {
	for _, w := range r.Warnings {
		p.Warnf("%s: %s", w.Category, w.Message)
		if w.Item != "" {
			p.Mutedf("  item: %s", w.Item)
		}
	}
	for _, e := range r.Errors {
		p.Errorf("%s", e)
	}

	p.Printf("")
	if r.Valid {
		p.Successf("Configuration is valid")
	} else {
		p.Errorf("%d error(s) found", len(r.Errors))
	}
}

// collectValidationErrors flattens criterio field errors. Any other error
// becomes one entry without a field.
func collectValidationErrors(err error) []validationError {
	var fieldErrs criterio.FieldErrors
	switch {
	case err == nil:
		return nil
	case !errors.As(err, &fieldErrs):
		return []validationError{{Message: err.Error()}}
	}

	out := make([]validationError, len(fieldErrs))
	for i, fe := range fieldErrs {
		out[i] = validationError{Field: fe.Field, Message: fe.Err.Error()}
	}
	return out
}
