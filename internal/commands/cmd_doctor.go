package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/fleetcheck/internal/core/checkin"
	"github.com/colonyops/fleetcheck/internal/core/doctor"
	"github.com/colonyops/fleetcheck/internal/core/styles"
	"github.com/colonyops/fleetcheck/internal/fleet"
	"github.com/colonyops/fleetcheck/pkg/iojson"
)

type DoctorCmd struct {
	flags  *Flags
	app    *fleet.App
	format string
}

func NewDoctorCmd(flags *Flags, app *fleet.App) *DoctorCmd {
	return &DoctorCmd{flags: flags, app: app}
}

func (cmd *DoctorCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "doctor",
		Usage:       "Run health checks on your fleetcheck setup",
		UsageText:   "fleetcheck doctor [options]",
		Description: "Checks the configuration, the local database, the fleet server, the identified driver and the offline item cache.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "format",
				Usage:       "output format (text, json)",
				Value:       "text",
				Destination: &cmd.format,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *DoctorCmd) checks() []doctor.Check {
	var server doctor.Pinger
	if cmd.app.Remote.Configured() {
		server = cmd.app.Remote
	}

	currentDriver := func(ctx context.Context) (string, error) {
		d, err := cmd.app.Drivers.Current(ctx)
		return d.ID, err
	}

	lists := make([]doctor.CachedList, 0, len(checkin.Kinds))
	for _, kind := range checkin.Kinds {
		lists = append(lists, doctor.CachedList{Name: kind.Plural(), Cache: cmd.app.ItemCache(kind)})
	}

	return []doctor.Check{
		doctor.NewConfigCheck(cmd.app.Config, cmd.flags.ConfigPath),
		doctor.NewDatabaseCheck(cmd.app.DB),
		doctor.NewServerCheck(server, cmd.app.Config.API.BaseURL),
		doctor.NewDriverCheck(currentDriver),
		doctor.NewCacheCheck(currentDriver, lists...),
	}
}

func (cmd *DoctorCmd) run(ctx context.Context, c *cli.Command) error {
	report := newDoctorReport(doctor.RunAll(ctx, cmd.checks()))

	if cmd.format == "json" {
		if err := iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, report); err != nil {
			return err
		}
	} else {
		report.render(c.Root().ErrWriter)
	}

	if !report.Healthy {
		return cli.Exit("", 1)
	}
	return nil
}

type doctorReport struct {
	Healthy bool `json:"healthy"`
	Summary struct {
		Passed int `json:"passed"`
		Warned int `json:"warned"`
		Failed int `json:"failed"`
	} `json:"summary"`
	Checks []doctor.Result `json:"checks"`
}

func newDoctorReport(results []doctor.Result) doctorReport {
	r := doctorReport{Checks: results}
	r.Summary.Passed, r.Summary.Warned, r.Summary.Failed = doctor.Summary(results)
	r.Healthy = r.Summary.Failed == 0
	return r
}

var statusGlyph = map[doctor.Status]func() string{
	doctor.StatusPass: func() string { return styles.SuccessStyle.Render("✔") },
	doctor.StatusWarn: func() string { return styles.WarningStyle.Render("●") },
	doctor.StatusFail: func() string { return styles.ErrorStyle.Render("✘") },
}

func (r doctorReport) render(w io.Writer) {
	var b strings.Builder
	b.WriteString("\n" + styles.HeaderStyle.Render("fleetcheck doctor") + "\n")
	b.WriteString(styles.MutedStyle.Render(strings.Repeat("─", 40)) + "\n\n")

	for _, check := range r.Checks {
		b.WriteString(styles.HeaderStyle.Render(check.Name) + "\n")
		for _, item := range check.Items {
			glyph := "?"
			if render, ok := statusGlyph[item.Status]; ok {
				glyph = render()
			}
			line := "  " + glyph + " " + item.Label
			if item.Detail != "" {
				line += " " + styles.MutedStyle.Render(item.Detail)
			}
			b.WriteString(line + "\n")
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "%s  %s  %s\n",
		styles.SuccessStyle.Render(fmt.Sprintf("%d passed", r.Summary.Passed)),
		styles.WarningStyle.Render(fmt.Sprintf("%d warnings", r.Summary.Warned)),
		styles.ErrorStyle.Render(fmt.Sprintf("%d failed", r.Summary.Failed)),
	)
	_, _ = io.WriteString(w, b.String())
}
