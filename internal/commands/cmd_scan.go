package commands

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/fleetcheck/internal/fleet"
	"github.com/colonyops/fleetcheck/pkg/iojson"
)

type ScanCmd struct {
	flags *Flags
	app   *fleet.App
}

// NewScanCmd creates a new scan command
func NewScanCmd(flags *Flags, app *fleet.App) *ScanCmd {
	return &ScanCmd{flags: flags, app: app}
}

// Register adds the scan command to the application
func (cmd *ScanCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "scan",
		Usage:     "Identify the driver from a scanned QR payload",
		UsageText: "fleetcheck scan [payload]",
		Description: `Stores the driver named by a scanned badge. The payload is the text a QR
reader decoded and may be passed as an argument or piped on stdin.

Accepted forms:
  drv-42
  driver:drv-42
  https://fleet.example.com/checkin?driver_id=drv-42
  {"driverId": "drv-42"}`,
		Action: cmd.run,
	})

	return app
}

func (cmd *ScanCmd) run(ctx context.Context, c *cli.Command) error {
	payload := strings.Join(c.Args().Slice(), " ")
	if payload == "" {
		var err error
		payload, err = readPayload()
		if err != nil {
			return err
		}
	}

	driver, err := cmd.app.Drivers.Identify(ctx, payload)
	if err != nil {
		return fmt.Errorf("identify driver: %w", err)
	}

	newPrinter(c.Root().Writer).Successf("Signed in as driver %s", driver.ID)
	return nil
}

// readPayload reads the first line from stdin when it is not a terminal.
func readPayload() (string, error) {
	if iojson.StdinIsTerminal() {
		return "", fmt.Errorf("no payload provided (stdin is a terminal); pass it as an argument or pipe it in")
	}

	scanner := bufio.NewScanner(os.Stdin)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("read payload: %w", err)
	}
	return "", fmt.Errorf("no payload provided on stdin")
}
