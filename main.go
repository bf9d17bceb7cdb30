package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/fleetcheck/internal/commands"
	"github.com/colonyops/fleetcheck/internal/core/config"
	"github.com/colonyops/fleetcheck/internal/core/eventbus"
	"github.com/colonyops/fleetcheck/internal/core/styles"
	"github.com/colonyops/fleetcheck/internal/data/db"
	"github.com/colonyops/fleetcheck/internal/data/stores"
	"github.com/colonyops/fleetcheck/internal/fleet"
	"github.com/colonyops/fleetcheck/internal/fleet/sweep"
	"github.com/colonyops/fleetcheck/internal/remote"
	"github.com/colonyops/fleetcheck/pkg/logutils"
)

// Set with -ldflags on release builds.
var (
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

// versionString falls back to the module build info for `go install` builds,
// where ldflags are never applied.
func versionString() string {
	v, rev, when := version, commit, date
	if info, ok := debug.ReadBuildInfo(); ok && v == "dev" {
		if info.Main.Version != "" && info.Main.Version != "(devel)" {
			v = info.Main.Version
		}
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" {
				rev = s.Value
			} else if s.Key == "vcs.time" {
				when = s.Value
			}
		}
	}
	if len(rev) > 7 {
		rev = rev[:7]
	}
	return v + " (" + rev + ") " + when
}

// lifecycle owns everything Before opens and After releases.
type lifecycle struct {
	flags    *commands.Flags
	app      *fleet.App
	database *db.DB
	closeLog func()
	stop     context.CancelFunc
}

func (lc *lifecycle) before(ctx context.Context, _ *cli.Command) (context.Context, error) {
	f := lc.flags

	logPath := f.LogFile
	if logPath == "" {
		logPath = filepath.Join(f.DataDir, "fleetcheck.log")
	}
	logger, closeLog, err := logutils.New(f.LogLevel, logPath)
	if err != nil {
		return ctx, fmt.Errorf("setup logger: %w", err)
	}
	log.Logger, lc.closeLog = logger, closeLog

	cfg, err := config.Load(f.ConfigPath, f.DataDir)
	if err != nil {
		return ctx, fmt.Errorf("load config: %w", err)
	}
	if f.APIURL != "" {
		cfg.API.BaseURL = strings.TrimRight(f.APIURL, "/")
	}
	f.Config = cfg
	for _, w := range cfg.Warnings() {
		log.Warn().Str("category", w.Category).Str("item", w.Item).Msg(w.Message)
	}

	// Load validated the theme name already.
	palette, _ := styles.GetPalette(cfg.TUI.Theme)
	styles.SetTheme(palette)

	if lc.database, err = openDatabase(cfg); err != nil {
		return ctx, fmt.Errorf("open database: %w", err)
	}
	kv := stores.NewKVStore(lc.database)
	history := stores.NewHistoryStore(lc.database)

	bg, stop := context.WithCancel(context.Background())
	lc.stop = stop

	bus := eventbus.New(64)
	eventbus.RegisterDebugLogger(bus, log.With().Str("component", "eventbus").Logger())
	eventbus.NewNotificationRouter(bus).Register()
	go bus.Start(bg)

	go sweep.Start(bg, kv, history, sweep.Options{
		Interval:  cfg.Cache.SweepInterval,
		Retention: cfg.History.Retention,
	})

	client := remote.New(remote.Options{
		BaseURL:   cfg.API.BaseURL,
		Token:     cfg.API.Token,
		Timeout:   cfg.API.Timeout,
		UserAgent: cfg.API.UserAgent + "/" + version,
	}, log.Logger)

	// Commands were built with this pointer before flags were parsed.
	*lc.app = *fleet.NewApp(cfg, lc.database, kv, history, client, bus,
		log.With().Str("component", "fleet").Logger())

	return ctx, nil
}

func (lc *lifecycle) after(context.Context, *cli.Command) error {
	if lc.stop != nil {
		lc.stop()
	}

	var err error
	if lc.database != nil {
		if err = lc.database.Close(); err != nil {
			log.Error().Err(err).Msg("close database")
		}
	}
	if lc.closeLog != nil {
		lc.closeLog()
	}
	return err
}

func main() {
	flags := &commands.Flags{}
	lc := &lifecycle{flags: flags, app: &fleet.App{}}

	root := commands.Root(flags, lc.app)
	root.Version = versionString()
	root.Before = lc.before
	root.After = lc.after
	// Exit codes are decided in main.
	root.ExitErrHandler = func(context.Context, *cli.Command, error) {}

	os.Exit(exitCode(root.Run(context.Background(), os.Args)))
}

// exitCode prints err unless it is a silent cli.Exit and maps it to a status.
func exitCode(err error) int {
	if err == nil {
		return 0
	}

	var coder cli.ExitCoder
	if errors.As(err, &coder) {
		if msg := coder.Error(); msg != "" {
			fmt.Fprintln(os.Stderr, msg)
		}
		return coder.ExitCode()
	}

	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, err.Error())
	return 1
}

// openDatabase opens the local database, moving a corrupt file aside and
// starting fresh when SQLite reports corruption.
func openDatabase(cfg *config.Config) (*db.DB, error) {
	opts := db.OpenOptions{
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
		BusyTimeout:  cfg.Database.BusyTimeout,
	}

	database, err := db.Open(cfg.DataDir, opts)
	if err == nil || !stores.IsCorruptionError(err) {
		return database, err
	}

	log.Warn().Err(err).Msg("database corrupt, moving it aside")
	if rerr := stores.RecoverFromCorruption(cfg.DataDir); rerr != nil {
		return nil, fmt.Errorf("recover database: %w", rerr)
	}
	return db.Open(cfg.DataDir, opts)
}
