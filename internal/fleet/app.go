// Package fleet holds the services that drive check-ins: the per-kind batch
// controller, driver identity, and the offline item cache.
package fleet

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/colonyops/fleetcheck/internal/core/checkin"
	"github.com/colonyops/fleetcheck/internal/core/config"
	"github.com/colonyops/fleetcheck/internal/core/eventbus"
	"github.com/colonyops/fleetcheck/internal/data/db"
	"github.com/colonyops/fleetcheck/internal/data/stores"
	"github.com/colonyops/fleetcheck/internal/remote"
)

// App is the central entry point for all fleetcheck operations.
// Commands and the TUI consume App instead of cherry-picking raw dependencies.
type App struct {
	Drivers *DriverService
	History *stores.HistoryStore
	KV      *stores.KVStore
	Remote  *remote.Client
	Bus     *eventbus.EventBus
	Config  *config.Config
	DB      *db.DB

	log zerolog.Logger
}

// NewApp constructs an App from explicit dependencies.
func NewApp(
	cfg *config.Config,
	database *db.DB,
	kvStore *stores.KVStore,
	history *stores.HistoryStore,
	client *remote.Client,
	bus *eventbus.EventBus,
	log zerolog.Logger,
) *App {
	return &App{
		Drivers: NewDriverService(kvStore, bus, log),
		History: history,
		KV:      kvStore,
		Remote:  client,
		Bus:     bus,
		Config:  cfg,
		DB:      database,
		log:     log,
	}
}

// Session is the set of controllers for one driver, keyed by kind.
type Session struct {
	DriverID    string
	Controllers map[checkin.Kind]*Controller
	Sources     map[checkin.Kind]*CachedSource
}

// Controller returns the controller for kind.
func (s *Session) Controller(kind checkin.Kind) *Controller {
	return s.Controllers[kind]
}

// ItemCache returns the cached remote source for kind.
func (a *App) ItemCache(kind checkin.Kind) *CachedSource {
	return NewCachedSource(kind, a.Remote.Source(kind), a.KV, a.Config.Cache.TTL, a.log)
}

// WaitIdle blocks until every controller in the session is idle or ctx is
// done.
func (s *Session) WaitIdle(ctx context.Context) error {
	for _, ctrl := range s.Controllers {
		if err := ctrl.WaitIdle(ctx); err != nil {
			return err
		}
	}
	return nil
}

// NewSession builds a cached, history-recording controller per kind for
// driverID. opts are applied after the configured defaults.
func (a *App) NewSession(driverID string, opts ...ControllerOption) *Session {
	s := &Session{
		DriverID:    driverID,
		Controllers: make(map[checkin.Kind]*Controller, len(checkin.Kinds)),
		Sources:     make(map[checkin.Kind]*CachedSource, len(checkin.Kinds)),
	}

	for _, kind := range checkin.Kinds {
		src := a.ItemCache(kind)
		s.Sources[kind] = src
		kindOpts := append([]ControllerOption{
			WithStatuses(a.Config.Statuses()),
			WithRefreshTimeout(a.Config.Checkin.RefreshTimeout),
			WithHistory(a.History),
		}, opts...)
		s.Controllers[kind] = NewController(kind, driverID, src, a.Remote.Sink(kind), a.Bus, a.log, kindOpts...)
	}

	return s
}
