package fleet

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/fleetcheck/internal/core/eventbus"
	"github.com/colonyops/fleetcheck/internal/core/kv"
	"github.com/colonyops/fleetcheck/internal/core/scan"
)

// ErrNoDriver is returned when no driver has been identified on this device.
var ErrNoDriver = errors.New("no driver identified, run 'fleetcheck scan' first")

const currentDriverKey = "current"

// Driver is the identity stored after a successful scan.
type Driver struct {
	ID           string    `json:"id"`
	IdentifiedAt time.Time `json:"identified_at"`
}

// DriverService remembers which driver is using the device.
type DriverService struct {
	drivers *kv.TypedKV[Driver]
	bus     *eventbus.EventBus
	log     zerolog.Logger
}

// NewDriverService creates a DriverService persisting to store.
func NewDriverService(store kv.KV, bus *eventbus.EventBus, log zerolog.Logger) *DriverService {
	return &DriverService{
		drivers: kv.Scoped[Driver](store, "driver"),
		bus:     bus,
		log:     log.With().Str("component", "driver-service").Logger(),
	}
}

// Identify parses a scanned payload and stores the driver it names,
// replacing any previously identified driver.
func (s *DriverService) Identify(ctx context.Context, payload string) (Driver, error) {
	id, err := scan.Parse(payload)
	if err != nil {
		return Driver{}, err
	}

	d := Driver{ID: id, IdentifiedAt: time.Now()}
	if err := s.drivers.Set(ctx, currentDriverKey, d); err != nil {
		return Driver{}, fmt.Errorf("store driver: %w", err)
	}

	s.log.Info().Str("driver_id", id).Msg("driver identified")
	if s.bus != nil {
		s.bus.PublishDriverIdentified(eventbus.DriverIdentifiedPayload{DriverID: id})
	}
	return d, nil
}

// Current returns the identified driver or ErrNoDriver.
func (s *DriverService) Current(ctx context.Context) (Driver, error) {
	d, err := s.drivers.Get(ctx, currentDriverKey)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Driver{}, ErrNoDriver
		}
		return Driver{}, fmt.Errorf("load driver: %w", err)
	}
	return d, nil
}

// Forget clears the identified driver. It returns ErrNoDriver when nobody
// was identified.
func (s *DriverService) Forget(ctx context.Context) (Driver, error) {
	d, err := s.Current(ctx)
	if err != nil {
		return Driver{}, err
	}

	if err := s.drivers.Delete(ctx, currentDriverKey); err != nil {
		return Driver{}, fmt.Errorf("forget driver: %w", err)
	}

	s.log.Info().Str("driver_id", d.ID).Msg("driver forgotten")
	if s.bus != nil {
		s.bus.PublishDriverForgotten(eventbus.DriverForgottenPayload{DriverID: d.ID})
	}
	return d, nil
}
