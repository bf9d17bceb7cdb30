package doctor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hay-kot/criterio"

	"github.com/colonyops/fleetcheck/internal/core/config"
)

// ConfigCheck deep-validates the loaded configuration.
type ConfigCheck struct {
	cfg        *config.Config
	configPath string
}

func NewConfigCheck(cfg *config.Config, configPath string) *ConfigCheck {
	return &ConfigCheck{cfg: cfg, configPath: configPath}
}

func (c *ConfigCheck) Name() string { return "Configuration" }

func (c *ConfigCheck) Run(_ context.Context) Result {
	result := Result{Name: c.Name()}

	err := c.cfg.ValidateDeep(c.configPath)
	var fieldErrs criterio.FieldErrors
	switch {
	case err == nil:
		result.Items = append(result.Items, CheckItem{Label: "config", Status: StatusPass, Detail: c.configPath})
	case errors.As(err, &fieldErrs):
		for _, fe := range fieldErrs {
			result.Items = append(result.Items, CheckItem{Label: fe.Field, Status: StatusFail, Detail: fe.Err.Error()})
		}
	default:
		result.Items = append(result.Items, CheckItem{Label: "config", Status: StatusFail, Detail: err.Error()})
	}

	for _, w := range c.cfg.Warnings() {
		result.Items = append(result.Items, CheckItem{Label: w.Item, Status: StatusWarn, Detail: w.Message})
	}

	return result
}

// Pinger is anything that can confirm it is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingCheck reports whether a dependency answers within timeout.
type PingCheck struct {
	name    string
	label   string
	target  Pinger
	timeout time.Duration

	// missing downgrades a nil target to a warning with this detail.
	missing string
}

// NewDatabaseCheck pings the local database.
func NewDatabaseCheck(target Pinger) *PingCheck {
	return &PingCheck{name: "Database", label: "sqlite", target: target, timeout: 5 * time.Second}
}

// NewServerCheck pings the fleet server. A nil target means no server is
// configured, which is reported as a warning.
func NewServerCheck(target Pinger, baseURL string) *PingCheck {
	return &PingCheck{
		name:    "Fleet server",
		label:   baseURL,
		target:  target,
		timeout: 10 * time.Second,
		missing: "no server configured",
	}
}

func (c *PingCheck) Name() string { return c.name }

func (c *PingCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.name}

	if c.target == nil {
		result.Items = append(result.Items, CheckItem{Label: c.name, Status: StatusWarn, Detail: c.missing})
		return result
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	if err := c.target.Ping(ctx); err != nil {
		result.Items = append(result.Items, CheckItem{Label: c.label, Status: StatusFail, Detail: err.Error()})
		return result
	}

	result.Items = append(result.Items, CheckItem{
		Label:  c.label,
		Status: StatusPass,
		Detail: fmt.Sprintf("reachable in %s", time.Since(start).Round(time.Millisecond)),
	})
	return result
}

// DriverLookup returns the identified driver id.
type DriverLookup func(ctx context.Context) (string, error)

// DriverCheck reports whether a driver has been identified on this device.
type DriverCheck struct {
	lookup DriverLookup
}

func NewDriverCheck(lookup DriverLookup) *DriverCheck {
	return &DriverCheck{lookup: lookup}
}

func (c *DriverCheck) Name() string { return "Driver" }

func (c *DriverCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	id, err := c.lookup(ctx)
	if err != nil {
		result.Items = append(result.Items, CheckItem{
			Label:  "identified",
			Status: StatusWarn,
			Detail: "none (run 'fleetcheck scan')",
		})
		return result
	}

	result.Items = append(result.Items, CheckItem{Label: "identified", Status: StatusPass, Detail: id})
	return result
}

// CacheInspector reports on the offline copy of one item list.
type CacheInspector interface {
	Age(ctx context.Context, driverID string) (time.Duration, bool, error)
	CachedDrivers(ctx context.Context) ([]string, error)
}

// CachedList names a cache for display.
type CachedList struct {
	Name  string
	Cache CacheInspector
}

// CacheCheck reports whether the identified driver's lists are available
// offline and whether lists of other drivers are still stored.
type CacheCheck struct {
	lists  []CachedList
	lookup DriverLookup
}

func NewCacheCheck(lookup DriverLookup, lists ...CachedList) *CacheCheck {
	return &CacheCheck{lists: lists, lookup: lookup}
}

func (c *CacheCheck) Name() string { return "Offline cache" }

func (c *CacheCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	driverID, err := c.lookup(ctx)
	if err != nil {
		driverID = ""
	}

	for _, list := range c.lists {
		result.Items = append(result.Items, c.inspect(ctx, list, driverID))
	}
	return result
}

func (c *CacheCheck) inspect(ctx context.Context, list CachedList, driverID string) CheckItem {
	item := CheckItem{Label: list.Name}

	drivers, err := list.Cache.CachedDrivers(ctx)
	if err != nil {
		item.Status, item.Detail = StatusFail, err.Error()
		return item
	}
	others := 0
	for _, d := range drivers {
		if d != driverID {
			others++
		}
	}

	if driverID == "" {
		item.Status, item.Detail = StatusPass, "no driver identified"
	} else {
		age, ok, err := list.Cache.Age(ctx, driverID)
		switch {
		case err != nil:
			item.Status, item.Detail = StatusFail, err.Error()
			return item
		case !ok:
			item.Status, item.Detail = StatusWarn, "not cached, unavailable offline"
		default:
			item.Status, item.Detail = StatusPass, fmt.Sprintf("cached %s ago", age.Round(time.Second))
		}
	}

	if others > 0 {
		item.Status = StatusWarn
		item.Detail += fmt.Sprintf(", %d other driver(s) still cached", others)
	}
	return item
}
