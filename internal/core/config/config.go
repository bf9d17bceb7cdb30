// Package config handles configuration loading and validation for fleetcheck.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/colonyops/fleetcheck/internal/core/checkin"
	"github.com/colonyops/fleetcheck/internal/core/styles"
)

// Config holds the application configuration.
type Config struct {
	API      APIConfig      `yaml:"api"`
	Checkin  CheckinConfig  `yaml:"checkin"`
	Cache    CacheConfig    `yaml:"cache"`
	History  HistoryConfig  `yaml:"history"`
	Database DatabaseConfig `yaml:"database"`
	TUI      TUIConfig      `yaml:"tui"`
	DataDir  string         `yaml:"-"` // set by caller, not from config file
}

// APIConfig holds settings for the fleet server REST API.
type APIConfig struct {
	BaseURL   string        `yaml:"base_url"`
	Token     string        `yaml:"token"`
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent"`
}

// CheckinConfig holds batch check-in settings.
type CheckinConfig struct {
	// EligibleStatuses lists the statuses treated as pending, in addition to
	// an empty status.
	EligibleStatuses []string `yaml:"eligible_statuses"`
	// RefreshTimeout bounds the list refresh that follows a batch.
	RefreshTimeout time.Duration `yaml:"refresh_timeout"`
}

// CacheConfig holds settings for the offline item cache.
type CacheConfig struct {
	TTL           time.Duration `yaml:"ttl"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// HistoryConfig holds settings for the local check-in history.
type HistoryConfig struct {
	// Retention is how long history rows are kept. Zero keeps them forever.
	Retention time.Duration `yaml:"retention"`
}

// DatabaseConfig holds SQLite connection settings.
type DatabaseConfig struct {
	MaxOpenConns int `yaml:"max_open_conns"`
	MaxIdleConns int `yaml:"max_idle_conns"`
	BusyTimeout  int `yaml:"busy_timeout"` // milliseconds
}

// TUIConfig holds interactive UI settings.
type TUIConfig struct {
	// DefaultKind is the item kind shown first.
	DefaultKind string `yaml:"default_kind"`
	// Theme names a built-in color theme.
	Theme string `yaml:"theme"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			Timeout:   15 * time.Second,
			UserAgent: "fleetcheck",
		},
		Checkin: CheckinConfig{
			EligibleStatuses: []string{checkin.StatusPending},
			RefreshTimeout:   30 * time.Second,
		},
		Cache: CacheConfig{
			TTL:           24 * time.Hour,
			SweepInterval: 5 * time.Minute,
		},
		History: HistoryConfig{
			Retention: 30 * 24 * time.Hour,
		},
		Database: DatabaseConfig{
			MaxOpenConns: 4,
			MaxIdleConns: 2,
			BusyTimeout:  5000,
		},
		TUI: TUIConfig{
			DefaultKind: string(checkin.KindAppointment),
			Theme:       styles.DefaultTheme,
		},
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.DataDir = dataDir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			// Re-set dataDir since Unmarshal may have cleared it
			cfg.DataDir = dataDir
		}
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.API.Timeout == 0 {
		c.API.Timeout = defaults.API.Timeout
	}
	if c.API.UserAgent == "" {
		c.API.UserAgent = defaults.API.UserAgent
	}
	c.API.BaseURL = strings.TrimRight(c.API.BaseURL, "/")
	if len(c.Checkin.EligibleStatuses) == 0 {
		c.Checkin.EligibleStatuses = defaults.Checkin.EligibleStatuses
	}
	if c.Checkin.RefreshTimeout == 0 {
		c.Checkin.RefreshTimeout = defaults.Checkin.RefreshTimeout
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = defaults.Cache.TTL
	}
	if c.Cache.SweepInterval == 0 {
		c.Cache.SweepInterval = defaults.Cache.SweepInterval
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = defaults.Database.MaxOpenConns
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = defaults.Database.MaxIdleConns
	}
	if c.Database.BusyTimeout == 0 {
		c.Database.BusyTimeout = defaults.Database.BusyTimeout
	}
	if c.TUI.DefaultKind == "" {
		c.TUI.DefaultKind = defaults.TUI.DefaultKind
	}
	if c.TUI.Theme == "" {
		c.TUI.Theme = defaults.TUI.Theme
	}
}

// Validate checks that the configuration is structurally valid.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data directory cannot be empty")
	}

	if c.API.Timeout < 0 {
		return fmt.Errorf("api.timeout cannot be negative")
	}

	if c.Checkin.RefreshTimeout < 0 {
		return fmt.Errorf("checkin.refresh_timeout cannot be negative")
	}

	for i, s := range c.Checkin.EligibleStatuses {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("checkin.eligible_statuses[%d] cannot be blank", i)
		}
	}

	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl cannot be negative")
	}

	if c.History.Retention < 0 {
		return fmt.Errorf("history.retention cannot be negative")
	}

	if c.Database.MaxOpenConns < 1 {
		return fmt.Errorf("database.max_open_conns must be at least 1")
	}

	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns cannot exceed database.max_open_conns")
	}

	if _, err := checkin.ParseKind(c.TUI.DefaultKind); err != nil {
		return fmt.Errorf("tui.default_kind: %w", err)
	}

	if _, ok := styles.GetPalette(c.TUI.Theme); !ok {
		return fmt.Errorf("tui.theme %q is not one of %s", c.TUI.Theme, strings.Join(styles.ThemeNames(), ", "))
	}

	return nil
}

// Statuses returns the configured eligibility set.
func (c *Config) Statuses() checkin.StatusSet {
	return checkin.NewStatusSet(c.Checkin.EligibleStatuses...)
}

// LogFile returns the default log file path inside the data directory.
func (c *Config) LogFile() string {
	return filepath.Join(c.DataDir, "fleetcheck.log")
}
