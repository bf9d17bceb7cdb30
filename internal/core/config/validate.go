package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"

	"github.com/hay-kot/criterio"
)

// ValidationWarning is a setting that works but is probably not intended.
type ValidationWarning struct {
	Category string `json:"category"`
	Item     string `json:"item,omitempty"`
	Message  string `json:"message"`
}

// ValidateDeep runs Validate and then the checks that touch the filesystem
// or need more than one field. An empty configPath skips the config file
// check.
func (c *Config) ValidateDeep(configPath string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	return criterio.ValidateStruct(
		criterio.Run("config_file", configPath, isFile),
		criterio.Run("data_dir", c.DataDir, isDir),
		criterio.Run("api.base_url", c.API.BaseURL, isHTTPURL),
		criterio.Run("api.user_agent", c.API.UserAgent, singleLine),
		uniqueStatuses(c.Checkin.EligibleStatuses),
	)
}

func isFile(path string) error { return checkPath(path, false) }
func isDir(path string) error  { return checkPath(path, true) }

func singleLine(s string) error {
	if strings.ContainsAny(s, "\r\n") {
		return errors.New("must be a single line")
	}
	return nil
}

// uniqueStatuses reports each status that repeats an earlier one, ignoring
// case and surrounding space.
func uniqueStatuses(statuses []string) error {
	var errs criterio.FieldErrorsBuilder
	seen := make(map[string]bool, len(statuses))
	for i, s := range statuses {
		key := strings.ToLower(strings.TrimSpace(s))
		if seen[key] {
			errs = errs.Append(fmt.Sprintf("checkin.eligible_statuses[%d]", i), fmt.Errorf("duplicate status %q", s))
		}
		seen[key] = true
	}
	return errs.ToError()
}

// checkPath accepts a missing path. An existing one must be a directory when
// wantDir is set and a regular file otherwise.
func checkPath(path string, wantDir bool) error {
	if path == "" {
		return nil
	}

	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil
	case err != nil:
		return fmt.Errorf("cannot access: %w", err)
	case wantDir && !info.IsDir():
		return errors.New("exists but is not a directory")
	case !wantDir && info.IsDir():
		return fmt.Errorf("%s is a directory, not a file", path)
	}
	return nil
}

// isHTTPURL accepts an empty string or an absolute http(s) URL with a host.
func isHTTPURL(raw string) error {
	if raw == "" {
		return nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("missing host")
	}
	return nil
}

// Warnings lists settings that are valid but likely mistakes.
func (c *Config) Warnings() []ValidationWarning {
	rules := []struct {
		when bool
		warn ValidationWarning
	}{
		{
			when: c.API.BaseURL == "",
			warn: ValidationWarning{"API", "base_url", "no fleet server configured; only cached items are available"},
		},
		{
			when: c.API.Token != "" && strings.HasPrefix(c.API.BaseURL, "http://"),
			warn: ValidationWarning{"API", "token", "bearer token is sent over plain http"},
		},
		{
			when: c.History.Retention == 0,
			warn: ValidationWarning{"History", "retention", "check-in history is never pruned"},
		},
	}

	var out []ValidationWarning
	for _, r := range rules {
		if r.when {
			out = append(out, r.warn)
		}
	}
	return out
}
