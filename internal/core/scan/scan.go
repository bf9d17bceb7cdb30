// Package scan turns the text decoded from a driver's QR badge into a
// driver identifier. Decoding the image itself happens elsewhere.
package scan

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/colonyops/fleetcheck/internal/core/validate"
)

// queryKeys are the URL query parameters checked, in order, for a driver id.
var queryKeys = []string{"driver_id", "driverId", "driver"}

// jsonKeys are the object keys checked, in order, for a driver id.
var jsonKeys = []string{"driverId", "driver_id", "id"}

// Parse extracts a driver id from a scanned payload. Accepted forms:
//
//	drv-42
//	driver:drv-42
//	https://fleet.example.com/checkin?driver_id=drv-42
//	{"driverId": "drv-42"}
//
// The extracted id is validated before it is returned.
func Parse(payload string) (string, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return "", fmt.Errorf("scanned payload is empty")
	}

	id, err := extract(payload)
	if err != nil {
		return "", err
	}

	id = strings.TrimSpace(id)
	if err := validate.DriverID(id); err != nil {
		return "", fmt.Errorf("scanned payload: %w", err)
	}
	return id, nil
}

func extract(payload string) (string, error) {
	switch {
	case strings.HasPrefix(payload, "{"):
		return fromJSON(payload)
	case strings.Contains(payload, "://"):
		return fromURL(payload)
	}

	if rest, ok := cutPrefixFold(payload, "driver:"); ok {
		return rest, nil
	}
	return payload, nil
}

func fromJSON(payload string) (string, error) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(payload), &obj); err != nil {
		return "", fmt.Errorf("scanned payload is not valid JSON: %w", err)
	}

	for _, k := range jsonKeys {
		switch v := obj[k].(type) {
		case string:
			return v, nil
		case float64:
			return fmt.Sprintf("%.0f", v), nil
		}
	}
	return "", fmt.Errorf("scanned JSON has none of %s", strings.Join(jsonKeys, ", "))
}

func fromURL(payload string) (string, error) {
	u, err := url.Parse(payload)
	if err != nil {
		return "", fmt.Errorf("scanned payload is not a valid URL: %w", err)
	}

	q := u.Query()
	for _, k := range queryKeys {
		if v := q.Get(k); v != "" {
			return v, nil
		}
	}

	// Fall back to a trailing /drivers/<id> path segment.
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := 0; i+1 < len(segments); i++ {
		if segments[i] == "drivers" || segments[i] == "driver" {
			return segments[i+1], nil
		}
	}
	return "", fmt.Errorf("scanned URL carries no driver id")
}

func cutPrefixFold(s, prefix string) (string, bool) {
	if len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix) {
		return s[len(prefix):], true
	}
	return s, false
}
