// Package validate provides shared validation functions.
package validate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/hay-kot/criterio"
)

// MaxDriverIDLength bounds the length of a driver identifier.
const MaxDriverIDLength = 64

var identifierPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// DriverID validates a driver identifier: non-empty, at most
// MaxDriverIDLength characters, letters, digits, '-' and '_' only.
func DriverID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("driver id is required")
	}
	if len(id) > MaxDriverIDLength {
		return fmt.Errorf("driver id must be at most %d characters", MaxDriverIDLength)
	}
	if !identifierPattern.MatchString(id) {
		return fmt.Errorf("driver id %q contains invalid characters", id)
	}
	return nil
}

// DriverIDField returns a criterio validator for driver ids.
func DriverIDField(field, id string) error {
	return criterio.Run(field, id, DriverID)
}

// ItemID validates an item identifier given on the command line.
func ItemID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("item id is required")
	}
	if strings.ContainsAny(id, "/?#") {
		return fmt.Errorf("item id %q contains reserved characters", id)
	}
	return nil
}
