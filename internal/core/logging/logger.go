package logging

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/colonyops/fleetcheck/internal/core/checkin"
)

// Component creates a new logger with a component identifier.
// Uses the "cmp" key for consistency with zerolog conventions.
func Component(name string) zerolog.Logger {
	return log.With().Str("cmp", name).Logger()
}

// ForKind derives a logger scoped to one item kind.
func ForKind(base zerolog.Logger, kind checkin.Kind) zerolog.Logger {
	return base.With().Str("kind", string(kind)).Logger()
}
