package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// ContextHook copies driver_id and batch_id from the event context onto log events.
type ContextHook struct{}

// Run adds contextual fields to the zerolog event.
func (h ContextHook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	ctx := e.GetCtx()
	if ctx == context.Background() || ctx == nil {
		return
	}

	if driverID := GetDriverID(ctx); driverID != "" {
		e.Str("driver_id", driverID)
	}

	if batchID := GetBatchID(ctx); batchID != "" {
		e.Str("batch_id", batchID)
	}
}
