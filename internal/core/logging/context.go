package logging

import "context"

type contextKey string

const (
	driverIDKey contextKey = "driver_id"
	batchIDKey  contextKey = "batch_id"
)

// WithDriverID adds a driver ID to the context.
func WithDriverID(ctx context.Context, driverID string) context.Context {
	return context.WithValue(ctx, driverIDKey, driverID)
}

// WithBatchID adds a batch ID to the context.
func WithBatchID(ctx context.Context, batchID string) context.Context {
	return context.WithValue(ctx, batchIDKey, batchID)
}

// GetDriverID retrieves the driver ID from the context.
// Returns empty string if not present.
func GetDriverID(ctx context.Context) string {
	if id, ok := ctx.Value(driverIDKey).(string); ok {
		return id
	}
	return ""
}

// GetBatchID retrieves the batch ID from the context.
// Returns empty string if not present.
func GetBatchID(ctx context.Context) string {
	if id, ok := ctx.Value(batchIDKey).(string); ok {
		return id
	}
	return ""
}
