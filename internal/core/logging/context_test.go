package logging

import (
	"context"
	"testing"
)

func TestWithDriverID(t *testing.T) {
	ctx := context.Background()
	driverID := "drv-7"

	ctx = WithDriverID(ctx, driverID)
	got := GetDriverID(ctx)

	if got != driverID {
		t.Errorf("GetDriverID() = %q, want %q", got, driverID)
	}
}

func TestWithBatchID(t *testing.T) {
	ctx := context.Background()
	batchID := "test-batch-456"

	ctx = WithBatchID(ctx, batchID)
	got := GetBatchID(ctx)

	if got != batchID {
		t.Errorf("GetBatchID() = %q, want %q", got, batchID)
	}
}

func TestGetDriverID_NotPresent(t *testing.T) {
	ctx := context.Background()
	got := GetDriverID(ctx)

	if got != "" {
		t.Errorf("GetDriverID() = %q, want empty string", got)
	}
}

func TestGetBatchID_NotPresent(t *testing.T) {
	ctx := context.Background()
	got := GetBatchID(ctx)

	if got != "" {
		t.Errorf("GetBatchID() = %q, want empty string", got)
	}
}

func TestBothIDs(t *testing.T) {
	ctx := context.Background()
	driverID := "drv-1"
	batchID := "batch-1"

	ctx = WithDriverID(ctx, driverID)
	ctx = WithBatchID(ctx, batchID)

	if got := GetDriverID(ctx); got != driverID {
		t.Errorf("GetDriverID() = %q, want %q", got, driverID)
	}

	if got := GetBatchID(ctx); got != batchID {
		t.Errorf("GetBatchID() = %q, want %q", got, batchID)
	}
}
