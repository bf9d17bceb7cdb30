package commands

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/hay-kot/criterio"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/fleetcheck/internal/core/checkin"
	"github.com/colonyops/fleetcheck/internal/core/eventbus/testbus"
	"github.com/colonyops/fleetcheck/internal/fleet"
)

func TestCheckinInput_Validate(t *testing.T) {
	tests := []struct {
		name    string
		input   CheckinInput
		wantErr string
	}{
		{name: "valid", input: CheckinInput{IDs: []string{"1", "b-2"}}},
		{name: "empty", input: CheckinInput{}, wantErr: "ids"},
		{name: "blank id", input: CheckinInput{IDs: []string{"1", " "}}, wantErr: "ids[1]"},
		{name: "reserved characters", input: CheckinInput{IDs: []string{"1/2"}}, wantErr: "ids[0]"},
		{name: "duplicate", input: CheckinInput{IDs: []string{"7", "7"}}, wantErr: "duplicate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.input.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}

			var fieldErrs criterio.FieldErrors
			require.ErrorAs(t, err, &fieldErrs)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCheckinInput_JSON(t *testing.T) {
	var in CheckinInput
	require.NoError(t, json.Unmarshal([]byte(`{"ids": ["17", "18"]}`), &in))
	assert.Equal(t, []string{"17", "18"}, in.IDs)
}

func newCheckinController(t *testing.T, items []checkin.Item, fail map[checkin.ID]error) *fleet.Controller {
	t.Helper()

	src := checkin.SourceFunc(func(context.Context, string) ([]checkin.Item, error) {
		return items, nil
	})
	sink := checkin.SinkFunc(func(_ context.Context, id checkin.ID) error {
		return fail[id]
	})

	ctrl := fleet.NewController(checkin.KindBooking, "drv-1", src, sink, testbus.New(t).EventBus, zerolog.Nop())
	require.NoError(t, ctrl.Load(context.Background()))
	return ctrl
}

func TestRunCheckin(t *testing.T) {
	items := []checkin.Item{
		{ID: "1", Status: "pending", Description: "Van 1"},
		{ID: "2", Status: "done", Description: "Van 2"},
		{ID: "3", Status: "", Description: "Van 3", Selected: true},
		{ID: "4", Status: "pending", Description: "Van 4"},
	}

	t.Run("selected ids only", func(t *testing.T) {
		ctrl := newCheckinController(t, items, map[checkin.ID]error{
			"4": &checkin.RemoteRejectedError{Code: 409, Message: "in use"},
		})

		out, result := runCheckin(context.Background(), ctrl, CheckinInput{IDs: []string{"1", "2", "4", "9"}}, false, "b-1")

		assert.IsType(t, checkin.PartialSuccess{}, result)
		assert.Equal(t, "b-1", out.BatchID)
		assert.Equal(t, checkin.OutcomePartialSuccess, out.Outcome)
		assert.Equal(t, 1, out.SuccessCount)
		assert.Equal(t, 1, out.FailureCount)

		byID := map[checkin.ID]CheckinResult{}
		for _, r := range out.Results {
			byID[r.ID] = r
		}
		require.Len(t, byID, 4)
		assert.Equal(t, StatusCheckedIn, byID["1"].Status)
		assert.Equal(t, StatusSkipped, byID["2"].Status)
		assert.Contains(t, byID["2"].Error, "not eligible")
		assert.Equal(t, StatusFailed, byID["4"].Status)
		assert.Contains(t, byID["4"].Error, "409")
		assert.Equal(t, StatusSkipped, byID["9"].Status)
		assert.Equal(t, "not found", byID["9"].Error)
		_, preselected := byID["3"]
		assert.False(t, preselected, "server-side selection is cleared first")
	})

	t.Run("all eligible", func(t *testing.T) {
		ctrl := newCheckinController(t, items, nil)

		out, result := runCheckin(context.Background(), ctrl, CheckinInput{}, true, "b-2")

		assert.Equal(t, checkin.AllSucceeded{SuccessCount: 3}, result)
		require.Len(t, out.Results, 3)
		assert.Equal(t, checkin.ID("1"), out.Results[0].ID)
		assert.Equal(t, checkin.ID("3"), out.Results[1].ID)
		assert.Equal(t, checkin.ID("4"), out.Results[2].ID)
		assert.Equal(t, 3, countCheckinStatus(out.Results, StatusCheckedIn))
	})

	t.Run("nothing eligible selected", func(t *testing.T) {
		ctrl := newCheckinController(t, items, nil)

		out, result := runCheckin(context.Background(), ctrl, CheckinInput{IDs: []string{"2"}}, false, "b-3")

		assert.Equal(t, checkin.NoSelection{}, result)
		assert.Equal(t, checkin.OutcomeNoSelection, out.Outcome)
		require.Len(t, out.Results, 1)
		assert.Equal(t, StatusSkipped, out.Results[0].Status)
	})

	t.Run("all failed", func(t *testing.T) {
		ctrl := newCheckinController(t, items, map[checkin.ID]error{
			"1": checkin.ErrNoConnectivity,
		})

		out, result := runCheckin(context.Background(), ctrl, CheckinInput{IDs: []string{"1"}}, false, "b-4")

		assert.IsType(t, checkin.AllFailed{}, result)
		assert.Equal(t, 1, countCheckinStatus(out.Results, StatusFailed))
	})
}
