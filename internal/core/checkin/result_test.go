package checkin

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTally_Result(t *testing.T) {
	ok := Item{ID: "1", Description: "Tyre check"}
	bad := Item{ID: "2", Description: "Brake inspection"}
	failure := &RemoteRejectedError{Code: 409, Message: "already checked in"}

	t.Run("all succeeded", func(t *testing.T) {
		res := Tally{}.Record(ok, nil).Record(ok, nil).Result()
		assert.Equal(t, AllSucceeded{SuccessCount: 2}, res)
		assert.Equal(t, OutcomeAllSucceeded, res.Outcome())
	})

	t.Run("partial success", func(t *testing.T) {
		res := Tally{}.Record(ok, nil).Record(bad, failure).Result()
		partial, isPartial := res.(PartialSuccess)
		require.True(t, isPartial, "got %T", res)
		assert.Equal(t, 1, partial.SuccessCount)
		assert.Equal(t, 1, partial.FailureCount)
		require.Len(t, partial.Errors, 1)
		assert.Equal(t, ID("2"), partial.Errors[0].ItemID)
	})

	t.Run("all failed", func(t *testing.T) {
		res := Tally{}.Record(bad, failure).Record(bad, ErrNoConnectivity).Result()
		failed, isFailed := res.(AllFailed)
		require.True(t, isFailed, "got %T", res)
		assert.Equal(t, 2, failed.FailureCount)
	})

	t.Run("nothing attempted", func(t *testing.T) {
		assert.Equal(t, Cancelled{}, Tally{}.Result())
	})
}

func TestItemError_IncludesDescriptionAndStatus(t *testing.T) {
	e := ItemError{
		ItemID:      "2",
		Description: "Brake inspection",
		Err:         fmt.Errorf("check in: %w", &RemoteRejectedError{Code: 422, Message: "odometer missing"}),
	}

	msg := e.Error()
	assert.Equal(t, "Brake inspection: The fleet server rejected the request (422): odometer missing", msg)
	assert.Equal(t, 1, strings.Count(msg, "422"), "status code appears once")

	var rejected *RemoteRejectedError
	assert.True(t, errors.As(e, &rejected))
}

func TestResult_Messages(t *testing.T) {
	assert.Equal(t, "Checked in 1 item.", AllSucceeded{SuccessCount: 1}.Message())
	assert.Equal(t, "Checked in 3 items.", AllSucceeded{SuccessCount: 3}.Message())

	partial := PartialSuccess{
		SuccessCount: 2,
		FailureCount: 1,
		Errors:       []ItemError{{ItemID: "b", Description: "Booking B", Err: ErrNoConnectivity}},
	}
	assert.Contains(t, partial.Message(), "Checked in 2 items, 1 failed")
	assert.Contains(t, partial.Message(), "Booking B")

	assert.NotEmpty(t, NoSelection{}.Message())
	assert.NotEmpty(t, AlreadyInProgress{}.Message())
}
