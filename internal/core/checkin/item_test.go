package checkin

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestID_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    ID
		wantErr bool
	}{
		{name: "string", input: `"abc-1"`, want: "abc-1"},
		{name: "integer", input: `42`, want: "42"},
		{name: "integer beyond int64", input: `123456789012345678901234567890`, want: "123456789012345678901234567890"},
		{name: "negative integer", input: `-7`, want: "-7"},
		{name: "leading zero", input: `007`, wantErr: true},
		{name: "exponent", input: `1e3`, wantErr: true},
		{name: "null", input: `null`, want: ""},
		{name: "float", input: `4.2`, wantErr: true},
		{name: "object", input: `{}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var id ID
			err := json.Unmarshal([]byte(tt.input), &id)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, id)
		})
	}
}

func TestItem_DecodesBackendPayload(t *testing.T) {
	raw := `[
		{"id": 7, "status": "Pending", "description": "Oil change", "odometer": 120500},
		{"id": "b-2", "status": "completed", "isSelected": true}
	]`

	var items []Item
	require.NoError(t, json.Unmarshal([]byte(raw), &items))
	require.Len(t, items, 2)

	assert.Equal(t, ID("7"), items[0].ID)
	assert.Equal(t, "Oil change", items[0].Label())
	require.NotNil(t, items[0].Odometer)
	assert.Equal(t, int64(120500), *items[0].Odometer)
	assert.False(t, items[0].Selected)

	assert.Equal(t, ID("b-2"), items[1].ID)
	assert.True(t, items[1].Selected)
}

func TestParseKind(t *testing.T) {
	for _, in := range []string{"appointment", "appointments"} {
		k, err := ParseKind(in)
		require.NoError(t, err)
		assert.Equal(t, KindAppointment, k)
	}

	k, err := ParseKind("log")
	require.NoError(t, err)
	assert.Equal(t, KindLogbook, k)

	_, err = ParseKind("trip")
	assert.Error(t, err)
}

func TestKind_Plural(t *testing.T) {
	assert.Equal(t, "appointments", KindAppointment.Plural())
	assert.Equal(t, "bookings", KindBooking.Plural())
	assert.Equal(t, "logbook", KindLogbook.Plural())
}
