package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDriverID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr string
	}{
		{name: "simple", id: "drv-42"},
		{name: "underscore and digits", id: "DRIVER_0007"},
		{name: "empty", id: "", wantErr: "required"},
		{name: "whitespace", id: "   ", wantErr: "required"},
		{name: "space inside", id: "drv 42", wantErr: "invalid characters"},
		{name: "slash", id: "drv/42", wantErr: "invalid characters"},
		{name: "too long", id: strings.Repeat("a", MaxDriverIDLength+1), wantErr: "at most"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := DriverID(tt.id)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			if assert.Error(t, err) {
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestDriverIDField(t *testing.T) {
	err := DriverIDField("driver", "")
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "driver")
	}
	assert.NoError(t, DriverIDField("driver", "d1"))
}

func TestItemID(t *testing.T) {
	assert.NoError(t, ItemID("123"))
	assert.NoError(t, ItemID("b-7"))
	assert.Error(t, ItemID(""))
	assert.Error(t, ItemID("1/2"))
	assert.Error(t, ItemID("1?x=2"))
}
