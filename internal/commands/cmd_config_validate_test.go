package commands

import (
	"bytes"
	"errors"
	"testing"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/fleetcheck/internal/core/config"
)

func TestCollectValidationErrors(t *testing.T) {
	assert.Nil(t, collectValidationErrors(nil))

	plain := collectValidationErrors(errors.New("data directory cannot be empty"))
	require.Len(t, plain, 1)
	assert.Empty(t, plain[0].Field)

	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.API.BaseURL = "ftp://fleet"

	errs := collectValidationErrors(cfg.ValidateDeep(""))
	require.Len(t, errs, 1)
	assert.Equal(t, "api.base_url", errs[0].Field)

	fe := criterio.NewFieldErrors("x", errors.New("bad"))
	got := collectValidationErrors(fe)
	require.Len(t, got, 1)
	assert.Equal(t, "x", got[0].Field)
	assert.Equal(t, "bad", got[0].Message)
}

func TestPrintReport(t *testing.T) {
	var buf bytes.Buffer
	printReport(newPrinter(&buf), validationReport{
		Errors:   []validationError{{Field: "api.base_url", Message: "missing host"}, {Message: "plain"}},
		Warnings: []config.ValidationWarning{{Category: "History", Item: "retention", Message: "never pruned"}},
	})

	out := buf.String()
	assert.Contains(t, out, "History: never pruned")
	assert.Contains(t, out, "item: retention")
	assert.Contains(t, out, "api.base_url: missing host")
	assert.Contains(t, out, "2 error(s) found")
	assert.NotContains(t, out, "Configuration is valid")
}
