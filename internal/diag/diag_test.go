package diag_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinyjs/corevm/internal/diag"
)

func TestInitDisabledDiscardsOutput(t *testing.T) {
	var buf bytes.Buffer
	diag.Init(diag.Options{Enabled: false, Output: &buf})

	diag.VMTrace("push_literal", 4)

	assert.Empty(t, buf.String())
}

func TestInitEnabledWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	diag.Init(diag.Options{Enabled: true, Level: slog.LevelDebug, Output: &buf})

	diag.GC(3, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "gc collect", entry["msg"])
	assert.EqualValues(t, 3, entry["freed"])
	assert.EqualValues(t, 1, entry["collections"])
}

func TestInitEnabledWithoutOutputDiscards(t *testing.T) {
	diag.Init(diag.Options{Enabled: true, Level: slog.LevelDebug})

	assert.NotPanics(t, func() {
		diag.Exception("TypeError", "not a function")
	})
}
