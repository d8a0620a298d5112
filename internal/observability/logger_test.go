package observability_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"ecolocker/internal/observability"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := observability.NewLogger(&buf, "warn")

	logger.Info("dropped")
	logger.Warn("kept", "orderId", "42")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "kept", entry["msg"])
	assert.Equal(t, "ecolocker", entry["service"])
	assert.Equal(t, "42", entry["orderId"])
}

func TestSetupOTel_EmptyEndpointIsNoop(t *testing.T) {
	shutdown, err := observability.SetupOTel(t.Context(), "")

	require.NoError(t, err)
	require.NoError(t, shutdown(t.Context()))
}
