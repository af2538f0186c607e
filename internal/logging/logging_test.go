package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warn"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("info"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestAdapter_WritesJSONWithContext(t *testing.T) {
	var buf bytes.Buffer
	logger := NewAdapter(NewWithWriter(&buf, "info", "wxr-test"))

	logger.With("request_id", "r-1").Warn("position missing", "sender", "n***@findmespot.com")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "WARN", line["level"])
	assert.Equal(t, "position missing", line["msg"])
	assert.Equal(t, "wxr-test", line["service"])
	assert.Equal(t, "r-1", line["request_id"])
	assert.Equal(t, "n***@findmespot.com", line["sender"])
}

func TestAdapter_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewAdapter(NewWithWriter(&buf, "error", ""))

	logger.Info("dropped")
	logger.Warn("dropped")
	assert.Zero(t, buf.Len())

	logger.Error("kept")
	assert.Contains(t, buf.String(), "kept")
}
