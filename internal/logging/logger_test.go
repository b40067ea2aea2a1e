package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  log.Level
	}{
		{"debug", log.DebugLevel},
		{"INFO", log.InfoLevel},
		{"warning", log.WarnLevel},
		{"error", log.ErrorLevel},
		{"", log.InfoLevel},
		{"loud", log.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.input))
		})
	}
}

func TestParseFormatter(t *testing.T) {
	assert.Equal(t, log.JSONFormatter, ParseFormatter("json"))
	assert.Equal(t, log.LogfmtFormatter, ParseFormatter("logfmt"))
	assert.Equal(t, log.TextFormatter, ParseFormatter("pretty"))
}

func TestNew_JSON(t *testing.T) {
	t.Setenv("TM_DEBUG", "")
	var buf bytes.Buffer
	logger := New(&buf, Options{Level: "info", Format: "json"})

	logger.Debug("hidden")
	logger.Info("request", "status", 200)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "request", entry["msg"])
	assert.Equal(t, float64(200), entry["status"])
	assert.NotContains(t, buf.String(), "hidden")
}

func TestNew_DebugEnvironment(t *testing.T) {
	t.Setenv("TM_DEBUG", "1")
	var buf bytes.Buffer
	logger := New(&buf, Options{Level: "error", Format: "text"})

	logger.Debug("visible")
	assert.Contains(t, buf.String(), "visible")
}

func TestDebugEnabled(t *testing.T) {
	t.Setenv("TM_DEBUG", "")
	assert.False(t, DebugEnabled())

	t.Setenv("TM_DEBUG", "true")
	assert.True(t, DebugEnabled())
}

func TestNewDiscard(t *testing.T) {
	logger := NewDiscard()
	logger.Error("nothing happens")
	assert.Equal(t, log.FatalLevel, logger.GetLevel())
}
