package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected LogLevel
	}{
		{"debug", DebugLevel},
		{"INFO", InfoLevel},
		{"warning", WarnLevel},
		{"error", ErrorLevel},
		{"fatal", FatalLevel},
		{"garbage", InfoLevel},
		{"", InfoLevel},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, ParseLogLevel(tt.input), "level %q", tt.input)
	}
}

func TestLogger_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: InfoLevel, Writer: &buf, Service: "cinema", EnableJSON: true})

	logger.Info("server started", map[string]interface{}{"port": 8000})

	var entry LogEntry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "INFO", entry.Level)
	assert.Equal(t, "server started", entry.Message)
	assert.Equal(t, "cinema", entry.Service)
	assert.EqualValues(t, 8000, entry.Fields["port"])
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: WarnLevel, Writer: &buf, EnableJSON: true})

	logger.Debug("dropped")
	logger.Info("dropped too")
	assert.Zero(t, buf.Len())

	logger.Warn("kept")
	assert.NotZero(t, buf.Len())
}

func TestLogger_WithRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: InfoLevel, Writer: &buf, EnableJSON: true})

	logger.WithRequestID("req-123").Info("handling")

	var entry LogEntry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "req-123", entry.RequestID)
	// request_id is promoted out of the generic fields
	_, ok := entry.Fields["request_id"]
	assert.False(t, ok)
}

func TestLogger_TextOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: InfoLevel, Writer: &buf, EnableJSON: false})

	logger.Infof("listening on %s", "0.0.0.0:8000")

	assert.Contains(t, buf.String(), "[INFO]")
	assert.Contains(t, buf.String(), "listening on 0.0.0.0:8000")
}
