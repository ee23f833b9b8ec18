package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("WARN"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("info"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("bogus"))
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "info", FormatJSON).Named(ComponentServer)

	log.Debugw("hidden", "k", 1)
	log.Infow("request served", "path", "/api/translate", "status", 200)
	require.NoError(t, log.Sync())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1, "debug entry must be filtered at info level")

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "server", entry["component"])
	assert.Equal(t, "request served", entry["msg"])
	assert.Equal(t, "/api/translate", entry["path"])
	assert.EqualValues(t, 200, entry["status"])
}

func TestConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "debug", FormatConsole)
	log.Debugw("lookup", "phrase", "thank you")
	require.NoError(t, log.Sync())

	out := buf.String()
	assert.Contains(t, out, " | ")
	assert.Contains(t, out, "lookup")
	assert.Contains(t, out, `"phrase": "thank you"`)
}

func TestNop(t *testing.T) {
	log := Nop()
	require.NotNil(t, log)
	log.Infow("discarded")
}
