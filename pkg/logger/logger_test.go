package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/athlink/cli/pkg/config"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerFunctions_NoNilPointers(t *testing.T) {
	logger = nil

	assert.NotPanics(t, func() {
		Debug("test debug", "key", "value")
		Info("test info", "key", "value")
		Warn("test warn", "key", "value")
		Error("test error", "key", "value")
	})
}

func TestSetOutput_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, log.InfoLevel)

	Debug("hidden message")
	Info("visible message", "follower_id", 1)

	out := buf.String()
	assert.NotContains(t, out, "hidden message")
	assert.Contains(t, out, "visible message")
	assert.Contains(t, out, "follower_id=1")
}

func TestInit_WritesToConfiguredFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, config.Init(filepath.Join(dir, "config.toml")))
	logFile := filepath.Join(dir, "logs", "cli.log")
	config.Set("log.file", logFile)

	Init(true)
	Debug("written to file", "key", "value")

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to file")
	assert.Equal(t, log.DebugLevel, GetLogger().GetLevel())
}
