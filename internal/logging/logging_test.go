package logging

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cleared-dev/finreport/internal/config"
)

func TestNew_JSON(t *testing.T) {
	buf := &strings.Builder{}
	logger, err := New(config.LogConfig{Level: "info", Format: "json"}, WithSink(zapcore.AddSync(buf)))
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("transaction posted", zap.String("ledger", "main"))
	require.NoError(t, logger.Sync())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "transaction posted", entry["msg"])
	assert.Equal(t, "main", entry["ledger"])
}

func TestNew_Console(t *testing.T) {
	buf := &strings.Builder{}
	logger, err := New(config.LogConfig{Level: "debug", Format: "console"}, WithSink(zapcore.AddSync(buf)))
	require.NoError(t, err)

	logger.Debug("seeding", zap.Int("accounts", 28))
	require.NoError(t, logger.Sync())
	assert.Contains(t, buf.String(), "DEBUG")
	assert.Contains(t, buf.String(), "seeding")
}

func TestNew_Invalid(t *testing.T) {
	_, err := New(config.LogConfig{Level: "loud"})
	assert.Error(t, err)

	_, err = New(config.LogConfig{Level: "info", Format: "xml"})
	assert.Error(t, err)
}
