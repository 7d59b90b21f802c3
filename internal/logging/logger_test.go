package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"createform/internal/config"
)

func TestInitWritesPerLevelFiles(t *testing.T) {
	dir := t.TempDir()
	log, level, err := Init(config.LoggingConfig{Level: "info", Directory: dir, MaxSize: 1})
	require.NoError(t, err)

	log.Debug("hidden")
	log.Info("visible")
	log.Error("broken")
	_ = log.Sync()

	info, err := os.ReadFile(filepath.Join(dir, "info.log"))
	require.NoError(t, err)
	assert.Contains(t, string(info), "visible")
	assert.NotContains(t, string(info), "broken")

	errs, err := os.ReadFile(filepath.Join(dir, "error.log"))
	require.NoError(t, err)
	assert.Contains(t, string(errs), "broken")

	debug, _ := os.ReadFile(filepath.Join(dir, "debug.log"))
	assert.NotContains(t, string(debug), "hidden")

	level.SetLevel(zapcore.DebugLevel)
	log.Debug("now shown")
	_ = log.Sync()
	debug, err = os.ReadFile(filepath.Join(dir, "debug.log"))
	require.NoError(t, err)
	assert.Contains(t, string(debug), "now shown")
}

func TestInitRejectsUnknownLevel(t *testing.T) {
	_, _, err := Init(config.LoggingConfig{Level: "loud", Directory: t.TempDir()})
	require.Error(t, err)
}
