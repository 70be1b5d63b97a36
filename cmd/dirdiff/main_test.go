package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/openmined/dirdiff/internal/config"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRoot(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "dirdiff"}
	addRunFlags(cmd)
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func TestLoadConfigEnv(t *testing.T) {
	t.Setenv("DIRDIFF_CONFIG", "")
	t.Setenv("DIRDIFF_SOURCE", "/tmp/src")
	t.Setenv("DIRDIFF_DESTINATION", "/tmp/dst")
	t.Setenv("DIRDIFF_OUTPUT_FILE", "/tmp/out.yaml")
	t.Setenv("DIRDIFF_WORKERS", "7")
	t.Setenv("DIRDIFF_EXCLUDE", "*.log,build/")
	t.Setenv("DIRDIFF_STRICT", "true")

	cfg, err := loadConfig(newTestRoot(t))
	require.NoError(t, err)

	assert.Equal(t, "/tmp/src", cfg.Source)
	assert.Equal(t, "/tmp/dst", cfg.Destination)
	assert.Equal(t, "/tmp/out.yaml", cfg.OutputFile)
	assert.Equal(t, 7, cfg.Workers)
	assert.Equal(t, []string{"*.log", "build/"}, cfg.Exclude)
	assert.True(t, cfg.Strict)
	assert.Equal(t, config.ModeCompare, cfg.Mode())
}

func TestLoadConfigFile(t *testing.T) {
	t.Setenv("DIRDIFF_CONFIG", "")
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
source: /data/a
snapshot: /data/a.hash
io_workers: 3
exclude:
  - .git/
  - "*.tmp"
log_level: debug
`), 0o644))

	cfg, err := loadConfig(newTestRoot(t, "--config", path))
	require.NoError(t, err)

	assert.Equal(t, path, cfg.Path)
	assert.Equal(t, "/data/a", cfg.Source)
	assert.Equal(t, "/data/a.hash", cfg.Snapshot)
	assert.Equal(t, 3, cfg.IOWorkers)
	assert.Equal(t, []string{".git/", "*.tmp"}, cfg.Exclude)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, config.ModeSnapshot, cfg.Mode())
}

func TestLoadConfigFlagsWin(t *testing.T) {
	t.Setenv("DIRDIFF_CONFIG", "")
	t.Setenv("DIRDIFF_WORKERS", "7")
	t.Setenv("DIRDIFF_SOURCE", "/from/env")

	cfg, err := loadConfig(newTestRoot(t, "--workers=2", "-s", "/from/flag"))
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, "/from/flag", cfg.Source)
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DIRDIFF_CONFIG", "")

	cfg, err := loadConfig(newTestRoot(t))
	require.NoError(t, err)

	assert.Equal(t, config.DefaultSource, cfg.Source)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, config.ModeScan, cfg.Mode())
	assert.Equal(t, config.DefaultScanOutput, cfg.Output())
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	_, err := loadConfig(newTestRoot(t, "--config", filepath.Join(t.TempDir(), "nope.json")))
	assert.Error(t, err)
}

func TestNewLoggerWritesLogFile(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "logs", "dirdiff.log")
	cfg := &config.Config{LogLevel: "debug", LogFile: logFile}

	var console bytes.Buffer
	logger, closeLog, err := newLogger(cfg, &console)
	require.NoError(t, err)

	logger.Debug("hello", "key", "value")
	closeLog()

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)

	line := strings.TrimSpace(string(data))
	assert.True(t, strings.HasPrefix(line, "line=1 time="))
	assert.Contains(t, line, "msg=hello")
	assert.Contains(t, line, "key=value")
	assert.Contains(t, line, "run=")
	assert.Contains(t, console.String(), "hello")
}
