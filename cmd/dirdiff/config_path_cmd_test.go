package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/openmined/dirdiff/internal/config"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func newConfigPathRoot() (*cobra.Command, *bytes.Buffer) {
	cmd := &cobra.Command{Use: "dirdiff"}
	cmd.PersistentFlags().StringP("config", "c", "", "config file")
	cmd.AddCommand(newConfigPathCmd())

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	return cmd, &out
}

func TestConfigPathCommand_Default(t *testing.T) {
	t.Setenv("DIRDIFF_CONFIG", "")

	cmd, out := newConfigPathRoot()
	cmd.SetArgs([]string{"config-path"})

	require.NoError(t, cmd.Execute())
	require.Equal(t, config.DefaultConfigPath, strings.TrimSpace(out.String()))
}

func TestConfigPathCommand_Env(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	t.Setenv("DIRDIFF_CONFIG", path)

	cmd, out := newConfigPathRoot()
	cmd.SetArgs([]string{"config-path"})

	require.NoError(t, cmd.Execute())
	require.Equal(t, path, strings.TrimSpace(out.String()))
}

func TestConfigPathCommand_FlagWins(t *testing.T) {
	t.Setenv("DIRDIFF_CONFIG", "/from/env.json")

	cmd, out := newConfigPathRoot()
	cmd.SetArgs([]string{"config-path", "--config", "/from/flag.toml"})

	require.NoError(t, cmd.Execute())
	require.Equal(t, "/from/flag.toml", strings.TrimSpace(out.String()))
}
