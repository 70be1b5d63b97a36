package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/openmined/dirdiff/internal/config"
	"github.com/openmined/dirdiff/internal/utils"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newConfigPathCmd())
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config-path",
		Short: "Print the resolved config file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), resolveConfigPath(cmd))
			return err
		},
	}
}

// resolveConfigPath determines which config file path to use, honoring (in order):
// 1) An explicitly set --config flag
// 2) DIRDIFF_CONFIG environment variable
// 3) Existing config files in ~/.dirdiff and ~/.config/dirdiff
// 4) The default path
func resolveConfigPath(cmd *cobra.Command) string {
	if path := configFlag(cmd); path != "" {
		return path
	}

	if envPath := os.Getenv(envPrefix + "_CONFIG"); envPath != "" {
		return envPath
	}

	for _, dir := range []string{config.DefaultConfigDir, filepath.Join(home(), ".config", "dirdiff")} {
		for _, ext := range []string{"json", "yaml", "yml", "toml"} {
			candidate := filepath.Join(dir, "config."+ext)
			if utils.FileExists(candidate) {
				return candidate
			}
		}
	}

	return config.DefaultConfigPath
}
