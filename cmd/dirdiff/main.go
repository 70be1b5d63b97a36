package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/openmined/dirdiff/internal/config"
	"github.com/openmined/dirdiff/internal/utils"
	"github.com/openmined/dirdiff/internal/version"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const envPrefix = "DIRDIFF"

var rootCmd = &cobra.Command{
	Use:   "dirdiff",
	Short: "Fingerprint a directory tree or compare two of them",
	Long: `dirdiff hashes every file and directory below --source.

With only --source it writes the fingerprints to --output-file.
With --destination it compares the two trees and writes the paths that differ.
With --snapshot it compares a saved fingerprint file against --source.`,
	Version:       version.Detailed(),
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		logger, closeLog, err := newLogger(cfg, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer closeLog()

		return run(cmd.Context(), cfg, logger, cmd.OutOrStdout())
	},
}

func init() {
	addRunFlags(rootCmd)
}

func addRunFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.SortFlags = false
	flags.StringP("source", "s", config.DefaultSource, "directory to fingerprint")
	flags.StringP("destination", "d", "", "directory to compare against --source")
	flags.String("snapshot", "", "saved fingerprint file to compare against --source")
	flags.StringP("output-file", "o", "", fmt.Sprintf("output file (default %q, or %q when comparing)", config.DefaultScanOutput, config.DefaultCompareOutput))
	flags.String("format", "", "output format: json, yaml, toml or sqlite (default from the output extension)")
	flags.IntP("workers", "w", 0, "concurrent directory walkers (default 4 per CPU)")
	flags.Int("io-workers", 0, "concurrent file reads (default 1 per CPU)")
	flags.StringSliceP("exclude", "x", nil, "gitignore-style pattern to skip, may be repeated")
	flags.String("exclude-file", "", fmt.Sprintf("file of exclusion patterns (default %s in the source, if present)", config.DefaultIgnoreFile))
	flags.Bool("strict", false, "fail on entries that are neither files nor directories")
	flags.String("log-level", "info", "log level: debug, info, warn or error")
	flags.String("log-file", "", "also write logs to this file")
	cmd.PersistentFlags().StringP("config", "c", "", "config file (default "+config.DefaultConfigPath+")")
}

func main() {
	slog.SetDefault(slog.New(newConsoleHandler(os.Stderr, slog.LevelInfo)))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		slog.Error("dirdiff failed", "error", err)
		os.Exit(1)
	}
}

// flagKeys maps viper keys to the flags that set them.
var flagKeys = map[string]string{
	"source":       "source",
	"destination":  "destination",
	"snapshot":     "snapshot",
	"output_file":  "output-file",
	"format":       "format",
	"workers":      "workers",
	"io_workers":   "io-workers",
	"exclude":      "exclude",
	"exclude_file": "exclude-file",
	"strict":       "strict",
	"log_level":    "log-level",
	"log_file":     "log-file",
}

// loadConfig merges, from lowest to highest precedence: the config file, a .env file in the
// working directory, DIRDIFF_* environment variables, and explicitly set flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	if path := configFlag(cmd); path != "" {
		v.SetConfigFile(path)
	} else if path := os.Getenv(envPrefix + "_CONFIG"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(config.DefaultConfigDir)
		v.AddConfigPath(filepath.Join(home(), ".config", "dirdiff"))
		v.SetConfigName("config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config read '%s': %w", v.ConfigFileUsed(), err)
		}
	}

	for key, name := range flagKeys {
		if flag := cmd.Flags().Lookup(name); flag != nil {
			if err := v.BindPFlag(key, flag); err != nil {
				return nil, err
			}
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	var cfg config.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Path = v.ConfigFileUsed()
	return &cfg, nil
}

func configFlag(cmd *cobra.Command) string {
	if f := cmd.Flag("config"); f != nil && f.Changed {
		return f.Value.String()
	}
	return ""
}

func home() string {
	dir, _ := os.UserHomeDir()
	return dir
}

func newConsoleHandler(w io.Writer, level slog.Leveler) slog.Handler {
	noColor := true
	if f, ok := w.(*os.File); ok {
		noColor = !isatty.IsTerminal(f.Fd()) || os.Getenv("NO_COLOR") != ""
	}
	return tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
		NoColor:    noColor,
	})
}

// newLogger builds the run logger: the console, plus the log file when one is configured.
// Every record carries the run id so that appended log files can be told apart.
func newLogger(cfg *config.Config, stderr io.Writer) (*slog.Logger, func(), error) {
	level, err := cfg.Level()
	if err != nil {
		return nil, nil, err
	}

	handlers := []slog.Handler{newConsoleHandler(stderr, level)}
	closeLog := func() {}

	if cfg.LogFile != "" {
		if err := utils.EnsureParent(cfg.LogFile); err != nil {
			return nil, nil, fmt.Errorf("create log directory: %w", err)
		}
		file, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		interceptor := utils.NewLogInterceptor(file)
		handlers = append(handlers, slog.NewTextHandler(interceptor, &slog.HandlerOptions{
			Level: level,
			// The interceptor stamps each line.
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				if a.Key == slog.TimeKey && len(groups) == 0 {
					return slog.Attr{}
				}
				return a
			},
		}))
		closeLog = func() {
			interceptor.Close()
			file.Close()
		}
	}

	logger := slog.New(utils.NewMultiLogHandler(handlers...)).With("run", uuid.NewString())
	slog.SetDefault(logger)
	return logger, closeLog, nil
}
