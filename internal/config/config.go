// Package config holds the settings of one dirdiff run, as assembled from flags, environment
// and an optional config file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/openmined/dirdiff/internal/snapshot"
	"github.com/openmined/dirdiff/internal/utils"
)

var (
	home, _           = os.UserHomeDir()
	DefaultConfigDir  = filepath.Join(home, ".dirdiff")
	DefaultConfigPath = filepath.Join(DefaultConfigDir, "config.json")
)

const (
	DefaultSource        = "./"
	DefaultScanOutput    = "diff-checksum-out.hash"
	DefaultCompareOutput = "comparisonResult.diff"
	DefaultIgnoreFile    = ".dirdiffignore"
)

var ErrInvalidConfig = errors.New("invalid config")

// Mode is what a run does with its inputs.
type Mode int

const (
	// ModeScan fingerprints Source and writes the snapshot.
	ModeScan Mode = iota
	// ModeCompare diffs Source against Destination.
	ModeCompare
	// ModeSnapshot diffs a saved Snapshot against Source.
	ModeSnapshot
)

func (m Mode) String() string {
	switch m {
	case ModeScan:
		return "scan"
	case ModeCompare:
		return "compare"
	case ModeSnapshot:
		return "snapshot"
	}
	return "unknown"
}

type Config struct {
	Source      string   `mapstructure:"source"`
	Destination string   `mapstructure:"destination"`
	Snapshot    string   `mapstructure:"snapshot"`
	OutputFile  string   `mapstructure:"output_file"`
	Format      string   `mapstructure:"format"`
	Workers     int      `mapstructure:"workers"`
	IOWorkers   int      `mapstructure:"io_workers"`
	Exclude     []string `mapstructure:"exclude"`
	ExcludeFile string   `mapstructure:"exclude_file"`
	Strict      bool     `mapstructure:"strict"`
	LogLevel    string   `mapstructure:"log_level"`
	LogFile     string   `mapstructure:"log_file"`

	// Path is the config file the values were read from, if any.
	Path string `mapstructure:"-"`
}

func (c *Config) Mode() Mode {
	switch {
	case c.Snapshot != "":
		return ModeSnapshot
	case c.Destination != "":
		return ModeCompare
	default:
		return ModeScan
	}
}

// Output is the file the run writes, falling back to the per-mode default.
func (c *Config) Output() string {
	if c.OutputFile != "" {
		return c.OutputFile
	}
	if c.Mode() == ModeScan {
		return DefaultScanOutput
	}
	return DefaultCompareOutput
}

// OutputFormat resolves Format against the output path.
func (c *Config) OutputFormat() (snapshot.Format, error) {
	return snapshot.ParseFormat(c.Format, c.Output())
}

// Level parses LogLevel. An empty level is info.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if strings.TrimSpace(c.LogLevel) == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("%w: log level %q", ErrInvalidConfig, c.LogLevel)
	}
	return level, nil
}

// Validate checks the combination of settings and resolves every path to an absolute one.
func (c *Config) Validate() error {
	if c.Source == "" {
		c.Source = DefaultSource
	}
	if c.Destination != "" && c.Snapshot != "" {
		return fmt.Errorf("%w: --destination and --snapshot cannot be used together", ErrInvalidConfig)
	}
	if c.Workers < 0 || c.IOWorkers < 0 {
		return fmt.Errorf("%w: worker counts must not be negative", ErrInvalidConfig)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	if _, err := c.OutputFormat(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	for _, p := range []*string{&c.Source, &c.Destination, &c.Snapshot, &c.OutputFile, &c.ExcludeFile, &c.LogFile} {
		if *p == "" {
			continue
		}
		abs, err := utils.ResolvePath(*p)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		*p = abs
	}
	return nil
}
