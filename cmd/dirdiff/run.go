package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/openmined/dirdiff/internal/config"
	"github.com/openmined/dirdiff/internal/diff"
	"github.com/openmined/dirdiff/internal/engine"
	"github.com/openmined/dirdiff/internal/fingerprint"
	"github.com/openmined/dirdiff/internal/ignore"
	"github.com/openmined/dirdiff/internal/snapshot"
	"github.com/openmined/dirdiff/internal/utils"
	"github.com/openmined/dirdiff/internal/version"
)

// treeStats dispatches walk events to a per-root counter, keyed by the root as the walker
// resolves it.
type treeStats struct {
	resolver *fingerprint.Fingerprinter
	byRoot   map[string]*fingerprint.Stats
}

func newTreeStats(roots ...string) *treeStats {
	s := &treeStats{resolver: fingerprint.New(), byRoot: make(map[string]*fingerprint.Stats, len(roots))}
	for _, r := range roots {
		if key, err := s.resolver.Resolve(r); err == nil {
			s.byRoot[key] = &fingerprint.Stats{}
		}
	}
	return s
}

func (s *treeStats) lookup(root string) (*fingerprint.Stats, bool) {
	key, err := s.resolver.Resolve(root)
	if err != nil {
		return nil, false
	}
	st, ok := s.byRoot[key]
	return st, ok
}

// Observe is safe for concurrent use: the map is never written after construction.
func (s *treeStats) Observe(e fingerprint.Event) {
	if st, ok := s.byRoot[e.Root]; ok {
		st.Observe(e)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, stdout io.Writer) error {
	format, err := cfg.OutputFormat()
	if err != nil {
		return err
	}

	matcher, err := loadMatcher(cfg)
	if err != nil {
		return err
	}

	roots := []string{cfg.Source}
	if cfg.Mode() == config.ModeCompare {
		roots = append(roots, cfg.Destination)
	}
	stats := newTreeStats(roots...)

	opts := []fingerprint.Option{
		fingerprint.WithWorkers(cfg.Workers),
		fingerprint.WithIOWorkers(cfg.IOWorkers),
		fingerprint.WithStrictKinds(cfg.Strict),
		fingerprint.WithObserver(fingerprint.Observers(fingerprint.NewSlogObserver(logger), stats)),
	}
	if matcher != nil {
		opts = append(opts, fingerprint.WithMatcher(matcher))
	}

	counter := fingerprint.New(opts...)
	for _, root := range roots {
		countFiles(ctx, logger, counter, root)
	}

	output := cfg.Output()
	logger.Info("starting", "version", version.Short(), "mode", cfg.Mode(), "source", cfg.Source, "output", output, "format", format)
	start := time.Now()

	switch cfg.Mode() {
	case config.ModeScan:
		set, err := engine.FingerprintTree(ctx, cfg.Source, opts...)
		if err != nil {
			return err
		}
		logStats(logger, stats, cfg.Source, time.Since(start))

		if err := snapshot.WriteSetAs(output, format, set); err != nil {
			return fmt.Errorf("write snapshot: %w", err)
		}
		root, _ := set.Root()
		printScanSummary(stdout, cfg.Source, len(set), root, output)

	case config.ModeCompare:
		result, err := engine.DiffTrees(ctx, cfg.Source, cfg.Destination, opts...)
		if err != nil {
			return err
		}
		logStats(logger, stats, cfg.Source, time.Since(start))
		logStats(logger, stats, cfg.Destination, time.Since(start))
		return finishCompare(logger, stdout, result, output, format)

	case config.ModeSnapshot:
		saved, err := snapshot.ReadSet(cfg.Snapshot)
		if err != nil {
			return fmt.Errorf("read snapshot: %w", err)
		}
		logger.Info("snapshot loaded", "path", cfg.Snapshot, "entries", len(saved))

		result, err := engine.DiffSnapshot(ctx, saved, cfg.Source, opts...)
		if err != nil {
			return err
		}
		logStats(logger, stats, cfg.Source, time.Since(start))
		return finishCompare(logger, stdout, result, output, format)
	}
	return nil
}

func finishCompare(logger *slog.Logger, stdout io.Writer, result *diff.Result, output string, format snapshot.Format) error {
	logPaths(logger, "source only", result.SourceOnlyPaths)
	logPaths(logger, "destination only", result.DestinationOnlyPaths)
	logPaths(logger, "hash mismatch", result.HashMismatchPaths)

	if err := snapshot.WriteDiffAs(output, format, result); err != nil {
		return fmt.Errorf("write comparison result: %w", err)
	}
	printDiffSummary(stdout, result, output)
	return nil
}

// loadMatcher combines --exclude patterns with the exclude file. Without an explicit
// --exclude-file, a .dirdiffignore in the source root is used when present.
func loadMatcher(cfg *config.Config) (fingerprint.Matcher, error) {
	path := cfg.ExcludeFile
	if path == "" {
		if candidate := filepath.Join(cfg.Source, config.DefaultIgnoreFile); utils.FileExists(candidate) {
			path = candidate
		}
	}

	if path != "" {
		list, err := ignore.Load(path, cfg.Exclude...)
		if err != nil {
			return nil, err
		}
		return list, nil
	}
	if len(cfg.Exclude) > 0 {
		return ignore.New(cfg.Exclude...), nil
	}
	return nil, nil
}

func countFiles(ctx context.Context, logger *slog.Logger, fp *fingerprint.Fingerprinter, root string) {
	start := time.Now()
	n, err := fp.CountFiles(ctx, root)
	if err != nil {
		logger.Warn("file count failed", "root", root, "error", err)
		return
	}
	logger.Info("files to fingerprint", "root", root, "count", humanize.Comma(n), "took", time.Since(start).Round(time.Millisecond))
}

func logStats(logger *slog.Logger, stats *treeStats, root string, took time.Duration) {
	st, ok := stats.lookup(root)
	if !ok {
		return
	}
	s := st.Snapshot()
	logger.Info("fingerprinted",
		"root", root,
		"entries", humanize.Comma(s.Total()),
		"dirs", humanize.Comma(s.Dirs),
		"files", humanize.Comma(s.Files),
		"unsupported", s.Unsupported,
		"skipped", s.Skipped,
		"bytes", humanize.Bytes(uint64(s.Bytes)),
		"took", took.Round(time.Millisecond),
	)
}

func logPaths(logger *slog.Logger, category string, paths []string) {
	for _, p := range paths {
		logger.Info(category, "path", p)
	}
}
