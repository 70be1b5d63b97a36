package main

import (
	"fmt"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/dustin/go-humanize"
	"github.com/openmined/dirdiff/internal/diff"
	"github.com/openmined/dirdiff/internal/snapshot"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newShowCmd())
}

func newShowCmd() *cobra.Command {
	var (
		match string
		short bool
	)

	cmd := &cobra.Command{
		Use:   "show FILE",
		Short: "Print a saved fingerprint or comparison file as a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if match != "" && !doublestar.ValidatePattern(match) {
				return fmt.Errorf("invalid --match pattern %q", match)
			}

			path := args[0]
			headers, rows, err := snapshotRows(path, match, short)
			if err != nil {
				return err
			}

			footer := humanize.Comma(int64(len(rows))) + " entries"
			fmt.Fprintln(cmd.OutOrStdout(), headingStyle.Render(filepath.Base(path)))
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows, footer))
			return nil
		},
	}

	cmd.Flags().StringVarP(&match, "match", "m", "", "only show paths matching this glob (e.g. 'src/**/*.go')")
	cmd.Flags().BoolVar(&short, "short", false, "abbreviate digests to 12 characters")
	return cmd
}

// snapshotRows loads path as a fingerprint set, or as a comparison result if that fails.
func snapshotRows(path, match string, short bool) ([]string, [][]string, error) {
	set, setErr := snapshot.ReadSet(path)
	if setErr == nil {
		var rows [][]string
		for _, p := range set.Paths() {
			if !matches(match, p) {
				continue
			}
			d := set[p].String()
			if short && len(d) > 12 {
				d = d[:12]
			}
			if d == "" {
				d = "-"
			}
			rows = append(rows, []string{p, d})
		}
		return []string{"Path", "Digest"}, rows, nil
	}

	result, err := snapshot.ReadDiff(path)
	if err != nil {
		return nil, nil, setErr
	}
	return []string{"Difference", "Path"}, diffRows(result, match), nil
}

func diffRows(result *diff.Result, match string) [][]string {
	var rows [][]string
	add := func(category string, paths []string) {
		for _, p := range paths {
			if matches(match, p) {
				rows = append(rows, []string{category, p})
			}
		}
	}
	add("source only", result.SourceOnlyPaths)
	add("destination only", result.DestinationOnlyPaths)
	add("hash mismatch", result.HashMismatchPaths)
	return rows
}

func matches(pattern, path string) bool {
	if pattern == "" {
		return true
	}
	ok, _ := doublestar.Match(pattern, filepath.ToSlash(path))
	return ok
}
