package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/openmined/dirdiff/internal/diff"
	"github.com/openmined/dirdiff/internal/digest"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	dimStyle     = lipgloss.NewStyle().Faint(true)
)

func printScanSummary(w io.Writer, source string, entries int, root digest.Digest, output string) {
	fmt.Fprintln(w, headingStyle.Render("Fingerprinted "+source))
	fmt.Fprintf(w, "  entries  %s\n", humanize.Comma(int64(entries)))
	fmt.Fprintf(w, "  root     %s\n", root)
	fmt.Fprintf(w, "  written  %s\n", dimStyle.Render(output))
}

func printDiffSummary(w io.Writer, result *diff.Result, output string) {
	if result.Empty() {
		fmt.Fprintln(w, okStyle.Render("Trees are identical"))
	} else {
		fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf("%d differences", result.Total())))
	}
	fmt.Fprintf(w, "  source only       %d\n", len(result.SourceOnlyPaths))
	fmt.Fprintf(w, "  destination only  %d\n", len(result.DestinationOnlyPaths))
	fmt.Fprintf(w, "  hash mismatch     %d\n", len(result.HashMismatchPaths))
	fmt.Fprintf(w, "  written           %s\n", dimStyle.Render(output))
}
