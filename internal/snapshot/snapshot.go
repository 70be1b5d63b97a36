package snapshot

import (
	"fmt"
	"os"
	"slices"

	"github.com/openmined/dirdiff/internal/diff"
	"github.com/openmined/dirdiff/internal/fingerprint"
	"github.com/openmined/dirdiff/internal/utils"
)

// WriteSet stores set at path in the format implied by its extension.
func WriteSet(path string, set fingerprint.Set) error {
	return WriteSetAs(path, FormatFromPath(path), set)
}

func WriteSetAs(path string, format Format, set fingerprint.Set) error {
	if err := checkPaths(format, set.Paths()); err != nil {
		return err
	}
	if format == FormatSQLite {
		return writeSetSQLite(path, set)
	}
	data, err := marshal(format, toDocument(set))
	if err != nil {
		return err
	}
	return utils.WriteBytesAtomic(path, data)
}

// ReadSet loads a snapshot written by WriteSet.
func ReadSet(path string) (fingerprint.Set, error) {
	return ReadSetAs(path, FormatFromPath(path))
}

func ReadSetAs(path string, format Format) (fingerprint.Set, error) {
	if format == FormatSQLite {
		return readSetSQLite(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var doc document
	if err := unmarshal(format, data, &doc); err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", path, err)
	}
	return fromDocument(doc)
}

// WriteDiff stores a comparison result at path in the format implied by its extension.
func WriteDiff(path string, result *diff.Result) error {
	return WriteDiffAs(path, FormatFromPath(path), result)
}

func WriteDiffAs(path string, format Format, result *diff.Result) error {
	normalized := &diff.Result{
		SourceOnlyPaths:      slices.Clone(result.SourceOnlyPaths),
		DestinationOnlyPaths: slices.Clone(result.DestinationOnlyPaths),
		HashMismatchPaths:    slices.Clone(result.HashMismatchPaths),
	}
	normalized.Normalize()

	if err := checkPaths(format, normalized.SourceOnlyPaths, normalized.DestinationOnlyPaths, normalized.HashMismatchPaths); err != nil {
		return err
	}
	if format == FormatSQLite {
		return writeDiffSQLite(path, normalized)
	}
	data, err := marshal(format, normalized)
	if err != nil {
		return err
	}
	return utils.WriteBytesAtomic(path, data)
}

// ReadDiff loads a result written by WriteDiff.
func ReadDiff(path string) (*diff.Result, error) {
	return ReadDiffAs(path, FormatFromPath(path))
}

func ReadDiffAs(path string, format Format) (*diff.Result, error) {
	if format == FormatSQLite {
		return readDiffSQLite(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read diff: %w", err)
	}

	var result diff.Result
	if err := unmarshal(format, data, &result); err != nil {
		return nil, fmt.Errorf("diff %s: %w", path, err)
	}
	if err := validateDiff(&result); err != nil {
		return nil, err
	}
	return result.Normalize(), nil
}
