// Package snapshot persists fingerprint sets and diff results.
//
// Writes are all-or-nothing: a document is fully encoded into a temp file next to the target
// and renamed into place, so a failed run never leaves a partial snapshot behind.
package snapshot

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var (
	ErrUnknownFormat = errors.New("unknown snapshot format")
	// ErrCorrupt is returned when a document decodes but holds values that are not digests.
	ErrCorrupt = errors.New("corrupt snapshot")
	// ErrUnencodablePath is returned when a path cannot be stored losslessly in the chosen
	// format. JSON and TOML strings must be valid UTF-8; YAML and SQLite keep raw bytes.
	ErrUnencodablePath = errors.New("path cannot be encoded")
)

// Format selects the on-disk encoding.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
	FormatTOML
	FormatSQLite
)

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	case FormatTOML:
		return "toml"
	case FormatSQLite:
		return "sqlite"
	}
	return fmt.Sprintf("format(%d)", int(f))
}

// rawBytes reports whether f stores path bytes verbatim.
func (f Format) rawBytes() bool {
	return f == FormatYAML || f == FormatSQLite
}

// FormatFromPath picks a format from the file extension. Anything unrecognised, including the
// traditional .hash and .diff outputs, is JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".toml":
		return FormatTOML
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite
	default:
		return FormatJSON
	}
}

// ParseFormat resolves a format name. An empty name means "from the path".
func ParseFormat(name, path string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "":
		return FormatFromPath(path), nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	case "sqlite", "db":
		return FormatSQLite, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}
