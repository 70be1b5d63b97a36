// Package fingerprint walks a directory tree and computes a digest for every file and directory.
//
// A directory's digest is the SHA-256 of its direct children's digests, fed in ascending order of
// the children's path strings. Changes therefore propagate up to every ancestor.
package fingerprint

import (
	"errors"

	"github.com/openmined/dirdiff/internal/digest"
)

var (
	// ErrInvalidInput is returned when a root path does not exist.
	ErrInvalidInput = errors.New("invalid input")
	// ErrIO is returned when an entry cannot be listed, stat'ed or fully read.
	ErrIO = errors.New("io failure")
	// ErrUnsupportedEntry is returned in strict mode for entries that are neither files nor directories.
	ErrUnsupportedEntry = errors.New("unsupported entry kind")
)

// Kind classifies a walked entry.
type Kind uint8

const (
	KindFile Kind = iota + 1
	KindDir
	// KindOther covers broken symlinks, sockets, devices and pipes.
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDir:
		return "dir"
	case KindOther:
		return "other"
	}
	return "unknown"
}

// Entry is the fingerprint of one filesystem entry.
type Entry struct {
	Path   string
	Digest digest.Digest
	Kind   Kind
	Size   int64
}
