package fingerprint

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"golang.org/x/sync/semaphore"
)

// Matcher decides whether a path below the root is left out of the walk.
// rel is relative to the root being fingerprinted.
type Matcher interface {
	ShouldIgnore(rel string, isDir bool) bool
}

// Option configures a Fingerprinter.
type Option func(*Fingerprinter)

// WithFilesystem sets the filesystem to walk. Paths are resolved on it as given.
func WithFilesystem(fs billy.Filesystem) Option {
	return func(f *Fingerprinter) {
		f.fs = fs
	}
}

// WithWorkers bounds how many directory entries are walked concurrently.
func WithWorkers(n int) Option {
	return func(f *Fingerprinter) {
		if n > 0 {
			f.workers = n
		}
	}
}

// WithIOWorkers bounds how many files are read concurrently.
func WithIOWorkers(n int) Option {
	return func(f *Fingerprinter) {
		if n > 0 {
			f.ioWorkers = n
		}
	}
}

func WithMatcher(m Matcher) Option {
	return func(f *Fingerprinter) {
		f.matcher = m
	}
}

// WithStrictKinds makes entries that are neither files nor directories fail the walk
// instead of being recorded with an empty digest.
func WithStrictKinds(strict bool) Option {
	return func(f *Fingerprinter) {
		f.strict = strict
	}
}

func WithObserver(o Observer) Option {
	return func(f *Fingerprinter) {
		if o != nil {
			f.observer = o
		}
	}
}

// Fingerprinter computes digests for every entry of a tree.
// A Fingerprinter holds no per-walk state and may be used for several walks at once.
type Fingerprinter struct {
	fs        billy.Filesystem
	workers   int
	ioWorkers int
	matcher   Matcher
	strict    bool
	observer  Observer
	// host is set when fs is the default OS filesystem rooted at the separator.
	host bool
}

func New(opts ...Option) *Fingerprinter {
	f := &Fingerprinter{
		workers:   runtime.NumCPU() * 4,
		ioWorkers: runtime.NumCPU(),
		observer:  nopObserver{},
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.fs == nil {
		f.fs = osfs.New(string(filepath.Separator))
		f.host = true
	}
	return f
}

// Resolve returns the clean form of root as walked. On the host filesystem a relative root is
// made absolute against the working directory; injected filesystems get it unchanged.
// Normalize must be given the resolved root so that entry paths are relative to it.
func (f *Fingerprinter) Resolve(root string) (string, error) {
	root = filepath.Clean(root)
	if !f.host || filepath.IsAbs(root) {
		return root, nil
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("%w: resolve %s: %w", ErrInvalidInput, root, err)
	}
	return abs, nil
}

// Filesystem returns the filesystem the Fingerprinter reads from.
func (f *Fingerprinter) Filesystem() billy.Filesystem {
	return f.fs
}

// Validate checks that root exists.
func (f *Fingerprinter) Validate(root string) error {
	resolved, err := f.Resolve(root)
	if err != nil {
		return err
	}
	if _, err := f.fs.Lstat(resolved); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: path %s does not exist", ErrInvalidInput, root)
		}
		return fmt.Errorf("%w: stat %s: %w", ErrIO, root, err)
	}
	return nil
}

// Fingerprint walks root and returns one entry per file and directory, with walk-time paths.
// Every directory's entry comes after the entries of all its descendants, so the last
// entry is the root's own. Paths start with Resolve(root). The first failure aborts the walk
// and is returned.
func (f *Fingerprinter) Fingerprint(ctx context.Context, root string) ([]Entry, error) {
	root, err := f.Resolve(root)
	if err != nil {
		return nil, err
	}
	if err := f.Validate(root); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	w := &walk{
		Fingerprinter: f,
		root:          root,
		cancel:        cancel,
		walkers:       semaphore.NewWeighted(int64(f.workers)),
		readers:       semaphore.NewWeighted(int64(f.ioWorkers)),
	}

	entries, err := w.node(ctx, root)
	if err != nil {
		if cause := context.Cause(ctx); cause != nil {
			return nil, cause
		}
		return nil, err
	}
	return entries, nil
}
