package fingerprint

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/openmined/dirdiff/internal/digest"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// walk is the state of one Fingerprint call.
//
// walkers bounds goroutines fanned out for directory entries. A child that cannot get a slot is
// walked inline by its parent, so a parent never blocks on a slot its descendants need.
// readers bounds concurrent file reads; its holders never wait on anything else.
type walk struct {
	*Fingerprinter
	root    string
	cancel  context.CancelCauseFunc
	walkers *semaphore.Weighted
	readers *semaphore.Weighted
}

// fail records err as the cause of the walk's cancellation so that siblings stop early.
func (w *walk) fail(err error) error {
	w.cancel(err)
	return err
}

func (w *walk) node(ctx context.Context, path string) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := w.fs.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if linfo, lerr := w.fs.Lstat(path); lerr == nil && linfo.Mode()&os.ModeSymlink != 0 {
				return w.other(path, linfo)
			}
		}
		return nil, w.fail(fmt.Errorf("%w: stat %s: %w", ErrIO, path, err))
	}

	switch {
	case info.IsDir():
		return w.dir(ctx, path)
	case info.Mode().IsRegular():
		return w.file(ctx, path)
	default:
		return w.other(path, info)
	}
}

func (w *walk) file(ctx context.Context, path string) ([]Entry, error) {
	if err := w.readers.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer w.readers.Release(1)

	// Acquire may win a free slot after cancellation.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d, size, err := digest.HashFile(w.fs, path)
	if err != nil {
		return nil, w.fail(fmt.Errorf("%w: %s: %w", ErrIO, path, err))
	}

	w.observer.Observe(Event{Type: EventFileHashed, Root: w.root, Path: path, Digest: d, Size: size})
	return []Entry{{Path: path, Digest: d, Kind: KindFile, Size: size}}, nil
}

func (w *walk) other(path string, info os.FileInfo) ([]Entry, error) {
	if w.strict {
		return nil, w.fail(fmt.Errorf("%w: %s (%s)", ErrUnsupportedEntry, path, info.Mode().Type()))
	}
	w.observer.Observe(Event{Type: EventUnsupported, Root: w.root, Path: path})
	return []Entry{{Path: path, Kind: KindOther}}, nil
}

func (w *walk) dir(ctx context.Context, path string) ([]Entry, error) {
	infos, err := w.fs.ReadDir(path)
	if err != nil {
		return nil, w.fail(fmt.Errorf("%w: read dir %s: %w", ErrIO, path, err))
	}

	children := make([]string, 0, len(infos))
	for _, info := range infos {
		child := w.fs.Join(path, info.Name())
		if w.excluded(child, info.IsDir()) {
			w.observer.Observe(Event{Type: EventSkipped, Root: w.root, Path: child})
			continue
		}
		children = append(children, child)
	}

	results := make([][]Entry, len(children))
	g, gctx := errgroup.WithContext(ctx)
	for i, child := range children {
		if w.walkers.TryAcquire(1) {
			g.Go(func() error {
				defer w.walkers.Release(1)
				entries, err := w.node(gctx, child)
				results[i] = entries
				return err
			})
			continue
		}

		entries, err := w.node(gctx, child)
		if err != nil {
			_ = g.Wait()
			return nil, err
		}
		results[i] = entries
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Each child's own entry is the last one of its result.
	direct := make([]Entry, 0, len(results))
	total := 1
	for _, r := range results {
		direct = append(direct, r[len(r)-1])
		total += len(r)
	}
	slices.SortFunc(direct, func(a, b Entry) int {
		return strings.Compare(a.Path, b.Path)
	})

	acc := digest.NewAccumulator()
	for _, e := range direct {
		acc.Add(e.Digest)
	}
	self := Entry{Path: path, Digest: acc.Sum(), Kind: KindDir}

	out := make([]Entry, 0, total)
	for _, r := range results {
		out = append(out, r...)
	}
	out = append(out, self)

	w.observer.Observe(Event{Type: EventDirHashed, Root: w.root, Path: path, Digest: self.Digest, Children: acc.Count()})
	return out, nil
}

func (w *walk) excluded(path string, isDir bool) bool {
	if w.matcher == nil {
		return false
	}
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return false
	}
	return w.matcher.ShouldIgnore(rel, isDir)
}
