package fingerprint

import (
	"context"
	"errors"
	"os"
	"path/filepath"
)

// CountFiles returns the number of non-directory entries below root, honoring the matcher.
// A missing root counts as zero. It is a cheap pre-scan used for progress reporting.
func (f *Fingerprinter) CountFiles(ctx context.Context, root string) (int64, error) {
	root, err := f.Resolve(root)
	if err != nil {
		return 0, err
	}
	info, err := f.fs.Stat(root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, err
	}
	if !info.IsDir() {
		return 1, nil
	}
	return f.countDir(ctx, root, root)
}

func (f *Fingerprinter) countDir(ctx context.Context, root, dir string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	infos, err := f.fs.ReadDir(dir)
	if err != nil {
		return 0, err
	}

	var n int64
	for _, info := range infos {
		child := f.fs.Join(dir, info.Name())
		if f.matcher != nil {
			if rel, err := filepath.Rel(root, child); err == nil && f.matcher.ShouldIgnore(rel, info.IsDir()) {
				continue
			}
		}
		if !info.IsDir() {
			n++
			continue
		}
		sub, err := f.countDir(ctx, root, child)
		if err != nil {
			return 0, err
		}
		n += sub
	}
	return n, nil
}
