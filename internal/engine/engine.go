// Package engine ties fingerprinting, normalization and diffing into the operations the
// dirdiff command runs.
package engine

import (
	"context"
	"fmt"

	"github.com/openmined/dirdiff/internal/diff"
	"github.com/openmined/dirdiff/internal/fingerprint"
	"golang.org/x/sync/errgroup"
)

// ErrInvalidInput is returned when a root does not exist. Nothing is hashed in that case.
var ErrInvalidInput = fingerprint.ErrInvalidInput

// FingerprintTree walks root and returns its entries keyed by path relative to root,
// with the root itself under fingerprint.SelfPath. A relative root on the host filesystem
// is taken relative to the working directory.
func FingerprintTree(ctx context.Context, root string, opts ...fingerprint.Option) (fingerprint.Set, error) {
	return fingerprintTree(ctx, fingerprint.New(opts...), root)
}

// DiffTrees fingerprints both trees concurrently and compares them. Both roots are checked
// before any file is read.
func DiffTrees(ctx context.Context, sourceRoot, destinationRoot string, opts ...fingerprint.Option) (*diff.Result, error) {
	fp := fingerprint.New(opts...)
	if err := fp.Validate(sourceRoot); err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}
	if err := fp.Validate(destinationRoot); err != nil {
		return nil, fmt.Errorf("destination: %w", err)
	}

	var source, destination fingerprint.Set
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		set, err := fingerprintTree(gctx, fp, sourceRoot)
		if err != nil {
			return fmt.Errorf("source: %w", err)
		}
		source = set
		return nil
	})
	g.Go(func() error {
		set, err := fingerprintTree(gctx, fp, destinationRoot)
		if err != nil {
			return fmt.Errorf("destination: %w", err)
		}
		destination = set
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return diff.Compute(source, destination), nil
}

// DiffSnapshot compares a previously saved snapshot, taken as the source side, against the
// live tree at root.
func DiffSnapshot(ctx context.Context, snapshot fingerprint.Set, root string, opts ...fingerprint.Option) (*diff.Result, error) {
	live, err := FingerprintTree(ctx, root, opts...)
	if err != nil {
		return nil, err
	}
	return diff.Compute(snapshot, live), nil
}

func fingerprintTree(ctx context.Context, fp *fingerprint.Fingerprinter, root string) (fingerprint.Set, error) {
	root, err := fp.Resolve(root)
	if err != nil {
		return nil, err
	}
	entries, err := fp.Fingerprint(ctx, root)
	if err != nil {
		return nil, err
	}
	return fingerprint.Normalize(entries, root), nil
}
