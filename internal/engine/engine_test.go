package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/openmined/dirdiff/internal/diff"
	"github.com/openmined/dirdiff/internal/fingerprint"
	"github.com/openmined/dirdiff/internal/ignore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, fs billy.Filesystem, root string, files map[string]string) {
	t.Helper()
	require.NoError(t, fs.MkdirAll(root, 0o755))
	for name, content := range files {
		path := fs.Join(root, name)
		require.NoError(t, fs.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, util.WriteFile(fs, path, []byte(content), 0o644))
	}
}

func TestDiffTrees_Scenarios(t *testing.T) {
	tests := []struct {
		name        string
		source      map[string]string
		destination map[string]string
		want        *diff.Result
	}{
		{
			name:        "missing file in destination",
			source:      map[string]string{"a.txt": "x", "b.txt": "y"},
			destination: map[string]string{"a.txt": "x"},
			want: &diff.Result{
				SourceOnlyPaths:      []string{"b.txt"},
				DestinationOnlyPaths: []string{},
				HashMismatchPaths:    []string{"/"},
			},
		},
		{
			name:        "changed content",
			source:      map[string]string{"c.txt": "1"},
			destination: map[string]string{"c.txt": "2"},
			want: &diff.Result{
				SourceOnlyPaths:      []string{},
				DestinationOnlyPaths: []string{},
				HashMismatchPaths:    []string{"/", "c.txt"},
			},
		},
		{
			name:        "empty directories",
			source:      map[string]string{},
			destination: map[string]string{},
			want: &diff.Result{
				SourceOnlyPaths:      []string{},
				DestinationOnlyPaths: []string{},
				HashMismatchPaths:    []string{},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := memfs.New()
			writeTree(t, fs, "/src", tt.source)
			writeTree(t, fs, "/dst", tt.destination)

			got, err := DiffTrees(context.Background(), "/src", "/dst", fingerprint.WithFilesystem(fs))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDiffTrees_IdenticalTrees(t *testing.T) {
	files := map[string]string{
		"a.txt":         "x",
		".hidden":       "h",
		"docs/readme":   "hello",
		"docs/sub/deep": "deep",
	}
	fs := memfs.New()
	writeTree(t, fs, "/left", files)
	writeTree(t, fs, "/right/nested/copy", files)

	got, err := DiffTrees(context.Background(), "/left", "/right/nested/copy", fingerprint.WithFilesystem(fs))
	require.NoError(t, err)
	assert.True(t, got.Empty())
}

func TestDiffTrees_ExtraFileMarksAncestors(t *testing.T) {
	files := map[string]string{
		"top.txt":       "t",
		"a/one.txt":     "1",
		"a/b/two.txt":   "2",
		"other/three":   "3",
		"other/sub/two": "2",
	}
	fs := memfs.New()
	writeTree(t, fs, "/src", files)
	writeTree(t, fs, "/dst", files)
	require.NoError(t, util.WriteFile(fs, "/dst/a/b/extra.txt", []byte("extra"), 0o644))

	got, err := DiffTrees(context.Background(), "/src", "/dst", fingerprint.WithFilesystem(fs))
	require.NoError(t, err)

	assert.Empty(t, got.SourceOnlyPaths)
	assert.Equal(t, []string{"a/b/extra.txt"}, got.DestinationOnlyPaths)
	assert.Equal(t, []string{"/", "a", "a/b"}, got.HashMismatchPaths)
}

func TestDiffTrees_InvalidInput(t *testing.T) {
	fs := memfs.New()
	writeTree(t, fs, "/src", map[string]string{"a.txt": "x"})

	var hashed int
	observer := fingerprint.ObserverFunc(func(fingerprint.Event) { hashed++ })

	_, err := DiffTrees(context.Background(), "/src", "/missing",
		fingerprint.WithFilesystem(fs), fingerprint.WithObserver(observer))
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), "destination")
	assert.Zero(t, hashed)

	_, err = DiffTrees(context.Background(), "/missing", "/src", fingerprint.WithFilesystem(fs))
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), "source")
}

func TestFingerprintTree_Idempotent(t *testing.T) {
	files := map[string]string{}
	for i := range 40 {
		files[fmt.Sprintf("d%d/f%d.txt", i%5, i)] = fmt.Sprintf("content %d", i)
	}
	fs := memfs.New()
	writeTree(t, fs, "/tree", files)

	first, err := FingerprintTree(context.Background(), "/tree", fingerprint.WithFilesystem(fs), fingerprint.WithWorkers(1))
	require.NoError(t, err)
	second, err := FingerprintTree(context.Background(), "/tree", fingerprint.WithFilesystem(fs), fingerprint.WithWorkers(32))
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first, 40+5+1)
	assert.True(t, diff.Compute(first, second).Empty())
}

func TestFingerprintTree_InvalidInput(t *testing.T) {
	_, err := FingerprintTree(context.Background(), "/nope", fingerprint.WithFilesystem(memfs.New()))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestFingerprintTree_Matcher(t *testing.T) {
	fs := memfs.New()
	writeTree(t, fs, "/src", map[string]string{"keep.txt": "k", "build/out.o": "o", "x.log": "l"})
	writeTree(t, fs, "/dst", map[string]string{"keep.txt": "k"})

	got, err := DiffTrees(context.Background(), "/src", "/dst",
		fingerprint.WithFilesystem(fs),
		fingerprint.WithMatcher(ignore.New("build/", "*.log")))
	require.NoError(t, err)
	assert.True(t, got.Empty())
}

func TestDiffSnapshot(t *testing.T) {
	fs := memfs.New()
	writeTree(t, fs, "/tree", map[string]string{"a.txt": "x", "b.txt": "y"})

	snapshot, err := FingerprintTree(context.Background(), "/tree", fingerprint.WithFilesystem(fs))
	require.NoError(t, err)

	got, err := DiffSnapshot(context.Background(), snapshot, "/tree", fingerprint.WithFilesystem(fs))
	require.NoError(t, err)
	assert.True(t, got.Empty())

	require.NoError(t, fs.Remove("/tree/b.txt"))
	require.NoError(t, util.WriteFile(fs, "/tree/c.txt", []byte("z"), 0o644))

	got, err = DiffSnapshot(context.Background(), snapshot, "/tree", fingerprint.WithFilesystem(fs))
	require.NoError(t, err)
	assert.Equal(t, []string{"b.txt"}, got.SourceOnlyPaths)
	assert.Equal(t, []string{"c.txt"}, got.DestinationOnlyPaths)
	assert.Equal(t, []string{"/"}, got.HashMismatchPaths)
}

func TestDiffTrees_Canceled(t *testing.T) {
	fs := memfs.New()
	writeTree(t, fs, "/src", map[string]string{"a.txt": "x"})
	writeTree(t, fs, "/dst", map[string]string{"a.txt": "x"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := DiffTrees(ctx, "/src", "/dst", fingerprint.WithFilesystem(fs))
	assert.ErrorIs(t, err, context.Canceled)
}

// chdir switches the working directory for the rest of the test.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		require.NoError(t, os.Chdir(wd))
	})
}

func TestRelativeRootsOnHostFilesystem(t *testing.T) {
	work := t.TempDir()
	for _, dir := range []string{"tree", "copy"} {
		require.NoError(t, os.MkdirAll(filepath.Join(work, dir, "sub"), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(work, dir, "a.txt"), []byte("x"), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(work, dir, "sub", "b.txt"), []byte("y"), 0o644))
	}
	chdir(t, work)

	set, err := FingerprintTree(context.Background(), "tree")
	require.NoError(t, err)
	assert.Equal(t, []string{"/", "a.txt", "sub", "sub/b.txt"}, set.Paths())

	again, err := FingerprintTree(context.Background(), "./tree/../tree")
	require.NoError(t, err)
	assert.Equal(t, set, again)

	abs, err := FingerprintTree(context.Background(), filepath.Join(work, "tree"))
	require.NoError(t, err)
	assert.Equal(t, set, abs)

	result, err := DiffTrees(context.Background(), "tree", filepath.Join(work, "copy"))
	require.NoError(t, err)
	assert.True(t, result.Empty())

	_, err = FingerprintTree(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrInvalidInput)
}
