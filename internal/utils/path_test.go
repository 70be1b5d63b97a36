package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePath(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantError bool
	}{
		{name: "empty path", input: "", wantError: true},
		{name: "relative path", input: "./test", wantError: false},
		{name: "absolute path", input: "/tmp/test/../test", wantError: false},
		{name: "home path", input: "~/snapshots", wantError: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ResolvePath(tt.input)
			if tt.wantError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, filepath.IsAbs(result))
			assert.Equal(t, filepath.Clean(result), result)
		})
	}
}

func TestEnsureAndExists(t *testing.T) {
	tmp := t.TempDir()
	file := filepath.Join(tmp, "a", "b", "out.json")

	require.NoError(t, EnsureParent(file))
	assert.True(t, DirExists(filepath.Join(tmp, "a", "b")))
	assert.False(t, FileExists(file))

	require.NoError(t, os.WriteFile(file, []byte("{}"), 0o644))
	assert.True(t, FileExists(file))
	assert.False(t, DirExists(file))
	assert.False(t, FileExists(filepath.Join(tmp, "a")))

	// idempotent
	require.NoError(t, EnsureDir(filepath.Join(tmp, "a")))
	assert.Error(t, EnsureDir(file))
}
