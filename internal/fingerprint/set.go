package fingerprint

import (
	"maps"
	"path/filepath"
	"slices"

	"github.com/openmined/dirdiff/internal/digest"
)

// SelfPath is the key under which a tree's root is stored in a Set.
const SelfPath = "/"

// Set maps root-relative paths to digests.
type Set map[string]digest.Digest

// Normalize rewrites walk-time paths relative to root. The entry for root itself is stored
// under SelfPath. If two entries map to the same relative path the later one wins; a
// well-formed tree never produces that.
func Normalize(entries []Entry, root string) Set {
	root = filepath.Clean(root)
	set := make(Set, len(entries))
	for _, e := range entries {
		set[relativeTo(root, e.Path)] = e.Digest
	}
	return set
}

func relativeTo(root, path string) string {
	path = filepath.Clean(path)
	if path == root {
		return SelfPath
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return rel
}

// Paths returns the keys of s in ascending order.
func (s Set) Paths() []string {
	return slices.Sorted(maps.Keys(s))
}

// Root returns the digest recorded for the tree's root.
func (s Set) Root() (digest.Digest, bool) {
	d, ok := s[SelfPath]
	return d, ok
}
