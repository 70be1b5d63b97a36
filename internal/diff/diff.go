// Package diff reconciles two fingerprint sets into additions, removals and content mismatches.
package diff

import (
	"slices"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/openmined/dirdiff/internal/fingerprint"
)

// Result holds the three disjoint path sets of one comparison, each sorted ascending.
type Result struct {
	SourceOnlyPaths      []string `json:"sourceOnlyPaths" yaml:"sourceOnlyPaths" toml:"sourceOnlyPaths"`
	DestinationOnlyPaths []string `json:"destinationOnlyPaths" yaml:"destinationOnlyPaths" toml:"destinationOnlyPaths"`
	HashMismatchPaths    []string `json:"hashMismatchPaths" yaml:"hashMismatchPaths" toml:"hashMismatchPaths"`
}

// Compute compares source against destination. A path present with equal digests on both
// sides appears in no list. Directories are compared like files, so an ancestor of a changed
// entry is reported as a mismatch too.
func Compute(source, destination fingerprint.Set) *Result {
	src := keys(source)
	dst := keys(destination)

	mismatch := mapset.NewThreadUnsafeSet[string]()
	src.Intersect(dst).Each(func(p string) bool {
		if source[p] != destination[p] {
			mismatch.Add(p)
		}
		return false
	})

	return &Result{
		SourceOnlyPaths:      sorted(src.Difference(dst)),
		DestinationOnlyPaths: sorted(dst.Difference(src)),
		HashMismatchPaths:    sorted(mismatch),
	}
}

// Empty reports whether the trees matched.
func (r *Result) Empty() bool {
	return r.Total() == 0
}

// Total is the number of reported paths across all lists.
func (r *Result) Total() int {
	return len(r.SourceOnlyPaths) + len(r.DestinationOnlyPaths) + len(r.HashMismatchPaths)
}

// Normalize replaces nil lists with empty ones and sorts them, so decoded results compare
// equal to computed ones.
func (r *Result) Normalize() *Result {
	for _, list := range []*[]string{&r.SourceOnlyPaths, &r.DestinationOnlyPaths, &r.HashMismatchPaths} {
		if *list == nil {
			*list = []string{}
		}
		slices.Sort(*list)
	}
	return r
}

func keys(set fingerprint.Set) mapset.Set[string] {
	s := mapset.NewThreadUnsafeSetWithSize[string](len(set))
	for p := range set {
		s.Add(p)
	}
	return s
}

func sorted(s mapset.Set[string]) []string {
	out := s.ToSlice()
	slices.Sort(out)
	return out
}
