package digest

import (
	"hash"
	"io"

	"github.com/minio/sha256-simd"
)

// Accumulator combines child digests into a directory digest.
// Digests are fed as their hex text, in the order Add is called.
type Accumulator struct {
	h     hash.Hash
	count int
}

func NewAccumulator() *Accumulator {
	return &Accumulator{h: sha256.New()}
}

// Add feeds one child digest. The empty placeholder contributes no bytes.
func (a *Accumulator) Add(d Digest) {
	io.WriteString(a.h, string(d))
	a.count++
}

// Count returns how many digests were added.
func (a *Accumulator) Count() int {
	return a.count
}

// Sum returns the combined digest. With nothing added it is the digest of an empty stream.
func (a *Accumulator) Sum() Digest {
	return render(a.h)
}
