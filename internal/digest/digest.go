// Package digest computes SHA-256 content digests rendered as lowercase hex.
package digest

import (
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"sync"

	"github.com/go-git/go-billy/v5"
	"github.com/minio/sha256-simd"
)

// chunkSize is the read size used when streaming content into the hash.
const chunkSize = 32 * 1024

// Size is the length of a rendered digest in characters.
const Size = sha256.Size * 2

// Digest is the lowercase hex rendering of a SHA-256 sum.
// The zero value is the placeholder used for entries that carry no content signature.
type Digest string

func (d Digest) String() string {
	return string(d)
}

// IsZero reports whether d is the empty placeholder digest.
func (d Digest) IsZero() bool {
	return d == ""
}

var bufPool = sync.Pool{
	New: func() any {
		buf := make([]byte, chunkSize)
		return &buf
	},
}

// HashReader streams r through SHA-256 and returns the digest and the number of bytes read.
func HashReader(r io.Reader) (Digest, int64, error) {
	h := sha256.New()
	n, err := feed(h, r)
	if err != nil {
		return "", n, err
	}
	return render(h), n, nil
}

// HashBytes returns the digest of data.
func HashBytes(data []byte) Digest {
	sum := sha256.Sum256(data)
	return Digest(hex.EncodeToString(sum[:]))
}

// HashFile opens path on fs and returns its digest and size.
func HashFile(fs billy.Basic, path string) (Digest, int64, error) {
	f, err := fs.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	d, n, err := HashReader(f)
	if err != nil {
		return "", n, fmt.Errorf("read %s: %w", path, err)
	}
	return d, n, nil
}

// Valid reports whether s looks like a rendered digest.
func Valid(s string) bool {
	if len(s) != Size {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

func feed(h hash.Hash, r io.Reader) (int64, error) {
	bufp := bufPool.Get().(*[]byte)
	defer bufPool.Put(bufp)
	buf := *bufp

	var total int64
	for {
		n, err := r.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
			total += int64(n)
		}
		if errors.Is(err, io.EOF) {
			return total, nil
		}
		if err != nil {
			return total, err
		}
	}
}

func render(h hash.Hash) Digest {
	return Digest(hex.EncodeToString(h.Sum(nil)))
}
