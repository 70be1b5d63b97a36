package snapshot

import (
	"fmt"
	"unicode/utf8"

	"github.com/openmined/dirdiff/internal/diff"
	"github.com/openmined/dirdiff/internal/digest"
	"github.com/openmined/dirdiff/internal/fingerprint"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

func marshal(format Format, v any) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	switch format {
	case FormatJSON:
		data, err = jsonMarshal(v)
	case FormatYAML:
		data, err = yaml.Marshal(v)
	case FormatTOML:
		data, err = toml.Marshal(v)
	default:
		return nil, fmt.Errorf("%w: %s is not a text format", ErrUnknownFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", format, err)
	}
	if n := len(data); n > 0 && data[n-1] != '\n' {
		data = append(data, '\n')
	}
	return data, nil
}

func unmarshal(format Format, data []byte, v any) error {
	var err error
	switch format {
	case FormatJSON:
		err = jsonUnmarshal(data, v)
	case FormatYAML:
		err = yaml.Unmarshal(data, v)
	case FormatTOML:
		err = toml.Unmarshal(data, v)
	default:
		return fmt.Errorf("%w: %s is not a text format", ErrUnknownFormat, format)
	}
	if err != nil {
		return fmt.Errorf("decode %s: %w", format, err)
	}
	return nil
}

// document is the serialised form of a fingerprint.Set.
type document map[string]string

func toDocument(set fingerprint.Set) document {
	doc := make(document, len(set))
	for p, d := range set {
		doc[p] = string(d)
	}
	return doc
}

func fromDocument(doc document) (fingerprint.Set, error) {
	set := make(fingerprint.Set, len(doc))
	for p, d := range doc {
		if p == "" {
			return nil, fmt.Errorf("%w: empty path", ErrCorrupt)
		}
		if d != "" && !digest.Valid(d) {
			return nil, fmt.Errorf("%w: %s has invalid digest %q", ErrCorrupt, p, d)
		}
		set[p] = digest.Digest(d)
	}
	return set, nil
}

func validateDiff(r *diff.Result) error {
	for _, list := range [][]string{r.SourceOnlyPaths, r.DestinationOnlyPaths, r.HashMismatchPaths} {
		for _, p := range list {
			if p == "" {
				return fmt.Errorf("%w: empty path", ErrCorrupt)
			}
		}
	}
	return nil
}

// checkPaths rejects paths that format would rewrite on encode.
func checkPaths(format Format, paths ...[]string) error {
	if format.rawBytes() {
		return nil
	}
	for _, list := range paths {
		for _, p := range list {
			if !utf8.ValidString(p) {
				return fmt.Errorf("%w as %s: %q is not valid UTF-8", ErrUnencodablePath, format, p)
			}
		}
	}
	return nil
}
