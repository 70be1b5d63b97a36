//go:build sonic

package snapshot

import (
	"github.com/bytedance/sonic"
)

// ConfigStd sorts map keys, keeping output identical to the default build.
func jsonMarshal(v any) ([]byte, error) {
	return sonic.ConfigStd.MarshalIndent(v, "", "  ")
}

func jsonUnmarshal(data []byte, v any) error {
	return sonic.ConfigStd.Unmarshal(data, v)
}
