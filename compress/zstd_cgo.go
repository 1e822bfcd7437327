//go:build cgo

package compress

import (
	"github.com/valyala/gozstd"
)

// Compress compresses the input data using native libzstd at level 3.
func (c ZstdCodec) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return gozstd.CompressLevel(nil, data, 3), nil
}

// Decompress decompresses a Zstandard frame using native libzstd.
func (c ZstdCodec) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return gozstd.Decompress(nil, data)
}
