package compress

import (
	"errors"
	"sync"

	"github.com/pierrec/lz4/v4"
)

// lz4CompressorPool pools lz4.Compressor instances; the compressor keeps
// internal hash-table state that benefits from reuse across batches.
var lz4CompressorPool = sync.Pool{
	New: func() any {
		return &lz4.Compressor{}
	},
}

// LZ4Codec compresses batch payloads with LZ4 block compression. It is the
// fastest real codec and a good fit for runs that keep every batch on disk.
type LZ4Codec struct{}

var _ Codec = (*LZ4Codec)(nil)

// NewLZ4Codec creates a new LZ4 codec.
func NewLZ4Codec() LZ4Codec {
	return LZ4Codec{}
}

// Compress compresses the input data as a single LZ4 block.
func (c LZ4Codec) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	dst := make([]byte, lz4.CompressBlockBound(len(data)))

	lc, _ := lz4CompressorPool.Get().(*lz4.Compressor)
	defer lz4CompressorPool.Put(lc)

	n, err := lc.CompressBlock(data, dst)
	if err != nil {
		return nil, err
	}

	return dst[:n], nil
}

// Decompress decompresses a single LZ4 block.
//
// The decompressed size is not stored in the block, so the buffer starts at
// 4x the compressed size and doubles on lz4.ErrInvalidSourceShortBuffer up to
// a 128MB ceiling. Batches larger than that indicate corruption.
func (c LZ4Codec) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	bufSize := len(data) * 4
	const maxSize = 128 * 1024 * 1024

	for bufSize <= maxSize {
		buf := make([]byte, bufSize)
		n, err := lz4.UncompressBlock(data, buf)
		if err != nil {
			if errors.Is(err, lz4.ErrInvalidSourceShortBuffer) && bufSize < maxSize {
				bufSize *= 2
				continue
			}

			return nil, err
		}

		return buf[:n], nil
	}

	return nil, lz4.ErrInvalidSourceShortBuffer
}
