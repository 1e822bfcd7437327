//go:build !cgo

package compress

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// zstdDecoderPool pools zstd decoders for reuse. The klauspost decoder is
// designed to operate without allocations after warmup, so pooling removes
// per-batch allocation overhead.
var zstdDecoderPool = sync.Pool{
	New: func() any {
		decoder, err := zstd.NewReader(nil,
			zstd.WithDecoderConcurrency(1),
			zstd.WithDecoderLowmem(false),
		)
		if err != nil {
			panic(fmt.Sprintf("failed to create zstd decoder for pool: %v", err))
		}

		return decoder
	},
}

// zstdEncoderPool pools zstd encoders for reuse.
var zstdEncoderPool = sync.Pool{
	New: func() any {
		encoder, err := zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.SpeedDefault),
			zstd.WithEncoderCRC(false),
		)
		if err != nil {
			panic(fmt.Sprintf("failed to create zstd encoder for pool: %v", err))
		}

		return encoder
	},
}

// Compress compresses the input data using the pure-Go Zstandard encoder.
func (c ZstdCodec) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	encoder := zstdEncoderPool.Get().(*zstd.Encoder)
	defer zstdEncoderPool.Put(encoder)

	// EncodeAll is stateless, so the pooled encoder can be shared freely.
	return encoder.EncodeAll(data, nil), nil
}

// Decompress decompresses a Zstandard frame using the pure-Go decoder.
func (c ZstdCodec) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	decoder := zstdDecoderPool.Get().(*zstd.Decoder)
	defer zstdDecoderPool.Put(decoder)

	decompressed, err := decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decompression failed: %w", err)
	}

	return decompressed, nil
}
