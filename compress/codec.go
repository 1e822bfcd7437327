package compress

import (
	"fmt"

	"github.com/achrlab/polyrun/format"
)

// Compressor compresses a complete batch payload.
type Compressor interface {
	// Compress compresses the input data and returns the compressed result.
	//
	// The returned slice is newly allocated and owned by the caller (except
	// for the no-op codec, which returns the input unchanged). The input
	// slice is never modified.
	Compress(data []byte) ([]byte, error)
}

// Decompressor restores a batch payload compressed with the matching
// algorithm.
type Decompressor interface {
	// Decompress decompresses the input data and returns the original
	// payload. It returns an error if the data is corrupted or was produced
	// by an incompatible algorithm.
	Decompress(data []byte) ([]byte, error)
}

// Codec combines compression and decompression.
type Codec interface {
	Compressor
	Decompressor
}

// CreateCodec creates a Codec for the given compression type.
//
// The target string names what is being compressed and only appears in error
// messages.
func CreateCodec(compressionType format.CompressionType, target string) (Codec, error) {
	switch compressionType {
	case format.CompressionNone:
		return NewNoOpCodec(), nil
	case format.CompressionZstd:
		return NewZstdCodec(), nil
	case format.CompressionS2:
		return NewS2Codec(), nil
	case format.CompressionLZ4:
		return NewLZ4Codec(), nil
	default:
		return nil, fmt.Errorf("invalid %s compression: %s", target, compressionType)
	}
}

var builtinCodecs = map[format.CompressionType]Codec{
	format.CompressionNone: NewNoOpCodec(),
	format.CompressionZstd: NewZstdCodec(),
	format.CompressionS2:   NewS2Codec(),
	format.CompressionLZ4:  NewLZ4Codec(),
}

// GetCodec retrieves a built-in Codec for the specified compression type.
func GetCodec(compressionType format.CompressionType) (Codec, error) {
	if codec, ok := builtinCodecs[compressionType]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("unsupported compression type: %s", compressionType)
}
