package format

type CompressionType uint8

const (
	CompressionNone CompressionType = 0x1 // CompressionNone represents no compression.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 compression.
)

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

// Sampler names accepted by the top-level dispatch. Only the
// artificially-centered hit-and-run walk is implemented; the volume
// estimator name is reserved for a future variant.
const (
	SamplerACHR   = "ACHR"
	SamplerVolume = "Volume"
)
