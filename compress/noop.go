package compress

// NoOpCodec bypasses compression entirely. It is the default for active
// sampling runs, where batch files are short-lived and write latency matters
// more than disk footprint.
type NoOpCodec struct{}

var _ Codec = (*NoOpCodec)(nil)

// NewNoOpCodec creates a codec that passes data through unchanged.
func NewNoOpCodec() NoOpCodec {
	return NoOpCodec{}
}

// Compress returns the input slice as-is without copying. Callers must not
// modify the input while the returned slice is in use.
func (c NoOpCodec) Compress(data []byte) ([]byte, error) {
	return data, nil
}

// Decompress returns the input slice as-is without copying.
func (c NoOpCodec) Decompress(data []byte) ([]byte, error) {
	return data, nil
}
