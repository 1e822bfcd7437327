package compress

// ZstdCodec compresses batch payloads with Zstandard. Best ratio of the
// built-in codecs; suited to archiving finished runs rather than active
// sampling.
//
// Two implementations exist behind build tags: the cgo build binds
// valyala/gozstd (native libzstd), and the pure-Go build uses
// klauspost/compress/zstd. Both produce interchangeable frames.
type ZstdCodec struct{}

var _ Codec = (*ZstdCodec)(nil)

// NewZstdCodec creates a new Zstandard codec with default settings.
func NewZstdCodec() ZstdCodec {
	return ZstdCodec{}
}
