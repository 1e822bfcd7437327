// Package compress provides the compression codecs used for sample batch
// payloads.
//
// A batch payload is a column-major block of float64 flux values. Raw flux
// data compresses poorly, but chains that spend long stretches on the same
// polytope faces emit many repeated coordinates, so S2 or LZ4 can shrink
// archived batches noticeably at low cost. Zstandard trades speed for the
// best ratio and suits cold storage of finished runs.
//
// Codecs are selected through format.CompressionType and created with
// GetCodec or CreateCodec. The zero-cost CompressionNone codec passes data
// through untouched and is the default for active sampling runs.
package compress
