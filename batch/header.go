package batch

import (
	"fmt"

	"github.com/achrlab/polyrun/endian"
	"github.com/achrlab/polyrun/errs"
	"github.com/achrlab/polyrun/format"
)

const (
	// HeaderSize is the fixed header size in bytes.
	HeaderSize = 32

	// EndiannessMask selects the byte-order bit (0 = little, 1 = big) in the
	// packed options field.
	EndiannessMask = 0x0001
	// MagicNumberMask selects the magic number bits (4-15).
	MagicNumberMask = 0xFFF0

	// MagicBatchV1 identifies version 1 of the sample batch format.
	MagicBatchV1 = 0xFB10
)

// Header is the fixed-size header at the start of every batch file.
type Header struct {
	// Options packs the endianness flag (bit 0) and the magic number
	// (bits 4-15). Bits 1-3 are reserved and must be zero.
	Options uint16
	// Compression is the codec applied to the payload.
	Compression format.CompressionType
	// Rows is the number of reactions per point.
	Rows uint32
	// Cols is the number of points in the batch.
	Cols uint32
	// Index is the batch index the file was written under.
	Index uint32
	// PayloadLen is the stored (possibly compressed) payload length in bytes.
	PayloadLen uint32
	// Checksum is the xxHash64 of the stored payload.
	Checksum uint64
}

// NewHeader creates a header with the version 1 magic and little-endian
// byte order.
func NewHeader() Header {
	return Header{Options: MagicBatchV1, Compression: format.CompressionNone}
}

// IsBigEndian reports whether the payload uses big-endian byte order.
func (h Header) IsBigEndian() bool {
	return h.Options&EndiannessMask != 0
}

// WithBigEndian marks the payload as big-endian.
func (h *Header) WithBigEndian() {
	h.Options |= EndiannessMask
}

// WithLittleEndian marks the payload as little-endian.
func (h *Header) WithLittleEndian() {
	h.Options &^= EndiannessMask
}

// Engine returns the byte-order engine matching the endianness flag.
func (h Header) Engine() endian.EndianEngine {
	if h.IsBigEndian() {
		return endian.GetBigEndianEngine()
	}

	return endian.GetLittleEndianEngine()
}

// Bytes serializes the header.
//
// The options field itself is always little-endian so the endianness flag
// can be read before the engine is known; the remaining fields use the
// engine the flag selects.
func (h Header) Bytes() []byte {
	b := make([]byte, HeaderSize)

	b[0] = byte(h.Options)
	b[1] = byte(h.Options >> 8)
	b[2] = byte(h.Compression)
	// b[3] reserved

	engine := h.Engine()
	engine.PutUint32(b[4:8], h.Rows)
	engine.PutUint32(b[8:12], h.Cols)
	engine.PutUint32(b[12:16], h.Index)
	engine.PutUint32(b[16:20], h.PayloadLen)
	// b[20:24] reserved
	engine.PutUint64(b[24:32], h.Checksum)

	return b
}

// ParseHeader parses and validates a batch file header.
func ParseHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, fmt.Errorf("%w: %d bytes", errs.ErrInvalidBatchHeader, len(data))
	}

	var h Header
	h.Options = uint16(data[0]) | uint16(data[1])<<8
	h.Compression = format.CompressionType(data[2])

	if h.Options&MagicNumberMask != MagicBatchV1 {
		return Header{}, fmt.Errorf("%w: magic 0x%04X", errs.ErrInvalidBatchHeader, h.Options&MagicNumberMask)
	}

	engine := h.Engine()
	h.Rows = engine.Uint32(data[4:8])
	h.Cols = engine.Uint32(data[8:12])
	h.Index = engine.Uint32(data[12:16])
	h.PayloadLen = engine.Uint32(data[16:20])
	h.Checksum = engine.Uint64(data[24:32])

	if h.Rows == 0 || h.Cols == 0 {
		return Header{}, fmt.Errorf("%w: empty %dx%d matrix", errs.ErrInvalidBatchHeader, h.Rows, h.Cols)
	}

	return h, nil
}
