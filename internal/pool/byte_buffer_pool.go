// Package pool provides pooled scratch buffers for batch payload encoding.
// A default-sized batch serializes to NumReactions × PointsPerFile × 8 bytes
// before compression, so reusing buffers across writes avoids re-allocating
// megabytes per batch.
package pool

import "sync"

const (
	// PayloadBufferDefaultSize is the initial capacity of a pooled buffer.
	PayloadBufferDefaultSize = 64 * 1024 // 64KiB

	// PayloadBufferMaxThreshold is the largest buffer returned to the pool.
	// Oversized buffers from unusually large batches are dropped so the pool
	// does not retain them forever.
	PayloadBufferMaxThreshold = 16 * 1024 * 1024 // 16MiB
)

// ByteBuffer is a reusable byte slice wrapper.
type ByteBuffer struct {
	// B is the underlying byte slice. Callers append to it directly and
	// store the result back before releasing the buffer.
	B []byte
}

// Reset empties the buffer but keeps the allocated memory.
func (bb *ByteBuffer) Reset() {
	bb.B = bb.B[:0]
}

// Bytes returns the underlying byte slice.
func (bb *ByteBuffer) Bytes() []byte {
	return bb.B
}

// Len returns the current length of the buffer.
func (bb *ByteBuffer) Len() int {
	return len(bb.B)
}

// Cap returns the capacity of the buffer.
func (bb *ByteBuffer) Cap() int {
	return cap(bb.B)
}

var payloadBufferPool = sync.Pool{
	New: func() any {
		return &ByteBuffer{B: make([]byte, 0, PayloadBufferDefaultSize)}
	},
}

// GetPayloadBuffer returns an empty buffer from the pool.
func GetPayloadBuffer() *ByteBuffer {
	bb, _ := payloadBufferPool.Get().(*ByteBuffer)
	bb.Reset()

	return bb
}

// PutPayloadBuffer returns a buffer to the pool. The buffer must not be used
// after the call.
func PutPayloadBuffer(bb *ByteBuffer) {
	if bb == nil || bb.Cap() > PayloadBufferMaxThreshold {
		return
	}
	payloadBufferPool.Put(bb)
}
