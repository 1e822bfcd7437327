package pool

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetPayloadBufferEmpty(t *testing.T) {
	bb := GetPayloadBuffer()
	require.NotNil(t, bb)
	require.Equal(t, 0, bb.Len())
	require.GreaterOrEqual(t, bb.Cap(), PayloadBufferDefaultSize)

	bb.B = append(bb.B, 1, 2, 3)
	require.Equal(t, 3, bb.Len())
	require.Equal(t, []byte{1, 2, 3}, bb.Bytes())

	PutPayloadBuffer(bb)

	// A reused buffer always comes back empty.
	again := GetPayloadBuffer()
	require.Equal(t, 0, again.Len())
	PutPayloadBuffer(again)
}

func TestPutPayloadBufferDropsOversized(t *testing.T) {
	huge := &ByteBuffer{B: make([]byte, 0, PayloadBufferMaxThreshold+1)}
	PutPayloadBuffer(huge) // must not panic, buffer is discarded
	PutPayloadBuffer(nil)
}

func TestByteBufferReset(t *testing.T) {
	bb := &ByteBuffer{B: []byte{1, 2, 3}}
	c := bb.Cap()

	bb.Reset()
	require.Equal(t, 0, bb.Len())
	require.Equal(t, c, bb.Cap())
}
