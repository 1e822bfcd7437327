package endian

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetEngines(t *testing.T) {
	require.Equal(t, binary.LittleEndian, GetLittleEndianEngine())
	require.Equal(t, binary.BigEndian, GetBigEndianEngine())
}

func TestEngineRoundTrip(t *testing.T) {
	engines := []EndianEngine{GetLittleEndianEngine(), GetBigEndianEngine()}

	for _, engine := range engines {
		buf := make([]byte, 8)
		engine.PutUint64(buf, 0xDEADBEEFCAFEF00D)
		require.Equal(t, uint64(0xDEADBEEFCAFEF00D), engine.Uint64(buf))

		appended := engine.AppendUint32(nil, 0x01020304)
		require.Len(t, appended, 4)
		require.Equal(t, uint32(0x01020304), engine.Uint32(appended))
	}
}

func TestCheckEndianness(t *testing.T) {
	// The host is one or the other; the two probes must agree.
	native := CheckEndianness()
	require.NotNil(t, native)
	require.Equal(t, native == binary.LittleEndian, IsNativeLittleEndian())
	require.Equal(t, native == binary.BigEndian, IsNativeBigEndian())
}
