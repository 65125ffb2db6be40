package bitconv

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPopCount8MatchesBruteForce(t *testing.T) {
	for i := 0; i < 256; i++ {
		var want uint8
		for v := i; v != 0; v >>= 1 {
			want += uint8(v & 1)
		}
		require.Equal(t, want, PopCount8[i], "byte value %d", i)
	}
}

func TestByteBitProbabilityBounds(t *testing.T) {
	require.Equal(t, 0.0, ByteBitProbability[0x00])
	require.Equal(t, 1.0, ByteBitProbability[0xFF])
	require.Equal(t, 0.5, ByteBitProbability[0x0F])
}

func TestUint32SliceToBytesIsLittleEndian(t *testing.T) {
	out := Uint32SliceToBytes(nil, []uint32{0x04030201})
	require.Equal(t, []byte{0x01, 0x02, 0x03, 0x04}, out)
}

func TestUint32SliceToBytesAppendsToExistingSlice(t *testing.T) {
	dst := []byte{0xAA}
	out := Uint32SliceToBytes(dst, []uint32{1, 2})
	require.Equal(t, []byte{0xAA, 1, 0, 0, 0, 2, 0, 0, 0}, out)
}

func TestInt16ToBytesHandlesNegativeSamples(t *testing.T) {
	out := Int16ToBytes(nil, []int16{-1, 256})
	require.Equal(t, []byte{0xFF, 0xFF, 0x00, 0x01}, out)
}
