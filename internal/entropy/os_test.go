package entropy

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOSSourceAppendAndReset(t *testing.T) {
	src := NewOSSource()
	require.NoError(t, src.Generate(4096))

	ent := src.BitEntropy()
	require.Len(t, ent, 8)
	for _, p := range ent {
		require.GreaterOrEqual(t, p, 0.0)
		require.LessOrEqual(t, p, 1.0)
	}

	var dst []byte
	dst = src.AppendData(dst)
	require.Len(t, dst, 4096)

	// AppendData drops the internal buffer and resets the estimate.
	dst2 := src.AppendData(nil)
	require.Len(t, dst2, 0)
	for _, p := range src.BitEntropy() {
		require.Equal(t, 0.0, p)
	}
}

func TestOSSourceBitEntropyRoughlyUniform(t *testing.T) {
	src := NewOSSource()
	require.NoError(t, src.Generate(1 << 16))

	for _, p := range src.BitEntropy() {
		require.InDelta(t, 0.5, p, 0.05)
	}
}
