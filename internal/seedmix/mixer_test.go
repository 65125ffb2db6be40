package seedmix

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/entropypool/isaacrand/common/rngerrors"
	"github.com/entropypool/isaacrand/internal/entropy"
)

var _ entropy.Source = (*fakeSource)(nil)

// fakeSource is a minimal entropy.Source backed by a fixed buffer, so
// mixer behavior can be tested without drawing real OS randomness.
type fakeSource struct {
	data    []byte
	entropy []float64
}

func (f *fakeSource) AppendData(dst []byte) []byte {
	dst = append(dst, f.data...)
	f.data = nil
	return dst
}

func (f *fakeSource) BitEntropy() []float64 {
	return f.entropy
}

func highEntropyBytes(n int) []byte {
	// Alternating bit pattern with 50% set bits per byte, well above
	// the 0.25 threshold.
	buf := make([]byte, n)
	for i := range buf {
		if i%2 == 0 {
			buf[i] = 0x0F
		} else {
			buf[i] = 0xF0
		}
	}
	return buf
}

func TestProcessFromSourceRejectsLowSampleEntropy(t *testing.T) {
	m := New(4)
	src := &fakeSource{
		data:    highEntropyBytes(64),
		entropy: []float64{0.1, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1},
	}
	err := m.ProcessFromSource(src)
	require.ErrorIs(t, err, rngerrors.ErrLowSampleEntropy)
}

func TestProcessFromSourceRejectsLowByteEntropy(t *testing.T) {
	m := New(4)
	data := make([]byte, 64)
	src := &fakeSource{
		data:    data, // all zero bytes: zero bit occurrence
		entropy: []float64{0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5},
	}
	err := m.ProcessFromSource(src)
	require.ErrorIs(t, err, rngerrors.ErrLowByteEntropy)
}

func TestProcessFromSourceAndGenerateSeed(t *testing.T) {
	m := New(4)
	src := &fakeSource{
		data:    highEntropyBytes(64),
		entropy: []float64{0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5},
	}
	require.NoError(t, m.ProcessFromSource(src))
	require.False(t, m.SeedReady())

	m.GenerateSeed()
	require.True(t, m.SeedReady())

	dst := make([]uint32, 4)
	CopySeed(m, dst)
	require.False(t, m.SeedReady())

	var allZero bool = true
	for _, v := range dst {
		if v != 0 {
			allZero = false
		}
	}
	require.False(t, allZero)
}

func TestProcessFromSourceRejectsWhenSeedReady(t *testing.T) {
	m := New(2)
	src := &fakeSource{
		data:    highEntropyBytes(32),
		entropy: []float64{0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5},
	}
	require.NoError(t, m.ProcessFromSource(src))
	m.GenerateSeed()

	err := m.ProcessFromSource(&fakeSource{data: highEntropyBytes(32), entropy: []float64{0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5}})
	require.ErrorIs(t, err, rngerrors.ErrSeedLocked)
}

func TestCopySeedRefusesInsufficientMaterial(t *testing.T) {
	m := New(1)
	src := &fakeSource{
		data:    highEntropyBytes(16),
		entropy: []float64{0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5},
	}
	require.NoError(t, m.ProcessFromSource(src))
	m.GenerateSeed()

	// DigestSize=64 bytes, numBytes=8 (uint64) => possibleGroups=8 per
	// digest, 1 digest => max 8 terms.
	dst := make([]uint64, 9)
	CopySeed(m, dst)

	// Refused: seed remains ready and dst is untouched.
	require.True(t, m.SeedReady())
	for _, v := range dst {
		require.Equal(t, uint64(0), v)
	}
}

func TestResetStateDoesNotClearHashes(t *testing.T) {
	m := New(1)
	src := &fakeSource{
		data:    highEntropyBytes(16),
		entropy: []float64{0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5},
	}
	require.NoError(t, m.ProcessFromSource(src))
	m.GenerateSeed()
	digestBefore := append([]byte(nil), m.digests[0]...)

	m.ResetState()
	require.False(t, m.SeedReady())

	// Absorbing no additional data and regenerating yields the same
	// digest, since ResetState left the rolling hash untouched.
	m.GenerateSeed()
	require.Equal(t, digestBefore, m.digests[0])
}

func TestEntropySourceDrained(t *testing.T) {
	m := New(2)
	src := &fakeSource{
		data:    highEntropyBytes(32),
		entropy: []float64{0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5},
	}
	require.NoError(t, m.ProcessFromSource(src))
	require.Nil(t, src.data)
}
