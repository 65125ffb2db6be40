package pipeline

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/entropypool/isaacrand/internal/isaacengine"
)

func TestGatherEntropyAndSeedInitializesEngine(t *testing.T) {
	e := isaacengine.New()
	require.False(t, e.Initialized())

	require.NoError(t, GatherEntropyAndSeed(e, 0))
	require.True(t, e.Initialized())
}

func TestGatherEntropyAndSeedProducesVaryingOutput(t *testing.T) {
	e := isaacengine.New()
	require.NoError(t, GatherEntropyAndSeed(e, 0))

	seen := make(map[uint32]bool)
	for i := 0; i < 512; i++ {
		seen[e.Rand()] = true
	}
	require.Greater(t, len(seen), 400)
}

func TestCapabilitiesDefaultToOSOnly(t *testing.T) {
	audio, camera := Capabilities()
	require.False(t, audio)
	require.False(t, camera)
}

func TestGatherEntropyAndSeedRejectsNegativeMultiplierByClamping(t *testing.T) {
	e := isaacengine.New()
	require.NoError(t, GatherEntropyAndSeed(e, -3))
	require.True(t, e.Initialized())
}
