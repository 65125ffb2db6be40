package isaacengine

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/entropypool/isaacrand/common/rngerrors"
)

func seedTerms() []uint32 {
	seed := make([]uint32, N)
	for i := range seed {
		seed[i] = uint32(i*2654435761 + 1)
	}
	return seed
}

func TestRandReturnsZeroBeforeSeeding(t *testing.T) {
	e := New()
	require.Equal(t, uint32(0), e.Rand())
}

func TestSeedIsDeterministic(t *testing.T) {
	e1 := New()
	e1.Seed(1, 2, 3, seedTerms())

	e2 := New()
	e2.Seed(1, 2, 3, seedTerms())

	for i := 0; i < 1000; i++ {
		require.Equal(t, e1.Rand(), e2.Rand())
	}
}

func TestSeedProducesVaryingOutput(t *testing.T) {
	e := New()
	e.Seed(1, 2, 3, seedTerms())

	seen := make(map[uint32]bool)
	for i := 0; i < 512; i++ {
		seen[e.Rand()] = true
	}
	require.Greater(t, len(seen), 400)
}

func TestSaveAndResumeRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state")

	e1 := New()
	e1.SetIdentifier(path)
	e1.Seed(1, 2, 3, seedTerms())
	for i := 0; i < 300; i++ {
		e1.Rand()
	}
	require.NoError(t, e1.SaveState())

	e2 := New()
	e2.SetIdentifier(path)
	e2.Seed(0, 0, 0, nil)
	require.True(t, e2.Initialized())

	require.Equal(t, e1.Rand(), e2.Rand())
	require.Equal(t, e1.Rand(), e2.Rand())
}

func TestEncryptedSaveAndResumeRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.enc")
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i + 1)
	}

	e1 := New()
	e1.SetIdentifier(path)
	e1.SetKey(key)
	e1.Seed(1, 2, 3, seedTerms())
	require.NoError(t, e1.SaveState())

	e2 := New()
	e2.SetIdentifier(path)
	e2.SetKey(key)
	e2.Seed(0, 0, 0, nil)
	require.True(t, e2.Initialized())
}

func TestResumeMissingFileLeavesUninitialized(t *testing.T) {
	e := New()
	e.SetIdentifier(filepath.Join(t.TempDir(), "missing"))
	e.Seed(0, 0, 0, nil)
	require.False(t, e.Initialized())
	require.Equal(t, uint32(0), e.Rand())
}

func TestLoadQuirkShiftsRandAAndRandB(t *testing.T) {
	// Write a well-formed state file with SaveState from an engine
	// seeded with distinctive randa/randb/randc values, then confirm the
	// loaded engine's randa/randb match the written randb/randc, and
	// loaded randc is zero, per the documented load quirk.
	path := filepath.Join(t.TempDir(), "state")

	e1 := New()
	e1.SetIdentifier(path)
	e1.Seed(111, 222, 333, seedTerms())
	require.NoError(t, e1.SaveState())

	e2 := New()
	e2.SetIdentifier(path)
	e2.Seed(0, 0, 0, nil)
	require.True(t, e2.Initialized())

	require.Equal(t, e1.rc.randb, e2.rc.randa)
	require.Equal(t, e1.rc.randc, e2.rc.randb)
	require.Equal(t, uint32(0), e2.rc.randc)
}

func TestLoadRejectsWrongTokenCount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state")

	e1 := New()
	e1.SetIdentifier(path)
	e1.Seed(111, 222, 333, seedTerms())
	require.NoError(t, e1.SaveState())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	truncated := filepath.Join(t.TempDir(), "truncated")
	fields := strings.Fields(string(raw))
	require.Len(t, fields, 2*N+4)
	require.NoError(t, os.WriteFile(truncated, []byte(strings.Join(fields[:len(fields)-1], " ")), 0o600))

	e2 := New()
	e2.SetIdentifier(truncated)
	require.ErrorIs(t, e2.Initialize(truncated, nil), rngerrors.ErrAuthFailure)
	require.False(t, e2.Initialized())

	padded := filepath.Join(t.TempDir(), "padded")
	require.NoError(t, os.WriteFile(padded, []byte(string(raw)+" 0"), 0o600))

	e3 := New()
	e3.SetIdentifier(padded)
	require.ErrorIs(t, e3.Initialize(padded, nil), rngerrors.ErrAuthFailure)
	require.False(t, e3.Initialized())
}

func TestDestroyResetsIdentifierAndKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state")
	e := New()
	e.SetIdentifier(path)
	e.Seed(1, 2, 3, seedTerms())

	e.Destroy()
	require.False(t, e.Initialized())
	require.Equal(t, defaultStateFileName, e.stateFileName)
	require.Empty(t, e.key)
}
