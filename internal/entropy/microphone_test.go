package entropy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMicrophoneSourceLifecycle(t *testing.T) {
	src := NewMicrophoneSource()

	require.NoError(t, src.InitFlow())
	// Double init should fail while a stream is active.
	require.Error(t, src.InitFlow())

	time.Sleep(20 * time.Millisecond)

	require.NoError(t, src.StopFlow())
	// Double stop should fail once already stopped.
	require.Error(t, src.StopFlow())

	var dst []byte
	dst = src.AppendData(dst)
	require.NotEmpty(t, dst)
	require.Zero(t, len(dst)%2)
}

func TestMicrophoneSourceRestartAfterStop(t *testing.T) {
	src := NewMicrophoneSource()
	require.NoError(t, src.InitFlow())
	time.Sleep(5 * time.Millisecond)
	require.NoError(t, src.StopFlow())

	require.NoError(t, src.InitFlow())
	time.Sleep(5 * time.Millisecond)
	require.NoError(t, src.StopFlow())
}
