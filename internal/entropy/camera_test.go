package entropy

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCameraSourceCaptureFrames(t *testing.T) {
	src := NewCameraSource()
	require.NoError(t, src.CaptureFrames(4))

	var dst []byte
	dst = src.AppendData(dst)
	require.Len(t, dst, 4*pixelsPerFrame*2)

	// A second AppendData without a capture in between yields nothing.
	dst2 := src.AppendData(nil)
	require.Empty(t, dst2)
}

func TestCameraSourceZeroFramesIsNoop(t *testing.T) {
	src := NewCameraSource()
	require.NoError(t, src.CaptureFrames(0))
	require.Empty(t, src.AppendData(nil))
}
