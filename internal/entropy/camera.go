package entropy

import (
	"crypto/rand"
	"encoding/binary"

	"github.com/entropypool/isaacrand/common/logging"
)

// CameraSource simulates synchronous frame capture from an imaging
// device. Unlike MicrophoneSource it has no background goroutine:
// CaptureFrames blocks until the requested number of frames have
// been drawn, matching the original's synchronous capture loop.
type CameraSource struct {
	samples    []int16
	bitEntropy [16]float64

	bitCountCache map[uint16][]uint8

	logger *logging.Logger
}

// pixelsPerFrame is the number of simulated 16-bit pixel samples
// drawn per captured frame.
const pixelsPerFrame = 64

// NewCameraSource creates an empty CameraSource.
func NewCameraSource() *CameraSource {
	return &CameraSource{
		bitCountCache: make(map[uint16][]uint8),
		logger:        logging.GetLogger("entropy/camera"),
	}
}

// CaptureFrames draws numFrames simulated frames of pixel data,
// updating the buffered samples and running bit-occurrence estimate.
func (c *CameraSource) CaptureFrames(numFrames int) error {
	buf := make([]byte, pixelsPerFrame*2)
	for f := 0; f < numFrames; f++ {
		if _, err := rand.Read(buf); err != nil {
			c.logger.Error("failed to simulate camera frame", "err", err)
			return err
		}
		for i := 0; i < pixelsPerFrame; i++ {
			pixel := int16(binary.LittleEndian.Uint16(buf[i*2 : i*2+2]))
			c.recordSample(pixel)
		}
	}
	return nil
}

func (c *CameraSource) recordSample(sample int16) {
	c.samples = append(c.samples, sample)

	u := uint16(sample)
	positions, ok := c.bitCountCache[u]
	if !ok {
		for bit := uint8(0); bit < 16; bit++ {
			if u&(1<<bit) != 0 {
				positions = append(positions, bit)
			}
		}
		if positions == nil {
			positions = []uint8{}
		}
		c.bitCountCache[u] = positions
	}

	for _, bit := range positions {
		c.bitEntropy[bit]++
	}
}

// AppendData implements Source.
func (c *CameraSource) AppendData(dst []byte) []byte {
	for _, s := range c.samples {
		u := uint16(s)
		dst = append(dst, byte(u&0xFF), byte((u>>8)&0xFF))
	}
	c.samples = nil
	c.bitEntropy = [16]float64{}
	return dst
}

// BitEntropy implements Source.
func (c *CameraSource) BitEntropy() []float64 {
	normalizer := float64(len(c.samples))
	if normalizer < 0.01 {
		normalizer = 1.0
	}
	out := make([]float64, 16)
	for i, v := range c.bitEntropy {
		out[i] = v / normalizer
	}
	return out
}
