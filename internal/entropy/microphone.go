package entropy

import (
	"crypto/rand"
	"encoding/binary"
	"sync"

	"github.com/entropypool/isaacrand/common/logging"
	"github.com/entropypool/isaacrand/common/rngerrors"
)

// MicrophoneSource simulates an asynchronous audio-capture device.
// InitFlow starts a background goroutine standing in for the
// device's callback thread; StopFlow synchronously drains it before
// returning, mirroring the original's callback-driven capture
// lifecycle without any real audio hardware.
type MicrophoneSource struct {
	mu sync.Mutex

	samples    []int16
	bitEntropy [16]float64

	bitCountCache map[uint16][]uint8

	streamInUse bool
	stopCalled  bool
	stopCh      chan struct{}
	wg          sync.WaitGroup

	logger *logging.Logger
}

// NewMicrophoneSource creates an idle MicrophoneSource.
func NewMicrophoneSource() *MicrophoneSource {
	return &MicrophoneSource{
		bitCountCache: make(map[uint16][]uint8),
		logger:        logging.GetLogger("entropy/microphone"),
	}
}

// InitFlow starts simulated capture. It returns ErrDeviceUnavailable
// if a stream is already active.
func (m *MicrophoneSource) InitFlow() error {
	m.mu.Lock()
	if m.streamInUse {
		m.mu.Unlock()
		return rngerrors.ErrDeviceUnavailable
	}
	m.streamInUse = true
	m.stopCalled = false
	m.stopCh = make(chan struct{})
	stopCh := m.stopCh
	m.mu.Unlock()

	m.wg.Add(1)
	go m.captureLoop(stopCh)

	m.logger.Debug("audio capture started")
	return nil
}

// StopFlow stops the capture goroutine and waits for it to finish
// before returning, so buffered samples are safe to read.
func (m *MicrophoneSource) StopFlow() error {
	m.mu.Lock()
	if !m.streamInUse || m.stopCalled {
		m.mu.Unlock()
		return rngerrors.ErrDeviceUnavailable
	}
	m.stopCalled = true
	close(m.stopCh)
	m.mu.Unlock()

	m.wg.Wait()

	m.mu.Lock()
	m.streamInUse = false
	m.mu.Unlock()

	m.logger.Debug("audio capture stopped")
	return nil
}

// captureLoop stands in for the PortAudio callback thread: it
// repeatedly draws simulated int16 samples until told to stop.
func (m *MicrophoneSource) captureLoop(stopCh chan struct{}) {
	defer m.wg.Done()

	const framesPerCallback = 256
	buf := make([]byte, framesPerCallback*2)

	for {
		select {
		case <-stopCh:
			return
		default:
		}

		if _, err := rand.Read(buf); err != nil {
			m.logger.Error("failed to simulate audio frame", "err", err)
			return
		}

		frames := make([]int16, framesPerCallback)
		for i := range frames {
			frames[i] = int16(binary.LittleEndian.Uint16(buf[i*2 : i*2+2]))
		}
		m.memberCallback(frames)
	}
}

func (m *MicrophoneSource) memberCallback(frames []int16) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, sample := range frames {
		m.samples = append(m.samples, sample)

		u := uint16(sample)
		positions, ok := m.bitCountCache[u]
		if !ok {
			for bit := uint8(0); bit < 16; bit++ {
				if u&(1<<bit) != 0 {
					positions = append(positions, bit)
				}
			}
			if positions == nil {
				positions = []uint8{}
			}
			m.bitCountCache[u] = positions
		}

		for _, bit := range positions {
			m.bitEntropy[bit]++
		}
	}
}

// AppendData implements Source.
func (m *MicrophoneSource) AppendData(dst []byte) []byte {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, s := range m.samples {
		u := uint16(s)
		dst = append(dst, byte(u&0xFF), byte((u>>8)&0xFF))
	}
	m.samples = nil
	m.bitEntropy = [16]float64{}
	return dst
}

// BitEntropy implements Source.
func (m *MicrophoneSource) BitEntropy() []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	normalizer := float64(len(m.samples))
	if normalizer < 0.01 {
		normalizer = 1.0
	}
	out := make([]float64, 16)
	for i, v := range m.bitEntropy {
		out[i] = v / normalizer
	}
	return out
}
