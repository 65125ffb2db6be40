package entropy

import (
	"crypto/rand"

	"github.com/entropypool/isaacrand/common/logging"
)

// DefaultOSSampleBytes is a one-mebibyte sample size for a Generate
// call. Generate itself has no default: it always draws exactly the
// count it is passed.
const DefaultOSSampleBytes = 1024 * 1024

// OSSource captures entropic bytes from the operating system's CSPRNG
// and tracks a per-bit occurrence estimate over the bytes captured
// since the last AppendData call.
type OSSource struct {
	data       []byte
	bitEntropy [8]float64

	// bitCountCache[sample] holds the bit positions set in the byte
	// value sample, computed lazily the first time that value is
	// observed and reused on every subsequent occurrence.
	bitCountCache [256][]uint8

	logger *logging.Logger
}

// NewOSSource creates an empty OSSource.
func NewOSSource() *OSSource {
	return &OSSource{logger: logging.GetLogger("entropy/os")}
}

// Generate draws numBytes from crypto/rand, appending them to the
// source's internal buffer and updating the running bit-occurrence
// estimate. It reports an error if the OS generator fails.
func (s *OSSource) Generate(numBytes int) error {
	buf := make([]byte, numBytes)
	if _, err := rand.Read(buf); err != nil {
		s.logger.Error("failed to generate OS random bytes", "err", err)
		return err
	}
	s.copyAndCountEntropy(buf)
	return nil
}

func (s *OSSource) copyAndCountEntropy(samples []byte) {
	for _, sample := range samples {
		s.data = append(s.data, sample)

		if s.bitCountCache[sample] == nil {
			var positions []uint8
			for bit := uint8(0); bit < 8; bit++ {
				if sample&(1<<bit) != 0 {
					positions = append(positions, bit)
				}
			}
			if positions == nil {
				positions = []uint8{}
			}
			s.bitCountCache[sample] = positions
		}

		for _, bit := range s.bitCountCache[sample] {
			s.bitEntropy[bit]++
		}
	}
}

// AppendData implements Source.
func (s *OSSource) AppendData(dst []byte) []byte {
	dst = append(dst, s.data...)
	s.data = nil
	s.bitEntropy = [8]float64{}
	return dst
}

// BitEntropy implements Source.
func (s *OSSource) BitEntropy() []float64 {
	normalizer := float64(len(s.data))
	if normalizer < 0.01 {
		normalizer = 1.0
	}
	out := make([]float64, 8)
	for i, v := range s.bitEntropy {
		out[i] = v / normalizer
	}
	return out
}
