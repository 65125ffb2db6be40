// Package seedmix implements the entropy gate and rolling-hash seed
// mixer that turns entropic source bytes into ISAAC seed terms.
package seedmix

import (
	"hash"
	"unsafe"

	"golang.org/x/crypto/sha3"

	"github.com/entropypool/isaacrand/common/logging"
	"github.com/entropypool/isaacrand/common/rngerrors"
	"github.com/entropypool/isaacrand/internal/bitconv"
	"github.com/entropypool/isaacrand/internal/entropy"
)

// EntropyThreshold is the minimum acceptable average bit-occurrence
// probability, both at the whole-sample level and at the per-slice
// byte level.
const EntropyThreshold = 0.25

// DigestSize is the width, in bytes, of a single rolling-hash digest
// (SHA3-512).
const DigestSize = 64

// Mixer mines entropy from RandomSources into numDivs independent
// SHA3-512 rolling hashes, producing seed terms once every hash has
// been finalized.
type Mixer struct {
	numDivs int
	hashVec []hash.Hash
	digests [][]byte

	seedReady bool

	logger *logging.Logger
}

// New creates a Mixer that splits absorbed data across numDivs
// independent rolling hashes.
func New(numDivs int) *Mixer {
	m := &Mixer{
		numDivs: numDivs,
		hashVec: make([]hash.Hash, numDivs),
		logger:  logging.GetLogger("seedmix"),
	}
	for i := range m.hashVec {
		m.hashVec[i] = sha3.New512()
	}
	return m
}

// ProcessFromSource drains src's buffered bytes into the rolling
// hashes if both the source's overall sample entropy and every
// slice's byte entropy clear EntropyThreshold.
//
// A slice that fails the byte-entropy check aborts the call, but any
// earlier slice in the same call has already been absorbed into its
// rolling hash and is not rolled back — this mirrors the historical
// behavior of the mixer this was ported from. Callers that need an
// all-or-nothing guarantee should call StrictReset after a failed
// ProcessFromSource and retry from a fresh Mixer.
func (m *Mixer) ProcessFromSource(src entropy.Source) error {
	if m.seedReady {
		return rngerrors.ErrSeedLocked
	}

	sampleEntropy := src.BitEntropy()
	var sum float64
	for _, v := range sampleEntropy {
		sum += v
	}
	avg := sum / float64(len(sampleEntropy))
	if avg < EntropyThreshold {
		m.logger.Warn("sample entropy estimate low", "avg", avg)
		return rngerrors.ErrLowSampleEntropy
	}

	var data []byte
	data = src.AppendData(data)

	stepSize := len(data) / m.numDivs
	excess := len(data) % m.numDivs

	offset := 0
	for i := 0; i < m.numDivs-1; i++ {
		slice := data[offset : offset+stepSize]
		if !sliceEntropyOK(slice) {
			m.logger.Warn("byte entropy estimate low", "slice", i)
			return rngerrors.ErrLowByteEntropy
		}
		_, _ = m.hashVec[i].Write(slice)
		offset += stepSize
	}

	final := data[offset : offset+stepSize+excess]
	if !sliceEntropyOK(final) {
		m.logger.Warn("byte entropy estimate low", "slice", m.numDivs-1)
		return rngerrors.ErrLowByteEntropy
	}
	_, _ = m.hashVec[m.numDivs-1].Write(final)

	return nil
}

func sliceEntropyOK(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	var sum float64
	for _, b := range data {
		sum += bitconv.ByteBitProbability[b]
	}
	return sum/float64(len(data)) >= EntropyThreshold
}

// GenerateSeed finalizes every rolling hash into a digest, marking
// the seed as ready to be copied out. It is a no-op if the seed is
// already ready.
func (m *Mixer) GenerateSeed() {
	if m.seedReady {
		return
	}

	m.digests = make([][]byte, m.numDivs)
	for i, h := range m.hashVec {
		m.digests[i] = h.Sum(nil)
	}
	m.seedReady = true
}

// ResetState only clears the seedReady flag, allowing GenerateSeed to
// run again; it does not reset the underlying rolling hashes, so a
// subsequent ProcessFromSource absorbs into hash state left over from
// before the reset. This matches the historical resetState behavior
// this mixer was ported from and is the default. Use StrictReset for
// the alternative behavior of discarding accumulated hash state too.
func (m *Mixer) ResetState() {
	m.seedReady = false
}

// StrictReset clears the seedReady flag and reinitializes every
// rolling hash, discarding any data absorbed so far. This is not the
// default reset behavior (see ResetState) but is provided for callers
// that need a clean slate rather than resumable accumulation.
func (m *Mixer) StrictReset() {
	m.seedReady = false
	m.digests = nil
	for i := range m.hashVec {
		m.hashVec[i] = sha3.New512()
	}
}

// SeedReady reports whether GenerateSeed has produced digests that
// have not yet been consumed by CopySeed.
func (m *Mixer) SeedReady() bool {
	return m.seedReady
}

// Term is the set of integer widths CopySeed can group digest bytes
// into.
type Term interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

// CopySeed writes len(dst) seed terms into dst, grouping each
// digest's bytes most-significant-byte first. It is a no-op if the
// seed is not ready, or if there is not enough digest material to
// satisfy len(dst) terms; on success it consumes the seed, requiring
// a fresh GenerateSeed before the next CopySeed.
func CopySeed[T Term](m *Mixer, dst []T) {
	if !m.seedReady {
		return
	}

	var probe T
	numBytes := int(unsafe.Sizeof(probe))
	if numBytes&(numBytes-1) != 0 {
		return // not a power of two width
	}

	possibleGroups := len(m.digests[0]) / numBytes
	if len(dst) > possibleGroups*len(m.digests) {
		return
	}

	remaining := len(dst)
	pos := 0
	for _, digest := range m.digests {
		if remaining <= 0 {
			break
		}
		groups := possibleGroups
		if groups > remaining {
			groups = remaining
		}
		for g := 0; g < groups; g++ {
			var term T
			for b := 0; b < numBytes; b++ {
				term = (term << 8) | T(digest[g*numBytes+b])
			}
			dst[pos] = term
			pos++
		}
		remaining -= groups
	}

	m.seedReady = false
}
