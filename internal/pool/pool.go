// Package pool assembles the engine, mixer, and entropy sources into
// the top-level random byte producer: seed once from captured entropy
// or resumed state, then serve arbitrarily large output blocks by
// hashing successive runs of generator words through SHA3-256.
package pool

import (
	"errors"

	"golang.org/x/crypto/sha3"

	"github.com/entropypool/isaacrand/common/logging"
	"github.com/entropypool/isaacrand/common/rngerrors"
	"github.com/entropypool/isaacrand/internal/bitconv"
	"github.com/entropypool/isaacrand/internal/isaacengine"
	"github.com/entropypool/isaacrand/internal/pipeline"
)

// wordsPerDigest is how many generator words are consumed to produce
// one SHA3-256 digest's worth of output.
const wordsPerDigest = 128

// digestSize is the width, in bytes, of the whitening hash (SHA3-256).
const digestSize = 32

// Status reports the outcome of a state-load check.
type Status int

const (
	// StatusSuccess means state loaded and the pool is ready to
	// generate output.
	StatusSuccess Status = -iota
	// StatusFileNotFound means no state file exists at the
	// configured path.
	StatusFileNotFound
	// StatusDecryptionError means the state file exists but failed
	// authenticated decryption.
	StatusDecryptionError
	// StatusEntropyError means entropy capture or thresholding failed
	// while seeding a fresh engine; distinguishable from a hard device
	// failure (StatusInitError).
	StatusEntropyError
	// StatusInitError covers a hard failure to bring the engine up:
	// an unavailable capture device, or SaveState on an uninitialized
	// engine.
	StatusInitError
)

// String renders a Status for logging.
func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusFileNotFound:
		return "file_not_found"
	case StatusDecryptionError:
		return "decryption_error"
	case StatusEntropyError:
		return "entropy_error"
	default:
		return "init_error"
	}
}

// ClassifyError maps an error returned by Pool's operations (or by
// Initialize specifically) onto the Status enum, for callers that
// want the coarse classification rather than the underlying sentinel.
func ClassifyError(err error) Status {
	return statusFromErr(err)
}

// statusFromErr classifies an error from the engine/mixer/entropy
// layers into the public Status enum.
func statusFromErr(err error) Status {
	switch {
	case err == nil:
		return StatusSuccess
	case errors.Is(err, rngerrors.ErrNotFound):
		return StatusFileNotFound
	case errors.Is(err, rngerrors.ErrAuthFailure):
		return StatusDecryptionError
	case errors.Is(err, rngerrors.ErrLowSampleEntropy),
		errors.Is(err, rngerrors.ErrLowByteEntropy),
		errors.Is(err, rngerrors.ErrSeedLocked):
		return StatusEntropyError
	default:
		return StatusInitError
	}
}

// Err returns nil for StatusSuccess and an error describing the
// failure otherwise, for callers that want Go's usual error idiom
// instead of switching on the Status value.
func (s Status) Err() error {
	if s == StatusSuccess {
		return nil
	}
	return errors.New("pool: " + s.String())
}

// Strength classifies how much raw entropy fed the current seed.
type Strength string

const (
	StrengthWeak   Strength = "WEAK"
	StrengthMedium Strength = "MEDIUM"
	StrengthStrong Strength = "STRONG"
)

// Pool is the top-level pseudo-random byte producer: an ISAAC-32
// engine whitened through SHA3-256, with authenticated persistence
// and entropy-driven (re)seeding.
type Pool struct {
	engine *isaacengine.Engine

	logger *logging.Logger
}

// New creates an unseeded Pool.
func New() *Pool {
	return &Pool{
		engine: isaacengine.New(),
		logger: logging.GetLogger("pool"),
	}
}

// IsInitialized resumes the pool's engine from state at file under
// key and reports the outcome. On success the pool is ready to
// generate output; if the engine was already loaded from the same file
// and key it is left as is. On failure the engine is left
// uninitialized.
func (p *Pool) IsInitialized(file string, key []byte) Status {
	return statusFromErr(p.engine.Initialize(file, key))
}

// Initialize destroys any live state, sets file and key on the
// engine, then unconditionally captures multiplier units of fresh
// entropy and reseeds from scratch. It never attempts to resume
// persisted state — use IsInitialized to resume state from file, or
// InitializeOrResume for an operation that does
// both. It reports whether seeding succeeded.
func (p *Pool) Initialize(file string, multiplier int, key []byte) (bool, error) {
	p.Destroy()

	p.engine.SetIdentifier(file)
	p.engine.SetKey(key)

	if err := pipeline.GatherEntropyAndSeed(p.engine, multiplier); err != nil {
		return false, err
	}
	p.logger.Info("seeded generator from captured entropy", "file", file)
	return true, nil
}

// InitializeOrResume resumes persisted state from file under key if
// possible, falling back to Initialize (destroy and fresh-entropy
// reseed) otherwise. This combines IsInitialized-style resume with
// Initialize for callers, like the CLI, that want one operation to
// bring the pool up regardless of whether state already exists; it is
// not part of Initialize's own contract. It reports whether the state
// was freshly seeded (true) or resumed from file (false).
func (p *Pool) InitializeOrResume(file string, multiplier int, key []byte) (bool, error) {
	p.Destroy()

	p.engine.SetIdentifier(file)
	p.engine.SetKey(key)

	if err := p.engine.Initialize(file, key); err == nil {
		p.logger.Info("resumed generator state", "file", file)
		return false, nil
	}

	return p.Initialize(file, multiplier, key)
}

// InitializeEncryption sets the key used for future SaveState calls
// without disturbing live generator state.
func (p *Pool) InitializeEncryption(key []byte) {
	p.engine.SetKey(key)
}

// SaveState persists the current generator state.
func (p *Pool) SaveState() Status {
	return statusFromErr(p.engine.SaveState())
}

// Destroy saves state (if initialized), clears the key, and returns
// the pool to its unseeded state.
func (p *Pool) Destroy() {
	p.engine.Destroy()
}

// EntropyStrength reports the richness of the capture plan this build
// is compiled to use: STRONG when both audio and camera capture are
// available, MEDIUM when only camera is, and WEAK otherwise: both for
// an OS-only build and for a build with audio but no camera.
func (p *Pool) EntropyStrength() Strength {
	audio, camera := pipeline.Capabilities()
	switch {
	case audio && camera:
		return StrengthStrong
	case camera:
		return StrengthMedium
	default:
		return StrengthWeak
	}
}

// GenerateBlock fills output with size pseudo-random bytes. Every
// wordsPerDigest generator words are packed into a byte run and
// whitened through SHA3-256; the final run is truncated to fit if
// size is not an exact multiple of a digest's width. It returns
// rngerrors.ErrRngUninitialised if the engine has not been seeded.
func (p *Pool) GenerateBlock(output []byte, size int) error {
	if !p.engine.Initialized() {
		return rngerrors.ErrRngUninitialised
	}
	if size <= 0 {
		return nil
	}
	if len(output) < size {
		return errors.New("pool: output buffer smaller than requested size")
	}

	numDigests := (size + digestSize - 1) / digestSize

	words := make([]uint32, wordsPerDigest)
	raw := make([]byte, 0, wordsPerDigest*4)

	written := 0
	for i := 0; i < numDigests; i++ {
		for w := range words {
			words[w] = p.engine.Rand()
		}
		raw = bitconv.Uint32SliceToBytes(raw[:0], words)

		digest := sha3.Sum256(raw)

		remaining := size - written
		n := digestSize
		if remaining < n {
			n = remaining
		}
		copy(output[written:written+n], digest[:n])
		written += n
	}

	return nil
}
