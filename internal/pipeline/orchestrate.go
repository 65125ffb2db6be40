package pipeline

import (
	"time"

	"github.com/entropypool/isaacrand/common/logging"
	"github.com/entropypool/isaacrand/internal/entropy"
	"github.com/entropypool/isaacrand/internal/isaacengine"
	"github.com/entropypool/isaacrand/internal/seedmix"
)

// SeedTerms is the number of 32-bit words the engine is seeded with.
const SeedTerms = isaacengine.N

// EntropySplit is the number of independent rolling hashes the mixer
// splits captured entropy across.
const EntropySplit = 16

// Burn is the number of generator outputs discarded immediately after
// seeding, so the first bytes ever served are not adjacent to the
// mixing rounds that consumed the raw seed material.
const Burn = 512

// baseOSBytes is the unscaled number of CSPRNG bytes drawn from the OS
// source; the actual draw is baseOSBytes*pow2(multiplier+compensation).
const baseOSBytes = 25 << 20

// baseCaptureFrames is the unscaled number of camera frames drawn;
// the actual draw is baseCaptureFrames*pow2(multiplier).
const baseCaptureFrames = 15

// micSleep is how long the microphone is left capturing before it is
// stopped and drained.
const micSleep = 1000 * time.Millisecond

var orchestratorLogger = logging.GetLogger("pipeline")

func pow2(k int) int {
	if k < 0 {
		return 1
	}
	return 1 << uint(k)
}

// GatherEntropyAndSeed drains whichever capture devices this build was
// compiled with into a Mixer, derives SeedTerms seed words from the
// result, and seeds engine with them. multiplier scales how much raw
// entropy is captured before mixing.
//
// The capture volumes and feed ordering below follow the three
// capability-gated plans this orchestration was derived from:
// audio(+camera)+OS, camera+OS, and OS alone.
func GatherEntropyAndSeed(engine *isaacengine.Engine, multiplier int) error {
	if multiplier < 0 {
		multiplier = 0
	}

	mixer := seedmix.New(EntropySplit)
	osSrc := entropy.NewOSSource()

	switch {
	case withAudio:
		mic := entropy.NewMicrophoneSource()
		if err := mic.InitFlow(); err != nil {
			return err
		}

		compensation := 1
		var cam *entropy.CameraSource
		if withCamera {
			compensation = 0
			cam = entropy.NewCameraSource()
			if err := cam.CaptureFrames(baseCaptureFrames * pow2(multiplier)); err != nil {
				_ = mic.StopFlow()
				return err
			}
		}

		if err := osSrc.Generate(baseOSBytes * pow2(multiplier+compensation)); err != nil {
			_ = mic.StopFlow()
			return err
		}

		time.Sleep(micSleep)
		if err := mic.StopFlow(); err != nil {
			return err
		}

		if cam != nil {
			if err := mixer.ProcessFromSource(cam); err != nil {
				return err
			}
		}
		if err := mixer.ProcessFromSource(osSrc); err != nil {
			return err
		}
		if err := mixer.ProcessFromSource(mic); err != nil {
			return err
		}

	case withCamera:
		cam := entropy.NewCameraSource()
		if err := cam.CaptureFrames(baseCaptureFrames * pow2(multiplier)); err != nil {
			return err
		}
		if err := osSrc.Generate(baseOSBytes * pow2(multiplier+1)); err != nil {
			return err
		}

		if err := mixer.ProcessFromSource(cam); err != nil {
			return err
		}
		if err := mixer.ProcessFromSource(osSrc); err != nil {
			return err
		}

	default:
		if err := osSrc.Generate(baseOSBytes * pow2(multiplier+2)); err != nil {
			return err
		}
		if err := mixer.ProcessFromSource(osSrc); err != nil {
			return err
		}
	}

	mixer.GenerateSeed()

	seed := make([]uint32, SeedTerms)
	seedmix.CopySeed(mixer, seed)

	engine.Seed(0, 0, 0, seed)

	for i := 0; i < Burn; i++ {
		engine.Rand()
	}

	orchestratorLogger.Info("seeded from captured entropy", "audio", withAudio, "camera", withCamera, "multiplier", multiplier)
	return nil
}
