// Package pipeline orchestrates the entropy sources into a seed for
// the ISAAC engine, gated by build-time capability flags that stand
// in for the original's audio/camera compile-time switches.
package pipeline

// withAudio and withCamera report whether this build was compiled
// with the "withaudio"/"withcamera" build tags, which enable the
// simulated microphone/camera entropy sources. Neither is enabled by
// default: without hardware, the OS source alone drives entropy
// mining.
var (
	withAudio  = false
	withCamera = false
)

// Capabilities reports which simulated capture backends this build
// was compiled with.
func Capabilities() (audio, camera bool) {
	return withAudio, withCamera
}
