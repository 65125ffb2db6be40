//go:build withaudio

package pipeline

func init() {
	withAudio = true
}
