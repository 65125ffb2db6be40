//go:build withcamera

package pipeline

func init() {
	withCamera = true
}
