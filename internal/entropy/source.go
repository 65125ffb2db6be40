// Package entropy implements the RandomSource contract along with
// OS, simulated-microphone, and simulated-camera implementations.
package entropy

import (
	"fmt"
	"strings"
)

// Source is the contract all entropic sources implement.
//
// AppendData appends any currently buffered entropic bytes to dst and
// returns the grown slice; the source clears its internal buffer and
// bit-occurrence table as a side effect. BitEntropy returns the
// current bit-occurrence probability vector, normalized by the number
// of buffered samples.
type Source interface {
	AppendData(dst []byte) []byte
	BitEntropy() []float64
}

// FormatBitEntropy renders a bit-occurrence probability vector as a
// compact, human-readable line, one probability per bit position.
func FormatBitEntropy(v []float64) string {
	parts := make([]string, len(v))
	for i, p := range v {
		parts[i] = fmt.Sprintf("%.4f", p)
	}
	return strings.Join(parts, " ")
}
