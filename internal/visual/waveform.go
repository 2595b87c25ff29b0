package visual

import (
	"fmt"
	"slices"
)

// Kind selects the visualization drawn while recording.
type Kind string

const (
	// KindSpectrum draws the voice-band spectrum.
	KindSpectrum Kind = "spectrum"
	// KindWaveform draws a scrolling loudness trace.
	KindWaveform Kind = "waveform"
)

// ParseKind converts a config value into a Kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindSpectrum, KindWaveform:
		return k, nil
	case "":
		return KindSpectrum, nil
	default:
		return "", fmt.Errorf("unknown visualization %q", s)
	}
}

// WaveformTrace is a scrolling sequence of loudness values with the newest
// value last.
type WaveformTrace struct {
	values []uint64
}

// NewWaveformTrace creates a trace of width zeros.
func NewWaveformTrace(width int) *WaveformTrace {
	return &WaveformTrace{values: make([]uint64, max(width, 0))}
}

// Push appends value and drops the oldest entries beyond maxWidth.
func (w *WaveformTrace) Push(value uint8, maxWidth int) {
	w.values = append(w.values, uint64(value))
	if excess := len(w.values) - max(maxWidth, 0); excess > 0 {
		w.values = slices.Delete(w.values, 0, excess)
	}
}

// Resize trims the oldest entries when shrinking and pads zeros in front when growing.
func (w *WaveformTrace) Resize(width int) {
	width = max(width, 0)
	switch n := len(w.values); {
	case n > width:
		w.values = slices.Delete(w.values, 0, n-width)
	case n < width:
		w.values = slices.Insert(w.values, 0, make([]uint64, width-n)...)
	}
}

// Values returns the trace, oldest first.
func (w *WaveformTrace) Values() []uint64 {
	return w.values
}

// Len returns the number of entries in the trace.
func (w *WaveformTrace) Len() int {
	return len(w.values)
}
