// Package audio provides microphone capture, the shared sample buffer and loudness metering.
package audio

import (
	"math"
	"time"
)

const (
	// SilenceDBFS is reported when the window RMS is exactly zero.
	SilenceDBFS = -160.0
	// FullScale is the largest positive 16-bit sample value.
	FullScale = 32767.0
	// MeterRangeDB is the span below the reference level that maps onto the meter.
	MeterRangeDB = 40.0
	// MeterFloor is the lowest value a non-empty window reports.
	MeterFloor = 4
	// MeterCeiling is the highest meter value.
	MeterCeiling = 100

	// volumeWindowDivisor selects a 50 ms window (sample rate / 20).
	volumeWindowDivisor = 20
)

// RMS returns the root mean square of samples.
// The mean square is taken with integer division before the square root.
func RMS(samples []int16) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sumSquares int64
	for _, s := range samples {
		v := int64(s)
		sumSquares += v * v
	}
	return math.Sqrt(float64(sumSquares / int64(len(samples))))
}

// DBFS converts an RMS amplitude to decibels relative to full scale.
func DBFS(rms float64) float64 {
	if rms == 0 {
		return SilenceDBFS
	}
	return 20 * math.Log10(rms/FullScale)
}

// NormalizeLevel maps a dBFS value onto the 4..100 meter scale.
// referenceLevelDB is the top of the scale; MeterRangeDB below it is the bottom.
func NormalizeLevel(dbfs, referenceLevelDB float64) uint8 {
	minDB := referenceLevelDB - MeterRangeDB
	value := (dbfs - minDB) / MeterRangeDB * 100
	return uint8(math.Max(MeterFloor, math.Min(MeterCeiling, value)))
}

// VolumeMeter converts recent samples into a 0..100 loudness value and
// tracks a peak-hold value alongside it.
type VolumeMeter struct {
	level uint8
	peak  *PeakHolder
}

// NewVolumeMeter creates a meter with the default peak-hold duration.
func NewVolumeMeter() *VolumeMeter {
	return &VolumeMeter{peak: NewPeakHolder()}
}

// Update measures the newest 50 ms of samples and returns the loudness.
func (m *VolumeMeter) Update(samples []int16, sampleRate uint32, referenceLevelDB float64) uint8 {
	return m.UpdateAt(samples, sampleRate, referenceLevelDB, time.Now())
}

// UpdateAt is Update with an explicit clock for the peak hold.
// An empty window reports 0 and leaves the peak untouched.
func (m *VolumeMeter) UpdateAt(samples []int16, sampleRate uint32, referenceLevelDB float64, now time.Time) uint8 {
	if len(samples) == 0 {
		m.level = 0
		return 0
	}

	window := min(int(sampleRate/volumeWindowDivisor), len(samples))
	if window == 0 {
		window = len(samples)
	}
	recent := samples[len(samples)-window:]

	m.level = NormalizeLevel(DBFS(RMS(recent)), referenceLevelDB)
	m.peak.Update(m.level, now)
	return m.level
}

// Level returns the last computed loudness.
func (m *VolumeMeter) Level() uint8 {
	return m.level
}

// Peak returns the held peak loudness.
func (m *VolumeMeter) Peak() uint8 {
	return m.peak.Held()
}

// Reset clears the level and the peak hold.
func (m *VolumeMeter) Reset() {
	m.level = 0
	m.peak.Reset()
}
