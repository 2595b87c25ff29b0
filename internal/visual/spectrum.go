// Package visual turns recent audio samples into per-column display values.
package visual

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

const (
	// FFTSize is the transform length; shorter windows are zero-padded.
	FFTSize = 2048
	// MinFrequency is the lower edge of the analysed voice band in Hz.
	MinFrequency = 100.0
	// MaxFrequency is the upper edge of the analysed voice band in Hz.
	MaxFrequency = 1500.0
	// CorrectionDB aligns FFT magnitudes with the RMS volume scale.
	CorrectionDB = -20.0
	// NoiseGateDB is how far below the reference level bins are gated to zero.
	NoiseGateDB = 35.0

	floorDB          = -100.0
	magnitudeEpsilon = 1e-10
	sampleScale      = 32768.0
)

// SpectrumAnalyzer band-averages a windowed FFT over the voice band into
// display bins and smooths them between frames.
type SpectrumAnalyzer struct {
	bins   []uint64
	fft    *fourier.FFT
	input  []float64
	coeffs []complex128
}

// NewSpectrumAnalyzer creates an analyzer with bins display columns, all zero.
func NewSpectrumAnalyzer(bins int) *SpectrumAnalyzer {
	return &SpectrumAnalyzer{
		bins:   make([]uint64, max(bins, 0)),
		fft:    fourier.NewFFT(FFTSize),
		input:  make([]float64, FFTSize),
		coeffs: make([]complex128, FFTSize/2+1),
	}
}

// Update computes a new frame from samples and averages it into the display.
func (a *SpectrumAnalyzer) Update(samples []int16, sampleRate uint32, referenceLevelDB float64) {
	computed := a.compute(samples, sampleRate, len(a.bins), referenceLevelDB)
	for i := range a.bins {
		a.bins[i] = (a.bins[i] + computed[i]) / 2
	}
}

// Resize changes the number of display bins and recomputes them from samples
// without smoothing. With no samples every bin is zero.
func (a *SpectrumAnalyzer) Resize(bins int, samples []int16, sampleRate uint32, referenceLevelDB float64) {
	a.bins = a.compute(samples, sampleRate, max(bins, 0), referenceLevelDB)
}

// Data returns the current bin values, each in 0..100.
func (a *SpectrumAnalyzer) Data() []uint64 {
	return a.bins
}

func (a *SpectrumAnalyzer) compute(samples []int16, sampleRate uint32, numBins int, referenceLevelDB float64) []uint64 {
	result := make([]uint64, numBins)
	if len(samples) == 0 || numBins == 0 || sampleRate == 0 {
		return result
	}

	n := min(len(samples), FFTSize)
	recent := samples[len(samples)-n:]
	for i, s := range recent {
		window := 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n)))
		a.input[i] = float64(s) * window / sampleScale
	}
	clear(a.input[n:])
	a.coeffs = a.fft.Coefficients(a.coeffs, a.input)

	resolution := float64(sampleRate) / FFTSize
	minBin := int(MinFrequency / resolution)
	maxBin := int(math.Min(MaxFrequency/resolution, FFTSize/2))
	useful := maxBin - minBin
	gate := referenceLevelDB - NoiseGateDB
	span := referenceLevelDB - gate

	for d := range result {
		start := minBin + d*useful/numBins
		if start >= maxBin {
			break
		}
		end := max(min(minBin+(d+1)*useful/numBins, maxBin), start+1)

		var sum float64
		count := 0
		for bin := start; bin < end && bin < FFTSize/2; bin++ {
			sum += cmplx.Abs(a.coeffs[bin])
			count++
		}
		if count == 0 {
			continue
		}

		db := floorDB
		if avg := sum / float64(count); avg > magnitudeEpsilon {
			db = 20 * math.Log10(avg)
		}
		adjusted := db + CorrectionDB
		if adjusted < gate {
			continue
		}
		result[d] = uint64(math.Max(0, math.Min(100, (adjusted-gate)/span*100)))
	}
	return result
}
