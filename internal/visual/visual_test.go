package visual

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tone(freq float64, amplitude float64, rate uint32, n int) []int16 {
	s := make([]int16, n)
	for i := range s {
		s[i] = int16(amplitude * math.MaxInt16 * math.Sin(2*math.Pi*freq*float64(i)/float64(rate)))
	}
	return s
}

func TestSpectrumSilenceIsZero(t *testing.T) {
	a := NewSpectrumAnalyzer(64)
	a.Update(make([]int16, 4096), 16000, -20)
	for i, v := range a.Data() {
		require.Zero(t, v, "bin %d", i)
	}

	a.Resize(30, make([]int16, 100), 16000, -20)
	assert.Equal(t, make([]uint64, 30), a.Data())
}

func TestSpectrumResizeSetsBinCount(t *testing.T) {
	samples := tone(440, 0.3, 16000, 4096)
	a := NewSpectrumAnalyzer(80)
	a.Update(samples, 16000, -20)

	for _, width := range []int{40, 1, 200, 0, 80} {
		a.Resize(width, samples, 16000, -20)
		require.Len(t, a.Data(), width)
		a.Update(samples, 16000, -20)
		require.Len(t, a.Data(), width)
	}

	a.Resize(25, nil, 16000, -20)
	assert.Equal(t, make([]uint64, 25), a.Data())
}

func TestSpectrumLocalizesTone(t *testing.T) {
	const bins = 28 // 50 Hz per bin across 100..1500 Hz
	a := NewSpectrumAnalyzer(bins)
	samples := tone(800, 0.5, 16000, 2048)
	a.Resize(bins, samples, 16000, -20)

	data := a.Data()
	peak := 0
	for i, v := range data {
		assert.LessOrEqual(t, v, uint64(100))
		if v > data[peak] {
			peak = i
		}
	}
	assert.Positive(t, data[peak])
	// 800 Hz sits 700 Hz into the band.
	assert.InDelta(t, 14, peak, 1)
	assert.Zero(t, data[0])
	assert.Zero(t, data[bins-1])
}

func TestSpectrumSmoothing(t *testing.T) {
	samples := tone(500, 0.5, 16000, 2048)
	fresh := NewSpectrumAnalyzer(20)
	fresh.Resize(20, samples, 16000, -20)
	target := append([]uint64(nil), fresh.Data()...)

	a := NewSpectrumAnalyzer(20)
	a.Update(samples, 16000, -20)
	for i := range target {
		assert.Equal(t, target[i]/2, a.Data()[i], "bin %d", i)
	}

	a.Update(make([]int16, 2048), 16000, -20)
	for i := range target {
		assert.Equal(t, target[i]/4, a.Data()[i], "bin %d", i)
	}
}

func TestSpectrumShortWindowAndLowRate(t *testing.T) {
	a := NewSpectrumAnalyzer(10)
	a.Update(tone(300, 0.5, 8000, 100), 8000, -20)
	require.Len(t, a.Data(), 10)

	a.Resize(10, tone(300, 0.5, 8000, 100), 0, -20)
	assert.Equal(t, make([]uint64, 10), a.Data())
}

func TestWaveformNeverExceedsMaxWidth(t *testing.T) {
	w := NewWaveformTrace(0)
	rng := rand.New(rand.NewPCG(1, 2))
	width := 50
	for range 2000 {
		switch rng.IntN(10) {
		case 0:
			width = rng.IntN(120)
			w.Resize(width)
			require.Equal(t, width, w.Len())
		default:
			w.Push(uint8(rng.IntN(101)), width)
		}
		require.LessOrEqual(t, w.Len(), width)
	}
}

func TestWaveformScrollsAndResizes(t *testing.T) {
	w := NewWaveformTrace(3)
	w.Push(10, 3)
	w.Push(20, 3)
	assert.Equal(t, []uint64{0, 10, 20}, w.Values())

	w.Push(30, 3)
	w.Push(40, 3)
	assert.Equal(t, []uint64{20, 30, 40}, w.Values())

	w.Resize(5)
	assert.Equal(t, []uint64{0, 0, 20, 30, 40}, w.Values())

	w.Resize(2)
	assert.Equal(t, []uint64{30, 40}, w.Values())

	// Shrinking max width through Push drops every excess entry at once.
	w.Resize(6)
	w.Push(50, 2)
	assert.Equal(t, []uint64{40, 50}, w.Values())
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("waveform")
	require.NoError(t, err)
	assert.Equal(t, KindWaveform, k)

	k, err = ParseKind("")
	require.NoError(t, err)
	assert.Equal(t, KindSpectrum, k)

	_, err = ParseKind("oscilloscope")
	assert.Error(t, err)
}
