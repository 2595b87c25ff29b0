package audio

import (
	"math"

	"github.com/oov/audio/resampler"
)

const (
	resampleQuality = 10
	resampleChunk   = 4096
)

// Resample converts mono samples from one rate to another.
// Equal rates return the input unchanged.
func Resample(samples []int16, fromRate, toRate uint32) []int16 {
	if fromRate == toRate || fromRate == 0 || toRate == 0 || len(samples) == 0 {
		return samples
	}

	r := resampler.New(1, int(fromRate), int(toRate), resampleQuality)
	in := make([]float32, len(samples))
	for i, s := range samples {
		in[i] = float32(s)
	}

	expected := int(uint64(len(samples)) * uint64(toRate) / uint64(fromRate))
	out := make([]int16, 0, expected+resampleChunk)
	scratch := make([]float32, resampleChunk)

	for len(in) > 0 {
		read, written := r.ProcessFloat32(0, in, scratch)
		out = appendClamped(out, scratch[:written])
		if read == 0 && written == 0 {
			break
		}
		in = in[read:]
	}
	return out
}

func appendClamped(dst []int16, src []float32) []int16 {
	for _, v := range src {
		v = float32(math.Round(float64(v)))
		switch {
		case v > math.MaxInt16:
			v = math.MaxInt16
		case v < math.MinInt16:
			v = math.MinInt16
		}
		dst = append(dst, int16(v))
	}
	return dst
}
