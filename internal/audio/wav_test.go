package audio

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "take.wav")
	samples := make([]int16, 20000)
	for i := range samples {
		samples[i] = int16(i%200*100 - 10000)
	}

	require.NoError(t, WriteWAV(path, samples, 16000))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	dec := wav.NewDecoder(f)
	require.True(t, dec.IsValidFile())
	buf, err := dec.FullPCMBuffer()
	require.NoError(t, err)

	assert.Equal(t, 16000, buf.Format.SampleRate)
	assert.Equal(t, 1, buf.Format.NumChannels)
	assert.Equal(t, 16, int(dec.BitDepth))
	require.Len(t, buf.Data, len(samples))
	for i, s := range samples {
		require.Equal(t, int(s), buf.Data[i], "sample %d", i)
	}
}

func TestWriteWAVEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.wav")
	require.NoError(t, WriteWAV(path, nil, 16000))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestResample(t *testing.T) {
	in := make([]int16, 48000)
	for i := range in {
		in[i] = int16(8000 * math.Sin(2*math.Pi*440*float64(i)/48000))
	}

	out := Resample(in, 48000, 16000)
	assert.InDelta(t, 16000, len(out), 200)
	assert.InDelta(t, RMS(in[24000:]), RMS(out[8000:]), 300)

	assert.Equal(t, in, Resample(in, 16000, 16000))
}
