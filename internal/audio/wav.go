package audio

import (
	"fmt"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	wavBitDepth    = 16
	wavFormatPCM   = 1
	wavChunkFrames = 8192
)

// WriteWAV writes mono 16-bit samples to path as a PCM WAV file.
func WriteWAV(path string, samples []int16, sampleRate uint32) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create wav file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close wav file: %w", closeErr)
		}
	}()

	enc := wav.NewEncoder(f, int(sampleRate), wavBitDepth, 1, wavFormatPCM)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{SampleRate: int(sampleRate), NumChannels: 1},
		Data:           make([]int, 0, min(len(samples), wavChunkFrames)),
		SourceBitDepth: wavBitDepth,
	}
	if len(samples) == 0 {
		// Writing an empty buffer still emits the header.
		if err := enc.Write(buf); err != nil {
			return fmt.Errorf("write wav header: %w", err)
		}
	}
	for start := 0; start < len(samples); start += wavChunkFrames {
		chunk := samples[start:min(start+wavChunkFrames, len(samples))]
		buf.Data = buf.Data[:0]
		for _, s := range chunk {
			buf.Data = append(buf.Data, int(s))
		}
		if err := enc.Write(buf); err != nil {
			return fmt.Errorf("write wav samples: %w", err)
		}
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalize wav header: %w", err)
	}
	return nil
}
