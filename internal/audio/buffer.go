package audio

import (
	"slices"
	"sync"
)

// SampleBuffer is a growable sequence of mono 16-bit samples shared between
// the driver callback and its readers.
// It is safe for concurrent use.
type SampleBuffer struct {
	mu      sync.Mutex
	samples []int16
	paused  bool
}

// NewSampleBuffer creates a buffer with room for capacity samples before it grows.
func NewSampleBuffer(capacity int) *SampleBuffer {
	return &SampleBuffer{samples: make([]int16, 0, max(capacity, 0))}
}

// AppendFrames downmixes interleaved frames to mono and appends them, or
// drops them while the buffer is paused. The lock covers the whole append so
// readers never see a partial frame.
func (b *SampleBuffer) AppendFrames(interleaved []int16, channels int) {
	b.mu.Lock()
	if !b.paused {
		b.samples = appendDownmixed(b.samples, interleaved, channels)
	}
	b.mu.Unlock()
}

// SetPaused gates AppendFrames. Once it returns, no frame is appended until
// the buffer is unpaused.
func (b *SampleBuffer) SetPaused(paused bool) {
	b.mu.Lock()
	b.paused = paused
	b.mu.Unlock()
}

// Paused reports whether incoming frames are dropped.
func (b *SampleBuffer) Paused() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.paused
}

// Len returns the number of samples held.
func (b *SampleBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.samples)
}

// Snapshot returns a copy of all samples.
func (b *SampleBuffer) Snapshot() []int16 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.samples)
}

// Tail returns a copy of the newest n samples, or fewer if not available.
func (b *SampleBuffer) Tail(n int) []int16 {
	b.mu.Lock()
	defer b.mu.Unlock()
	start := max(len(b.samples)-n, 0)
	return slices.Clone(b.samples[start:])
}

// Drain returns all samples and leaves the buffer empty.
func (b *SampleBuffer) Drain() []int16 {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.samples
	b.samples = nil
	return out
}

// Reset discards all samples and reserves room for capacity samples.
func (b *SampleBuffer) Reset(capacity int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if cap(b.samples) < capacity {
		b.samples = make([]int16, 0, capacity)
		return
	}
	b.samples = b.samples[:0]
}
