package audio

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// initialBufferSeconds sizes the sample buffer so short dictations never reallocate.
const initialBufferSeconds = 60

// Session describes one recording attempt.
type Session struct {
	// ID uniquely identifies the session.
	ID string
	// Device is the resolved device name.
	Device string
	// RequestedRate is the sample rate asked of the driver.
	RequestedRate uint32
	// SampleRate is the rate the driver actually delivers.
	SampleRate uint32
	// Channels is the channel count the driver actually delivers.
	Channels uint32
	// StartedAt is when the stream started.
	StartedAt time.Time

	pausedAt  time.Time
	pausedFor time.Duration
	stoppedAt time.Time
}

// Elapsed returns the recorded duration at now, excluding paused intervals.
func (s *Session) Elapsed(now time.Time) time.Duration {
	end := now
	if !s.stoppedAt.IsZero() {
		end = s.stoppedAt
	}
	if !s.pausedAt.IsZero() && s.pausedAt.Before(end) {
		end = s.pausedAt
	}
	return max(end.Sub(s.StartedAt)-s.pausedFor, 0)
}

func (s *Session) pause(now time.Time) {
	if s.pausedAt.IsZero() {
		s.pausedAt = now
	}
}

func (s *Session) resume(now time.Time) {
	if !s.pausedAt.IsZero() {
		s.pausedFor += now.Sub(s.pausedAt)
		s.pausedAt = time.Time{}
	}
}

func (s *Session) stop(now time.Time) {
	s.resume(now)
	s.stoppedAt = now
}

// Capture records mono samples from an input device into a SampleBuffer.
// It is safe for concurrent use.
type Capture struct {
	backend Backend
	buffer  *SampleBuffer
	clock   func() time.Time

	mu      sync.Mutex
	stream  Stream
	session *Session
}

// NewCapture creates a capture that opens streams through backend.
func NewCapture(backend Backend) *Capture {
	return &Capture{
		backend: backend,
		buffer:  NewSampleBuffer(0),
		clock:   time.Now,
	}
}

// Start resolves deviceSpec, opens a stream at requestedRate and starts it.
// It returns the negotiated sample rate, which may differ from the request.
func (c *Capture) Start(requestedRate uint32, deviceSpec string) (uint32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stream != nil {
		return 0, ErrAlreadyCapturing
	}

	devices, err := c.backend.Devices()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrNoInputDevice, err)
	}
	dev, err := ResolveDevice(devices, deviceSpec)
	if err != nil {
		return 0, err
	}

	stream, err := c.backend.Open(dev, StreamConfig{SampleRate: requestedRate}, c.onFrames)
	if err != nil {
		if !errors.Is(err, ErrStreamConfig) {
			err = fmt.Errorf("%w: %w", ErrStreamConfig, err)
		}
		return 0, err
	}

	negotiated := stream.SampleRate()
	if negotiated != requestedRate {
		slog.Warn("device sample rate differs from requested",
			"device", DeviceName(dev), "requested", requestedRate, "actual", negotiated)
	}

	c.buffer.Reset(int(negotiated) * initialBufferSeconds)
	c.buffer.SetPaused(false)

	if err := stream.Start(); err != nil {
		if stopErr := stream.Stop(); stopErr != nil {
			slog.Warn("failed to tear down stream after start failure", "error", stopErr)
		}
		if !errors.Is(err, ErrStreamStart) {
			err = fmt.Errorf("%w: %w", ErrStreamStart, err)
		}
		return 0, err
	}

	c.stream = stream
	c.session = &Session{
		ID:            uuid.NewString(),
		Device:        DeviceName(dev),
		RequestedRate: requestedRate,
		SampleRate:    negotiated,
		Channels:      stream.Channels(),
		StartedAt:     c.clock(),
	}

	slog.Info("audio capture started",
		"session", c.session.ID,
		"device", c.session.Device,
		"sample_rate", negotiated,
		"channels", c.session.Channels)
	return negotiated, nil
}

// onFrames runs on the driver thread. The buffer drops frames while paused.
func (c *Capture) onFrames(interleaved []int16, channels int) {
	c.buffer.AppendFrames(interleaved, channels)
}

// Stop tears down the stream and returns every recorded sample.
// The stream is stopped before the buffer is read.
func (c *Capture) Stop() ([]int16, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stream == nil {
		return nil, ErrNotCapturing
	}

	stopErr := c.stream.Stop()
	c.stream = nil
	c.session.stop(c.clock())
	c.buffer.SetPaused(false)

	samples := c.buffer.Drain()
	slog.Info("audio capture stopped",
		"session", c.session.ID,
		"samples", len(samples),
		"duration", c.session.Elapsed(c.clock()).Round(time.Millisecond))

	if stopErr != nil {
		return samples, fmt.Errorf("failed to stop audio stream: %w", stopErr)
	}
	return samples, nil
}

// Pause stops samples from accumulating without tearing down the stream.
func (c *Capture) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pauseLocked()
}

// Resume continues accumulating samples.
func (c *Capture) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resumeLocked()
}

// TogglePause flips the pause state and returns the new state.
func (c *Capture) TogglePause() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.buffer.Paused() {
		c.resumeLocked()
	} else {
		c.pauseLocked()
	}
	return c.buffer.Paused()
}

func (c *Capture) pauseLocked() {
	c.buffer.SetPaused(true)
	if c.session != nil {
		c.session.pause(c.clock())
	}
}

func (c *Capture) resumeLocked() {
	if c.session != nil {
		c.session.resume(c.clock())
	}
	c.buffer.SetPaused(false)
}

// IsPaused reports whether incoming frames are currently dropped.
func (c *Capture) IsPaused() bool {
	return c.buffer.Paused()
}

// SampleCount returns the number of recorded samples.
func (c *Capture) SampleCount() int {
	return c.buffer.Len()
}

// Snapshot returns a copy of every recorded sample.
func (c *Capture) Snapshot() []int16 {
	return c.buffer.Snapshot()
}

// Tail returns a copy of the newest n recorded samples.
func (c *Capture) Tail(n int) []int16 {
	return c.buffer.Tail(n)
}

// SampleRate returns the negotiated sample rate of the current or last session.
func (c *Capture) SampleRate() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return 0
	}
	return c.session.SampleRate
}

// Session returns a copy of the current or last session.
func (c *Capture) Session() (Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return Session{}, false
	}
	return *c.session, true
}

// Elapsed returns the recorded duration, excluding pauses.
func (c *Capture) Elapsed() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return 0
	}
	return c.session.Elapsed(c.clock())
}
