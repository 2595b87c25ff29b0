package audio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaptureRecordsSineTone(t *testing.T) {
	backend := newFakeBackend()
	backend.total = 32000

	capture := NewCapture(backend)
	rate, err := capture.Start(16000, "default")
	require.NoError(t, err)
	assert.Equal(t, uint32(16000), rate)

	require.Eventually(t, func() bool {
		return capture.SampleCount() >= 32000
	}, 5*time.Second, 5*time.Millisecond)

	meter := NewVolumeMeter()
	first := meter.Update(capture.Tail(2048), rate, -20)
	second := meter.Update(capture.Tail(4096), rate, -20)

	samples, err := capture.Stop()
	require.NoError(t, err)
	assert.Len(t, samples, 32000)
	assert.True(t, backend.stream().stopped)

	assert.Greater(t, first, uint8(MeterFloor))
	assert.InDelta(t, float64(first), float64(second), 1)
	assert.Equal(t, first, meter.Update(samples, rate, -20))
}

func TestCaptureDownmixesStereo(t *testing.T) {
	backend := newFakeBackend()
	backend.channels = 2
	backend.total = 1600

	capture := NewCapture(backend)
	_, err := capture.Start(16000, "0")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return capture.SampleCount() >= 1600
	}, 5*time.Second, 5*time.Millisecond)

	samples, err := capture.Stop()
	require.NoError(t, err)
	require.Len(t, samples, 1600)

	session, ok := capture.Session()
	require.True(t, ok)
	assert.Equal(t, uint32(2), session.Channels)
	assert.Equal(t, "Fake Mic", session.Device)
}

func TestCapturePauseStopsAccumulation(t *testing.T) {
	backend := newFakeBackend()
	capture := NewCapture(backend)
	_, err := capture.Start(16000, "default")
	require.NoError(t, err)
	t.Cleanup(func() { _, _ = capture.Stop() })

	require.Eventually(t, func() bool {
		return capture.SampleCount() > 0
	}, 5*time.Second, time.Millisecond)

	assert.True(t, capture.TogglePause())
	assert.True(t, capture.IsPaused())

	paused := capture.SampleCount()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, paused, capture.SampleCount())

	capture.Resume()
	assert.False(t, capture.IsPaused())
	require.Eventually(t, func() bool {
		return capture.SampleCount() > paused
	}, 5*time.Second, time.Millisecond)
}

func TestCaptureElapsedExcludesPauses(t *testing.T) {
	backend := newFakeBackend()
	capture := NewCapture(backend)

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	capture.clock = func() time.Time { return now }

	_, err := capture.Start(16000, "default")
	require.NoError(t, err)

	now = now.Add(10 * time.Second)
	capture.Pause()
	now = now.Add(5 * time.Second)
	assert.Equal(t, 10*time.Second, capture.Elapsed())

	capture.Resume()
	now = now.Add(3 * time.Second)
	assert.Equal(t, 13*time.Second, capture.Elapsed())

	_, err = capture.Stop()
	require.NoError(t, err)
	now = now.Add(time.Minute)
	assert.Equal(t, 13*time.Second, capture.Elapsed())
}

func TestCaptureReportsNegotiatedRate(t *testing.T) {
	backend := newFakeBackend()
	backend.rate = 48000

	capture := NewCapture(backend)
	rate, err := capture.Start(16000, "default")
	require.NoError(t, err)
	t.Cleanup(func() { _, _ = capture.Stop() })

	assert.Equal(t, uint32(48000), rate)
	assert.Equal(t, uint32(48000), capture.SampleRate())
}

func TestCaptureStartErrors(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(b *fakeBackend)
		spec    string
		wantErr error
	}{
		{
			name:    "no devices",
			setup:   func(b *fakeBackend) { b.devices = nil },
			spec:    "default",
			wantErr: ErrNoInputDevice,
		},
		{
			name:    "enumeration failure",
			setup:   func(b *fakeBackend) { b.devicesErr = errFakeDriver },
			spec:    "default",
			wantErr: ErrNoInputDevice,
		},
		{
			name:    "unknown name",
			setup:   func(*fakeBackend) {},
			spec:    "USB Headset",
			wantErr: ErrDeviceNotFound,
		},
		{
			name:    "open failure",
			setup:   func(b *fakeBackend) { b.openErr = errFakeDriver },
			spec:    "default",
			wantErr: ErrStreamConfig,
		},
		{
			name:    "start failure",
			setup:   func(b *fakeBackend) { b.startErr = errFakeDriver },
			spec:    "default",
			wantErr: ErrStreamStart,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := newFakeBackend()
			tt.setup(backend)

			capture := NewCapture(backend)
			_, err := capture.Start(16000, tt.spec)
			require.ErrorIs(t, err, tt.wantErr)

			_, err = capture.Stop()
			assert.ErrorIs(t, err, ErrNotCapturing)
		})
	}
}

func TestCaptureStartFailureTearsDownStream(t *testing.T) {
	backend := newFakeBackend()
	backend.startErr = errFakeDriver

	_, err := NewCapture(backend).Start(16000, "default")
	require.ErrorIs(t, err, errFakeDriver)
	assert.True(t, backend.stream().stopped)
}

func TestCaptureRejectsDoubleStart(t *testing.T) {
	capture := NewCapture(newFakeBackend())
	_, err := capture.Start(16000, "default")
	require.NoError(t, err)
	t.Cleanup(func() { _, _ = capture.Stop() })

	_, err = capture.Start(16000, "default")
	assert.ErrorIs(t, err, ErrAlreadyCapturing)
}
