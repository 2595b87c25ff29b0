// Package miniaudio implements the audio capture backend on top of miniaudio via malgo.
package miniaudio

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/gen2brain/malgo"

	"github.com/oszuidwest/zwfm-dictate/internal/audio"
)

const bytesPerSample = 2

// Backend enumerates and opens capture devices through a miniaudio context.
// It is safe for concurrent use.
type Backend struct {
	mu  sync.Mutex
	ctx *malgo.AllocatedContext
}

// New initializes a miniaudio context. Driver diagnostics are logged at
// debug level instead of being written to the terminal.
func New() (*Backend, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(message string) {
		slog.Debug("miniaudio", "message", strings.TrimSpace(message))
	})
	if err != nil {
		return nil, fmt.Errorf("%w: init audio context: %w", audio.ErrNoInputDevice, err)
	}
	return &Backend{ctx: ctx}, nil
}

// Close releases the miniaudio context.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ctx == nil {
		return nil
	}
	err := b.ctx.Uninit()
	b.ctx.Free()
	b.ctx = nil
	if err != nil {
		return fmt.Errorf("failed to release audio context: %w", err)
	}
	return nil
}

// Devices lists the capture devices in driver enumeration order.
func (b *Backend) Devices() ([]audio.Device, error) {
	infos, err := b.captureInfos()
	if err != nil {
		return nil, err
	}
	devices := make([]audio.Device, len(infos))
	for i := range infos {
		devices[i] = audio.Device{
			Index:     i,
			Name:      infos[i].Name(),
			IsDefault: infos[i].IsDefault != 0,
		}
	}
	return devices, nil
}

func (b *Backend) captureInfos() ([]malgo.DeviceInfo, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ctx == nil {
		return nil, fmt.Errorf("%w: audio context closed", audio.ErrNoInputDevice)
	}
	infos, err := b.ctx.Devices(malgo.Capture)
	if err != nil {
		return nil, fmt.Errorf("enumerate capture devices: %w", err)
	}
	return infos, nil
}

// Open prepares a 16-bit capture stream on dev, or on the driver default when dev is nil.
func (b *Backend) Open(dev *audio.Device, cfg audio.StreamConfig, onFrames audio.FrameHandler) (audio.Stream, error) {
	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatS16
	deviceConfig.Capture.Channels = cfg.Channels
	deviceConfig.SampleRate = cfg.SampleRate
	deviceConfig.Alsa.NoMMap = 1

	if dev != nil {
		infos, err := b.captureInfos()
		if err != nil {
			return nil, err
		}
		if dev.Index < 0 || dev.Index >= len(infos) || infos[dev.Index].Name() != dev.Name {
			return nil, fmt.Errorf("%w: %q is no longer available", audio.ErrDeviceNotFound, dev.Name)
		}
		deviceConfig.Capture.DeviceID = infos[dev.Index].ID.Pointer()
	}

	s := &stream{onFrames: onFrames}
	callbacks := malgo.DeviceCallbacks{Data: s.data}

	b.mu.Lock()
	if b.ctx == nil {
		b.mu.Unlock()
		return nil, fmt.Errorf("%w: audio context closed", audio.ErrNoInputDevice)
	}
	device, err := malgo.InitDevice(b.ctx.Context, deviceConfig, callbacks)
	b.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", audio.ErrStreamConfig, audio.DeviceName(dev), err)
	}
	s.device = device

	slog.Debug("capture device initialized",
		"device", audio.DeviceName(dev),
		"sample_rate", device.SampleRate(),
		"channels", device.CaptureChannels())
	return s, nil
}

// stream adapts a malgo device to audio.Stream.
type stream struct {
	device   *malgo.Device
	onFrames audio.FrameHandler

	// scratch is only touched from the driver callback.
	scratch []int16

	stopOnce sync.Once
	stopErr  error
}

// data converts raw S16LE bytes into samples and hands them on.
// The scratch slice only grows when the driver delivers a larger period.
func (s *stream) data(_, input []byte, frameCount uint32) {
	if frameCount == 0 || len(input) == 0 {
		return
	}
	n := len(input) / bytesPerSample
	if cap(s.scratch) < n {
		s.scratch = make([]int16, n)
	}
	samples := s.scratch[:n]
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(input[i*bytesPerSample:]))
	}
	s.onFrames(samples, n/int(frameCount))
}

func (s *stream) Start() error {
	if err := s.device.Start(); err != nil {
		return fmt.Errorf("%w: %w", audio.ErrStreamStart, err)
	}
	return nil
}

func (s *stream) Stop() error {
	s.stopOnce.Do(func() {
		if err := s.device.Stop(); err != nil {
			s.stopErr = fmt.Errorf("stop capture device: %w", err)
		}
		s.device.Uninit()
	})
	return s.stopErr
}

func (s *stream) SampleRate() uint32 {
	return s.device.SampleRate()
}

func (s *stream) Channels() uint32 {
	return s.device.CaptureChannels()
}
