package audio

import "errors"

var (
	// ErrDeviceNotFound is returned when a device spec matches no input device.
	ErrDeviceNotFound = errors.New("audio input device not found")
	// ErrNoInputDevice is returned when the system exposes no usable input device.
	ErrNoInputDevice = errors.New("no audio input device found")
	// ErrStreamConfig is returned when a device cannot produce the requested format.
	ErrStreamConfig = errors.New("unsupported audio stream configuration")
	// ErrStreamStart is returned when the driver refuses to start a stream.
	ErrStreamStart = errors.New("failed to start audio stream")
	// ErrAlreadyCapturing is returned when Start is called on a running capture.
	ErrAlreadyCapturing = errors.New("capture already running")
	// ErrNotCapturing is returned when Stop is called without a running capture.
	ErrNotCapturing = errors.New("capture not running")
)

// DefaultDeviceSpec selects the system default input device.
const DefaultDeviceSpec = "default"

// Device represents an available audio input device.
type Device struct {
	// Index is the zero-based enumeration position.
	Index int `json:"index"`
	// Name is the device display name.
	Name string `json:"name"`
	// IsDefault reports whether the driver marks this device as the default input.
	IsDefault bool `json:"is_default,omitzero"`
}

// StreamConfig is the format requested from the driver.
// A zero Channels lets the driver pick the device's native channel count.
type StreamConfig struct {
	SampleRate uint32
	Channels   uint32
}

// FrameHandler receives interleaved 16-bit frames from the driver thread.
// The slice is only valid for the duration of the call.
type FrameHandler func(interleaved []int16, channels int)

// Backend enumerates input devices and opens capture streams.
type Backend interface {
	// Devices lists the available input devices.
	Devices() ([]Device, error)
	// Open prepares a capture stream. A nil device selects the driver default.
	Open(dev *Device, cfg StreamConfig, onFrames FrameHandler) (Stream, error)
}

// Stream is an opened capture stream.
type Stream interface {
	// Start begins delivering frames to the handler.
	Start() error
	// Stop tears the stream down. No handler call happens after Stop returns.
	Stop() error
	// SampleRate returns the rate negotiated with the driver.
	SampleRate() uint32
	// Channels returns the channel count negotiated with the driver.
	Channels() uint32
}
