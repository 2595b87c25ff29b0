package audio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveDevice(t *testing.T) {
	devices := []Device{
		{Index: 0, Name: "Built-in Microphone"},
		{Index: 1, Name: "USB Headset", IsDefault: true},
		{Index: 2, Name: "42"},
	}

	tests := []struct {
		name    string
		spec    string
		want    string
		wantErr error
	}{
		{name: "default picks marked device", spec: "default", want: "USB Headset"},
		{name: "empty spec is default", spec: "", want: "USB Headset"},
		{name: "index", spec: "0", want: "Built-in Microphone"},
		{name: "index wins over numeric name", spec: "2", want: "42"},
		{name: "exact name", spec: "Built-in Microphone", want: "Built-in Microphone"},
		{name: "name is case sensitive", spec: "usb headset", wantErr: ErrDeviceNotFound},
		{name: "index out of range", spec: "7", wantErr: ErrDeviceNotFound},
		{name: "negative index", spec: "-1", wantErr: ErrDeviceNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev, err := ResolveDevice(devices, tt.spec)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, dev)
			assert.Equal(t, tt.want, dev.Name)
		})
	}
}

func TestResolveDeviceDefaultWithoutMarker(t *testing.T) {
	dev, err := ResolveDevice([]Device{{Index: 0, Name: "hw:0"}}, "default")
	require.NoError(t, err)
	assert.Nil(t, dev)
	assert.Equal(t, "default", DeviceName(dev))
}

func TestResolveDeviceNoDevices(t *testing.T) {
	_, err := ResolveDevice(nil, "default")
	assert.ErrorIs(t, err, ErrNoInputDevice)
}
