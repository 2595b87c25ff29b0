package audio

import (
	"fmt"
	"strconv"
	"strings"
)

// ResolveDevice picks the device named by spec from devices.
//
// "default" (or an empty spec) selects the device the driver marks as default,
// or nil when none is marked so the backend falls back to its own default.
// A numeric spec selects by zero-based enumeration index. Anything else must
// match a device name exactly.
func ResolveDevice(devices []Device, spec string) (*Device, error) {
	if len(devices) == 0 {
		return nil, ErrNoInputDevice
	}

	spec = strings.TrimSpace(spec)
	if spec == "" || spec == DefaultDeviceSpec {
		for i := range devices {
			if devices[i].IsDefault {
				return &devices[i], nil
			}
		}
		return nil, nil
	}

	if index, err := strconv.Atoi(spec); err == nil {
		if index < 0 || index >= len(devices) {
			return nil, fmt.Errorf("%w: index %d out of range (%d devices available)", ErrDeviceNotFound, index, len(devices))
		}
		return &devices[index], nil
	}

	for i := range devices {
		if devices[i].Name == spec {
			return &devices[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrDeviceNotFound, spec)
}

// DeviceName returns a display name for dev, treating nil as the driver default.
func DeviceName(dev *Device) string {
	if dev == nil {
		return DefaultDeviceSpec
	}
	return dev.Name
}
