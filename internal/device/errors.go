package device

import "errors"

// Domain errors for the device package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, device.ErrDeviceNotFound) {
//	    // handle not found case
//	}
var (
	// ErrDeviceNotFound is returned when a MAC address does not match any
	// registered device.
	ErrDeviceNotFound = errors.New("device: not found")

	// ErrInvalidMAC is returned when a MAC address is empty or malformed.
	ErrInvalidMAC = errors.New("device: invalid mac address")

	// ErrInvalidDeviceType is returned when a device type is not recognised.
	ErrInvalidDeviceType = errors.New("device: invalid type")

	// ErrInvalidCapability is returned when a capability is not recognised.
	ErrInvalidCapability = errors.New("device: invalid capability")
)
