package addon

import "errors"

// Sentinel errors for the addon package.
var (
	// ErrRegistryUnavailable is returned when the add-on device registry
	// cannot be reached, rejects the request, or returns a response that
	// cannot be decoded. Setup treats this as fatal.
	ErrRegistryUnavailable = errors.New("addon: registry unavailable")

	// ErrDeviceNotFound is returned when the registry has no record for
	// the requested MAC address.
	ErrDeviceNotFound = errors.New("addon: device not found")
)
