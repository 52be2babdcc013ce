package entity

import "errors"

// Sentinel errors for the entity package.
var (
	// ErrCapabilityUnsupported is returned when a setter is called on a
	// device whose capability set does not include that attribute. The
	// check happens before anything is published.
	ErrCapabilityUnsupported = errors.New("entity: capability not supported")

	// ErrInvalidValue is returned when a setter argument is out of range.
	ErrInvalidValue = errors.New("entity: invalid value")

	// ErrEntityNotFound is returned when no entity exists for a MAC address.
	ErrEntityNotFound = errors.New("entity: not found")
)
