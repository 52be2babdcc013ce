package entity

import "github.com/nerrad567/sengled-bridge/internal/device"

// Switch exposes a Sengled smart plug or relay: on/off only.
type Switch struct {
	base
}

// NewSwitch creates a switch entity for the given descriptor.
func NewSwitch(d *device.Descriptor, commander Commander) *Switch {
	return &Switch{base: newBase(d, commander)}
}

// Kind returns KindSwitch.
func (s *Switch) Kind() Kind { return KindSwitch }
