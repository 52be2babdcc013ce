// Package entity exposes registered devices as typed entities.
//
// Each device descriptor maps to exactly one entity: bulbs become lights,
// plugs become switches, diffusers become diffusers (a light plus atomizer
// controls). Entities translate typed setters (SetBrightness 0-255,
// SetColorTemperature in Kelvin, SetRGB) into single attribute commands on
// the Sengled wire format, and apply incoming status reports to their state.
//
// # Capability Checks
//
// Every setter validates the attribute against the entity's capability set
// before publishing. A command for an unsupported capability returns
// ErrCapabilityUnsupported and nothing reaches the broker.
//
// # State Ownership
//
// Entity state is only mutated by status reports routed through the Manager
// and by availability transitions. Setters do not write state optimistically;
// the device echoes the new value on its status topic.
package entity
