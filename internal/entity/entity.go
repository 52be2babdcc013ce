package entity

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/nerrad567/sengled-bridge/internal/device"
)

// Commander publishes attribute commands on behalf of an entity.
// It is satisfied by *bridge.Bridge.
type Commander interface {
	SendCommand(mac, attribute, value string) error
}

// base holds the state and behaviour shared by all entity kinds.
//
// Entity state is owned exclusively by the entity: only status messages with
// a matching MAC (delivered via ApplyStatus) and availability transitions
// mutate it. Setters never write state directly; the device echoes the new
// value on its status topic, which closes the loop.
type base struct {
	mac          string
	name         string
	capabilities []device.Capability
	commander    Commander

	mu        sync.RWMutex
	state     map[string]string
	available bool
}

func newBase(d *device.Descriptor, commander Commander) base {
	capabilities := make([]device.Capability, len(d.Capabilities))
	copy(capabilities, d.Capabilities)

	state := make(map[string]string, len(d.Attributes))
	for k, v := range d.Attributes {
		state[k] = v
	}

	return base{
		mac:          d.MAC,
		name:         d.Name,
		capabilities: capabilities,
		commander:    commander,
		state:        state,
		available:    d.Online,
	}
}

// MAC returns the device MAC address this entity wraps.
func (e *base) MAC() string { return e.mac }

// Name returns the display name from the registry.
func (e *base) Name() string { return e.name }

// Capabilities returns the entity's capability set.
func (e *base) Capabilities() []device.Capability {
	caps := make([]device.Capability, len(e.capabilities))
	copy(caps, e.capabilities)
	return caps
}

// Available reports whether the device is currently reachable.
func (e *base) Available() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.available
}

// SetAvailable updates the availability flag.
// Called by the manager on availability transitions.
func (e *base) SetAvailable(available bool) {
	e.mu.Lock()
	e.available = available
	e.mu.Unlock()
}

// ApplyStatus records a reported attribute value.
// Unknown attributes are stored as-is; devices report more attributes than
// the capability set covers and none of them should be lost.
func (e *base) ApplyStatus(attribute, value string) {
	e.mu.Lock()
	e.state[attribute] = value
	e.mu.Unlock()
}

// State returns a snapshot of all reported attribute values.
func (e *base) State() map[string]string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	snapshot := make(map[string]string, len(e.state))
	for k, v := range e.state {
		snapshot[k] = v
	}
	return snapshot
}

// attribute returns one reported value ("" if never reported).
func (e *base) attribute(name string) string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state[name]
}

// intAttribute returns one reported value parsed as an integer.
func (e *base) intAttribute(name string) (int, bool) {
	raw := e.attribute(name)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

// hasCapability reports whether the entity supports the given capability.
func (e *base) hasCapability(capability device.Capability) bool {
	for _, c := range e.capabilities {
		if c == capability {
			return true
		}
	}
	return false
}

// send performs the capability check and publishes a command.
// The check happens before the publish: a rejected command never reaches
// the broker.
func (e *base) send(capability device.Capability, value string) error {
	if !e.hasCapability(capability) {
		return fmt.Errorf("%w: %s does not support %s", ErrCapabilityUnsupported, e.mac, capability)
	}
	return e.commander.SendCommand(e.mac, string(capability), value)
}

// IsOn reports whether the device last reported itself switched on.
func (e *base) IsOn() bool {
	return e.attribute(string(device.CapOnOff)) == "1"
}

// SetOn switches the device on or off.
func (e *base) SetOn(on bool) error {
	value := "0"
	if on {
		value = "1"
	}
	return e.send(device.CapOnOff, value)
}

// Entity is the interface common to all entity kinds.
type Entity interface {
	MAC() string
	Name() string
	Kind() Kind
	Capabilities() []device.Capability
	Available() bool
	SetAvailable(available bool)
	ApplyStatus(attribute, value string)
	State() map[string]string
	IsOn() bool
	SetOn(on bool) error
}

// Kind identifies what an entity is exposed as.
type Kind string

// Entity kinds.
const (
	KindLight    Kind = "light"
	KindSwitch   Kind = "switch"
	KindDiffuser Kind = "diffuser"
)
