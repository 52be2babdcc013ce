package device

import "time"

// Descriptor describes one physical Sengled Wi-Fi device as reported by the
// add-on registry. Descriptors are created from the HTTP registry response
// and replaced wholesale on re-discovery; runtime state (attributes, online,
// RSSI) is the only part mutated afterwards.
type Descriptor struct {
	// Identity
	MAC  string `json:"mac"`
	Name string `json:"name"`

	// Classification
	Type DeviceType `json:"type"`

	// Metadata reported by the registry
	Model           string `json:"model,omitempty"`
	FirmwareVersion string `json:"firmware_version,omitempty"`

	// Capabilities supported by this device. Determined at descriptor
	// creation time from the registry record; never mutated.
	Capabilities []Capability `json:"capabilities"`

	// Attributes holds the last reported value per attribute name
	// (e.g. "switch" -> "1", "brightness" -> "75").
	Attributes Attributes `json:"attributes"`

	// Runtime health
	Online   bool       `json:"online"`
	RSSI     int        `json:"rssi,omitempty"`
	LastSeen *time.Time `json:"last_seen,omitempty"`
}

// Attributes holds reported device attribute values keyed by attribute name.
// Sengled devices report every value as a string on the wire.
type Attributes map[string]string

// DeepCopy creates an independent copy of the Descriptor.
// The capability slice and attribute map are cloned so modifications to the
// copy do not affect the original. This is essential for cache isolation.
func (d *Descriptor) DeepCopy() *Descriptor {
	if d == nil {
		return nil
	}

	cpy := *d // Shallow copy of value fields

	if d.Capabilities != nil {
		cpy.Capabilities = make([]Capability, len(d.Capabilities))
		copy(cpy.Capabilities, d.Capabilities)
	}

	if d.Attributes != nil {
		cpy.Attributes = make(Attributes, len(d.Attributes))
		for k, v := range d.Attributes {
			cpy.Attributes[k] = v
		}
	}

	if d.LastSeen != nil {
		seen := *d.LastSeen
		cpy.LastSeen = &seen
	}

	return &cpy
}

// HasCapability reports whether the device supports the given capability.
func (d *Descriptor) HasCapability(capability Capability) bool {
	for _, c := range d.Capabilities {
		if c == capability {
			return true
		}
	}
	return false
}

// DeviceType represents the kind of Sengled device.
type DeviceType string //nolint:revive // device.DeviceType is clearer than device.Type in calling code

// Device type constants.
const (
	TypeBulb     DeviceType = "bulb"
	TypeSwitch   DeviceType = "switch"
	TypeDiffuser DeviceType = "diffuser"
)

// AllDeviceTypes returns all valid device type values.
func AllDeviceTypes() []DeviceType {
	return []DeviceType{TypeBulb, TypeSwitch, TypeDiffuser}
}

// Capability represents what a device can do. Capability names match the
// attribute names used on the MQTT wire, so a capability doubles as the
// attribute key for commands and status reports.
type Capability string

// Capability constants.
const (
	CapOnOff            Capability = "switch"
	CapBrightness       Capability = "brightness"
	CapColorTemperature Capability = "colorTemperature" //nolint:misspell // Sengled wire format uses American "color"
	CapColorRGB         Capability = "color"            //nolint:misspell // Sengled wire format uses American "color"
	CapAtomizerLevel    Capability = "atomizationLevel"
	CapAtomizerMode     Capability = "atomizationMode"
)

// AllCapabilities returns all valid capability values.
func AllCapabilities() []Capability {
	return []Capability{
		CapOnOff, CapBrightness, CapColorTemperature, CapColorRGB,
		CapAtomizerLevel, CapAtomizerMode,
	}
}

// DefaultCapabilities returns the capability set implied by a device type.
// Used when the registry record does not list capabilities explicitly.
func DefaultCapabilities(t DeviceType) []Capability {
	switch t {
	case TypeBulb:
		return []Capability{CapOnOff, CapBrightness, CapColorTemperature, CapColorRGB}
	case TypeSwitch:
		return []Capability{CapOnOff}
	case TypeDiffuser:
		return []Capability{CapOnOff, CapBrightness, CapColorRGB, CapAtomizerLevel, CapAtomizerMode}
	default:
		return nil
	}
}

// Well-known attribute names that are reported by devices but are not
// controllable capabilities.
const (
	AttrOnline = "online"
	AttrRSSI   = "rssi"
)
