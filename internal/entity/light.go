package entity

import (
	"fmt"

	"github.com/nerrad567/sengled-bridge/internal/device"
)

// Light exposes a Sengled bulb: on/off plus whichever of brightness, colour
// temperature and RGB colour the capability set allows.
type Light struct {
	base
}

// NewLight creates a light entity for the given descriptor.
func NewLight(d *device.Descriptor, commander Commander) *Light {
	return &Light{base: newBase(d, commander)}
}

// Kind returns KindLight.
func (l *Light) Kind() Kind { return KindLight }

// SetBrightness sets the brightness on the host scale (0-255).
// The wire carries a 0-100 percentage.
func (l *Light) SetBrightness(brightness int) error {
	if brightness < 0 || brightness > maxBrightness {
		return fmt.Errorf("%w: brightness %d out of range 0-%d", ErrInvalidValue, brightness, maxBrightness)
	}
	percent := brightnessToPercent(brightness)
	return l.send(device.CapBrightness, fmt.Sprintf("%d", percent))
}

// Brightness returns the last reported brightness on the host scale (0-255).
// The second return is false when the device has never reported brightness.
func (l *Light) Brightness() (int, bool) {
	percent, ok := l.intAttribute(string(device.CapBrightness))
	if !ok {
		return 0, false
	}
	return percentToBrightness(percent), true
}

// SetColorTemperature sets the colour temperature in Kelvin (2000-6500).
// The wire carries a 0-100 percentage from warmest to coolest.
func (l *Light) SetColorTemperature(kelvin int) error {
	if kelvin < minKelvin || kelvin > maxKelvin {
		return fmt.Errorf("%w: colour temperature %dK out of range %d-%dK",
			ErrInvalidValue, kelvin, minKelvin, maxKelvin)
	}
	percent := kelvinToPercent(kelvin)
	return l.send(device.CapColorTemperature, fmt.Sprintf("%d", percent))
}

// ColorTemperature returns the last reported colour temperature in Kelvin.
func (l *Light) ColorTemperature() (int, bool) {
	percent, ok := l.intAttribute(string(device.CapColorTemperature))
	if !ok {
		return 0, false
	}
	return percentToKelvin(percent), true
}

// SetRGB sets the colour. The wire format is "r:g:b" with 0-255 components.
func (l *Light) SetRGB(r, g, b int) error {
	for _, component := range []int{r, g, b} {
		if component < 0 || component > 255 {
			return fmt.Errorf("%w: rgb component %d out of range 0-255", ErrInvalidValue, component)
		}
	}
	return l.send(device.CapColorRGB, fmt.Sprintf("%d:%d:%d", r, g, b))
}

// RGB returns the last reported colour components.
func (l *Light) RGB() (r, g, b int, ok bool) {
	raw := l.attribute(string(device.CapColorRGB))
	if raw == "" {
		return 0, 0, 0, false
	}
	if _, err := fmt.Sscanf(raw, "%d:%d:%d", &r, &g, &b); err != nil {
		return 0, 0, 0, false
	}
	return r, g, b, true
}
