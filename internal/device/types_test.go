package device

import (
	"testing"
	"time"
)

func TestDescriptor_DeepCopy(t *testing.T) {
	seen := time.Now().UTC()
	original := &Descriptor{
		MAC:          "B0:CE:18:00:00:01",
		Name:         "Kitchen Bulb",
		Type:         TypeBulb,
		Capabilities: []Capability{CapOnOff, CapBrightness},
		Attributes:   Attributes{"switch": "1"},
		Online:       true,
		LastSeen:     &seen,
	}

	cpy := original.DeepCopy()

	cpy.Attributes["switch"] = "0"
	cpy.Capabilities[0] = CapColorRGB
	*cpy.LastSeen = seen.Add(time.Hour)

	if original.Attributes["switch"] != "1" {
		t.Error("attribute map shared between copy and original")
	}
	if original.Capabilities[0] != CapOnOff {
		t.Error("capability slice shared between copy and original")
	}
	if !original.LastSeen.Equal(seen) {
		t.Error("LastSeen pointer shared between copy and original")
	}
}

func TestDescriptor_DeepCopy_Nil(t *testing.T) {
	var d *Descriptor
	if d.DeepCopy() != nil {
		t.Error("DeepCopy() of nil should return nil")
	}
}

func TestDescriptor_HasCapability(t *testing.T) {
	d := &Descriptor{Capabilities: []Capability{CapOnOff, CapBrightness}}

	if !d.HasCapability(CapOnOff) {
		t.Error("HasCapability(switch) = false, want true")
	}
	if d.HasCapability(CapColorRGB) {
		t.Error("HasCapability(color) = true, want false")
	}
}

func TestDefaultCapabilities(t *testing.T) {
	tests := []struct {
		name       string
		deviceType DeviceType
		want       []Capability
	}{
		{
			name:       "bulb gets full light set",
			deviceType: TypeBulb,
			want:       []Capability{CapOnOff, CapBrightness, CapColorTemperature, CapColorRGB},
		},
		{
			name:       "switch is on/off only",
			deviceType: TypeSwitch,
			want:       []Capability{CapOnOff},
		},
		{
			name:       "diffuser includes atomizer controls",
			deviceType: TypeDiffuser,
			want:       []Capability{CapOnOff, CapBrightness, CapColorRGB, CapAtomizerLevel, CapAtomizerMode},
		},
		{
			name:       "unknown type has no capabilities",
			deviceType: DeviceType("toaster"),
			want:       nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DefaultCapabilities(tt.deviceType)
			if len(got) != len(tt.want) {
				t.Fatalf("DefaultCapabilities(%s) length = %d, want %d", tt.deviceType, len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("DefaultCapabilities(%s)[%d] = %q, want %q", tt.deviceType, i, got[i], tt.want[i])
				}
			}
		})
	}
}
