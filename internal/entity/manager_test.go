package entity

import (
	"errors"
	"testing"

	"github.com/nerrad567/sengled-bridge/internal/device"
)

func testDescriptors() []device.Descriptor {
	return []device.Descriptor{
		*bulbDescriptor(),
		*plugDescriptor(),
		*diffuserDescriptor(),
	}
}

// TestRebuild_OneEntityPerDevice verifies exactly one entity exists per
// descriptor, with matching identifier and kind.
func TestRebuild_OneEntityPerDevice(t *testing.T) {
	manager := NewManager(&fakeCommander{})
	manager.Rebuild(testDescriptors())

	if manager.Count() != 3 {
		t.Fatalf("Count() = %d, want 3", manager.Count())
	}

	tests := []struct {
		mac  string
		kind Kind
	}{
		{"B0:CE:18:00:00:01", KindLight},
		{"B0:CE:18:00:00:02", KindSwitch},
		{"B0:CE:18:00:00:03", KindDiffuser},
	}
	for _, tt := range tests {
		e, err := manager.Get(tt.mac)
		if err != nil {
			t.Fatalf("Get(%s) error = %v", tt.mac, err)
		}
		if e.MAC() != tt.mac {
			t.Errorf("entity MAC = %q, want %q", e.MAC(), tt.mac)
		}
		if e.Kind() != tt.kind {
			t.Errorf("entity kind for %s = %q, want %q", tt.mac, e.Kind(), tt.kind)
		}
	}
}

func TestRebuild_SkipsEmptyMAC(t *testing.T) {
	manager := NewManager(&fakeCommander{})
	manager.Rebuild([]device.Descriptor{{Name: "Ghost", Type: device.TypeBulb}})

	if manager.Count() != 0 {
		t.Errorf("Count() = %d, want 0", manager.Count())
	}
}

// TestRebuild_UnknownTypeFallback verifies unknown device types become a
// light when dimmable and a switch otherwise.
func TestRebuild_UnknownTypeFallback(t *testing.T) {
	manager := NewManager(&fakeCommander{})
	manager.Rebuild([]device.Descriptor{
		{
			MAC:          "B0:CE:18:00:00:10",
			Type:         device.DeviceType("strip"),
			Capabilities: []device.Capability{device.CapOnOff, device.CapBrightness},
		},
		{
			MAC:          "B0:CE:18:00:00:11",
			Type:         device.DeviceType("outlet"),
			Capabilities: []device.Capability{device.CapOnOff},
		},
	})

	strip, _ := manager.Get("B0:CE:18:00:00:10")
	if strip.Kind() != KindLight {
		t.Errorf("dimmable unknown type kind = %q, want light", strip.Kind())
	}
	outlet, _ := manager.Get("B0:CE:18:00:00:11")
	if outlet.Kind() != KindSwitch {
		t.Errorf("on/off unknown type kind = %q, want switch", outlet.Kind())
	}
}

func TestGet_NotFound(t *testing.T) {
	manager := NewManager(&fakeCommander{})
	manager.Rebuild(testDescriptors())

	_, err := manager.Get("B0:CE:18:FF:FF:FF")
	if !errors.Is(err, ErrEntityNotFound) {
		t.Errorf("Get() error = %v, want ErrEntityNotFound", err)
	}
}

// TestHandleAttribute routes a report to the matching entity only.
func TestHandleAttribute(t *testing.T) {
	manager := NewManager(&fakeCommander{})
	manager.Rebuild(testDescriptors())

	manager.HandleAttribute("B0:CE:18:00:00:01", "brightness", "60")

	bulb, _ := manager.Get("B0:CE:18:00:00:01")
	if bulb.State()["brightness"] != "60" {
		t.Errorf("bulb brightness = %q, want 60", bulb.State()["brightness"])
	}

	plug, _ := manager.Get("B0:CE:18:00:00:02")
	if _, ok := plug.State()["brightness"]; ok {
		t.Error("report leaked onto a different entity")
	}
}

// TestHandleAttribute_UnknownMAC verifies a report without an entity mutates
// nothing and does not panic.
func TestHandleAttribute_UnknownMAC(t *testing.T) {
	manager := NewManager(&fakeCommander{})
	manager.Rebuild(testDescriptors())

	manager.HandleAttribute("B0:CE:18:FF:FF:FF", "switch", "1")

	for _, e := range manager.All() {
		if _, ok := e.State()["switch"]; ok && e.State()["switch"] == "1" {
			t.Errorf("entity %s mutated by unknown mac report", e.MAC())
		}
	}
}

func TestHandleAvailability(t *testing.T) {
	manager := NewManager(&fakeCommander{})
	manager.Rebuild(testDescriptors())

	manager.HandleAvailability("B0:CE:18:00:00:01", true)

	bulb, _ := manager.Get("B0:CE:18:00:00:01")
	if !bulb.Available() {
		t.Error("bulb not available after online transition")
	}

	manager.HandleAvailability("B0:CE:18:00:00:01", false)
	if bulb.Available() {
		t.Error("bulb still available after offline transition")
	}

	// Unknown MAC is a no-op
	manager.HandleAvailability("B0:CE:18:FF:FF:FF", true)
}

func TestAll(t *testing.T) {
	manager := NewManager(&fakeCommander{})
	manager.Rebuild(testDescriptors())

	if len(manager.All()) != 3 {
		t.Errorf("All() length = %d, want 3", len(manager.All()))
	}
}
