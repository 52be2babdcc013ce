package device

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Logger defines the logging interface used by the Registry.
// This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Fetcher retrieves device descriptors from the add-on registry endpoint.
// The addon package provides the HTTP implementation.
type Fetcher interface {
	FetchDevices(ctx context.Context) ([]Descriptor, error)
}

// DeviceFetcher retrieves a single device record by MAC address.
// The addon client implements it alongside Fetcher; RefreshDevice requires it.
type DeviceFetcher interface {
	FetchDevice(ctx context.Context, mac string) (*Descriptor, error)
}

// Registry holds the in-memory set of known devices, keyed by MAC address.
//
// The cache is populated on startup via Refresh() and replaced wholesale on
// each subsequent refresh. Attribute and availability updates arriving over
// MQTT mutate the cached descriptors in place.
//
// All public methods are thread-safe.
type Registry struct {
	fetcher Fetcher
	cache   map[string]*Descriptor // Cached descriptors by MAC
	cacheMu sync.RWMutex           // Protects cache
	logger  Logger
}

// NewRegistry creates a new device registry backed by the given fetcher.
func NewRegistry(fetcher Fetcher) *Registry {
	return &Registry{
		fetcher: fetcher,
		cache:   make(map[string]*Descriptor),
		logger:  noopLogger{},
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger Logger) {
	r.logger = logger
}

// Refresh reloads all devices from the add-on registry into the cache.
// This is called on startup and periodically thereafter.
//
// Runtime state (attributes, online flag, RSSI) from the previous cache is
// carried over for devices that survive the refresh, so a registry poll does
// not discard state learned over MQTT.
func (r *Registry) Refresh(ctx context.Context) error {
	devices, err := r.fetcher.FetchDevices(ctx)
	if err != nil {
		return fmt.Errorf("fetching devices: %w", err)
	}

	r.cacheMu.Lock()
	defer r.cacheMu.Unlock()

	previous := r.cache
	r.cache = make(map[string]*Descriptor, len(devices))
	for i := range devices {
		d := devices[i].DeepCopy()
		if old, ok := previous[d.MAC]; ok {
			carryRuntimeState(d, old)
		}
		r.cache[d.MAC] = d
	}

	r.logger.Info("device registry refreshed", "count", len(devices))
	return nil
}

// RefreshDevice re-fetches a single device from the add-on registry and
// merges it into the cache, carrying runtime state over the same way
// Refresh does.
//
// Returns:
//   - error: ErrInvalidMAC for an empty MAC, the fetcher's error when the
//     lookup fails, or an error when the fetcher cannot look up single
//     devices
func (r *Registry) RefreshDevice(ctx context.Context, mac string) error {
	if mac == "" {
		return ErrInvalidMAC
	}
	fetcher, ok := r.fetcher.(DeviceFetcher)
	if !ok {
		return fmt.Errorf("fetcher does not support single-device refresh")
	}

	fetched, err := fetcher.FetchDevice(ctx, mac)
	if err != nil {
		return fmt.Errorf("fetching device %s: %w", mac, err)
	}

	r.cacheMu.Lock()
	defer r.cacheMu.Unlock()

	d := fetched.DeepCopy()
	if old, ok := r.cache[mac]; ok {
		carryRuntimeState(d, old)
	}
	r.cache[d.MAC] = d

	r.logger.Info("device refreshed", "mac", mac)
	return nil
}

// carryRuntimeState copies state learned over MQTT (availability, signal
// strength, last-seen, attributes the fresh record does not report) from
// the previous cache entry onto a freshly fetched descriptor.
func carryRuntimeState(d, old *Descriptor) {
	d.Online = old.Online
	d.RSSI = old.RSSI
	d.LastSeen = old.LastSeen
	for k, v := range old.Attributes {
		if _, reported := d.Attributes[k]; !reported {
			if d.Attributes == nil {
				d.Attributes = make(Attributes)
			}
			d.Attributes[k] = v
		}
	}
}

// Get retrieves a device by MAC address.
// Returns ErrDeviceNotFound if the device does not exist.
// The returned descriptor is a deep copy; callers can safely modify it.
func (r *Registry) Get(mac string) (*Descriptor, error) {
	r.cacheMu.RLock()
	defer r.cacheMu.RUnlock()

	cached, ok := r.cache[mac]
	if !ok {
		return nil, ErrDeviceNotFound
	}
	return cached.DeepCopy(), nil
}

// List retrieves all known devices.
// The returned descriptors are deep copies; callers can safely modify them.
func (r *Registry) List() []Descriptor {
	r.cacheMu.RLock()
	defer r.cacheMu.RUnlock()

	devices := make([]Descriptor, 0, len(r.cache))
	for _, d := range r.cache {
		devices = append(devices, *d.DeepCopy())
	}
	return devices
}

// ListByType retrieves all devices of a specific type.
func (r *Registry) ListByType(t DeviceType) []Descriptor {
	r.cacheMu.RLock()
	defer r.cacheMu.RUnlock()

	var devices []Descriptor
	for _, d := range r.cache {
		if d.Type == t {
			devices = append(devices, *d.DeepCopy())
		}
	}
	return devices
}

// ListByCapability retrieves all devices that support a specific capability.
func (r *Registry) ListByCapability(capability Capability) []Descriptor {
	r.cacheMu.RLock()
	defer r.cacheMu.RUnlock()

	var devices []Descriptor
	for _, d := range r.cache {
		if d.HasCapability(capability) {
			devices = append(devices, *d.DeepCopy())
		}
	}
	return devices
}

// SetAttribute records a reported attribute value for a device and returns
// the previous value.
//
// Returns:
//   - string: The previous value ("" if the attribute was never reported)
//   - bool: Whether the value actually changed
//   - error: ErrDeviceNotFound when the MAC is unknown
func (r *Registry) SetAttribute(mac, attribute, value string) (string, bool, error) {
	r.cacheMu.Lock()
	defer r.cacheMu.Unlock()

	cached, ok := r.cache[mac]
	if !ok {
		return "", false, ErrDeviceNotFound
	}

	if cached.Attributes == nil {
		cached.Attributes = make(Attributes)
	}
	old := cached.Attributes[attribute]
	cached.Attributes[attribute] = value
	now := time.Now().UTC()
	cached.LastSeen = &now

	changed := old != value
	if changed {
		r.logger.Debug("device attribute updated",
			"mac", mac, "attribute", attribute, "value", value)
	}
	return old, changed, nil
}

// SetOnline updates a device's availability flag.
// Returns ErrDeviceNotFound when the MAC is unknown.
func (r *Registry) SetOnline(mac string, online bool) error {
	r.cacheMu.Lock()
	defer r.cacheMu.Unlock()

	cached, ok := r.cache[mac]
	if !ok {
		return ErrDeviceNotFound
	}

	cached.Online = online
	if online {
		now := time.Now().UTC()
		cached.LastSeen = &now
	}

	r.logger.Debug("device availability updated", "mac", mac, "online", online)
	return nil
}

// SetRSSI records a device's reported Wi-Fi signal strength.
func (r *Registry) SetRSSI(mac string, rssi int) error {
	r.cacheMu.Lock()
	defer r.cacheMu.Unlock()

	cached, ok := r.cache[mac]
	if !ok {
		return ErrDeviceNotFound
	}
	cached.RSSI = rssi
	return nil
}

// SetAllOffline marks every cached device as unavailable.
// Called when the MQTT connection drops.
func (r *Registry) SetAllOffline() {
	r.cacheMu.Lock()
	defer r.cacheMu.Unlock()

	for _, d := range r.cache {
		d.Online = false
	}
	r.logger.Warn("all devices marked offline", "count", len(r.cache))
}

// Count returns the number of cached devices.
func (r *Registry) Count() int {
	r.cacheMu.RLock()
	defer r.cacheMu.RUnlock()
	return len(r.cache)
}

// Stats returns registry statistics for monitoring.
type Stats struct {
	TotalDevices int
	Online       int
	ByType       map[DeviceType]int
}

// GetStats returns current registry statistics.
func (r *Registry) GetStats() Stats {
	r.cacheMu.RLock()
	defer r.cacheMu.RUnlock()

	stats := Stats{
		TotalDevices: len(r.cache),
		ByType:       make(map[DeviceType]int),
	}

	for _, d := range r.cache {
		stats.ByType[d.Type]++
		if d.Online {
			stats.Online++
		}
	}

	return stats
}
