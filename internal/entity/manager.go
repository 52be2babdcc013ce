package entity

import (
	"sync"

	"github.com/nerrad567/sengled-bridge/internal/device"
)

// Logger defines the logging interface used by the Manager.
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

// Manager owns the live entities, exactly one per registered device.
//
// It implements the bridge's StatusHandler so incoming attribute reports and
// availability transitions land on the matching entity. Status for a MAC
// without an entity is ignored.
//
// Thread Safety: All methods are safe for concurrent use.
type Manager struct {
	commander Commander
	entities  map[string]Entity // by MAC
	mu        sync.RWMutex
	logger    Logger
}

// NewManager creates an empty entity manager.
// Call Rebuild() with the registry's descriptors to populate it.
func NewManager(commander Commander) *Manager {
	return &Manager{
		commander: commander,
		entities:  make(map[string]Entity),
		logger:    noopLogger{},
	}
}

// SetLogger sets the logger for the manager.
func (m *Manager) SetLogger(logger Logger) {
	m.logger = logger
}

// Rebuild creates one entity per descriptor, replacing the current set.
// Entities for devices that disappeared are dropped; entities that survive
// keep nothing — descriptor attributes seed the fresh entity state.
func (m *Manager) Rebuild(descriptors []device.Descriptor) {
	entities := make(map[string]Entity, len(descriptors))
	for i := range descriptors {
		d := &descriptors[i]
		if d.MAC == "" {
			continue
		}
		entities[d.MAC] = m.build(d)
	}

	m.mu.Lock()
	m.entities = entities
	m.mu.Unlock()

	m.logger.Info("entities rebuilt", "count", len(entities))
}

// build selects the entity kind for a descriptor.
// Unknown device types fall back on the capability set: anything dimmable is
// a light, anything switchable a switch.
func (m *Manager) build(d *device.Descriptor) Entity {
	switch d.Type {
	case device.TypeBulb:
		return NewLight(d, m.commander)
	case device.TypeSwitch:
		return NewSwitch(d, m.commander)
	case device.TypeDiffuser:
		return NewDiffuser(d, m.commander)
	default:
		if d.HasCapability(device.CapBrightness) {
			m.logger.Warn("unknown device type exposed as light", "mac", d.MAC, "type", d.Type)
			return NewLight(d, m.commander)
		}
		m.logger.Warn("unknown device type exposed as switch", "mac", d.MAC, "type", d.Type)
		return NewSwitch(d, m.commander)
	}
}

// Get retrieves the entity for a MAC address.
// Returns ErrEntityNotFound if no entity exists.
func (m *Manager) Get(mac string) (Entity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entities[mac]
	if !ok {
		return nil, ErrEntityNotFound
	}
	return e, nil
}

// All returns every live entity.
func (m *Manager) All() []Entity {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entities := make([]Entity, 0, len(m.entities))
	for _, e := range m.entities {
		entities = append(entities, e)
	}
	return entities
}

// Count returns the number of live entities.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entities)
}

// HandleAttribute implements the bridge StatusHandler.
// The attribute value lands on the entity with the matching MAC.
func (m *Manager) HandleAttribute(mac, attribute, value string) {
	m.mu.RLock()
	e, ok := m.entities[mac]
	m.mu.RUnlock()

	if !ok {
		m.logger.Debug("status for device without entity", "mac", mac)
		return
	}
	e.ApplyStatus(attribute, value)
}

// HandleAvailability implements the bridge StatusHandler.
func (m *Manager) HandleAvailability(mac string, online bool) {
	m.mu.RLock()
	e, ok := m.entities[mac]
	m.mu.RUnlock()

	if !ok {
		return
	}
	e.SetAvailable(online)
}
