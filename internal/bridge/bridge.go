package bridge

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/nerrad567/sengled-bridge/internal/device"
	"github.com/nerrad567/sengled-bridge/internal/infrastructure/mqtt"
)

// Bridge routes traffic between the MQTT broker and the device registry.
// It handles:
//   - Receiving device status reports and applying them to the registry
//   - Publishing attribute commands on behalf of entities
//   - Marking all devices unavailable when the broker connection drops
//
// Thread Safety: All methods are safe for concurrent use.
type Bridge struct {
	mqtt    MQTTClient
	store   DeviceStore
	history HistoryRecorder // Optional attribute-change audit trail
	metrics Telemetry       // Optional time-series writes

	// Status fan-out to entities and the websocket hub
	handlers   []StatusHandler
	handlersMu sync.RWMutex

	// Counters
	messagesRx      atomic.Uint64
	messagesDropped atomic.Uint64
	commandsTx      atomic.Uint64

	// Shutdown coordination
	done     chan struct{}
	stopOnce sync.Once

	// Logger
	logger   Logger
	loggerMu sync.RWMutex
}

// MQTTClient is the interface for MQTT operations.
// This allows mocking in tests and flexibility in implementation.
type MQTTClient interface {
	// Publish sends a message to a topic.
	Publish(topic string, payload []byte, qos byte, retained bool) error

	// Subscribe registers a handler for a topic pattern.
	Subscribe(topic string, qos byte, handler func(topic string, payload []byte)) error

	// IsConnected returns true if connected to the broker.
	IsConnected() bool
}

// DeviceStore is the registry surface the bridge needs.
// It is satisfied by *device.Registry.
type DeviceStore interface {
	// Get retrieves a device by MAC address.
	Get(mac string) (*device.Descriptor, error)

	// List retrieves all known devices.
	List() []device.Descriptor

	// SetAttribute records a reported attribute value, returning the
	// previous value and whether it changed.
	SetAttribute(mac, attribute, value string) (string, bool, error)

	// SetOnline updates a device's availability flag.
	SetOnline(mac string, online bool) error

	// SetRSSI records a device's reported signal strength.
	SetRSSI(mac string, rssi int) error

	// SetAllOffline marks every device as unavailable.
	SetAllOffline()
}

// HistoryRecorder persists attribute transitions.
// This is optional - if nil, the bridge operates without an audit trail.
// Recording is best-effort; failures are logged, never propagated.
type HistoryRecorder interface {
	Record(change device.StateChange)
}

// Telemetry receives numeric device metrics.
// This is optional - if nil, the bridge operates without time-series writes.
type Telemetry interface {
	WriteDeviceMetric(mac string, measurement string, value float64)
	WriteSignalStrength(mac string, rssi float64)
	WriteAvailability(mac string, available bool)
}

// StatusHandler receives device updates after the registry has been updated.
// Handlers execute on the MQTT delivery goroutine and must not block.
type StatusHandler interface {
	// HandleAttribute is called for every attribute value that changed.
	HandleAttribute(mac, attribute, value string)

	// HandleAvailability is called on availability transitions.
	HandleAvailability(mac string, online bool)
}

// Logger defines the logging interface used by the bridge.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Options holds configuration for creating a bridge.
type Options struct {
	// MQTTClient is the MQTT client implementation.
	MQTTClient MQTTClient

	// Store is the device registry.
	Store DeviceStore

	// History is optional attribute-change persistence.
	History HistoryRecorder

	// Telemetry is optional time-series output.
	Telemetry Telemetry

	// Logger is optional structured logger.
	Logger Logger
}

// New creates a new bridge instance.
// Call Start() to begin operation.
func New(opts Options) (*Bridge, error) {
	if opts.MQTTClient == nil {
		return nil, fmt.Errorf("MQTT client is required")
	}
	if opts.Store == nil {
		return nil, fmt.Errorf("device store is required")
	}

	return &Bridge{
		mqtt:    opts.MQTTClient,
		store:   opts.Store,
		history: opts.History,
		metrics: opts.Telemetry,
		done:    make(chan struct{}),
		logger:  opts.Logger,
	}, nil
}

// Start begins bridge operation by subscribing to the wildcard status topic.
// One subscription covers every device; routing happens per message.
func (b *Bridge) Start() error {
	topic := mqtt.Topics{}.AllDeviceStatuses()
	if err := b.mqtt.Subscribe(topic, 1, b.handleStatusMessage); err != nil {
		return fmt.Errorf("subscribe to device statuses: %w", err)
	}
	b.logInfo("bridge started", "topic", topic)
	return nil
}

// Stop gracefully shuts down the bridge.
func (b *Bridge) Stop() {
	b.stopOnce.Do(func() {
		close(b.done)
		b.logInfo("bridge stopped")
	})
}

// AddStatusHandler registers a handler for device updates.
// Handlers are invoked in registration order.
func (b *Bridge) AddStatusHandler(handler StatusHandler) {
	if handler == nil {
		return
	}
	b.handlersMu.Lock()
	b.handlers = append(b.handlers, handler)
	b.handlersMu.Unlock()
}

// SendCommand publishes a single attribute command to a device.
//
// Capability checks belong to the entity layer; the bridge only verifies the
// device exists and the broker is reachable.
//
// Parameters:
//   - mac: Target device MAC address
//   - attribute: Attribute name (e.g. "brightness")
//   - value: Attribute value as a string (e.g. "75")
//
// Returns:
//   - error: device.ErrDeviceNotFound for unknown MACs,
//     mqtt.ErrNotConnected when the broker is down, or the publish error
func (b *Bridge) SendCommand(mac, attribute, value string) error {
	if _, err := b.store.Get(mac); err != nil {
		return err
	}
	if !b.mqtt.IsConnected() {
		return mqtt.ErrNotConnected
	}

	payload, err := EncodeCommand(mac, attribute, value)
	if err != nil {
		return err
	}

	topic := mqtt.Topics{}.DeviceUpdate(mac)
	if err := b.mqtt.Publish(topic, payload, 1, false); err != nil {
		return fmt.Errorf("publishing command: %w", err)
	}

	b.commandsTx.Add(1)
	b.recordHistory(device.StateChange{
		DeviceMAC: mac,
		Attribute: attribute,
		NewValue:  value,
		Source:    device.StateHistorySourceCommand,
	})

	b.logDebug("command sent", "mac", mac, "attribute", attribute, "value", value)
	return nil
}

// HandleConnectionUp is wired to the MQTT client's connect callback.
// Subscriptions are restored by the MQTT client itself; devices re-announce
// their state on their own reporting cycle.
func (b *Bridge) HandleConnectionUp() {
	b.logInfo("broker connection established")
}

// HandleConnectionDown is wired to the MQTT client's disconnect callback.
// Every device is marked unavailable until the broker comes back and the
// devices report again.
func (b *Bridge) HandleConnectionDown(err error) {
	b.logWarn("broker connection lost", "error", err)

	devices := b.store.List()
	b.store.SetAllOffline()

	for _, d := range devices {
		if b.metrics != nil {
			b.metrics.WriteAvailability(d.MAC, false)
		}
		b.notifyAvailability(d.MAC, false)
	}
}

// handleStatusMessage processes one incoming status envelope.
func (b *Bridge) handleStatusMessage(topic string, payload []byte) {
	topicMAC, ok := mqtt.MACFromStatusTopic(topic)
	if !ok {
		b.logWarn("status on unexpected topic", "topic", topic)
		return
	}

	messages, dropped, err := DecodeStatus(payload)
	if err != nil {
		b.messagesDropped.Add(1)
		b.logWarn("malformed status payload", "topic", topic, "error", err)
		return
	}
	if dropped > 0 {
		b.messagesDropped.Add(uint64(dropped))
		b.logWarn("dropped invalid envelope entries", "topic", topic, "count", dropped)
	}

	for _, msg := range messages {
		// Trust the envelope's dn over the topic; group reports can carry
		// entries for several devices on one topic.
		if msg.DN != topicMAC {
			b.logDebug("envelope dn differs from topic", "topic_mac", topicMAC, "dn", msg.DN)
		}
		b.applyStatus(msg)
	}
}

// applyStatus applies one status message to the registry and fans it out.
func (b *Bridge) applyStatus(msg Message) {
	b.messagesRx.Add(1)

	switch msg.Type {
	case device.AttrOnline:
		b.applyAvailability(msg)
	case device.AttrRSSI:
		b.applyRSSI(msg)
	default:
		b.applyAttribute(msg)
	}
}

// applyAvailability handles an "online" report.
func (b *Bridge) applyAvailability(msg Message) {
	online := msg.Value == "1" || msg.Value == "true"

	if err := b.store.SetOnline(msg.DN, online); err != nil {
		if errors.Is(err, device.ErrDeviceNotFound) {
			b.logDebug("status for unknown device ignored", "dn", msg.DN)
			return
		}
		b.logError("availability update failed", err)
		return
	}

	if b.metrics != nil {
		b.metrics.WriteAvailability(msg.DN, online)
	}
	b.notifyAvailability(msg.DN, online)
}

// applyRSSI handles a signal strength report.
func (b *Bridge) applyRSSI(msg Message) {
	rssi, err := strconv.Atoi(msg.Value)
	if err != nil {
		b.messagesDropped.Add(1)
		b.logWarn("unparsable rssi value", "dn", msg.DN, "value", msg.Value)
		return
	}

	if err := b.store.SetRSSI(msg.DN, rssi); err != nil {
		if errors.Is(err, device.ErrDeviceNotFound) {
			b.logDebug("status for unknown device ignored", "dn", msg.DN)
		}
		return
	}

	if b.metrics != nil {
		b.metrics.WriteSignalStrength(msg.DN, float64(rssi))
	}
}

// applyAttribute handles a regular attribute report.
func (b *Bridge) applyAttribute(msg Message) {
	old, changed, err := b.store.SetAttribute(msg.DN, msg.Type, msg.Value)
	if err != nil {
		if errors.Is(err, device.ErrDeviceNotFound) {
			b.logDebug("status for unknown device ignored", "dn", msg.DN)
			return
		}
		b.logError("attribute update failed", err)
		return
	}

	if !changed {
		return
	}

	b.recordHistory(device.StateChange{
		DeviceMAC: msg.DN,
		Attribute: msg.Type,
		OldValue:  old,
		NewValue:  msg.Value,
		Source:    device.StateHistorySourceMQTT,
	})

	if b.metrics != nil {
		if v, err := strconv.ParseFloat(msg.Value, 64); err == nil {
			b.metrics.WriteDeviceMetric(msg.DN, msg.Type, v)
		}
	}

	b.notifyAttribute(msg.DN, msg.Type, msg.Value)
}

// notifyAttribute fans an attribute change out to all handlers.
func (b *Bridge) notifyAttribute(mac, attribute, value string) {
	b.handlersMu.RLock()
	handlers := b.handlers
	b.handlersMu.RUnlock()

	for _, h := range handlers {
		h.HandleAttribute(mac, attribute, value)
	}
}

// notifyAvailability fans an availability transition out to all handlers.
func (b *Bridge) notifyAvailability(mac string, online bool) {
	b.handlersMu.RLock()
	handlers := b.handlers
	b.handlersMu.RUnlock()

	for _, h := range handlers {
		h.HandleAvailability(mac, online)
	}
}

// recordHistory persists a state change if a recorder is configured.
func (b *Bridge) recordHistory(change device.StateChange) {
	if b.history == nil {
		return
	}
	b.history.Record(change)
}

// SetLogger sets the logger for the bridge.
func (b *Bridge) SetLogger(logger Logger) {
	b.loggerMu.Lock()
	b.logger = logger
	b.loggerMu.Unlock()
}

// Metrics contains counters for the API metrics endpoint.
type Metrics struct {
	Connected       bool
	MessagesRx      uint64
	MessagesDropped uint64
	CommandsTx      uint64
	DevicesManaged  int
}

// GetMetrics returns current bridge metrics.
func (b *Bridge) GetMetrics() Metrics {
	return Metrics{
		Connected:       b.mqtt.IsConnected(),
		MessagesRx:      b.messagesRx.Load(),
		MessagesDropped: b.messagesDropped.Load(),
		CommandsTx:      b.commandsTx.Load(),
		DevicesManaged:  len(b.store.List()),
	}
}

// logInfo logs an info message if logger is set.
func (b *Bridge) logInfo(msg string, keysAndValues ...any) {
	b.loggerMu.RLock()
	logger := b.logger
	b.loggerMu.RUnlock()

	if logger != nil {
		logger.Info(msg, keysAndValues...)
	}
}

// logWarn logs a warning message if logger is set.
func (b *Bridge) logWarn(msg string, keysAndValues ...any) {
	b.loggerMu.RLock()
	logger := b.logger
	b.loggerMu.RUnlock()

	if logger != nil {
		logger.Warn(msg, keysAndValues...)
	}
}

// logError logs an error message if logger is set.
func (b *Bridge) logError(msg string, err error) {
	b.loggerMu.RLock()
	logger := b.logger
	b.loggerMu.RUnlock()

	if logger != nil {
		logger.Error(msg, "error", err)
	}
}

// logDebug logs a debug message if logger is set.
func (b *Bridge) logDebug(msg string, keysAndValues ...any) {
	b.loggerMu.RLock()
	logger := b.logger
	b.loggerMu.RUnlock()

	if logger != nil {
		logger.Debug(msg, keysAndValues...)
	}
}
