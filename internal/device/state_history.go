package device

import (
	"context"
	"time"
)

// State history source values.
const (
	StateHistorySourceMQTT    = "mqtt"
	StateHistorySourceCommand = "command"
)

// StateChange represents a single recorded attribute transition.
//
// Each row stores one attribute going from one value to another, which keeps
// the local audit trail queryable per attribute even when the time-series
// database is unavailable.
type StateChange struct {
	// ID is the auto-incremented primary key for the history row.
	ID int64 `json:"id"`

	// DeviceMAC is the MAC address of the device that changed.
	DeviceMAC string `json:"device_mac"`

	// Attribute is the attribute name that changed (e.g. "brightness").
	Attribute string `json:"attribute"`

	// OldValue is the value before the change ("" when first observed).
	OldValue string `json:"old_value"`

	// NewValue is the value after the change.
	NewValue string `json:"new_value"`

	// Source identifies how the change was recorded (mqtt, command).
	Source string `json:"source"`

	// ChangedAt is the timestamp of the change (UTC).
	ChangedAt time.Time `json:"changed_at"`
}

// StateHistoryRepository stores and retrieves device attribute change history.
//
// Implementations must be thread-safe and use UTC timestamps.
type StateHistoryRepository interface {
	// RecordChange records a single attribute transition.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout
	//   - change: The transition to persist (ID and ChangedAt may be zero)
	//
	// Returns:
	//   - error: nil on success, otherwise the underlying persistence error
	RecordChange(ctx context.Context, change StateChange) error

	// GetHistory returns recent attribute changes for the device.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout
	//   - mac: Device MAC address
	//   - limit: Maximum entries to return (implementation may clamp bounds)
	//
	// Returns:
	//   - []StateChange: Ordered newest-first history entries (may be empty)
	//   - error: nil on success, otherwise the underlying query error
	GetHistory(ctx context.Context, mac string, limit int) ([]StateChange, error)
}
