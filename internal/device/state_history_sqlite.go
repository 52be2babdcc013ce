package device

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

// SQLiteStateHistoryRepository implements StateHistoryRepository using SQLite.
//
// It stores one row per attribute transition in the state_history table.
type SQLiteStateHistoryRepository struct {
	db *sql.DB
}

// NewSQLiteStateHistoryRepository creates a new SQLite state history repository.
//
// Parameters:
//   - db: Open SQLite connection used for queries
//
// Returns:
//   - *SQLiteStateHistoryRepository: Repository instance ready for use
func NewSQLiteStateHistoryRepository(db *sql.DB) *SQLiteStateHistoryRepository {
	return &SQLiteStateHistoryRepository{db: db}
}

// RecordChange inserts a new attribute transition for a device.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - change: The transition to persist; ChangedAt defaults to now (UTC)
//
// Returns:
//   - error: nil on success, otherwise the underlying database error
func (r *SQLiteStateHistoryRepository) RecordChange(ctx context.Context, change StateChange) error {
	if change.DeviceMAC == "" {
		return fmt.Errorf("device mac is required")
	}
	if change.Attribute == "" {
		return fmt.Errorf("attribute is required")
	}
	if change.Source == "" {
		change.Source = StateHistorySourceMQTT
	}
	if change.ChangedAt.IsZero() {
		change.ChangedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO state_history (device_mac, attribute, old_value, new_value, source, changed_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		change.DeviceMAC,
		change.Attribute,
		change.OldValue,
		change.NewValue,
		change.Source,
		change.ChangedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting state history: %w", err)
	}

	return nil
}

// GetHistory returns recent attribute changes for a device, ordered newest first.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - mac: Device MAC address
//   - limit: Maximum entries to return (default 50, max 200)
//
// Returns:
//   - []StateChange: History entries ordered by changed_at DESC
//   - error: nil on success, otherwise the underlying query error
func (r *SQLiteStateHistoryRepository) GetHistory(ctx context.Context, mac string, limit int) ([]StateChange, error) {
	if mac == "" {
		return nil, fmt.Errorf("device mac is required")
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, device_mac, attribute, old_value, new_value, source, changed_at
		 FROM state_history
		 WHERE device_mac = ?
		 ORDER BY changed_at DESC, id DESC
		 LIMIT ?`,
		mac,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying state history: %w", err)
	}
	defer rows.Close()

	entries := make([]StateChange, 0, limit)
	for rows.Next() {
		var entry StateChange
		var oldValue sql.NullString
		var changedAt string

		if err := rows.Scan(&entry.ID, &entry.DeviceMAC, &entry.Attribute,
			&oldValue, &entry.NewValue, &entry.Source, &changedAt); err != nil {
			return nil, fmt.Errorf("scanning state history: %w", err)
		}
		entry.OldValue = oldValue.String

		timestamp, err := parseHistoryTimestamp(changedAt)
		if err != nil {
			return nil, err
		}
		entry.ChangedAt = timestamp

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating state history: %w", err)
	}

	return entries, nil
}

// PruneHistory deletes history entries older than the given duration.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - olderThan: Duration to retain (entries older than now-olderThan are deleted)
//
// Returns:
//   - int64: Number of rows deleted
//   - error: nil on success, otherwise the underlying database error
func (r *SQLiteStateHistoryRepository) PruneHistory(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, fmt.Errorf("olderThan must be positive")
	}

	cutoff := time.Now().UTC().Add(-olderThan).Format(time.RFC3339)
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM state_history WHERE changed_at < ?",
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("deleting state history: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking rows affected: %w", err)
	}

	return rowsAffected, nil
}

// parseHistoryTimestamp parses a timestamp stored in SQLite.
func parseHistoryTimestamp(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("changed_at is empty")
	}

	timestamp, err := time.Parse(time.RFC3339, value)
	if err == nil {
		return timestamp, nil
	}

	fallback, fallbackErr := time.Parse("2006-01-02 15:04:05", value)
	if fallbackErr == nil {
		return fallback.UTC(), nil
	}

	return time.Time{}, fmt.Errorf("parsing changed_at: %w", err)
}
