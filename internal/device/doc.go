// Package device defines the device model for the Sengled bridge.
//
// A Descriptor describes one physical Sengled Wi-Fi device as reported by the
// add-on registry: MAC address, type (bulb, switch, diffuser), capability set
// and last reported attribute values. The Registry holds all known descriptors
// in memory, keyed by MAC, and is the single authority for device lookups.
//
// # Lifecycle
//
// The registry is populated at startup from the add-on's HTTP endpoint and
// refreshed periodically. Attribute updates and availability transitions
// arriving over MQTT mutate the cached descriptors in place; a refresh
// replaces the registry records but carries runtime state over, so a poll
// never discards state learned between polls.
//
// # State History
//
// Every observed attribute transition can be recorded in SQLite through the
// StateHistoryRepository, providing a local audit trail independent of the
// time-series database.
//
// # Thread Safety
//
// All Registry methods are safe for concurrent use. Lookups return deep
// copies so callers can never mutate the cache.
package device
