// Package addon provides the HTTP client for the Sengled add-on's device
// registry.
//
// The add-on is a companion local server that pairs Sengled Wi-Fi devices
// against the local MQTT broker and exposes the set of known devices over
// HTTP. This client fetches that list (GET /api/devices) and maps each
// record onto a device.Descriptor.
//
// # Error Handling
//
// Every failure mode — unreachable endpoint, non-200 status, malformed JSON,
// an explicit rejection — is surfaced as ErrRegistryUnavailable so callers
// only need one errors.Is check. The client never retries; startup treats a
// registry failure as fatal and the refresh loop simply tries again on the
// next tick.
package addon
