// Package bridge routes traffic between the MQTT broker and the device
// registry.
//
// Sengled Wi-Fi devices report attribute changes on wifielement/{MAC}/status
// and accept commands on wifielement/{MAC}/update. A single wildcard
// subscription (wifielement/+/status) covers every device; each envelope
// entry is routed by its "dn" field, so reports for devices the registry
// does not know are ignored rather than fatal.
//
// # Message Flow
//
//	device --status--> broker --wildcard sub--> Bridge --> Registry
//	                                                   \-> StatusHandlers (entities, websocket)
//	                                                   \-> HistoryRecorder (SQLite)
//	                                                   \-> Telemetry (InfluxDB)
//
//	entity --SendCommand--> Bridge --publish--> broker --update topic--> device
//
// Commands are fire-and-forget: the device echoes the new value on its
// status topic, which closes the loop through the normal status path.
//
// # Availability
//
// When the broker connection drops, every device is marked unavailable and
// the transition is fanned out to all registered handlers. Devices come back
// individually as they report after reconnect.
package bridge
