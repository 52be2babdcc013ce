package mqtt

import "fmt"

// Topic prefixes for the Sengled add-on wire protocol.
//
// Sengled Wi-Fi devices communicate under the fixed "wifielement" prefix:
//
//	wifielement/{MAC}/status  - attribute reports from the device
//	wifielement/{MAC}/update  - commands to the device
//
// The MAC segment is used verbatim as reported by the add-on registry
// (colon-separated, e.g. "B0:CE:18:12:34:56").
const (
	// TopicPrefixDevice is the base for all device topics.
	TopicPrefixDevice = "wifielement"

	// TopicPrefixService is the base for the bridge's own service topics.
	TopicPrefixService = "sengled-bridge"
)

// Topics provides builders for the MQTT topics the bridge uses.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	statusTopic := topics.DeviceStatus("B0:CE:18:12:34:56")
//	// Returns: "wifielement/B0:CE:18:12:34:56/status"
type Topics struct{}

// DeviceStatus returns the topic a device reports attribute changes on.
//
// Example: wifielement/B0:CE:18:12:34:56/status
func (Topics) DeviceStatus(mac string) string {
	return fmt.Sprintf("%s/%s/status", TopicPrefixDevice, mac)
}

// DeviceUpdate returns the topic commands for a device are published to.
//
// Example: wifielement/B0:CE:18:12:34:56/update
func (Topics) DeviceUpdate(mac string) string {
	return fmt.Sprintf("%s/%s/update", TopicPrefixDevice, mac)
}

// AllDeviceStatuses returns a pattern matching status reports from every device.
//
// Pattern: wifielement/+/status
func (Topics) AllDeviceStatuses() string {
	return fmt.Sprintf("%s/+/status", TopicPrefixDevice)
}

// SystemStatus returns the bridge's own status topic, used for the LWT
// and graceful online/offline announcements.
//
// Example: sengled-bridge/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixService)
}

// MACFromStatusTopic extracts the device MAC from a status topic.
// Returns the MAC and true, or "" and false if the topic does not match
// the wifielement/{MAC}/status shape.
func MACFromStatusTopic(topic string) (string, bool) {
	const prefix = TopicPrefixDevice + "/"
	const suffix = "/status"

	if len(topic) <= len(prefix)+len(suffix) {
		return "", false
	}
	if topic[:len(prefix)] != prefix {
		return "", false
	}
	if topic[len(topic)-len(suffix):] != suffix {
		return "", false
	}

	mac := topic[len(prefix) : len(topic)-len(suffix)]
	if mac == "" {
		return "", false
	}
	// Reject topics with extra levels (wifielement/a/b/status)
	for i := 0; i < len(mac); i++ {
		if mac[i] == '/' {
			return "", false
		}
	}
	return mac, true
}
