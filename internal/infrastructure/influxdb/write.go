package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteDeviceMetric writes a single device measurement to InfluxDB.
//
// This is the primary method for recording device telemetry data.
// The write is non-blocking; data is batched and sent asynchronously.
//
// Parameters:
//   - mac: Device MAC address as reported by the add-on registry
//   - measurement: The metric name (e.g., "brightness", "rssi")
//   - value: The numeric value to record
//
// Example:
//
//	client.WriteDeviceMetric("B0:CE:18:12:34:56", "brightness", 128)
func (c *Client) WriteDeviceMetric(mac string, measurement string, value float64) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"device_metrics",
		map[string]string{
			"device_mac":  mac,
			"measurement": measurement,
		},
		map[string]interface{}{
			"value": value,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteSignalStrength records a device's Wi-Fi signal strength (RSSI, dBm).
//
// Sengled devices report RSSI alongside attribute updates; tracking it over
// time helps diagnose flaky devices at the edge of Wi-Fi coverage.
func (c *Client) WriteSignalStrength(mac string, rssi float64) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"signal_strength",
		map[string]string{
			"device_mac": mac,
		},
		map[string]interface{}{
			"rssi_dbm": rssi,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteAvailability records a device availability transition (1 online, 0 offline).
//
// Parameters:
//   - mac: Device MAC address
//   - available: Whether the device is reachable
func (c *Client) WriteAvailability(mac string, available bool) {
	if !c.IsConnected() {
		return
	}

	value := 0.0
	if available {
		value = 1.0
	}

	point := write.NewPoint(
		"availability",
		map[string]string{
			"device_mac": mac,
		},
		map[string]interface{}{
			"online": value,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for custom measurements that don't fit the helper methods.
//
// Parameters:
//   - measurement: The measurement name (table)
//   - tags: Key-value pairs for indexing (low cardinality)
//   - fields: Key-value pairs for the actual data
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}
