// Package mqtt provides MQTT client connectivity for the Sengled bridge.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Topic subscriptions with wildcard support
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// # Architecture
//
// Sengled Wi-Fi devices are paired against a local MQTT broker by the
// Sengled add-on. Each device reports attribute changes on
// wifielement/{MAC}/status and accepts commands on wifielement/{MAC}/update.
//
//	Sengled Bridge ↔ MQTT Broker ↔ Sengled Wi-Fi devices
//
// # Security Considerations
//
//   - TLS is supported for brokers exposed beyond the LAN (cfg.Broker.TLS=true)
//   - Credentials are validated against broker ACL
//   - Anonymous access is only for local development
//   - Message payloads are not encrypted beyond TLS transport
//
// # Performance Characteristics
//
//   - Connection: <1 second to local broker
//   - Publish latency: <10ms for QoS 1 to local broker
//   - Reconnect: Exponential backoff 1s-60s
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Subscribe to all device status reports
//	err = client.Subscribe(mqtt.Topics{}.AllDeviceStatuses(), 1,
//	    func(topic string, payload []byte) error {
//	        log.Printf("Received: %s = %s", topic, payload)
//	        return nil
//	    })
//
//	// Publish a command
//	topic := mqtt.Topics{}.DeviceUpdate("B0:CE:18:12:34:56")
//	client.Publish(topic, payload, 1, false)
package mqtt
