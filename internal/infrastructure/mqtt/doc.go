// Package mqtt provides MQTT broker connectivity for the adsb2mqtt processes.
//
// This package manages:
//   - Connection to the broker over TLS or plain TCP
//   - Message publishing with asynchronous delivery acknowledgment
//   - Topic subscriptions with wildcard support and granted-QoS reporting
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// # Architecture
//
// MQTT is the hand-off point between the feeder and anything downstream.
// The bridge publishes aircraft snapshots to a single data topic; observers
// and other consumers subscribe through the broker without ever talking to
// the feeder directly.
//
//	aircraft.json feeder → adsb2mqtt → MQTT Broker → observers
//
// # Session Model
//
// Sessions are intentionally simple: connect once, use the connection, and
// tear it down on shutdown. There is no automatic reconnection; when the
// broker link drops, the client logs the loss, fires the OnDisconnect
// callback, and every subsequent Publish or Subscribe returns
// ErrNotConnected until the process is restarted. Process supervision
// (systemd, container restart policy) owns recovery.
//
// # Security Considerations
//
//   - TLS is on by default for the bridge (cfg.Broker.TLS=true)
//   - Credentials are applied only when both username and password are set
//   - Message payloads are not encrypted beyond TLS transport
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Subscribe one level below the data topic
//	granted, err := client.Subscribe(mqtt.Topics{}.AircraftPattern("adsb/aircraft"), 1,
//	    func(topic string, payload []byte) error {
//	        log.Printf("Received: %s = %s", topic, payload)
//	        return nil
//	    })
//
//	// Publish an aircraft snapshot
//	client.Publish("adsb/aircraft", payload, 1, false)
package mqtt
