// Package mqtt provides MQTT client connectivity for Greenhouse Core.
//
// This package manages:
//   - Connection to Mosquitto broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Topic subscriptions with wildcard support
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// # Architecture
//
// Greenhouse Core uses MQTT as the message bus connecting the backend to
// field controllers deployed in each greenhouse. The broker (Mosquitto)
// decouples Core from controller firmware.
//
//	Greenhouse Core ↔ MQTT Broker ↔ Greenhouse Controllers
//
// Core publishes setpoint changes to greenhouse/{id}/setpoints (retained,
// so a controller that reconnects picks up the current configuration) and
// subscribes to greenhouse/+/telemetry and greenhouse/+/status to ingest
// sensor readings and connection events.
//
// # Security Considerations
//
//   - TLS is required for production deployments (cfg.Broker.TLS=true)
//   - Credentials are validated against broker ACL
//   - Anonymous access is only for local development
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
//	// Subscribe to telemetry from all greenhouses
//	err = client.Subscribe(mqtt.Topics{}.AllTelemetry(), 1,
//	    func(topic string, payload []byte) error {
//	        log.Printf("Received: %s = %s", topic, payload)
//	        return nil
//	    })
//
//	// Publish a setpoint change
//	topic := mqtt.Topics{}.Setpoints(greenhouseID)
//	client.Publish(topic, payload, 1, true)
package mqtt
