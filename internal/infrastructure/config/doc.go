// Package config handles loading and validating adsb2mqtt configuration.
//
// This package manages:
//   - Loading configuration from an optional YAML file
//   - Overriding with environment variables (ADSB_URL, MQTT_*, POLL_INTERVAL,
//     LOG_LEVEL)
//   - Validation of required fields
//   - Per-process default value handling (bridge vs observer)
//
// Security Considerations:
//   - Broker credentials should be set via MQTT_USERNAME / MQTT_PASSWORD
//     rather than committed to a config file
//   - A config file carrying credentials should have restricted permissions
//     (0600)
//
// Performance Characteristics:
//   - Configuration is loaded once at startup
//   - No runtime overhead after initial load
//
// Usage:
//
//	cfg, err := config.LoadBridge(os.Getenv("ADSB2MQTT_CONFIG"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.MQTT.Topic)
package config
