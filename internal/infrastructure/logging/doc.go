// Package logging provides structured logging for the adsb2mqtt processes.
//
// This package wraps Go's standard log/slog package to provide
// consistent, structured logging across both the bridge and the observer.
//
// # Features
//
//   - Text output for the console (human-readable, the default)
//   - JSON output for machine collection
//   - Default fields (service, version) on all log entries
//   - Level-based filtering (debug, info, warn, error)
//   - Thread-safe for concurrent use
//
// # Configuration
//
// Logging is configured via the LoggingConfig section, with LOG_LEVEL
// available as an environment override:
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "text"     # text, json
//	  output: "stderr"   # stderr, stdout
//
// Diagnostics default to stderr. The observer renders received messages on
// stdout, so keeping the two streams separate lets rendered output be piped
// without log noise.
//
// # Usage
//
//	logger := logging.New(cfg.Logging, "adsb2mqtt", "1.0.0")
//	logger.Info("starting bridge", "topic", cfg.MQTT.Topic)
//	logger.Error("fetch failed", "error", err)
//
// # Security
//
// Never log secrets, tokens, or passwords. Broker credentials stay out of
// log fields; connection logs carry host, port, and client id only.
package logging
