package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure shared by the bridge and the
// observer. All configuration is loaded from YAML and can be overridden by
// environment variables.
type Config struct {
	Source  SourceConfig  `yaml:"source"`
	MQTT    MQTTConfig    `yaml:"mqtt"`
	Logging LoggingConfig `yaml:"logging"`
}

// SourceConfig contains the ADS-B HTTP endpoint settings. Only the bridge
// reads this section.
type SourceConfig struct {
	URL          string `yaml:"url"`
	PollInterval int    `yaml:"poll_interval"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Broker MQTTBrokerConfig `yaml:"broker"`
	Auth   MQTTAuthConfig   `yaml:"auth"`
	Topic  string           `yaml:"topic"`

	// StatusEnabled turns on the retained online/offline status publishes
	// and the matching last-will registration on <client_id>/status.
	StatusEnabled bool `yaml:"status_enabled"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
// Credentials are presented to the broker only when both fields are set.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// LoadBridge loads the bridge process configuration.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults; skipped when path is empty)
//  3. Environment variables (override file values)
//
// The bridge honours ADSB_URL and POLL_INTERVAL in addition to the shared
// MQTT_* and LOG_LEVEL overrides.
//
// Parameters:
//   - path: Path to the YAML configuration file, or "" for no file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If the file cannot be read, parsed, or validation fails
func LoadBridge(path string) (*Config, error) {
	cfg := defaultBridgeConfig()

	if err := loadFile(cfg, path); err != nil {
		return nil, err
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	if err := applySourceEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// LoadObserve loads the observer process configuration.
//
// Loading order matches LoadBridge, except the source overrides (ADSB_URL,
// POLL_INTERVAL) are ignored because the observer never polls.
//
// Parameters:
//   - path: Path to the YAML configuration file, or "" for no file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If the file cannot be read, parsed, or validation fails
func LoadObserve(path string) (*Config, error) {
	cfg := defaultObserveConfig()

	if err := loadFile(cfg, path); err != nil {
		return nil, err
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// loadFile reads and parses the YAML file into cfg. An empty path skips the
// file layer entirely; a non-empty path must name a readable file.
func loadFile(cfg *Config, path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	return nil
}

// defaultBridgeConfig returns the bridge defaults, mirroring the shipped
// deployment: a local tar1090 endpoint feeding a TLS broker every 5 seconds.
func defaultBridgeConfig() *Config {
	return &Config{
		Source: SourceConfig{
			URL:          "http://adsbexchange.local/tar1090/data/aircraft.json",
			PollInterval: 5,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "evalink.archresearch.net",
				Port:     8883,
				TLS:      true,
				ClientID: "adsb2mqtt",
			},
			Topic:         "adsb/aircraft",
			StatusEnabled: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}

// defaultObserveConfig returns the observer defaults. The client id carries
// a random suffix so concurrent observers do not steal each other's broker
// session; pinning MQTT_CLIENT_ID or mqtt.broker.client_id disables that.
func defaultObserveConfig() *Config {
	return &Config{
		Source: SourceConfig{
			URL:          "http://adsbexchange.local/tar1090/data/aircraft.json",
			PollInterval: 5,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     8883,
				TLS:      true,
				ClientID: "mqtt_subscriber-" + uuid.NewString()[:8],
			},
			Topic:         "adsb/aircraft",
			StatusEnabled: false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}

// applyEnvOverrides applies the shared environment variable overrides.
// Malformed numeric values are reported as errors naming the variable, not
// silently ignored.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("MQTT_BROKER"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("MQTT_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid MQTT_PORT %q: %w", v, err)
		}
		cfg.MQTT.Broker.Port = port
	}
	if v := os.Getenv("MQTT_CLIENT_ID"); v != "" {
		cfg.MQTT.Broker.ClientID = v
	}
	if v := os.Getenv("MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}
	if v := os.Getenv("MQTT_TOPIC"); v != "" {
		cfg.MQTT.Topic = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	return nil
}

// applySourceEnvOverrides applies the bridge-only source overrides.
func applySourceEnvOverrides(cfg *Config) error {
	if v := os.Getenv("ADSB_URL"); v != "" {
		cfg.Source.URL = v
	}
	if v := os.Getenv("POLL_INTERVAL"); v != "" {
		interval, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid POLL_INTERVAL %q: %w", v, err)
		}
		cfg.Source.PollInterval = interval
	}

	return nil
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of every validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// Source validation
	if c.Source.URL == "" {
		errs = append(errs, "source.url is required")
	}
	if c.Source.PollInterval < 1 {
		errs = append(errs, "source.poll_interval must be at least 1 second")
	}

	// MQTT validation
	if c.MQTT.Broker.Host == "" {
		errs = append(errs, "mqtt.broker.host is required")
	}
	if c.MQTT.Broker.Port < 1 || c.MQTT.Broker.Port > 65535 {
		errs = append(errs, "mqtt.broker.port must be between 1 and 65535")
	}
	if c.MQTT.Broker.ClientID == "" {
		errs = append(errs, "mqtt.broker.client_id is required")
	}
	if c.MQTT.Topic == "" {
		errs = append(errs, "mqtt.topic is required")
	} else if strings.ContainsAny(c.MQTT.Topic, "+#") {
		errs = append(errs, "mqtt.topic must not contain wildcard characters")
	}

	// Credentials participate only as a pair
	if c.MQTT.Auth.Username != "" && c.MQTT.Auth.Password == "" {
		errs = append(errs, "mqtt.auth.password is required when mqtt.auth.username is set")
	}
	if c.MQTT.Auth.Password != "" && c.MQTT.Auth.Username == "" {
		errs = append(errs, "mqtt.auth.username is required when mqtt.auth.password is set")
	}

	// Logging validation
	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, "logging.level must be one of debug, info, warn, error")
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "text", "json":
	default:
		errs = append(errs, "logging.format must be text or json")
	}
	switch strings.ToLower(c.Logging.Output) {
	case "", "stderr", "stdout":
	default:
		errs = append(errs, "logging.output must be stderr or stdout")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetPollInterval returns the source poll interval as a Duration.
func (c *Config) GetPollInterval() time.Duration {
	return time.Duration(c.Source.PollInterval) * time.Second
}
