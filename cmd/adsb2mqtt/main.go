// adsb2mqtt - ADS-B to MQTT bridge
//
// This is the main entry point for the bridge process. It polls a local
// ADS-B receiver's aircraft.json endpoint and republishes each snapshot,
// byte-for-byte but compacted, to an MQTT broker where downstream
// consumers pick it up.
//
// The process is deliberately small: one poll loop, one broker session,
// no local persistence. A lost broker connection is logged and publishes
// start failing; the process keeps polling and relies on its supervisor
// (systemd, docker) to restart it rather than reconnecting itself.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/bmidgley/adsb2mqtt/internal/adsb"
	"github.com/bmidgley/adsb2mqtt/internal/infrastructure/config"
	"github.com/bmidgley/adsb2mqtt/internal/infrastructure/logging"
	"github.com/bmidgley/adsb2mqtt/internal/infrastructure/mqtt"
	"github.com/bmidgley/adsb2mqtt/internal/lifecycle"
)

// serviceName appears as the "service" field on every log line.
const serviceName = "adsb2mqtt"

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// build renders the version string shown by --version.
func build() string {
	short := commit
	if len(commit) > 7 {
		short = commit[:7]
	}

	return fmt.Sprintf("%s (%s) %s", version, short, date)
}

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	// This is the Go pattern for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var configPath string

	app := &cli.Command{
		Name:    "adsb2mqtt",
		Usage:   "poll an ADS-B receiver and publish aircraft snapshots to MQTT",
		Version: build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to YAML config file (optional, environment variables always apply)",
				Sources:     cli.EnvVars("ADSB2MQTT_CONFIG"),
				Destination: &configPath,
			},
		},
		Action: func(ctx context.Context, _ *cli.Command) error {
			return run(ctx, configPath)
		},
	}

	if err := app.Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//   - configPath: YAML config path, or "" for defaults plus environment
//
// Returns:
//   - error: nil on clean shutdown, or error describing the setup failure
func run(ctx context.Context, configPath string) error {
	// Use default logger until config is loaded
	log := logging.Default(serviceName)
	log.Info("starting adsb2mqtt",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	cfg, err := config.LoadBridge(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if configPath != "" {
		log.Info("configuration loaded", "path", configPath)
	} else {
		log.Info("configuration loaded", "source", "defaults and environment")
	}

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, serviceName, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Shared between the lifecycle hooks below.
	var (
		client *mqtt.Client
		poller *adsb.Poller
	)

	runner := lifecycle.NewRunner(lifecycle.Config{
		Name: serviceName,
		Hooks: lifecycle.Hooks{
			Connect: func(ctx context.Context) error {
				c, err := mqtt.Connect(cfg.MQTT)
				if err != nil {
					return fmt.Errorf("connecting to MQTT: %w", err)
				}
				c.SetLogger(log.With("component", "mqtt"))
				c.SetOnDisconnect(func(err error) {
					log.Error("broker connection lost, publishes will fail until restart",
						"error", err,
					)
				})

				if err := c.HealthCheck(ctx); err != nil {
					_ = c.Close()
					return fmt.Errorf("MQTT health check: %w", err)
				}

				log.Info("MQTT connected",
					"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
					"client_id", cfg.MQTT.Broker.ClientID,
					"tls", cfg.MQTT.Broker.TLS,
				)
				client = c
				return nil
			},
			Run: func(ctx context.Context) error {
				poller = adsb.NewPoller(adsb.PollerConfig{
					Source:    adsb.NewFetcher(cfg.Source.URL),
					Publisher: client,
					Topic:     cfg.MQTT.Topic,
					Interval:  cfg.GetPollInterval(),
				})
				poller.SetLogger(log.With("component", "poller"))
				poller.Start(ctx)

				log.Info("polling started",
					"url", cfg.Source.URL,
					"interval", cfg.GetPollInterval(),
					"topic", cfg.MQTT.Topic,
				)
				return nil
			},
			Cleanup: func() {
				if poller != nil {
					poller.Stop()
					stats := poller.Stats()
					log.Info("poller stopped",
						"polls", stats.Polls,
						"fetch_failures", stats.FetchFailures,
						"publish_failures", stats.PublishFailures,
					)
				}
				if client != nil {
					log.Info("disconnecting from MQTT")
					if closeErr := client.Close(); closeErr != nil {
						log.Error("error closing MQTT", "error", closeErr)
					}
				}
			},
		},
	})
	runner.SetLogger(log)

	return runner.Run(ctx)
}
