// observe - MQTT aircraft snapshot viewer
//
// Companion tool to adsb2mqtt. It subscribes one level beneath the
// configured topic and pretty-prints every message that arrives to
// stdout, one framed block per message. Diagnostics stay on stderr so
// the rendered output can be piped or redirected cleanly.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/bmidgley/adsb2mqtt/internal/infrastructure/config"
	"github.com/bmidgley/adsb2mqtt/internal/infrastructure/logging"
	"github.com/bmidgley/adsb2mqtt/internal/infrastructure/mqtt"
	"github.com/bmidgley/adsb2mqtt/internal/lifecycle"
	"github.com/bmidgley/adsb2mqtt/internal/render"
)

// serviceName appears as the "service" field on every log line.
const serviceName = "observe"

// Version information - set at build time via ldflags
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
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var configPath string

	app := &cli.Command{
		Name:    "observe",
		Usage:   "watch aircraft snapshots arriving on an MQTT topic",
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
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//   - configPath: YAML config path, or "" for defaults plus environment
//
// Returns:
//   - error: nil on clean shutdown, or error describing the setup failure
func run(ctx context.Context, configPath string) error {
	log := logging.Default(serviceName)

	cfg, err := config.LoadObserve(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log = logging.New(cfg.Logging, serviceName, version)
	log.Info("starting observe",
		"version", version,
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)

	renderer := render.NewRenderer(os.Stdout)
	pattern := mqtt.Topics{}.AircraftPattern(cfg.MQTT.Topic)

	var client *mqtt.Client

	runner := lifecycle.NewRunner(lifecycle.Config{
		Name: serviceName,
		Hooks: lifecycle.Hooks{
			Connect: func(_ context.Context) error {
				c, err := mqtt.Connect(cfg.MQTT)
				if err != nil {
					return fmt.Errorf("connecting to MQTT: %w", err)
				}
				c.SetLogger(log.With("component", "mqtt"))
				c.SetOnDisconnect(func(err error) {
					log.Error("broker connection lost, no further messages will arrive until restart",
						"error", err,
					)
				})

				log.Info("MQTT connected", "tls", cfg.MQTT.Broker.TLS)
				client = c
				return nil
			},
			Run: func(_ context.Context) error {
				granted, err := client.Subscribe(pattern, 1, renderer.OnMessage)
				if err != nil {
					return fmt.Errorf("subscribing to %s: %w", pattern, err)
				}
				log.Info("subscribed", "topic", pattern, "granted_qos", granted)

				renderer.Banner(pattern)
				return nil
			},
			Cleanup: func() {
				if client != nil {
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
