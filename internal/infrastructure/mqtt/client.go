package mqtt

import (
	"context"
	"fmt"
	"sync"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/bmidgley/adsb2mqtt/internal/infrastructure/config"
)

// ConnectionState describes the session's relationship to the broker.
//
// The state is owned by the Client and changes only on session events:
// Connect entry moves to StateConnecting, the broker's acknowledgment moves
// to StateConnected, and a lost connection or Close moves to
// StateDisconnected.
type ConnectionState string

// Connection states.
const (
	StateDisconnected ConnectionState = "disconnected"
	StateConnecting   ConnectionState = "connecting"
	StateConnected    ConnectionState = "connected"
)

// Client wraps paho.mqtt.golang for the bridge and observer processes.
//
// It provides connection management, message publishing, and subscription
// handling over MQTT 3.1.1. There is no reconnection: a session that drops
// after a successful connect stays down until the process restarts, and the
// drop is reported through the logger and the OnDisconnect callback.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Client struct {
	client pahomqtt.Client
	cfg    config.MQTTConfig

	// subscriptions tracks active subscriptions for bookkeeping.
	subscriptions map[string]subscription
	subMu         sync.RWMutex

	// state tracks the current connection state.
	state  ConnectionState
	connMu sync.RWMutex

	// Callbacks for connection events (optional, set via SetOnConnect/SetOnDisconnect).
	onConnect    func()
	onDisconnect func(err error)
	callbackMu   sync.RWMutex

	// logger for diagnostics (optional, set via SetLogger).
	logger   Logger
	loggerMu sync.RWMutex
}

// Logger interface for optional logging support.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// subscription holds subscription details for bookkeeping.
type subscription struct {
	topic   string
	qos     byte
	handler MessageHandler
}

// MessageHandler is the callback signature for received messages.
//
// Handlers are invoked in separate goroutines by the paho library.
// They should not block for extended periods.
//
// Parameters:
//   - topic: The topic the message was received on (wildcards expanded)
//   - payload: The raw message payload (typically JSON)
//
// Returns:
//   - error: Logged but does not affect message acknowledgment
type MessageHandler func(topic string, payload []byte) error

// Connect establishes a connection to the MQTT broker.
//
// It performs the following setup:
//  1. Builds connection options from config (broker URL, auth, TLS)
//  2. Configures Last Will and Testament when status publishes are enabled
//  3. Attempts the connection with a 10 second timeout
//  4. Publishes retained online status to <client_id>/status when enabled
//
// Parameters:
//   - cfg: MQTT configuration
//
// Returns:
//   - *Client: Connected client ready for use
//   - error: If the connection fails or times out (wraps ErrConnectionFailed)
func Connect(cfg config.MQTTConfig) (*Client, error) {
	opts := buildClientOptions(cfg)
	if cfg.StatusEnabled {
		configureLWT(opts, cfg.Broker.ClientID)
	}

	c := &Client{
		cfg:           cfg,
		state:         StateConnecting,
		subscriptions: make(map[string]subscription),
	}

	// Set up connection callbacks
	opts.SetOnConnectHandler(func(_ pahomqtt.Client) {
		c.handleConnect()
	})

	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		c.handleDisconnect(err)
	})

	// Create and connect
	c.client = pahomqtt.NewClient(opts)
	token := c.client.Connect()
	if !token.WaitTimeout(defaultConnectTimeout) {
		c.setState(StateDisconnected)
		return nil, fmt.Errorf("%w: timeout after %v", ErrConnectionFailed, defaultConnectTimeout)
	}
	if err := token.Error(); err != nil {
		c.setState(StateDisconnected)
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	// Set connected state immediately after successful connection.
	// The OnConnectHandler callback runs asynchronously and may not have
	// executed yet, so we set it here to ensure IsConnected() returns true.
	c.setState(StateConnected)

	return c, nil
}

// setState records a connection state transition.
func (c *Client) setState(state ConnectionState) {
	c.connMu.Lock()
	c.state = state
	c.connMu.Unlock()
}

// handleConnect is called when the broker acknowledges the connection.
func (c *Client) handleConnect() {
	c.setState(StateConnected)

	if c.cfg.StatusEnabled {
		c.publishOnlineStatus()
	}

	// Notify callback if set
	c.callbackMu.RLock()
	callback := c.onConnect
	c.callbackMu.RUnlock()
	if callback != nil {
		callback()
	}
}

// handleDisconnect is called when the connection is lost unexpectedly.
// The session stays down; the loss is only reported.
func (c *Client) handleDisconnect(err error) {
	c.setState(StateDisconnected)

	if logger := c.getLogger(); logger != nil {
		logger.Warn("unexpected MQTT disconnection", "error", err)
	}

	// Notify callback if set
	c.callbackMu.RLock()
	callback := c.onDisconnect
	c.callbackMu.RUnlock()
	if callback != nil {
		callback(err)
	}
}

// publishOnlineStatus publishes the retained online status for this session.
func (c *Client) publishOnlineStatus() {
	topic := Topics{}.Status(c.cfg.Broker.ClientID)
	payload := buildOnlinePayload(c.cfg.Broker.ClientID)
	c.client.Publish(topic, 1, true, payload)
}

// Close gracefully disconnects from the MQTT broker.
//
// It performs:
//  1. Publishes graceful offline status (different from the LWT crash status)
//     when status publishes are enabled
//  2. Disconnects with a quiesce period for pending operations
//
// Close is idempotent: calling it on an already closed, never connected, or
// zero-value client is a no-op returning nil.
//
// Returns:
//   - error: Always nil; the signature matches io.Closer conventions
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}

	// Check if connected before trying to publish
	if c.IsConnected() {
		if c.cfg.StatusEnabled {
			topic := Topics{}.Status(c.cfg.Broker.ClientID)
			payload := buildOfflinePayload(c.cfg.Broker.ClientID)
			token := c.client.Publish(topic, 1, true, payload)
			token.WaitTimeout(defaultTokenTimeout)
		}
	}

	// Disconnect with quiesce period for pending operations.
	// Paho treats Disconnect on a dead connection as a no-op, so a second
	// Close falls straight through.
	c.client.Disconnect(defaultDisconnectQuiesce)

	c.setState(StateDisconnected)

	return nil
}

// HealthCheck verifies the MQTT connection is alive.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//
// Returns:
//   - error: nil if healthy, error describing the issue otherwise
func (c *Client) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("mqtt health check: %w", ctx.Err())
	default:
	}

	if !c.IsConnected() {
		return ErrNotConnected
	}

	return nil
}

// State returns the current connection state.
func (c *Client) State() ConnectionState {
	if c == nil {
		return StateDisconnected
	}

	c.connMu.RLock()
	defer c.connMu.RUnlock()

	if c.state == "" {
		return StateDisconnected
	}
	return c.state
}

// IsConnected reports whether the session is connected.
//
// Both the tracked state and the underlying client must agree; paho's own
// view catches a transport that died before the lost-connection callback ran.
func (c *Client) IsConnected() bool {
	if c == nil {
		return false
	}

	c.connMu.RLock()
	defer c.connMu.RUnlock()
	return c.state == StateConnected && c.client != nil && c.client.IsConnected()
}

// SetOnConnect sets a callback to be invoked when the broker acknowledges
// the connection.
func (c *Client) SetOnConnect(callback func()) {
	c.callbackMu.Lock()
	c.onConnect = callback
	c.callbackMu.Unlock()
}

// SetOnDisconnect sets a callback to be invoked when the connection is lost.
// The error parameter describes why the connection was lost.
func (c *Client) SetOnDisconnect(callback func(err error)) {
	c.callbackMu.Lock()
	c.onDisconnect = callback
	c.callbackMu.Unlock()
}

// SetLogger sets a logger for connection events, publish acknowledgments,
// and handler errors. If not set, those diagnostics are silently dropped.
func (c *Client) SetLogger(logger Logger) {
	c.loggerMu.Lock()
	c.logger = logger
	c.loggerMu.Unlock()
}

// getLogger returns the current logger (may be nil).
func (c *Client) getLogger() Logger {
	c.loggerMu.RLock()
	defer c.loggerMu.RUnlock()
	return c.logger
}

// wrapHandler wraps a MessageHandler with panic recovery and optional logging.
func (c *Client) wrapHandler(handler MessageHandler) pahomqtt.MessageHandler {
	return func(_ pahomqtt.Client, msg pahomqtt.Message) {
		defer func() {
			if r := recover(); r != nil {
				if logger := c.getLogger(); logger != nil {
					logger.Error("MQTT handler panic recovered",
						"topic", msg.Topic(),
						"panic", r,
					)
				}
			}
		}()

		if err := handler(msg.Topic(), msg.Payload()); err != nil {
			if logger := c.getLogger(); logger != nil {
				logger.Warn("MQTT handler returned error",
					"topic", msg.Topic(),
					"error", err,
				)
			}
		}
	}
}
