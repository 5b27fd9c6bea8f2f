package mqtt

import (
	"fmt"
	"strings"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
)

// Publish sends a message to the specified MQTT topic.
//
// Publish is asynchronous: it returns as soon as the message is handed to
// the underlying client, and the broker's acknowledgment is observed on a
// background goroutine. QoS 1 delivery outcomes (message ID on success,
// failure otherwise) surface through the logger set with SetLogger. The
// feeder's poll loop must not stall behind a slow broker, so there is no
// synchronous wait to block it.
//
// Parameters:
//   - topic: The topic to publish to (e.g., "adsb/aircraft")
//   - payload: The message payload (typically JSON)
//   - qos: Quality of Service level (0, 1, or 2)
//   - retained: Whether the broker should retain the message for new subscribers
//
// QoS Levels:
//   - 0: At most once (fire and forget)
//   - 1: At least once (guaranteed delivery, may duplicate)
//   - 2: Exactly once (guaranteed, no duplicates, higher overhead)
//
// Returns:
//   - error: nil once handed off, or a validation/connection error
//
// Example:
//
//	err := client.Publish("adsb/aircraft", payload, 1, false)
func (c *Client) Publish(topic string, payload []byte, qos byte, retained bool) error {
	// Validate inputs
	if topic == "" {
		return ErrInvalidTopic
	}
	if strings.ContainsAny(topic, "+#") {
		return fmt.Errorf("%w: wildcards not allowed in publish topic %q", ErrInvalidTopic, topic)
	}
	if qos > maxQoS {
		return ErrInvalidQoS
	}

	// Check connection state
	if !c.IsConnected() {
		return ErrNotConnected
	}

	token := c.client.Publish(topic, qos, retained, payload)
	go c.watchPublish(token, topic)

	return nil
}

// watchPublish waits for a publish token to resolve and reports the outcome.
func (c *Client) watchPublish(token pahomqtt.Token, topic string) {
	logger := c.getLogger()

	if !token.WaitTimeout(defaultTokenTimeout) {
		if logger != nil {
			logger.Warn("publish acknowledgment timed out",
				"topic", topic,
				"timeout", defaultTokenTimeout,
			)
		}
		return
	}
	if err := token.Error(); err != nil {
		if logger != nil {
			logger.Warn("publish failed",
				"topic", topic,
				"error", err,
			)
		}
		return
	}

	if logger != nil {
		// The message ID is only meaningful for QoS 1 and 2 deliveries.
		if pt, ok := token.(*pahomqtt.PublishToken); ok {
			logger.Debug("publish acknowledged",
				"topic", topic,
				"message_id", pt.MessageID(),
			)
		}
	}
}

// PublishString is a convenience method that publishes a string payload.
//
// This is equivalent to calling Publish with []byte(payload).
func (c *Client) PublishString(topic string, payload string, qos byte, retained bool) error {
	return c.Publish(topic, []byte(payload), qos, retained)
}
