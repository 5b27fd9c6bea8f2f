//go:build integration

package mqtt

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bmidgley/adsb2mqtt/internal/infrastructure/config"
)

// Integration tests for live broker behaviour.
// These tests require a running MQTT broker at 127.0.0.1:1883.
//
// Run with:
//   go test -tags=integration -v ./internal/infrastructure/mqtt/...
//
// Note: Some tests may be flaky in CI due to timing dependencies.
// Consider running with: go test -tags=integration -count=1 -v ...

func integrationConfig() config.MQTTConfig {
	return config.MQTTConfig{
		Broker: config.MQTTBrokerConfig{
			Host:     "127.0.0.1",
			Port:     1883,
			ClientID: "adsb2mqtt-integration-test",
			TLS:      false,
		},
		Auth: config.MQTTAuthConfig{
			Username: "",
			Password: "",
		},
		Topic:         "adsb/aircraft",
		StatusEnabled: false,
	}
}

// TestIntegration_ConnectAndState verifies the state machine over a real
// connect/close cycle.
func TestIntegration_ConnectAndState(t *testing.T) {
	cfg := integrationConfig()
	cfg.Broker.ClientID = "adsb2mqtt-int-state"

	client, err := Connect(cfg)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	if got := client.State(); got != StateConnected {
		t.Errorf("State() after Connect = %q, want %q", got, StateConnected)
	}
	if !client.IsConnected() {
		t.Error("IsConnected() = false after Connect, want true")
	}

	if err := client.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if got := client.State(); got != StateDisconnected {
		t.Errorf("State() after Close = %q, want %q", got, StateDisconnected)
	}
	if client.IsConnected() {
		t.Error("IsConnected() = true after Close, want false")
	}

	// Second close must be a no-op
	if err := client.Close(); err != nil {
		t.Errorf("Close() second call error = %v, want nil", err)
	}
}

// TestIntegration_SubscriptionTracking verifies subscriptions are tracked
// and the broker grants the requested QoS.
func TestIntegration_SubscriptionTracking(t *testing.T) {
	cfg := integrationConfig()
	cfg.Broker.ClientID = "adsb2mqtt-int-sub-track"

	client, err := Connect(cfg)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	topics := []string{
		"adsb/int/test/topic1",
		"adsb/int/test/topic2",
		"adsb/int/test/topic3",
	}

	handler := func(topic string, payload []byte) error {
		return nil
	}

	for _, topic := range topics {
		granted, err := client.Subscribe(topic, 1, handler)
		if err != nil {
			t.Fatalf("Subscribe(%s) error = %v", topic, err)
		}
		if granted != 1 {
			t.Errorf("Subscribe(%s) granted = %d, want 1", topic, granted)
		}
	}

	if client.SubscriptionCount() != len(topics) {
		t.Errorf("SubscriptionCount() = %d, want %d", client.SubscriptionCount(), len(topics))
	}

	for _, topic := range topics {
		if !client.HasSubscription(topic) {
			t.Errorf("HasSubscription(%s) = false, want true", topic)
		}
	}

	if err := client.Unsubscribe(topics[0]); err != nil {
		t.Fatalf("Unsubscribe() error = %v", err)
	}

	if client.SubscriptionCount() != len(topics)-1 {
		t.Errorf("SubscriptionCount() after unsubscribe = %d, want %d", client.SubscriptionCount(), len(topics)-1)
	}

	if client.HasSubscription(topics[0]) {
		t.Errorf("HasSubscription(%s) = true after unsubscribe", topics[0])
	}
}

// TestIntegration_MessageRoundtrip verifies pub/sub works end-to-end.
func TestIntegration_MessageRoundtrip(t *testing.T) {
	cfg := integrationConfig()

	cfg.Broker.ClientID = "adsb2mqtt-int-pub"
	pubClient, err := Connect(cfg)
	if err != nil {
		t.Fatalf("Connect() publisher error = %v", err)
	}
	defer pubClient.Close()

	cfg.Broker.ClientID = "adsb2mqtt-int-sub"
	subClient, err := Connect(cfg)
	if err != nil {
		t.Fatalf("Connect() subscriber error = %v", err)
	}
	defer subClient.Close()

	topic := "adsb/int/roundtrip"
	expected := `{"now":1724188800.0,"aircraft":[{"hex":"a1b2c3"}]}`

	received := make(chan string, 1)
	var once sync.Once

	_, err = subClient.Subscribe(topic, 1, func(t string, p []byte) error {
		once.Do(func() {
			received <- string(p)
		})
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	time.Sleep(100 * time.Millisecond)

	err = pubClient.PublishString(topic, expected, 1, false)
	if err != nil {
		t.Fatalf("PublishString() error = %v", err)
	}

	select {
	case msg := <-received:
		if msg != expected {
			t.Errorf("Received = %q, want %q", msg, expected)
		}
	case <-time.After(5 * time.Second):
		t.Error("Timeout waiting for message")
	}
}

// TestIntegration_WildcardMismatch verifies, against a real broker, that the
// observer's single-level pattern does not receive messages published to the
// base topic itself, only to levels below it.
func TestIntegration_WildcardMismatch(t *testing.T) {
	cfg := integrationConfig()

	cfg.Broker.ClientID = "adsb2mqtt-int-wild-pub"
	pubClient, err := Connect(cfg)
	if err != nil {
		t.Fatalf("Connect() publisher error = %v", err)
	}
	defer pubClient.Close()

	cfg.Broker.ClientID = "adsb2mqtt-int-wild-sub"
	subClient, err := Connect(cfg)
	if err != nil {
		t.Fatalf("Connect() subscriber error = %v", err)
	}
	defer subClient.Close()

	base := "adsb/int/mismatch"
	pattern := Topics{}.AircraftPattern(base)

	var mu sync.Mutex
	var receivedTopics []string

	_, err = subClient.Subscribe(pattern, 1, func(topic string, payload []byte) error {
		mu.Lock()
		receivedTopics = append(receivedTopics, topic)
		mu.Unlock()
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe(%s) error = %v", pattern, err)
	}

	time.Sleep(100 * time.Millisecond)

	// Publish to the base topic (what the bridge does) and one level below.
	if err := pubClient.PublishString(base, `{"aircraft":[]}`, 1, false); err != nil {
		t.Fatalf("Publish(%s) error = %v", base, err)
	}
	if err := pubClient.PublishString(base+"/east", `{"aircraft":[]}`, 1, false); err != nil {
		t.Fatalf("Publish(%s) error = %v", base+"/east", err)
	}

	time.Sleep(500 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()

	for _, topic := range receivedTopics {
		if topic == base {
			t.Errorf("pattern %q received base-topic publish %q; '+' must not match the parent", pattern, base)
		}
	}

	var sawSub bool
	for _, topic := range receivedTopics {
		if topic == base+"/east" {
			sawSub = true
		}
	}
	if !sawSub {
		t.Errorf("pattern %q did not receive publish to %q", pattern, base+"/east")
	}
}

// TestIntegration_StatusLifecycle verifies the retained online status is
// visible to a late subscriber when status publishing is enabled.
func TestIntegration_StatusLifecycle(t *testing.T) {
	cfg := integrationConfig()
	cfg.Broker.ClientID = "adsb2mqtt-int-status"
	cfg.StatusEnabled = true

	feeder, err := Connect(cfg)
	if err != nil {
		t.Fatalf("Connect() feeder error = %v", err)
	}
	defer feeder.Close()

	// Give the retained online publish time to land
	time.Sleep(200 * time.Millisecond)

	obsCfg := integrationConfig()
	obsCfg.Broker.ClientID = "adsb2mqtt-int-status-obs"
	observer, err := Connect(obsCfg)
	if err != nil {
		t.Fatalf("Connect() observer error = %v", err)
	}
	defer observer.Close()

	statusTopic := Topics{}.Status(cfg.Broker.ClientID)
	received := make(chan string, 1)
	var once sync.Once

	_, err = observer.Subscribe(statusTopic, 1, func(t string, p []byte) error {
		once.Do(func() {
			received <- string(p)
		})
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe(%s) error = %v", statusTopic, err)
	}

	select {
	case payload := <-received:
		if !strings.Contains(payload, `"status":"online"`) {
			t.Errorf("retained status = %q, want online payload", payload)
		}
	case <-time.After(5 * time.Second):
		t.Error("Timeout waiting for retained status message")
	}
}

// TestIntegration_PublishAckLogged verifies the async acknowledgment path
// reports delivery through the logger.
func TestIntegration_PublishAckLogged(t *testing.T) {
	cfg := integrationConfig()
	cfg.Broker.ClientID = "adsb2mqtt-int-ack"

	client, err := Connect(cfg)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	logger := &captureLogger{}
	client.SetLogger(logger)

	if err := client.PublishString("adsb/int/ack", `{"aircraft":[]}`, 1, false); err != nil {
		t.Fatalf("PublishString() error = %v", err)
	}

	deadline := time.After(5 * time.Second)
	for {
		if logger.has("debug", "publish acknowledged") {
			return
		}
		select {
		case <-deadline:
			t.Fatal("publish acknowledgment never logged")
		case <-time.After(50 * time.Millisecond):
		}
	}
}
