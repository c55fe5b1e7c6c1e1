package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/nerrad567/homeguardian-core/internal/infrastructure/config"
)

// testConfig returns an MQTT configuration for tests that need no broker.
func testConfig() config.MQTTConfig {
	return config.MQTTConfig{
		Broker: config.MQTTBrokerConfig{
			Host:     "127.0.0.1",
			Port:     1883,
			ClientID: "homeguardian-test",
		},
		QoS: 1,
		Reconnect: config.MQTTReconnectConfig{
			InitialDelay: 1,
			MaxDelay:     5,
		},
	}
}

// mockLogger implements Logger for tests.
type mockLogger struct {
	infos  []string
	errors []string
	warns  []string
	mu     sync.Mutex
}

func (l *mockLogger) Info(msg string, _ ...any) {
	l.mu.Lock()
	l.infos = append(l.infos, msg)
	l.mu.Unlock()
}

func (l *mockLogger) Error(msg string, _ ...any) {
	l.mu.Lock()
	l.errors = append(l.errors, msg)
	l.mu.Unlock()
}

func (l *mockLogger) Warn(msg string, _ ...any) {
	l.mu.Lock()
	l.warns = append(l.warns, msg)
	l.mu.Unlock()
}

// fakeMessage implements paho's Message interface.
type fakeMessage struct {
	topic   string
	payload []byte
}

func (m fakeMessage) Duplicate() bool   { return false }
func (m fakeMessage) Qos() byte         { return 1 }
func (m fakeMessage) Retained() bool    { return false }
func (m fakeMessage) Topic() string     { return m.topic }
func (m fakeMessage) MessageID() uint16 { return 1 }
func (m fakeMessage) Payload() []byte   { return m.payload }
func (m fakeMessage) Ack()              {}

// =============================================================================
// Validation Tests (no broker)
// =============================================================================

func TestPublish_Validation(t *testing.T) {
	c := &Client{cfg: testConfig(), subscriptions: make(map[string]subscription)}

	tests := []struct {
		name    string
		topic   string
		payload []byte
		qos     byte
		wantErr error
	}{
		{"empty topic", "", []byte("x"), 1, ErrInvalidTopic},
		{"invalid qos", "homeguardian/test", []byte("x"), 3, ErrInvalidQoS},
		{"too large", "homeguardian/test", make([]byte, maxPayloadSize+1), 1, ErrPayloadTooLarge},
		{"not connected", "homeguardian/test", []byte("x"), 1, ErrNotConnected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.Publish(tt.topic, tt.payload, tt.qos, false)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Publish() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSubscribe_Validation(t *testing.T) {
	c := &Client{cfg: testConfig(), subscriptions: make(map[string]subscription)}
	handler := func(string, []byte) error { return nil }

	tests := []struct {
		name    string
		topic   string
		qos     byte
		handler MessageHandler
		wantErr error
	}{
		{"empty topic", "", 1, handler, ErrInvalidTopic},
		{"invalid qos", "homeguardian/command/+", 5, handler, ErrInvalidQoS},
		{"nil handler", "homeguardian/command/+", 1, nil, ErrSubscribeFailed},
		{"not connected", "homeguardian/command/+", 1, handler, ErrNotConnected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.Subscribe(tt.topic, tt.qos, tt.handler)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Subscribe() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if c.SubscriptionCount() != 0 {
		t.Errorf("SubscriptionCount() = %d, want 0 after failed subscribes", c.SubscriptionCount())
	}
}

func TestHealthCheck_NotConnected(t *testing.T) {
	c := &Client{cfg: testConfig()}

	if err := c.HealthCheck(context.Background()); !errors.Is(err, ErrNotConnected) {
		t.Errorf("HealthCheck() error = %v, want ErrNotConnected", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := c.HealthCheck(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("HealthCheck(cancelled) error = %v, want context.Canceled", err)
	}
}

func TestClose_NilClient(t *testing.T) {
	c := &Client{}
	if err := c.Close(); err != nil {
		t.Errorf("Close() on unconnected client error = %v", err)
	}
}

func TestConnect_CancelledContext(t *testing.T) {
	cfg := testConfig()
	cfg.Broker.Port = 1 // nothing listens here

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Connect(ctx, cfg)
	if !errors.Is(err, ErrConnectionFailed) {
		t.Errorf("Connect() error = %v, want ErrConnectionFailed", err)
	}
}

// =============================================================================
// Handler Wrapping
// =============================================================================

func TestWrapHandler_LogsErrors(t *testing.T) {
	c := &Client{}
	logger := &mockLogger{}
	c.SetLogger(logger)

	h := c.wrapHandler(func(string, []byte) error { return errors.New("bad payload") })
	h(nil, fakeMessage{topic: "homeguardian/command/D001", payload: []byte("ON")})

	if len(logger.warns) != 1 {
		t.Errorf("warns = %v, want one entry", logger.warns)
	}
}

func TestWrapHandler_RecoversPanic(t *testing.T) {
	c := &Client{}
	logger := &mockLogger{}
	c.SetLogger(logger)

	h := c.wrapHandler(func(string, []byte) error { panic("boom") })
	h(nil, fakeMessage{topic: "homeguardian/command/D001"})

	if len(logger.errors) != 1 {
		t.Errorf("errors = %v, want one entry", logger.errors)
	}
}

func TestWrapHandler_NoLogger(t *testing.T) {
	c := &Client{}
	h := c.wrapHandler(func(string, []byte) error { panic("boom") })
	h(nil, fakeMessage{topic: "t"}) // must not panic
}

func TestSetLogger(t *testing.T) {
	c := &Client{}
	c.SetLogger(&mockLogger{})
	if c.currentLogger() == nil {
		t.Error("currentLogger() = nil after SetLogger()")
	}
	c.SetLogger(nil)
	if c.currentLogger() != nil {
		t.Error("currentLogger() should be nil after SetLogger(nil)")
	}
}

func TestConnectionLost_MarksDisconnected(t *testing.T) {
	c := &Client{}
	logger := &mockLogger{}
	c.SetLogger(logger)
	c.connected.Store(true)

	c.onConnectionLost(errors.New("broker went away"))

	if c.connected.Load() {
		t.Error("connected = true after connection lost")
	}
	if c.IsConnected() {
		t.Error("IsConnected() = true after connection lost")
	}
	if len(logger.warns) != 1 {
		t.Errorf("warns = %v, want one entry", logger.warns)
	}
}

// =============================================================================
// Options
// =============================================================================

func TestBuildClientOptions(t *testing.T) {
	cfg := testConfig()
	cfg.Auth = config.MQTTAuthConfig{Username: "hub", Password: "secret"}
	cfg.Broker.TLS = true

	opts := buildClientOptions(cfg)

	if len(opts.Servers) != 1 || opts.Servers[0].String() != "ssl://127.0.0.1:1883" {
		t.Errorf("Servers = %v, want ssl://127.0.0.1:1883", opts.Servers)
	}
	if opts.ClientID != "homeguardian-test" {
		t.Errorf("ClientID = %q", opts.ClientID)
	}
	if opts.Username != "hub" || opts.Password != "secret" {
		t.Errorf("credentials not applied")
	}
	if opts.TLSConfig == nil {
		t.Error("TLSConfig = nil with TLS enabled")
	}
	if !opts.AutoReconnect {
		t.Error("AutoReconnect = false")
	}
}

func TestSetWill(t *testing.T) {
	opts := buildClientOptions(testConfig())
	setWill(opts, "homeguardian-test")

	if !opts.WillEnabled || opts.WillTopic != "homeguardian/system/status" || !opts.WillRetained {
		t.Errorf("LWT = enabled:%v topic:%q retained:%v", opts.WillEnabled, opts.WillTopic, opts.WillRetained)
	}
	var will hubStatus
	if err := json.Unmarshal(opts.WillPayload, &will); err != nil {
		t.Fatalf("WillPayload is not JSON: %v", err)
	}
	if will.Status != statusOffline || will.Reason != reasonUnexpected {
		t.Errorf("will = %+v, want offline/%s", will, reasonUnexpected)
	}
}

func TestStatusPayload(t *testing.T) {
	online := string(statusPayload("hg", statusOnline, ""))
	if !strings.Contains(online, `"status":"online"`) || !strings.Contains(online, `"client_id":"hg"`) {
		t.Errorf("online payload = %s", online)
	}
	if strings.Contains(online, "reason") {
		t.Errorf("online payload has a reason: %s", online)
	}
	if p := string(statusPayload("hg", statusOffline, reasonShutdown)); !strings.Contains(p, reasonShutdown) {
		t.Errorf("offline payload = %s", p)
	}
}

// =============================================================================
// Topics Tests
// =============================================================================

func TestTopicBuilders(t *testing.T) {
	topics := Topics{}
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"CoreDeviceState", topics.CoreDeviceState("D001"), "homeguardian/core/device/D001/state"},
		{"CoreEvent", topics.CoreEvent("alert"), "homeguardian/core/event/alert"},
		{"CoreAlert", topics.CoreAlert(), "homeguardian/core/alert"},
		{"SystemStatus", topics.SystemStatus(), "homeguardian/system/status"},
		{"UINotification", topics.UINotification("guest1"), "homeguardian/ui/guest1/notification"},
		{"Command", topics.Command("D002"), "homeguardian/command/D002"},
		{"AllCommands", topics.AllCommands(), "homeguardian/command/+"},
		{"AllCoreDeviceStates", topics.AllCoreDeviceStates(), "homeguardian/core/device/+/state"},
		{"AllCoreEvents", topics.AllCoreEvents(), "homeguardian/core/event/+"},
		{"AllTopics", topics.AllTopics(), "homeguardian/#"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %q, want %q", tt.name, tt.got, tt.want)
		}
	}
}

func TestCommandDeviceID(t *testing.T) {
	tests := []struct {
		topic  string
		want   string
		wantOK bool
	}{
		{"homeguardian/command/D001", "D001", true},
		{"homeguardian/command/", "", false},
		{"homeguardian/command/D001/extra", "", false},
		{"homeguardian/core/device/D001/state", "", false},
	}
	for _, tt := range tests {
		got, ok := Topics{}.CommandDeviceID(tt.topic)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("CommandDeviceID(%q) = %q, %v; want %q, %v", tt.topic, got, ok, tt.want, tt.wantOK)
		}
	}
}
