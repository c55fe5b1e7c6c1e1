package bus

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/nerrad567/homeguardian-core/internal/controller"
	"github.com/nerrad567/homeguardian-core/internal/device"
	"github.com/nerrad567/homeguardian-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/homeguardian-core/internal/notify"
)

// queueSize bounds pending outbound messages. Beyond it messages are dropped.
const queueSize = 256

// errEmptyCommand is returned to the MQTT client for a blank command payload.
var errEmptyCommand = errors.New("bus: empty command payload")

// Client is the MQTT surface the mirror needs. *mqtt.Client satisfies it.
type Client interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
}

// Executor runs inbound commands.
type Executor interface {
	ControlDevice(deviceID, command string) bool
}

// Logger is the logging interface used by the mirror.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

type message struct {
	topic    string
	payload  []byte
	retained bool
}

// EventMessage is the payload published for a device event.
type EventMessage struct {
	DeviceID  string           `json:"device_id"`
	Kind      device.EventKind `json:"kind"`
	Action    string           `json:"action"`
	Message   string           `json:"message"`
	Requests  []device.Request `json:"requests,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}

// Mirror publishes controller activity to MQTT and accepts MQTT commands.
type Mirror struct {
	client Client
	qos    byte
	topics mqtt.Topics
	ch     chan message
	logger Logger
	done   chan struct{}
	once   sync.Once
}

// NewMirror creates a mirror publishing with qos. Call Run to start
// publishing.
func NewMirror(client Client, qos byte) *Mirror {
	return &Mirror{
		client: client,
		qos:    qos,
		ch:     make(chan message, queueSize),
		logger: noopLogger{},
		done:   make(chan struct{}),
	}
}

// SetLogger sets the logger for publish failures and dropped messages.
func (m *Mirror) SetLogger(logger Logger) {
	m.logger = logger
}

// CommandHandled implements controller.Observer.
func (m *Mirror) CommandHandled(r controller.CommandResult) {
	if !r.Resolved {
		return
	}
	m.enqueue(m.topics.CoreDeviceState(r.DeviceID), r.Snapshot, true)
	for _, ev := range r.Events {
		m.enqueue(m.topics.CoreEvent(string(ev.Kind)), EventMessage{
			DeviceID:  r.DeviceID,
			Kind:      ev.Kind,
			Action:    ev.Record.Action,
			Message:   ev.Record.Message,
			Requests:  ev.Requests,
			Timestamp: ev.Record.Timestamp,
		}, false)
	}
}

// Dispatch implements notify.Dispatcher.
func (m *Mirror) Dispatch(n notify.Notification) {
	if n.Emergency || n.Recipient == "" {
		m.enqueue(m.topics.CoreAlert(), n, false)
		return
	}
	m.enqueue(m.topics.UINotification(n.Recipient), n, false)
}

// Subscribe starts accepting commands on homeguardian/command/<id>. Each
// command runs as SYSTEM; onResult, if set, is told the outcome.
func (m *Mirror) Subscribe(exec Executor, onResult func(deviceID string, ok bool)) error {
	return m.client.Subscribe(m.topics.AllCommands(), m.qos, func(topic string, payload []byte) error {
		id, ok := m.topics.CommandDeviceID(topic)
		if !ok {
			return nil
		}
		command := strings.TrimSpace(string(payload))
		if command == "" {
			return errEmptyCommand
		}

		result := exec.ControlDevice(id, command)
		m.logger.Info("mqtt command handled", "device_id", id, "command", command, "ok", result)
		if onResult != nil {
			onResult(id, result)
		}
		return nil
	})
}

func (m *Mirror) enqueue(topic string, v any, retained bool) {
	payload, err := json.Marshal(v)
	if err != nil {
		m.logger.Error("mqtt mirror marshal failed", "topic", topic, "error", err)
		return
	}
	select {
	case m.ch <- message{topic: topic, payload: payload, retained: retained}:
	default:
		m.logger.Warn("mqtt mirror queue full, dropping message", "topic", topic)
	}
}

// Run publishes queued messages until ctx is cancelled, then flushes what is
// still buffered.
func (m *Mirror) Run(ctx context.Context) {
	defer m.once.Do(func() { close(m.done) })

	for {
		select {
		case msg := <-m.ch:
			m.publish(msg)
		case <-ctx.Done():
			for {
				select {
				case msg := <-m.ch:
					m.publish(msg)
				default:
					return
				}
			}
		}
	}
}

// Done is closed once Run has returned.
func (m *Mirror) Done() <-chan struct{} {
	return m.done
}

func (m *Mirror) publish(msg message) {
	if err := m.client.Publish(msg.topic, msg.payload, m.qos, msg.retained); err != nil {
		m.logger.Warn("mqtt mirror publish failed", "topic", msg.topic, "error", err)
	}
}
