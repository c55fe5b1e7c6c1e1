package controller

import (
	"time"

	"github.com/nerrad567/homeguardian-core/internal/activity"
	"github.com/nerrad567/homeguardian-core/internal/device"
	"github.com/nerrad567/homeguardian-core/internal/notify"
)

// Logger is the logging interface used by the controller.
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

// CommandResult describes one handled command. Follow-up commands produce
// their own results with Actor SYSTEM and Depth > 0.
type CommandResult struct {
	Actor     string          `json:"actor"`
	DeviceID  string          `json:"device_id"`
	Command   string          `json:"command"`
	OK        bool            `json:"ok"`
	Resolved  bool            `json:"resolved"` // false when the device was not found or the actor was refused
	Depth     int             `json:"depth"`
	Snapshot  device.Snapshot `json:"snapshot"`
	Events    []device.Event  `json:"events,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// Observer is told about every command after it completes.
// Implementations must not block.
type Observer interface {
	CommandHandled(result CommandResult)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(CommandResult)

// CommandHandled implements Observer.
func (f ObserverFunc) CommandHandled(r CommandResult) { f(r) }

// Deps holds the optional collaborators of a Controller. Zero values are
// replaced with no-op implementations.
type Deps struct {
	// ActivitySink receives every device and controller record.
	ActivitySink activity.Sink

	// NotifySink keeps notifications and contact changes.
	NotifySink notify.Sink

	// Dispatcher delivers notifications that are deliverable.
	Dispatcher notify.Dispatcher

	// Observers are called after each command, outside the lock.
	Observers []Observer

	// EmergencyContact is the contact address on emergency notifications.
	EmergencyContact string

	Logger Logger

	// Now is the clock for controller records. Defaults to time.Now.
	Now func() time.Time
}

type noopSink struct{}

func (noopSink) Archive(activity.Record)       {}
func (noopSink) Store(notify.Notification)     {}
func (noopSink) ContactChanged(string, string) {}

type noopDispatcher struct{}

func (noopDispatcher) Dispatch(notify.Notification) {}
