package device

import "github.com/nerrad567/homeguardian-core/internal/activity"

// EventKind classifies an event for routing.
type EventKind string

// Event kinds.
const (
	// EventState reports a state change.
	EventState EventKind = "state"

	// EventInfo reports something worth logging that changed nothing.
	EventInfo EventKind = "info"

	// EventRejected reports a validation or precondition failure.
	EventRejected EventKind = "rejected"

	// EventAlert reports a security-relevant occurrence users should hear about.
	EventAlert EventKind = "alert"

	// EventEmergency asks for emergency services to be contacted.
	EventEmergency EventKind = "emergency"
)

// Request asks the controller to run a command on another device.
type Request struct {
	DeviceID string `json:"device_id"`
	Command  string `json:"command"`
}

// Event is a notification-eligible description of one device operation.
// Record is the log entry appended for the same operation.
type Event struct {
	Kind     EventKind       `json:"kind"`
	Record   activity.Record `json:"record"`
	Requests []Request       `json:"requests,omitempty"`
}
