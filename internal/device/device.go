package device

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/nerrad567/homeguardian-core/internal/activity"
)

// Kind identifies a device variant.
type Kind string

// Device kinds.
const (
	KindLight        Kind = "light"
	KindLock         Kind = "lock"
	KindAlarm        Kind = "alarm"
	KindCamera       Kind = "camera"
	KindMotionSensor Kind = "motion_sensor"
)

// AllKinds lists every supported kind.
var AllKinds = []Kind{KindLight, KindLock, KindAlarm, KindCamera, KindMotionSensor}

// maxNameLength bounds device names.
const maxNameLength = 100

// idPattern allows IDs such as "D001" or "front-door_lock".
var idPattern = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)

// Device is the capability set shared by every variant. The controller
// depends only on this interface.
type Device interface {
	ID() string
	Name() string
	Kind() Kind
	Connected() bool

	// HandleCommand executes a command token and reports success. It never
	// returns an error: failures are logged and reported as false.
	HandleCommand(command string) bool

	// Log returns a copy of the device's own records in append order.
	Log() []activity.Record

	// Snapshot returns a point-in-time copy of the device's state.
	Snapshot() Snapshot

	// DrainEvents returns and clears the queued events.
	DrainEvents() []Event
}

// Snapshot is a serialisable copy of a device's state. It shares nothing
// with the device.
type Snapshot struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Kind      Kind           `json:"type"`
	Connected bool           `json:"connected"`
	State     map[string]any `json:"state"`
}

// Option configures a device at construction.
type Option func(*core)

// WithClock overrides the time source used for records and detections.
func WithClock(now func() time.Time) Option {
	return func(c *core) {
		if now != nil {
			c.now = now
		}
	}
}

// ParseKind converts a string such as "light" or "Motion_Sensor" to a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, valid := range AllKinds {
		if k == valid {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
}

// New creates a device of the given kind after validating its identity.
func New(kind Kind, id, name string, opts ...Option) (Device, error) {
	if !idPattern.MatchString(id) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	if strings.TrimSpace(name) == "" || len(name) > maxNameLength {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	switch kind {
	case KindLight:
		return NewLight(id, name, opts...), nil
	case KindLock:
		return NewLock(id, name, opts...), nil
	case KindAlarm:
		return NewAlarm(id, name, opts...), nil
	case KindCamera:
		return NewCamera(id, name, opts...), nil
	case KindMotionSensor:
		return NewMotionSensor(id, name, opts...), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}
}
