package device

import (
	"fmt"
	"slices"
	"time"
)

// Motion sensor command names.
const (
	CmdDetect = "DETECT"

	// MessageDetectionDisabled is logged for a detection while disabled.
	MessageDetectionDisabled = "Motion detected but sensor is disabled."
)

// MotionSensor detects motion and fans it out to linked devices.
type MotionSensor struct {
	core

	enabled       bool
	sensitivity   int
	lastDetection time.Time
	alarms        []string
	lights        []string
	cameras       []string

	commands commandTable
}

// NewMotionSensor creates a disabled sensor at sensitivity 5.
func NewMotionSensor(id, name string, opts ...Option) *MotionSensor {
	m := &MotionSensor{sensitivity: defaultMotionSensitivity}
	m.init(KindMotionSensor, id, name, opts)
	enable := func(Command) bool { return m.setEnabled(true) }
	disable := func(Command) bool { return m.setEnabled(false) }
	m.commands = commandTable{
		CmdEnable:        enable,
		CmdEnableSensor:  enable,
		CmdDisable:       disable,
		CmdDisableSensor: disable,
		CmdSensitivity: func(cmd Command) bool {
			n, ok := m.intArg(cmd)
			return ok && m.setSensitivity(n)
		},
		CmdDetect: func(Command) bool { return m.registerDetection() },
		CmdLinkAlarm: func(cmd Command) bool {
			id, ok := m.idArg(cmd)
			return ok && m.link(&m.alarms, CmdLinkAlarm, "alarm", id)
		},
		CmdLinkLight: func(cmd Command) bool {
			id, ok := m.idArg(cmd)
			return ok && m.link(&m.lights, CmdLinkLight, "light", id)
		},
		CmdLinkCamera: func(cmd Command) bool {
			id, ok := m.idArg(cmd)
			return ok && m.link(&m.cameras, CmdLinkCamera, "camera", id)
		},
	}
	return m
}

// HandleCommand implements Device.
func (m *MotionSensor) HandleCommand(command string) bool {
	return m.handle(m.commands, command)
}

// RegisterDetection records a motion detection. While disabled it only logs
// and returns false.
func (m *MotionSensor) RegisterDetection() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.registerDetection()
}

// SetSensitivity sets the sensitivity in [0,10].
func (m *MotionSensor) SetSensitivity(n int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.setSensitivity(n)
}

// Enabled reports whether the sensor is active.
func (m *MotionSensor) Enabled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.enabled
}

// Sensitivity returns the sensitivity.
func (m *MotionSensor) Sensitivity() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sensitivity
}

// LastDetection returns the time of the last detection while enabled.
func (m *MotionSensor) LastDetection() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastDetection
}

// LinkedAlarms returns a copy of the linked alarm IDs.
func (m *MotionSensor) LinkedAlarms() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.alarms)
}

// LinkedLights returns a copy of the linked light IDs.
func (m *MotionSensor) LinkedLights() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.lights)
}

// LinkedCameras returns a copy of the linked camera IDs.
func (m *MotionSensor) LinkedCameras() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.cameras)
}

// Snapshot implements Device.
func (m *MotionSensor) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	state := map[string]any{
		"enabled":        m.enabled,
		"sensitivity":    m.sensitivity,
		"linked_alarms":  append([]string{}, m.alarms...),
		"linked_lights":  append([]string{}, m.lights...),
		"linked_cameras": append([]string{}, m.cameras...),
		"last_detection": nil,
	}
	if !m.lastDetection.IsZero() {
		state["last_detection"] = m.lastDetection.UTC().Format(time.RFC3339)
	}
	return m.snapshot(state)
}

func (m *MotionSensor) setEnabled(enabled bool) bool {
	m.enabled = enabled
	if enabled {
		m.record(EventState, CmdEnable, "Motion sensor enabled")
	} else {
		m.record(EventState, CmdDisable, "Motion sensor disabled")
	}
	return true
}

func (m *MotionSensor) setSensitivity(n int) bool {
	if n < MinMotionSensitivity || n > MaxMotionSensitivity {
		m.record(EventRejected, CmdSensitivity,
			fmt.Sprintf("Sensitivity %d rejected: must be between %d and %d", n, MinMotionSensitivity, MaxMotionSensitivity))
		return false
	}
	m.sensitivity = n
	m.record(EventState, CmdSensitivity, fmt.Sprintf("Sensitivity set to: %d", n))
	return true
}

func (m *MotionSensor) registerDetection() bool {
	if !m.enabled {
		m.record(EventInfo, CmdDetect, MessageDetectionDisabled)
		return false
	}
	m.lastDetection = m.now()

	reqs := make([]Request, 0, len(m.lights)+len(m.cameras)+len(m.alarms))
	for _, id := range m.lights {
		reqs = append(reqs, Request{DeviceID: id, Command: CmdOn})
	}
	for _, id := range m.cameras {
		reqs = append(reqs, Request{DeviceID: id, Command: CmdRecord})
	}
	for _, id := range m.alarms {
		reqs = append(reqs, Request{DeviceID: id, Command: CmdMotion})
	}
	m.record(EventAlert, CmdDetect, "Motion detected by "+m.name, reqs...)
	return true
}

func (m *MotionSensor) link(ids *[]string, action, what, id string) bool {
	if slices.Contains(*ids, id) {
		m.record(EventRejected, action, fmt.Sprintf("Already linked to %s %s", what, id))
		return false
	}
	*ids = append(*ids, id)
	m.record(EventState, action, fmt.Sprintf("Linked to %s %s", what, id))
	return true
}
