package device

// Alarm command names.
const (
	CmdPowerOff      = "POWER_OFF"
	CmdEnableMotion  = "ENABLE_MS"
	CmdDisableMotion = "DISABLE_MS"
)

// Alarm log messages matched by callers.
const (
	MessageNoCamera   = "No camera linked. Cannot record."
	MessageIntrusion  = "Intrusion detected"
	MessageMotionSkip = "Motion ignored"
)

// Alarm is an intruder alarm that can drive a linked camera.
type Alarm struct {
	core

	armed          bool
	enabled        bool
	motionLinked   bool
	linkedCameraID string

	commands commandTable
}

// NewAlarm creates an enabled, disarmed alarm.
func NewAlarm(id, name string, opts ...Option) *Alarm {
	a := &Alarm{enabled: true}
	a.init(KindAlarm, id, name, opts)
	a.commands = commandTable{
		CmdArm:           func(Command) bool { return a.arm() },
		CmdDisarm:        func(Command) bool { return a.disarm() },
		CmdPowerOff:      func(Command) bool { return a.powerOff() },
		CmdEnableMotion:  func(Command) bool { return a.setMotionLinked(true) },
		CmdDisableMotion: func(Command) bool { return a.setMotionLinked(false) },
		CmdTriggerCam:    func(Command) bool { return a.triggerCamera() },
		CmdEmergency:     func(Command) bool { return a.emergency() },
		CmdLinkCamera: func(cmd Command) bool {
			id, ok := a.idArg(cmd)
			return ok && a.linkCamera(id)
		},
		CmdMotion: func(Command) bool { return a.motion() },
	}
	return a
}

// HandleCommand implements Device.
func (a *Alarm) HandleCommand(command string) bool {
	return a.handle(a.commands, command)
}

// Armed reports whether the alarm is armed.
func (a *Alarm) Armed() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.armed
}

// Enabled reports whether the alarm system is powered.
func (a *Alarm) Enabled() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.enabled
}

// MotionLinked reports whether motion events reach the alarm.
func (a *Alarm) MotionLinked() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.motionLinked
}

// LinkedCameraID returns the linked camera, or "".
func (a *Alarm) LinkedCameraID() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.linkedCameraID
}

// Snapshot implements Device.
func (a *Alarm) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshot(map[string]any{
		"armed":            a.armed,
		"enabled":          a.enabled,
		"motion_linked":    a.motionLinked,
		"linked_camera_id": a.linkedCameraID,
	})
}

func (a *Alarm) arm() bool {
	a.armed = true
	a.enabled = true
	a.record(EventState, CmdArm, "Alarm armed")
	return true
}

// disarm un-arms but leaves the system enabled.
func (a *Alarm) disarm() bool {
	a.armed = false
	a.record(EventState, CmdDisarm, "Alarm disarmed")
	return true
}

func (a *Alarm) powerOff() bool {
	a.armed = false
	a.enabled = false
	a.record(EventState, CmdPowerOff, "Alarm system powered off")
	return true
}

func (a *Alarm) setMotionLinked(linked bool) bool {
	a.motionLinked = linked
	if linked {
		a.record(EventState, CmdEnableMotion, "Motion sensor link enabled")
	} else {
		a.record(EventState, CmdDisableMotion, "Motion sensor link disabled")
	}
	return true
}

func (a *Alarm) triggerCamera() bool {
	if a.linkedCameraID == "" {
		a.record(EventRejected, CmdTriggerCam, MessageNoCamera)
		return false
	}
	a.record(EventState, CmdTriggerCam, "Camera "+a.linkedCameraID+" triggered to record",
		Request{DeviceID: a.linkedCameraID, Command: CmdRecord})
	return true
}

func (a *Alarm) emergency() bool {
	a.record(EventEmergency, CmdEmergency, "Emergency raised by alarm "+a.name)
	return true
}

func (a *Alarm) linkCamera(id string) bool {
	a.linkedCameraID = id
	a.record(EventState, CmdLinkCamera, "Linked to camera "+id)
	return true
}

func (a *Alarm) motion() bool {
	if !a.armed || !a.enabled || !a.motionLinked {
		a.record(EventInfo, CmdMotion, MessageMotionSkip)
		return true
	}
	var reqs []Request
	if a.linkedCameraID != "" {
		reqs = append(reqs, Request{DeviceID: a.linkedCameraID, Command: CmdRecord})
	}
	a.record(EventEmergency, CmdMotion, MessageIntrusion, reqs...)
	return true
}
