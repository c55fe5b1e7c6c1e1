package device

import "fmt"

// Camera ranges and command names.
const (
	MinZoom = 1
	MaxZoom = 10

	CmdStop             = "STOP"
	CmdCamEnableMotion  = "ENABLE_MOTION"
	CmdCamDisableMotion = "DISABLE_MOTION"
	CmdZoom             = "ZOOM"
	CmdFootage          = "FOOTAGE"
)

// Camera is a security camera with zoom and recording.
type Camera struct {
	core

	recording    bool
	enabled      bool
	motionLinked bool
	zoomLevel    int

	commands commandTable
}

// NewCamera creates an enabled, idle camera at zoom level 1.
func NewCamera(id, name string, opts ...Option) *Camera {
	c := &Camera{enabled: true, zoomLevel: MinZoom}
	c.init(KindCamera, id, name, opts)
	c.commands = commandTable{
		CmdEnable:           func(Command) bool { return c.enable() },
		CmdDisable:          func(Command) bool { return c.disable() },
		CmdRecord:           func(Command) bool { return c.startRecording() },
		CmdStop:             func(Command) bool { return c.stopRecording() },
		CmdCamEnableMotion:  func(Command) bool { return c.setMotionLinked(true) },
		CmdCamDisableMotion: func(Command) bool { return c.setMotionLinked(false) },
		CmdZoom: func(cmd Command) bool {
			n, ok := c.intArg(cmd)
			return ok && c.zoom(n)
		},
		CmdFootage:   func(Command) bool { return c.viewFootage() },
		CmdEmergency: func(Command) bool { return c.emergency() },
	}
	return c
}

// HandleCommand implements Device.
func (c *Camera) HandleCommand(command string) bool {
	return c.handle(c.commands, command)
}

// Zoom sets the zoom level in [1,10].
func (c *Camera) Zoom(n int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.zoom(n)
}

// ZoomLevel returns the zoom level.
func (c *Camera) ZoomLevel() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.zoomLevel
}

// Recording reports whether the camera is recording.
func (c *Camera) Recording() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.recording
}

// Enabled reports whether the camera is enabled.
func (c *Camera) Enabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enabled
}

// MotionLinked reports whether motion events start recording.
func (c *Camera) MotionLinked() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.motionLinked
}

// Snapshot implements Device.
func (c *Camera) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot(map[string]any{
		"recording":     c.recording,
		"enabled":       c.enabled,
		"motion_linked": c.motionLinked,
		"zoom_level":    c.zoomLevel,
	})
}

func (c *Camera) enable() bool {
	c.enabled = true
	c.record(EventState, CmdEnable, "Camera enabled")
	return true
}

// disable always stops any recording in progress.
func (c *Camera) disable() bool {
	c.enabled = false
	c.recording = false
	c.record(EventState, CmdDisable, "Camera disabled")
	return true
}

func (c *Camera) startRecording() bool {
	if !c.enabled {
		c.record(EventRejected, CmdRecord, "Cannot record: camera is disabled")
		return false
	}
	c.recording = true
	c.record(EventState, CmdRecord, "Recording started")
	return true
}

func (c *Camera) stopRecording() bool {
	c.recording = false
	c.record(EventState, CmdStop, "Recording stopped")
	return true
}

func (c *Camera) setMotionLinked(linked bool) bool {
	c.motionLinked = linked
	if linked {
		c.record(EventState, CmdCamEnableMotion, "Motion-triggered recording enabled")
	} else {
		c.record(EventState, CmdCamDisableMotion, "Motion-triggered recording disabled")
	}
	return true
}

func (c *Camera) zoom(n int) bool {
	if n < MinZoom || n > MaxZoom {
		c.record(EventRejected, CmdZoom,
			fmt.Sprintf("Zoom level %d rejected: must be between %d and %d", n, MinZoom, MaxZoom))
		return false
	}
	c.zoomLevel = n
	c.record(EventState, CmdZoom, fmt.Sprintf("Zoom level set to: %d", n))
	return true
}

func (c *Camera) viewFootage() bool {
	if !c.enabled {
		c.record(EventRejected, CmdFootage, "Cannot view footage: camera is disabled")
		return false
	}
	c.record(EventInfo, CmdFootage, "Footage viewed")
	return true
}

func (c *Camera) emergency() bool {
	c.record(EventEmergency, CmdEmergency, "Emergency raised by camera "+c.name)
	return true
}
