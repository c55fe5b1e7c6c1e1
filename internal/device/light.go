package device

import (
	"fmt"
	"strings"
	"time"
)

// Light ranges and defaults.
const (
	MinBrightness        = 0
	MaxBrightness        = 100
	MinMotionSensitivity = 0
	MaxMotionSensitivity = 10
	MinLightTimeout      = 5 * time.Second

	defaultBrightness        = 50
	defaultColour            = "White"
	defaultMotionSensitivity = 5
	defaultLightTimeout      = 30 * time.Second
)

// Light command names.
const (
	CmdEnableSensor  = "ENABLE_SENSOR"
	CmdDisableSensor = "DISABLE_SENSOR"
	CmdBrightness    = "BRIGHTNESS"
	CmdColour        = "COLOUR"
	CmdColor         = "COLOR"
	CmdTimeout       = "TIMEOUT"
)

// Light is a dimmable, colour-capable light that can follow a motion sensor.
type Light struct {
	core

	brightness        int
	colour            string
	enabled           bool
	motionSensitivity int
	timeout           time.Duration
	motionLinked      bool

	commands commandTable
}

// NewLight creates a light with default settings: brightness 50, white,
// disabled, sensitivity 5, timeout 30s, no motion link.
func NewLight(id, name string, opts ...Option) *Light {
	l := &Light{
		brightness:        defaultBrightness,
		colour:            defaultColour,
		motionSensitivity: defaultMotionSensitivity,
		timeout:           defaultLightTimeout,
	}
	l.init(KindLight, id, name, opts)
	l.commands = commandTable{
		CmdOn:            func(Command) bool { return l.switchOn() },
		CmdOff:           func(Command) bool { return l.switchOff() },
		CmdEnableSensor:  func(Command) bool { return l.setMotionLinked(true) },
		CmdDisableSensor: func(Command) bool { return l.setMotionLinked(false) },
		CmdBrightness: func(cmd Command) bool {
			n, ok := l.intArg(cmd)
			return ok && l.adjustBrightness(n)
		},
		CmdColour: func(cmd Command) bool { return l.setColour(cmd.Arg) },
		CmdColor:  func(cmd Command) bool { return l.setColour(cmd.Arg) },
		CmdTimeout: func(cmd Command) bool {
			d, ok := l.secondsArg(cmd)
			return ok && l.setTimeout(d)
		},
		CmdSensitivity: func(cmd Command) bool {
			n, ok := l.intArg(cmd)
			return ok && l.adjustMotionSensitivity(n)
		},
	}
	return l
}

// HandleCommand implements Device.
func (l *Light) HandleCommand(command string) bool {
	return l.handle(l.commands, command)
}

// AdjustBrightness sets brightness in [0,100].
func (l *Light) AdjustBrightness(n int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.adjustBrightness(n)
}

// SetColour sets the light colour. Blank colours are rejected.
func (l *Light) SetColour(colour string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.setColour(colour)
}

// SetTimeout sets how long the light stays on after motion. Minimum 5s.
func (l *Light) SetTimeout(d time.Duration) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.setTimeout(d)
}

// AdjustMotionSensitivity sets motion sensitivity in [0,10].
func (l *Light) AdjustMotionSensitivity(n int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.adjustMotionSensitivity(n)
}

// Brightness returns the current brightness.
func (l *Light) Brightness() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.brightness
}

// Colour returns the current colour.
func (l *Light) Colour() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.colour
}

// Enabled reports whether the light is on.
func (l *Light) Enabled() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.enabled
}

// MotionSensitivity returns the motion sensitivity.
func (l *Light) MotionSensitivity() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.motionSensitivity
}

// Timeout returns the motion timeout.
func (l *Light) Timeout() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.timeout
}

// MotionLinked reports whether the light follows a motion sensor.
func (l *Light) MotionLinked() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.motionLinked
}

// Snapshot implements Device.
func (l *Light) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshot(map[string]any{
		"brightness":         l.brightness,
		"colour":             l.colour,
		"enabled":            l.enabled,
		"motion_sensitivity": l.motionSensitivity,
		"timeout_seconds":    int(l.timeout / time.Second),
		"motion_linked":      l.motionLinked,
	})
}

func (l *Light) switchOn() bool {
	l.connected = true
	l.enabled = true
	l.record(EventState, CmdOn, "Light turned ON")
	return true
}

func (l *Light) switchOff() bool {
	l.connected = false
	l.enabled = false
	l.record(EventState, CmdOff, "Light turned OFF")
	return true
}

func (l *Light) setMotionLinked(linked bool) bool {
	l.motionLinked = linked
	if linked {
		l.record(EventState, CmdEnableSensor, "Motion sensor control enabled")
	} else {
		l.record(EventState, CmdDisableSensor, "Motion sensor control disabled")
	}
	return true
}

func (l *Light) adjustBrightness(n int) bool {
	if n < MinBrightness || n > MaxBrightness {
		l.record(EventRejected, CmdBrightness,
			fmt.Sprintf("Brightness %d rejected: must be between %d and %d", n, MinBrightness, MaxBrightness))
		return false
	}
	l.brightness = n
	l.record(EventState, CmdBrightness, fmt.Sprintf("Brightness changed to: %d", n))
	return true
}

func (l *Light) setColour(colour string) bool {
	colour = strings.TrimSpace(colour)
	if colour == "" {
		l.record(EventRejected, CmdColour, "Colour rejected: must not be blank")
		return false
	}
	l.colour = colour
	l.record(EventState, CmdColour, "Colour changed to: "+colour)
	return true
}

func (l *Light) setTimeout(d time.Duration) bool {
	if d < MinLightTimeout || d > MaxDuration {
		l.record(EventRejected, CmdTimeout,
			fmt.Sprintf("Timeout %s rejected: must be between %s and %s", d, MinLightTimeout, MaxDuration))
		return false
	}
	l.timeout = d
	l.record(EventState, CmdTimeout, fmt.Sprintf("Timeout duration set to: %d seconds", int(d/time.Second)))
	return true
}

func (l *Light) adjustMotionSensitivity(n int) bool {
	if n < MinMotionSensitivity || n > MaxMotionSensitivity {
		l.record(EventRejected, CmdSensitivity,
			fmt.Sprintf("Motion sensitivity %d rejected: must be between %d and %d", n, MinMotionSensitivity, MaxMotionSensitivity))
		return false
	}
	l.motionSensitivity = n
	l.record(EventState, CmdSensitivity, fmt.Sprintf("Motion sensitivity adjusted to: %d", n))
	return true
}
