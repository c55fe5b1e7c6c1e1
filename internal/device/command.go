package device

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Baseline command names understood by every device.
const (
	CmdOn     = "ON"
	CmdOff    = "OFF"
	CmdLock   = "LOCK"
	CmdUnlock = "UNLOCK"
)

// Variant command names shared by more than one device type.
const (
	CmdArm         = "ARM"
	CmdDisarm      = "DISARM"
	CmdEnable      = "ENABLE"
	CmdDisable     = "DISABLE"
	CmdEmergency   = "EMERGENCY"
	CmdLinkAlarm   = "LINK_ALARM"
	CmdLinkCamera  = "LINK_CAMERA"
	CmdLinkLight   = "LINK_LIGHT"
	CmdRecord      = "RECORD"
	CmdMotion      = "MOTION"
	CmdTriggerCam  = "TRIGGER_CAM"
	CmdSensitivity = "SENSITIVITY"
)

// Command is a parsed command token.
type Command struct {
	Name string // upper-cased
	Arg  string // verbatim, may be empty
	Raw  string
}

// ParseCommand splits "name=arg" into its parts. The name is trimmed and
// upper-cased; the argument is trimmed but otherwise kept as given.
func ParseCommand(token string) Command {
	raw := strings.TrimSpace(token)
	name, arg, _ := strings.Cut(raw, "=")
	return Command{
		Name: strings.ToUpper(strings.TrimSpace(name)),
		Arg:  strings.TrimSpace(arg),
		Raw:  raw,
	}
}

// handler executes one command. It runs with the device mutex held.
type handler func(cmd Command) bool

// commandTable maps upper-case command names to handlers.
type commandTable map[string]handler

// intArg parses the command argument as an integer. On failure a rejection
// is recorded and ok is false.
func (c *core) intArg(cmd Command) (n int, ok bool) {
	n, err := strconv.Atoi(cmd.Arg)
	if err != nil {
		c.record(EventRejected, cmd.Name, "Invalid argument for "+cmd.Name+": "+strconv.Quote(cmd.Arg))
		return 0, false
	}
	return n, true
}

// MaxDuration bounds every duration a device accepts.
const MaxDuration = 7 * 24 * time.Hour

// secondsArg parses the argument as a whole number of seconds. Values above
// MaxDuration are rejected before conversion so they cannot overflow.
func (c *core) secondsArg(cmd Command) (time.Duration, bool) {
	n, ok := c.intArg(cmd)
	if !ok {
		return 0, false
	}
	if int64(n) > int64(MaxDuration/time.Second) {
		c.record(EventRejected, cmd.Name,
			fmt.Sprintf("Invalid argument for %s: must be at most %d seconds", cmd.Name, int64(MaxDuration/time.Second)))
		return 0, false
	}
	return time.Duration(n) * time.Second, true
}

// idArg returns the argument as a device ID. Blank IDs are rejected.
func (c *core) idArg(cmd Command) (string, bool) {
	if !idPattern.MatchString(cmd.Arg) {
		c.record(EventRejected, cmd.Name, "Invalid device ID for "+cmd.Name+": "+strconv.Quote(cmd.Arg))
		return "", false
	}
	return cmd.Arg, true
}

// cutComma splits "a,b" into trimmed halves.
func cutComma(s string) (before, after string, found bool) {
	before, after, found = strings.Cut(s, ",")
	return strings.TrimSpace(before), strings.TrimSpace(after), found
}
