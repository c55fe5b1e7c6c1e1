package channel

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Protocol verbs.
const (
	VerbTurnOn   = "TURN_ON"
	VerbTurnOff  = "TURN_OFF"
	VerbCmd      = "CMD"
	VerbSync     = "SYNC"
	VerbSnapshot = "SNAPSHOT"
)

// Error replies.
const (
	ReplyUnknownCommand     = "ERROR: Unknown command"
	ReplyUnsupportedMessage = "ERROR: Unsupported message type"
)

// Request is a decoded client message.
type Request struct {
	Verb     string // canonical upper-case verb
	DeviceID string
	Command  string // device command token; ON/OFF for TURN_ON/TURN_OFF
}

// Parse decodes one message. Verbs match case-insensitively; device IDs and
// command tokens are passed through unchanged.
func Parse(msg string) (Request, error) {
	msg = strings.TrimRight(msg, "\r\n")

	verb, rest, hasArgs := strings.Cut(msg, ":")
	switch strings.ToUpper(strings.TrimSpace(verb)) {
	case VerbSync:
		if hasArgs {
			return Request{}, ErrUnknownCommand
		}
		return Request{Verb: VerbSync}, nil

	case VerbTurnOn:
		if !hasArgs {
			return Request{}, ErrUnknownCommand
		}
		return Request{Verb: VerbTurnOn, DeviceID: rest, Command: "ON"}, nil

	case VerbTurnOff:
		if !hasArgs {
			return Request{}, ErrUnknownCommand
		}
		return Request{Verb: VerbTurnOff, DeviceID: rest, Command: "OFF"}, nil

	case VerbCmd:
		id, token, ok := strings.Cut(rest, ":")
		if !hasArgs || !ok || id == "" || strings.TrimSpace(token) == "" {
			return Request{}, ErrUnknownCommand
		}
		return Request{Verb: VerbCmd, DeviceID: id, Command: token}, nil
	}

	return Request{}, ErrUnknownCommand
}

// Result formats the reply for a device request.
func (r Request) Result(ok bool) string {
	b := strconv.FormatBool(ok)
	if r.Verb == VerbCmd {
		return r.Verb + ":" + r.DeviceID + ":" + r.Command + ":" + b
	}
	return r.Verb + ":" + r.DeviceID + ":" + b
}

// SyncNotice formats the broadcast sent after a device changed.
func SyncNotice(deviceID string) string {
	return VerbSync + ":" + deviceID
}

// IsText reports whether a raw TCP line is a text message: valid UTF-8 with
// no control characters other than tab.
func IsText(line []byte) bool {
	if !utf8.Valid(line) {
		return false
	}
	for _, r := range string(line) {
		if r != '\t' && unicode.IsControl(r) {
			return false
		}
	}
	return true
}
