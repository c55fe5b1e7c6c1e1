package device

import (
	"sync"
	"time"

	"github.com/nerrad567/homeguardian-core/internal/activity"
)

// maxPendingEvents bounds the event queue of a device nobody drains.
const maxPendingEvents = 256

// ActionUnknownCommand is the record action for unrecognised tokens.
const ActionUnknownCommand = "UNKNOWN_COMMAND"

// core holds the state every variant shares. Variants embed it and add
// their own fields and command table.
type core struct {
	mu        sync.Mutex
	id        string
	name      string
	kind      Kind
	connected bool

	log    *activity.Log
	seq    *activity.Sequence
	outbox []Event
	now    func() time.Time
}

func (c *core) init(kind Kind, id, name string, opts []Option) {
	c.id = id
	c.name = name
	c.kind = kind
	c.log = activity.NewLog()
	c.seq = activity.NewSequence(id)
	c.now = time.Now
	for _, opt := range opts {
		opt(c)
	}
}

// ID returns the device identifier.
func (c *core) ID() string { return c.id }

// Name returns the device name.
func (c *core) Name() string { return c.name }

// Kind returns the device variant.
func (c *core) Kind() Kind { return c.kind }

// Connected returns the connectivity flag.
func (c *core) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Log returns a copy of the device log.
func (c *core) Log() []activity.Record {
	return c.log.Records()
}

// DrainEvents returns and clears the queued events.
func (c *core) DrainEvents() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.outbox
	c.outbox = nil
	return out
}

// handle parses a token and runs it through the variant table, falling back
// to the baseline vocabulary.
func (c *core) handle(table commandTable, command string) bool {
	cmd := ParseCommand(command)

	c.mu.Lock()
	defer c.mu.Unlock()

	if h, ok := table[cmd.Name]; ok {
		return h(cmd)
	}
	return c.baseline(cmd)
}

// baseline implements ON, OFF, LOCK and UNLOCK for every device.
func (c *core) baseline(cmd Command) bool {
	switch cmd.Name {
	case CmdOn:
		c.connected = true
		c.record(EventState, CmdOn, "Device turned ON")
		return true
	case CmdOff:
		c.connected = false
		c.record(EventState, CmdOff, "Device turned OFF")
		return true
	case CmdLock:
		c.record(EventState, CmdLock, "Lock activated")
		return true
	case CmdUnlock:
		c.record(EventState, CmdUnlock, "Lock released")
		return true
	default:
		c.record(EventRejected, ActionUnknownCommand, "Unknown command: "+cmd.Raw)
		return false
	}
}

// record appends exactly one record to the device log and queues the
// matching event. Callers hold c.mu.
func (c *core) record(kind EventKind, action, message string, reqs ...Request) {
	rec := activity.Record{
		LogID:      c.seq.Next(),
		Actor:      activity.ActorSystem,
		Action:     action,
		DeviceName: c.name,
		DeviceID:   c.id,
		Message:    message,
		Timestamp:  c.now(),
	}
	c.log.Append(rec)

	if len(c.outbox) >= maxPendingEvents {
		c.outbox = c.outbox[1:]
	}
	c.outbox = append(c.outbox, Event{Kind: kind, Record: rec, Requests: reqs})
}

// snapshot builds a Snapshot around variant state. Callers hold c.mu.
func (c *core) snapshot(state map[string]any) Snapshot {
	return Snapshot{
		ID:        c.id,
		Name:      c.name,
		Kind:      c.kind,
		Connected: c.connected,
		State:     state,
	}
}
