package controller

import (
	"fmt"
	"sync"
	"time"

	"github.com/nerrad567/homeguardian-core/internal/activity"
	"github.com/nerrad567/homeguardian-core/internal/auth"
	"github.com/nerrad567/homeguardian-core/internal/device"
	"github.com/nerrad567/homeguardian-core/internal/notify"
)

// MaxFollowUpDepth bounds how deep device follow-up requests may nest.
// A motion sensor asking an alarm to react, which asks its camera to
// record, is depth 2.
const MaxFollowUpDepth = 3

// Record actions written by the controller itself.
const (
	ActionDeviceAdded  = "DEVICE_ADDED"
	ActionUserAdded    = "USER_ADDED"
	ActionUserRemoved  = "USER_REMOVED"
	ActionGrantAccess  = "GRANT_ACCESS"
	ActionRevokeAccess = "REVOKE_ACCESS"
	ActionEmergency    = "EMERGENCY"
	ActionFollowUp     = "FOLLOW_UP"
)

// Controller is the single owner of devices, users, the activity log and
// notifications.
type Controller struct {
	mu sync.RWMutex

	devices     map[string]device.Device
	deviceOrder []string
	users       map[string]*auth.User
	userOrder   []string

	log           *activity.Log
	seq           *activity.Sequence
	notifications []notify.Notification

	sink             activity.Sink
	notifySink       notify.Sink
	dispatcher       notify.Dispatcher
	observers        []Observer
	emergencyContact string
	logger           Logger
	now              func() time.Time
}

// New creates an empty Controller.
func New(deps Deps) *Controller {
	c := &Controller{
		devices:          make(map[string]device.Device),
		users:            make(map[string]*auth.User),
		log:              activity.NewLog(),
		seq:              activity.NewSequence("LOG"),
		sink:             deps.ActivitySink,
		notifySink:       deps.NotifySink,
		dispatcher:       deps.Dispatcher,
		observers:        deps.Observers,
		emergencyContact: deps.EmergencyContact,
		logger:           deps.Logger,
		now:              deps.Now,
	}
	if c.sink == nil {
		c.sink = noopSink{}
	}
	if c.notifySink == nil {
		c.notifySink = noopSink{}
	}
	if c.dispatcher == nil {
		c.dispatcher = noopDispatcher{}
	}
	if c.logger == nil {
		c.logger = noopLogger{}
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

// SetLogger sets the logger.
func (c *Controller) SetLogger(logger Logger) {
	c.mu.Lock()
	c.logger = logger
	c.mu.Unlock()
}

// AddObserver registers an observer for command results.
func (c *Controller) AddObserver(o Observer) {
	c.mu.Lock()
	c.observers = append(c.observers, o)
	c.mu.Unlock()
}

// RegisterDevice adds a device. Registering a nil device or an ID that is
// already present is a no-op returning false.
func (c *Controller) RegisterDevice(d device.Device) bool {
	if d == nil {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.devices[d.ID()]; exists {
		return false
	}
	c.devices[d.ID()] = d
	c.deviceOrder = append(c.deviceOrder, d.ID())
	c.appendRecord(activity.ActorSystem, ActionDeviceAdded, d.Name(), d.ID(),
		fmt.Sprintf("New device added: %s (%s)", d.Name(), d.ID()))
	c.logger.Info("device registered", "device_id", d.ID(), "type", d.Kind())
	return true
}

// ControlDevice runs a command on behalf of the system.
func (c *Controller) ControlDevice(deviceID, command string) bool {
	return c.ControlDeviceAs(activity.ActorSystem, deviceID, command)
}

// ControlDeviceAs runs a command on behalf of actor, which is a registered
// username or SYSTEM. It returns the device's result; a missing device or an
// actor without access returns false without touching any device.
func (c *Controller) ControlDeviceAs(actor, deviceID, command string) bool {
	var results []CommandResult

	c.mu.Lock()
	ok := c.execute(actor, deviceID, command, 0, &results)
	observers := c.observers
	c.mu.Unlock()

	for _, r := range results {
		for _, o := range observers {
			o.CommandHandled(r)
		}
	}
	return ok
}

// execute runs one command and its follow-ups. Callers hold c.mu.
func (c *Controller) execute(actor, deviceID, command string, depth int, results *[]CommandResult) bool {
	action := device.ParseCommand(command).Name
	result := CommandResult{
		Actor:     actor,
		DeviceID:  deviceID,
		Command:   command,
		Depth:     depth,
		Timestamp: c.now(),
	}

	d, found := c.devices[deviceID]
	if !found {
		c.appendRecord(actor, action, "", deviceID,
			fmt.Sprintf("Device with ID %s can't be found.", deviceID))
		c.logger.Debug("command for unknown device", "device_id", deviceID, "actor", actor)
		*results = append(*results, result)
		return false
	}

	if !c.permitted(actor, deviceID) {
		c.appendRecord(actor, action, d.Name(), deviceID,
			fmt.Sprintf("User %s is not permitted to control device %s", actor, deviceID))
		c.logger.Warn("command refused", "device_id", deviceID, "actor", actor)
		*results = append(*results, result)
		return false
	}

	ok := d.HandleCommand(command)

	msg := fmt.Sprintf("Command '%s' executed on device %s", command, deviceID)
	if !ok {
		msg = fmt.Sprintf("Failed to execute command '%s' on device %s", command, deviceID)
	}
	c.appendRecord(actor, action, d.Name(), deviceID, msg)

	events := d.DrainEvents()
	result.OK = ok
	result.Resolved = true
	result.Snapshot = d.Snapshot()
	result.Events = events
	*results = append(*results, result)

	c.route(d, events, depth, results)
	return ok
}

// permitted reports whether actor may control deviceID. Callers hold c.mu.
func (c *Controller) permitted(actor, deviceID string) bool {
	if actor == activity.ActorSystem {
		return true
	}
	u, ok := c.users[actor]
	return ok && u.PermitsDevice(deviceID)
}

// route forwards device events to the sink, users, emergency services and
// linked devices. Callers hold c.mu.
func (c *Controller) route(d device.Device, events []device.Event, depth int, results *[]CommandResult) {
	for _, ev := range events {
		c.sink.Archive(ev.Record)

		switch ev.Kind {
		case device.EventAlert:
			c.alertUsers(d, ev.Record.Message)
		case device.EventEmergency:
			c.notifyEmergency(ev.Record.Message)
		}

		for _, req := range ev.Requests {
			if depth+1 >= MaxFollowUpDepth {
				c.appendRecord(activity.ActorSystem, ActionFollowUp, d.Name(), d.ID(),
					fmt.Sprintf("Follow-up '%s' for device %s skipped: too many chained commands", req.Command, req.DeviceID))
				c.logger.Warn("follow-up depth exceeded",
					"from", d.ID(), "to", req.DeviceID, "command", req.Command)
				continue
			}
			c.execute(activity.ActorSystem, req.DeviceID, req.Command, depth+1, results)
		}
	}
}

// alertUsers notifies every user permitted to see the device. Callers hold c.mu.
func (c *Controller) alertUsers(d device.Device, message string) {
	for _, name := range c.userOrder {
		u := c.users[name]
		if u.PermitsDevice(d.ID()) {
			c.notifyLocked(u, fmt.Sprintf("%s: %s", d.Name(), message))
		}
	}
}

// appendRecord adds a controller record and archives it. Callers hold c.mu.
func (c *Controller) appendRecord(actor, action, deviceName, deviceID, message string) {
	rec := activity.Record{
		LogID:      c.seq.Next(),
		Actor:      actor,
		Action:     action,
		DeviceName: deviceName,
		DeviceID:   deviceID,
		Message:    message,
		Timestamp:  c.now(),
	}
	c.log.Append(rec)
	c.sink.Archive(rec)
}

// Devices returns snapshots of every device in registration order.
func (c *Controller) Devices() []device.Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]device.Snapshot, 0, len(c.deviceOrder))
	for _, id := range c.deviceOrder {
		out = append(out, c.devices[id].Snapshot())
	}
	return out
}

// DevicesFor returns snapshots of the devices actor may see. SYSTEM and
// admins see everything; unknown actors see nothing.
func (c *Controller) DevicesFor(actor string) []device.Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := []device.Snapshot{}
	for _, id := range c.deviceOrder {
		if c.permitted(actor, id) {
			out = append(out, c.devices[id].Snapshot())
		}
	}
	return out
}

// Device returns a snapshot of one device.
func (c *Controller) Device(id string) (device.Snapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	d, ok := c.devices[id]
	if !ok {
		return device.Snapshot{}, false
	}
	return d.Snapshot(), true
}

// DeviceLog returns a copy of one device's own log.
func (c *Controller) DeviceLog(id string) ([]activity.Record, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	d, ok := c.devices[id]
	if !ok {
		return nil, false
	}
	return d.Log(), true
}

// DeviceCount returns the number of registered devices.
func (c *Controller) DeviceCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.devices)
}

// CanControl reports whether actor may control the device.
func (c *Controller) CanControl(actor, deviceID string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.permitted(actor, deviceID)
}

// ActivityLog returns a copy of the controller's records.
func (c *Controller) ActivityLog() []activity.Record {
	return c.log.Records()
}
