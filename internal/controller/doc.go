// Package controller owns the device registry, the user registry, the
// system-wide activity log and the notification list.
//
// Every command enters through ControlDeviceAs. The controller resolves the
// device, checks the actor, delegates to the device, and routes the events
// the device queued:
//
//	client ──► ControlDeviceAs(actor, id, cmd)
//	               │
//	               ├─ resolve id ──────────────► "can't be found" record
//	               ├─ actor permitted? ────────► "not permitted" record
//	               ├─ Device.HandleCommand(cmd)
//	               ├─ controller record (LOG-n)
//	               └─ Device.DrainEvents()
//	                     ├─ every record ──────► activity.Sink
//	                     ├─ alert ─────────────► Notify(permitted users)
//	                     ├─ emergency ─────────► NotifyEmergency
//	                     └─ requests ──────────► follow-up commands as SYSTEM
//
// Observers hear about every command after the controller lock is released.
//
// Thread Safety: all methods are safe for concurrent use. A single RWMutex
// serialises mutations, including the device mutation and any follow-ups it
// triggers. Accessors return copies.
package controller
