// Package device provides the polymorphic device model of HomeGuardian Core.
//
// Every device shares a small capability set (identity, a connectivity flag
// and a private append-only log) and adds a type-specific state machine:
// Light, Lock, Alarm, Camera and MotionSensor.
//
// # Architecture
//
//	┌──────────────────────────────────────────────────────────────────┐
//	│                             Device                               │
//	│                                                                  │
//	│   HandleCommand("brightness=40")                                 │
//	│          │                                                       │
//	│          ▼                                                       │
//	│   ParseCommand ──▶ variant command table ──▶ baseline fallback   │
//	│                         (light.go ...)        (ON OFF LOCK ...)  │
//	│          │                                                       │
//	│          ▼                                                       │
//	│   core.record: one activity.Record + one Event per operation     │
//	└──────────┬───────────────────────────────────────────────────────┘
//	           │ DrainEvents()
//	           ▼
//	┌──────────────────────┐
//	│      Controller      │  routes alerts, emergencies and follow-up
//	└──────────────────────┘  requests to linked devices
//
// # Commands
//
// A command token is NAME or NAME=ARG. NAME is matched case-insensitively,
// ARG is kept as given. Unknown tokens never panic or return errors: they
// append a rejection record and HandleCommand returns false.
//
// Numeric setters validate before committing. Out-of-range input leaves the
// state untouched, logs a rejection and returns false; values are never
// clamped.
//
// # Events
//
// Devices do not decide delivery. Each operation queues an Event carrying
// the record it appended, its kind (state, rejected, alert, emergency) and
// any Requests for linked devices. The controller drains and routes them.
//
// # Thread Safety
//
// Every device guards its state with its own mutex, so exported methods are
// safe for concurrent use. The controller additionally serialises commands
// so a command and its follow-ups run as one unit.
package device
