// Package activity defines the audit trail of HomeGuardian Core.
//
// A Record is an immutable fact describing one state transition or failed
// attempt. Records live in append-only Logs: every device owns one, and the
// controller owns the system-wide one. Logs are never shared through package
// state; whoever creates a Log owns it.
//
// Durable storage is optional and sits behind the Sink interface. The
// Archiver buffers records in memory and writes them to a Repository
// (SQLite in production) from a single goroutine, so callers holding the
// controller lock never wait on disk I/O.
//
//	seq := activity.NewSequence("LOG")
//	log := activity.NewLog()
//	log.Append(activity.Record{LogID: seq.Next(), Actor: activity.ActorSystem, ...})
//	records := log.Records() // copy, safe to keep
package activity
