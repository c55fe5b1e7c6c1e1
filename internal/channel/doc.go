// Package channel implements the HomeGuardian command channel: a line-based
// text protocol carried over raw TCP and over WebSocket text frames.
//
// Requests and replies:
//
//	TURN_ON:<id>        -> TURN_ON:<id>:<true|false>
//	TURN_OFF:<id>       -> TURN_OFF:<id>:<true|false>
//	CMD:<id>:<token>    -> CMD:<id>:<token>:<true|false>
//	SYNC                -> SNAPSHOT:<json array of device snapshots>
//	anything else       -> ERROR: Unknown command
//	non-text payload    -> ERROR: Unsupported message type
//
// After a successful TURN_ON, TURN_OFF or CMD every connected client,
// including the sender, receives SYNC:<id>. The sender's reply is always
// queued ahead of that notice.
//
// Each client owns a buffered send queue drained by its own writer
// goroutine. The Hub never blocks on a client: a full or closed queue is
// skipped and logged, and the command's result is unaffected.
package channel
