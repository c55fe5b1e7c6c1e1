package channel

import "errors"

var (
	// ErrUnknownCommand is returned by Parse for a message that is not part
	// of the protocol.
	ErrUnknownCommand = errors.New("channel: unknown command")

	// ErrLineTooLong is logged when a TCP client sends a line longer than
	// the configured limit. The client gets an error reply.
	ErrLineTooLong = errors.New("channel: line too long")
)
