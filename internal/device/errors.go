package device

import "errors"

// Domain errors for the device package.
//
// These errors can be checked using errors.Is():
//
//	if errors.Is(err, device.ErrInvalidKind) {
//	    // unknown device type in config
//	}
var (
	// ErrInvalidKind is returned when a device type is not recognised.
	ErrInvalidKind = errors.New("device: invalid type")

	// ErrInvalidID is returned when a device ID is empty or malformed.
	ErrInvalidID = errors.New("device: invalid id")

	// ErrInvalidName is returned when a device name is empty or too long.
	ErrInvalidName = errors.New("device: invalid name")
)
