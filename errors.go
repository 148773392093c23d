package serialport

import (
	"errors"
	"fmt"
)

// Predefined error values for state guards and binding handle lookups
var (
	ErrPortNotOpen = errors.New("port is not open")
	ErrPortOpen    = errors.New("port is already open")
	ErrPortOpening = errors.New("port is opening")
	ErrPortClosing = errors.New("port is closing")

	ErrInvalidBaudRate = errors.New("invalid baud rate")
	ErrUnknownHandle   = errors.New("unknown handle")
	ErrDeviceNotFound  = errors.New("serial device not found")

	// USB-related errors
	ErrUSBInfoNotAvailable  = errors.New("USB device information not available")
	ErrUSBResetNotAvailable = errors.New("usbreset utility not available")
)

// ValidationError reports a settings field that holds an unsupported value.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// DisconnectError reports a device that vanished while its port was in use.
// It wraps the underlying cause reported by the binding.
type DisconnectError struct {
	Path string
	Err  error
}

func (e *DisconnectError) Error() string {
	return fmt.Sprintf("%s disconnected: %v", e.Path, e.Err)
}

func (e *DisconnectError) Unwrap() error {
	return e.Err
}
