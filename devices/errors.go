package devices

import "errors"

var (
	// ErrNotSupported is returned when a pin or channel cannot provide the
	// requested capability (PWM on a digital-only pin, interrupts, etc.).
	ErrNotSupported = errors.New("devices: not supported")

	// ErrInvalidPin is returned when a pin lookup or configuration fails.
	ErrInvalidPin = errors.New("devices: invalid pin")
)
