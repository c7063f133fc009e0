package devices

// PinChange represents one or more trigger events that can happen on a given
// GPIO pin. ORed PinChanges are valid input to SetInterrupt.
type PinChange uint8

// Pin change interrupt constants for SetInterrupt.
const (
	// Edge falling
	PinFalling PinChange = 4 << iota
	// Edge rising
	PinRising

	PinToggle = PinFalling | PinRising
)

// Pin represents a GPIO pin. It is implemented by machine.Pin in TinyGo,
// and by the periph.io adapter on Linux hosts.
// Configuration is done by concrete implementations, not through this interface.
type Pin interface {
	PinInterrupt

	// Get returns the current pin state (high = true, low = false).
	Get() bool

	// Set sets the pin state (high = true, low = false).
	Set(value bool)

	// High sets the pin to high (true).
	High()

	// Low sets the pin to low (false).
	Low()
}

// PinInterrupt allows configuring an interrupt callback on a pin.
type PinInterrupt interface {
	// SetInterrupt sets up an interrupt on the pin for the selected change type.
	// The callback is called with the pin as its argument.
	SetInterrupt(change PinChange, callback func(Pin)) error
}
