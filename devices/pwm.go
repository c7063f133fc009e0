package devices

// PWM represents a PWM (Pulse Width Modulation) channel.
type PWM interface {
	// Set sets the duty cycle for this PWM channel.
	// duty is in range 0.0 to 1.0, where 0.0 = 0% and 1.0 = 100%
	Set(duty float64) error

	// Stop stops the PWM output (sets duty to 0).
	Stop() error
}

// PWMDevice represents a PWM controller device that can provide PWM channels.
// Different platforms may have different PWM controllers.
type PWMDevice interface {
	// Channel returns a PWM channel for the specified pin.
	// Returns an error if the pin does not support PWM or is already in use.
	Channel(pin Pin) (PWM, error)

	// Configure configures the PWM device with the specified frequency.
	Configure(frequency uint32) error
}
