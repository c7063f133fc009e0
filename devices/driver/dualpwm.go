package driver

import "github.com/itohio/omnibase/devices"

// DualPWM is an H-bridge wired with two PWM channels (IN1/IN2 style).
// Forward runs the magnitude on A with B low, backward the reverse,
// released is both low and brake runs the magnitude on both.
type DualPWM struct {
	a, b devices.PWM

	dir       Direction
	magnitude uint8
}

// NewDualPWM builds a dual-PWM output from channels on pins A and B.
func NewDualPWM(pwm devices.PWMDevice, pinA, pinB devices.Pin) (*Driver, error) {
	a, err := pwm.Channel(pinA)
	if err != nil {
		return nil, err
	}
	b, err := pwm.Channel(pinB)
	if err != nil {
		return nil, err
	}
	return New(&DualPWM{a: a, b: b}), nil
}

func (o *DualPWM) SetDirection(dir Direction) error {
	o.dir = dir
	return o.apply()
}

func (o *DualPWM) SetMagnitude(magnitude uint8) error {
	o.magnitude = magnitude
	return o.apply()
}

func (o *DualPWM) apply() error {
	duty := float64(o.magnitude) / PWMMax

	var dutyA, dutyB float64
	switch o.dir {
	case Forwards:
		dutyA = duty
	case Backwards:
		dutyB = duty
	case Braked:
		dutyA, dutyB = duty, duty
	}

	if err := o.a.Set(dutyA); err != nil {
		return err
	}
	return o.b.Set(dutyB)
}
