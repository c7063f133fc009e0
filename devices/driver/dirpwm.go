package driver

import "github.com/itohio/omnibase/devices"

// DirPWM is an H-bridge wired with one PWM channel for magnitude and two
// digital pins encoding the direction: (A,B) low/low releases, A high drives
// forward, B high drives backward, both high brakes.
type DirPWM struct {
	pwm  devices.PWM
	a, b devices.Pin
}

// NewDirPWM builds a PWM-plus-direction output. The PWM channel is allocated
// on pwmPin; pinA and pinB carry the direction code.
func NewDirPWM(pwm devices.PWMDevice, pwmPin, pinA, pinB devices.Pin) (*Driver, error) {
	ch, err := pwm.Channel(pwmPin)
	if err != nil {
		return nil, err
	}
	out := &DirPWM{pwm: ch, a: pinA, b: pinB}
	out.a.Low()
	out.b.Low()
	return New(out), nil
}

func (o *DirPWM) SetDirection(dir Direction) error {
	o.a.Set(dir == Forwards || dir == Braked)
	o.b.Set(dir == Backwards || dir == Braked)
	return nil
}

func (o *DirPWM) SetMagnitude(magnitude uint8) error {
	return o.pwm.Set(float64(magnitude) / PWMMax)
}
