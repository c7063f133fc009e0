// Package wheel closes the loop between one motor driver and its encoder,
// driving measured angular velocity toward a commanded one with a PID
// controller working in PWM units.
package wheel

import (
	"math"

	"github.com/benbjohnson/clock"

	"github.com/itohio/omnibase/devices/encoder"
)

const (
	// PWMMax is the magnitude of the strongest PWM command.
	PWMMax = 255
	// Still is the PWM command that releases the motor.
	Still = 0

	// StepsPerRevolution is the encoder resolution before gearing.
	StepsPerRevolution = 64
	// GearRatio is the gearbox reduction between motor and wheel.
	GearRatio = 30

	// StepsToRadians converts encoder steps into wheel radians.
	StepsToRadians = 2 * math.Pi / (StepsPerRevolution * GearRatio)
)

// Default PID gains.
const (
	DefaultKP = 1.4
	DefaultKI = 0.5
	DefaultKD = 0.8
)

// Driver applies a signed PWM command to the motor.
type Driver interface {
	SetSpeed(pwm int16) error
	Speed() int16
}

// Config holds per-wheel tuning.
type Config struct {
	// PID gains.
	KP, KI, KD float64

	// MaxSpeed is the wheel's maximum angular speed in rad/s. Zero keeps
	// the wheel latched still.
	MaxSpeed float64

	// IntegralBound, when positive, clamps the accumulated integral error
	// to [-IntegralBound, IntegralBound]. Zero leaves the integrator
	// unbounded, matching the reference controller; see the windup note
	// on Handle.
	IntegralBound float64
}

// DefaultConfig returns the stock tuning with closed-loop control disabled
// until a max speed is set.
func DefaultConfig() Config {
	return Config{KP: DefaultKP, KI: DefaultKI, KD: DefaultKD}
}

// Wheel is one driven wheel under closed-loop speed control.
type Wheel struct {
	driver  Driver
	encoder encoder.Encoder
	clock   clock.Clock

	kp, ki, kd    float64
	maxSpeed      float64
	integralBound float64

	lastCount int64
	lastTick  int64 // µs; 0 means no tick observed yet
	integral  float64
	lastError float64

	target   int16 // requested speed as signed PWM
	measured float64
}

// New creates a wheel over the given driver and encoder.
func New(drv Driver, enc encoder.Encoder, clk clock.Clock, cfg Config) *Wheel {
	w := &Wheel{
		driver:        drv,
		encoder:       enc,
		clock:         clk,
		integralBound: cfg.IntegralBound,
	}
	w.SetPID(cfg.KP, cfg.KI, cfg.KD)
	w.SetMaxSpeed(cfg.MaxSpeed)
	return w
}

// SetPID replaces the controller gains.
func (w *Wheel) SetPID(kp, ki, kd float64) {
	w.kp, w.ki, w.kd = kp, ki, kd
}

// SetMaxSpeed sets the wheel's maximum angular speed in rad/s. Setting zero
// is the emergency-stop primitive: the output is released immediately, the
// target is zeroed, and any non-zero request fails until the limit is
// raised again.
func (w *Wheel) SetMaxSpeed(omega float64) {
	w.maxSpeed = omega
	if omega == 0 {
		w.target = Still
		_ = w.driver.SetSpeed(Still)
	}
}

// MaxSpeed returns the configured maximum angular speed in rad/s.
func (w *Wheel) MaxSpeed() float64 {
	return w.maxSpeed
}

// SetSpeed requests an angular velocity in rad/s. It fails if the request
// exceeds the configured maximum, or if the wheel is latched still and the
// request is non-zero.
func (w *Wheel) SetSpeed(omega float64) bool {
	if w.maxSpeed == 0 {
		if omega != 0 {
			return false
		}
		return w.SetNormalisedSpeed(0)
	}
	return w.SetNormalisedSpeed(omega / w.maxSpeed)
}

// SetNormalisedSpeed requests a speed as a fraction of the maximum, in
// [-1, 1].
func (w *Wheel) SetNormalisedSpeed(n float64) bool {
	if n < -1 || n > 1 {
		return false
	}
	if w.maxSpeed == 0 && n != 0 {
		return false
	}
	pwm := math.Round(n * PWMMax)
	if pwm > PWMMax {
		pwm = PWMMax
	} else if pwm < -PWMMax {
		pwm = -PWMMax
	}
	w.target = int16(pwm)
	return true
}

// Speed returns the angular velocity measured on the last tick, in rad/s.
func (w *Wheel) Speed() float64 {
	return w.measured
}

// TargetPWM returns the current speed request as a signed PWM value.
func (w *Wheel) TargetPWM() int16 {
	return w.target
}

// Handle runs one control iteration: it measures the rotation since the
// previous call, updates the PID and writes the output to the driver.
// It returns the wheel rotation since the previous call in radians.
//
// The first call only captures the encoder count and timestamp and returns
// zero. The integrator is never reset; on prolonged output saturation it
// will wind up unless IntegralBound is configured.
func (w *Wheel) Handle() float64 {
	now := w.clock.Now().UnixMicro()
	if now == 0 {
		now = 1
	}
	count := w.encoder.Read()

	if w.lastTick == 0 {
		w.lastTick = now
		w.lastCount = count
		return 0
	}

	dt := float64(now-w.lastTick) / 1e6
	delta := count - w.lastCount
	w.lastTick = now
	w.lastCount = count
	if dt <= 0 {
		return 0
	}

	w.measured = StepsToRadians * float64(delta) / dt

	if w.maxSpeed == 0 {
		_ = w.driver.SetSpeed(Still)
		return float64(delta) * StepsToRadians
	}

	e := float64(w.target) - w.angularToPWM(w.measured)
	w.integral += e * dt
	if w.integralBound > 0 {
		if w.integral > w.integralBound {
			w.integral = w.integralBound
		} else if w.integral < -w.integralBound {
			w.integral = -w.integralBound
		}
	}
	derivative := (e - w.lastError) / dt
	w.lastError = e

	out := math.Round(w.kp*e + w.ki*w.integral + w.kd*derivative)
	if out > PWMMax {
		out = PWMMax
	} else if out < -PWMMax {
		out = -PWMMax
	}
	_ = w.driver.SetSpeed(int16(out))

	return float64(delta) * StepsToRadians
}

// angularToPWM converts an angular speed into the equivalent PWM magnitude.
// With the wheel latched still any non-zero speed saturates by sign.
func (w *Wheel) angularToPWM(omega float64) float64 {
	if w.maxSpeed == 0 {
		if omega == 0 {
			return 0
		}
		if omega > 0 {
			return PWMMax
		}
		return -PWMMax
	}
	return math.Round(omega * PWMMax / w.maxSpeed)
}
