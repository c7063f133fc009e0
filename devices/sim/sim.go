// Package sim provides in-memory pin, PWM and encoder realisations plus a
// first-order motor model, so the control stack can run and be tested
// without hardware attached.
package sim

import (
	"sync"
	"sync/atomic"

	"github.com/itohio/omnibase/devices"
)

// Pin is an in-memory GPIO pin. State changes fire the configured interrupt
// callback synchronously.
type Pin struct {
	mu       sync.Mutex
	state    bool
	change   devices.PinChange
	callback func(devices.Pin)
}

func NewPin() *Pin { return &Pin{} }

func (p *Pin) Get() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Pin) Set(value bool) {
	p.mu.Lock()
	prev := p.state
	p.state = value
	cb := p.callback
	change := p.change
	p.mu.Unlock()

	if cb == nil || prev == value {
		return
	}
	if value && change&devices.PinRising != 0 {
		cb(p)
	} else if !value && change&devices.PinFalling != 0 {
		cb(p)
	}
}

func (p *Pin) High() { p.Set(true) }

func (p *Pin) Low() { p.Set(false) }

func (p *Pin) SetInterrupt(change devices.PinChange, callback func(devices.Pin)) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.change = change
	p.callback = callback
	return nil
}

// PWMDevice hands out PWM channels keyed by pin.
type PWMDevice struct {
	mu       sync.Mutex
	channels map[devices.Pin]*PWMChannel
}

func NewPWMDevice() *PWMDevice {
	return &PWMDevice{channels: make(map[devices.Pin]*PWMChannel)}
}

func (d *PWMDevice) Configure(frequency uint32) error { return nil }

func (d *PWMDevice) Channel(pin devices.Pin) (devices.PWM, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	ch, ok := d.channels[pin]
	if !ok {
		ch = &PWMChannel{}
		d.channels[pin] = ch
	}
	return ch, nil
}

// PWMChannel records the last duty cycle written.
type PWMChannel struct {
	mu   sync.Mutex
	duty float64
}

func (c *PWMChannel) Set(duty float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.duty = duty
	return nil
}

func (c *PWMChannel) Stop() error { return c.Set(0) }

// Duty returns the last written duty cycle.
func (c *PWMChannel) Duty() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.duty
}

// Encoder is a step counter that tests and motor models advance directly.
type Encoder struct {
	count int64
}

func NewEncoder() *Encoder { return &Encoder{} }

func (e *Encoder) Read() int64 { return atomic.LoadInt64(&e.count) }

// Add advances the counter by delta steps (negative for reverse rotation).
func (e *Encoder) Add(delta int64) { atomic.AddInt64(&e.count, delta) }

// Motor is a first-order DC motor model: angular speed approaches the speed
// implied by the applied PWM with time constant Tau, and rotation is
// accumulated on the attached encoder.
type Motor struct {
	Encoder *Encoder

	// MaxSpeed is the angular speed in rad/s reached at full PWM.
	MaxSpeed float64
	// Tau is the mechanical time constant in seconds.
	Tau float64
	// StepsPerRadian converts accumulated rotation into encoder steps.
	StepsPerRadian float64

	speed    float64
	residual float64
}

// Step advances the model by dt seconds under the given signed PWM command.
func (m *Motor) Step(pwm int16, dt float64) {
	if dt <= 0 {
		return
	}
	target := float64(pwm) / 255.0 * m.MaxSpeed
	gain := dt / m.Tau
	if m.Tau <= 0 || gain > 1 {
		gain = 1
	}
	m.speed += (target - m.speed) * gain

	m.residual += m.speed * dt * m.StepsPerRadian
	steps := int64(m.residual)
	m.residual -= float64(steps)
	m.Encoder.Add(steps)
}

// Speed returns the current model angular speed in rad/s.
func (m *Motor) Speed() float64 { return m.speed }
