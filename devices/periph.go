package devices

import (
	"fmt"
	"sync"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
)

// PeriphPin adapts a periph.io GPIO pin to the Pin interface.
// Interrupts are emulated with a WaitForEdge goroutine.
type PeriphPin struct {
	pin gpio.PinIO

	mu     sync.Mutex
	stopCh chan struct{}
}

// NewPeriphPin wraps a periph.io pin. The pin is configured lazily:
// as input with edge detection on SetInterrupt, as output on the first Set.
func NewPeriphPin(pin gpio.PinIO) *PeriphPin {
	return &PeriphPin{pin: pin}
}

func (p *PeriphPin) Get() bool {
	return p.pin.Read() == gpio.High
}

func (p *PeriphPin) Set(value bool) {
	_ = p.pin.Out(gpio.Level(value))
}

func (p *PeriphPin) High() { p.Set(true) }

func (p *PeriphPin) Low() { p.Set(false) }

// SetInterrupt configures edge detection and starts an edge-wait loop that
// invokes the callback. A nil callback stops the loop.
func (p *PeriphPin) SetInterrupt(change PinChange, callback func(Pin)) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopCh != nil {
		close(p.stopCh)
		p.stopCh = nil
	}
	if callback == nil {
		return p.pin.In(gpio.PullNoChange, gpio.NoEdge)
	}

	var edge gpio.Edge
	switch {
	case change&PinToggle == PinToggle:
		edge = gpio.BothEdges
	case change&PinRising != 0:
		edge = gpio.RisingEdge
	case change&PinFalling != 0:
		edge = gpio.FallingEdge
	default:
		return fmt.Errorf("%w: pin change %#x", ErrNotSupported, change)
	}
	if err := p.pin.In(gpio.PullNoChange, edge); err != nil {
		return fmt.Errorf("configure %s for edge detection: %w", p.pin.Name(), err)
	}

	stop := make(chan struct{})
	p.stopCh = stop
	go func() {
		for {
			select {
			case <-stop:
				return
			default:
			}
			if p.pin.WaitForEdge(-1) {
				callback(p)
			}
		}
	}()
	return nil
}

// PeriphPWMDevice hands out PWM channels backed by periph.io hardware PWM.
type PeriphPWMDevice struct {
	mu   sync.Mutex
	freq physic.Frequency
}

// NewPeriphPWMDevice creates a PWM controller with the given base frequency in Hz.
func NewPeriphPWMDevice(frequency uint32) *PeriphPWMDevice {
	return &PeriphPWMDevice{freq: physic.Frequency(frequency) * physic.Hertz}
}

func (d *PeriphPWMDevice) Configure(frequency uint32) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.freq = physic.Frequency(frequency) * physic.Hertz
	return nil
}

// Channel returns a PWM channel for the given pin. The pin must be a PeriphPin.
func (d *PeriphPWMDevice) Channel(pin Pin) (PWM, error) {
	pp, ok := pin.(*PeriphPin)
	if !ok {
		return nil, fmt.Errorf("%w: PWM requires a periph pin", ErrNotSupported)
	}
	return &periphPWM{dev: d, pin: pp.pin}, nil
}

type periphPWM struct {
	dev *PeriphPWMDevice
	pin gpio.PinIO
}

func (c *periphPWM) Set(duty float64) error {
	if duty < 0 {
		duty = 0
	} else if duty > 1 {
		duty = 1
	}
	c.dev.mu.Lock()
	freq := c.dev.freq
	c.dev.mu.Unlock()
	return c.pin.PWM(gpio.Duty(duty*float64(gpio.DutyMax)), freq)
}

func (c *periphPWM) Stop() error {
	return c.Set(0)
}
