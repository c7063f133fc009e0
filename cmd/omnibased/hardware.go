package main

import (
	"fmt"

	"github.com/benbjohnson/clock"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"github.com/itohio/omnibase/config"
	"github.com/itohio/omnibase/devices"
	"github.com/itohio/omnibase/devices/driver"
	"github.com/itohio/omnibase/devices/encoder"
	"github.com/itohio/omnibase/robot"
	"github.com/itohio/omnibase/wheel"
)

// buildHardware wires the three wheels to real GPIO through periph.io.
func buildHardware(cfg config.Config, clk clock.Clock) (*robot.Robot, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init gpio host: %w", err)
	}

	pwmDev := devices.NewPeriphPWMDevice(cfg.PWMFrequency)

	var wheels [3]*wheel.Wheel
	for i, wc := range []config.WheelConfig{cfg.Right, cfg.Back, cfg.Left} {
		w, err := buildWheel(wc, pwmDev, clk)
		if err != nil {
			return nil, fmt.Errorf("wheel %d: %w", i, err)
		}
		wheels[i] = w
	}

	return robot.New(
		wheels[robot.Right], wheels[robot.Back], wheels[robot.Left],
		clk,
		robot.Config{WheelRadius: cfg.Params.WheelRadius, RobotRadius: cfg.Params.RobotRadius},
		log,
	), nil
}

func buildWheel(wc config.WheelConfig, pwmDev devices.PWMDevice, clk clock.Clock) (*wheel.Wheel, error) {
	pinA, err := lookupPin(wc.PinA)
	if err != nil {
		return nil, err
	}
	pinB, err := lookupPin(wc.PinB)
	if err != nil {
		return nil, err
	}

	var drv *driver.Driver
	switch wc.Wiring {
	case config.WiringDualPWM, "":
		drv, err = driver.NewDualPWM(pwmDev, pinA, pinB)
	case config.WiringDirPWM:
		var pwmPin devices.Pin
		pwmPin, err = lookupPin(wc.PWM)
		if err == nil {
			drv, err = driver.NewDirPWM(pwmDev, pwmPin, pinA, pinB)
		}
	default:
		err = fmt.Errorf("unknown wiring %q", wc.Wiring)
	}
	if err != nil {
		return nil, err
	}

	encA, err := lookupPin(wc.EncoderA)
	if err != nil {
		return nil, err
	}
	encB, err := lookupPin(wc.EncoderB)
	if err != nil {
		return nil, err
	}
	enc := encoder.NewQuadrature(encA, encB)
	if err := enc.Configure(); err != nil {
		return nil, fmt.Errorf("configure encoder: %w", err)
	}

	return wheel.New(drv, enc, clk, wheel.DefaultConfig()), nil
}

func lookupPin(name string) (devices.Pin, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: pin not configured", devices.ErrInvalidPin)
	}
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("%w: %q", devices.ErrInvalidPin, name)
	}
	return devices.NewPeriphPin(p), nil
}
