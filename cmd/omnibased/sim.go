package main

import (
	"github.com/benbjohnson/clock"

	"github.com/itohio/omnibase/config"
	"github.com/itohio/omnibase/devices/driver"
	"github.com/itohio/omnibase/devices/sim"
	"github.com/itohio/omnibase/robot"
	"github.com/itohio/omnibase/wheel"
)

// simMaxSpeed is the simulated motor's free speed at full PWM in rad/s.
const simMaxSpeed = 12.0

// plant is the simulated mechanics: three motors advanced between control
// ticks according to the PWM the drivers applied.
type plant struct {
	motors  [3]*sim.Motor
	drivers [3]*driver.Driver
}

func (p *plant) step(dt float64) {
	for i, m := range p.motors {
		m.Step(p.drivers[i].Speed(), dt)
	}
}

// buildSim wires the three wheels to simulated motors and encoders.
func buildSim(cfg config.Config, params config.Params, clk clock.Clock) (*plant, *robot.Robot) {
	bench := &plant{}
	pwmDev := sim.NewPWMDevice()

	var wheels [3]*wheel.Wheel
	for i := range wheels {
		enc := sim.NewEncoder()
		bench.motors[i] = &sim.Motor{
			Encoder:        enc,
			MaxSpeed:       simMaxSpeed,
			Tau:            0.05,
			StepsPerRadian: 1 / wheel.StepsToRadians,
		}
		drv, _ := driver.NewDualPWM(pwmDev, sim.NewPin(), sim.NewPin())
		bench.drivers[i] = drv
		wheels[i] = wheel.New(drv, enc, clk, wheel.DefaultConfig())
	}

	r := robot.New(
		wheels[robot.Right], wheels[robot.Back], wheels[robot.Left],
		clk,
		robot.Config{WheelRadius: params.WheelRadius, RobotRadius: params.RobotRadius},
		log,
	)
	return bench, r
}
