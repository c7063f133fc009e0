// Package robot coordinates the wheels, the kinematic transform, odometry
// and the movement scheduler into one periodic control tick, and dispatches
// the byte-framed command set.
package robot

import (
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"

	"github.com/itohio/omnibase/config"
	"github.com/itohio/omnibase/kinematics"
	"github.com/itohio/omnibase/motion"
	"github.com/itohio/omnibase/odometry"
	"github.com/itohio/omnibase/wheel"
)

// Wheel indices, looking from above with forward at 12 o'clock:
// right at 2 o'clock, back at 6 o'clock, left at 10 o'clock.
const (
	Right = iota
	Back
	Left
)

// Calibration parameters for TestMaxSpeed.
const (
	calibrationTicks  = 50
	calibrationPeriod = 10 * time.Millisecond
)

// Config holds the chassis geometry.
type Config struct {
	// WheelRadius is R in metres.
	WheelRadius float64
	// RobotRadius is L, the distance from centre to each wheel, in metres.
	RobotRadius float64
}

// Robot is the top-level controller of the three-wheel holonomic base.
// All methods must be called from the single control-loop goroutine.
type Robot struct {
	wheels [3]*wheel.Wheel
	kin    kinematics.Omni3
	sched  *motion.Scheduler
	clock  clock.Clock
	log    zerolog.Logger

	pose     odometry.Pose
	lastDisp kinematics.Body
	lastTick int64 // ms; 0 means no tick observed yet
	stopped  bool
}

// New creates a robot over its three wheels.
func New(right, back, left *wheel.Wheel, clk clock.Clock, cfg Config, log zerolog.Logger) *Robot {
	return &Robot{
		wheels: [3]*wheel.Wheel{right, back, left},
		kin:    kinematics.Omni3{R: cfg.WheelRadius, L: cfg.RobotRadius},
		sched:  motion.NewScheduler(),
		clock:  clk,
		log:    log,
	}
}

// ApplyParams configures geometry, PID gains, speed limit and friction from
// a persistent parameter record.
func (r *Robot) ApplyParams(p config.Params) {
	r.SetWheelRadius(p.WheelRadius)
	r.SetRobotRadius(p.RobotRadius)
	r.SetPID(p.KP, p.KI, p.KD)
	r.SetMaxWheelSpeed(p.MaxWheelSpeed)
	r.SetFriction(p.FrictionForward, p.FrictionStrafe, p.FrictionAngular)
}

// Handle runs one control tick: it integrates wheel motion into the pose,
// asks the scheduler for the target velocity and pushes the resulting wheel
// speeds down. A rejected wheel command latches the emergency stop.
func (r *Robot) Handle() {
	now := r.clock.Now().UnixMilli()
	if now == 0 {
		now = 1
	}

	dr := r.wheels[Right].Handle()
	db := r.wheels[Back].Handle()
	dl := r.wheels[Left].Handle()

	disp := r.kin.Forward(dr, db, dl)
	r.pose = odometry.Integrate(r.pose, disp)
	r.lastDisp = disp

	var speed kinematics.Body
	if r.lastTick != 0 {
		if dt := float64(now-r.lastTick) / 1000; dt > 0 {
			speed = disp.Scale(1 / dt)
		}
	}

	target, normalised := r.sched.Handle(r.pose, speed, now)

	var ok bool
	if normalised {
		nr, nb, nl := r.kin.NormalisedInverse(target)
		ok = r.wheels[Right].SetNormalisedSpeed(nr) &&
			r.wheels[Back].SetNormalisedSpeed(nb) &&
			r.wheels[Left].SetNormalisedSpeed(nl)
	} else {
		wr, wb, wl := r.kin.Inverse(target)
		ok = r.wheels[Right].SetSpeed(wr) &&
			r.wheels[Back].SetSpeed(wb) &&
			r.wheels[Left].SetSpeed(wl)
	}
	if !ok {
		r.EmergencyStop()
		return
	}

	r.lastTick = now
}

// EmergencyStop latches every wheel still. Recovery requires a restart.
func (r *Robot) EmergencyStop() {
	for _, w := range r.wheels {
		w.SetMaxSpeed(0)
	}
	if !r.stopped {
		r.stopped = true
		r.log.Warn().Msg("emergency stop latched")
	}
}

// Stopped reports whether the emergency stop has latched.
func (r *Robot) Stopped() bool {
	return r.stopped
}

// Home zeroes the pose. It is permitted only while the base is at rest, that
// is when the last measured body displacement is exactly zero on all axes.
func (r *Robot) Home() bool {
	if !r.lastDisp.IsZero() {
		return false
	}
	r.pose = odometry.Pose{}
	return true
}

// Pose returns the current world-frame pose estimate.
func (r *Robot) Pose() odometry.Pose {
	return r.pose
}

// LastDisplacement returns the body displacement measured on the last tick.
func (r *Robot) LastDisplacement() kinematics.Body {
	return r.lastDisp
}

// Scheduler exposes the movement scheduler for enqueueing trajectories.
func (r *Robot) Scheduler() *motion.Scheduler {
	return r.sched
}

// SetWheelRadius updates R in metres.
func (r *Robot) SetWheelRadius(radius float64) {
	r.kin.R = radius
}

// SetRobotRadius updates L in metres.
func (r *Robot) SetRobotRadius(radius float64) {
	r.kin.L = radius
}

// SetPID replaces the gains on every wheel.
func (r *Robot) SetPID(kp, ki, kd float64) {
	for _, w := range r.wheels {
		w.SetPID(kp, ki, kd)
	}
}

// SetMaxWheelSpeed replaces the speed limit on every wheel.
func (r *Robot) SetMaxWheelSpeed(omega float64) {
	for _, w := range r.wheels {
		w.SetMaxSpeed(omega)
	}
}

// SetFriction configures the per-axis friction coefficients used by the
// scheduler's braking-space projection.
func (r *Robot) SetFriction(forward, strafe, theta float64) {
	r.sched.SetFriction(kinematics.Body{Forward: forward, Strafe: strafe, Theta: theta})
}

// TestMaxSpeed calibrates the wheel speed limit: each wheel runs at full PWM
// while its peak angular speed is recorded, and the smallest of the three
// peaks becomes the new limit. Returns false if any wheel never moved.
func (r *Robot) TestMaxSpeed() bool {
	min := 0.0
	for i, w := range r.wheels {
		peak := w.MeasureMaxSpeed(calibrationTicks, calibrationPeriod)
		if peak <= 0 {
			r.log.Error().Int("wheel", i).Msg("max speed calibration saw no motion")
			return false
		}
		if i == 0 || peak < min {
			min = peak
		}
	}
	r.SetMaxWheelSpeed(min)
	r.log.Info().Float64("max_speed", min).Msg("max wheel speed calibrated")
	return true
}
