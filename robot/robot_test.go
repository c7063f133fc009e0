package robot

import (
	"math"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/itohio/omnibase/devices/sim"
	"github.com/itohio/omnibase/kinematics"
	"github.com/itohio/omnibase/motion"
	"github.com/itohio/omnibase/odometry"
	"github.com/itohio/omnibase/wheel"
)

// stubDriver satisfies wheel.Driver without hardware.
type stubDriver struct {
	speed int16
}

func (d *stubDriver) SetSpeed(pwm int16) error {
	d.speed = pwm
	return nil
}

func (d *stubDriver) Speed() int16 { return d.speed }

type testRig struct {
	robot    *Robot
	wheels   [3]*wheel.Wheel
	drivers  [3]*stubDriver
	encoders [3]*sim.Encoder
	mock     *clock.Mock

	kin kinematics.Omni3

	cum   [3]float64
	added [3]int64
}

func newRig(t *testing.T) *testRig {
	t.Helper()

	rig := &testRig{
		mock: clock.NewMock(),
		kin:  kinematics.Omni3{R: 0.05, L: 0.15},
	}
	for i := range rig.wheels {
		rig.drivers[i] = &stubDriver{}
		rig.encoders[i] = sim.NewEncoder()
		rig.wheels[i] = wheel.New(rig.drivers[i], rig.encoders[i], rig.mock, wheel.Config{
			KP: wheel.DefaultKP, KI: wheel.DefaultKI, KD: wheel.DefaultKD,
			MaxSpeed: 10,
		})
	}
	rig.robot = New(
		rig.wheels[Right], rig.wheels[Back], rig.wheels[Left],
		rig.mock,
		Config{WheelRadius: 0.05, RobotRadius: 0.15},
		zerolog.Nop(),
	)
	return rig
}

// track advances the encoders as if every wheel perfectly tracked the given
// body velocity for dt seconds.
func (rig *testRig) track(v kinematics.Body, dt float64) {
	right, back, left := rig.kin.Inverse(v)
	for i, omega := range [3]float64{right, back, left} {
		rig.cum[i] += omega * dt / wheel.StepsToRadians
		delta := int64(math.Round(rig.cum[i])) - rig.added[i]
		rig.encoders[i].Add(delta)
		rig.added[i] += delta
	}
}

// run ticks the control loop for the given duration at 10 ms, with the base
// perfectly tracking velocity v.
func (rig *testRig) run(v kinematics.Body, seconds float64) {
	const dt = 0.01
	for i := 0; i < int(seconds/dt); i++ {
		rig.track(v, dt)
		rig.mock.Add(10 * time.Millisecond)
		rig.robot.Handle()
	}
}

func TestPureForwardMotion(t *testing.T) {
	t.Parallel()

	rig := newRig(t)
	rig.robot.Scheduler().SetIndefinite(motion.NewSpeed(0.5, 0, 0))
	rig.robot.Handle()

	// Wheel requests: ωR = cos30·0.5/R = 8.660, ωB = 0, ωL = −8.660,
	// stored as normalised PWM targets against ω_max = 10.
	require.EqualValues(t, 221, rig.wheels[Right].TargetPWM())
	require.EqualValues(t, 0, rig.wheels[Back].TargetPWM())
	require.EqualValues(t, -221, rig.wheels[Left].TargetPWM())

	rig.run(kinematics.Body{Forward: 0.5}, 1.0)

	pose := rig.robot.Pose()
	require.InDelta(t, 0.5, pose.X, 0.01)
	require.InDelta(t, 0.0, pose.Y, 0.01)
	require.InDelta(t, 0.0, odometry.ShortestArc(0, pose.Phi), 0.01)
}

func TestPureRotation(t *testing.T) {
	t.Parallel()

	rig := newRig(t)
	rig.robot.Scheduler().SetIndefinite(motion.NewSpeed(0, 0, 1.0))
	rig.robot.Handle()

	// Each wheel request is L·1/R = 3.0 rad/s.
	for _, w := range rig.wheels {
		require.EqualValues(t, 77, w.TargetPWM())
	}

	rig.run(kinematics.Body{Theta: 1.0}, 1.0)

	pose := rig.robot.Pose()
	require.InDelta(t, 1.0, pose.Phi, 0.01)
	require.InDelta(t, 0.0, pose.X, 0.01)
	require.InDelta(t, 0.0, pose.Y, 0.01)
}

func TestSpaceTimeTrajectory(t *testing.T) {
	t.Parallel()

	rig := newRig(t)
	require.True(t, rig.robot.Scheduler().Enqueue(motion.NewSpaceTime(0.3, 0.4, 0, 2.0)))

	rig.robot.Handle()

	// First tick emits forward 0.15, strafe 0.20, theta 0 m/s.
	wantR, wantB, wantL := rig.kin.Inverse(kinematics.Body{Forward: 0.15, Strafe: 0.20})
	require.EqualValues(t, math.Round(wantR/10*255), rig.wheels[Right].TargetPWM())
	require.EqualValues(t, math.Round(wantB/10*255), rig.wheels[Back].TargetPWM())
	require.EqualValues(t, math.Round(wantL/10*255), rig.wheels[Left].TargetPWM())

	// Past the deadline the queue drains and the base falls back to Still.
	rig.mock.Add(2100 * time.Millisecond)
	rig.robot.Handle()

	require.Equal(t, 0, rig.robot.Scheduler().Len())
	for _, w := range rig.wheels {
		require.EqualValues(t, 0, w.TargetPWM())
	}
}

func TestEmergencyStopOnRejectedCommand(t *testing.T) {
	t.Parallel()

	rig := newRig(t)

	// A body velocity beyond the wheels' reach: ω exceeds ω_max.
	rig.robot.Scheduler().SetIndefinite(motion.NewSpeed(1.0, 0, 0))
	rig.robot.Handle()

	require.True(t, rig.robot.Stopped())
	for _, w := range rig.wheels {
		require.EqualValues(t, 0, w.TargetPWM())
		require.False(t, w.SetSpeed(1))
	}
}

func TestEmergencyStopLatches(t *testing.T) {
	t.Parallel()

	rig := newRig(t)
	rig.robot.EmergencyStop()

	// Ticking on with a non-zero absolute demand keeps failing without
	// panicking; normalised zero demand (Still) passes.
	rig.robot.Scheduler().SetIndefinite(motion.NewSpeed(0.1, 0, 0))
	rig.mock.Add(10 * time.Millisecond)
	rig.robot.Handle()
	require.True(t, rig.robot.Stopped())

	for _, d := range rig.drivers {
		require.EqualValues(t, 0, d.Speed())
	}
}

func TestHomeGuard(t *testing.T) {
	t.Parallel()

	rig := newRig(t)
	rig.robot.Scheduler().SetIndefinite(motion.NewSpeed(0.5, 0, 0))
	rig.robot.Handle()
	rig.run(kinematics.Body{Forward: 0.5}, 0.1)

	// Moving: home is refused and the pose untouched.
	require.False(t, rig.robot.Home())
	require.NotZero(t, rig.robot.Pose().X)

	// Stop and settle: a tick with zero displacement permits homing.
	rig.robot.EmergencyStop()
	rig.mock.Add(10 * time.Millisecond)
	rig.robot.Handle()

	require.True(t, rig.robot.Home())
	require.Zero(t, rig.robot.Pose())
}

func TestSettersPropagate(t *testing.T) {
	t.Parallel()

	rig := newRig(t)

	rig.robot.SetMaxWheelSpeed(20)
	for _, w := range rig.wheels {
		require.InDelta(t, 20.0, w.MaxSpeed(), 1e-12)
	}

	rig.robot.SetWheelRadius(0.04)
	rig.robot.SetRobotRadius(0.2)
	require.InDelta(t, 0.04, rig.robot.kin.R, 1e-12)
	require.InDelta(t, 0.2, rig.robot.kin.L, 1e-12)

	rig.robot.SetFriction(0.1, 0.2, 0.3)
	require.Equal(t, kinematics.Body{Forward: 0.1, Strafe: 0.2, Theta: 0.3}, rig.robot.Scheduler().Friction())
}
