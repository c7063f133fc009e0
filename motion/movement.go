// Package motion models the trajectory of the base as a queue of finite
// movement primitives over a single indefinite fallback. Each tick the
// scheduler emits one target body velocity, advancing the queue when the
// head primitive completes.
package motion

import (
	"math"

	"github.com/itohio/omnibase/kinematics"
	"github.com/itohio/omnibase/odometry"
)

// Completion tolerances per axis.
const (
	// LinearTolerance is the positional completion tolerance in metres.
	LinearTolerance = 0.01
	// AngularTolerance is the heading completion tolerance in radians (≈1°).
	AngularTolerance = 0.0174533
)

// Movement emits a target body velocity each tick.
type Movement interface {
	// Velocity returns the velocity to command at nowMS, and whether the
	// vector is normalised (wheel-speed fractions) rather than absolute.
	Velocity(pose odometry.Pose, nowMS int64) (kinematics.Body, bool)
}

// Finite is a movement that eventually completes and is dequeued.
type Finite interface {
	Movement

	// Finished reports whether the primitive has completed. braking is the
	// projected per-axis stopping distance at the current speed.
	Finished(pose odometry.Pose, braking kinematics.Body, nowMS int64) bool
}

// Still is the indefinite movement that keeps the base stationary. It is a
// plain value; installing it releases whatever ran before.
var Still Movement = still{}

type still struct{}

func (still) Velocity(odometry.Pose, int64) (kinematics.Body, bool) {
	return kinematics.Body{}, true
}

// rebalance maps the scalar norm m, paired with its counterpart m0, onto an
// effective magnitude m²/(|m|+|m0|), keeping the sign of m. The rebalanced
// planar and angular magnitudes then sum to at most one, so the combined
// wheel demand stays inside normalised bounds.
func rebalance(m, m0 float64) float64 {
	denom := math.Abs(m) + math.Abs(m0)
	if denom == 0 {
		return 0
	}
	return math.Copysign(m*m/denom, m)
}

// decompose turns a planar norm with a direction plus an angular norm into a
// rebalanced normalised body velocity.
func decompose(planar, direction, angular float64) kinematics.Body {
	p := rebalance(planar, angular)
	a := rebalance(angular, planar)
	sin, cos := math.Sincos(direction)
	return kinematics.Body{Forward: p * cos, Strafe: p * sin, Theta: a}
}

// displacement computes the body-frame displacement from the current pose to
// the target pose, using the shortest signed arc for the heading.
func displacement(pose odometry.Pose, x, y, phi float64) kinematics.Body {
	forward, strafe := odometry.ToBody(pose, x, y)
	return kinematics.Body{
		Forward: forward,
		Strafe:  strafe,
		Theta:   odometry.ShortestArc(pose.Phi, odometry.WrapAngle(phi)),
	}
}

// axes carries the sticky per-axis completion flags of a finite primitive.
type axes struct {
	done [3]bool
}

// update marks axes whose remaining displacement fits within the braking
// space or the fixed tolerance, and reports whether all three are done.
// A marked axis stays done even if later displacement drifts out again.
func (a *axes) update(disp, braking kinematics.Body) bool {
	values := [3]float64{disp.Forward, disp.Strafe, disp.Theta}
	brakes := [3]float64{braking.Forward, braking.Strafe, braking.Theta}
	tolerances := [3]float64{LinearTolerance, LinearTolerance, AngularTolerance}

	all := true
	for i := range values {
		if !a.done[i] {
			if math.Abs(values[i]) <= math.Max(math.Abs(brakes[i]), tolerances[i]) {
				a.done[i] = true
			} else {
				all = false
			}
		}
	}
	return all
}

// mask zeroes the components of v on axes already finished.
func (a *axes) mask(v kinematics.Body) kinematics.Body {
	if a.done[0] {
		v.Forward = 0
	}
	if a.done[1] {
		v.Strafe = 0
	}
	if a.done[2] {
		v.Theta = 0
	}
	return v
}

// startTime latches the first observed timestamp of a duration-bounded
// primitive. A clock reading of exactly zero is reserved as "uninitialised"
// and is substituted with one.
type startTime struct {
	ms int64
}

func (s *startTime) begin(nowMS int64) {
	if s.ms != 0 {
		return
	}
	if nowMS == 0 {
		nowMS = 1
	}
	s.ms = nowMS
}

func (s *startTime) elapsed(nowMS int64) int64 {
	return nowMS - s.ms
}
