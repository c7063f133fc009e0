package motion

import (
	"math"

	"github.com/itohio/omnibase/kinematics"
	"github.com/itohio/omnibase/odometry"
)

// SpaceTime moves to a target world pose within a fixed duration. Each tick
// it emits the remaining displacement spread over the remaining time, so the
// approach speed decays towards the target. It completes when the duration
// elapses or when every axis is inside its tolerance.
type SpaceTime struct {
	X, Y, Phi float64
	// Duration is the allotted time in seconds.
	Duration float64

	start startTime
	axes  axes
}

// NewSpaceTime creates a pose-by-deadline movement.
func NewSpaceTime(x, y, phi, duration float64) *SpaceTime {
	return &SpaceTime{X: x, Y: y, Phi: phi, Duration: duration}
}

func (m *SpaceTime) Finished(pose odometry.Pose, braking kinematics.Body, nowMS int64) bool {
	m.start.begin(nowMS)
	if m.start.elapsed(nowMS) >= int64(m.Duration*1000) {
		return true
	}
	return m.axes.update(displacement(pose, m.X, m.Y, m.Phi), braking)
}

func (m *SpaceTime) Velocity(pose odometry.Pose, nowMS int64) (kinematics.Body, bool) {
	m.start.begin(nowMS)
	remaining := m.Duration - float64(m.start.elapsed(nowMS))/1000
	if remaining <= 0 {
		return kinematics.Body{}, false
	}
	disp := displacement(pose, m.X, m.Y, m.Phi)
	return m.axes.mask(disp.Scale(1 / remaining)), false
}

// SpaceSpeed moves to a target world pose at fixed speed magnitudes: the
// planar displacement renormalised to the planar speed, and the angular
// speed applied along the shortest arc. It completes purely by tolerance.
type SpaceSpeed struct {
	X, Y, Phi float64
	// Planar is the translation speed magnitude in m/s.
	Planar float64
	// Angular is the rotation speed magnitude in rad/s.
	Angular float64

	axes axes
}

// NewSpaceSpeed creates a pose-at-speed movement.
func NewSpaceSpeed(x, y, phi, planar, angular float64) *SpaceSpeed {
	return &SpaceSpeed{X: x, Y: y, Phi: phi, Planar: planar, Angular: angular}
}

func (m *SpaceSpeed) Finished(pose odometry.Pose, braking kinematics.Body, _ int64) bool {
	return m.axes.update(displacement(pose, m.X, m.Y, m.Phi), braking)
}

func (m *SpaceSpeed) Velocity(pose odometry.Pose, _ int64) (kinematics.Body, bool) {
	disp := displacement(pose, m.X, m.Y, m.Phi)
	return m.axes.mask(aim(disp, m.Planar, m.Angular)), false
}

// SpaceNormSpeed moves to a target world pose at normalised speed fractions,
// rebalanced so the combined planar and angular demand stays within bounds.
// It completes purely by tolerance.
type SpaceNormSpeed struct {
	X, Y, Phi float64
	// Planar is the translation speed fraction in [0, 1].
	Planar float64
	// Angular is the rotation speed fraction in [0, 1].
	Angular float64

	axes axes
}

// NewSpaceNormSpeed creates a pose-at-normalised-speed movement.
func NewSpaceNormSpeed(x, y, phi, planar, angular float64) *SpaceNormSpeed {
	return &SpaceNormSpeed{X: x, Y: y, Phi: phi, Planar: planar, Angular: angular}
}

func (m *SpaceNormSpeed) Finished(pose odometry.Pose, braking kinematics.Body, _ int64) bool {
	return m.axes.update(displacement(pose, m.X, m.Y, m.Phi), braking)
}

func (m *SpaceNormSpeed) Velocity(pose odometry.Pose, _ int64) (kinematics.Body, bool) {
	disp := displacement(pose, m.X, m.Y, m.Phi)
	planar := rebalance(m.Planar, m.Angular)
	angular := rebalance(m.Angular, m.Planar)
	return m.axes.mask(aim(disp, planar, angular)), true
}

// aim points the planar displacement direction with magnitude planar and
// takes the angular displacement sign with magnitude angular.
func aim(disp kinematics.Body, planar, angular float64) kinematics.Body {
	var v kinematics.Body
	if norm := math.Hypot(disp.Forward, disp.Strafe); norm > 0 {
		v.Forward = disp.Forward / norm * planar
		v.Strafe = disp.Strafe / norm * planar
	}
	if disp.Theta != 0 {
		v.Theta = math.Copysign(angular, disp.Theta)
	}
	return v
}
