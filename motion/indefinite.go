package motion

import (
	"github.com/itohio/omnibase/kinematics"
	"github.com/itohio/omnibase/odometry"
)

// Speed drives the base at a constant absolute body velocity until replaced.
type Speed struct {
	V kinematics.Body
}

// NewSpeed creates an indefinite constant-velocity movement.
func NewSpeed(forward, strafe, theta float64) *Speed {
	return &Speed{V: kinematics.Body{Forward: forward, Strafe: strafe, Theta: theta}}
}

func (m *Speed) Velocity(odometry.Pose, int64) (kinematics.Body, bool) {
	return m.V, false
}

// NormSpeed drives the base at a constant normalised velocity until
// replaced: a planar speed fraction along a body-frame direction plus an
// angular fraction, rebalanced so their magnitudes sum to at most one.
type NormSpeed struct {
	Planar    float64
	Direction float64
	Angular   float64
}

// NewNormSpeed creates an indefinite normalised-velocity movement.
func NewNormSpeed(planar, direction, angular float64) *NormSpeed {
	return &NormSpeed{Planar: planar, Direction: direction, Angular: angular}
}

func (m *NormSpeed) Velocity(odometry.Pose, int64) (kinematics.Body, bool) {
	return decompose(m.Planar, m.Direction, m.Angular), true
}
