// Package odometry integrates body-frame displacements into a world-frame
// pose estimate.
package odometry

import (
	"math"

	"github.com/itohio/omnibase/kinematics"
)

// Pose is the world-frame position and heading. At Phi = 0 the world X axis
// coincides with body forward and world Y with body strafe. Phi is kept in
// [0, 2π).
type Pose struct {
	X   float64
	Y   float64
	Phi float64
}

// Integrate advances the pose by one body-frame displacement. The rotation
// uses the midpoint heading, which cancels the first-order curvature error
// of per-tick integration.
func Integrate(p Pose, d kinematics.Body) Pose {
	alpha := p.Phi + d.Theta/2
	sin, cos := math.Sincos(alpha)
	return Pose{
		X:   p.X + d.Forward*cos - d.Strafe*sin,
		Y:   p.Y + d.Forward*sin + d.Strafe*cos,
		Phi: WrapAngle(p.Phi + d.Theta),
	}
}

// WrapAngle normalises an angle into [0, 2π) by repeated shifts. Per-tick
// rotations are small, so the loops run at most once in practice.
func WrapAngle(phi float64) float64 {
	for phi >= 2*math.Pi {
		phi -= 2 * math.Pi
	}
	for phi < 0 {
		phi += 2 * math.Pi
	}
	return phi
}

// ShortestArc returns the signed shortest rotation from heading `from` to
// heading `to`, in [-π, π]. Both inputs are expected in [0, 2π).
func ShortestArc(from, to float64) float64 {
	d := to - from
	if d > math.Pi {
		d -= 2 * math.Pi
	} else if d < -math.Pi {
		d += 2 * math.Pi
	}
	return d
}

// ToBody rotates the world-frame offset from the pose to the target point
// (x, y) into body-frame forward and strafe components.
func ToBody(p Pose, x, y float64) (forward, strafe float64) {
	dx := x - p.X
	dy := y - p.Y
	sin, cos := math.Sincos(p.Phi)
	return dx*cos + dy*sin, -dx*sin + dy*cos
}
