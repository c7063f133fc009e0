// Package kinematics maps between body-frame motion of a three-wheel
// holonomic base and individual wheel angular rates.
//
// The body frame is (forward, strafe, theta): forward points away from the
// back wheel, strafe is 90° anti-clockwise from forward, theta is positive
// anti-clockwise seen from above. Wheels sit at 2 o'clock (right),
// 6 o'clock (back) and 10 o'clock (left), axes tangent to a circle of
// radius L around the centre.
package kinematics

// Body is a displacement or velocity expressed in the body frame.
type Body struct {
	Forward float64
	Strafe  float64
	Theta   float64
}

// Scale returns the component-wise product with c.
func (b Body) Scale(c float64) Body {
	return Body{Forward: b.Forward * c, Strafe: b.Strafe * c, Theta: b.Theta * c}
}

// IsZero reports whether all three components are exactly zero.
func (b Body) IsZero() bool {
	return b.Forward == 0 && b.Strafe == 0 && b.Theta == 0
}

const (
	sin30  = 0.5
	cos30  = 0.8660254037844386
	tan30  = 0.5773502691896257
	cos180 = -1.0
)

// Omni3 is the kinematic model of the base, parameterised by the wheel
// radius R and the chassis radius L (both in metres).
type Omni3 struct {
	R float64
	L float64
}

// Inverse maps a body velocity into wheel angular speeds in rad/s.
func (k Omni3) Inverse(v Body) (right, back, left float64) {
	right = (sin30*v.Strafe + cos30*v.Forward + k.L*v.Theta) / k.R
	back = (cos180*v.Strafe + k.L*v.Theta) / k.R
	left = (sin30*v.Strafe - cos30*v.Forward + k.L*v.Theta) / k.R
	return right, back, left
}

// NormalisedInverse maps a normalised body velocity into normalised wheel
// speed fractions. The geometry constants drop out: inputs are already
// fractions of the attainable wheel speed, so neither R nor L applies.
func (k Omni3) NormalisedInverse(v Body) (right, back, left float64) {
	right = sin30*v.Strafe + cos30*v.Forward + v.Theta
	back = cos180*v.Strafe + v.Theta
	left = sin30*v.Strafe - cos30*v.Forward + v.Theta
	return right, back, left
}

// Forward maps wheel angular displacements in radians into the body-frame
// displacement travelled.
func (k Omni3) Forward(right, back, left float64) Body {
	return Body{
		Forward: k.R * tan30 * (right - left),
		Strafe:  k.R / 3 * (right - 2*back + left),
		Theta:   k.R / (3 * k.L) * (right + back + left),
	}
}
