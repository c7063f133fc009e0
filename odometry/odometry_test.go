package odometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/itohio/omnibase/kinematics"
)

func TestIntegrateAccumulates(t *testing.T) {
	t.Parallel()

	p := Pose{}
	for i := 0; i < 100; i++ {
		p = Integrate(p, kinematics.Body{Forward: 0.005})
	}

	require.InDelta(t, 0.5, p.X, 1e-9)
	require.InDelta(t, 0.0, p.Y, 1e-9)
	require.InDelta(t, 0.0, p.Phi, 1e-9)
}

func TestIntegrateRotatesWithHeading(t *testing.T) {
	t.Parallel()

	// Facing 90° anti-clockwise, forward motion advances world Y.
	p := Pose{Phi: math.Pi / 2}
	p = Integrate(p, kinematics.Body{Forward: 0.1})

	require.InDelta(t, 0.0, p.X, 1e-12)
	require.InDelta(t, 0.1, p.Y, 1e-12)
}

func TestIntegrateUsesMidpointHeading(t *testing.T) {
	t.Parallel()

	// Drive a quarter circle in many small arcs; midpoint integration
	// should land close to the analytic chord.
	p := Pose{}
	const steps = 1000
	for i := 0; i < steps; i++ {
		p = Integrate(p, kinematics.Body{
			Forward: 1.0 / steps,
			Theta:   (math.Pi / 2) / steps,
		})
	}

	radius := 1.0 / (math.Pi / 2)
	require.InDelta(t, radius, p.X, 1e-4)
	require.InDelta(t, radius, p.Y, 1e-4)
	require.InDelta(t, math.Pi/2, p.Phi, 1e-9)
}

func TestPhiStaysWrapped(t *testing.T) {
	t.Parallel()

	p := Pose{}
	for i := 0; i < 100; i++ {
		p = Integrate(p, kinematics.Body{Theta: 0.5})
		require.GreaterOrEqual(t, p.Phi, 0.0)
		require.Less(t, p.Phi, 2*math.Pi)
	}

	p = Pose{}
	for i := 0; i < 100; i++ {
		p = Integrate(p, kinematics.Body{Theta: -0.5})
		require.GreaterOrEqual(t, p.Phi, 0.0)
		require.Less(t, p.Phi, 2*math.Pi)
	}
}

func TestWrapAngle(t *testing.T) {
	t.Parallel()

	require.InDelta(t, 0.0, WrapAngle(2*math.Pi), 1e-12)
	require.InDelta(t, math.Pi, WrapAngle(3*math.Pi), 1e-12)
	require.InDelta(t, 2*math.Pi-0.5, WrapAngle(-0.5), 1e-12)
	require.InDelta(t, 1.0, WrapAngle(1.0), 1e-12)
}

func TestShortestArc(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		from, to float64
		want     float64
	}{
		{"no rotation", 1.0, 1.0, 0},
		{"small positive", 0.5, 1.0, 0.5},
		{"small negative", 1.0, 0.5, -0.5},
		{"across zero forward", 2*math.Pi - 0.2, 0.3, 0.5},
		{"across zero backward", 0.3, 2*math.Pi - 0.2, -0.5},
		{"half turn", 0, math.Pi, math.Pi},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.InDelta(t, tc.want, ShortestArc(tc.from, tc.to), 1e-12)
		})
	}
}

func TestToBody(t *testing.T) {
	t.Parallel()

	// With zero heading, world and body axes coincide.
	f, s := ToBody(Pose{X: 1, Y: 2}, 2, 4)
	require.InDelta(t, 1.0, f, 1e-12)
	require.InDelta(t, 2.0, s, 1e-12)

	// Rotated 90° anti-clockwise, a world-Y offset is pure forward.
	f, s = ToBody(Pose{Phi: math.Pi / 2}, 0, 1)
	require.InDelta(t, 1.0, f, 1e-12)
	require.InDelta(t, 0.0, s, 1e-12)
}
