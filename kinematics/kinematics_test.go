package kinematics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInverseMatchesGeometry(t *testing.T) {
	t.Parallel()

	k := Omni3{R: 0.05, L: 0.15}

	right, back, left := k.Inverse(Body{Forward: 0.5})
	require.InDelta(t, 8.660, right, 1e-3)
	require.InDelta(t, 0.0, back, 1e-9)
	require.InDelta(t, -8.660, left, 1e-3)

	right, back, left = k.Inverse(Body{Theta: 1.0})
	require.InDelta(t, 3.0, right, 1e-9)
	require.InDelta(t, 3.0, back, 1e-9)
	require.InDelta(t, 3.0, left, 1e-9)

	right, back, left = k.Inverse(Body{Strafe: 1.0})
	require.InDelta(t, 0.5/0.05, right, 1e-9)
	require.InDelta(t, -1.0/0.05, back, 1e-9)
	require.InDelta(t, 0.5/0.05, left, 1e-9)
}

func TestRoundTripIsIdentity(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		r, l float64
		v    Body
	}{
		{"forward", 0.05, 0.15, Body{Forward: 0.5}},
		{"strafe", 0.05, 0.15, Body{Strafe: -0.3}},
		{"rotation", 0.05, 0.15, Body{Theta: 1.0}},
		{"mixed", 0.05, 0.15, Body{Forward: 0.2, Strafe: -0.1, Theta: 0.7}},
		{"other geometry", 0.03, 0.2, Body{Forward: -0.4, Strafe: 0.25, Theta: -2.1}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			k := Omni3{R: tc.r, L: tc.l}
			const dt = 0.01

			right, back, left := k.Inverse(tc.v)
			got := k.Forward(right*dt, back*dt, left*dt)

			require.InDelta(t, tc.v.Forward*dt, got.Forward, 1e-12)
			require.InDelta(t, tc.v.Strafe*dt, got.Strafe, 1e-12)
			require.InDelta(t, tc.v.Theta*dt, got.Theta, 1e-12)
		})
	}
}

func TestNormalisedInverseStaysInBounds(t *testing.T) {
	t.Parallel()

	k := Omni3{R: 0.05, L: 0.15}

	// Any body velocity whose component magnitudes sum to at most one must
	// produce wheel fractions within [-1, 1].
	cases := []Body{
		{Forward: 1},
		{Strafe: -1},
		{Theta: 1},
		{Forward: 0.5, Strafe: 0.3, Theta: 0.2},
		{Forward: -0.4, Strafe: 0.4, Theta: -0.2},
		{Forward: 0.25, Strafe: -0.5, Theta: 0.25},
	}

	for _, v := range cases {
		right, back, left := k.NormalisedInverse(v)
		for _, n := range []float64{right, back, left} {
			require.LessOrEqual(t, math.Abs(n), 1.0, "velocity %+v", v)
		}
	}
}

func TestBodyHelpers(t *testing.T) {
	t.Parallel()

	require.True(t, Body{}.IsZero())
	require.False(t, Body{Theta: 1e-12}.IsZero())

	v := Body{Forward: 1, Strafe: -2, Theta: 3}.Scale(0.5)
	require.Equal(t, Body{Forward: 0.5, Strafe: -1, Theta: 1.5}, v)
}
