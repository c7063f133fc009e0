package driver

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/itohio/omnibase/devices/sim"
)

func dualPWMForTest(t *testing.T) (*Driver, *sim.PWMChannel, *sim.PWMChannel) {
	t.Helper()

	dev := sim.NewPWMDevice()
	pinA, pinB := sim.NewPin(), sim.NewPin()
	drv, err := NewDualPWM(dev, pinA, pinB)
	require.NoError(t, err)

	a, err := dev.Channel(pinA)
	require.NoError(t, err)
	b, err := dev.Channel(pinB)
	require.NoError(t, err)
	return drv, a.(*sim.PWMChannel), b.(*sim.PWMChannel)
}

func TestDualPWMDirections(t *testing.T) {
	t.Parallel()

	drv, a, b := dualPWMForTest(t)

	require.NoError(t, drv.SetSpeed(255))
	require.InDelta(t, 1.0, a.Duty(), 1e-9)
	require.InDelta(t, 0.0, b.Duty(), 1e-9)
	require.EqualValues(t, 255, drv.Speed())

	require.NoError(t, drv.SetSpeed(-128))
	require.InDelta(t, 0.0, a.Duty(), 1e-9)
	require.InDelta(t, 128.0/255, b.Duty(), 1e-9)
	require.EqualValues(t, -128, drv.Speed())

	require.NoError(t, drv.SetSpeed(0))
	require.InDelta(t, 0.0, a.Duty(), 1e-9)
	require.InDelta(t, 0.0, b.Duty(), 1e-9)

	require.NoError(t, drv.Brake(200))
	require.InDelta(t, 200.0/255, a.Duty(), 1e-9)
	require.InDelta(t, 200.0/255, b.Duty(), 1e-9)
	require.EqualValues(t, 0, drv.Speed())
}

func TestSetSpeedClamps(t *testing.T) {
	t.Parallel()

	drv, a, b := dualPWMForTest(t)

	require.NoError(t, drv.SetSpeed(1000))
	require.EqualValues(t, 255, drv.Speed())
	require.InDelta(t, 1.0, a.Duty(), 1e-9)

	require.NoError(t, drv.SetSpeed(-1000))
	require.EqualValues(t, -255, drv.Speed())
	require.InDelta(t, 1.0, b.Duty(), 1e-9)
}

func TestDirPWMDirectionCoding(t *testing.T) {
	t.Parallel()

	dev := sim.NewPWMDevice()
	pwmPin, pinA, pinB := sim.NewPin(), sim.NewPin(), sim.NewPin()
	drv, err := NewDirPWM(dev, pwmPin, pinA, pinB)
	require.NoError(t, err)

	ch, err := dev.Channel(pwmPin)
	require.NoError(t, err)
	magnitude := ch.(*sim.PWMChannel)

	require.NoError(t, drv.SetSpeed(255))
	require.True(t, pinA.Get())
	require.False(t, pinB.Get())
	require.InDelta(t, 1.0, magnitude.Duty(), 1e-9)

	require.NoError(t, drv.SetSpeed(-64))
	require.False(t, pinA.Get())
	require.True(t, pinB.Get())
	require.InDelta(t, 64.0/255, magnitude.Duty(), 1e-9)

	require.NoError(t, drv.SetSpeed(0))
	require.False(t, pinA.Get())
	require.False(t, pinB.Get())
	require.InDelta(t, 0.0, magnitude.Duty(), 1e-9)

	require.NoError(t, drv.Brake(255))
	require.True(t, pinA.Get())
	require.True(t, pinB.Get())
	require.InDelta(t, 1.0, magnitude.Duty(), 1e-9)
}
