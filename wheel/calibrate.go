package wheel

import (
	"math"
	"time"
)

// MeasureMaxSpeed runs the motor at full PWM for the given number of ticks,
// sampling the encoder every period, and returns the peak angular speed
// observed in rad/s. The motor is released afterwards. The wheel's
// closed-loop state is untouched; callers normally feed the result back
// through SetMaxSpeed.
func (w *Wheel) MeasureMaxSpeed(ticks int, period time.Duration) float64 {
	if ticks <= 0 || period <= 0 {
		return 0
	}

	_ = w.driver.SetSpeed(PWMMax)
	defer func() { _ = w.driver.SetSpeed(Still) }()

	peak := 0.0
	lastCount := w.encoder.Read()
	lastTick := w.clock.Now().UnixMicro()
	for i := 0; i < ticks; i++ {
		w.clock.Sleep(period)
		now := w.clock.Now().UnixMicro()
		count := w.encoder.Read()

		dt := float64(now-lastTick) / 1e6
		if dt <= 0 {
			continue
		}
		speed := math.Abs(StepsToRadians * float64(count-lastCount) / dt)
		if speed > peak {
			peak = speed
		}
		lastTick = now
		lastCount = count
	}
	return peak
}
