package motion

import (
	"github.com/itohio/omnibase/kinematics"
	"github.com/itohio/omnibase/odometry"
)

// SpeedTime drives at a constant absolute body velocity for a fixed
// duration.
type SpeedTime struct {
	V kinematics.Body
	// Duration is the run time in seconds.
	Duration float64

	start startTime
}

// NewSpeedTime creates a constant-velocity movement with a deadline.
func NewSpeedTime(forward, strafe, theta, duration float64) *SpeedTime {
	return &SpeedTime{
		V:        kinematics.Body{Forward: forward, Strafe: strafe, Theta: theta},
		Duration: duration,
	}
}

func (m *SpeedTime) Finished(_ odometry.Pose, _ kinematics.Body, nowMS int64) bool {
	m.start.begin(nowMS)
	return m.start.elapsed(nowMS) >= int64(m.Duration*1000)
}

func (m *SpeedTime) Velocity(_ odometry.Pose, nowMS int64) (kinematics.Body, bool) {
	m.start.begin(nowMS)
	return m.V, false
}

// NormSpeedTime drives at a constant normalised velocity for a fixed
// duration, with the planar/angular fractions rebalanced as for NormSpeed.
type NormSpeedTime struct {
	Planar    float64
	Direction float64
	Angular   float64
	// Duration is the run time in seconds.
	Duration float64

	start startTime
}

// NewNormSpeedTime creates a normalised constant-velocity movement with a
// deadline.
func NewNormSpeedTime(planar, direction, angular, duration float64) *NormSpeedTime {
	return &NormSpeedTime{Planar: planar, Direction: direction, Angular: angular, Duration: duration}
}

func (m *NormSpeedTime) Finished(_ odometry.Pose, _ kinematics.Body, nowMS int64) bool {
	m.start.begin(nowMS)
	return m.start.elapsed(nowMS) >= int64(m.Duration*1000)
}

func (m *NormSpeedTime) Velocity(_ odometry.Pose, nowMS int64) (kinematics.Body, bool) {
	m.start.begin(nowMS)
	return decompose(m.Planar, m.Direction, m.Angular), true
}
