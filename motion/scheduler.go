package motion

import (
	"github.com/itohio/omnibase/kinematics"
	"github.com/itohio/omnibase/odometry"
)

// MaxMovements is the capacity of the finite-movement queue.
const MaxMovements = 10

// Scheduler holds a bounded FIFO of finite movements over one indefinite
// fallback, and emits one target velocity per tick. It is not safe for
// concurrent use; the control loop owns it.
type Scheduler struct {
	queue      [MaxMovements]Finite
	size       int
	indefinite Movement
	friction   kinematics.Body
}

// NewScheduler creates a scheduler resting on Still.
func NewScheduler() *Scheduler {
	return &Scheduler{indefinite: Still}
}

// Stop installs Still as the indefinite fallback, releasing whatever ran
// before. Queued finite movements still run to completion; Stop only decides
// what happens after the queue drains.
func (s *Scheduler) Stop() {
	s.indefinite = Still
}

// SetIndefinite replaces the indefinite fallback.
func (s *Scheduler) SetIndefinite(m Movement) {
	if m == nil {
		m = Still
	}
	s.indefinite = m
}

// Enqueue appends a finite movement, installing Still as the fallback first.
// A full queue rejects the movement.
func (s *Scheduler) Enqueue(m Finite) bool {
	s.Stop()
	if s.size >= MaxMovements {
		return false
	}
	s.queue[s.size] = m
	s.size++
	return true
}

// Drain discards all queued finite movements.
func (s *Scheduler) Drain() {
	for i := 0; i < s.size; i++ {
		s.queue[i] = nil
	}
	s.size = 0
}

// Len returns the number of queued finite movements.
func (s *Scheduler) Len() int {
	return s.size
}

// SetFriction configures the per-axis friction coefficients used to project
// braking space from the current speed.
func (s *Scheduler) SetFriction(f kinematics.Body) {
	s.friction = f
}

// Friction returns the configured per-axis friction coefficients.
func (s *Scheduler) Friction() kinematics.Body {
	return s.friction
}

// Handle advances the queue past completed movements and returns the target
// velocity for this tick, plus whether the vector is normalised. speed is
// the current body velocity used to project braking space.
func (s *Scheduler) Handle(pose odometry.Pose, speed kinematics.Body, nowMS int64) (kinematics.Body, bool) {
	if s.size == 0 {
		return s.indefinite.Velocity(pose, nowMS)
	}

	braking := kinematics.Body{
		Forward: s.friction.Forward * speed.Forward * speed.Forward,
		Strafe:  s.friction.Strafe * speed.Strafe * speed.Strafe,
		Theta:   s.friction.Theta * speed.Theta * speed.Theta,
	}

	for s.size > 0 && s.queue[0].Finished(pose, braking, nowMS) {
		copy(s.queue[:], s.queue[1:s.size])
		s.size--
		s.queue[s.size] = nil
	}

	if s.size == 0 {
		return s.indefinite.Velocity(pose, nowMS)
	}
	return s.queue[0].Velocity(pose, nowMS)
}
