package robot

import "github.com/itohio/omnibase/motion"

// MaxArgs is the largest number of arguments a command frame may carry.
const MaxArgs = 7

// Command byte layout, MSB to LSB: the upper five bits select the command,
// the low three carry the argument count. Within the upper five bits, a set
// top bit selects a movement (low four bits: primitive type); otherwise
// 0b01sss selects a tester (no arguments) or setter (with arguments) and
// 0b00sss a function.
const (
	movementBit = 0x10
	setterBit   = 0x08
)

// Movement primitive types.
const (
	msgMovementStop = iota
	msgMovementSpeed
	msgMovementNormSpeed
	msgMovementSpaceTime
	msgMovementSpaceSpeed
	msgMovementSpaceNormSpeed
	msgMovementSpeedTime
	msgMovementNormSpeedTime
)

// Setter subtypes.
const (
	msgSetMaxWheelSpeed = iota
	msgSetWheelRadius
	msgSetRobotRadius
	msgSetPID
	msgSetFriction
)

// Tester subtypes.
const (
	msgTestMaxSpeed = iota
)

// Function subtypes.
const (
	msgFuncHome = iota
	msgFuncEmergencyStop
	msgFuncDrain
)

// HandleMessage dispatches one decoded command frame. It returns false on an
// unknown command, a subtype/argument-count mismatch or a rejected
// operation, without mutating state in the first two cases.
func (r *Robot) HandleMessage(cmd byte, args []float64) bool {
	argsLen := int(cmd & 0x07)
	if len(args) < argsLen {
		return false
	}
	args = args[:argsLen]

	upper := cmd >> 3
	switch {
	case upper&movementBit != 0:
		return r.handleMovement(upper&0x0f, args)
	case upper&setterBit != 0:
		if argsLen == 0 {
			return r.handleTester(upper & 0x07)
		}
		return r.handleSetter(upper&0x07, args)
	default:
		if argsLen != 0 {
			return false
		}
		return r.handleFunction(upper & 0x07)
	}
}

func (r *Robot) handleMovement(sub byte, args []float64) bool {
	switch sub {
	case msgMovementStop:
		if len(args) != 0 {
			return false
		}
		r.sched.Stop()
		return true

	case msgMovementSpeed:
		if len(args) != 3 {
			return false
		}
		r.sched.SetIndefinite(motion.NewSpeed(args[0], args[1], args[2]))
		return true

	case msgMovementNormSpeed:
		if len(args) != 3 {
			return false
		}
		r.sched.SetIndefinite(motion.NewNormSpeed(args[0], args[1], args[2]))
		return true

	case msgMovementSpaceTime:
		if len(args) != 4 {
			return false
		}
		return r.enqueue(motion.NewSpaceTime(args[0], args[1], args[2], args[3]))

	case msgMovementSpaceSpeed:
		if len(args) != 5 {
			return false
		}
		return r.enqueue(motion.NewSpaceSpeed(args[0], args[1], args[2], args[3], args[4]))

	case msgMovementSpaceNormSpeed:
		if len(args) != 5 {
			return false
		}
		if args[3] < 0 || args[3] > 1 || args[4] < 0 || args[4] > 1 {
			return false
		}
		return r.enqueue(motion.NewSpaceNormSpeed(args[0], args[1], args[2], args[3], args[4]))

	case msgMovementSpeedTime:
		if len(args) != 4 {
			return false
		}
		return r.enqueue(motion.NewSpeedTime(args[0], args[1], args[2], args[3]))

	case msgMovementNormSpeedTime:
		if len(args) != 4 {
			return false
		}
		return r.enqueue(motion.NewNormSpeedTime(args[0], args[1], args[2], args[3]))
	}
	return false
}

func (r *Robot) enqueue(m motion.Finite) bool {
	if !r.sched.Enqueue(m) {
		r.log.Debug().Int("queued", r.sched.Len()).Msg("movement queue full")
		return false
	}
	return true
}

func (r *Robot) handleSetter(sub byte, args []float64) bool {
	switch sub {
	case msgSetMaxWheelSpeed:
		if len(args) != 1 || args[0] < 0 {
			return false
		}
		r.SetMaxWheelSpeed(args[0])
		return true

	case msgSetWheelRadius:
		if len(args) != 1 || args[0] <= 0 {
			return false
		}
		r.SetWheelRadius(args[0])
		return true

	case msgSetRobotRadius:
		if len(args) != 1 || args[0] <= 0 {
			return false
		}
		r.SetRobotRadius(args[0])
		return true

	case msgSetPID:
		if len(args) != 3 {
			return false
		}
		r.SetPID(args[0], args[1], args[2])
		return true

	case msgSetFriction:
		if len(args) != 3 {
			return false
		}
		r.SetFriction(args[0], args[1], args[2])
		return true
	}
	return false
}

func (r *Robot) handleTester(sub byte) bool {
	switch sub {
	case msgTestMaxSpeed:
		return r.TestMaxSpeed()
	}
	return false
}

func (r *Robot) handleFunction(sub byte) bool {
	switch sub {
	case msgFuncHome:
		return r.Home()
	case msgFuncEmergencyStop:
		r.EmergencyStop()
		return true
	case msgFuncDrain:
		r.sched.Drain()
		return true
	}
	return false
}
