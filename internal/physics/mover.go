package physics

import "github.com/chewxy/math32"

// emitFunc enqueues an event for the current frame.
type emitFunc func(kind EventKind, item ItemID, ball BallID, speed float32)

// mover is per-item mechanical state advanced by the step driver.
// updateVelocities runs once per frame, updateDisplacements once per
// sub-step with the sub-step duration.
type mover interface {
	itemID() ItemID
	updateVelocities(dt float32)
	updateDisplacements(dt float32, emit emitFunc)
}

// limitLatch makes a limit event fire once until the part leaves the limit.
type limitLatch struct {
	eos, bos bool
}

func (l *limitLatch) fireEOS(emit emitFunc, item ItemID, speed float32) {
	if l.eos {
		return
	}
	l.eos = true
	l.bos = false
	emit(EventLimitEOS, item, NoBall, degrees(math32.Abs(speed)))
}

func (l *limitLatch) fireBOS(emit emitFunc, item ItemID, speed float32) {
	if l.bos {
		return
	}
	l.bos = true
	l.eos = false
	emit(EventLimitBOS, item, NoBall, degrees(math32.Abs(speed)))
}

func degrees(rad float32) float32 { return rad * (180 / math32.Pi) }

// Radians converts degrees, as used in table layouts, to radians.
func Radians(deg float32) float32 { return deg * (math32.Pi / 180) }

// damp applies a per-time-unit damping factor over dt.
func damp(speed, damping, dt float32) float32 {
	if damping <= 0 || damping >= 1 {
		return speed
	}
	return speed * math32.Pow(damping, dt)
}
