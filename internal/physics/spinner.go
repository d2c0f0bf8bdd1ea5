package physics

import "github.com/chewxy/math32"

const (
	spinnerBounce  = -0.3
	spinnerGravity = 0.0025
)

type SpinnerConfig struct {
	AngleMin float32 `json:"angle_min"` // radians; equal limits mean the flap spins freely
	AngleMax float32 `json:"angle_max"`
	Damping  float32 `json:"damping"`
	Height   float32 `json:"height"`
}

// SpinnerState is the rotation of a spinner flap.
type SpinnerState struct {
	Item       ItemID
	Config     SpinnerConfig
	Angle      float32
	AngleSpeed float32

	latch limitLatch
}

func newSpinnerState(item ItemID, cfg SpinnerConfig) *SpinnerState {
	s := &SpinnerState{Item: item, Config: cfg}
	if s.limited() {
		s.Angle = clamp(0, cfg.AngleMin, cfg.AngleMax)
	}
	return s
}

func (s *SpinnerState) itemID() ItemID { return s.Item }

func (s *SpinnerState) limited() bool { return s.Config.AngleMin != s.Config.AngleMax }

func (s *Spinner) hitTest(b *Ball, budget float32) (CollisionEvent, bool) {
	ev, ok := s.Wire.hitTestBasic(b.Pos, b.Vel, b.Radius, budget, lineMode{passThrough: true})
	ev.Part = partWire
	return ev, ok
}

// hit spins the flap at the ball's crossing speed, backwards when the ball
// came from the back.
func (s *SpinnerState) hit(ev *CollisionEvent, b *Ball) {
	dot := math32.Abs(ev.Normal[0]*b.Vel[0] + ev.Normal[1]*b.Vel[1])
	h := s.Config.Height * 0.5
	if h <= 0 {
		h = 1
	}
	speed := dot / h
	if s.Config.Damping > 0 {
		speed *= s.Config.Damping
	}
	if ev.HitFlag {
		speed = -speed
	}
	s.AngleSpeed = speed
}

func (s *SpinnerState) updateVelocities(dt float32) {
	s.AngleSpeed -= math32.Sin(s.Angle) * spinnerGravity * dt
	s.AngleSpeed = damp(s.AngleSpeed, s.Config.Damping, dt)
}

func (s *SpinnerState) updateDisplacements(dt float32, emit emitFunc) {
	if s.limited() {
		s.Angle += s.AngleSpeed * dt
		if s.Angle > s.Config.AngleMax {
			s.latch.fireEOS(emit, s.Item, s.AngleSpeed)
			s.Angle = s.Config.AngleMax
			if s.AngleSpeed > 0 {
				s.AngleSpeed *= spinnerBounce
			}
		}
		if s.Angle < s.Config.AngleMin {
			s.latch.fireBOS(emit, s.Item, s.AngleSpeed)
			s.Angle = s.Config.AngleMin
			if s.AngleSpeed < 0 {
				s.AngleSpeed *= spinnerBounce
			}
		}
		return
	}

	// Free spinning: one Spin event per revolution, as the flap passes over
	// the top (angle pi; zero hangs down).
	var target float32
	switch {
	case s.AngleSpeed > 0 && s.Angle < math32.Pi:
		target = math32.Pi
	case s.AngleSpeed > 0:
		target = 3 * math32.Pi
	case s.Angle < math32.Pi:
		target = -math32.Pi
	default:
		target = math32.Pi
	}
	s.Angle += s.AngleSpeed * dt
	if (s.AngleSpeed > 0 && s.Angle > target) || (s.AngleSpeed < 0 && s.Angle < target) {
		emit(EventSpin, s.Item, NoBall, degrees(math32.Abs(s.AngleSpeed)))
	}
	s.Angle = math32.Mod(s.Angle, 2*math32.Pi)
	if s.Angle < 0 {
		s.Angle += 2 * math32.Pi
	}
}
