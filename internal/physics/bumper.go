package physics

import "github.com/chewxy/math32"

const (
	defaultRingDrop       = 45
	defaultRingSpeed      = 5
	defaultSkirtTilt      = 0.06 // radians
	bumperSkirtDuration   = 10
	slingshotAnimDuration = 10
)

type BumperConfig struct {
	Force     float32 `json:"force"`
	RingDrop  float32 `json:"ring_drop"`
	RingSpeed float32 `json:"ring_speed"`
	SkirtTilt float32 `json:"skirt_tilt"`
}

// BumperState is the ring and skirt animation of a pop bumper. The ring
// drops when the bumper fires and rises back; the skirt tilts toward the
// ball for a short while.
type BumperState struct {
	Item       ItemID
	Config     BumperConfig
	Center     Vec2
	RingOffset float32
	SkirtTilt  Vec2 // rotation about x and y

	ringPhase int8 // -1 dropping, +1 rising
	skirtTime float32
}

func newBumperState(item ItemID, center Vec2, cfg BumperConfig) *BumperState {
	if cfg.RingDrop <= 0 {
		cfg.RingDrop = defaultRingDrop
	}
	if cfg.RingSpeed <= 0 {
		cfg.RingSpeed = defaultRingSpeed
	}
	if cfg.SkirtTilt <= 0 {
		cfg.SkirtTilt = defaultSkirtTilt
	}
	return &BumperState{Item: item, Config: cfg, Center: center}
}

func (s *BumperState) itemID() ItemID { return s.Item }

func (s *BumperState) fire(ballPos Vec3) {
	s.ringPhase = -1
	if d, _, ok := normalize2(xy(ballPos).Sub(s.Center)); ok {
		s.SkirtTilt = Vec2{d[1] * s.Config.SkirtTilt, -d[0] * s.Config.SkirtTilt}
		s.skirtTime = bumperSkirtDuration
	}
}

// Animating reports whether the ring or skirt is away from rest.
func (s *BumperState) Animating() bool { return s.ringPhase != 0 || s.skirtTime > 0 }

func (s *BumperState) updateVelocities(float32) {}

func (s *BumperState) updateDisplacements(dt float32, _ emitFunc) {
	switch s.ringPhase {
	case -1:
		s.RingOffset -= s.Config.RingSpeed * dt
		if s.RingOffset <= -s.Config.RingDrop {
			s.RingOffset = -s.Config.RingDrop
			s.ringPhase = 1
		}
	case 1:
		s.RingOffset += s.Config.RingSpeed * dt
		if s.RingOffset >= 0 {
			s.RingOffset = 0
			s.ringPhase = 0
		}
	}
	if s.skirtTime > 0 {
		s.skirtTime -= dt
		if s.skirtTime <= 0 {
			s.skirtTime = 0
			s.SkirtTilt = Vec2{}
		}
	}
}

type SlingshotConfig struct {
	Force float32 `json:"force"`
}

// SlingshotState holds the kick strength and the arm animation timer.
type SlingshotState struct {
	Item     ItemID
	Config   SlingshotConfig
	AnimTime float32
}

func (s *SlingshotState) itemID() ItemID            { return s.Item }
func (s *SlingshotState) updateVelocities(float32) {}

func (s *SlingshotState) updateDisplacements(dt float32, _ emitFunc) {
	s.AnimTime = max(0, s.AnimTime-dt)
}

// kick drives the ball into the slingshot by the configured force, strongest
// at the middle of the segment and falling off quadratically to the ends.
func (s *SlingshotState) kick(line LineSeg, n Vec3, b *Ball) {
	hit := xy(b.Pos).Sub(xy(n).Mul(b.Radius))
	tangent := Vec2{line.Normal[1], -line.Normal[0]}
	d := float32(-1)
	if line.Length > 1e-6 {
		d = clamp(2*hit.Sub(line.V1).Dot(tangent)/line.Length-1, -1, 1)
	}
	b.Vel = b.Vel.Sub(n.Mul(s.Config.Force * (1 - d*d)))
}

type KickerConfig struct {
	Capture bool `json:"capture"` // hold balls until kicked
}

// KickerState tracks balls held in a kicker.
type KickerState struct {
	Item   ItemID
	Config KickerConfig
	Center Vec2
	Held   []BallID
}

func (k *KickerState) capture(b *Ball) {
	b.Pos[0], b.Pos[1] = k.Center[0], k.Center[1]
	b.Vel = Vec3{}
	b.Spin = Vec3{}
	b.Frozen = true
	k.Held = append(k.Held, b.ID)
}

func (k *KickerState) release(id BallID) {
	for i, h := range k.Held {
		if h == id {
			k.Held = append(k.Held[:i], k.Held[i+1:]...)
			return
		}
	}
}

// kickVelocity converts a kick angle (degrees clockwise from up the table),
// speed and inclination (degrees above the playfield) into a velocity.
func kickVelocity(angleDeg, speed, inclinationDeg float32) Vec3 {
	sa, ca := math32.Sincos(Radians(angleDeg))
	si, ci := math32.Sincos(Radians(inclinationDeg))
	return Vec3{sa * speed * ci, -ca * speed * ci, speed * si}
}

type TargetConfig struct {
	DropOnHit bool `json:"drop_on_hit"`
}
