package physics

import "github.com/chewxy/math32"

const flipperAngleEps = 1e-5

type FlipperConfig struct {
	Pivot       Vec2    `json:"pivot"`
	BaseRadius  float32 `json:"base_radius"`
	EndRadius   float32 `json:"end_radius"`
	Length      float32 `json:"length"`
	StartAngle  float32 `json:"start_angle"` // radians, rest position
	EndAngle    float32 `json:"end_angle"`   // radians, energized position
	ZLow        float32 `json:"z_low"`
	ZHigh       float32 `json:"z_high"`
	Strength    float32 `json:"strength"`     // angular acceleration while energized
	ReturnRatio float32 `json:"return_ratio"` // fraction of Strength pulling it back
}

// FlipperState is the pose of a flipper. It is driven by its solenoid, not by
// ball impacts.
type FlipperState struct {
	Item       ItemID
	Config     FlipperConfig
	Angle      float32
	AngleSpeed float32
	Solenoid   bool

	latch limitLatch
}

func newFlipperState(item ItemID, cfg FlipperConfig) *FlipperState {
	return &FlipperState{Item: item, Config: cfg, Angle: cfg.StartAngle, latch: limitLatch{bos: true}}
}

func (s *FlipperState) itemID() ItemID { return s.Item }

// dir is +1 when the flipper opens counter-clockwise.
func (s *FlipperState) dir() float32 {
	if s.Config.EndAngle >= s.Config.StartAngle {
		return 1
	}
	return -1
}

func (s *FlipperState) atEnd() bool {
	return s.dir()*(s.Angle-s.Config.EndAngle) >= -flipperAngleEps
}

func (s *FlipperState) atStart() bool {
	return s.dir()*(s.Angle-s.Config.StartAngle) <= flipperAngleEps
}

func (s *FlipperState) updateVelocities(dt float32) {
	d := s.dir()
	if s.Solenoid {
		s.AngleSpeed += d * s.Config.Strength * dt
	} else {
		s.AngleSpeed -= d * s.Config.Strength * s.Config.ReturnRatio * dt
	}
	if (s.atEnd() && d*s.AngleSpeed > 0) || (s.atStart() && d*s.AngleSpeed < 0) {
		s.AngleSpeed = 0
	}
}

// limitTime returns the time until the flipper reaches the stop it is moving
// toward, or -1.
func (s *FlipperState) limitTime() float32 {
	d := s.dir()
	var target float32
	switch {
	case d*s.AngleSpeed > 0:
		target = s.Config.EndAngle
	case d*s.AngleSpeed < 0:
		target = s.Config.StartAngle
	default:
		return -1
	}
	if math32.Abs(target-s.Angle) <= flipperAngleEps {
		return -1
	}
	t := (target - s.Angle) / s.AngleSpeed
	if !finite(t) || t <= 0 {
		return -1
	}
	return t
}

func (s *FlipperState) updateDisplacements(dt float32, emit emitFunc) {
	s.Angle += s.AngleSpeed * dt
	if !s.atStart() {
		s.latch.bos = false
	}
	if !s.atEnd() {
		s.latch.eos = false
	}
	d := s.dir()
	if d*s.AngleSpeed > 0 && s.atEnd() {
		s.latch.fireEOS(emit, s.Item, s.AngleSpeed)
		s.Angle = s.Config.EndAngle
		s.AngleSpeed = 0
	} else if d*s.AngleSpeed < 0 && s.atStart() {
		s.latch.fireBOS(emit, s.Item, s.AngleSpeed)
		s.Angle = s.Config.StartAngle
		s.AngleSpeed = 0
	}
}

// surfaceVelocity is the velocity of the flipper surface at p.
func (s *FlipperState) surfaceVelocity(p Vec3) Vec3 {
	r := xy(p).Sub(s.Config.Pivot)
	return Vec3{-r[1] * s.AngleSpeed, r[0] * s.AngleSpeed, 0}
}

type flipperPose struct {
	base, tip   Circle
	left, right LineSeg
}

func (s *FlipperState) pose() flipperPose {
	c := s.Config
	sin, cos := math32.Sincos(s.Angle)
	d := Vec2{cos, sin}
	tip := c.Pivot.Add(d.Mul(c.Length))

	// The tangent lines lean toward the tip when the flipper narrows.
	var sv float32
	if c.Length > 0 {
		sv = clamp((c.BaseRadius-c.EndRadius)/c.Length, -1, 1)
	}
	cv := math32.Sqrt(1 - sv*sv)
	nl := leftNormal(d)
	n1 := nl.Mul(cv).Add(d.Mul(sv))
	n2 := nl.Mul(-cv).Add(d.Mul(sv))

	return flipperPose{
		base:  Circle{Center: c.Pivot, Radius: c.BaseRadius, ZLow: c.ZLow, ZHigh: c.ZHigh},
		tip:   Circle{Center: tip, Radius: c.EndRadius, ZLow: c.ZLow, ZHigh: c.ZHigh},
		left:  NewLineSeg(c.Pivot.Add(n1.Mul(c.BaseRadius)), tip.Add(n1.Mul(c.EndRadius)), c.ZLow, c.ZHigh),
		right: NewLineSeg(tip.Add(n2.Mul(c.EndRadius)), c.Pivot.Add(n2.Mul(c.BaseRadius)), c.ZLow, c.ZHigh),
	}
}

func (s *FlipperState) sweptBounds() AABB {
	r := s.Config.Length + s.Config.EndRadius
	p := s.Config.Pivot
	return AABB{p[0] - r, p[1] - r, p[0] + r, p[1] + r, s.Config.ZLow, s.Config.ZHigh}
}

// hitTest runs the part tests with the ball velocity taken relative to the
// rotating flipper surface at the ball's position.
func (f *Flipper) hitTest(b *Ball, budget float32) (CollisionEvent, bool) {
	s := f.State
	rel := *b
	rel.Vel = b.Vel.Sub(s.surfaceVelocity(b.Pos))
	p := s.pose()
	h := Header{Kind: KindFlipper}
	rigid := lineMode{direction: true, lateral: true, rigid: true}

	var best CollisionEvent
	var found, penetrating bool
	consider := func(ev CollisionEvent, ok bool, part uint8) {
		penetrating = penetrating || ev.Penetrating
		if !ok {
			return
		}
		ev.Part = part
		switch {
		case !found:
		case best.Contact && !ev.Contact:
		case !best.Contact && !ev.Contact && ev.Time < best.Time:
		default:
			return
		}
		best, found = ev, true
	}

	ev, ok := p.base.hitTest(&h, &rel, budget, nil)
	consider(ev, ok, partFlipperBase)
	ev, ok = p.tip.hitTest(&h, &rel, budget, nil)
	consider(ev, ok, partFlipperTip)
	ev, ok = p.left.hitTestBasic(rel.Pos, rel.Vel, rel.Radius, budget, rigid)
	consider(ev, ok, partFlipperLeft)
	ev, ok = p.right.hitTestBasic(rel.Pos, rel.Vel, rel.Radius, budget, rigid)
	consider(ev, ok, partFlipperRight)

	if !found {
		return CollisionEvent{Penetrating: penetrating}, false
	}
	return best, true
}
