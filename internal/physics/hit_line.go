package physics

import "github.com/chewxy/math32"

// lineMode selects the behavior of a line segment hit test.
type lineMode struct {
	direction bool // only the front face can be hit
	lateral   bool // the ball radius counts toward the contact distance
	rigid     bool

	// passThrough measures distance to the ball center, so gate and spinner
	// wires react when the ball center crosses them.
	passThrough bool

	// trigger enables the membership check against inSet for balls that
	// are already overlapping the line.
	trigger bool
	inSet   bool
}

func modeFor(k Kind) lineMode {
	if k.Rigid() {
		return lineMode{direction: true, lateral: true, rigid: true}
	}
	return lineMode{lateral: true, trigger: k == KindTrigger}
}

func (l LineSeg) hitTest(h *Header, b *Ball, budget float32, inside *InsideOf) (CollisionEvent, bool) {
	m := modeFor(h.Kind)
	if m.trigger {
		if inside == nil {
			m.trigger = false
		} else {
			m.inSet = inside.Contains(h.Item, b.ID)
		}
	}
	return l.hitTestBasic(b.Pos, b.Vel, b.Radius, budget, m)
}

func (l LineSeg) hitTestBasic(pos, vel Vec3, radius, budget float32, m lineMode) (CollisionEvent, bool) {
	var ev CollisionEvent
	if l.Length == 0 {
		return ev, false
	}
	vxy := xy(vel)
	bnv := vxy.Dot(l.Normal)
	leaving := bnv > LowNormalVelocity
	if m.direction && leaving {
		return ev, false
	}

	dist := xy(pos).Sub(l.V1)
	bcpd := dist.Dot(l.Normal)
	bnd := bcpd - radius
	if m.passThrough {
		bnd = bcpd
	}
	in := bnd <= 0

	var t float32
	if m.rigid {
		if bnd < -radius {
			ev.Penetrating = true
			return ev, false
		}
		switch {
		case m.lateral && bnd <= PhysTouch:
			if in || math32.Abs(bnv) > ContactVelocity || bnd <= -PhysTouch {
				t = 0
			} else {
				// Slow and touching: rank behind fast zero-time hits.
				t = bnd/(2*PhysTouch) + 0.5
			}
		case math32.Abs(bnv) > LowNormalVelocity:
			t = bnd / -bnv
		default:
			return ev, false
		}
	} else {
		if bnv*bnd >= 0 {
			// Outside and receding, or inside and approaching. Only a
			// trigger whose membership disagrees reports this.
			if !m.trigger || math32.Abs(bnd) >= radius*0.5 || in == m.inSet {
				return ev, false
			}
			t = 0
			leaving = !in
		} else {
			t = bnd / -bnv
		}
	}
	if !validTime(t, budget) {
		return ev, false
	}

	tangent := Vec2{l.Normal[1], -l.Normal[0]}
	btd := dist.Dot(tangent) + vxy.Dot(tangent)*t
	if btd < -LineEndpointTolerance || btd > l.Length+LineEndpointTolerance {
		return ev, false
	}

	hitz := pos[2] - radius + vel[2]*t
	if hitz+radius*1.5 < l.ZLow || hitz+radius*0.5 > l.ZHigh {
		return ev, false
	}

	if !m.rigid {
		ev.HitFlag = leaving
	}
	ev.Normal = Vec3{l.Normal[0], l.Normal[1], 0}
	ev.Distance = bnd
	ev.Time = t
	if m.rigid && math32.Abs(bnv) <= ContactVelocity && math32.Abs(bnd) <= PhysTouch {
		ev.Contact = true
		ev.NormalVelocity = bnv
		ev.Time = 0
	}
	return ev, true
}
