package physics

import "github.com/chewxy/math32"

func (p Plane) hitTest(b *Ball, budget float32) (CollisionEvent, bool) {
	var ev CollisionEvent
	bnv := p.Normal.Dot(b.Vel)
	if bnv > ContactVelocity {
		return ev, false
	}
	bnd := p.Normal.Dot(b.Pos) - b.Radius - p.D
	if bnd < -b.Radius {
		ev.Penetrating = true
		return ev, false
	}

	if math32.Abs(bnv) <= ContactVelocity {
		if math32.Abs(bnd) > PhysTouch {
			return ev, false
		}
		ev.Contact = true
		ev.Normal = p.Normal
		ev.NormalVelocity = bnv
		ev.Distance = bnd
		return ev, true
	}

	t := max(0, bnd/-bnv)
	if !validTime(t, budget) {
		return ev, false
	}
	ev.Normal = p.Normal
	ev.Distance = bnd
	ev.Time = t
	return ev, true
}
