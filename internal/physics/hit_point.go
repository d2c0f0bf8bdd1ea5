package physics

import "github.com/chewxy/math32"

func (l LineZ) hitTest(pos, vel Vec3, radius, budget float32) (CollisionEvent, bool) {
	var ev CollisionEvent
	dist := xy(pos).Sub(l.XY)
	dv := xy(vel)
	bcddsq := dist.Dot(dist)
	bcdd := math32.Sqrt(bcddsq)
	if bcdd <= 1e-6 {
		return ev, false
	}
	bb := dist.Dot(dv)
	bnv := bb / bcdd
	if bnv > ContactVelocity {
		return ev, false
	}
	bnd := bcdd - radius
	a := dv.Dot(dv)

	var t float32
	var contact bool
	if bnd < PhysTouch {
		if bnd < -radius {
			ev.Penetrating = true
			return ev, false
		}
		if math32.Abs(bnv) <= ContactVelocity {
			contact = true
		} else {
			t = max(0, -bnd/bnv)
		}
	} else {
		if a < 1e-8 {
			return ev, false
		}
		t1, t2, ok := solveQuadratic(a, 2*bb, bcddsq-radius*radius)
		if !ok {
			return ev, false
		}
		t, _ = pickRoot(t1, t2)
	}
	if !validTime(t, budget) {
		return ev, false
	}

	hitz := pos[2] + vel[2]*t
	if hitz < l.ZLow || hitz > l.ZHigh {
		return ev, false
	}

	n := dist.Add(dv.Mul(t))
	if u, _, ok := normalize2(n); ok {
		ev.Normal = Vec3{u[0], u[1], 0}
	} else {
		ev.Normal = Vec3{0, 1, 0}
	}
	ev.Contact = contact
	if contact {
		ev.NormalVelocity = bnv
		t = 0
	}
	ev.Distance = bnd
	ev.Time = t
	return ev, true
}

func (l Line3D) hitTest(b *Ball, budget float32) (CollisionEvent, bool) {
	ev, ok := l.z.hitTest(l.rot.Mul3x1(b.Pos), l.rot.Mul3x1(b.Vel), b.Radius, budget)
	if ok {
		ev.Normal = l.inv.Mul3x1(ev.Normal)
	}
	return ev, ok
}

func (p Point) hitTest(b *Ball, budget float32) (CollisionEvent, bool) {
	var ev CollisionEvent
	dist := b.Pos.Sub(p.P)
	bcddsq := dist.Dot(dist)
	bcdd := math32.Sqrt(bcddsq)
	if bcdd <= 1e-6 {
		return ev, false
	}
	bb := dist.Dot(b.Vel)
	bnv := bb / bcdd
	if bnv > ContactVelocity {
		return ev, false
	}
	bnd := bcdd - b.Radius
	a := b.Vel.Dot(b.Vel)

	var t float32
	var contact bool
	if bnd < PhysTouch {
		if bnd < -b.Radius {
			ev.Penetrating = true
			return ev, false
		}
		if math32.Abs(bnv) <= ContactVelocity {
			contact = true
		} else {
			t = max(0, -bnd/bnv)
		}
	} else {
		if a < 1e-8 {
			return ev, false
		}
		t1, t2, ok := solveQuadratic(a, 2*bb, bcddsq-b.Radius*b.Radius)
		if !ok {
			return ev, false
		}
		t, _ = pickRoot(t1, t2)
	}
	if !validTime(t, budget) {
		return ev, false
	}

	n, ok := normalize3(b.Pos.Add(b.Vel.Mul(t)).Sub(p.P))
	if !ok {
		return ev, false
	}
	ev.Normal = n
	ev.Contact = contact
	if contact {
		ev.NormalVelocity = bnv
		t = 0
	}
	ev.Distance = bnd
	ev.Time = t
	return ev, true
}
