package physics

import "github.com/chewxy/math32"

func (tr Triangle) hitTest(b *Ball, budget float32) (CollisionEvent, bool) {
	var ev CollisionEvent
	bnv := tr.Normal.Dot(b.Vel)
	if bnv > ContactVelocity {
		return ev, false
	}

	// Point of the ball nearest the face.
	near := b.Pos.Sub(tr.Normal.Mul(b.Radius))
	bnd := tr.Normal.Dot(near.Sub(tr.A))
	if bnd < -b.Radius {
		ev.Penetrating = true
		return ev, false
	}

	var t float32
	var contact bool
	switch {
	case bnd <= PhysTouch:
		switch {
		case math32.Abs(bnv) <= ContactVelocity:
			contact = true
		case bnd <= 0:
			t = 0
		default:
			t = bnd / -bnv
		}
	case math32.Abs(bnv) > LowNormalVelocity:
		t = bnd / -bnv
	default:
		return ev, false
	}
	if !validTime(t, budget) {
		return ev, false
	}

	// Barycentric test of the contact point at the time of impact.
	p := near.Add(b.Vel.Mul(t))
	v0 := tr.C.Sub(tr.A)
	v1 := tr.B.Sub(tr.A)
	v2 := p.Sub(tr.A)
	d00, d01, d02 := v0.Dot(v0), v0.Dot(v1), v0.Dot(v2)
	d11, d12 := v1.Dot(v1), v1.Dot(v2)
	inv := 1 / (d00*d11 - d01*d01)
	u := (d11*d02 - d01*d12) * inv
	v := (d00*d12 - d01*d02) * inv
	if !finite(u) || !finite(v) || u < 0 || v < 0 || u+v > 1 {
		return ev, false
	}

	ev.Normal = tr.Normal
	ev.Distance = bnd
	ev.Time = t
	ev.Contact = contact
	if contact {
		ev.NormalVelocity = bnv
	}
	return ev, true
}
