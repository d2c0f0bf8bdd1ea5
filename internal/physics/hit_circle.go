package physics

import "github.com/chewxy/math32"

// A ball that appears this close to the center of a volume was placed there
// (spawned in a kicker) and joins it without a hit.
const volumeSpawnTolerance = 0.05

// membershipStale reports a ball clearly inside a volume it is not a member
// of, or clearly outside one it is. Balls on the boundary are left to the
// swept test.
func membershipStale(inSet bool, bnd float32) bool {
	if inSet {
		return bnd > PhysTouch
	}
	return bnd < -PhysTouch
}

func (c Circle) hitTest(h *Header, b *Ball, budget float32, inside *InsideOf) (CollisionEvent, bool) {
	var ev CollisionEvent
	rigid := h.Kind.Rigid()

	center := Vec3{c.Center[0], c.Center[1], 0}
	dist := b.Pos.Sub(center)
	dv := b.Vel

	capsule := c.Capsule && b.Pos[2] > c.ZHigh
	target := c.Radius
	if capsule {
		target = c.Radius * capsuleRadiusScale
		if rigid {
			target += b.Radius
		}
		center[2] = c.ZHigh - c.Radius*capsuleCenterDrop
		dist[2] = b.Pos[2] - center[2]
	} else {
		if rigid {
			target += b.Radius
		}
		dist[2], dv[2] = 0, 0
	}

	bcddsq := dist.Dot(dist)
	bcdd := math32.Sqrt(bcddsq)
	if bcdd <= 1e-6 {
		return ev, false
	}
	bb := dist.Dot(dv)
	bnv := bb / bcdd
	if rigid && bnv > LowNormalVelocity {
		return ev, false
	}
	bnd := bcdd - target
	a := dv.Dot(dv)

	volume := h.Kind.volume() && inside != nil
	// A ball stalled in a capturing kicker pocket is dropped from the set so
	// it is captured again.
	if volume && c.Capture && h.Kind == KindKicker && bnd <= 0 && bnd >= -c.Radius && a < ContactVelocity*ContactVelocity {
		inside.Remove(h.Item, b.ID)
	}

	var t float32
	var contact, leaving bool
	switch {
	case rigid && bnd < PhysTouch:
		if bnd < -b.Radius {
			ev.Penetrating = true
			return ev, false
		}
		if math32.Abs(bnv) <= ContactVelocity {
			contact = true
		} else {
			t = max(0, -bnd/bnv)
		}

	case volume && membershipStale(inside.Contains(h.Item, b.ID), bnd):
		// Membership disagrees with the geometry: report the crossing now.
		if bnd < 0 && bcdd < volumeSpawnTolerance {
			inside.Add(h.Item, b.ID)
			return ev, false
		}
		leaving = bnd >= 0

	default:
		// A member only cares about the exit, a non-member about the entry.
		// Balls sitting on the boundary would otherwise hit again at time
		// zero.
		member := volume && inside.Contains(h.Item, b.ID)
		if (!rigid && !member && bnd*bnv > 0) || a < 1e-8 {
			return ev, false
		}
		t1, t2, ok := solveQuadratic(a, 2*bb, bcddsq-target*target)
		if !ok {
			return ev, false
		}
		t, leaving = pickRoot(t1, t2)
		switch {
		case member && !leaving:
			t, leaving = max(t1, t2), true
		case volume && !member && leaving:
			return ev, false
		}
	}
	if !validTime(t, budget) {
		return ev, false
	}

	hitz := b.Pos[2] + b.Vel[2]*t
	if hitz+b.Radius*0.5 < c.ZLow ||
		(!capsule && hitz-b.Radius*0.5 > c.ZHigh) ||
		(capsule && hitz < c.ZHigh) {
		return ev, false
	}

	hit := b.Pos.Add(b.Vel.Mul(t)).Sub(center)
	if !capsule {
		hit[2] = 0
	}
	if n, ok := normalize3(hit); ok {
		ev.Normal = n
	} else {
		ev.Normal = Vec3{0, 1, 0}
	}

	if !rigid {
		ev.HitFlag = leaving
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
