package physics

// HitTest returns the earliest contact of the ball with the collider within
// budget. Disabled colliders, frozen balls and an empty budget never hit.
// Trigger and kicker tests read and may silently update inside.
func HitTest(c *Collider, b *Ball, budget float32, inside *InsideOf) (CollisionEvent, bool) {
	if !c.Enabled || b.Frozen || !(budget > 0) {
		return CollisionEvent{}, false
	}

	var ev CollisionEvent
	var ok bool
	switch s := c.Shape.(type) {
	case Plane:
		ev, ok = s.hitTest(b, budget)
	case Circle:
		ev, ok = s.hitTest(&c.Header, b, budget, inside)
	case LineSeg:
		ev, ok = s.hitTest(&c.Header, b, budget, inside)
	case LineZ:
		ev, ok = s.hitTest(b.Pos, b.Vel, b.Radius, budget)
	case Line3D:
		ev, ok = s.hitTest(b, budget)
	case Point:
		ev, ok = s.hitTest(b, budget)
	case Triangle:
		ev, ok = s.hitTest(b, budget)
	case *Gate:
		ev, ok = s.hitTest(b, budget)
	case *Spinner:
		ev, ok = s.hitTest(b, budget)
	case *Flipper:
		ev, ok = s.hitTest(b, budget)
	}
	if ok {
		ev.Ball = b.ID
		ev.Collider = c.ID
	}
	return ev, ok
}

// ballResult is the narrowphase outcome for one ball in one sub-step.
type ballResult struct {
	ev       CollisionEvent
	hit      bool
	contacts []CollisionEvent
	skipped  []Kind
}

func (r *ballResult) reset() {
	r.hit = false
	r.contacts = r.contacts[:0]
	r.skipped = r.skipped[:0]
}

func (r *ballResult) consider(c *Collider, ev CollisionEvent, ok bool) {
	switch {
	case !ok:
		if ev.Penetrating {
			r.skipped = append(r.skipped, c.Kind)
		}
	case ev.Contact:
		r.contacts = append(r.contacts, ev)
	case !r.hit || ev.Time < r.ev.Time || (ev.Time == r.ev.Time && ev.Collider < r.ev.Collider):
		r.ev, r.hit = ev, true
	}
}
