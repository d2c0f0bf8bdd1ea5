package physics

import (
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Step advances the world by one frame of length dt.
//
// Each sub-step finds, over all balls, the single earliest dynamic hit within
// the remaining time (flipper stops also end a sub-step), moves everything to
// that instant, resolves that one hit and then the resting contacts seen in
// the sub-step. The frame ends when no hit remains or after MaxIterations
// sub-steps, in which case the rest of the frame is dropped.
func (w *World) Step(dt float32) FrameStats {
	w.frame++
	w.clock = 0
	stats := FrameStats{Frame: w.frame}
	if !(dt > 0) {
		return stats
	}

	for _, m := range w.movers {
		m.updateVelocities(dt)
	}

	remaining := dt
	for remaining > 0 {
		if stats.SubSteps >= w.opts.MaxIterations {
			stats.Truncated = true
			w.log.Debug("iteration cap reached",
				zap.Uint64("frame", w.frame),
				zap.Float32("dropped", remaining))
			break
		}
		stats.SubSteps++

		step := remaining
		for _, f := range w.flipperList {
			if t := f.limitTime(); t > 0 && t < step {
				step = t
			}
		}

		w.narrowphase(step)

		best := -1
		for i := range w.results {
			r := &w.results[i]
			for _, k := range r.skipped {
				stats.Skipped++
				w.obs.ContactSkipped(k)
				w.log.Debug("contact skipped",
					zap.Uint32("ball", uint32(w.balls[i].ID)),
					zap.Stringer("kind", k))
			}
			if r.hit && (best < 0 || r.ev.Time < w.results[best].ev.Time) {
				best = i
			}
		}
		if best >= 0 {
			step = w.results[best].ev.Time
		}

		w.clock += step
		for _, m := range w.movers {
			m.updateDisplacements(step, w.emit)
		}
		for i, b := range w.balls {
			b.integrate(step, supportedAcceleration(w.opts.Gravity, w.results[i].contacts), w.opts.Drag)
		}

		if best >= 0 {
			w.collide(w.balls[best], &w.results[best].ev)
			stats.Hits++
		}
		for i, b := range w.balls {
			for j := range w.results[i].contacts {
				w.contact(b, &w.results[i].contacts[j], step)
				stats.Contacts++
			}
		}
		remaining -= step
	}

	w.obs.FrameSimulated(stats)
	return stats
}

// narrowphase tests every ball against its broadphase candidates and the
// movable colliders. Balls are independent here, so they fan out across
// goroutines; the reduction in Step stays sequential.
func (w *World) narrowphase(budget float32) {
	if cap(w.results) < len(w.balls) {
		w.results = make([]ballResult, len(w.balls))
	}
	w.results = w.results[:len(w.balls)]

	if w.opts.Parallelism <= 1 || len(w.balls) < 2 {
		for i, b := range w.balls {
			w.testBall(b, budget, &w.results[i])
		}
		return
	}

	var g errgroup.Group
	g.SetLimit(w.opts.Parallelism)
	for i, b := range w.balls {
		g.Go(func() error {
			w.testBall(b, budget, &w.results[i])
			return nil
		})
	}
	_ = g.Wait()
}

func (w *World) testBall(b *Ball, budget float32, r *ballResult) {
	r.reset()
	if b.Frozen {
		return
	}
	for _, id := range w.always {
		c := &w.colliders[id]
		ev, ok := HitTest(c, b, budget, w.inside)
		r.consider(c, ev, ok)
	}
	for id := range w.tree.Query(b.sweptBounds(budget)) {
		c := &w.colliders[id]
		ev, ok := HitTest(c, b, budget, w.inside)
		r.consider(c, ev, ok)
	}
}

// collide resolves the hit chosen for this sub-step.
func (w *World) collide(b *Ball, ev *CollisionEvent) {
	c := &w.colliders[ev.Collider]

	switch s := c.Shape.(type) {
	case *Gate:
		if ev.Part == partBlocker {
			b.collide3DWall(ev.Normal, c.mat, Vec3{}, ev.Distance, w.rng)
		}
		if speed, fire := s.State.hit(ev, b); fire {
			w.fireHit(c, b, speed)
		}
		return
	case *Spinner:
		s.State.hit(ev, b)
		return
	case *Flipper:
		sv := s.State.surfaceVelocity(b.Pos.Sub(ev.Normal.Mul(b.Radius)))
		dot := b.Vel.Sub(sv).Dot(ev.Normal)
		b.collide3DWall(ev.Normal, c.mat, sv, ev.Distance, w.rng)
		w.fireHit(c, b, -dot)
		return
	}

	switch c.Kind {
	case KindTrigger, KindKicker:
		w.collideVolume(c, b, ev)

	case KindBumper:
		dot := ev.Normal.Dot(b.Vel)
		b.collide3DWall(ev.Normal, c.mat, Vec3{}, ev.Distance, w.rng)
		if c.FireEvents && dot <= -c.Threshold {
			if bs := w.bumpers[c.Item]; bs != nil {
				b.Vel = b.Vel.Add(ev.Normal.Mul(bs.Config.Force))
				bs.fire(b.Pos)
			}
			if b.fireHitEvent() {
				w.emit(EventHit, c.Item, b.ID, -dot)
			}
		}

	case KindSlingshot:
		dot := ev.Normal.Dot(b.Vel)
		ss := w.slingshots[c.Item]
		line, _ := c.Shape.(LineSeg)
		fired := ss != nil && dot <= -c.Threshold
		if fired {
			ss.kick(line, ev.Normal, b)
		}
		b.collide3DWall(ev.Normal, c.mat, Vec3{}, ev.Distance, w.rng)
		if fired && c.FireEvents && b.fireHitEvent() {
			ss.AnimTime = slingshotAnimDuration
			w.emit(EventSlingshot, c.Item, b.ID, -dot)
		}

	default:
		dot := ev.Normal.Dot(b.Vel)
		b.collide3DWall(ev.Normal, c.mat, Vec3{}, ev.Distance, w.rng)
		if w.fireHit(c, b, -dot) && c.Kind == KindTarget && w.targets[c.Item].DropOnHit {
			w.setItemEnabled(c.Item, false)
		}
	}
}

// fireHit enqueues a hit when the collider fires events, the impact speed
// clears its threshold, and the ball has moved since its last hit event.
func (w *World) fireHit(c *Collider, b *Ball, speed float32) bool {
	if !c.FireEvents || speed < c.Threshold {
		return false
	}
	if !b.fireHitEvent() {
		return false
	}
	w.emit(EventHit, c.Item, b.ID, speed)
	return true
}

// collideVolume toggles Inside-Of membership for triggers and kickers. An
// enabled capturing kicker holds the ball that enters it.
func (w *World) collideVolume(c *Collider, b *Ball, ev *CollisionEvent) {
	if ev.HitFlag {
		if !w.inside.Remove(c.Item, b.ID) {
			return
		}
		if k := w.kickers[c.Item]; k != nil {
			k.release(b.ID)
		}
		if c.FireEvents {
			w.emit(EventUnHit, c.Item, b.ID, b.Vel.Len())
		}
		return
	}

	if !w.inside.Add(c.Item, b.ID) {
		return
	}
	if c.FireEvents {
		w.emit(EventHit, c.Item, b.ID, b.Vel.Len())
	}
	if k := w.kickers[c.Item]; k != nil && k.Config.Capture {
		k.capture(b)
	}
}

func (w *World) contact(b *Ball, ev *CollisionEvent, dt float32) {
	c := &w.colliders[ev.Collider]
	var sv Vec3
	if f, ok := c.Shape.(*Flipper); ok {
		sv = f.State.surfaceVelocity(b.Pos.Sub(ev.Normal.Mul(b.Radius)))
	}
	b.handleStaticContact(ev, c.mat, sv, w.opts.Gravity, dt)
}
