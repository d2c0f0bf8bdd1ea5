package physics

import "math/rand/v2"

// collide3DWall reflects the ball off a surface moving at surfVel.
// The normal component of the relative velocity is reversed and scaled by the
// material elasticity, the tangential component loses the friction fraction
// (transferred to spin), and fast impacts get a random scatter in the xy
// plane.
func (b *Ball) collide3DWall(n Vec3, mat Material, surfVel Vec3, hitDistance float32, rng *rand.Rand) {
	dot := b.Vel.Sub(surfVel).Dot(n)
	if dot >= -LowNormalVelocity {
		if dot > LowNormalVelocity {
			return
		}
		if hitDistance >= -Embedded {
			return
		}
		dot = -EmbedShot
	}

	// Push the ball back out of the surface it sank into.
	if hd := -DisplacementGain * hitDistance; hd > 1e-4 {
		b.Pos = b.Pos.Add(n.Mul(min(hd, DisplacementLimit)))
	}

	e := mat.EffectiveElasticity(dot)
	impulse := -(1 + e) * dot
	b.Vel = b.Vel.Add(n.Mul(impulse))

	if mat.Friction > 0 {
		rel := b.Vel.Sub(surfVel)
		vt := rel.Sub(n.Mul(rel.Dot(n)))
		if vt.Dot(vt) > 1e-6 {
			dv := vt.Mul(-clamp(mat.Friction, 0, 1))
			b.applySurfaceImpulse(n.Mul(-b.Radius), dv.Mul(b.Mass))
		}
	}

	if impulse > 1 && mat.ScatterAngle > 1e-5 && rng != nil {
		s := rng.Float32()*2 - 1
		s *= (1 - s*s) * scatterShape * mat.ScatterAngle
		b.Vel = rotateXY(b.Vel, s)
	}
}

// handleStaticContact keeps a resting ball on its surface: approach speed
// relative to the surface is removed, a small embedding is pushed out, and
// rolling friction is applied for the sub-step.
func (b *Ball) handleStaticContact(ev *CollisionEvent, mat Material, surfVel, gravity Vec3, dt float32) {
	n := ev.Normal
	normVel := b.Vel.Sub(surfVel).Dot(n)
	if normVel > ContactVelocity {
		// An earlier collision this sub-step already moved it away.
		return
	}
	if normVel < 0 {
		b.Vel = b.Vel.Sub(n.Mul(normVel))
	}
	if ev.Distance < 0 {
		b.Pos = b.Pos.Add(n.Mul(min(-ev.Distance, PhysTouch)))
	}
	b.applyFriction(n, surfVel, gravity, mat.Friction, dt)
}

func (b *Ball) applyFriction(n, surfVel, gravity Vec3, friction, dt float32) {
	maxFric := friction * b.Mass * -gravity.Dot(n)
	if maxFric <= 0 || dt <= 0 {
		return
	}
	surfP := n.Mul(-b.Radius)
	sv := b.SurfaceVelocity(surfP).Sub(surfVel)
	slip := sv.Sub(n.Mul(sv.Dot(n)))
	speed := slip.Len()
	if speed < Precision {
		return
	}
	dir := slip.Mul(1 / speed)
	cp := surfP.Cross(dir)
	denom := b.InvMass() + dir.Dot(cp.Mul(1/b.Inertia()).Cross(surfP))
	fric := clamp(-dir.Dot(sv)/denom, -maxFric, maxFric)
	if finite(fric) {
		b.applySurfaceImpulse(surfP, dir.Mul(fric*dt))
	}
}

// supportedAcceleration removes the part of gravity pushing the ball into the
// surfaces it rests on.
func supportedAcceleration(g Vec3, contacts []CollisionEvent) Vec3 {
	for i := range contacts {
		n := contacts[i].Normal
		if d := g.Dot(n); d < 0 {
			g = g.Sub(n.Mul(d))
		}
	}
	return g
}
