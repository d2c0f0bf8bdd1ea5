package physics

import "github.com/chewxy/math32"

// Ball is the simulated state of one pinball.
type Ball struct {
	ID     BallID  `json:"id"`
	Pos    Vec3    `json:"pos"`
	Vel    Vec3    `json:"vel"`
	Spin   Vec3    `json:"spin"` // angular velocity
	Radius float32 `json:"radius"`
	Mass   float32 `json:"mass"`

	// LastEventPos is where the ball last fired a hit event. A new hit event
	// needs the ball to have moved away from it.
	LastEventPos Vec3 `json:"-"`
	Frozen       bool `json:"frozen"`
}

// NewBall returns a ball at rest with the standard radius and mass.
func NewBall(id BallID, pos Vec3) *Ball {
	return &Ball{
		ID:           id,
		Pos:          pos,
		Radius:       DefaultBallRadius,
		Mass:         DefaultBallMass,
		LastEventPos: Vec3{math32.Inf(1), 0, 0},
	}
}

func (b *Ball) InvMass() float32 {
	if b.Mass <= 0 {
		return 0
	}
	return 1 / b.Mass
}

// Inertia of a solid sphere.
func (b *Ball) Inertia() float32 { return 0.4 * b.Mass * b.Radius * b.Radius }

// SurfaceVelocity is the velocity of the ball's surface at surfP, relative to
// the center.
func (b *Ball) SurfaceVelocity(surfP Vec3) Vec3 {
	return b.Vel.Add(b.Spin.Cross(surfP))
}

// applySurfaceImpulse applies a linear impulse at surfP.
func (b *Ball) applySurfaceImpulse(surfP, impulse Vec3) {
	b.Vel = b.Vel.Add(impulse.Mul(b.InvMass()))
	if in := b.Inertia(); in > 0 {
		b.Spin = b.Spin.Add(surfP.Cross(impulse).Mul(1 / in))
	}
}

// sweptBounds is the box the ball can reach within dt, used for the
// broadphase query.
func (b *Ball) sweptBounds(dt float32) AABB {
	end := b.Pos.Add(b.Vel.Mul(dt))
	return EmptyAABB().ExtendPoint(b.Pos).ExtendPoint(end).Grow(b.Radius)
}

// integrate advances the ball ballistically under the acceleration acc.
func (b *Ball) integrate(dt float32, acc Vec3, drag float32) {
	if b.Frozen || dt <= 0 {
		return
	}
	b.Pos = b.Pos.Add(b.Vel.Mul(dt)).Add(acc.Mul(0.5 * dt * dt))
	b.Vel = b.Vel.Add(acc.Mul(dt))
	if drag > 0 {
		b.Vel = b.Vel.Mul(max(0, 1-drag*dt))
	}
}

// fireHitEvent records the event position and reports whether it is far
// enough from the last one to count as a new hit.
func (b *Ball) fireHitEvent() bool {
	d := b.LastEventPos.Sub(b.Pos)
	b.LastEventPos = b.Pos
	return d.Dot(d) > hitEventDedupSq
}
