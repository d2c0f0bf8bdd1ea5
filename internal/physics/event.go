package physics

// CollisionEvent describes one contact found by a hit test. It is recomputed
// on every call.
type CollisionEvent struct {
	Ball     BallID
	Collider ColliderID

	Normal   Vec3    // unit, pointing from the surface toward the ball
	Distance float32 // separation of the ball surface from the collider at test time
	Time     float32 // time of impact within the budget

	// Contact marks a resting contact. Time is zero and NormalVelocity holds
	// the relative normal speed at the moment of the test.
	Contact        bool
	NormalVelocity float32

	// HitFlag is set by non-rigid shapes: the ball is leaving the volume, or
	// it came at a gate or spinner from the back.
	HitFlag bool
	Part    uint8 // sub-shape of a composite collider

	// Penetrating is set on a miss caused by the ball sitting more than a
	// radius inside a rigid surface.
	Penetrating bool
}

const (
	partWire uint8 = iota
	partBlocker
)

const (
	partFlipperBase uint8 = iota
	partFlipperTip
	partFlipperLeft
	partFlipperRight
)
