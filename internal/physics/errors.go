package physics

import "errors"

// Configuration errors. They are returned while building a world and by
// actuation calls; the step driver itself never fails.
var (
	ErrUnknownMaterial = errors.New("unknown material")
	ErrUnknownItem     = errors.New("unknown item")
	ErrUnknownCollider = errors.New("unknown collider")
	ErrUnknownBall     = errors.New("unknown ball")
	ErrDuplicateItem   = errors.New("duplicate item name")
	ErrDegenerateShape = errors.New("degenerate shape")
	ErrWrongKind       = errors.New("item does not support this actuation")
)

var ErrDuplicateMaterial = errors.New("duplicate material name")
