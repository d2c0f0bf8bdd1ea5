package physics

import "fmt"

type (
	ColliderID uint32
	ItemID     uint32
	BallID     uint32
)

// NoBall marks events that are not caused by a ball (mover limit events).
const NoBall BallID = ^BallID(0)

// Kind tags the playfield item a collider belongs to. Contact resolution and
// the non-rigid hit tests special-case on it.
type Kind uint8

const (
	KindWall Kind = iota
	KindPlayfield
	KindRamp
	KindTarget
	KindBumper
	KindSlingshot
	KindFlipper
	KindTrigger
	KindKicker
	KindGate
	KindSpinner
)

var kindNames = [...]string{
	KindWall:      "wall",
	KindPlayfield: "playfield",
	KindRamp:      "ramp",
	KindTarget:    "target",
	KindBumper:    "bumper",
	KindSlingshot: "slingshot",
	KindFlipper:   "flipper",
	KindTrigger:   "trigger",
	KindKicker:    "kicker",
	KindGate:      "gate",
	KindSpinner:   "spinner",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", k)
}

// Rigid reports whether balls bounce off colliders of this kind. Triggers,
// kickers, spinners and gate wires are passed through.
func (k Kind) Rigid() bool { return k < KindTrigger }

// volume reports whether the kind tracks balls with an Inside-Of set.
func (k Kind) volume() bool { return k == KindTrigger || k == KindKicker }

// Header holds the shape-independent collider fields. It is read-only once
// the world is built, except for Enabled which follows the owning item.
type Header struct {
	ID         ColliderID
	Item       ItemID
	Kind       Kind
	Material   MaterialID
	FireEvents bool
	Threshold  float32 // minimum normal speed for a hit event
	Enabled    bool

	mat Material
}

// Mat returns the resolved material. Valid only on colliders owned by a World.
func (h *Header) Mat() Material { return h.mat }

// Collider is one entry of the flat collider table.
type Collider struct {
	Header
	Shape Shape
}

// Movable reports whether the collider is excluded from the static quadtree
// and tested against every ball each sub-step.
func (c *Collider) Movable() bool {
	switch c.Shape.(type) {
	case *Flipper, *Gate, *Spinner, Plane:
		return true
	}
	return false
}

// ParseKind maps a layout item type to its Kind.
func ParseKind(s string) (Kind, error) {
	for i, n := range kindNames {
		if n == s {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("item type %q: %w", s, ErrWrongKind)
}
