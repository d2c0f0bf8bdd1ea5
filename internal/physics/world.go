package physics

import (
	"fmt"
	"math/rand/v2"

	"go.uber.org/zap"
)

// World is a loaded table: the collider table, the broadphase index, the
// mechanical state of movable items and the balls in play. A World is not
// safe for concurrent use; the owner serializes Step and actuation calls.
type World struct {
	opts Options
	log  *zap.Logger
	obs  Observer
	rng  *rand.Rand

	materials  []Material
	colliders  []Collider
	items      []itemInfo
	itemByName map[string]ItemID
	tree       *QuadTree
	always     []ColliderID

	gates       map[ItemID]*GateState
	spinners    map[ItemID]*SpinnerState
	flippers    map[ItemID]*FlipperState
	bumpers     map[ItemID]*BumperState
	slingshots  map[ItemID]*SlingshotState
	kickers     map[ItemID]*KickerState
	targets     map[ItemID]TargetConfig
	movers      []mover
	flipperList []*FlipperState

	balls    []*Ball
	results  []ballResult
	nextBall BallID

	inside *InsideOf
	events *EventQueue
	frame  uint64
	clock  float32 // time into the current frame
}

func (w *World) Options() Options      { return w.opts }
func (w *World) Events() *EventQueue   { return w.events }
func (w *World) Inside() *InsideOf     { return w.inside }
func (w *World) Tree() *QuadTree       { return w.tree }
func (w *World) Frame() uint64         { return w.frame }
func (w *World) Colliders() []Collider { return w.colliders }

// Drain returns the events of the frames stepped since the last drain.
func (w *World) Drain() []Event { return w.events.Drain() }

func (w *World) Collider(id ColliderID) (*Collider, error) {
	if int(id) >= len(w.colliders) {
		return nil, fmt.Errorf("collider %d: %w", id, ErrUnknownCollider)
	}
	return &w.colliders[id], nil
}

func (w *World) ItemID(name string) (ItemID, error) {
	id, ok := w.itemByName[name]
	if !ok {
		return 0, fmt.Errorf("item %q: %w", name, ErrUnknownItem)
	}
	return id, nil
}

func (w *World) ItemName(id ItemID) string {
	if int(id) >= len(w.items) {
		return ""
	}
	return w.items[id].name
}

func (w *World) ItemKind(id ItemID) (Kind, error) {
	if int(id) >= len(w.items) {
		return 0, fmt.Errorf("item %d: %w", id, ErrUnknownItem)
	}
	return w.items[id].kind, nil
}

// Balls returns copies of the balls in play ordered by id.
func (w *World) Balls() []Ball {
	out := make([]Ball, len(w.balls))
	for i, b := range w.balls {
		out[i] = *b
	}
	return out
}

func (w *World) Ball(id BallID) (Ball, error) {
	b, _ := w.ball(id)
	if b == nil {
		return Ball{}, fmt.Errorf("ball %d: %w", id, ErrUnknownBall)
	}
	return *b, nil
}

func (w *World) ball(id BallID) (*Ball, int) {
	for i, b := range w.balls {
		if b.ID == id {
			return b, i
		}
	}
	return nil, -1
}

// ItemState is the renderable mechanical state of one item.
type ItemState struct {
	Item       ItemID  `json:"item"`
	Name       string  `json:"name"`
	Kind       string  `json:"kind"`
	Enabled    bool    `json:"enabled"`
	Angle      float32 `json:"angle"`
	RingOffset float32 `json:"ring_offset,omitempty"`
	SkirtTilt  Vec2    `json:"skirt_tilt"`
	Held       int     `json:"held,omitempty"`
	Animating  bool    `json:"animating,omitempty"`
}

// ItemStates reports every item that has mechanical state, in item order.
func (w *World) ItemStates() []ItemState {
	var out []ItemState
	for id, it := range w.items {
		item := ItemID(id)
		s := ItemState{Item: item, Name: it.name, Kind: it.kind.String(), Enabled: it.enabled}
		switch it.kind {
		case KindGate:
			if g := w.gates[item]; g != nil {
				s.Angle = g.Angle
			}
		case KindSpinner:
			if sp := w.spinners[item]; sp != nil {
				s.Angle = sp.Angle
			}
		case KindFlipper:
			if f := w.flippers[item]; f != nil {
				s.Angle = f.Angle
			}
		case KindBumper:
			if b := w.bumpers[item]; b != nil {
				s.RingOffset, s.SkirtTilt, s.Animating = b.RingOffset, b.SkirtTilt, b.Animating()
			}
		case KindSlingshot:
			if sl := w.slingshots[item]; sl != nil {
				s.Animating = sl.AnimTime > 0
			}
		case KindKicker:
			if k := w.kickers[item]; k != nil {
				s.Held = len(k.Held)
			}
		case KindTarget, KindTrigger:
		default:
			continue
		}
		out = append(out, s)
	}
	return out
}

func (w *World) emit(kind EventKind, item ItemID, ball BallID, speed float32) {
	w.events.Push(Event{Kind: kind, Item: item, Ball: ball, Speed: speed, Frame: w.frame, Time: w.clock})
	w.obs.EventEmitted(kind)
}
