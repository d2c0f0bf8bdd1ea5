package physics

import (
	"fmt"

	"go.uber.org/zap"
)

// SpawnBall puts a new standard ball into play and returns its id.
func (w *World) SpawnBall(pos, vel Vec3) BallID {
	return w.AddBall(Ball{Pos: pos, Vel: vel})
}

// AddBall puts b into play with a fresh id. Zero radius and mass take the
// standard values.
func (w *World) AddBall(b Ball) BallID {
	nb := NewBall(w.nextBall, b.Pos)
	w.nextBall++
	nb.Vel = b.Vel
	nb.Spin = b.Spin
	if b.Radius > 0 {
		nb.Radius = b.Radius
	}
	if b.Mass > 0 {
		nb.Mass = b.Mass
	}
	w.balls = append(w.balls, nb)
	w.log.Debug("ball spawned", zap.Uint32("ball", uint32(nb.ID)))
	return nb.ID
}

// RemoveBall takes a drained ball out of play and out of every volume.
func (w *World) RemoveBall(id BallID) error {
	_, i := w.ball(id)
	if i < 0 {
		return fmt.Errorf("ball %d: %w", id, ErrUnknownBall)
	}
	w.balls = append(w.balls[:i], w.balls[i+1:]...)
	w.inside.ClearBall(id)
	for _, k := range w.kickers {
		k.release(id)
	}
	w.log.Debug("ball removed", zap.Uint32("ball", uint32(id)))
	return nil
}

// SetFlipper energizes or releases a flipper solenoid.
func (w *World) SetFlipper(item ItemID, on bool) error {
	f, ok := w.flippers[item]
	if !ok {
		return w.actuationError(item)
	}
	f.Solenoid = on
	return nil
}

// Kick releases the balls held in a kicker. angle is in degrees clockwise
// from up the table, inclination in degrees above the playfield. It returns
// the number of balls kicked.
func (w *World) Kick(item ItemID, angle, speed, inclination float32) (int, error) {
	k, ok := w.kickers[item]
	if !ok {
		return 0, w.actuationError(item)
	}
	vel := kickVelocity(angle, speed, inclination)
	n := 0
	for _, id := range k.Held {
		if b, _ := w.ball(id); b != nil {
			b.Frozen = false
			b.Vel = vel
			n++
		}
	}
	k.Held = k.Held[:0]
	return n, nil
}

// SetGateForced holds a gate open with its lifter, or lets it fall back.
func (w *World) SetGateForced(item ItemID, open bool) error {
	g, ok := w.gates[item]
	if !ok {
		return w.actuationError(item)
	}
	g.ForcedMove = open
	if !open {
		g.AngleSpeed = 0
	}
	return nil
}

// SetItemEnabled turns every collider of an item on or off, e.g. a drop
// target going down. A disabled volume forgets the balls inside it, except
// balls a kicker is holding.
func (w *World) SetItemEnabled(item ItemID, enabled bool) error {
	if int(item) >= len(w.items) {
		return fmt.Errorf("item %d: %w", item, ErrUnknownItem)
	}
	w.setItemEnabled(item, enabled)
	return nil
}

func (w *World) setItemEnabled(item ItemID, enabled bool) {
	it := &w.items[item]
	if it.enabled == enabled {
		return
	}
	it.enabled = enabled
	for _, id := range it.colliders {
		w.colliders[id].Enabled = enabled
	}
	if !enabled && it.kind.volume() {
		w.inside.ClearItem(item)
		if k := w.kickers[item]; k != nil {
			for _, b := range k.Held {
				w.inside.Add(item, b)
			}
		}
	}
}

func (w *World) ItemEnabled(item ItemID) bool {
	return int(item) < len(w.items) && w.items[item].enabled
}

func (w *World) actuationError(item ItemID) error {
	if int(item) >= len(w.items) {
		return fmt.Errorf("item %d: %w", item, ErrUnknownItem)
	}
	return fmt.Errorf("item %q (%s): %w", w.items[item].name, w.items[item].kind, ErrWrongKind)
}
