package table

import (
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/playmatatu/pinball/internal/physics"
)

// Build validates the layout and turns it into a physics world: one item per
// layout item, its colliders, mechanical state and material references.
func Build(l *Layout, opts physics.Options) (*physics.World, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}
	bl := physics.NewBuilder()
	for _, m := range l.Materials {
		if _, err := bl.AddMaterial(m); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidLayout, err)
		}
	}

	var disabled []physics.ItemID
	for i := range l.Items {
		it := &l.Items[i]
		id, err := addItem(bl, it)
		if err != nil {
			return nil, fmt.Errorf("%w: item %q: %w", ErrInvalidLayout, it.Name, err)
		}
		if it.Disabled {
			disabled = append(disabled, id)
		}
	}

	w, err := bl.Build(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidLayout, err)
	}
	for _, id := range disabled {
		if err := w.SetItemEnabled(id, false); err != nil {
			return nil, err
		}
	}
	w.Options().Logger.Named("table").Info("table loaded",
		zap.String("table", l.Name),
		zap.Int("items", len(l.Items)),
		zap.Int("colliders", len(w.Colliders())))
	return w, nil
}

func addItem(bl *physics.Builder, it *Item) (physics.ItemID, error) {
	kind, err := physics.ParseKind(it.Type)
	if err != nil {
		return 0, err
	}
	mat, err := bl.Material(it.Material)
	if err != nil {
		return 0, err
	}
	id, err := bl.AddItem(it.Name, kind)
	if err != nil {
		return 0, err
	}
	h := physics.Header{Item: id, Material: mat, FireEvents: it.FireEvents, Threshold: it.Threshold}
	circle := physics.Circle{Center: it.Center, Radius: it.Radius, ZLow: it.ZLow, ZHigh: it.ZHigh, Capsule: it.Capsule}

	switch kind {
	case physics.KindPlayfield:
		n := it.Normal
		if n == (Vec3{}) {
			n = Vec3{0, 0, 1}
		}
		_, err = bl.Add(h, physics.Plane{Normal: n, D: it.Offset})

	case physics.KindWall, physics.KindRamp:
		err = addWall(bl, h, it)

	case physics.KindTarget:
		if err = addLines(bl, h, it, false); err == nil && it.Target != nil {
			err = bl.SetTarget(id, *it.Target)
		}

	case physics.KindSlingshot:
		cfg := physics.SlingshotConfig{}
		if it.Slingshot != nil {
			cfg = *it.Slingshot
		}
		for _, seg := range segments(it.Points, it.Closed) {
			if _, err = bl.AddSlingshot(h, physics.NewLineSeg(seg[0], seg[1], it.ZLow, it.ZHigh), cfg); err != nil {
				break
			}
		}

	case physics.KindBumper:
		cfg := physics.BumperConfig{}
		if it.Bumper != nil {
			cfg = *it.Bumper
		}
		_, err = bl.AddBumper(h, circle, cfg)

	case physics.KindKicker:
		cfg := physics.KickerConfig{}
		if it.Kicker != nil {
			cfg = *it.Kicker
		}
		_, err = bl.AddKicker(h, circle, cfg)

	case physics.KindTrigger:
		if it.Radius > 0 {
			_, err = bl.Add(h, circle)
		} else {
			err = addLines(bl, h, it, false)
		}

	case physics.KindGate:
		if it.Gate == nil || len(it.Points) != 2 {
			return 0, fmt.Errorf("gate needs two points and a gate section")
		}
		g := it.Gate
		_, err = bl.AddGate(h, physics.NewLineSeg(it.Points[0], it.Points[1], it.ZLow, it.ZHigh), physics.GateConfig{
			AngleMin:      physics.Radians(g.AngleMin),
			AngleMax:      physics.Radians(g.AngleMax),
			Damping:       g.Damping,
			GravityFactor: g.GravityFactor,
			Height:        it.ZHigh - it.ZLow,
			TwoWay:        g.TwoWay,
		})

	case physics.KindSpinner:
		if it.Spinner == nil || len(it.Points) != 2 {
			return 0, fmt.Errorf("spinner needs two points and a spinner section")
		}
		s := it.Spinner
		_, err = bl.AddSpinner(h, physics.NewLineSeg(it.Points[0], it.Points[1], it.ZLow, it.ZHigh), physics.SpinnerConfig{
			AngleMin: physics.Radians(s.AngleMin),
			AngleMax: physics.Radians(s.AngleMax),
			Damping:  s.Damping,
			Height:   it.ZHigh - it.ZLow,
		})

	case physics.KindFlipper:
		if it.Flipper == nil {
			return 0, fmt.Errorf("flipper section missing")
		}
		f := it.Flipper
		_, err = bl.AddFlipper(h, physics.FlipperConfig{
			Pivot:       f.Pivot,
			BaseRadius:  f.BaseRadius,
			EndRadius:   f.EndRadius,
			Length:      f.Length,
			StartAngle:  physics.Radians(f.StartAngle),
			EndAngle:    physics.Radians(f.EndAngle),
			ZLow:        it.ZLow,
			ZHigh:       it.ZHigh,
			Strength:    f.Strength,
			ReturnRatio: f.ReturnRatio,
		})
	}
	return id, err
}

// addWall adds the wall segments with a vertical edge at every joint, a
// post when the wall is round, and any ramp surfaces and wire guides.
func addWall(bl *physics.Builder, h physics.Header, it *Item) error {
	if it.Radius > 0 {
		if _, err := bl.Add(h, physics.Circle{Center: it.Center, Radius: it.Radius, ZLow: it.ZLow, ZHigh: it.ZHigh, Capsule: it.Capsule}); err != nil {
			return err
		}
	}
	if err := addLines(bl, h, it, true); err != nil {
		return err
	}
	for _, q := range it.Quads {
		for _, tri := range [][3]Vec3{{q[0], q[1], q[2]}, {q[0], q[2], q[3]}} {
			t, ok := upwardTriangle(tri[0], tri[1], tri[2])
			if !ok {
				return fmt.Errorf("ramp quad %v: %w", q, physics.ErrDegenerateShape)
			}
			if _, err := bl.Add(h, t); err != nil {
				return err
			}
		}
	}
	for _, wire := range it.Wires {
		if _, err := bl.Add(h, physics.NewLine3D(wire[0], wire[1])); err != nil {
			return err
		}
	}
	for _, p := range it.Pegs {
		if _, err := bl.Add(h, physics.Point{P: p}); err != nil {
			return err
		}
	}
	return nil
}

// addLines adds one segment per edge of the item's polyline, the reverse
// edges for two-sided walls, and vertical edges at the points when joints
// is set.
func addLines(bl *physics.Builder, h physics.Header, it *Item, joints bool) error {
	if len(it.Points) == 1 {
		return fmt.Errorf("a polyline needs at least two points")
	}
	pts := it.Points
	if it.Closed {
		pts = outward(pts)
	}
	for _, seg := range segments(pts, it.Closed) {
		if _, err := bl.Add(h, physics.NewLineSeg(seg[0], seg[1], it.ZLow, it.ZHigh)); err != nil {
			return err
		}
		if it.TwoSided {
			if _, err := bl.Add(h, physics.NewLineSeg(seg[1], seg[0], it.ZLow, it.ZHigh)); err != nil {
				return err
			}
		}
	}
	if !joints {
		return nil
	}
	for _, p := range pts {
		if _, err := bl.Add(h, physics.LineZ{XY: p, ZLow: it.ZLow, ZHigh: it.ZHigh}); err != nil {
			return err
		}
	}
	return nil
}

func segments(pts []Vec2, closed bool) [][2]Vec2 {
	var out [][2]Vec2
	for i := 0; i+1 < len(pts); i++ {
		out = append(out, [2]Vec2{pts[i], pts[i+1]})
	}
	if closed && len(pts) > 2 {
		out = append(out, [2]Vec2{pts[len(pts)-1], pts[0]})
	}
	return out
}

// outward orders a closed polygon so every segment's front face points out
// of it. With y growing down the screen that is a negative shoelace area.
func outward(pts []Vec2) []Vec2 {
	var area float32
	for i, p := range pts {
		q := pts[(i+1)%len(pts)]
		area += p[0]*q[1] - q[0]*p[1]
	}
	if area <= 0 {
		return pts
	}
	r := slices.Clone(pts)
	slices.Reverse(r)
	return r
}

// upwardTriangle builds a triangle whose front face points up the z axis.
func upwardTriangle(a, b, c Vec3) (physics.Triangle, bool) {
	t, ok := physics.NewTriangle(a, b, c)
	if ok && t.Normal[2] < 0 {
		t, ok = physics.NewTriangle(a, c, b)
	}
	return t, ok
}
