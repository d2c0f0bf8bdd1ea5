package physics

import "github.com/chewxy/math32"

// AABB is an axis-aligned bounding box. Left/Right are x, Top/Bottom are y
// (top is the smaller y, as on the playfield), ZLow/ZHigh are z.
type AABB struct {
	Left, Top, Right, Bottom float32
	ZLow, ZHigh              float32
}

// EmptyAABB returns a box that any Extend call replaces.
func EmptyAABB() AABB {
	inf := math32.Inf(1)
	return AABB{Left: inf, Top: inf, ZLow: inf, Right: -inf, Bottom: -inf, ZHigh: -inf}
}

func (b AABB) Empty() bool { return b.Left > b.Right || b.Top > b.Bottom }

// ExtendPoint grows the box to contain p.
func (b AABB) ExtendPoint(p Vec3) AABB {
	b.Left = min(b.Left, p[0])
	b.Right = max(b.Right, p[0])
	b.Top = min(b.Top, p[1])
	b.Bottom = max(b.Bottom, p[1])
	b.ZLow = min(b.ZLow, p[2])
	b.ZHigh = max(b.ZHigh, p[2])
	return b
}

func (b AABB) Extend(o AABB) AABB {
	if o.Empty() {
		return b
	}
	b.Left = min(b.Left, o.Left)
	b.Right = max(b.Right, o.Right)
	b.Top = min(b.Top, o.Top)
	b.Bottom = max(b.Bottom, o.Bottom)
	b.ZLow = min(b.ZLow, o.ZLow)
	b.ZHigh = max(b.ZHigh, o.ZHigh)
	return b
}

// Grow pads the box by r on every side.
func (b AABB) Grow(r float32) AABB {
	return AABB{b.Left - r, b.Top - r, b.Right + r, b.Bottom + r, b.ZLow - r, b.ZHigh + r}
}

// Intersects reports overlap in all three axes.
func (b AABB) Intersects(o AABB) bool {
	return b.Right >= o.Left && b.Left <= o.Right &&
		b.Bottom >= o.Top && b.Top <= o.Bottom &&
		b.ZHigh >= o.ZLow && b.ZLow <= o.ZHigh
}

func (b AABB) Center() Vec2 {
	return Vec2{(b.Left + b.Right) * 0.5, (b.Top + b.Bottom) * 0.5}
}
