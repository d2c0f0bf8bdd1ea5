package physics

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

type ShapeTag uint8

const (
	ShapePlane ShapeTag = iota
	ShapeCircle
	ShapeLine
	ShapeLine3D
	ShapeLineZ
	ShapePoint
	ShapeTriangle
	ShapeFlipper
	ShapeGate
	ShapeSpinner
)

// Shape is the closed set of collider primitives. HitTest and Collide switch
// on the concrete type.
type Shape interface {
	Tag() ShapeTag
	Bounds() AABB
	shape()
}

// Plane is the infinite surface Normal·p = D. Used for the playfield and
// the glass.
type Plane struct {
	Normal Vec3
	D      float32
}

func (Plane) Tag() ShapeTag { return ShapePlane }
func (Plane) shape()        {}

func (Plane) Bounds() AABB {
	inf := math32.Inf(1)
	return AABB{-inf, -inf, inf, inf, -inf, inf}
}

// Circle is a vertical cylinder. Capsule posts are capped by a sphere so a
// ball landing on top rolls off.
type Circle struct {
	Center      Vec2
	Radius      float32
	ZLow, ZHigh float32
	Capsule     bool
	Capture     bool // kicker pocket that holds balls; set by AddKicker
}

func (Circle) Tag() ShapeTag { return ShapeCircle }
func (Circle) shape()        {}

func (c Circle) Bounds() AABB {
	top := c.ZHigh
	if c.Capsule {
		top += c.Radius * (capsuleRadiusScale - capsuleCenterDrop)
	}
	return AABB{c.Center[0] - c.Radius, c.Center[1] - c.Radius, c.Center[0] + c.Radius, c.Center[1] + c.Radius, c.ZLow, top}
}

// LineSeg is a vertical wall segment from V1 to V2. Its front face is on the
// left of V1->V2.
type LineSeg struct {
	V1, V2      Vec2
	ZLow, ZHigh float32
	Normal      Vec2
	Length      float32
}

func NewLineSeg(v1, v2 Vec2, zlow, zhigh float32) LineSeg {
	l := LineSeg{V1: v1, V2: v2, ZLow: zlow, ZHigh: zhigh}
	if dir, length, ok := normalize2(v2.Sub(v1)); ok {
		l.Normal = leftNormal(dir)
		l.Length = length
	}
	return l
}

func (LineSeg) Tag() ShapeTag { return ShapeLine }
func (LineSeg) shape()        {}

func (l LineSeg) Bounds() AABB {
	return AABB{min(l.V1[0], l.V2[0]), min(l.V1[1], l.V2[1]), max(l.V1[0], l.V2[0]), max(l.V1[1], l.V2[1]), l.ZLow, l.ZHigh}
}

// Midpoint of the segment.
func (l LineSeg) Midpoint() Vec2 { return l.V1.Add(l.V2).Mul(0.5) }

// LineZ is a vertical line at XY between ZLow and ZHigh.
type LineZ struct {
	XY          Vec2
	ZLow, ZHigh float32
}

func (LineZ) Tag() ShapeTag { return ShapeLineZ }
func (LineZ) shape()        {}

func (l LineZ) Bounds() AABB {
	return AABB{l.XY[0], l.XY[1], l.XY[0], l.XY[1], l.ZLow, l.ZHigh}
}

// Line3D is an arbitrary segment. It is hit-tested as a LineZ in a frame
// rotated so the segment lies along z.
type Line3D struct {
	V1, V2 Vec3

	rot mgl32.Mat3 // world -> local
	inv mgl32.Mat3 // local -> world
	z   LineZ
}

func NewLine3D(v1, v2 Vec3) Line3D {
	l := Line3D{V1: v1, V2: v2}
	dir, ok := normalize3(v2.Sub(v1))
	if !ok {
		dir = Vec3{0, 0, 1}
	}
	l.rot = mgl32.QuatBetweenVectors(dir, Vec3{0, 0, 1}).Mat4().Mat3()
	l.inv = l.rot.Transpose()
	a := l.rot.Mul3x1(v1)
	b := l.rot.Mul3x1(v2)
	l.z = LineZ{XY: Vec2{a[0], a[1]}, ZLow: min(a[2], b[2]), ZHigh: max(a[2], b[2])}
	return l
}

func (Line3D) Tag() ShapeTag { return ShapeLine3D }
func (Line3D) shape()        {}

func (l Line3D) Bounds() AABB {
	return EmptyAABB().ExtendPoint(l.V1).ExtendPoint(l.V2)
}

// Point is a single vertex, e.g. the tip of a wire guide.
type Point struct {
	P Vec3
}

func (Point) Tag() ShapeTag { return ShapePoint }
func (Point) shape()        {}

func (p Point) Bounds() AABB { return EmptyAABB().ExtendPoint(p.P) }

// Triangle is a one-sided face; the front side is counter-clockwise A, B, C.
type Triangle struct {
	A, B, C Vec3
	Normal  Vec3
}

// NewTriangle computes the face normal. ok is false for a degenerate face.
func NewTriangle(a, b, c Vec3) (Triangle, bool) {
	n, ok := normalize3(b.Sub(a).Cross(c.Sub(a)))
	return Triangle{A: a, B: b, C: c, Normal: n}, ok
}

func (Triangle) Tag() ShapeTag { return ShapeTriangle }
func (Triangle) shape()        {}

func (t Triangle) Bounds() AABB {
	return EmptyAABB().ExtendPoint(t.A).ExtendPoint(t.B).ExtendPoint(t.C)
}

// Gate is a swinging wire. The wire is passed through and drives the gate
// state. A one-way gate also has a rigid blocker facing its back side.
type Gate struct {
	Wire    LineSeg
	Blocker LineSeg
	State   *GateState
}

func (*Gate) Tag() ShapeTag { return ShapeGate }
func (*Gate) shape()        {}
func (g *Gate) Bounds() AABB { return g.Wire.Bounds() }

// Spinner is a flap on a horizontal axis spun by balls passing under it.
type Spinner struct {
	Wire  LineSeg
	State *SpinnerState
}

func (*Spinner) Tag() ShapeTag { return ShapeSpinner }
func (*Spinner) shape()        {}
func (s *Spinner) Bounds() AABB { return s.Wire.Bounds() }

// Flipper is a rotating bat: base and tip circles joined by two tangent
// lines, posed from its state every sub-step.
type Flipper struct {
	State *FlipperState
}

func (*Flipper) Tag() ShapeTag { return ShapeFlipper }
func (*Flipper) shape()        {}
func (f *Flipper) Bounds() AABB { return f.State.sweptBounds() }
