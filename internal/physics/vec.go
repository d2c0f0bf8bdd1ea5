package physics

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Vec3 and Vec2 are the table-space vector types used throughout the package.
type (
	Vec3 = mgl32.Vec3
	Vec2 = mgl32.Vec2
)

func xy(v Vec3) Vec2 { return Vec2{v[0], v[1]} }

// leftNormal rotates d by +90 degrees in the xy plane.
func leftNormal(d Vec2) Vec2 { return Vec2{-d[1], d[0]} }

// normalize2 returns the unit vector and the original length, or ok=false
// for a (near) zero vector.
func normalize2(v Vec2) (Vec2, float32, bool) {
	l := v.Len()
	if l <= 1e-6 {
		return Vec2{}, 0, false
	}
	return v.Mul(1 / l), l, true
}

func normalize3(v Vec3) (Vec3, bool) {
	l := v.Len()
	if l <= 1e-6 {
		return Vec3{}, false
	}
	return v.Mul(1 / l), true
}

func finite(f float32) bool {
	return !math32.IsNaN(f) && !math32.IsInf(f, 0)
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func rotateXY(v Vec3, angle float32) Vec3 {
	s, c := math32.Sincos(angle)
	return Vec3{v[0]*c - v[1]*s, v[1]*c + v[0]*s, v[2]}
}
