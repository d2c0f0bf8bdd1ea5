package physics

import "github.com/chewxy/math32"

// solveQuadratic returns the real roots of a·t² + b·t + c = 0. ok is false
// when there are none or a is zero.
func solveQuadratic(a, b, c float32) (t1, t2 float32, ok bool) {
	if a == 0 {
		return 0, 0, false
	}
	d := b*b - 4*a*c
	if d < 0 {
		return 0, 0, false
	}
	d = math32.Sqrt(d)
	inv := -0.5 / a
	return (b + d) * inv, (b - d) * inv, true
}

// pickRoot selects the time of impact from two roots. Opposite signs mean the
// ball is already inside and the positive root is the exit.
func pickRoot(t1, t2 float32) (t float32, leaving bool) {
	if t1*t2 < 0 {
		return max(t1, t2), true
	}
	return min(t1, t2), false
}

// validTime reports whether t is a usable time of impact within budget.
func validTime(t, budget float32) bool {
	return finite(t) && t >= 0 && t <= budget
}
