// Package geom holds the vector and rotation primitives shared by the
// physics core and the scene objects built on top of it.
package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Epsilon is the tolerance used for "close enough to zero" checks.
const Epsilon = 1e-9

// MulElem multiplies two vectors componentwise.
func MulElem(a, b mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}

// DivElem divides a by b componentwise. Division by a zero component
// yields an infinite or NaN component, same as plain float division.
func DivElem(a, b mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{a[0] / b[0], a[1] / b[1], a[2] / b[2]}
}

// Dist returns the distance between two points.
func Dist(a, b mgl64.Vec3) float64 {
	return a.Sub(b).Len()
}

// ToLength returns v scaled to length l. A zero vector stays zero.
func ToLength(v mgl64.Vec3, l float64) mgl64.Vec3 {
	n := v.Len()
	if n < Epsilon {
		return mgl64.Vec3{}
	}
	return v.Mul(l / n)
}

// SafeNormalize is Normalize without the NaN on zero-length input.
func SafeNormalize(v mgl64.Vec3) (mgl64.Vec3, bool) {
	n := v.Len()
	if n < Epsilon || math.IsNaN(n) || math.IsInf(n, 0) {
		return mgl64.Vec3{}, false
	}
	return v.Mul(1 / n), true
}

// Average returns the mean of the given points, or the zero vector.
func Average(points []mgl64.Vec3) mgl64.Vec3 {
	if len(points) == 0 {
		return mgl64.Vec3{}
	}
	var sum mgl64.Vec3
	for _, p := range points {
		sum = sum.Add(p)
	}
	return sum.Mul(1 / float64(len(points)))
}

// MinElem returns the componentwise minimum.
func MinElem(a, b mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{math.Min(a[0], b[0]), math.Min(a[1], b[1]), math.Min(a[2], b[2])}
}

// MaxElem returns the componentwise maximum.
func MaxElem(a, b mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{math.Max(a[0], b[0]), math.Max(a[1], b[1]), math.Max(a[2], b[2])}
}

// IsFinite reports whether every component is a real number.
func IsFinite(v mgl64.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Perpendicular returns two unit vectors that form an orthonormal basis
// together with the unit vector n.
func Perpendicular(n mgl64.Vec3) (mgl64.Vec3, mgl64.Vec3) {
	var t mgl64.Vec3
	if math.Abs(n[0]) > 0.57735 {
		t = mgl64.Vec3{n[1], -n[0], 0}
	} else {
		t = mgl64.Vec3{0, n[2], -n[1]}
	}
	t = t.Normalize()
	return t, n.Cross(t)
}
