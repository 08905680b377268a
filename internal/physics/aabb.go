package physics

import (
	"math"

	"orbitribbon/internal/geom"

	"github.com/go-gl/mathgl/mgl64"
)

type AABB struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

// emptyAABB is the identity for Union: it intersects nothing.
var emptyAABB = AABB{
	Min: mgl64.Vec3{math.Inf(1), math.Inf(1), math.Inf(1)},
	Max: mgl64.Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)},
}

// NewAABBFromCenter creates an AABB from a center point and half extents.
func NewAABBFromCenter(center, half mgl64.Vec3) AABB {
	return AABB{Min: center.Sub(half), Max: center.Add(half)}
}

func (a AABB) Intersects(b AABB) bool {
	return a.Min[0] <= b.Max[0] && a.Max[0] >= b.Min[0] &&
		a.Min[1] <= b.Max[1] && a.Max[1] >= b.Min[1] &&
		a.Min[2] <= b.Max[2] && a.Max[2] >= b.Min[2]
}

// Empty reports whether the box contains no points.
func (a AABB) Empty() bool {
	return a.Min[0] > a.Max[0] || a.Min[1] > a.Max[1] || a.Min[2] > a.Max[2]
}

// Union returns the smallest box containing both.
func (a AABB) Union(b AABB) AABB {
	return AABB{Min: geom.MinElem(a.Min, b.Min), Max: geom.MaxElem(a.Max, b.Max)}
}

// Extend grows the box to contain p.
func (a AABB) Extend(p mgl64.Vec3) AABB {
	return AABB{Min: geom.MinElem(a.Min, p), Max: geom.MaxElem(a.Max, p)}
}

// Center returns the midpoint of the box.
func (a AABB) Center() mgl64.Vec3 {
	return a.Min.Add(a.Max).Mul(0.5)
}

// Valid reports whether the box has finite, ordered bounds.
func (a AABB) Valid() bool {
	return !a.Empty() && geom.IsFinite(a.Min) && geom.IsFinite(a.Max)
}
