package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// OBB represents an Oriented Bounding Box
type OBB struct {
	Center   mgl64.Vec3    // World-space center
	HalfSize mgl64.Vec3    // Half-extents along local axes
	Axes     [3]mgl64.Vec3 // Local X, Y, Z axes (rotated)
}

// NewOBB creates an OBB from center, full size, and a rotation matrix.
func NewOBB(center, size mgl64.Vec3, rot mgl64.Mat3) OBB {
	return OBB{
		Center:   center,
		HalfSize: size.Mul(0.5),
		Axes:     [3]mgl64.Vec3{rot.Col(0), rot.Col(1), rot.Col(2)},
	}
}

// obbOf builds the OBB of a box geom at its current pose.
func obbOf(g *Geom) OBB {
	p, r := g.pose()
	return NewOBB(p, g.sides, r)
}

// IntersectsOBB tests if two OBBs intersect using the Separating Axis Theorem
func (a OBB) IntersectsOBB(b OBB) bool {
	_, _, ok := a.penetration(b)
	return ok
}

func (a OBB) project(axis mgl64.Vec3) float64 {
	return a.HalfSize[0]*absf(a.Axes[0].Dot(axis)) +
		a.HalfSize[1]*absf(a.Axes[1].Dot(axis)) +
		a.HalfSize[2]*absf(a.Axes[2].Dot(axis))
}

// penetration tests all 15 axes and returns the axis of least overlap,
// pointing from b towards a, with the overlap depth.
func (a OBB) penetration(b OBB) (mgl64.Vec3, float64, bool) {
	t := b.Center.Sub(a.Center)
	minPenetration := math.Inf(1)
	var best mgl64.Vec3
	separated := false

	testAxis := func(axis mgl64.Vec3, bias float64) {
		l := axis.Len()
		if l < 1e-6 || separated {
			return
		}
		axis = axis.Mul(1 / l)
		dist := t.Dot(axis)
		penetration := a.project(axis) + b.project(axis) - absf(dist)
		if penetration < 0 {
			separated = true
			return
		}
		// edge axes are only preferred when clearly better than a face
		if penetration+bias < minPenetration {
			minPenetration = penetration
			if dist < 0 {
				best = axis
			} else {
				best = axis.Mul(-1)
			}
		}
	}

	for i := 0; i < 3; i++ {
		testAxis(a.Axes[i], 0)
	}
	for i := 0; i < 3; i++ {
		testAxis(b.Axes[i], 0)
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			testAxis(a.Axes[i].Cross(b.Axes[j]), 1e-4)
		}
	}
	if separated {
		return mgl64.Vec3{}, 0, false
	}
	return best, minPenetration, true
}

// ResolveOBB returns the minimum translation vector to push 'a' out of 'b'
// Returns zero vector if no overlap
func (a OBB) ResolveOBB(b OBB) mgl64.Vec3 {
	n, depth, ok := a.penetration(b)
	if !ok {
		return mgl64.Vec3{}
	}
	return n.Mul(depth)
}

// Contains reports whether p lies inside the box, with tolerance eps.
func (o OBB) Contains(p mgl64.Vec3, eps float64) bool {
	d := p.Sub(o.Center)
	for i := 0; i < 3; i++ {
		if absf(d.Dot(o.Axes[i])) > o.HalfSize[i]+eps {
			return false
		}
	}
	return true
}

// Corners returns the eight vertices of the box.
func (o OBB) Corners() [8]mgl64.Vec3 {
	var out [8]mgl64.Vec3
	for i := 0; i < 8; i++ {
		p := o.Center
		for k := 0; k < 3; k++ {
			s := -1.0
			if i&(1<<k) != 0 {
				s = 1
			}
			p = p.Add(o.Axes[k].Mul(s * o.HalfSize[k]))
		}
		out[i] = p
	}
	return out
}

// ClosestPointOnOBB returns the closest point on or in the OBB to the given point
func ClosestPointOnOBB(o OBB, point mgl64.Vec3) mgl64.Vec3 {
	local := point.Sub(o.Center)
	result := o.Center
	for i := 0; i < 3; i++ {
		d := clampf(local.Dot(o.Axes[i]), -o.HalfSize[i], o.HalfSize[i])
		result = result.Add(o.Axes[i].Mul(d))
	}
	return result
}

func absf(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

func clampf(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
