package physics

import (
	"math"

	"orbitribbon/internal/geom"

	"github.com/go-gl/mathgl/mgl64"
)

type RaycastHit struct {
	Geom     *Geom
	Point    mgl64.Vec3
	Normal   mgl64.Vec3
	Distance float64
}

// Raycast returns the closest hit along the ray among every leaf under n.
func Raycast(n Node, origin, direction mgl64.Vec3, maxDistance float64) (RaycastHit, bool) {
	dir, ok := geom.SafeNormalize(direction)
	if !ok || n == nil {
		return RaycastHit{}, false
	}
	closest := RaycastHit{Distance: maxDistance}
	hit := false

	test := func(g *Geom) {
		h, ok := raycastGeom(g, origin, dir, closest.Distance)
		if ok && h.Distance <= closest.Distance {
			h.Geom = g
			closest = h
			hit = true
		}
	}
	switch v := n.(type) {
	case *Geom:
		test(v)
	case *Space:
		v.Leaves(test)
	}
	return closest, hit
}

func raycastGeom(g *Geom, origin, dir mgl64.Vec3, maxDistance float64) (RaycastHit, bool) {
	switch g.class {
	case SphereClass:
		return raycastSphere(origin, dir, g.Position(), g.radius, maxDistance)
	case CapsuleClass:
		return raycastCapsule(origin, dir, g, maxDistance)
	case BoxClass:
		return raycastBox(origin, dir, obbOf(g), maxDistance)
	case TriMeshClass:
		return raycastTriMesh(origin, dir, g, maxDistance)
	}
	return RaycastHit{}, false
}

// raycastBox runs the slab test in the box's local frame.
func raycastBox(origin, dir mgl64.Vec3, o OBB, maxDistance float64) (RaycastHit, bool) {
	rel := origin.Sub(o.Center)
	tmin, tmax := math.Inf(-1), math.Inf(1)
	enterAxis, enterSign := -1, 0.0

	for i := 0; i < 3; i++ {
		e := o.Axes[i].Dot(rel)
		f := o.Axes[i].Dot(dir)
		h := o.HalfSize[i]
		if absf(f) < geom.Epsilon {
			if e < -h || e > h {
				return RaycastHit{}, false
			}
			continue
		}
		t1 := (-h - e) / f
		t2 := (h - e) / f
		sign := -1.0
		if t1 > t2 {
			t1, t2 = t2, t1
			sign = 1
		}
		if t1 > tmin {
			tmin = t1
			enterAxis, enterSign = i, sign
		}
		if t2 < tmax {
			tmax = t2
		}
		if tmin > tmax {
			return RaycastHit{}, false
		}
	}

	if tmax < 0 || tmin > maxDistance {
		return RaycastHit{}, false
	}
	t := tmin
	var normal mgl64.Vec3
	if t < 0 || enterAxis < 0 {
		// origin inside the box
		t = 0
		normal = dir.Mul(-1)
	} else {
		normal = o.Axes[enterAxis].Mul(enterSign)
	}
	point := origin.Add(dir.Mul(t))
	return RaycastHit{Point: point, Normal: normal, Distance: t}, true
}

func raycastSphere(origin, dir, center mgl64.Vec3, radius, maxDistance float64) (RaycastHit, bool) {
	oc := origin.Sub(center)
	b := 2.0 * oc.Dot(dir)
	c := oc.Dot(oc) - radius*radius

	discriminant := b*b - 4*c
	if discriminant < 0 {
		return RaycastHit{}, false
	}

	t := (-b - math.Sqrt(discriminant)) / 2
	if t < 0 {
		t = (-b + math.Sqrt(discriminant)) / 2
	}
	if t < 0 || t > maxDistance {
		return RaycastHit{}, false
	}

	point := origin.Add(dir.Mul(t))
	normal, _ := geom.SafeNormalize(point.Sub(center))
	return RaycastHit{Point: point, Normal: normal, Distance: t}, true
}

func raycastCapsule(origin, dir mgl64.Vec3, g *Geom, maxDistance float64) (RaycastHit, bool) {
	p, r := g.pose()
	e0, e1 := capsuleEnds(p, r, g.length)
	best := RaycastHit{Distance: math.Inf(1)}
	found := false
	keep := func(h RaycastHit, ok bool) {
		if ok && h.Distance < best.Distance {
			best, found = h, true
		}
	}
	keep(raycastSphere(origin, dir, e0, g.radius, maxDistance))
	keep(raycastSphere(origin, dir, e1, g.radius, maxDistance))

	// cylinder side
	axis := e1.Sub(e0)
	l := axis.Len()
	if l > geom.Epsilon {
		axis = axis.Mul(1 / l)
		oc := origin.Sub(e0)
		dp := dir.Sub(axis.Mul(dir.Dot(axis)))
		op := oc.Sub(axis.Mul(oc.Dot(axis)))
		a := dp.Dot(dp)
		b := 2 * dp.Dot(op)
		c := op.Dot(op) - g.radius*g.radius
		if disc := b*b - 4*a*c; a > geom.Epsilon && disc >= 0 {
			t := (-b - math.Sqrt(disc)) / (2 * a)
			if t >= 0 && t <= maxDistance {
				point := origin.Add(dir.Mul(t))
				s := point.Sub(e0).Dot(axis)
				if s >= 0 && s <= l {
					normal, _ := geom.SafeNormalize(point.Sub(e0.Add(axis.Mul(s))))
					keep(RaycastHit{Point: point, Normal: normal, Distance: t}, true)
				}
			}
		}
	}
	return best, found
}

// raycastTriMesh intersects the ray with mesh triangles in mesh space.
func raycastTriMesh(origin, dir mgl64.Vec3, g *Geom, maxDistance float64) (RaycastHit, bool) {
	if g.mesh == nil {
		return RaycastHit{}, false
	}
	f := frameOf(g)
	lo := f.toLocal(origin)
	ld := f.r.Transpose().Mul3x1(dir)
	end := lo.Add(ld.Mul(maxDistance))
	box := emptyAABB.Extend(lo).Extend(end)

	best := RaycastHit{Distance: maxDistance}
	found := false
	for _, idx := range g.mesh.query(box) {
		tri := &g.mesh.Triangles[idx]
		t, ok := rayTriangle(lo, ld, tri)
		if !ok || t > best.Distance {
			continue
		}
		n := tri.Normal
		if n.Dot(ld) > 0 {
			n = n.Mul(-1)
		}
		best = RaycastHit{Point: f.toWorld(lo.Add(ld.Mul(t))), Normal: f.dirToWorld(n), Distance: t}
		found = true
	}
	return best, found
}

// rayTriangle is the Moller-Trumbore intersection test.
func rayTriangle(origin, dir mgl64.Vec3, tri *Triangle) (float64, bool) {
	e1 := tri.V1.Sub(tri.V0)
	e2 := tri.V2.Sub(tri.V0)
	p := dir.Cross(e2)
	det := e1.Dot(p)
	if absf(det) < geom.Epsilon {
		return 0, false
	}
	inv := 1 / det
	s := origin.Sub(tri.V0)
	u := s.Dot(p) * inv
	if u < 0 || u > 1 {
		return 0, false
	}
	q := s.Cross(e1)
	v := dir.Dot(q) * inv
	if v < 0 || u+v > 1 {
		return 0, false
	}
	t := e2.Dot(q) * inv
	if t < 0 {
		return 0, false
	}
	return t, true
}
