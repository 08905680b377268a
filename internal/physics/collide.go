package physics

import (
	"math"

	"orbitribbon/internal/geom"

	"github.com/go-gl/mathgl/mgl64"
)

// Collide runs the narrow phase between two leaf geoms and returns up to
// max contacts. Contacts follow the convention that moving g1 along
// Normal by Depth separates the pair. Shapes that cannot be tested, or
// that produce non-finite results, yield no contacts.
func Collide(g1, g2 *Geom, max int) []Contact {
	if g1 == nil || g2 == nil || g1 == g2 || max <= 0 {
		return nil
	}
	b1, b2 := g1.AABB(), g2.AABB()
	if !b1.Valid() || !b2.Valid() || !b1.Intersects(b2) {
		return nil
	}

	a, b := g1, g2
	swapped := a.class > b.class
	if swapped {
		a, b = b, a
	}

	var cs []Contact
	switch a.class {
	case SphereClass:
		switch b.class {
		case SphereClass:
			cs = collideSphereSphere(a, b)
		case CapsuleClass:
			cs = collideSphereCapsule(a, b)
		case BoxClass:
			cs = collideSphereBox(a, b)
		case TriMeshClass:
			cs = collideSphereTriMesh(a, b)
		}
	case CapsuleClass:
		switch b.class {
		case CapsuleClass:
			cs = collideCapsuleCapsule(a, b)
		case BoxClass:
			cs = collideCapsuleBox(a, b)
		case TriMeshClass:
			cs = collideCapsuleTriMesh(a, b)
		}
	case BoxClass:
		switch b.class {
		case BoxClass:
			cs = collideBoxBox(a, b)
		case TriMeshClass:
			cs = collideBoxTriMesh(a, b)
		}
	}

	out := make([]Contact, 0, len(cs))
	for _, c := range cs {
		if !geom.IsFinite(c.Pos) || !geom.IsFinite(c.Normal) || math.IsNaN(c.Depth) || math.IsInf(c.Depth, 0) {
			continue
		}
		c.G1, c.G2 = a, b
		if swapped {
			c = c.flipped()
		}
		out = append(out, c)
		if len(out) == max {
			break
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// sphereContact tests two spheres; the normal points from b to a.
func sphereContact(pa mgl64.Vec3, ra float64, pb mgl64.Vec3, rb float64) (Contact, bool) {
	d := pa.Sub(pb)
	dist := d.Len()
	if dist >= ra+rb {
		return Contact{}, false
	}
	n := mgl64.Vec3{1, 0, 0}
	if dist > geom.Epsilon {
		n = d.Mul(1 / dist)
	}
	depth := ra + rb - dist
	return Contact{Pos: pb.Add(n.Mul(rb - depth/2)), Normal: n, Depth: depth}, true
}

func one(c Contact, ok bool) []Contact {
	if !ok {
		return nil
	}
	return []Contact{c}
}

func collideSphereSphere(a, b *Geom) []Contact {
	return one(sphereContact(a.Position(), a.radius, b.Position(), b.radius))
}

func collideSphereCapsule(a, b *Geom) []Contact {
	p, r := b.pose()
	e0, e1 := capsuleEnds(p, r, b.length)
	c := a.Position()
	return one(sphereContact(c, a.radius, closestPointOnSegment(c, e0, e1), b.radius))
}

// sphereBoxContact tests a sphere against a box; the normal points from
// the box to the sphere.
func sphereBoxContact(c mgl64.Vec3, radius float64, o OBB) (Contact, bool) {
	closest := ClosestPointOnOBB(o, c)
	d := c.Sub(closest)
	dist := d.Len()
	if dist > geom.Epsilon {
		if dist >= radius {
			return Contact{}, false
		}
		return Contact{Pos: closest, Normal: d.Mul(1 / dist), Depth: radius - dist}, true
	}

	// center inside the box: leave through the nearest face
	local := c.Sub(o.Center)
	best := math.Inf(1)
	var n mgl64.Vec3
	for i := 0; i < 3; i++ {
		l := local.Dot(o.Axes[i])
		face := o.HalfSize[i] - absf(l)
		if face < best {
			best = face
			if l < 0 {
				n = o.Axes[i].Mul(-1)
			} else {
				n = o.Axes[i]
			}
		}
	}
	return Contact{Pos: c, Normal: n, Depth: radius + best}, true
}

func collideSphereBox(a, b *Geom) []Contact {
	return one(sphereBoxContact(a.Position(), a.radius, obbOf(b)))
}

func collideCapsuleCapsule(a, b *Geom) []Contact {
	pa, ra := a.pose()
	pb, rb := b.pose()
	a0, a1 := capsuleEnds(pa, ra, a.length)
	b0, b1 := capsuleEnds(pb, rb, b.length)
	ca, cb := closestSegmentSegment(a0, a1, b0, b1)
	return one(sphereContact(ca, a.radius, cb, b.radius))
}

func collideCapsuleBox(a, b *Geom) []Contact {
	p, r := a.pose()
	e0, e1 := capsuleEnds(p, r, a.length)
	o := obbOf(b)

	var out []Contact
	for _, q := range []mgl64.Vec3{segmentPointNearestBox(e0, e1, o), e0, e1} {
		c, ok := sphereBoxContact(q, a.radius, o)
		if !ok || nearDuplicate(out, c.Pos) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func collideBoxBox(a, b *Geom) []Contact {
	oa, ob := obbOf(a), obbOf(b)
	n, depth, ok := oa.penetration(ob)
	if !ok {
		return nil
	}
	const eps = 1e-6
	var out []Contact
	for _, p := range oa.Corners() {
		if ob.Contains(p, eps) && !nearDuplicate(out, p) {
			out = append(out, Contact{Pos: p, Normal: n, Depth: depth})
		}
	}
	for _, p := range ob.Corners() {
		if oa.Contains(p, eps) && !nearDuplicate(out, p) {
			out = append(out, Contact{Pos: p, Normal: n, Depth: depth})
		}
	}
	if len(out) == 0 {
		// edge against edge
		p := ClosestPointOnOBB(ob, oa.Center).Add(ClosestPointOnOBB(oa, ob.Center)).Mul(0.5)
		out = append(out, Contact{Pos: p, Normal: n, Depth: depth})
	}
	return out
}

// meshFrame maps points between world space and a mesh geom's frame.
type meshFrame struct {
	p mgl64.Vec3
	r mgl64.Mat3
}

func frameOf(g *Geom) meshFrame {
	p, r := g.pose()
	return meshFrame{p: p, r: r}
}

func (f meshFrame) toLocal(v mgl64.Vec3) mgl64.Vec3 { return f.r.Transpose().Mul3x1(v.Sub(f.p)) }
func (f meshFrame) toWorld(v mgl64.Vec3) mgl64.Vec3 { return f.p.Add(f.r.Mul3x1(v)) }
func (f meshFrame) dirToWorld(v mgl64.Vec3) mgl64.Vec3 {
	return f.r.Mul3x1(v)
}

// sphereTriangle tests a sphere against one triangle in mesh space; the
// normal points from the triangle to the sphere.
func sphereTriangle(c mgl64.Vec3, radius float64, tri *Triangle) (Contact, bool) {
	closest := closestPointOnTriangle(c, tri.V0, tri.V1, tri.V2)
	d := c.Sub(closest)
	dist := d.Len()
	if dist >= radius {
		return Contact{}, false
	}
	n := tri.Normal
	if dist > geom.Epsilon {
		n = d.Mul(1 / dist)
	}
	return Contact{Pos: closest, Normal: n, Depth: radius - dist}, true
}

func collideSphereTriMesh(a, b *Geom) []Contact {
	if b.mesh == nil {
		return nil
	}
	f := frameOf(b)
	c := f.toLocal(a.Position())
	r := mgl64.Vec3{a.radius, a.radius, a.radius}
	var out []Contact
	for _, idx := range b.mesh.query(NewAABBFromCenter(c, r)) {
		ct, ok := sphereTriangle(c, a.radius, &b.mesh.Triangles[idx])
		if !ok {
			continue
		}
		out = append(out, Contact{Pos: f.toWorld(ct.Pos), Normal: f.dirToWorld(ct.Normal), Depth: ct.Depth})
	}
	return out
}

func collideCapsuleTriMesh(a, b *Geom) []Contact {
	if b.mesh == nil {
		return nil
	}
	f := frameOf(b)
	p, r := a.pose()
	w0, w1 := capsuleEnds(p, r, a.length)
	e0, e1 := f.toLocal(w0), f.toLocal(w1)
	rr := mgl64.Vec3{a.radius, a.radius, a.radius}
	box := emptyAABB.Extend(e0.Sub(rr)).Extend(e0.Add(rr)).Extend(e1.Sub(rr)).Extend(e1.Add(rr))

	var out []Contact
	for _, idx := range b.mesh.query(box) {
		tri := &b.mesh.Triangles[idx]
		q := segmentPointNearestTriangle(e0, e1, tri)
		ct, ok := sphereTriangle(q, a.radius, tri)
		if !ok {
			continue
		}
		out = append(out, Contact{Pos: f.toWorld(ct.Pos), Normal: f.dirToWorld(ct.Normal), Depth: ct.Depth})
	}
	return out
}

func collideBoxTriMesh(a, b *Geom) []Contact {
	if b.mesh == nil {
		return nil
	}
	f := frameOf(b)
	pa, ra := a.pose()
	// the box expressed in mesh space
	o := NewOBB(f.toLocal(pa), a.sides, f.r.Transpose().Mul3(ra))
	ext := mgl64.Vec3{}
	for k := 0; k < 3; k++ {
		ext = ext.Add(mgl64.Vec3{absf(o.Axes[k][0]), absf(o.Axes[k][1]), absf(o.Axes[k][2])}.Mul(o.HalfSize[k]))
	}

	var out []Contact
	for _, idx := range b.mesh.query(NewAABBFromCenter(o.Center, ext)) {
		tri := &b.mesh.Triangles[idx]
		n, depth, ok := boxTrianglePenetration(o, tri)
		if !ok {
			continue
		}
		pos := boxSupport(o, n.Mul(-1)).Add(n.Mul(depth / 2))
		out = append(out, Contact{Pos: f.toWorld(pos), Normal: f.dirToWorld(n), Depth: depth})
	}
	return out
}

// boxTrianglePenetration runs SAT between a box and a triangle. The
// returned axis points from the triangle to the box.
func boxTrianglePenetration(o OBB, tri *Triangle) (mgl64.Vec3, float64, bool) {
	verts := [3]mgl64.Vec3{tri.V0, tri.V1, tri.V2}
	edges := [3]mgl64.Vec3{tri.V1.Sub(tri.V0), tri.V2.Sub(tri.V1), tri.V0.Sub(tri.V2)}

	axes := make([]mgl64.Vec3, 0, 13)
	axes = append(axes, tri.Normal, o.Axes[0], o.Axes[1], o.Axes[2])
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			axes = append(axes, o.Axes[i].Cross(edges[j]))
		}
	}

	best := math.Inf(1)
	var bestAxis mgl64.Vec3
	for _, axis := range axes {
		n, ok := geom.SafeNormalize(axis)
		if !ok {
			continue
		}
		c := o.Center.Dot(n)
		r := o.project(n)
		tmin, tmax := math.Inf(1), math.Inf(-1)
		for _, v := range verts {
			d := v.Dot(n)
			tmin = math.Min(tmin, d)
			tmax = math.Max(tmax, d)
		}
		// overlap when pushing the box towards +n or -n
		up := tmax - (c - r)
		down := (c + r) - tmin
		if up <= 0 || down <= 0 {
			return mgl64.Vec3{}, 0, false
		}
		if up < best {
			best, bestAxis = up, n
		}
		if down < best {
			best, bestAxis = down, n.Mul(-1)
		}
	}
	return bestAxis, best, true
}

// boxSupport returns the box vertex furthest along dir.
func boxSupport(o OBB, dir mgl64.Vec3) mgl64.Vec3 {
	p := o.Center
	for k := 0; k < 3; k++ {
		s := 1.0
		if o.Axes[k].Dot(dir) < 0 {
			s = -1
		}
		p = p.Add(o.Axes[k].Mul(s * o.HalfSize[k]))
	}
	return p
}

func nearDuplicate(cs []Contact, p mgl64.Vec3) bool {
	for _, c := range cs {
		if c.Pos.Sub(p).LenSqr() < 1e-12 {
			return true
		}
	}
	return false
}

func closestPointOnSegment(p, a, b mgl64.Vec3) mgl64.Vec3 {
	ab := b.Sub(a)
	l2 := ab.LenSqr()
	if l2 < geom.Epsilon {
		return a
	}
	t := clampf(p.Sub(a).Dot(ab)/l2, 0, 1)
	return a.Add(ab.Mul(t))
}

// closestSegmentSegment returns the closest points between segments
// p1-q1 and p2-q2.
func closestSegmentSegment(p1, q1, p2, q2 mgl64.Vec3) (mgl64.Vec3, mgl64.Vec3) {
	d1 := q1.Sub(p1)
	d2 := q2.Sub(p2)
	r := p1.Sub(p2)
	a := d1.Dot(d1)
	e := d2.Dot(d2)
	f := d2.Dot(r)

	var s, t float64
	switch {
	case a <= geom.Epsilon && e <= geom.Epsilon:
		return p1, p2
	case a <= geom.Epsilon:
		t = clampf(f/e, 0, 1)
	default:
		c := d1.Dot(r)
		if e <= geom.Epsilon {
			s = clampf(-c/a, 0, 1)
		} else {
			b := d1.Dot(d2)
			denom := a*e - b*b
			if denom > geom.Epsilon {
				s = clampf((b*f-c*e)/denom, 0, 1)
			}
			t = (b*s + f) / e
			if t < 0 {
				t = 0
				s = clampf(-c/a, 0, 1)
			} else if t > 1 {
				t = 1
				s = clampf((b-c)/a, 0, 1)
			}
		}
	}
	return p1.Add(d1.Mul(s)), p2.Add(d2.Mul(t))
}

// segmentPointNearestBox finds the point of segment a-b closest to the
// box. Distance to a convex set is convex along a line, so a ternary
// search converges.
func segmentPointNearestBox(a, b mgl64.Vec3, o OBB) mgl64.Vec3 {
	dist := func(t float64) float64 {
		p := a.Add(b.Sub(a).Mul(t))
		return p.Sub(ClosestPointOnOBB(o, p)).LenSqr()
	}
	lo, hi := 0.0, 1.0
	for i := 0; i < 40; i++ {
		m1 := lo + (hi-lo)/3
		m2 := hi - (hi-lo)/3
		if dist(m1) < dist(m2) {
			hi = m2
		} else {
			lo = m1
		}
	}
	return a.Add(b.Sub(a).Mul((lo + hi) / 2))
}

// segmentPointNearestTriangle finds the point of segment a-b closest to
// the triangle.
func segmentPointNearestTriangle(a, b mgl64.Vec3, tri *Triangle) mgl64.Vec3 {
	// crossing the face
	da := a.Sub(tri.V0).Dot(tri.Normal)
	db := b.Sub(tri.V0).Dot(tri.Normal)
	if (da <= 0 && db >= 0) || (da >= 0 && db <= 0) {
		if denom := da - db; absf(denom) > geom.Epsilon {
			p := a.Add(b.Sub(a).Mul(da / denom))
			if closestPointOnTriangle(p, tri.V0, tri.V1, tri.V2).Sub(p).LenSqr() < 1e-12 {
				return p
			}
		}
	}

	best := a
	bestD := math.Inf(1)
	consider := func(p, q mgl64.Vec3) {
		if d := p.Sub(q).LenSqr(); d < bestD {
			best, bestD = p, d
		}
	}
	consider(a, closestPointOnTriangle(a, tri.V0, tri.V1, tri.V2))
	consider(b, closestPointOnTriangle(b, tri.V0, tri.V1, tri.V2))
	verts := [3]mgl64.Vec3{tri.V0, tri.V1, tri.V2}
	for i := 0; i < 3; i++ {
		p, q := closestSegmentSegment(a, b, verts[i], verts[(i+1)%3])
		consider(p, q)
	}
	return best
}
