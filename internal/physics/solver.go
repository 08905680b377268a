package physics

import (
	"math"

	"orbitribbon/internal/geom"

	"github.com/go-gl/mathgl/mgl64"
)

// row is one velocity constraint along dir between two bodies. Impulses
// push b1 along +dir and b2 along -dir.
type row struct {
	b1, b2 *Body
	r1, r2 mgl64.Vec3 // contact point relative to each center of mass
	dir    mgl64.Vec3

	k      float64 // 1 / effective mass, plus softness
	target float64 // desired relative velocity along dir
	lambda float64 // accumulated impulse

	lo, hi float64
	// normal is the index of the row whose impulse bounds this friction
	// row, or -1 for normal rows.
	normal int
	mu     float64
}

type solver struct {
	erp, cfm float64
	dt       float64
	rows     []row
	invI     map[*Body]mgl64.Mat3
}

func newSolver(w *World, dt float64) *solver {
	return &solver{erp: w.ERP, cfm: w.CFM, dt: dt, invI: make(map[*Body]mgl64.Mat3)}
}

func (s *solver) inertia(b *Body) mgl64.Mat3 {
	if b == nil {
		return mgl64.Mat3{}
	}
	if m, ok := s.invI[b]; ok {
		return m
	}
	m := b.invInertiaWorld()
	s.invI[b] = m
	return m
}

func (s *solver) addContact(j *ContactJoint) {
	if !j.attached || (j.b1 == nil && j.b2 == nil) {
		return
	}
	c := j.Contact
	if !geom.IsFinite(c.Pos) || !geom.IsFinite(c.Normal) || math.IsNaN(c.Depth) {
		return
	}

	n := s.newRow(j.b1, j.b2, c.Pos, c.Normal)
	vrel := n.relVel()
	n.target = s.erp * c.Depth / s.dt
	if j.Surface.Bounce > 0 && -vrel > j.Surface.BounceVel {
		if b := -j.Surface.Bounce * vrel; b > n.target {
			n.target = b
		}
	}
	n.lo, n.hi = 0, math.Inf(1)
	n.normal = -1
	idx := len(s.rows)
	s.rows = append(s.rows, n)

	if j.Surface.Mu <= 0 {
		return
	}
	t1, t2 := geom.Perpendicular(c.Normal)
	for _, t := range []mgl64.Vec3{t1, t2} {
		f := s.newRow(j.b1, j.b2, c.Pos, t)
		f.normal = idx
		f.mu = j.Surface.Mu
		s.rows = append(s.rows, f)
	}
}

func (s *solver) newRow(b1, b2 *Body, p, dir mgl64.Vec3) row {
	r := row{b1: b1, b2: b2, dir: dir}
	k := 0.0
	if b1 != nil {
		r.r1 = p.Sub(b1.pos)
		rn := r.r1.Cross(dir)
		k += b1.invMass + s.inertia(b1).Mul3x1(rn).Dot(rn)
	}
	if b2 != nil {
		r.r2 = p.Sub(b2.pos)
		rn := r.r2.Cross(dir)
		k += b2.invMass + s.inertia(b2).Mul3x1(rn).Dot(rn)
	}
	r.k = k + s.cfm/s.dt
	return r
}

// relVel is the velocity of b1 relative to b2 along the row direction.
func (r *row) relVel() float64 {
	var v mgl64.Vec3
	if r.b1 != nil {
		v = v.Add(r.b1.linVel.Add(r.b1.angVel.Cross(r.r1)))
	}
	if r.b2 != nil {
		v = v.Sub(r.b2.linVel.Add(r.b2.angVel.Cross(r.r2)))
	}
	return v.Dot(r.dir)
}

func (s *solver) apply(r *row, impulse float64) {
	p := r.dir.Mul(impulse)
	if r.b1 != nil {
		r.b1.linVel = r.b1.linVel.Add(p.Mul(r.b1.invMass))
		r.b1.angVel = r.b1.angVel.Add(s.inertia(r.b1).Mul3x1(r.r1.Cross(p)))
	}
	if r.b2 != nil {
		r.b2.linVel = r.b2.linVel.Sub(p.Mul(r.b2.invMass))
		r.b2.angVel = r.b2.angVel.Sub(s.inertia(r.b2).Mul3x1(r.r2.Cross(p)))
	}
}

func (s *solver) solve(iterations int) {
	if len(s.rows) == 0 {
		return
	}
	for it := 0; it < iterations; it++ {
		for i := range s.rows {
			r := &s.rows[i]
			if r.k <= 0 {
				continue
			}
			if r.normal >= 0 {
				bound := r.mu * s.rows[r.normal].lambda
				r.lo, r.hi = -bound, bound
			}
			delta := (r.target - r.relVel()) / r.k
			old := r.lambda
			r.lambda = math.Max(r.lo, math.Min(r.hi, old+delta))
			s.apply(r, r.lambda-old)
		}
	}
}
