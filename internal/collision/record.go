package collision

import (
	"orbitribbon/internal/geom"
	"orbitribbon/internal/physics"

	"github.com/go-gl/mathgl/mgl64"
)

// Collision is one entry of the record: the geom that was hit and every
// contact point of the hit.
type Collision struct {
	Geom   *physics.Geom
	Points []physics.Contact
}

// AvgPos returns the mean of the contact positions.
func (c Collision) AvgPos() mgl64.Vec3 {
	ps := make([]mgl64.Vec3, len(c.Points))
	for i, p := range c.Points {
		ps[i] = p.Pos
	}
	return geom.Average(ps)
}

// Record holds this tick's collisions keyed by geom. Every collision is
// stored for both geoms of the pair.
type Record map[*physics.Geom][]Collision

// Reset forgets every collision.
func (r Record) Reset() {
	clear(r)
}

// Of returns the collisions of g this tick.
func (r Record) Of(g *physics.Geom) []Collision {
	return r[g]
}

// Touching reports whether a and b collided this tick.
func (r Record) Touching(a, b *physics.Geom) bool {
	for _, c := range r[a] {
		if c.Geom == b {
			return true
		}
	}
	return false
}

func (r Record) add(a, b *physics.Geom, points []physics.Contact) {
	r[a] = append(r[a], Collision{Geom: b, Points: points})
	r[b] = append(r[b], Collision{Geom: a, Points: points})
}
