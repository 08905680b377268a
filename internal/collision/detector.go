package collision

import (
	"orbitribbon/internal/physics"
)

// Detector is the broad-phase callback. It hands tagged leaf pairs to
// the resolver and descends into spaces.
type Detector struct {
	Resolver *Resolver
	Joints   *physics.JointGroup
}

func NewDetector(r *Resolver, joints *physics.JointGroup) *Detector {
	return &Detector{Resolver: r, Joints: joints}
}

// NearCallback is passed to Space.Collide and physics.Collide2.
func (d *Detector) NearCallback(a, b physics.Node) {
	ga, leafA := a.(*physics.Geom)
	gb, leafB := b.(*physics.Geom)
	tagA := leafA && TagOf(ga) != nil
	tagB := leafB && TagOf(gb) != nil

	switch {
	case tagA && tagB:
		d.Resolver.HandleCollision(ga, gb, d.Joints)
	case (a.IsSpace() || tagA) && (b.IsSpace() || tagB):
		physics.Collide2(a, b, d.NearCallback)
	}
}
