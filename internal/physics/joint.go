package physics

import "github.com/go-gl/mathgl/mgl64"

// Surface holds the contact parameters a joint is solved with.
type Surface struct {
	Mu     float64 // friction coefficient
	Bounce float64 // restitution, 0..1
	// BounceVel is the minimum approach speed for Bounce to apply.
	BounceVel float64
}

// ContactJoint keeps two bodies, or a body and the world, from
// interpenetrating at one contact point for the duration of a step.
type ContactJoint struct {
	Contact Contact
	Surface Surface

	b1, b2   *Body
	attached bool
	group    *JointGroup
}

// Attach connects the joint. Either body may be nil, meaning that end of
// the joint is anchored to the static world.
func (j *ContactJoint) Attach(b1, b2 *Body) {
	j.b1, j.b2 = b1, b2
	j.attached = true
}

// Bodies returns the attached bodies; nil stands for the world.
func (j *ContactJoint) Bodies() (*Body, *Body) { return j.b1, j.b2 }

// Attached reports whether Attach was called.
func (j *ContactJoint) Attached() bool { return j.attached }

// JointGroup owns short-lived contact joints so they can be destroyed
// together.
type JointGroup struct {
	world  *World
	joints []*ContactJoint
}

// NewContact creates an unattached contact joint in the group.
func (g *JointGroup) NewContact(c Contact, s Surface) *ContactJoint {
	j := &ContactJoint{Contact: c, Surface: s, group: g}
	g.joints = append(g.joints, j)
	return j
}

// Empty destroys every joint in the group.
func (g *JointGroup) Empty() {
	for i := range g.joints {
		g.joints[i] = nil
	}
	g.joints = g.joints[:0]
}

// Len returns the number of joints in the group.
func (g *JointGroup) Len() int { return len(g.joints) }

// Joints returns the group's joints. The slice is only valid until the
// next Empty.
func (g *JointGroup) Joints() []*ContactJoint { return g.joints }

// Between returns the joints attached to exactly the given pair of
// bodies, in either order.
func (g *JointGroup) Between(a, b *Body) []*ContactJoint {
	var out []*ContactJoint
	for _, j := range g.joints {
		if (j.b1 == a && j.b2 == b) || (j.b1 == b && j.b2 == a) {
			out = append(out, j)
		}
	}
	return out
}

func (g *JointGroup) detachBody(b *Body) {
	for _, j := range g.joints {
		if j.b1 == b {
			j.b1 = nil
		}
		if j.b2 == b {
			j.b2 = nil
		}
	}
}

// Contact is one point of contact between two geoms. Moving G1 along
// Normal by Depth separates the pair at this point.
type Contact struct {
	Pos    mgl64.Vec3
	Normal mgl64.Vec3
	Depth  float64
	G1, G2 *Geom
}

func (c Contact) flipped() Contact {
	return Contact{Pos: c.Pos, Normal: c.Normal.Mul(-1), Depth: c.Depth, G1: c.G2, G2: c.G1}
}
