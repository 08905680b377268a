package physics

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// Class identifies the shape of a leaf geom.
type Class int

const (
	SphereClass Class = iota
	CapsuleClass
	BoxClass
	TriMeshClass
)

func (c Class) String() string {
	switch c {
	case SphereClass:
		return "sphere"
	case CapsuleClass:
		return "capsule"
	case BoxClass:
		return "box"
	case TriMeshClass:
		return "trimesh"
	}
	return fmt.Sprintf("Class(%d)", int(c))
}

// Node is anything a space can hold: a leaf Geom or another Space.
type Node interface {
	AABB() AABB
	IsSpace() bool
	// Space returns the space the node was added to, or nil.
	Space() *Space

	setSpace(s *Space)
}

// Geom is a collision shape. A geom attached to a body takes its pose
// from the body; one without a body keeps its own pose and is static.
type Geom struct {
	class  Class
	radius float64
	length float64 // capsule cylinder length along local Z
	sides  mgl64.Vec3
	mesh   *TriMeshData

	body   *Body
	pos    mgl64.Vec3
	rot    mgl64.Mat3
	offPos mgl64.Vec3
	offRot mgl64.Mat3

	space *Space
	data  any
}

func newGeom(s *Space, class Class) *Geom {
	g := &Geom{class: class, rot: mgl64.Ident3(), offRot: mgl64.Ident3()}
	if s != nil {
		s.Add(g)
	}
	return g
}

// NewSphere creates a sphere and adds it to s if s is not nil.
func NewSphere(s *Space, radius float64) *Geom {
	g := newGeom(s, SphereClass)
	g.radius = radius
	return g
}

// NewCapsule creates a capsule along local Z. length excludes the caps.
func NewCapsule(s *Space, radius, length float64) *Geom {
	g := newGeom(s, CapsuleClass)
	g.radius = radius
	g.length = length
	return g
}

// NewBox creates a box with the given full side lengths.
func NewBox(s *Space, sides mgl64.Vec3) *Geom {
	g := newGeom(s, BoxClass)
	g.sides = sides
	return g
}

// NewTriMesh creates a triangle mesh geom over shared mesh data.
func NewTriMesh(s *Space, data *TriMeshData) *Geom {
	g := newGeom(s, TriMeshClass)
	g.mesh = data
	return g
}

func (g *Geom) Class() Class          { return g.class }
func (g *Geom) Radius() float64       { return g.radius }
func (g *Geom) Length() float64       { return g.length }
func (g *Geom) Sides() mgl64.Vec3     { return g.sides }
func (g *Geom) Mesh() *TriMeshData    { return g.mesh }
func (g *Geom) IsSpace() bool         { return false }
func (g *Geom) Space() *Space         { return g.space }
func (g *Geom) setSpace(s *Space)     { g.space = s }
func (g *Geom) Data() any             { return g.data }
func (g *Geom) SetData(data any)      { g.data = data }
func (g *Geom) Body() *Body           { return g.body }
func (g *Geom) Offset() mgl64.Vec3    { return g.offPos }
func (g *Geom) OffsetRot() mgl64.Mat3 { return g.offRot }

// SetBody attaches the geom to b. Detaching (b == nil) leaves the geom
// where the body was.
func (g *Geom) SetBody(b *Body) {
	if b == nil && g.body != nil {
		g.pos = g.body.pos
		g.rot = g.body.rot
	}
	g.body = b
}

// SetOffset places the geom relative to its body or its own placement.
// Composite objects use this to arrange several leaves around one pose.
func (g *Geom) SetOffset(pos mgl64.Vec3, rot mgl64.Mat3) {
	g.offPos = pos
	g.offRot = rot
}

func (g *Geom) base() (mgl64.Vec3, mgl64.Mat3) {
	if g.body != nil {
		return g.body.pos, g.body.rot
	}
	return g.pos, g.rot
}

// pose returns the world-space position and rotation of the shape.
func (g *Geom) pose() (mgl64.Vec3, mgl64.Mat3) {
	p, r := g.base()
	return p.Add(r.Mul3x1(g.offPos)), r.Mul3(g.offRot)
}

// Position returns the world position of the shape.
func (g *Geom) Position() mgl64.Vec3 {
	p, _ := g.pose()
	return p
}

// Rotation returns the world rotation in row-major layout.
func (g *Geom) Rotation() [9]float64 {
	_, r := g.pose()
	return toRowMajor(r)
}

// SetPosition moves the geom, or its body if it has one.
func (g *Geom) SetPosition(p mgl64.Vec3) {
	if g.body != nil {
		g.body.SetPosition(p)
		return
	}
	g.pos = p
}

// SetRotation sets a row-major rotation on the geom, or on its body.
func (g *Geom) SetRotation(rm [9]float64) {
	if g.body != nil {
		g.body.SetRotation(rm)
		return
	}
	g.rot = fromRowMajor(rm)
}

// AABB returns the world-space bounds of the shape.
func (g *Geom) AABB() AABB {
	p, r := g.pose()
	switch g.class {
	case SphereClass:
		return NewAABBFromCenter(p, mgl64.Vec3{g.radius, g.radius, g.radius})
	case CapsuleClass:
		a, b := capsuleEnds(p, r, g.length)
		rr := mgl64.Vec3{g.radius, g.radius, g.radius}
		return emptyAABB.Extend(a.Sub(rr)).Extend(a.Add(rr)).Extend(b.Sub(rr)).Extend(b.Add(rr))
	case BoxClass:
		half := g.sides.Mul(0.5)
		var ext mgl64.Vec3
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				ext[i] += absf(r.At(i, j)) * half[j]
			}
		}
		return NewAABBFromCenter(p, ext)
	case TriMeshClass:
		if g.mesh == nil || g.mesh.root == nil {
			return emptyAABB
		}
		local := g.mesh.root.Bounds
		out := emptyAABB
		for i := 0; i < 8; i++ {
			c := mgl64.Vec3{local.Min[0], local.Min[1], local.Min[2]}
			if i&1 != 0 {
				c[0] = local.Max[0]
			}
			if i&2 != 0 {
				c[1] = local.Max[1]
			}
			if i&4 != 0 {
				c[2] = local.Max[2]
			}
			out = out.Extend(p.Add(r.Mul3x1(c)))
		}
		return out
	}
	return emptyAABB
}

// capsuleEnds returns the centers of the two end caps.
func capsuleEnds(p mgl64.Vec3, r mgl64.Mat3, length float64) (mgl64.Vec3, mgl64.Vec3) {
	axis := r.Col(2).Mul(length / 2)
	return p.Sub(axis), p.Add(axis)
}
