package game

import (
	"math"

	"orbitribbon/internal/collision"
	"orbitribbon/internal/engine"
	"orbitribbon/internal/geom"
	"orbitribbon/internal/physics"
	"orbitribbon/internal/sim"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	RingTag      = "ring"
	RingTube     = 0.25
	RingSegments = 12
	RingMass     = 2000.0
)

// TargetRing is a ring the avatar is meant to fly through. The ring is a
// loop of capsules around the object's local Z axis, plus a non-pushing
// gate sphere filling the hole. Touching the gate is not enough: an avatar
// passes when its centre changes side of the ring plane, inside the ring,
// between two ticks in which it touches the gate.
type TargetRing struct {
	engine.BaseComponent
	Radius float64
	Gate   *physics.Geom

	// Passed fires once, with the first avatar to cross the ring.
	Passed   engine.EventWithArg[*engine.GameObject]
	PassedBy engine.GameObjectRef

	passed bool
	// ring-local Z of avatars touching the gate on the previous tick
	sides map[*engine.GameObject]float64
}

// NewTargetRing creates a ring of the given radius, measured to the
// centre of the tube.
func NewTargetRing(w *sim.World, pos mgl64.Vec3, rot geom.RotationMatrix, radius float64) *engine.GameObject {
	space := physics.NewSpace(w.Dynamic, physics.SimpleSpace)
	chord := 2 * radius * math.Sin(math.Pi/RingSegments)
	for k := 0; k < RingSegments; k++ {
		theta := (float64(k) + 0.5) * 2 * math.Pi / RingSegments
		s, c := math.Sincos(theta)
		radial := mgl64.Vec3{c, s, 0}
		tangent := mgl64.Vec3{-s, c, 0}

		seg := physics.NewCapsule(space, RingTube, chord)
		seg.SetOffset(radial.Mul(radius), mgl64.Mat3FromCols(radial, mgl64.Vec3{0, 0, -1}, tangent))
		collision.Attach(seg, collision.DefaultProps())
	}
	gate := physics.NewSphere(space, math.Max(radius-2*RingTube, RingTube))
	collision.Attach(gate, collision.Props{Push: false, Priority: 1})

	obj := engine.NewGameObject("TargetRing")
	obj.Tags = []string{RingTag}
	obj.SetPosition(pos)
	obj.SetRotationMatrix(rot)
	obj.Attach(w.NewBody(physics.SphereMass(RingMass, 1)), space)
	obj.AddComponent(&TargetRing{Radius: radius, Gate: gate})
	return obj
}

// IsPassed reports whether an avatar has been through the ring.
func (r *TargetRing) IsPassed() bool { return r.passed }

// local returns p in the ring's frame.
func (r *TargetRing) local(p mgl64.Vec3) mgl64.Vec3 {
	g := r.GetGameObject()
	d := p.Sub(g.Position())
	rot := g.Rotation()
	return mgl64.Vec3{d.Dot(rot.Axis(0)), d.Dot(rot.Axis(1)), d.Dot(rot.Axis(2))}
}

func (r *TargetRing) Step(ctx engine.StepContext) {
	if r.passed || r.Gate == nil {
		return
	}
	sides := make(map[*engine.GameObject]float64)
	for _, c := range ctx.CollisionsOf(r.Gate) {
		other, _ := collision.OwnerOf(c.Geom).(*engine.GameObject)
		if other == nil || !other.HasTag(AvatarTag) {
			continue
		}
		if _, seen := sides[other]; seen {
			continue
		}
		p := r.local(other.Position())
		sides[other] = p.Z()
		prev, touching := r.sides[other]
		if !touching || (prev < 0) == (p.Z() < 0) {
			continue
		}
		if math.Hypot(p.X(), p.Y()) >= r.Radius {
			continue
		}
		r.passed = true
		r.sides = nil
		r.PassedBy.Set(other)
		r.Passed.Invoke(other)
		return
	}
	r.sides = sides
}
