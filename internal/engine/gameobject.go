package engine

import (
	"fmt"
	"sync/atomic"

	"orbitribbon/internal/collision"
	"orbitribbon/internal/geom"
	"orbitribbon/internal/physics"

	"github.com/go-gl/mathgl/mgl64"
)

// DefaultDamp is the damping coefficient on every axis of a new object.
const DefaultDamp = 0.15

var nextUID atomic.Uint64

// GameObject is a scene object. Its position and rotation are what
// renderers and game logic read; while the world steps, the physics body
// (or static geometry) is the authority and the pose is read back once
// per tick.
type GameObject struct {
	UID    uint64
	Name   string
	Tags   []string
	Active bool
	Scene  *Scene

	// VelDamp and AngDamp are per body axis decay rates for linear and
	// angular velocity.
	VelDamp mgl64.Vec3
	AngDamp mgl64.Vec3

	pos  mgl64.Vec3
	rot  geom.RotationMatrix
	body *physics.Body
	node physics.Node

	world      WorldAccess
	components []Component
	started    bool
	disposed   bool
}

func NewGameObject(name string) *GameObject {
	return &GameObject{
		UID:        nextUID.Add(1),
		Name:       name,
		Active:     true,
		VelDamp:    mgl64.Vec3{DefaultDamp, DefaultDamp, DefaultDamp},
		AngDamp:    mgl64.Vec3{DefaultDamp, DefaultDamp, DefaultDamp},
		rot:        geom.Identity,
		components: make([]Component, 0),
	}
}

func (g *GameObject) String() string {
	return fmt.Sprintf("GameObject(%q)", g.Name)
}

// Attach gives the object its body and collision geometry, either of
// which may be nil. Every leaf of node is bound to body, tagged leaves
// get the object as their owner, and the current pose is pushed down.
func (g *GameObject) Attach(body *physics.Body, node physics.Node) {
	if g.body != nil || g.node != nil {
		panic(fmt.Sprintf("engine: %s already has a body or geometry", g))
	}
	g.body = body
	g.node = node
	if body != nil {
		body.Data = g
	}
	g.eachLeaf(func(l *physics.Geom) {
		if body != nil {
			l.SetBody(body)
		}
		if tag := collision.TagOf(l); tag != nil {
			tag.Owner = g
		}
	})
	g.pushPosition()
	g.pushRotation()
}

func (g *GameObject) Body() *physics.Body { return g.body }

// Geometry returns the object's collision node, a leaf geom or a space.
func (g *GameObject) Geometry() physics.Node { return g.node }

// Geoms returns every leaf geom of the object.
func (g *GameObject) Geoms() []*physics.Geom {
	var out []*physics.Geom
	g.eachLeaf(func(l *physics.Geom) { out = append(out, l) })
	return out
}

func (g *GameObject) eachLeaf(fn func(*physics.Geom)) {
	switch n := g.node.(type) {
	case *physics.Geom:
		fn(n)
	case *physics.Space:
		n.Leaves(fn)
	}
}

func (g *GameObject) Position() mgl64.Vec3 { return g.pos }

func (g *GameObject) Rotation() geom.RotationMatrix { return g.rot }

// SetPosition moves the object and everything physical it owns.
func (g *GameObject) SetPosition(p mgl64.Vec3) {
	g.pos = p
	g.pushPosition()
}

// SetRotation sets the rotation from nine column-major values.
func (g *GameObject) SetRotation(values []float64) error {
	r, err := geom.NewRotation(values)
	if err != nil {
		return fmt.Errorf("set rotation of %s: %w", g, err)
	}
	g.SetRotationMatrix(r)
	return nil
}

func (g *GameObject) SetRotationMatrix(r geom.RotationMatrix) {
	g.rot = r
	g.pushRotation()
}

func (g *GameObject) pushPosition() {
	if g.body != nil {
		g.body.SetPosition(g.pos)
	}
	g.eachLeaf(func(l *physics.Geom) { l.SetPosition(g.pos) })
}

func (g *GameObject) pushRotation() {
	rm := g.rot.ToRowMajor()
	if g.body != nil {
		g.body.SetRotation(rm)
	}
	g.eachLeaf(func(l *physics.Geom) { l.SetRotation(rm) })
}

// SyncFromEngine reads the pose back from the body, or from a leaf geom.
// Objects whose only geometry is a space keep their pose.
func (g *GameObject) SyncFromEngine() {
	if g.body != nil {
		g.pos = g.body.Position()
		g.rot = geom.FromRowMajor(g.body.Rotation())
		return
	}
	if l, ok := g.node.(*physics.Geom); ok {
		g.pos = l.Position()
		g.rot = geom.FromRowMajor(l.Rotation())
	}
}

// Velocity returns the linear velocity, zero without a body.
func (g *GameObject) Velocity() mgl64.Vec3 {
	if g.body == nil {
		return mgl64.Vec3{}
	}
	return g.body.LinearVel()
}

func (g *GameObject) SetVelocity(v mgl64.Vec3) {
	if g.body != nil {
		g.body.SetLinearVel(v)
	}
}

func (g *GameObject) AngularVelocity() mgl64.Vec3 {
	if g.body == nil {
		return mgl64.Vec3{}
	}
	return g.body.AngularVel()
}

func (g *GameObject) SetAngularVelocity(v mgl64.Vec3) {
	if g.body != nil {
		g.body.SetAngularVel(v)
	}
}

// Freeze stops all motion.
func (g *GameObject) Freeze() {
	g.SetVelocity(mgl64.Vec3{})
	g.SetAngularVelocity(mgl64.Vec3{})
}

// Damp applies air resistance for one tick: body-frame velocity times
// -VelDamp/tickRate as a relative force, and the same for angular
// velocity as a relative torque.
func (g *GameObject) Damp(tickRate float64) {
	b := g.body
	if b == nil || tickRate <= 0 {
		return
	}
	lin := b.VectorFromWorld(b.LinearVel())
	b.AddRelForce(geom.MulElem(lin, g.VelDamp).Mul(-1 / tickRate))
	ang := b.VectorFromWorld(b.AngularVel())
	b.AddRelTorque(geom.MulElem(ang, g.AngDamp).Mul(-1 / tickRate))
}

func (g *GameObject) AddComponent(c Component) {
	c.SetGameObject(g)
	g.components = append(g.components, c)
}

// GetComponent returns the first component of type T.
func GetComponent[T Component](g *GameObject) T {
	var zero T
	for _, c := range g.components {
		if typed, ok := c.(T); ok {
			return typed
		}
	}
	return zero
}

func (g *GameObject) Components() []Component {
	return g.components
}

func (g *GameObject) HasTag(tag string) bool {
	for _, t := range g.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

func (g *GameObject) Start() {
	if g.started {
		return
	}
	for _, c := range g.components {
		c.Start()
	}
	g.started = true
}

// Step runs the object's game logic for one tick.
func (g *GameObject) Step(ctx StepContext) {
	if !g.Active {
		return
	}
	for _, c := range g.components {
		c.Step(ctx)
	}
}

// Draw places the object's transform and lets components draw inside it.
func (g *GameObject) Draw(r Renderer) {
	if !g.Active {
		return
	}
	r.PushTransform(g.pos, g.rot)
	for _, c := range g.components {
		if d, ok := c.(InDrawer); ok {
			d.InDraw(r)
		}
	}
	r.PopTransform()
}

// World returns the world the object was added to, or nil.
func (g *GameObject) World() WorldAccess { return g.world }

func (g *GameObject) SetWorld(w WorldAccess) { g.world = w }

// Destroy removes the object from its world, which disposes it. An
// object outside any world is disposed directly.
func (g *GameObject) Destroy() {
	if g.world != nil {
		g.world.Remove(g)
		return
	}
	g.Dispose()
}

// Dispose frees the body slot and takes the geometry out of its space.
// It is idempotent.
func (g *GameObject) Dispose() {
	if g.disposed {
		return
	}
	g.disposed = true
	g.Active = false
	if g.node != nil {
		if sp := g.node.Space(); sp != nil {
			sp.Remove(g.node)
		}
	}
	if g.body != nil {
		if w := g.body.World(); w != nil {
			w.DestroyBody(g.body)
		}
		g.body.Data = nil
		g.body = nil
	}
}

func (g *GameObject) Disposed() bool { return g.disposed }
