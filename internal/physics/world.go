package physics

import (
	"log/slog"

	"github.com/go-gl/mathgl/mgl64"
)

// Solver defaults.
const (
	DefaultIterations = 10
	DefaultERP        = 0.2
	DefaultCFM        = 1e-5
)

type bodySlot struct {
	body *Body
	gen  uint32
}

// World owns every rigid body in a slot table and advances them with a
// fixed-iteration projected Gauss-Seidel solver.
type World struct {
	Gravity    mgl64.Vec3
	Iterations int
	ERP        float64
	CFM        float64

	slots  []bodySlot
	free   []uint32
	live   int
	groups []*JointGroup

	time  float64
	steps uint64
}

func NewWorld() *World {
	return &World{
		Iterations: DefaultIterations,
		ERP:        DefaultERP,
		CFM:        DefaultCFM,
	}
}

// CreateBody allocates a body in the first free slot.
func (w *World) CreateBody() *Body {
	var idx uint32
	if n := len(w.free); n > 0 {
		idx = w.free[n-1]
		w.free = w.free[:n-1]
	} else {
		idx = uint32(len(w.slots))
		w.slots = append(w.slots, bodySlot{})
	}
	slot := &w.slots[idx]
	b := newBody(w, BodyID{Index: idx, Gen: slot.gen})
	slot.body = b
	w.live++
	return b
}

// DestroyBody frees the body's slot and detaches it from every joint.
// Destroying a body twice, or one owned by another world, is a no-op.
func (w *World) DestroyBody(b *Body) {
	if b == nil || b.world != w {
		return
	}
	slot := &w.slots[b.id.Index]
	if slot.body != b {
		return
	}
	for _, g := range w.groups {
		g.detachBody(b)
	}
	slot.body = nil
	slot.gen++
	w.free = append(w.free, b.id.Index)
	w.live--
	b.world = nil
}

// Body resolves an ID. Stale IDs report false.
func (w *World) Body(id BodyID) (*Body, bool) {
	if int(id.Index) >= len(w.slots) {
		return nil, false
	}
	slot := w.slots[id.Index]
	if slot.body == nil || slot.gen != id.Gen {
		return nil, false
	}
	return slot.body, true
}

// BodyCount returns the number of live bodies.
func (w *World) BodyCount() int { return w.live }

// SlotCount returns the size of the slot table, live or free.
func (w *World) SlotCount() int { return len(w.slots) }

// ForEachBody calls fn for every live body in slot order.
func (w *World) ForEachBody(fn func(*Body)) {
	for i := range w.slots {
		if b := w.slots[i].body; b != nil {
			fn(b)
		}
	}
}

// NewJointGroup creates a joint group whose joints this world solves.
func (w *World) NewJointGroup() *JointGroup {
	g := &JointGroup{world: w}
	w.groups = append(w.groups, g)
	return g
}

// Time returns the simulated time in seconds.
func (w *World) Time() float64 { return w.time }

// Steps returns the number of completed steps.
func (w *World) Steps() uint64 { return w.steps }

// QuickStep advances the world by dt: forces become velocities, contact
// joints are solved, then poses are integrated and accumulators cleared.
func (w *World) QuickStep(dt float64) {
	if dt <= 0 {
		slog.Warn("Physics: ignoring non-positive timestep", "dt", dt)
		return
	}

	w.ForEachBody(func(b *Body) {
		f := b.force.Add(w.Gravity.Mul(b.mass.Total))
		b.linVel = b.linVel.Add(f.Mul(b.invMass * dt))
		b.angVel = b.angVel.Add(b.invInertiaWorld().Mul3x1(b.torque).Mul(dt))
	})

	s := newSolver(w, dt)
	for _, g := range w.groups {
		for _, j := range g.joints {
			s.addContact(j)
		}
	}
	s.solve(w.Iterations)

	w.ForEachBody(func(b *Body) {
		b.integrate(dt)
		b.clearAccumulators()
	})

	w.time += dt
	w.steps++
}
