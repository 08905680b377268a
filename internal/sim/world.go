package sim

import (
	"fmt"
	"sort"

	"orbitribbon/internal/collision"
	"orbitribbon/internal/engine"
	"orbitribbon/internal/physics"

	"github.com/go-gl/mathgl/mgl64"
)

// TickRate is the number of simulation steps per simulated second.
const TickRate = 60

// TickDuration is the simulated time covered by one Step.
const TickDuration = 1.0 / TickRate

// World is the simulation world: the physics world, the dynamic and
// static spaces, the per-tick collision record and contact joints, and
// the registry of game objects.
type World struct {
	Physics  *physics.World
	Dynamic  *physics.Space
	Static   *physics.Space
	Joints   *physics.JointGroup
	Record   collision.Record
	Resolver *collision.Resolver
	Detector *collision.Detector
	Scene    *engine.Scene

	// PreStep fires at the start of every Step, before collision.
	PreStep engine.Event

	cfg   Config
	ticks uint64

	ready    bool
	stepping bool
	adds     []*engine.GameObject
	removes  []*engine.GameObject

	touching map[objectPair]bool
}

type objectPair struct {
	a, b *engine.GameObject
}

// New creates a world from cfg. It panics if cfg does not validate; a
// zero Config is not usable, start from DefaultConfig.
func New(cfg Config) *World {
	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("sim.New: %v", err))
	}
	pw := physics.NewWorld()
	pw.Gravity = cfg.gravity()
	pw.Iterations = cfg.Iterations
	pw.ERP = cfg.ERP
	pw.CFM = cfg.CFM

	w := &World{
		Physics:  pw,
		Dynamic:  physics.NewSpace(nil, physics.HashSpace),
		Static:   physics.NewSpace(nil, physics.HashSpace),
		Joints:   pw.NewJointGroup(),
		Record:   collision.Record{},
		Scene:    engine.NewScene("Main"),
		cfg:      cfg,
		ready:    true,
		touching: make(map[objectPair]bool),
	}
	w.Dynamic.CellSize = cfg.CellSize
	w.Static.CellSize = cfg.CellSize

	w.Resolver = collision.NewResolver(w.Record)
	w.Resolver.Surface.Bounce = cfg.Bounce
	w.Resolver.Surface.Mu = cfg.Mu
	w.Resolver.MaxContacts = cfg.MaxContacts
	w.Detector = collision.NewDetector(w.Resolver, w.Joints)
	return w
}

func (w *World) Config() Config { return w.cfg }

// UsePairFinder installs an accelerated broad phase on the dynamic space.
func (w *World) UsePairFinder(f physics.PairFinder) {
	w.Dynamic.SetPairFinder(f, w.cfg.GPUThreshold)
}

// NewBody creates a body with the given mass.
func (w *World) NewBody(m physics.Mass) *physics.Body {
	b := w.Physics.CreateBody()
	b.SetMass(m)
	return b
}

// Add registers g. During a Step the request is queued until the tick
// completes.
func (w *World) Add(g *engine.GameObject) {
	if w.stepping {
		w.adds = append(w.adds, g)
		return
	}
	if g.Scene == w.Scene {
		return
	}
	g.SetWorld(w)
	w.Scene.AddGameObject(g)
	g.Start()
}

// Remove unregisters and disposes g. During a Step the request is
// queued until the tick completes.
func (w *World) Remove(g *engine.GameObject) {
	if w.stepping {
		w.removes = append(w.removes, g)
		return
	}
	w.Scene.RemoveGameObject(g)
	g.Dispose()
	g.SetWorld(nil)
	for p := range w.touching {
		if p.a == g || p.b == g {
			delete(w.touching, p)
		}
	}
}

// Objects returns the registered objects in registration order.
func (w *World) Objects() []*engine.GameObject {
	return w.Scene.GameObjects
}

// Ticks returns the number of completed steps.
func (w *World) Ticks() uint64 { return w.ticks }

// Time returns the simulated time in seconds.
func (w *World) Time() float64 { return float64(w.ticks) * TickDuration }

// CollisionsOf returns this tick's collisions of g.
func (w *World) CollisionsOf(g *physics.Geom) []collision.Collision {
	return w.Record.Of(g)
}

// Step advances the simulation by one tick. It panics on a world that
// was not created with New, and when called from inside a Step.
func (w *World) Step() {
	if w == nil || !w.ready {
		panic("sim: Step on a world not created with sim.New")
	}
	if w.stepping {
		panic("sim: Step called while already stepping")
	}
	w.stepping = true

	w.PreStep.Invoke()

	w.Joints.Empty()
	w.Record.Reset()
	w.Dynamic.Collide(w.Detector.NearCallback)
	physics.Collide2(w.Dynamic, w.Static, w.Detector.NearCallback)
	w.Physics.QuickStep(TickDuration)
	w.ticks++

	objs := w.Scene.GameObjects
	for _, g := range objs {
		g.SyncFromEngine()
	}
	for _, g := range objs {
		g.Step(w)
		g.Damp(TickRate)
	}
	w.dispatchContacts()

	w.stepping = false
	w.flush()
}

func (w *World) flush() {
	adds, removes := w.adds, w.removes
	w.adds, w.removes = nil, nil
	for _, g := range removes {
		w.Remove(g)
	}
	for _, g := range adds {
		if !g.Disposed() {
			w.Add(g)
		}
	}
}

func ownerOf(g *physics.Geom) *engine.GameObject {
	obj, _ := collision.OwnerOf(g).(*engine.GameObject)
	return obj
}

// dispatchContacts compares this tick's touching object pairs with the
// previous tick's and notifies collision handlers of the difference.
func (w *World) dispatchContacts() {
	now := make(map[objectPair]bool)
	for g, cols := range w.Record {
		a := ownerOf(g)
		if a == nil {
			continue
		}
		for _, c := range cols {
			b := ownerOf(c.Geom)
			if b == nil || b == a {
				continue
			}
			if b.UID < a.UID {
				now[objectPair{b, a}] = true
			} else {
				now[objectPair{a, b}] = true
			}
		}
	}

	var entered, exited []objectPair
	for p := range now {
		if !w.touching[p] {
			entered = append(entered, p)
		}
	}
	for p := range w.touching {
		if !now[p] {
			exited = append(exited, p)
		}
	}
	w.touching = now

	sortPairs(entered)
	sortPairs(exited)
	for _, p := range entered {
		notify(p.a, p.b, engine.CollisionHandler.OnCollisionEnter)
		notify(p.b, p.a, engine.CollisionHandler.OnCollisionEnter)
	}
	for _, p := range exited {
		notify(p.a, p.b, engine.CollisionHandler.OnCollisionExit)
		notify(p.b, p.a, engine.CollisionHandler.OnCollisionExit)
	}
}

func sortPairs(ps []objectPair) {
	sort.Slice(ps, func(i, j int) bool {
		if ps[i].a.UID != ps[j].a.UID {
			return ps[i].a.UID < ps[j].a.UID
		}
		return ps[i].b.UID < ps[j].b.UID
	})
}

func notify(g, other *engine.GameObject, fn func(engine.CollisionHandler, *engine.GameObject)) {
	for _, c := range g.Components() {
		if h, ok := c.(engine.CollisionHandler); ok {
			fn(h, other)
		}
	}
}

// Raycast returns the closest object hit by the ray in either space.
func (w *World) Raycast(origin, direction mgl64.Vec3, maxDistance float64) (engine.RaycastResult, bool) {
	best := engine.RaycastResult{Distance: maxDistance}
	found := false
	for _, sp := range []*physics.Space{w.Dynamic, w.Static} {
		hit, ok := physics.Raycast(sp, origin, direction, best.Distance)
		if !ok || (found && hit.Distance >= best.Distance) {
			continue
		}
		best = engine.RaycastResult{
			GameObject: ownerOf(hit.Geom),
			Point:      hit.Point,
			Normal:     hit.Normal,
			Distance:   hit.Distance,
		}
		found = true
	}
	return best, found
}
