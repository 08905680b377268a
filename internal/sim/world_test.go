package sim

import (
	"testing"

	"orbitribbon/internal/collision"
	"orbitribbon/internal/engine"
	"orbitribbon/internal/physics"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ball(w *World, name string, pos mgl64.Vec3, props collision.Props) *engine.GameObject {
	g := physics.NewSphere(w.Dynamic, 1)
	collision.Attach(g, props)
	obj := engine.NewGameObject(name)
	obj.Attach(w.NewBody(physics.SphereMass(1, 1)), g)
	obj.SetPosition(pos)
	w.Add(obj)
	return obj
}

func geomOf(obj *engine.GameObject) *physics.Geom {
	return obj.Geometry().(*physics.Geom)
}

func trigger() collision.Props { return collision.Props{Push: false, Priority: 1} }

func TestStepRecordsCollisionSymmetrically(t *testing.T) {
	w := New(DefaultConfig())
	a := ball(w, "a", mgl64.Vec3{}, collision.DefaultProps())
	b := ball(w, "b", mgl64.Vec3{1.5, 0, 0}, collision.DefaultProps())
	ball(w, "far", mgl64.Vec3{50, 0, 0}, collision.DefaultProps())

	w.Step()
	ca := w.CollisionsOf(geomOf(a))
	cb := w.CollisionsOf(geomOf(b))
	require.Len(t, ca, 1)
	require.Len(t, cb, 1)
	assert.Same(t, geomOf(b), ca[0].Geom)
	assert.Same(t, geomOf(a), cb[0].Geom)
	assert.Len(t, w.Record, 2, "no entry for objects without contact")
}

func TestPriorityPushInStep(t *testing.T) {
	w := New(DefaultConfig())
	heavy := ball(w, "platform", mgl64.Vec3{}, collision.Props{Push: true, Priority: 2})
	light := ball(w, "avatar", mgl64.Vec3{1.5, 0, 0}, collision.DefaultProps())

	w.Step()
	assert.Equal(t, mgl64.Vec3{}, heavy.Velocity())
	assert.Greater(t, light.Velocity().X(), 0.0)
	assert.Equal(t, mgl64.Vec3{}, heavy.Position(), "the higher priority object is not pushed")
}

func TestNoPushStillRecords(t *testing.T) {
	w := New(DefaultConfig())
	a := ball(w, "a", mgl64.Vec3{}, collision.DefaultProps())
	gate := ball(w, "gate", mgl64.Vec3{1.5, 0, 0}, trigger())

	w.Step()
	assert.Len(t, w.CollisionsOf(geomOf(gate)), 1)
	assert.Zero(t, w.Joints.Len())
	assert.Equal(t, mgl64.Vec3{}, a.Velocity())
}

func TestJointsLiveForOneTick(t *testing.T) {
	w := New(DefaultConfig())
	ball(w, "a", mgl64.Vec3{}, collision.DefaultProps())
	b := ball(w, "b", mgl64.Vec3{1.5, 0, 0}, collision.DefaultProps())

	w.Step()
	require.Equal(t, 1, w.Joints.Len())

	b.SetPosition(mgl64.Vec3{10, 0, 0})
	w.Step()
	assert.Zero(t, w.Joints.Len())
	assert.Empty(t, w.Record)
}

func TestStaticGeomsNeverCollideWithEachOther(t *testing.T) {
	w := New(DefaultConfig())
	for i := 0; i < 2; i++ {
		g := physics.NewBox(w.Static, mgl64.Vec3{2, 2, 2})
		g.SetPosition(mgl64.Vec3{float64(i), 0, 0})
		collision.Attach(g, collision.DefaultProps())
	}
	w.Step()
	assert.Empty(t, w.Record)
}

func TestDynamicAgainstStatic(t *testing.T) {
	w := New(DefaultConfig())
	floor := physics.NewBox(w.Static, mgl64.Vec3{20, 1, 20})
	collision.Attach(floor, collision.DefaultProps())
	a := ball(w, "a", mgl64.Vec3{0, 1.2, 0}, collision.DefaultProps())

	w.Step()
	cols := w.CollisionsOf(geomOf(a))
	require.Len(t, cols, 1)
	assert.Same(t, floor, cols[0].Geom)
	assert.Greater(t, a.Velocity().Y(), 0.0, "pushed out of the floor")
	assert.Greater(t, a.Position().Y(), 1.2, "pose was read back")
}

func TestDampingDecaysSpeed(t *testing.T) {
	w := New(DefaultConfig())
	a := ball(w, "a", mgl64.Vec3{}, collision.DefaultProps())
	a.SetVelocity(mgl64.Vec3{10, 0, 0})

	// the damping force added in the first tick acts in the second
	w.Step()
	prev := a.Velocity().Len()
	assert.InDelta(t, 10.0, prev, 1e-12)
	for i := 1; i < 60; i++ {
		w.Step()
		v := a.Velocity().Len()
		require.Less(t, v, prev, "tick %d", i+1)
		prev = v
	}
	assert.Greater(t, prev, 9.9)

	for w.Ticks() < 36000 {
		w.Step()
	}
	v := a.Velocity().Len()
	assert.Less(t, v, 3.0)
	assert.Greater(t, v, 0.0)
}

func TestTicksAndTime(t *testing.T) {
	w := New(DefaultConfig())
	pre := 0
	w.PreStep.AddListener(func() { pre++ })
	for i := 0; i < 30; i++ {
		w.Step()
	}
	assert.Equal(t, uint64(30), w.Ticks())
	assert.InDelta(t, 0.5, w.Time(), 1e-12)
	assert.Equal(t, 30, pre)
}

func TestPreStepRunsBeforeCollision(t *testing.T) {
	w := New(DefaultConfig())
	a := ball(w, "a", mgl64.Vec3{}, trigger())
	b := ball(w, "b", mgl64.Vec3{10, 0, 0}, trigger())
	w.PreStep.AddListener(func() { b.SetPosition(mgl64.Vec3{1, 0, 0}) })

	w.Step()
	assert.Len(t, w.CollisionsOf(geomOf(a)), 1)
}

func TestStepPanicsOnUninitializedWorld(t *testing.T) {
	var w World
	assert.Panics(t, w.Step)
	var nilWorld *World
	assert.Panics(t, nilWorld.Step)
}

func TestNewRejectsUnusableConfig(t *testing.T) {
	assert.PanicsWithValue(t,
		"sim.New: invalid config: iterations must be positive, got 0",
		func() { New(Config{}) })

	partial := DefaultConfig()
	partial.MaxContacts = 0
	assert.Panics(t, func() { New(partial) })

	assert.NotPanics(t, func() { New(DefaultConfig()) })
}

type stepper struct {
	engine.BaseComponent
	fn func(ctx engine.StepContext)
}

func (s *stepper) Step(ctx engine.StepContext) { s.fn(ctx) }

func TestReentrantStepPanics(t *testing.T) {
	w := New(DefaultConfig())
	obj := engine.NewGameObject("logic")
	ran := false
	obj.AddComponent(&stepper{fn: func(engine.StepContext) {
		ran = true
		assert.Panics(t, w.Step)
	}})
	w.Add(obj)

	w.Step()
	assert.True(t, ran)
	assert.Equal(t, uint64(1), w.Ticks())
	assert.NotPanics(t, w.Step, "world recovers for the next tick")
}

func TestStructuralChangesAreQueued(t *testing.T) {
	w := New(DefaultConfig())
	victim := ball(w, "victim", mgl64.Vec3{}, collision.DefaultProps())
	spawned := engine.NewGameObject("spawned")

	killer := engine.NewGameObject("killer")
	killer.AddComponent(&stepper{fn: func(engine.StepContext) {
		if w.Ticks() != 1 {
			return
		}
		victim.Destroy()
		w.Add(spawned)
		assert.Contains(t, w.Objects(), victim, "removal waits for the end of the tick")
		assert.NotContains(t, w.Objects(), spawned)
	}})
	w.Add(killer)
	require.Equal(t, 1, w.Physics.BodyCount())

	w.Step()
	assert.NotContains(t, w.Objects(), victim)
	assert.Contains(t, w.Objects(), spawned)
	assert.True(t, victim.Disposed())
	assert.Zero(t, w.Physics.BodyCount(), "body slot freed")
	assert.Zero(t, w.Dynamic.NumChildren())
	assert.Same(t, w, spawned.World())
}

func TestStepContextSeesCollisions(t *testing.T) {
	w := New(DefaultConfig())
	a := ball(w, "a", mgl64.Vec3{}, trigger())
	ball(w, "b", mgl64.Vec3{1.5, 0, 0}, trigger())

	var seen int
	var tick uint64
	a.AddComponent(&stepper{fn: func(ctx engine.StepContext) {
		seen = len(ctx.CollisionsOf(geomOf(a)))
		tick = ctx.Ticks()
	}})
	w.Step()
	assert.Equal(t, 1, seen)
	assert.Equal(t, uint64(1), tick)
}

type contactLog struct {
	engine.BaseComponent
	enters, exits []string
}

func (c *contactLog) OnCollisionEnter(other *engine.GameObject) {
	c.enters = append(c.enters, other.Name)
}

func (c *contactLog) OnCollisionExit(other *engine.GameObject) {
	c.exits = append(c.exits, other.Name)
}

func TestCollisionEnterExit(t *testing.T) {
	w := New(DefaultConfig())
	a := ball(w, "a", mgl64.Vec3{}, trigger())
	b := ball(w, "b", mgl64.Vec3{1.5, 0, 0}, trigger())
	la, lb := &contactLog{}, &contactLog{}
	a.AddComponent(la)
	b.AddComponent(lb)

	w.Step()
	assert.Equal(t, []string{"b"}, la.enters)
	assert.Equal(t, []string{"a"}, lb.enters)

	w.Step()
	assert.Len(t, la.enters, 1, "still touching is not a new enter")
	assert.Empty(t, la.exits)

	b.SetPosition(mgl64.Vec3{10, 0, 0})
	w.Step()
	assert.Equal(t, []string{"b"}, la.exits)
	assert.Equal(t, []string{"a"}, lb.exits)
}

func TestWorldRaycast(t *testing.T) {
	w := New(DefaultConfig())
	target := ball(w, "target", mgl64.Vec3{0, 0, 10}, collision.DefaultProps())
	wall := physics.NewBox(w.Static, mgl64.Vec3{10, 10, 1})
	wall.SetPosition(mgl64.Vec3{0, 0, 20})

	hit, ok := w.Raycast(mgl64.Vec3{}, mgl64.Vec3{0, 0, 1}, 100)
	require.True(t, ok)
	assert.Same(t, target, hit.GameObject)
	assert.InDelta(t, 9, hit.Distance, 1e-9)

	target.Destroy()
	hit, ok = w.Raycast(mgl64.Vec3{}, mgl64.Vec3{0, 0, 1}, 100)
	require.True(t, ok)
	assert.Nil(t, hit.GameObject, "untagged static geometry has no owner")
	assert.InDelta(t, 19.5, hit.Distance, 1e-9)
}

func TestNewAppliesConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Gravity = [3]float64{0, -9.8, 0}
	cfg.Mu = 10
	cfg.CellSize = 3
	w := New(cfg)

	assert.Equal(t, mgl64.Vec3{0, -9.8, 0}, w.Physics.Gravity)
	assert.Equal(t, 10.0, w.Resolver.Surface.Mu)
	assert.Equal(t, 3.0, w.Dynamic.CellSize)
	assert.Equal(t, cfg, w.Config())
}
