package game

import (
	"orbitribbon/internal/collision"
	"orbitribbon/internal/engine"
	"orbitribbon/internal/physics"
	"orbitribbon/internal/sim"

	"github.com/go-gl/mathgl/mgl64"
)

// TestCube is a plain pushable box used to try out collisions.
type TestCube struct {
	engine.BaseComponent
	Scale float64
	Color [3]float32
}

var Red = [3]float32{1, 0, 0}

func NewTestCube(w *sim.World, pos mgl64.Vec3, scale float64) *engine.GameObject {
	if scale <= 0 {
		scale = 1
	}
	g := physics.NewBox(w.Dynamic, mgl64.Vec3{scale, scale, scale})
	collision.Attach(g, collision.DefaultProps())

	obj := engine.NewGameObject("TestCube")
	obj.SetPosition(pos)
	obj.Attach(w.NewBody(physics.SphereMass(1, 0.375)), g)
	obj.AddComponent(&TestCube{Scale: scale, Color: Red})
	return obj
}
