package engine

import (
	"orbitribbon/internal/collision"
	"orbitribbon/internal/physics"
)

type Component interface {
	Start()
	Step(ctx StepContext)
	SetGameObject(g *GameObject)
	GetGameObject() *GameObject
}

// StepContext is what a component can see of the tick in progress.
type StepContext interface {
	Ticks() uint64
	Time() float64
	// CollisionsOf returns this tick's collisions of g. The slice must not
	// be kept past the tick.
	CollisionsOf(g *physics.Geom) []collision.Collision
}

// InDrawer is implemented by components that draw in their object's
// local frame.
type InDrawer interface {
	InDraw(r Renderer)
}

// CollisionHandler is implemented by components that want to know when
// their object starts or stops touching another one.
type CollisionHandler interface {
	OnCollisionEnter(other *GameObject)
	OnCollisionExit(other *GameObject)
}

// BaseComponent provides default implementation for Component interface
type BaseComponent struct {
	gameObject *GameObject
}

func (b *BaseComponent) Start() {}

func (b *BaseComponent) Step(ctx StepContext) {}

func (b *BaseComponent) SetGameObject(g *GameObject) {
	b.gameObject = g
}

func (b *BaseComponent) GetGameObject() *GameObject {
	return b.gameObject
}
