package engine

import "github.com/go-gl/mathgl/mgl64"

// RaycastResult holds information about a raycast hit.
type RaycastResult struct {
	GameObject *GameObject
	Point      mgl64.Vec3
	Normal     mgl64.Vec3
	Distance   float64
}

// WorldAccess is the simulation world as objects see it. It lives here
// so objects and components can reach it without importing the world's
// package.
type WorldAccess interface {
	Add(g *GameObject)
	Remove(g *GameObject)
	Raycast(origin, direction mgl64.Vec3, maxDistance float64) (RaycastResult, bool)
}
