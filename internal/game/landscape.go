package game

import (
	"fmt"

	"orbitribbon/internal/collision"
	"orbitribbon/internal/engine"
	"orbitribbon/internal/geom"
	"orbitribbon/internal/physics"
	"orbitribbon/internal/sim"

	"github.com/go-gl/mathgl/mgl64"
)

const LandscapeTag = "landscape"

// Landscape is static level geometry: a triangle mesh in the static
// space with no body. It pushes everything and is never pushed.
type Landscape struct {
	engine.BaseComponent
	Mesh *physics.TriMeshData

	// Source buffers, kept for saving the level.
	Vertices []mgl64.Vec3
	Indices  []int
}

// LandscapePriority outranks every movable object.
const LandscapePriority = 100

func NewLandscape(w *sim.World, name string, pos mgl64.Vec3, rot geom.RotationMatrix, vertices []mgl64.Vec3, indices []int) (*engine.GameObject, error) {
	data, err := physics.NewTriMeshData(vertices, indices)
	if err != nil {
		return nil, fmt.Errorf("landscape %q: %w", name, err)
	}
	g := physics.NewTriMesh(w.Static, data)
	collision.Attach(g, collision.Props{Push: true, Priority: LandscapePriority})

	obj := engine.NewGameObject(name)
	obj.Tags = []string{LandscapeTag}
	obj.Attach(nil, g)
	obj.SetPosition(pos)
	obj.SetRotationMatrix(rot)
	obj.AddComponent(&Landscape{Mesh: data, Vertices: vertices, Indices: indices})
	return obj, nil
}
