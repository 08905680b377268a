package engine

import (
	"orbitribbon/internal/geom"

	"github.com/go-gl/mathgl/mgl64"
)

// Renderer is the drawing surface objects see. Transforms nest.
type Renderer interface {
	PushTransform(pos mgl64.Vec3, rot geom.RotationMatrix)
	PopTransform()
}
