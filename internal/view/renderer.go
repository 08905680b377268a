// Package view draws a simulation world with raylib.
package view

import (
	"orbitribbon/internal/collision"
	"orbitribbon/internal/engine"
	"orbitribbon/internal/game"
	"orbitribbon/internal/geom"
	"orbitribbon/internal/physics"
	"orbitribbon/internal/sim"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl64"
)

// Renderer implements engine.Renderer on raylib's matrix stack. It must
// be used between rl.BeginMode3D and rl.EndMode3D.
type Renderer struct {
	depth int
}

var _ engine.Renderer = (*Renderer)(nil)

func (r *Renderer) PushTransform(pos mgl64.Vec3, rot geom.RotationMatrix) {
	rl.PushMatrix()
	rl.MultMatrixf(transformMatrix(pos, rot))
	r.depth++
}

func (r *Renderer) PopTransform() {
	if r.depth == 0 {
		return
	}
	rl.PopMatrix()
	r.depth--
}

// transformMatrix returns pos and rot as a column-major 4x4 matrix.
func transformMatrix(pos mgl64.Vec3, rot geom.RotationMatrix) []float32 {
	return []float32{
		float32(rot[0]), float32(rot[1]), float32(rot[2]), 0,
		float32(rot[3]), float32(rot[4]), float32(rot[5]), 0,
		float32(rot[6]), float32(rot[7]), float32(rot[8]), 0,
		float32(pos[0]), float32(pos[1]), float32(pos[2]), 1,
	}
}

func vec3(v mgl64.Vec3) rl.Vector3 {
	return rl.NewVector3(float32(v[0]), float32(v[1]), float32(v[2]))
}

// DrawWorld draws every active object: collision shapes first, then
// whatever its components draw in its local frame.
func (r *Renderer) DrawWorld(w *sim.World) {
	for _, obj := range w.Objects() {
		if !obj.Active {
			continue
		}
		color := colorOf(obj)
		for _, g := range obj.Geoms() {
			r.drawGeom(g, color)
		}
		obj.Draw(r)
	}
}

func colorOf(obj *engine.GameObject) rl.Color {
	switch {
	case obj.HasTag(game.AvatarTag):
		return rl.SkyBlue
	case obj.HasTag(game.RingTag):
		if ring := engine.GetComponent[*game.TargetRing](obj); ring != nil && ring.IsPassed() {
			return rl.Lime
		}
		return rl.Gold
	case obj.HasTag(game.LandscapeTag):
		return rl.DarkGray
	}
	if cube := engine.GetComponent[*game.TestCube](obj); cube != nil {
		c := cube.Color
		return rl.NewColor(uint8(c[0]*255), uint8(c[1]*255), uint8(c[2]*255), 255)
	}
	return rl.LightGray
}

func (r *Renderer) drawGeom(g *physics.Geom, color rl.Color) {
	r.PushTransform(g.Position(), geom.FromRowMajor(g.Rotation()))
	defer r.PopTransform()

	origin := rl.Vector3{}
	switch g.Class() {
	case physics.SphereClass:
		if isTrigger(g) {
			rl.DrawSphereWires(origin, float32(g.Radius()), 6, 8, rl.Fade(color, 0.25))
			return
		}
		rl.DrawSphereWires(origin, float32(g.Radius()), 8, 12, color)
	case physics.CapsuleClass:
		half := float32(g.Length() / 2)
		rl.DrawCapsuleWires(rl.NewVector3(0, 0, -half), rl.NewVector3(0, 0, half), float32(g.Radius()), 8, 4, color)
	case physics.BoxClass:
		rl.DrawCubeV(origin, vec3(g.Sides()), color)
		rl.DrawCubeWiresV(origin, vec3(g.Sides()), rl.Black)
	case physics.TriMeshClass:
		for _, tri := range g.Mesh().Triangles {
			rl.DrawTriangle3D(vec3(tri.V0), vec3(tri.V1), vec3(tri.V2), color)
			rl.DrawLine3D(vec3(tri.V0), vec3(tri.V1), rl.Black)
			rl.DrawLine3D(vec3(tri.V1), vec3(tri.V2), rl.Black)
			rl.DrawLine3D(vec3(tri.V2), vec3(tri.V0), rl.Black)
		}
	}
}

// isTrigger reports whether g only records contacts.
func isTrigger(g *physics.Geom) bool {
	t := collision.TagOf(g)
	return t != nil && !t.Push
}
