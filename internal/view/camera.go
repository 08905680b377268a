package view

import (
	"math"

	"orbitribbon/internal/engine"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl64"
)

// FollowCamera trails an object from behind and above, in the object's
// own frame, easing towards the desired spot.
type FollowCamera struct {
	Position mgl64.Vec3
	Target   mgl64.Vec3
	Up       mgl64.Vec3

	Distance  float64
	Height    float64
	Stiffness float64 // per second
	Fovy      float32
}

func NewFollowCamera() *FollowCamera {
	return &FollowCamera{
		Up:        mgl64.Vec3{0, 1, 0},
		Distance:  8,
		Height:    2,
		Stiffness: 5,
		Fovy:      60,
	}
}

// Desired returns where the camera wants to be to look at obj, along
// with the up vector. The object's local Z is its forward axis.
func (c *FollowCamera) Desired(obj *engine.GameObject) (pos, up mgl64.Vec3) {
	rot := obj.Rotation()
	forward := rot.Axis(2)
	up = rot.Axis(1)
	pos = obj.Position().Sub(forward.Mul(c.Distance)).Add(up.Mul(c.Height))
	return pos, up
}

// Snap puts the camera straight into place behind obj.
func (c *FollowCamera) Snap(obj *engine.GameObject) {
	c.Position, c.Up = c.Desired(obj)
	c.Target = obj.Position()
}

// Update eases the camera towards obj over dt seconds.
func (c *FollowCamera) Update(obj *engine.GameObject, dt float64) {
	if obj == nil {
		return
	}
	pos, up := c.Desired(obj)
	t := 1 - math.Exp(-c.Stiffness*dt)
	c.Position = c.Position.Add(pos.Sub(c.Position).Mul(t))
	c.Up = c.Up.Add(up.Sub(c.Up).Mul(t))
	if n := c.Up.Len(); n > 1e-9 {
		c.Up = c.Up.Mul(1 / n)
	} else {
		c.Up = up
	}
	c.Target = obj.Position()
}

func (c *FollowCamera) Camera3D() rl.Camera3D {
	return rl.Camera3D{
		Position:   vec3(c.Position),
		Target:     vec3(c.Target),
		Up:         vec3(c.Up),
		Fovy:       c.Fovy,
		Projection: rl.CameraPerspective,
	}
}
