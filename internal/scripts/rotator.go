package scripts

import (
	"orbitribbon/internal/engine"
	"orbitribbon/internal/geom"

	"github.com/go-gl/mathgl/mgl64"
)

// Rotator spins an object around a local axis. Objects with a body are
// spun through their angular velocity, static ones by rotating the pose.
type Rotator struct {
	engine.BaseComponent
	Speed float64 // degrees per second
	Axis  mgl64.Vec3

	base geom.RotationMatrix
}

func (r *Rotator) Start() {
	if g := r.GetGameObject(); g != nil {
		r.base = g.Rotation()
	}
}

func (r *Rotator) Step(ctx engine.StepContext) {
	g := r.GetGameObject()
	if g == nil {
		return
	}
	axis, ok := geom.SafeNormalize(r.Axis)
	if !ok {
		return
	}
	rad := mgl64.DegToRad(r.Speed)
	if g.Body() != nil {
		g.SetAngularVelocity(g.Rotation().Apply(axis).Mul(rad))
		return
	}
	g.SetRotationMatrix(r.base.Mul(geom.AxisAngle(axis, rad*ctx.Time())))
}

func init() {
	engine.RegisterScript("Rotator", rotatorFactory, rotatorSerializer)
}

func rotatorFactory(props map[string]any) engine.Component {
	return &Rotator{
		Speed: engine.PropFloat(props, "speed", 90),
		Axis: mgl64.Vec3{
			engine.PropFloat(props, "axisX", 0),
			engine.PropFloat(props, "axisY", 1),
			engine.PropFloat(props, "axisZ", 0),
		},
	}
}

func rotatorSerializer(c engine.Component) map[string]any {
	r, ok := c.(*Rotator)
	if !ok {
		return nil
	}
	return map[string]any{
		"speed": r.Speed,
		"axisX": r.Axis.X(),
		"axisY": r.Axis.Y(),
		"axisZ": r.Axis.Z(),
	}
}
