package scripts

import (
	"math"

	"orbitribbon/internal/engine"

	"github.com/go-gl/mathgl/mgl64"
)

// Orbiter moves an object around its starting position on a circle in
// the XZ plane, bobbing up and down twice per lap.
type Orbiter struct {
	engine.BaseComponent
	StartPosition  mgl64.Vec3
	MovementRadius float64
	MovementSpeed  float64 // radians per second
	Bob            float64
	Phase          float64
}

func (o *Orbiter) Start() {
	if g := o.GetGameObject(); g != nil {
		o.StartPosition = g.Position()
	}
}

func (o *Orbiter) Step(ctx engine.StepContext) {
	g := o.GetGameObject()
	if g == nil {
		return
	}
	t := ctx.Time()*o.MovementSpeed + o.Phase
	offset := mgl64.Vec3{
		math.Cos(t) * o.MovementRadius,
		math.Sin(t*2) * o.Bob,
		math.Sin(t) * o.MovementRadius,
	}
	g.SetPosition(o.StartPosition.Add(offset))
	if g.Body() != nil {
		g.SetVelocity(mgl64.Vec3{})
	}
}

func init() {
	engine.RegisterScript("Orbiter", orbiterFactory, orbiterSerializer)
}

func orbiterFactory(props map[string]any) engine.Component {
	return &Orbiter{
		MovementRadius: engine.PropFloat(props, "movementRadius", 0),
		MovementSpeed:  engine.PropFloat(props, "movementSpeed", 1),
		Bob:            engine.PropFloat(props, "bob", 1.5),
		Phase:          engine.PropFloat(props, "phase", 0),
	}
}

func orbiterSerializer(c engine.Component) map[string]any {
	o, ok := c.(*Orbiter)
	if !ok {
		return nil
	}
	return map[string]any{
		"movementRadius": o.MovementRadius,
		"movementSpeed":  o.MovementSpeed,
		"bob":            o.Bob,
		"phase":          o.Phase,
	}
}
