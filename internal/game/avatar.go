package game

import (
	"orbitribbon/internal/collision"
	"orbitribbon/internal/engine"
	"orbitribbon/internal/geom"
	"orbitribbon/internal/physics"
	"orbitribbon/internal/sim"

	"github.com/go-gl/mathgl/mgl64"
)

// Force and torque per second at full intent.
const (
	MaxStrafe = 5000.0
	MaxAccel  = 15000.0
	MaxTurn   = 1000.0
	MaxRoll   = 800.0
)

// Counter-turn and counter-roll coefficients. They act like damping, but
// only on axes whose controls are released.
const (
	CounterTurn = 700.0
	CounterRoll = 700.0
)

const (
	AvatarTag    = "avatar"
	AvatarRadius = 0.25
	AvatarLength = 2.0
	AvatarMass   = 80.0
)

// Avatar turns player intents into body-relative forces and torques.
type Avatar struct {
	engine.BaseComponent
	Input IntentSource

	// Last applied values, body frame, for drawing thrust indicators.
	Thrust        mgl64.Vec3
	Torque        mgl64.Vec3
	CounterTorque mgl64.Vec3
}

// NewAvatar creates the player object: a capsule along its local Z axis
// on an 80 kg body.
func NewAvatar(w *sim.World, pos mgl64.Vec3, rot geom.RotationMatrix, in IntentSource) *engine.GameObject {
	g := physics.NewCapsule(w.Dynamic, AvatarRadius, AvatarLength)
	collision.Attach(g, collision.DefaultProps())

	obj := engine.NewGameObject("Avatar")
	obj.Tags = []string{AvatarTag}
	obj.SetPosition(pos)
	obj.SetRotationMatrix(rot)
	obj.Attach(w.NewBody(physics.SphereMass(AvatarMass, 0.5)), g)
	obj.AddComponent(&Avatar{Input: in})
	return obj
}

func (a *Avatar) Step(ctx engine.StepContext) {
	obj := a.GetGameObject()
	if obj == nil || obj.Body() == nil {
		return
	}
	body := obj.Body()
	rate := float64(sim.TickRate)
	value := func(i Intent) float64 {
		if a.Input == nil {
			return 0
		}
		return a.Input.Value(i)
	}

	a.Thrust = mgl64.Vec3{
		-value(IntentTransX) * MaxStrafe / rate,
		-value(IntentTransY) * MaxStrafe / rate,
		value(IntentTransZ) * MaxAccel / rate,
	}
	body.AddRelForce(a.Thrust)

	avel := body.VectorFromWorld(body.AngularVel())
	a.Torque = mgl64.Vec3{}
	a.CounterTorque = mgl64.Vec3{}
	axes := [3]struct {
		intent Intent
		scale  float64
		coef   float64
	}{
		{IntentRotateX, MaxTurn, CounterTurn},
		{IntentRotateY, -MaxTurn, CounterTurn},
		{IntentRotateZ, MaxRoll, CounterRoll},
	}
	for i, ax := range axes {
		if v := value(ax.intent); v != 0 {
			a.Torque[i] = v * ax.scale / rate
		} else {
			a.CounterTorque[i] = -avel[i] * ax.coef / rate
		}
	}
	body.AddRelTorque(a.Torque.Add(a.CounterTorque))
}
