package view

import (
	"orbitribbon/internal/game"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Binding maps a key to a full deflection of one intent.
type Binding struct {
	Key    int32
	Intent game.Intent
	Value  float64
}

var DefaultBindings = []Binding{
	{rl.KeyW, game.IntentTransZ, 1},
	{rl.KeyS, game.IntentTransZ, -1},
	{rl.KeyA, game.IntentTransX, -1},
	{rl.KeyD, game.IntentTransX, 1},
	{rl.KeyR, game.IntentTransY, -1},
	{rl.KeyF, game.IntentTransY, 1},
	{rl.KeyUp, game.IntentRotateX, 1},
	{rl.KeyDown, game.IntentRotateX, -1},
	{rl.KeyLeft, game.IntentRotateY, -1},
	{rl.KeyRight, game.IntentRotateY, 1},
	{rl.KeyQ, game.IntentRotateZ, -1},
	{rl.KeyE, game.IntentRotateZ, 1},
}

// ApplyKeys sets every bound intent from isDown. Opposing keys cancel.
func ApplyKeys(in *game.Intents, bindings []Binding, isDown func(key int32) bool) {
	var sum [6]float64
	for _, b := range bindings {
		if int(b.Intent) < len(sum) && isDown(b.Key) {
			sum[b.Intent] += b.Value
		}
	}
	for i, v := range sum {
		in.Set(game.Intent(i), v)
	}
}

// ReadKeyboard updates in from raylib's keyboard state.
func ReadKeyboard(in *game.Intents) {
	ApplyKeys(in, DefaultBindings, rl.IsKeyDown)
}
