package view

import (
	"fmt"

	"orbitribbon/internal/engine"
	"orbitribbon/internal/game"
	"orbitribbon/internal/sim"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl64"
)

// Panel is the debug overlay: pause, single step and a damping slider,
// plus simulation counters.
type Panel struct {
	Paused  bool
	Damping float32

	stepOnce bool
	applied  float32
}

func NewPanel() *Panel {
	return &Panel{Damping: engine.DefaultDamp, applied: engine.DefaultDamp}
}

// TakeStep reports whether a single step was requested since the last
// call.
func (p *Panel) TakeStep() bool {
	s := p.stepOnce
	p.stepOnce = false
	return s
}

// ApplyDamping sets the panel's damping on every object of w when the
// slider has moved since the last call, and reports whether it did.
// Per-object damping is left alone otherwise.
func (p *Panel) ApplyDamping(w *sim.World) bool {
	if p.Damping == p.applied {
		return false
	}
	p.applied = p.Damping
	d := float64(p.Damping)
	for _, obj := range w.Objects() {
		obj.VelDamp = mgl64.Vec3{d, d, d}
		obj.AngDamp = mgl64.Vec3{d, d, d}
	}
	return true
}

// Draw draws the panel in screen space. mission may be nil.
func (p *Panel) Draw(w *sim.World, mission *game.MissionControl) {
	x, y := float32(10), float32(10)
	rl.DrawRectangle(int32(x)-5, int32(y)-5, 230, 150, rl.Fade(rl.RayWhite, 0.8))

	p.Paused = gui.CheckBox(rl.NewRectangle(x, y, 18, 18), "Paused", p.Paused)
	if gui.Button(rl.NewRectangle(x+110, y, 100, 20), "Step") {
		p.stepOnce = true
	}
	y += 28
	p.Damping = gui.Slider(rl.NewRectangle(x+60, y, 120, 18), "Damping", fmt.Sprintf("%.2f", p.Damping), p.Damping, 0, 2)
	y += 28

	lines := []string{
		fmt.Sprintf("tick %d  t=%.2fs", w.Ticks(), w.Time()),
		fmt.Sprintf("objects %d  contacts %d", len(w.Objects()), w.Joints.Len()),
	}
	if mission != nil && mission.Timed() {
		lines = append(lines, mission.TimerText())
	}
	for _, line := range lines {
		rl.DrawText(line, int32(x), int32(y), 16, rl.DarkGray)
		y += 20
	}

	if mission != nil {
		if a := mission.WinMessageAlpha(); a > 0 {
			sw, sh := rl.GetScreenWidth(), rl.GetScreenHeight()
			size := int32(40)
			tw := rl.MeasureText(game.WinMessage, size)
			rl.DrawText(game.WinMessage, int32(sw)/2-tw/2, int32(sh)/2, size, rl.Fade(rl.DarkBlue, float32(a)))
		}
	}
}
