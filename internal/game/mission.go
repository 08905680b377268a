package game

import (
	"fmt"
	"log/slog"

	"orbitribbon/internal/engine"
	"orbitribbon/internal/sim"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	WinMessage     = "Complete!"
	WinMessageTime = 5.0
	WinMessageFade = 1.5
)

// MissionControl checks a mission's win condition at the start of every
// tick and keeps the mission timer.
type MissionControl struct {
	// WinCondition reports whether the mission is won.
	WinCondition func() bool
	// TimerStart, if set, reports whether the timer should start. A nil
	// TimerStart means the mission is untimed.
	TimerStart func() bool

	Won          engine.Event
	TimerStarted engine.Event

	world        *sim.World
	won, timing  bool
	wonAt, start uint64
}

// NewMissionControl hooks a mission into w.
func NewMissionControl(w *sim.World, win, timerStart func() bool) *MissionControl {
	m := &MissionControl{WinCondition: win, TimerStart: timerStart, world: w}
	w.PreStep.AddListener(m.step)
	return m
}

func (m *MissionControl) step() {
	now := m.world.Ticks()
	if m.TimerStart != nil && !m.timing && !m.won && m.TimerStart() {
		m.timing = true
		m.start = now
		slog.Info("Mission: timer started", "tick", now)
		m.TimerStarted.Invoke()
	}
	if !m.won && m.WinCondition != nil && m.WinCondition() {
		m.won = true
		m.wonAt = now
		slog.Info("Mission: complete", "tick", now, "time", m.Elapsed())
		m.Won.Invoke()
	}
}

func (m *MissionControl) IsWon() bool { return m.won }

func (m *MissionControl) Timed() bool { return m.TimerStart != nil }

// Elapsed returns the timer in seconds. It stops when the mission is won.
func (m *MissionControl) Elapsed() float64 {
	if !m.timing {
		return 0
	}
	end := m.world.Ticks()
	if m.won {
		end = m.wonAt
	}
	return float64(end-m.start) / sim.TickRate
}

// TimerText formats Elapsed the way the HUD shows it.
func (m *MissionControl) TimerText() string {
	return fmt.Sprintf("%.2fsec", m.Elapsed())
}

// WinMessageAlpha returns the opacity of the win message: 1 after
// winning, fading out over the last WinMessageFade seconds, then 0.
func (m *MissionControl) WinMessageAlpha() float64 {
	if !m.won {
		return 0
	}
	secs := float64(m.world.Ticks()-m.wonAt) / sim.TickRate
	switch {
	case secs >= WinMessageTime:
		return 0
	case secs > WinMessageTime-WinMessageFade:
		return 1 - (secs-WinMessageTime+WinMessageFade)/WinMessageFade
	}
	return 1
}

// MinDistance returns a condition that holds once obj is more than delta
// away from pos.
func MinDistance(obj *engine.GameObject, pos mgl64.Vec3, delta float64) func() bool {
	return func() bool {
		return obj.Position().Sub(pos).Len() > delta
	}
}

// AllRingsPassed returns a condition that holds when every target ring
// in w has been passed.
func AllRingsPassed(w *sim.World) func() bool {
	return func() bool {
		for _, obj := range w.Objects() {
			r := engine.GetComponent[*TargetRing](obj)
			if r != nil && !r.IsPassed() {
				return false
			}
		}
		return true
	}
}
