package main

import (
	"flag"
	"log/slog"
	"os"

	"orbitribbon/internal/compute"
	"orbitribbon/internal/game"
	"orbitribbon/internal/level"
	_ "orbitribbon/internal/scripts"
	"orbitribbon/internal/sim"
	"orbitribbon/internal/view"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// maxCatchUp bounds the steps run in one frame after a stall.
const maxCatchUp = 10

func main() {
	levelPath := flag.String("level", "assets/levels/a01.yaml", "level file")
	configPath := flag.String("config", "assets/sim.yaml", "simulation config")
	savePath := flag.String("save", "", "write the level here on exit")
	gpu := flag.Bool("gpu", false, "use the GPU broad phase for large levels")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})))

	cfg, err := sim.LoadConfig(*configPath)
	if err != nil {
		slog.Error("Config: load failed", "err", err)
		os.Exit(1)
	}
	w := sim.New(cfg)
	if *gpu {
		enableGPU(w)
	}

	intents := &game.Intents{}
	lvl, err := level.Load(*levelPath, w, intents)
	if err != nil {
		slog.Error("Level: load failed", "err", err)
		os.Exit(1)
	}

	run(w, lvl, intents)

	if *savePath != "" {
		if err := level.Save(*savePath, lvl); err != nil {
			slog.Error("Level: save failed", "err", err)
			os.Exit(1)
		}
	}
}

func enableGPU(w *sim.World) {
	info, err := compute.Initialize()
	if err != nil {
		slog.Warn("Physics: GPU unavailable, staying on the grid", "err", err)
		return
	}
	slog.Info("Physics: GPU ready", "name", info.Name, "backend", info.Backend)
	pf, err := compute.NewPairFinder(uint32(w.Config().GPUThreshold)*8, uint32(w.Config().GPUThreshold)*32)
	if err != nil {
		slog.Warn("Physics: GPU broad phase not created", "err", err)
		return
	}
	w.UsePairFinder(pf)
}

func run(w *sim.World, lvl *level.Level, intents *game.Intents) {
	rl.SetConfigFlags(rl.FlagWindowHighdpi | rl.FlagMsaa4xHint)
	title := "Orbit Ribbon"
	if lvl.PlayerName != "" {
		title += " - " + lvl.PlayerName
	}
	rl.InitWindow(1280, 720, title)
	defer rl.CloseWindow()
	rl.SetTargetFPS(120)

	renderer := &view.Renderer{}
	cam := view.NewFollowCamera()
	panel := view.NewPanel()
	if lvl.Avatar != nil {
		cam.Snap(lvl.Avatar)
	}

	var mission *game.MissionControl
	if lvl.Mission != nil {
		mission = lvl.Mission.MissionControl
	}

	accumulator := 0.0
	for !rl.WindowShouldClose() {
		frame := float64(rl.GetFrameTime())
		view.ReadKeyboard(intents)
		if rl.IsKeyPressed(rl.KeyP) {
			panel.Paused = !panel.Paused
		}
		panel.ApplyDamping(w)

		steps := 0
		if panel.Paused {
			accumulator = 0
			if panel.TakeStep() {
				steps = 1
			}
		} else {
			accumulator += frame
			for accumulator >= sim.TickDuration && steps < maxCatchUp {
				accumulator -= sim.TickDuration
				steps++
			}
			if steps == maxCatchUp {
				accumulator = 0
			}
		}
		for i := 0; i < steps; i++ {
			w.Step()
		}
		cam.Update(lvl.Avatar, frame)

		rl.BeginDrawing()
		rl.ClearBackground(rl.NewColor(170, 200, 235, 255))
		rl.BeginMode3D(cam.Camera3D())
		renderer.DrawWorld(w)
		rl.EndMode3D()
		panel.Draw(w, mission)
		rl.DrawFPS(int32(rl.GetScreenWidth())-90, 10)
		rl.EndDrawing()
	}
}
