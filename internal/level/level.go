package level

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"orbitribbon/internal/engine"
	"orbitribbon/internal/game"
	"orbitribbon/internal/geom"
	"orbitribbon/internal/sim"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"
)

// ErrUnknownKind is returned for object kinds or win conditions the
// loader cannot build.
var ErrUnknownKind = errors.New("unknown kind")

// --- YAML types ---

type File struct {
	Name       string      `yaml:"name"`
	PlayerName string      `yaml:"player_name,omitempty"`
	Mission    *MissionDef `yaml:"mission,omitempty"`
	Objects    []ObjectDef `yaml:"objects"`
}

type MissionDef struct {
	// Win names the win condition; "all_rings_passed" is the only one.
	Win string `yaml:"win"`
	// TimerStartDistance starts the timer once the avatar is this far
	// from where it started. Zero means the mission is untimed.
	TimerStartDistance float64 `yaml:"timer_start_distance,omitempty"`
}

type ObjectDef struct {
	Kind     string     `yaml:"kind"`
	Name     string     `yaml:"name,omitempty"`
	Tags     []string   `yaml:"tags,omitempty"`
	Position [3]float64 `yaml:"position"`
	// Rotation is nine column-major values; empty means identity.
	Rotation []float64 `yaml:"rotation,omitempty"`

	Radius   float64      `yaml:"radius,omitempty"`
	Scale    float64      `yaml:"scale,omitempty"`
	Vertices [][3]float64 `yaml:"vertices,omitempty"`
	Indices  []int        `yaml:"indices,omitempty"`

	Scripts []ScriptDef `yaml:"scripts,omitempty"`
}

type ScriptDef struct {
	Name  string         `yaml:"name"`
	Props map[string]any `yaml:"props,omitempty"`
}

const (
	KindAvatar    = "avatar"
	KindRing      = "ring"
	KindCube      = "cube"
	KindLandscape = "landscape"

	WinAllRingsPassed = "all_rings_passed"
)

// DefaultRingRadius is used for rings without a radius.
const DefaultRingRadius = 3.0

// Level is a loaded level: its objects live in World.
type Level struct {
	Name       string
	PlayerName string
	World      *sim.World
	Avatar     *engine.GameObject
	Mission    *MissionControl
}

// MissionControl pairs the running mission with its definition so the
// level can be saved again.
type MissionControl struct {
	*game.MissionControl
	Def MissionDef
}

// --- Loading ---

// Load reads a level file and builds it into w. Avatars read their
// intents from in.
func Load(path string, w *sim.World, in game.IntentSource) (*Level, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read level: %w", err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse level %s: %w", path, err)
	}
	lvl, err := Build(&f, w, in)
	if err != nil {
		return nil, fmt.Errorf("level %s: %w", path, err)
	}
	slog.Info("Level: loaded", "path", path, "name", lvl.Name, "objects", len(w.Objects()))
	return lvl, nil
}

// Build creates every object of f in w. On error, objects built so far
// are removed again.
func Build(f *File, w *sim.World, in game.IntentSource) (*Level, error) {
	lvl := &Level{Name: f.Name, PlayerName: f.PlayerName, World: w}
	var built []*engine.GameObject
	fail := func(err error) (*Level, error) {
		for _, g := range built {
			w.Remove(g)
		}
		return nil, err
	}

	for i, def := range f.Objects {
		g, err := buildObject(w, def, in)
		if err != nil {
			return fail(fmt.Errorf("object %d (%s): %w", i, def.Kind, err))
		}
		if def.Name != "" {
			g.Name = def.Name
		}
		if len(def.Tags) > 0 {
			g.Tags = append(g.Tags, def.Tags...)
		}
		for _, s := range def.Scripts {
			comp := engine.CreateScript(s.Name, s.Props)
			if comp == nil {
				slog.Warn("Level: unknown script skipped", "script", s.Name, "object", g.Name)
				continue
			}
			g.AddComponent(comp)
		}
		w.Add(g)
		built = append(built, g)
		if def.Kind == KindAvatar && lvl.Avatar == nil {
			lvl.Avatar = g
		}
	}

	if f.Mission != nil {
		m, err := buildMission(w, *f.Mission, lvl.Avatar)
		if err != nil {
			return fail(err)
		}
		lvl.Mission = m
	}
	return lvl, nil
}

func buildObject(w *sim.World, def ObjectDef, in game.IntentSource) (*engine.GameObject, error) {
	pos := mgl64.Vec3(def.Position)
	rot := geom.Identity
	if len(def.Rotation) > 0 {
		r, err := geom.NewRotation(def.Rotation)
		if err != nil {
			return nil, err
		}
		rot = r
	}

	switch def.Kind {
	case KindAvatar:
		return game.NewAvatar(w, pos, rot, in), nil
	case KindRing:
		radius := def.Radius
		if radius <= 0 {
			radius = DefaultRingRadius
		}
		return game.NewTargetRing(w, pos, rot, radius), nil
	case KindCube:
		g := game.NewTestCube(w, pos, def.Scale)
		g.SetRotationMatrix(rot)
		return g, nil
	case KindLandscape:
		verts := make([]mgl64.Vec3, len(def.Vertices))
		for i, v := range def.Vertices {
			verts[i] = mgl64.Vec3(v)
		}
		name := def.Name
		if name == "" {
			name = "Landscape"
		}
		return game.NewLandscape(w, name, pos, rot, verts, def.Indices)
	}
	return nil, fmt.Errorf("%w: object %q", ErrUnknownKind, def.Kind)
}

func buildMission(w *sim.World, def MissionDef, avatar *engine.GameObject) (*MissionControl, error) {
	var win func() bool
	switch def.Win {
	case WinAllRingsPassed:
		win = game.AllRingsPassed(w)
	default:
		return nil, fmt.Errorf("%w: win condition %q", ErrUnknownKind, def.Win)
	}
	var start func() bool
	if def.TimerStartDistance > 0 {
		if avatar == nil {
			return nil, fmt.Errorf("timed mission needs an avatar")
		}
		start = game.MinDistance(avatar, avatar.Position(), def.TimerStartDistance)
	}
	return &MissionControl{MissionControl: game.NewMissionControl(w, win, start), Def: def}, nil
}

// --- Saving ---

// Save writes the level's current objects to path. Objects that are not
// one of the known kinds are skipped.
func Save(path string, lvl *Level) error {
	f := File{Name: lvl.Name, PlayerName: lvl.PlayerName}
	if lvl.Mission != nil {
		def := lvl.Mission.Def
		f.Mission = &def
	}
	for _, g := range lvl.World.Objects() {
		def, ok := describe(g)
		if !ok {
			continue
		}
		f.Objects = append(f.Objects, def)
	}

	data, err := yaml.Marshal(&f)
	if err != nil {
		return fmt.Errorf("marshal level: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write level: %w", err)
	}
	return nil
}

func describe(g *engine.GameObject) (ObjectDef, bool) {
	def := ObjectDef{
		Name:     g.Name,
		Position: [3]float64(g.Position()),
	}
	if r := g.Rotation(); r != geom.Identity {
		def.Rotation = r[:]
	}

	var kindTag string
	switch {
	case engine.GetComponent[*game.Avatar](g) != nil:
		def.Kind, kindTag = KindAvatar, game.AvatarTag
	case engine.GetComponent[*game.TargetRing](g) != nil:
		def.Kind, kindTag = KindRing, game.RingTag
		def.Radius = engine.GetComponent[*game.TargetRing](g).Radius
	case engine.GetComponent[*game.TestCube](g) != nil:
		def.Kind = KindCube
		def.Scale = engine.GetComponent[*game.TestCube](g).Scale
	case engine.GetComponent[*game.Landscape](g) != nil:
		def.Kind, kindTag = KindLandscape, game.LandscapeTag
		land := engine.GetComponent[*game.Landscape](g)
		for _, v := range land.Vertices {
			def.Vertices = append(def.Vertices, [3]float64(v))
		}
		def.Indices = land.Indices
	default:
		return def, false
	}

	for _, t := range g.Tags {
		if t != kindTag {
			def.Tags = append(def.Tags, t)
		}
	}
	for _, c := range g.Components() {
		if name, props, ok := engine.SerializeScript(c); ok {
			def.Scripts = append(def.Scripts, ScriptDef{Name: name, Props: props})
		}
	}
	return def, true
}
