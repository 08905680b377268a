package level

import (
	"os"
	"path/filepath"
	"testing"

	"orbitribbon/internal/engine"
	"orbitribbon/internal/game"
	"orbitribbon/internal/geom"
	"orbitribbon/internal/physics"
	"orbitribbon/internal/scripts"
	"orbitribbon/internal/sim"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const testLevel = `
name: A01-Base
player_name: Quaternion Jungle
mission:
  win: all_rings_passed
  timer_start_distance: 5
objects:
  - kind: avatar
    position: [0, 0, -20]
  - kind: ring
    name: First
    position: [0, 0, 10]
    radius: 4
    tags: [bonus]
  - kind: ring
    position: [0, 0, 30]
  - kind: cube
    position: [3, 0, 0]
    scale: 2
    scripts:
      - name: Rotator
        props: {speed: 30}
      - name: NoSuchScript
  - kind: landscape
    name: Floor
    position: [0, -5, 0]
    vertices: [[-10, 0, -10], [10, 0, -10], [10, 0, 10], [-10, 0, 10]]
    indices: [0, 2, 1, 0, 3, 2]
`

func writeLevel(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "level.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func newWorld() *sim.World { return sim.New(sim.DefaultConfig()) }

func TestLoad(t *testing.T) {
	w := newWorld()
	lvl, err := Load(writeLevel(t, testLevel), w, &game.Intents{})
	require.NoError(t, err)

	assert.Equal(t, "A01-Base", lvl.Name)
	assert.Equal(t, "Quaternion Jungle", lvl.PlayerName)
	require.Len(t, w.Objects(), 5)

	require.NotNil(t, lvl.Avatar)
	assert.True(t, lvl.Avatar.HasTag(game.AvatarTag))
	assert.Equal(t, mgl64.Vec3{0, 0, -20}, lvl.Avatar.Position())

	first := w.Scene.FindByName("First")
	require.NotNil(t, first)
	assert.True(t, first.HasTag(game.RingTag))
	assert.True(t, first.HasTag("bonus"))
	assert.Equal(t, 4.0, engine.GetComponent[*game.TargetRing](first).Radius)

	second := w.Objects()[2]
	assert.Equal(t, DefaultRingRadius, engine.GetComponent[*game.TargetRing](second).Radius)

	cube := w.Objects()[3]
	assert.Equal(t, mgl64.Vec3{2, 2, 2}, cube.Geometry().(*physics.Geom).Sides())
	rot := engine.GetComponent[*scripts.Rotator](cube)
	require.NotNil(t, rot, "registered scripts are attached")
	assert.Equal(t, 30.0, rot.Speed)
	assert.Len(t, cube.Components(), 2, "unknown scripts are skipped")

	floor := w.Scene.FindByName("Floor")
	require.NotNil(t, floor)
	assert.True(t, w.Static.Contains(floor.Geometry()))

	require.NotNil(t, lvl.Mission)
	assert.True(t, lvl.Mission.Timed())
	assert.Equal(t, 1, w.PreStep.ListenerCount())
}

func TestLoadedMissionRuns(t *testing.T) {
	w := newWorld()
	lvl, err := Load(writeLevel(t, testLevel), w, nil)
	require.NoError(t, err)

	for _, g := range w.Scene.FindByTag(game.RingTag) {
		axis := g.Rotation().Axis(2)
		lvl.Avatar.SetPosition(g.Position().Sub(axis))
		w.Step()
		lvl.Avatar.SetPosition(g.Position().Add(axis))
		w.Step()
	}
	w.Step()
	assert.True(t, lvl.Mission.IsWon())
	assert.Greater(t, lvl.Mission.Elapsed(), 0.0)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want error
	}{
		{"unknown kind", "objects:\n  - kind: avatar\n  - kind: teapot\n", ErrUnknownKind},
		{"unknown win", "mission: {win: survive}\nobjects:\n  - kind: cube\n", ErrUnknownKind},
		{"bad rotation", "objects:\n  - kind: cube\n    rotation: [1, 0, 0]\n", geom.ErrInvalidRotation},
		{"bad mesh", "objects:\n  - kind: landscape\n    vertices: [[0, 0, 0]]\n    indices: [0, 1, 2]\n", physics.ErrBadMesh},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newWorld()
			_, err := Load(writeLevel(t, tt.body), w, nil)
			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, w.Objects(), "partial levels are torn down")
			assert.Zero(t, w.Dynamic.NumChildren())
			assert.Zero(t, w.Physics.BodyCount())
		})
	}
}

func TestLoadMissingAndMalformed(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), newWorld(), nil)
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Load(writeLevel(t, "objects: [\n"), newWorld(), nil)
	assert.Error(t, err)
}

func TestTimedMissionNeedsAvatar(t *testing.T) {
	body := "mission: {win: all_rings_passed, timer_start_distance: 1}\nobjects:\n  - kind: ring\n"
	_, err := Load(writeLevel(t, body), newWorld(), nil)
	assert.ErrorContains(t, err, "needs an avatar")
}

func TestSaveRoundTrip(t *testing.T) {
	w := newWorld()
	lvl, err := Load(writeLevel(t, testLevel), w, nil)
	require.NoError(t, err)
	lvl.Avatar.SetPosition(mgl64.Vec3{1, 2, 3})
	turned := geom.AxisAngle(mgl64.Vec3{0, 0, 1}, 0.5)
	require.NoError(t, lvl.Avatar.SetRotation(turned[:]))

	out := filepath.Join(t.TempDir(), "saved.yaml")
	require.NoError(t, Save(out, lvl))

	w2 := newWorld()
	lvl2, err := Load(out, w2, nil)
	require.NoError(t, err)

	assert.Equal(t, lvl.Name, lvl2.Name)
	assert.Equal(t, lvl.Mission.Def, lvl2.Mission.Def)
	require.Len(t, w2.Objects(), len(w.Objects()))
	for i, g := range w.Objects() {
		g2 := w2.Objects()[i]
		assert.Equal(t, g.Name, g2.Name)
		assert.Equal(t, g.Tags, g2.Tags)
		assert.Equal(t, g.Position(), g2.Position())
		assert.Equal(t, g.Rotation(), g2.Rotation())
		assert.Len(t, g2.Components(), len(g.Components()))
	}
	assert.Equal(t, 30.0, engine.GetComponent[*scripts.Rotator](w2.Objects()[3]).Speed)
}

func TestSaveSkipsUnknownObjects(t *testing.T) {
	w := newWorld()
	w.Add(engine.NewGameObject("marker"))
	out := filepath.Join(t.TempDir(), "saved.yaml")
	require.NoError(t, Save(out, &Level{Name: "empty", World: w}))

	var f File
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	require.NoError(t, yaml.Unmarshal(data, &f))
	assert.Empty(t, f.Objects)
	assert.Nil(t, f.Mission)
}

func TestBundledLevelScriptsResolve(t *testing.T) {
	path := filepath.Join("..", "..", "assets", "levels", "a01.yaml")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var f File
	require.NoError(t, yaml.Unmarshal(data, &f))

	registered := engine.RegisteredScripts()
	want := 0
	for _, def := range f.Objects {
		for _, s := range def.Scripts {
			assert.Contains(t, registered, s.Name, "object %q", def.Name)
			want++
		}
	}
	require.NotZero(t, want)

	w := newWorld()
	lvl, err := Load(path, w, nil)
	require.NoError(t, err)
	require.NotNil(t, lvl.Avatar)

	got := 0
	for _, obj := range w.Objects() {
		for _, c := range obj.Components() {
			if _, _, ok := engine.SerializeScript(c); ok {
				got++
			}
		}
	}
	assert.Equal(t, want, got, "every script in the level is attached")
	assert.NotPanics(t, func() {
		for i := 0; i < 10; i++ {
			w.Step()
		}
	})
}
