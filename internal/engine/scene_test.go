package engine

import "testing"

func names(objs []*GameObject) []string {
	out := make([]string, len(objs))
	for i, g := range objs {
		out[i] = g.Name
	}
	return out
}

func sameNames(t *testing.T, got []*GameObject, want ...string) {
	t.Helper()
	n := names(got)
	if len(n) != len(want) {
		t.Fatalf("Expected %v, got %v", want, n)
	}
	for i := range want {
		if n[i] != want[i] {
			t.Fatalf("Expected %v, got %v", want, n)
		}
	}
}

// Objects step and draw in registration order, so removal must not
// reshuffle the rest.
func TestSceneRemoveKeepsOrder(t *testing.T) {
	scene := NewScene("Test")
	ring := NewGameObject("Ring")
	avatar := NewGameObject("Avatar")
	cube := NewGameObject("Cube")
	scene.AddGameObject(ring)
	scene.AddGameObject(avatar)
	scene.AddGameObject(cube)
	scene.AddGameObject(avatar)
	sameNames(t, scene.GameObjects, "Ring", "Avatar", "Cube")

	scene.RemoveGameObject(avatar)
	sameNames(t, scene.GameObjects, "Ring", "Cube")
	if avatar.Scene != nil {
		t.Error("Removed object should have nil Scene")
	}

	scene.RemoveGameObject(avatar)
	sameNames(t, scene.GameObjects, "Ring", "Cube")

	scene.AddGameObject(avatar)
	sameNames(t, scene.GameObjects, "Ring", "Cube", "Avatar")
	if scene.FindByUID(avatar.UID) != avatar {
		t.Error("Re-added object should resolve by UID")
	}
}

func TestSceneRefFollowsMembership(t *testing.T) {
	scene := &Scene{Name: "Lazy"}
	ring := NewGameObject("Ring")
	avatar := NewGameObject("Avatar")
	scene.AddGameObject(ring)
	scene.AddGameObject(avatar)

	var passedBy GameObjectRef
	passedBy.Set(avatar)
	if passedBy.Get(scene) != avatar {
		t.Fatal("ref should resolve while the object is in the scene")
	}

	scene.RemoveGameObject(avatar)
	if passedBy.Get(scene) != nil {
		t.Error("ref should not resolve a removed object")
	}
	if scene.FindByUID(ring.UID) != ring {
		t.Error("other objects should still resolve")
	}
}

func TestSceneFindByTagInOrder(t *testing.T) {
	scene := NewScene("Test")
	for _, name := range []string{"R1", "Avatar", "R2", "R3"} {
		g := NewGameObject(name)
		if name == "Avatar" {
			g.Tags = []string{"avatar"}
		} else {
			g.Tags = []string{"ring", "bonus"}
		}
		scene.AddGameObject(g)
	}
	sameNames(t, scene.FindByTag("ring"), "R1", "R2", "R3")
	sameNames(t, scene.FindByTag("avatar"), "Avatar")
	if got := scene.FindByTag("landscape"); got != nil {
		t.Errorf("Expected nil for an unused tag, got %v", names(got))
	}
	if scene.FindByName("R2") == nil || scene.FindByName("R4") != nil {
		t.Error("FindByName mismatch")
	}
}

type startCounter struct {
	BaseComponent
	starts int
}

func (s *startCounter) Start() { s.starts++ }

func TestSceneStartRunsComponentsOnce(t *testing.T) {
	scene := NewScene("Test")
	a := NewGameObject("A")
	sa := &startCounter{}
	a.AddComponent(sa)
	scene.AddGameObject(a)
	scene.Start()

	b := NewGameObject("B")
	sb := &startCounter{}
	b.AddComponent(sb)
	scene.AddGameObject(b)
	scene.Start()

	if sa.starts != 1 || sb.starts != 1 {
		t.Errorf("Expected one Start each, got %d/%d", sa.starts, sb.starts)
	}
	if sa.GetGameObject() != a {
		t.Error("component not bound to its object")
	}
}

type drawCounter struct {
	BaseComponent
	draws int
}

func (d *drawCounter) InDraw(r Renderer) { d.draws++ }

func TestSceneDrawSkipsInactive(t *testing.T) {
	scene := NewScene("Test")
	active := NewGameObject("Active")
	hidden := NewGameObject("Hidden")
	hidden.Active = false
	a, h := &drawCounter{}, &drawCounter{}
	active.AddComponent(a)
	hidden.AddComponent(h)
	scene.AddGameObject(active)
	scene.AddGameObject(hidden)

	r := &recordingRenderer{}
	scene.Draw(r)

	if a.draws != 1 || h.draws != 0 {
		t.Errorf("Expected draws 1/0, got %d/%d", a.draws, h.draws)
	}
	if r.depth != 0 || r.pushes != 1 {
		t.Errorf("Unbalanced transforms: depth %d, pushes %d", r.depth, r.pushes)
	}
}
