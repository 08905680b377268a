package engine

import (
	"testing"

	"gopkg.in/yaml.v3"
)

// withRegistry runs the test against an empty registry and restores the
// real one afterwards.
func withRegistry(t *testing.T) {
	t.Helper()
	saved := scriptRegistry
	scriptRegistry = map[string]scriptEntry{}
	t.Cleanup(func() { scriptRegistry = saved })
}

type spinner struct {
	BaseComponent
	Speed float64
	Axis  [3]float64
}

func spinnerFactory(props map[string]any) Component {
	return &spinner{
		Speed: PropFloat(props, "speed", 90),
		Axis: [3]float64{
			PropFloat(props, "axisX", 0),
			PropFloat(props, "axisY", 1),
			PropFloat(props, "axisZ", 0),
		},
	}
}

func spinnerSerializer(c Component) map[string]any {
	s, ok := c.(*spinner)
	if !ok {
		return nil
	}
	return map[string]any{"speed": s.Speed, "axisX": s.Axis[0], "axisY": s.Axis[1], "axisZ": s.Axis[2]}
}

// decodeProps decodes props the way a level file does.
func decodeProps(t *testing.T, src string) map[string]any {
	t.Helper()
	var props map[string]any
	if err := yaml.Unmarshal([]byte(src), &props); err != nil {
		t.Fatalf("decode props: %v", err)
	}
	return props
}

func TestPropFloatLevelTypes(t *testing.T) {
	props := decodeProps(t, "{speed: 45, radius: 2.5, name: fast, big: 12345678901}")
	props["f32"] = float32(0.5)

	tests := []struct {
		key  string
		want float64
	}{
		{"speed", 45},
		{"radius", 2.5},
		{"big", 12345678901},
		{"f32", 0.5},
		{"name", -1},
		{"missing", -1},
	}
	for _, tt := range tests {
		if got := PropFloat(props, tt.key, -1); got != tt.want {
			t.Errorf("PropFloat(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}
	if PropFloat(nil, "speed", 7) != 7 {
		t.Error("nil props should yield the default")
	}
}

func TestCreateScriptFromLevelProps(t *testing.T) {
	withRegistry(t)
	RegisterScript("Spinner", spinnerFactory, spinnerSerializer)

	c := CreateScript("Spinner", decodeProps(t, "{speed: 45, axisX: 1, axisY: 1}"))
	s, ok := c.(*spinner)
	if !ok {
		t.Fatalf("Expected *spinner, got %T", c)
	}
	if s.Speed != 45 || s.Axis != [3]float64{1, 1, 0} {
		t.Errorf("Unexpected script %+v", s)
	}

	d := CreateScript("Spinner", nil).(*spinner)
	if d.Speed != 90 || d.Axis != [3]float64{0, 1, 0} {
		t.Errorf("Expected defaults, got %+v", d)
	}

	if CreateScript("NoSuchScript", nil) != nil {
		t.Error("Unknown scripts should create nothing")
	}
}

func TestSerializeScriptRoundTrip(t *testing.T) {
	withRegistry(t)
	RegisterScript("Spinner", spinnerFactory, spinnerSerializer)

	in := &spinner{Speed: 30, Axis: [3]float64{0, 0, 1}}
	name, props, ok := SerializeScript(in)
	if !ok || name != "Spinner" {
		t.Fatalf("SerializeScript = %q, %v", name, ok)
	}

	data, err := yaml.Marshal(props)
	if err != nil {
		t.Fatal(err)
	}
	out := CreateScript(name, decodeProps(t, string(data))).(*spinner)
	if out.Speed != in.Speed || out.Axis != in.Axis {
		t.Errorf("Round trip changed the script: %+v -> %+v", in, out)
	}
}

func TestSerializeScriptSkipsUnclaimed(t *testing.T) {
	withRegistry(t)
	RegisterScript("Anon", spinnerFactory, nil)
	RegisterScript("Spinner", spinnerFactory, spinnerSerializer)
	RegisterScript("Bspinner", spinnerFactory, spinnerSerializer)

	name, _, ok := SerializeScript(&spinner{})
	if !ok || name != "Bspinner" {
		t.Errorf("Expected the first claiming name in sorted order, got %q", name)
	}
	if _, _, ok := SerializeScript(&BaseComponent{}); ok {
		t.Error("Components no serializer claims should not serialize")
	}

	got := RegisteredScripts()
	want := []string{"Anon", "Bspinner", "Spinner"}
	if len(got) != len(want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Expected %v, got %v", want, got)
		}
	}
}

func TestRegisterScriptDuplicatePanics(t *testing.T) {
	withRegistry(t)
	RegisterScript("Spinner", spinnerFactory, spinnerSerializer)

	defer func() {
		r := recover()
		if r != `script "Spinner" already registered` {
			t.Errorf("Unexpected panic value %v", r)
		}
	}()
	RegisterScript("Spinner", spinnerFactory, nil)
}
