package engine

import "testing"

func TestGameObjectRefGet(t *testing.T) {
	scene := NewScene("Test")
	obj := NewGameObject("Target")
	scene.AddGameObject(obj)

	var ref GameObjectRef
	ref.Set(obj)

	found := ref.Get(scene)
	if found != obj {
		t.Errorf("Get() failed: expected %v, got %v", obj, found)
	}
}

func TestGameObjectRefGetNil(t *testing.T) {
	scene := NewScene("Test")
	ref := GameObjectRef{UID: 0}

	if ref.Get(scene) != nil {
		t.Error("Get() with UID=0 should return nil")
	}

	ref2 := GameObjectRef{UID: 99999}
	if ref2.Get(scene) != nil {
		t.Error("Get() with non-existent UID should return nil")
	}

	ref3 := GameObjectRef{UID: 123}
	if ref3.Get(nil) != nil {
		t.Error("Get() with nil scene should return nil")
	}
}

func TestGameObjectRefAfterRemoval(t *testing.T) {
	scene := NewScene("Test")
	obj := NewGameObject("Avatar")
	scene.AddGameObject(obj)

	var ref GameObjectRef
	ref.Set(obj)
	scene.RemoveGameObject(obj)

	if !ref.IsValid() {
		t.Error("ref should still be set")
	}
	if ref.Get(scene) != nil {
		t.Error("removed object should not resolve")
	}
}

func TestGameObjectRefSetClear(t *testing.T) {
	obj := NewGameObject("Target")
	var ref GameObjectRef

	if ref.IsValid() {
		t.Error("zero ref should be invalid")
	}
	ref.Set(obj)
	if ref.UID != obj.UID {
		t.Errorf("Expected UID %d, got %d", obj.UID, ref.UID)
	}
	ref.Set(nil)
	if ref.IsValid() {
		t.Error("Set(nil) should clear the ref")
	}
	ref.Set(obj)
	ref.Clear()
	if ref.UID != 0 {
		t.Error("Clear should reset UID")
	}
}
