package engine

// GameObjectRef refers to a GameObject by UID, so holding one does not
// keep a destroyed object reachable.
type GameObjectRef struct {
	UID uint64 // 0 = none
}

// Get resolves the reference in scene. It returns nil for an empty
// reference or an object that has left the scene.
func (r GameObjectRef) Get(scene *Scene) *GameObject {
	if r.UID == 0 || scene == nil {
		return nil
	}
	return scene.FindByUID(r.UID)
}

// IsValid reports whether the reference is set. It does not check that
// the object still exists.
func (r GameObjectRef) IsValid() bool {
	return r.UID != 0
}

// Set points the reference at g; nil clears it.
func (r *GameObjectRef) Set(g *GameObject) {
	if g == nil {
		r.UID = 0
	} else {
		r.UID = g.UID
	}
}

func (r *GameObjectRef) Clear() {
	r.UID = 0
}
