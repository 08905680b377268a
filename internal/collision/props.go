package collision

import (
	"fmt"

	"orbitribbon/internal/physics"
)

// Props are the collision properties of one leaf geom. Geoms without
// props are invisible to the detector.
type Props struct {
	// Push enables contact joints. Both geoms of a pair must have it set
	// for either one to be pushed.
	Push bool
	// Priority decides which side of a pushing pair moves: equal
	// priorities push both, otherwise only the lower one is pushed.
	Priority int
}

// DefaultProps returns the properties most objects use.
func DefaultProps() Props {
	return Props{Push: true, Priority: 1}
}

// Tag is what a geom carries once it has props. Owner points back at
// whatever object the geom belongs to, typically an *engine.GameObject.
type Tag struct {
	Props
	Owner any
}

// Attach tags a leaf geom with props. Tagging a space, or tagging a geom
// twice, is a programming error and panics.
func Attach(n physics.Node, p Props) *Tag {
	g, ok := n.(*physics.Geom)
	if !ok || g == nil {
		panic(fmt.Sprintf("collision: props can only be attached to leaf geoms, got %T", n))
	}
	if TagOf(g) != nil {
		panic(fmt.Sprintf("collision: %s geom already has props", g.Class()))
	}
	if g.Data() != nil {
		panic(fmt.Sprintf("collision: %s geom data slot is taken by %T", g.Class(), g.Data()))
	}
	t := &Tag{Props: p}
	g.SetData(t)
	return t
}

// TagOf returns the tag of g, or nil for untagged geoms.
func TagOf(g *physics.Geom) *Tag {
	if g == nil {
		return nil
	}
	t, _ := g.Data().(*Tag)
	return t
}

// OwnerOf returns the owner recorded on g's tag.
func OwnerOf(g *physics.Geom) any {
	if t := TagOf(g); t != nil {
		return t.Owner
	}
	return nil
}
