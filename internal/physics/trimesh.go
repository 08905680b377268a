package physics

import (
	"errors"
	"fmt"

	"orbitribbon/internal/geom"

	"github.com/go-gl/mathgl/mgl64"
)

// ErrBadMesh is returned for index buffers that do not describe triangles
// over the given vertices.
var ErrBadMesh = errors.New("bad triangle mesh")

// Triangle is one mesh face with a precomputed unit normal.
type Triangle struct {
	V0, V1, V2 mgl64.Vec3
	Normal     mgl64.Vec3
}

// bvhNode is a node in the bounding volume hierarchy over mesh triangles.
type bvhNode struct {
	Bounds    AABB
	Left      *bvhNode
	Right     *bvhNode
	Triangles []int // indices into the triangle array, leaves only
}

// TriMeshData is immutable triangle data in the geom's local frame,
// shared by every geom built from the same mesh.
type TriMeshData struct {
	Triangles []Triangle
	root      *bvhNode
}

// NewTriMeshData builds mesh data from decoded vertex and index buffers.
// Degenerate triangles are dropped.
func NewTriMeshData(vertices []mgl64.Vec3, indices []int) (*TriMeshData, error) {
	if len(indices)%3 != 0 {
		return nil, fmt.Errorf("%w: %d indices is not a multiple of 3", ErrBadMesh, len(indices))
	}
	m := &TriMeshData{}
	for i := 0; i < len(indices); i += 3 {
		var v [3]mgl64.Vec3
		for k := 0; k < 3; k++ {
			idx := indices[i+k]
			if idx < 0 || idx >= len(vertices) {
				return nil, fmt.Errorf("%w: index %d out of range (%d vertices)", ErrBadMesh, idx, len(vertices))
			}
			v[k] = vertices[idx]
		}
		n, ok := geom.SafeNormalize(v[1].Sub(v[0]).Cross(v[2].Sub(v[0])))
		if !ok {
			continue
		}
		m.Triangles = append(m.Triangles, Triangle{V0: v[0], V1: v[1], V2: v[2], Normal: n})
	}
	m.buildBVH()
	return m, nil
}

// Bounds returns the local-frame bounds of the mesh.
func (m *TriMeshData) Bounds() AABB {
	if m.root == nil {
		return emptyAABB
	}
	return m.root.Bounds
}

func (m *TriMeshData) buildBVH() {
	if len(m.Triangles) == 0 {
		return
	}
	indices := make([]int, len(m.Triangles))
	for i := range indices {
		indices[i] = i
	}
	m.root = m.buildNode(indices, 0)
}

func (m *TriMeshData) buildNode(indices []int, depth int) *bvhNode {
	node := &bvhNode{Bounds: m.computeBounds(indices)}

	if len(indices) <= 4 || depth > 20 {
		node.Triangles = indices
		return node
	}

	// split on the longest axis
	size := node.Bounds.Max.Sub(node.Bounds.Min)
	axis := 0
	if size[1] > size[axis] {
		axis = 1
	}
	if size[2] > size[axis] {
		axis = 2
	}

	mid := m.partition(indices, axis)
	if mid == 0 || mid == len(indices) {
		node.Triangles = indices
		return node
	}

	node.Left = m.buildNode(indices[:mid], depth+1)
	node.Right = m.buildNode(indices[mid:], depth+1)
	return node
}

func (m *TriMeshData) computeBounds(indices []int) AABB {
	bounds := emptyAABB
	for _, idx := range indices {
		tri := &m.Triangles[idx]
		bounds = bounds.Extend(tri.V0).Extend(tri.V1).Extend(tri.V2)
	}
	return bounds
}

func centroid(t *Triangle) mgl64.Vec3 {
	return t.V0.Add(t.V1).Add(t.V2).Mul(1.0 / 3.0)
}

// partition splits indices around the mean centroid on axis.
func (m *TriMeshData) partition(indices []int, axis int) int {
	center := 0.0
	for _, idx := range indices {
		center += centroid(&m.Triangles[idx])[axis]
	}
	center /= float64(len(indices))

	left, right := 0, len(indices)-1
	for left <= right {
		if centroid(&m.Triangles[indices[left]])[axis] < center {
			left++
		} else {
			indices[left], indices[right] = indices[right], indices[left]
			right--
		}
	}
	return left
}

// query returns triangles whose node bounds overlap box (local frame).
func (m *TriMeshData) query(box AABB) []int {
	var out []int
	var walk func(n *bvhNode)
	walk = func(n *bvhNode) {
		if n == nil || !n.Bounds.Intersects(box) {
			return
		}
		if n.Triangles != nil {
			out = append(out, n.Triangles...)
			return
		}
		walk(n.Left)
		walk(n.Right)
	}
	walk(m.root)
	return out
}

// closestPointOnTriangle finds the closest point on a triangle to point p
func closestPointOnTriangle(p, a, b, c mgl64.Vec3) mgl64.Vec3 {
	ab := b.Sub(a)
	ac := c.Sub(a)
	ap := p.Sub(a)

	d1 := ab.Dot(ap)
	d2 := ac.Dot(ap)
	if d1 <= 0 && d2 <= 0 {
		return a
	}

	bp := p.Sub(b)
	d3 := ab.Dot(bp)
	d4 := ac.Dot(bp)
	if d3 >= 0 && d4 <= d3 {
		return b
	}

	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		v := d1 / (d1 - d3)
		return a.Add(ab.Mul(v))
	}

	cp := p.Sub(c)
	d5 := ab.Dot(cp)
	d6 := ac.Dot(cp)
	if d6 >= 0 && d5 <= d6 {
		return c
	}

	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		w := d2 / (d2 - d6)
		return a.Add(ac.Mul(w))
	}

	va := d3*d6 - d5*d4
	if va <= 0 && (d4-d3) >= 0 && (d5-d6) >= 0 {
		w := (d4 - d3) / ((d4 - d3) + (d5 - d6))
		return b.Add(c.Sub(b).Mul(w))
	}

	denom := 1.0 / (va + vb + vc)
	v := vb * denom
	w := vc * denom
	return a.Add(ab.Mul(v)).Add(ac.Mul(w))
}
