package physics

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
)

// NearCallback receives a pair of nodes whose bounds overlap.
type NearCallback func(a, b Node)

// PairFinder is an accelerated broad phase. It returns index pairs into
// boxes whose bounds may overlap; results are re-checked on the CPU.
type PairFinder interface {
	FindPairs(boxes []AABB) ([][2]int, error)
}

// SpaceKind selects the broad-phase algorithm of a space.
type SpaceKind int

const (
	// SimpleSpace tests every pair of children.
	SimpleSpace SpaceKind = iota
	// HashSpace buckets children into a uniform grid first.
	HashSpace
)

// DefaultCellSize is the hash space grid cell edge length.
const DefaultCellSize = 5.0

// maxCellsPerNode caps how many grid cells one child may occupy; bigger
// children go to a list that is tested against everything.
const maxCellsPerNode = 512

// cellKey addresses one grid cell.
type cellKey struct {
	X, Y, Z int
}

// Space groups nodes for broad-phase collision. A space is itself a node,
// so spaces nest.
type Space struct {
	kind     SpaceKind
	children []Node
	parent   *Space

	CellSize float64

	finder          PairFinder
	finderThreshold int
	usingFinder     bool

	locked int
}

// NewSpace creates a space and adds it to parent if parent is not nil.
func NewSpace(parent *Space, kind SpaceKind) *Space {
	s := &Space{kind: kind, CellSize: DefaultCellSize}
	if parent != nil {
		parent.Add(s)
	}
	return s
}

func (s *Space) Kind() SpaceKind   { return s.kind }
func (s *Space) IsSpace() bool     { return true }
func (s *Space) Space() *Space     { return s.parent }
func (s *Space) setSpace(p *Space) { s.parent = p }
func (s *Space) NumChildren() int  { return len(s.children) }
func (s *Space) Child(i int) Node  { return s.children[i] }

// Children returns the space's direct children. Do not modify the slice.
func (s *Space) Children() []Node { return s.children }

// Add inserts n. A node lives in at most one space, and spaces cannot be
// changed while they are colliding.
func (s *Space) Add(n Node) {
	s.mustBeUnlocked("add to")
	if n.Space() != nil {
		panic("physics: node already belongs to a space")
	}
	if sp, ok := n.(*Space); ok && sp == s {
		panic("physics: space cannot contain itself")
	}
	n.setSpace(s)
	s.children = append(s.children, n)
}

// Remove takes n out of the space. Removing a node that is not a child is
// a no-op.
func (s *Space) Remove(n Node) {
	s.mustBeUnlocked("remove from")
	for i, c := range s.children {
		if c == n {
			s.children = append(s.children[:i], s.children[i+1:]...)
			n.setSpace(nil)
			return
		}
	}
}

// Contains reports whether n is a direct child.
func (s *Space) Contains(n Node) bool {
	return n != nil && n.Space() == s
}

// Locked reports whether the space is in the middle of a collide pass.
func (s *Space) Locked() bool { return s.locked > 0 }

func (s *Space) mustBeUnlocked(op string) {
	for p := s; p != nil; p = p.parent {
		if p.locked > 0 {
			panic(fmt.Sprintf("physics: cannot %s a space while it is colliding", op))
		}
	}
}

// AABB returns the union of the children's bounds.
func (s *Space) AABB() AABB {
	out := emptyAABB
	for _, c := range s.children {
		out = out.Union(c.AABB())
	}
	return out
}

// Leaves calls fn for every leaf geom under s, depth first.
func (s *Space) Leaves(fn func(*Geom)) {
	for _, c := range s.children {
		switch n := c.(type) {
		case *Geom:
			fn(n)
		case *Space:
			n.Leaves(fn)
		}
	}
}

// SetPairFinder installs an accelerated broad phase used once the space
// holds at least threshold children.
func (s *Space) SetPairFinder(f PairFinder, threshold int) {
	s.finder = f
	s.finderThreshold = threshold
}

// Collide reports every pair of direct children whose bounds overlap,
// once per pair, in child order. Leaves sharing a body are skipped.
func (s *Space) Collide(cb NearCallback) {
	s.locked++
	defer func() { s.locked-- }()

	boxes := make([]AABB, len(s.children))
	for i, c := range s.children {
		boxes[i] = c.AABB()
	}

	var pairs [][2]int
	switch {
	case s.finder != nil && len(s.children) >= s.finderThreshold:
		if !s.usingFinder {
			slog.Info("Physics: GPU broad-phase ON", "objects", len(s.children))
			s.usingFinder = true
		}
		found, err := s.finder.FindPairs(boxes)
		if err != nil {
			slog.Warn("Physics: GPU broad-phase failed, using grid", "err", err)
			pairs = s.gridPairs(boxes)
		} else {
			pairs = normalizePairs(found, len(boxes))
		}
	case s.kind == HashSpace:
		if s.usingFinder {
			slog.Info("Physics: GPU broad-phase OFF", "objects", len(s.children))
			s.usingFinder = false
		}
		pairs = s.gridPairs(boxes)
	default:
		pairs = allPairs(len(boxes))
	}

	children := s.children
	for _, p := range pairs {
		a, b := children[p[0]], children[p[1]]
		if !boxes[p[0]].Intersects(boxes[p[1]]) || sameBody(a, b) {
			continue
		}
		cb(a, b)
	}
}

func allPairs(n int) [][2]int {
	pairs := make([][2]int, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			pairs = append(pairs, [2]int{i, j})
		}
	}
	return pairs
}

// normalizePairs orders each pair, drops duplicates and out-of-range
// indices, and sorts the result.
func normalizePairs(in [][2]int, n int) [][2]int {
	seen := make(map[[2]int]bool, len(in))
	out := make([][2]int, 0, len(in))
	for _, p := range in {
		i, j := p[0], p[1]
		if i > j {
			i, j = j, i
		}
		if i == j || i < 0 || j >= n {
			continue
		}
		k := [2]int{i, j}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a][0] != out[b][0] {
			return out[a][0] < out[b][0]
		}
		return out[a][1] < out[b][1]
	})
	return out
}

func (s *Space) cellOf(v float64) int {
	return int(math.Floor(v / s.CellSize))
}

// gridPairs buckets each box into the cells it covers and pairs up
// boxes sharing a cell.
func (s *Space) gridPairs(boxes []AABB) [][2]int {
	if s.CellSize <= 0 {
		s.CellSize = DefaultCellSize
	}
	grid := make(map[cellKey][]int)
	var big []int
	for i, b := range boxes {
		if !b.Valid() {
			continue
		}
		lo := cellKey{s.cellOf(b.Min[0]), s.cellOf(b.Min[1]), s.cellOf(b.Min[2])}
		hi := cellKey{s.cellOf(b.Max[0]), s.cellOf(b.Max[1]), s.cellOf(b.Max[2])}
		cells := (hi.X - lo.X + 1) * (hi.Y - lo.Y + 1) * (hi.Z - lo.Z + 1)
		if cells > maxCellsPerNode || cells <= 0 {
			big = append(big, i)
			continue
		}
		for x := lo.X; x <= hi.X; x++ {
			for y := lo.Y; y <= hi.Y; y++ {
				for z := lo.Z; z <= hi.Z; z++ {
					k := cellKey{x, y, z}
					grid[k] = append(grid[k], i)
				}
			}
		}
	}

	var pairs [][2]int
	for _, members := range grid {
		for a := 0; a < len(members); a++ {
			for b := a + 1; b < len(members); b++ {
				pairs = append(pairs, [2]int{members[a], members[b]})
			}
		}
	}
	for _, i := range big {
		for j := range boxes {
			if j != i && boxes[j].Valid() {
				pairs = append(pairs, [2]int{i, j})
			}
		}
	}
	return normalizePairs(pairs, len(boxes))
}

// sameBody reports whether a and b are leaves attached to one body.
func sameBody(a, b Node) bool {
	ga, ok := a.(*Geom)
	if !ok {
		return false
	}
	gb, ok := b.(*Geom)
	if !ok {
		return false
	}
	return ga.body != nil && ga.body == gb.body
}

// Collide2 reports overlapping pairs between two nodes, descending one
// level into whichever side is a space. Argument order is preserved: a
// node from a's side is always passed first.
func Collide2(a, b Node, cb NearCallback) {
	if a == nil || b == nil || a == b {
		return
	}
	ba, bb := a.AABB(), b.AABB()
	if !ba.Intersects(bb) {
		return
	}
	if sa, ok := a.(*Space); ok {
		sa.locked++
		defer func() { sa.locked-- }()
		for _, c := range sa.children {
			if c.AABB().Intersects(bb) && !sameBody(c, b) {
				cb(c, b)
			}
		}
		return
	}
	if sb, ok := b.(*Space); ok {
		sb.locked++
		defer func() { sb.locked-- }()
		for _, c := range sb.children {
			if ba.Intersects(c.AABB()) && !sameBody(a, c) {
				cb(a, c)
			}
		}
		return
	}
	if !sameBody(a, b) {
		cb(a, b)
	}
}
