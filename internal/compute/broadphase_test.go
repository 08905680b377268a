package compute

import (
	"math/rand"
	"sort"
	"testing"

	"orbitribbon/internal/physics"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackBoxesRoundsOutward(t *testing.T) {
	b := physics.AABB{Min: mgl64.Vec3{0.1, -0.1, 1}, Max: mgl64.Vec3{0.3, 0.7, 2}}
	packed := packBoxes([]physics.AABB{b})
	require.Len(t, packed, 1)
	for k := 0; k < 3; k++ {
		assert.LessOrEqual(t, float64(packed[0].Min[k]), b.Min[k])
		assert.GreaterOrEqual(t, float64(packed[0].Max[k]), b.Max[k])
	}
	assert.Equal(t, float32(1), packed[0].Min[2], "exact values are kept")
}

func TestUnpackPairsDropsOutOfRange(t *testing.T) {
	got := unpackPairs([]gpuPair{{0, 1}, {2, 9}, {1, 2}}, 3)
	assert.Equal(t, [][2]int{{0, 1}, {1, 2}}, got)
}

func TestNewPairFinderWithoutGPU(t *testing.T) {
	if Get() != nil {
		t.Skip("GPU already initialized")
	}
	_, err := NewPairFinder(16, 16)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func randomBoxes(n int) []physics.AABB {
	rng := rand.New(rand.NewSource(42))
	boxes := make([]physics.AABB, n)
	for i := range boxes {
		c := mgl64.Vec3{rng.Float64() * 50, rng.Float64() * 50, rng.Float64() * 50}
		h := 0.5 + rng.Float64()
		boxes[i] = physics.AABB{Min: c.Sub(mgl64.Vec3{h, h, h}), Max: c.Add(mgl64.Vec3{h, h, h})}
	}
	return boxes
}

func TestPairFinderMatchesCPU(t *testing.T) {
	if _, err := Initialize(); err != nil {
		t.Skipf("no GPU: %v", err)
	}
	boxes := randomBoxes(500)
	pf, err := NewPairFinder(uint32(len(boxes)), 20000)
	require.NoError(t, err)
	defer pf.Release()

	got, err := pf.FindPairs(boxes)
	require.NoError(t, err)
	sort.Slice(got, func(a, b int) bool {
		if got[a][0] != got[b][0] {
			return got[a][0] < got[b][0]
		}
		return got[a][1] < got[b][1]
	})

	var want [][2]int
	for i := range boxes {
		for j := i + 1; j < len(boxes); j++ {
			if boxes[i].Intersects(boxes[j]) {
				want = append(want, [2]int{i, j})
			}
		}
	}
	assert.Equal(t, want, got)

	_, err = pf.FindPairs(randomBoxes(501))
	assert.ErrorIs(t, err, ErrTooManyObjects)
}
