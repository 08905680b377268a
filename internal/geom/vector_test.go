package geom

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
)

func TestElementwise(t *testing.T) {
	a := mgl64.Vec3{2, 4, 6}
	b := mgl64.Vec3{1, 2, 3}
	assert.Equal(t, mgl64.Vec3{2, 8, 18}, MulElem(a, b))
	assert.Equal(t, mgl64.Vec3{2, 2, 2}, DivElem(a, b))
}

func TestToLength(t *testing.T) {
	v := ToLength(mgl64.Vec3{3, 0, 4}, 10)
	assert.InDelta(t, 10, v.Len(), 1e-12)
	assert.InDelta(t, 6, v.X(), 1e-12)
	assert.Equal(t, mgl64.Vec3{}, ToLength(mgl64.Vec3{}, 5))
}

func TestDistAndAverage(t *testing.T) {
	assert.InDelta(t, 5, Dist(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{3, 4, 0}), 1e-12)
	avg := Average([]mgl64.Vec3{{0, 0, 0}, {2, 2, 2}, {4, 4, 4}})
	assert.Equal(t, mgl64.Vec3{2, 2, 2}, avg)
	assert.Equal(t, mgl64.Vec3{}, Average(nil))
}

func TestPerpendicularBasis(t *testing.T) {
	for _, n := range []mgl64.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}, mgl64.Vec3{1, 1, 1}.Normalize()} {
		u, v := Perpendicular(n)
		assert.InDelta(t, 0, u.Dot(n), 1e-12)
		assert.InDelta(t, 0, v.Dot(n), 1e-12)
		assert.InDelta(t, 0, u.Dot(v), 1e-12)
		assert.InDelta(t, 1, u.Len(), 1e-12)
		assert.InDelta(t, 1, v.Len(), 1e-12)
	}
}

func TestSafeNormalize(t *testing.T) {
	_, ok := SafeNormalize(mgl64.Vec3{})
	assert.False(t, ok)
	n, ok := SafeNormalize(mgl64.Vec3{0, 0, 2})
	assert.True(t, ok)
	assert.Equal(t, mgl64.Vec3{0, 0, 1}, n)
}
