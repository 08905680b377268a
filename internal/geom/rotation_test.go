package geom

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRotationRejectsWrongLength(t *testing.T) {
	for _, n := range []int{0, 3, 8, 10, 16} {
		_, err := NewRotation(make([]float64, n))
		assert.Truef(t, errors.Is(err, ErrInvalidRotation), "length %d", n)
	}
	r, err := NewRotation([]float64{1, 0, 0, 0, 1, 0, 0, 0, 1})
	require.NoError(t, err)
	assert.Equal(t, Identity, r)
}

func TestRowMajorConversion(t *testing.T) {
	// 90 degrees about Z: X axis maps to Y.
	r := AxisAngle(mgl64.Vec3{0, 0, 1}, math.Pi/2)
	assert.InDelta(t, 1, r.Apply(mgl64.Vec3{1, 0, 0}).Y(), 1e-12)

	rm := r.ToRowMajor()
	// row 0 of the matrix is (cos, -sin, 0)
	assert.InDelta(t, 0, rm[0], 1e-12)
	assert.InDelta(t, -1, rm[1], 1e-12)
	assert.InDelta(t, 0, rm[2], 1e-12)

	assert.Equal(t, r, FromRowMajor(rm))
}

func TestRowMajorIsTranspose(t *testing.T) {
	r := RotationMatrix{1, 2, 3, 4, 5, 6, 7, 8, 9}
	assert.Equal(t, [9]float64{1, 4, 7, 2, 5, 8, 3, 6, 9}, r.ToRowMajor())
	assert.Equal(t, r, FromRowMajor(r.ToRowMajor()))
}

func TestAxisAngleIsOrthonormal(t *testing.T) {
	r := AxisAngle(mgl64.Vec3{1, 2, 3}, 0.7)
	assert.True(t, r.IsOrthonormal(1e-9))
	assert.False(t, RotationMatrix{2, 0, 0, 0, 1, 0, 0, 0, 1}.IsOrthonormal(1e-9))
	assert.Equal(t, Identity, AxisAngle(mgl64.Vec3{}, 1))
}

func TestAxes(t *testing.T) {
	r := AxisAngle(mgl64.Vec3{0, 1, 0}, math.Pi/2)
	// X axis rotated about Y by 90 degrees points at -Z
	x := r.Axis(0)
	assert.InDelta(t, 0, x.X(), 1e-12)
	assert.InDelta(t, -1, x.Z(), 1e-12)
}
