package geom

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ErrInvalidRotation is returned when a rotation is assigned from a
// sequence that does not hold exactly nine elements.
var ErrInvalidRotation = errors.New("invalid rotation matrix")

// RotationMatrix is a 3x3 orthonormal matrix stored column-major as a
// flat 9-element array: element (row i, col j) lives at index j*3+i.
// This is the convention used by scene objects and the renderer.
type RotationMatrix [9]float64

// Identity is the rotation that does nothing.
var Identity = RotationMatrix{1, 0, 0, 0, 1, 0, 0, 0, 1}

// NewRotation copies a 9-element column-major sequence into a
// RotationMatrix. Any other length is rejected with ErrInvalidRotation.
func NewRotation(values []float64) (RotationMatrix, error) {
	var r RotationMatrix
	if len(values) != 9 {
		return r, fmt.Errorf("%w: want 9 elements, got %d", ErrInvalidRotation, len(values))
	}
	copy(r[:], values)
	return r, nil
}

// ToRowMajor converts to the physics engine's row-major layout.
func (r RotationMatrix) ToRowMajor() [9]float64 {
	return [9]float64{
		r[0], r[3], r[6],
		r[1], r[4], r[7],
		r[2], r[5], r[8],
	}
}

// FromRowMajor converts an engine row-major matrix to column-major.
func FromRowMajor(m [9]float64) RotationMatrix {
	return RotationMatrix{
		m[0], m[3], m[6],
		m[1], m[4], m[7],
		m[2], m[5], m[8],
	}
}

// Mat3 returns the matrix as an mgl64.Mat3, which shares the layout.
func (r RotationMatrix) Mat3() mgl64.Mat3 {
	return mgl64.Mat3(r)
}

// FromMat3 wraps an mgl64.Mat3.
func FromMat3(m mgl64.Mat3) RotationMatrix {
	return RotationMatrix(m)
}

// Apply rotates v.
func (r RotationMatrix) Apply(v mgl64.Vec3) mgl64.Vec3 {
	return r.Mat3().Mul3x1(v)
}

// Axis returns local axis i (0=X, 1=Y, 2=Z) in world coordinates.
func (r RotationMatrix) Axis(i int) mgl64.Vec3 {
	return mgl64.Vec3{r[i*3], r[i*3+1], r[i*3+2]}
}

// Mul composes r followed by o, i.e. the result applies o first.
func (r RotationMatrix) Mul(o RotationMatrix) RotationMatrix {
	return FromMat3(r.Mat3().Mul3(o.Mat3()))
}

// AxisAngle builds a rotation of angle radians about axis.
func AxisAngle(axis mgl64.Vec3, angle float64) RotationMatrix {
	n, ok := SafeNormalize(axis)
	if !ok {
		return Identity
	}
	return FromMat3(mgl64.QuatRotate(angle, n).Mat4().Mat3())
}

// IsOrthonormal reports whether r is a rotation within tol.
func (r RotationMatrix) IsOrthonormal(tol float64) bool {
	m := r.Mat3()
	p := m.Transpose().Mul3(m)
	id := mgl64.Ident3()
	for i := range p {
		if math.Abs(p[i]-id[i]) > tol {
			return false
		}
	}
	return math.Abs(m.Det()-1) <= tol
}
