package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Mass is a total mass plus the inertia tensor about the center of mass,
// expressed in the body frame.
type Mass struct {
	Total   float64
	Inertia mgl64.Mat3
}

// Axis selects a body-frame axis for shapes with a long axis.
type Axis int

const (
	AxisX Axis = 1
	AxisY Axis = 2
	AxisZ Axis = 3
)

// SphereMass returns the mass of a solid sphere with the given total mass.
func SphereMass(total, radius float64) Mass {
	i := 0.4 * total * radius * radius
	return Mass{Total: total, Inertia: mgl64.Diag3(mgl64.Vec3{i, i, i})}
}

// CappedCylinderMass returns the mass of a capsule with the given total
// mass. length is the length of the cylinder part, not counting the caps.
func CappedCylinderMass(total float64, axis Axis, radius, length float64) Mass {
	r2 := radius * radius
	m1 := math.Pi * r2 * length             // cylinder
	m2 := 4.0 / 3.0 * math.Pi * r2 * radius // both caps
	ia := m1*(0.25*r2+length*length/12) + m2*(0.4*r2+0.375*radius*length+0.25*length*length)
	ib := (m1*0.5 + m2*0.4) * r2

	scale := total / (m1 + m2)
	ia *= scale
	ib *= scale

	d := mgl64.Vec3{ia, ia, ia}
	switch axis {
	case AxisX:
		d[0] = ib
	case AxisY:
		d[1] = ib
	default:
		d[2] = ib
	}
	return Mass{Total: total, Inertia: mgl64.Diag3(d)}
}

// BoxMass returns the mass of a solid box with the given side lengths.
func BoxMass(total float64, sides mgl64.Vec3) Mass {
	x2, y2, z2 := sides[0]*sides[0], sides[1]*sides[1], sides[2]*sides[2]
	return Mass{Total: total, Inertia: mgl64.Diag3(mgl64.Vec3{
		total / 12 * (y2 + z2),
		total / 12 * (x2 + z2),
		total / 12 * (x2 + y2),
	})}
}

// valid reports whether the mass can be inverted.
func (m Mass) valid() bool {
	return m.Total > 0 && m.Inertia.Det() > 0
}
