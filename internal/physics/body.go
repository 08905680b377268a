package physics

import (
	"github.com/go-gl/mathgl/mgl64"
)

// BodyID addresses a slot in the world's body table. The generation
// changes every time a slot is freed, so an ID held past DestroyBody
// never resolves to the body that later reuses the slot.
type BodyID struct {
	Index uint32
	Gen   uint32
}

// Body is a rigid body: mass distribution, pose and velocities, plus the
// force and torque accumulated since the last step.
type Body struct {
	id    BodyID
	world *World

	mass       Mass
	invMass    float64
	invInertia mgl64.Mat3 // body frame

	pos mgl64.Vec3
	q   mgl64.Quat
	rot mgl64.Mat3 // kept in step with q

	linVel mgl64.Vec3
	angVel mgl64.Vec3
	force  mgl64.Vec3
	torque mgl64.Vec3

	// Data is a free slot for the owner of the body.
	Data any
}

func newBody(w *World, id BodyID) *Body {
	b := &Body{
		id:    id,
		world: w,
		q:     mgl64.QuatIdent(),
		rot:   mgl64.Ident3(),
	}
	b.SetMass(SphereMass(1, 1))
	return b
}

// ID returns the body's slot handle.
func (b *Body) ID() BodyID { return b.id }

// World returns the owning world, or nil once the body was destroyed.
func (b *Body) World() *World { return b.world }

// Mass returns the body's mass parameters.
func (b *Body) Mass() Mass { return b.mass }

// SetMass replaces the mass. A non-positive mass or singular inertia is
// ignored and the previous mass stays in effect.
func (b *Body) SetMass(m Mass) {
	if !m.valid() {
		return
	}
	b.mass = m
	b.invMass = 1 / m.Total
	b.invInertia = m.Inertia.Inv()
}

func (b *Body) Position() mgl64.Vec3 { return b.pos }

func (b *Body) SetPosition(p mgl64.Vec3) { b.pos = p }

// Quaternion returns the orientation as a unit quaternion.
func (b *Body) Quaternion() mgl64.Quat { return b.q }

// SetQuaternion sets the orientation from a quaternion.
func (b *Body) SetQuaternion(q mgl64.Quat) {
	b.q = q.Normalize()
	b.rot = b.q.Mat4().Mat3()
}

// Rotation returns the orientation in the engine's row-major layout.
func (b *Body) Rotation() [9]float64 {
	return toRowMajor(b.rot)
}

// SetRotation sets the orientation from a row-major 3x3 matrix.
func (b *Body) SetRotation(rm [9]float64) {
	b.rot = fromRowMajor(rm)
	b.q = mgl64.Mat4ToQuat(b.rot.Mat4()).Normalize()
}

// RotationMat3 returns the orientation as a column-major mgl64.Mat3.
func (b *Body) RotationMat3() mgl64.Mat3 { return b.rot }

func (b *Body) LinearVel() mgl64.Vec3 { return b.linVel }

func (b *Body) SetLinearVel(v mgl64.Vec3) { b.linVel = v }

func (b *Body) AngularVel() mgl64.Vec3 { return b.angVel }

func (b *Body) SetAngularVel(v mgl64.Vec3) { b.angVel = v }

// Force returns the force accumulated since the last step.
func (b *Body) Force() mgl64.Vec3 { return b.force }

// Torque returns the torque accumulated since the last step.
func (b *Body) Torque() mgl64.Vec3 { return b.torque }

// AddForce adds a world-frame force at the center of mass.
func (b *Body) AddForce(f mgl64.Vec3) { b.force = b.force.Add(f) }

// AddTorque adds a world-frame torque.
func (b *Body) AddTorque(t mgl64.Vec3) { b.torque = b.torque.Add(t) }

// AddRelForce adds a body-frame force at the center of mass.
func (b *Body) AddRelForce(f mgl64.Vec3) { b.AddForce(b.rot.Mul3x1(f)) }

// AddRelTorque adds a body-frame torque.
func (b *Body) AddRelTorque(t mgl64.Vec3) { b.AddTorque(b.rot.Mul3x1(t)) }

// AddForceAtPos adds a world-frame force applied at a world-frame point.
func (b *Body) AddForceAtPos(f, p mgl64.Vec3) {
	b.AddForce(f)
	b.AddTorque(p.Sub(b.pos).Cross(f))
}

// VectorFromWorld rotates a world-frame vector into the body frame.
func (b *Body) VectorFromWorld(v mgl64.Vec3) mgl64.Vec3 {
	return b.rot.Transpose().Mul3x1(v)
}

// VectorToWorld rotates a body-frame vector into the world frame.
func (b *Body) VectorToWorld(v mgl64.Vec3) mgl64.Vec3 {
	return b.rot.Mul3x1(v)
}

// PointVel returns the velocity of a world-frame point fixed to the body.
func (b *Body) PointVel(p mgl64.Vec3) mgl64.Vec3 {
	return b.linVel.Add(b.angVel.Cross(p.Sub(b.pos)))
}

// invInertiaWorld returns R * I^-1 * R^T.
func (b *Body) invInertiaWorld() mgl64.Mat3 {
	return b.rot.Mul3(b.invInertia).Mul3(b.rot.Transpose())
}

func (b *Body) clearAccumulators() {
	b.force = mgl64.Vec3{}
	b.torque = mgl64.Vec3{}
}

// integrate advances pose by the current velocities.
func (b *Body) integrate(dt float64) {
	b.pos = b.pos.Add(b.linVel.Mul(dt))

	// dq/dt = 0.5 * (0, w) * q
	w := mgl64.Quat{W: 0, V: b.angVel}
	dq := w.Mul(b.q).Scale(0.5 * dt)
	b.q = b.q.Add(dq).Normalize()
	b.rot = b.q.Mat4().Mat3()
}

func toRowMajor(m mgl64.Mat3) [9]float64 {
	return [9]float64{
		m[0], m[3], m[6],
		m[1], m[4], m[7],
		m[2], m[5], m[8],
	}
}

func fromRowMajor(rm [9]float64) mgl64.Mat3 {
	return mgl64.Mat3{
		rm[0], rm[3], rm[6],
		rm[1], rm[4], rm[7],
		rm[2], rm[5], rm[8],
	}
}
