// Package joint implements the per-joint-type kinematics described in
// spec §4.2: configuration/velocity sizes, joint transform, joint twist,
// bias acceleration, motion subspace, constraint wrench subspace,
// configuration normalization, and random sampling.
//
// Joints are dispatched through a single tagged Joint struct (a Variant
// enum plus variant-specific parameters) rather than seven separate
// interface implementations, so that the per-joint dispatch required by
// the hot-path algorithms (CRBA, RNEA, forward dynamics) is a single
// switch per joint rather than a virtual call per matrix element (spec §9).
package joint

import (
	"math"
	"math/rand"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"

	"go.viam.com/rbd/rbderrors"
	"go.viam.com/rbd/spatialmath"
)

// Variant identifies the kind of joint a Joint value describes.
type Variant int

const (
	// Revolute rotates about a fixed axis. nq=1, nv=1, nc=5.
	Revolute Variant = iota
	// Prismatic translates along a fixed axis. nq=1, nv=1, nc=5.
	Prismatic
	// Planar translates in a plane and rotates about its normal. nq=3, nv=3, nc=3.
	Planar
	// Fixed has no degrees of freedom. nq=0, nv=0, nc=6.
	Fixed
	// QuaternionFloating is unconstrained 6-DOF motion parametrized by a
	// unit quaternion plus position. nq=7, nv=6, nc=0. This is the default
	// 6-DOF floating joint (spec §9 Open Question); it is the SE(3)-floating
	// variant, just parametrized by a unit quaternion rather than a
	// rotation matrix, so no separate SE(3) variant is needed.
	QuaternionFloating
	// SPQuatFloating is unconstrained 6-DOF motion parametrized by the
	// stereographic projection of a unit quaternion plus position. nq=6,
	// nv=6, nc=0. Offered as the alternate floating-joint representation.
	SPQuatFloating
)

// Joint is a single mechanism joint: a polymorphic descriptor dispatched
// on Variant, plus the two frames it connects.
type Joint struct {
	Name    string
	Variant Variant

	// Axis is the rotation/translation axis for Revolute/Prismatic, and
	// normalized internally before use.
	Axis r3.Vector

	// PlaneNormal is the normal of the plane a Planar joint translates
	// in and rotates about. Defaults to +Z if zero.
	PlaneNormal r3.Vector

	// FrameBefore is fixed on the predecessor body; FrameAfter is fixed
	// on the successor body (spec §3).
	FrameBefore, FrameAfter *spatialmath.Frame
}

// NQ returns the configuration-vector size for the joint's variant.
func (j *Joint) NQ() int {
	switch j.Variant {
	case Revolute, Prismatic:
		return 1
	case Planar:
		return 3
	case Fixed:
		return 0
	case QuaternionFloating:
		return 7
	case SPQuatFloating:
		return 6
	default:
		return 0
	}
}

// NV returns the velocity-vector size for the joint's variant.
func (j *Joint) NV() int {
	switch j.Variant {
	case Revolute, Prismatic:
		return 1
	case Planar:
		return 3
	case Fixed:
		return 0
	case QuaternionFloating, SPQuatFloating:
		return 6
	default:
		return 0
	}
}

// NConstraint returns the constraint-wrench dimension, 6-NV() for every
// joint variant (the joint's motion subspace and constraint-wrench
// subspace always together span all 6 spatial dimensions).
func (j *Joint) NConstraint() int {
	return 6 - j.NV()
}

// planeBasis returns an orthonormal right-handed basis (u, v, normal) for
// a Planar joint, defaulting normal to +Z.
func (j *Joint) planeBasis() (u, v, normal r3.Vector) {
	normal = j.PlaneNormal
	if normal.Norm() == 0 {
		normal = r3.Vector{Z: 1}
	} else {
		normal = normal.Normalize()
	}
	// pick any vector not parallel to normal to seed a basis
	seed := r3.Vector{X: 1}
	if normal.Cross(seed).Norm() < 1e-8 {
		seed = r3.Vector{Y: 1}
	}
	u = normal.Cross(seed).Normalize()
	v = normal.Cross(u)
	return u, v, normal
}

func (j *Joint) axis() r3.Vector {
	if j.Axis.Norm() == 0 {
		return r3.Vector{Z: 1}
	}
	return j.Axis.Normalize()
}

func checkLen(op string, got []float64, want int) error {
	if len(got) != want {
		return rbderrors.Dimension(op, len(got), want)
	}
	return nil
}

// Transform returns the joint transform FrameAfter()→FrameBefore() for
// configuration segment q.
func (j *Joint) Transform(q []float64) (spatialmath.Transform, error) {
	if err := checkLen("Joint.Transform", q, j.NQ()); err != nil {
		return spatialmath.Transform{}, err
	}
	switch j.Variant {
	case Revolute:
		return j.revoluteTransform(q)
	case Prismatic:
		return j.prismaticTransform(q)
	case Planar:
		return j.planarTransform(q)
	case Fixed:
		return spatialmath.NewTransform(j.FrameAfter, j.FrameBefore, quat.Number{Real: 1}, r3.Vector{}), nil
	case QuaternionFloating:
		return j.quaternionFloatingTransform(q)
	case SPQuatFloating:
		return j.spquatFloatingTransform(q)
	default:
		return spatialmath.Transform{}, rbderrors.Topology("unknown joint variant")
	}
}

// Twist returns the joint twist (FrameAfter, FrameBefore; FrameAfter) for
// configuration/velocity segments q, v.
func (j *Joint) Twist(q, v []float64) (spatialmath.Twist, error) {
	if err := checkLen("Joint.Twist", v, j.NV()); err != nil {
		return spatialmath.Twist{}, err
	}
	switch j.Variant {
	case Revolute:
		return j.revoluteTwist(v), nil
	case Prismatic:
		return j.prismaticTwist(v), nil
	case Planar:
		return j.planarTwist(v), nil
	case Fixed:
		return spatialmath.ZeroTwist(j.FrameAfter, j.FrameBefore, j.FrameAfter), nil
	case QuaternionFloating, SPQuatFloating:
		return j.floatingTwist(v), nil
	default:
		return spatialmath.Twist{}, rbderrors.Topology("unknown joint variant")
	}
}

// BiasAcceleration returns the joint's bias acceleration. Every joint
// variant implemented here has a motion subspace that is constant in the
// after-frame (independent of q), so the bias acceleration — the time
// derivative of the motion subspace contracted with v — is exactly zero
// for all of them (spec §4.2).
func (j *Joint) BiasAcceleration(q, v []float64) (spatialmath.SpatialAcceleration, error) {
	if err := checkLen("Joint.BiasAcceleration", q, j.NQ()); err != nil {
		return spatialmath.SpatialAcceleration{}, err
	}
	if err := checkLen("Joint.BiasAcceleration", v, j.NV()); err != nil {
		return spatialmath.SpatialAcceleration{}, err
	}
	return spatialmath.SpatialAcceleration{Body: j.FrameAfter, Base: j.FrameBefore, ExpressedIn: j.FrameAfter}, nil
}

// MotionSubspace returns the 6xNV() matrix (in FrameAfter) whose columns
// span the joint's instantaneous twist space.
func (j *Joint) MotionSubspace(q []float64) (spatialmath.GeometricJacobian, error) {
	if err := checkLen("Joint.MotionSubspace", q, j.NQ()); err != nil {
		return spatialmath.GeometricJacobian{}, err
	}
	s := spatialmath.NewGeometricJacobian(j.FrameAfter, j.FrameBefore, j.FrameAfter, j.NV())
	switch j.Variant {
	case Revolute:
		_ = s.SetColumn(0, spatialmath.NewTwist(j.FrameAfter, j.FrameBefore, j.FrameAfter, j.axis(), r3.Vector{}))
	case Prismatic:
		_ = s.SetColumn(0, spatialmath.NewTwist(j.FrameAfter, j.FrameBefore, j.FrameAfter, r3.Vector{}, j.axis()))
	case Planar:
		u, v, normal := j.planeBasis()
		_ = s.SetColumn(0, spatialmath.NewTwist(j.FrameAfter, j.FrameBefore, j.FrameAfter, r3.Vector{}, u))
		_ = s.SetColumn(1, spatialmath.NewTwist(j.FrameAfter, j.FrameBefore, j.FrameAfter, r3.Vector{}, v))
		_ = s.SetColumn(2, spatialmath.NewTwist(j.FrameAfter, j.FrameBefore, j.FrameAfter, normal, r3.Vector{}))
	case Fixed:
		// zero columns
	case QuaternionFloating, SPQuatFloating:
		axes := []r3.Vector{{X: 1}, {Y: 1}, {Z: 1}}
		for i, a := range axes {
			_ = s.SetColumn(i, spatialmath.NewTwist(j.FrameAfter, j.FrameBefore, j.FrameAfter, a, r3.Vector{}))
			_ = s.SetColumn(i+3, spatialmath.NewTwist(j.FrameAfter, j.FrameBefore, j.FrameAfter, r3.Vector{}, a))
		}
	}
	return s, nil
}

// ConstraintWrenchSubspace returns a 6xNConstraint() matrix, stored as a
// GeometricJacobian-shaped carrier for convenience, spanning the wrenches
// the joint transmits (the orthogonal complement of the joint's free
// directions).
func (j *Joint) ConstraintWrenchSubspace(q []float64) (spatialmath.GeometricJacobian, error) {
	if err := checkLen("Joint.ConstraintWrenchSubspace", q, j.NQ()); err != nil {
		return spatialmath.GeometricJacobian{}, err
	}
	t := spatialmath.NewGeometricJacobian(j.FrameAfter, j.FrameBefore, j.FrameAfter, j.NConstraint())
	col := func(i int, torque, force r3.Vector) {
		_ = t.SetColumn(i, spatialmath.NewTwist(j.FrameAfter, j.FrameBefore, j.FrameAfter, torque, force))
	}
	switch j.Variant {
	case Revolute:
		axis := j.axis()
		p1, p2 := orthogonalPair(axis)
		col(0, p1, r3.Vector{})
		col(1, p2, r3.Vector{})
		col(2, r3.Vector{}, r3.Vector{X: 1})
		col(3, r3.Vector{}, r3.Vector{Y: 1})
		col(4, r3.Vector{}, r3.Vector{Z: 1})
	case Prismatic:
		axis := j.axis()
		p1, p2 := orthogonalPair(axis)
		col(0, r3.Vector{X: 1}, r3.Vector{})
		col(1, r3.Vector{Y: 1}, r3.Vector{})
		col(2, r3.Vector{Z: 1}, r3.Vector{})
		col(3, r3.Vector{}, p1)
		col(4, r3.Vector{}, p2)
	case Planar:
		u, v, normal := j.planeBasis()
		col(0, u, r3.Vector{})
		col(1, v, r3.Vector{})
		col(2, r3.Vector{}, normal)
	case Fixed:
		col(0, r3.Vector{X: 1}, r3.Vector{})
		col(1, r3.Vector{Y: 1}, r3.Vector{})
		col(2, r3.Vector{Z: 1}, r3.Vector{})
		col(3, r3.Vector{}, r3.Vector{X: 1})
		col(4, r3.Vector{}, r3.Vector{Y: 1})
		col(5, r3.Vector{}, r3.Vector{Z: 1})
	case QuaternionFloating, SPQuatFloating:
		// no columns: fully unconstrained
	}
	return t, nil
}

// orthogonalPair returns two unit vectors orthogonal to axis and to each other.
func orthogonalPair(axis r3.Vector) (r3.Vector, r3.Vector) {
	seed := r3.Vector{X: 1}
	if axis.Cross(seed).Norm() < 1e-8 {
		seed = r3.Vector{Y: 1}
	}
	p1 := axis.Cross(seed).Normalize()
	p2 := axis.Cross(p1)
	return p1, p2
}

// ZeroConfiguration writes the joint's zero/home configuration into q.
func (j *Joint) ZeroConfiguration(q []float64) error {
	if err := checkLen("Joint.ZeroConfiguration", q, j.NQ()); err != nil {
		return err
	}
	for i := range q {
		q[i] = 0
	}
	// all-zero stereographic coordinates already correspond to the identity
	// quaternion for SPQuatFloating; QuaternionFloating needs a unit real part.
	if j.Variant == QuaternionFloating {
		q[0] = 1
	}
	return nil
}

// RandConfiguration writes a random valid configuration into q using rng.
func (j *Joint) RandConfiguration(q []float64, rng *rand.Rand) error {
	if err := checkLen("Joint.RandConfiguration", q, j.NQ()); err != nil {
		return err
	}
	switch j.Variant {
	case Revolute, Prismatic:
		q[0] = rng.Float64()*2 - 1
	case Planar:
		q[0] = rng.Float64()*2 - 1
		q[1] = rng.Float64()*2 - 1
		q[2] = rng.Float64()*2 - 1
	case Fixed:
	case QuaternionFloating:
		rq := randUnitQuaternion(rng)
		q[0], q[1], q[2], q[3] = rq.Real, rq.Imag, rq.Jmag, rq.Kmag
		q[4], q[5], q[6] = rng.Float64(), rng.Float64(), rng.Float64()
	case SPQuatFloating:
		rq := randUnitQuaternion(rng)
		s := quaternionToSPQuat(rq)
		q[0], q[1], q[2] = s.X, s.Y, s.Z
		q[3], q[4], q[5] = rng.Float64(), rng.Float64(), rng.Float64()
	}
	return nil
}

// VelocityToConfigurationDerivative writes q̇ given the current
// configuration q and velocity v. For Revolute, Prismatic, Planar, and
// Fixed joints the configuration manifold is a vector space and q̇=v
// exactly. The floating joints have a nonlinear quaternion kinematic
// relationship implemented in floating.go.
func (j *Joint) VelocityToConfigurationDerivative(q, v, qdot []float64) error {
	if err := checkLen("Joint.VelocityToConfigurationDerivative", q, j.NQ()); err != nil {
		return err
	}
	if err := checkLen("Joint.VelocityToConfigurationDerivative", v, j.NV()); err != nil {
		return err
	}
	if err := checkLen("Joint.VelocityToConfigurationDerivative", qdot, j.NQ()); err != nil {
		return err
	}
	switch j.Variant {
	case QuaternionFloating:
		return quaternionFloatingVelocityToConfigurationDerivative(q, v, qdot)
	case SPQuatFloating:
		return spquatFloatingVelocityToConfigurationDerivative(q, v, qdot)
	default:
		copy(qdot, v)
		return nil
	}
}

// ConfigurationDerivativeToVelocity writes v given q and q̇, inverting
// VelocityToConfigurationDerivative.
func (j *Joint) ConfigurationDerivativeToVelocity(q, qdot, v []float64) error {
	if err := checkLen("Joint.ConfigurationDerivativeToVelocity", q, j.NQ()); err != nil {
		return err
	}
	if err := checkLen("Joint.ConfigurationDerivativeToVelocity", qdot, j.NQ()); err != nil {
		return err
	}
	if err := checkLen("Joint.ConfigurationDerivativeToVelocity", v, j.NV()); err != nil {
		return err
	}
	switch j.Variant {
	case QuaternionFloating:
		return quaternionFloatingConfigurationDerivativeToVelocity(q, qdot, v)
	case SPQuatFloating:
		return spquatFloatingConfigurationDerivativeToVelocity(q, qdot, v)
	default:
		copy(v, qdot)
		return nil
	}
}

// NormalizeConfiguration renormalizes q in place where the joint's
// configuration manifold requires it (only QuaternionFloating does).
func (j *Joint) NormalizeConfiguration(q []float64) error {
	if err := checkLen("Joint.NormalizeConfiguration", q, j.NQ()); err != nil {
		return err
	}
	if j.Variant != QuaternionFloating {
		return nil
	}
	norm2 := q[0]*q[0] + q[1]*q[1] + q[2]*q[2] + q[3]*q[3]
	if norm2 < 1e-20 {
		return rbderrors.ErrConfigurationOutOfRange
	}
	norm := math.Sqrt(norm2)
	q[0] /= norm
	q[1] /= norm
	q[2] /= norm
	q[3] /= norm
	return nil
}
