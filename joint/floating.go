package joint

import (
	"math"
	"math/rand"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"

	"go.viam.com/rbd/spatialmath"
)

// floatingTwist is shared by QuaternionFloating and SPQuatFloating: v is
// the body-fixed angular velocity (v[0:3]) and body-fixed linear velocity
// (v[3:6]) of FrameAfter relative to FrameBefore, expressed in FrameAfter.
func (j *Joint) floatingTwist(v []float64) spatialmath.Twist {
	angular := r3.Vector{X: v[0], Y: v[1], Z: v[2]}
	linear := r3.Vector{X: v[3], Y: v[4], Z: v[5]}
	return spatialmath.NewTwist(j.FrameAfter, j.FrameBefore, j.FrameAfter, angular, linear)
}

func (j *Joint) quaternionFloatingTransform(q []float64) (spatialmath.Transform, error) {
	rot := quat.Number{Real: q[0], Imag: q[1], Jmag: q[2], Kmag: q[3]}
	trans := r3.Vector{X: q[4], Y: q[5], Z: q[6]}
	return spatialmath.NewTransform(j.FrameAfter, j.FrameBefore, rot, trans), nil
}

func (j *Joint) spquatFloatingTransform(q []float64) (spatialmath.Transform, error) {
	rot := spquatToQuaternion(r3.Vector{X: q[0], Y: q[1], Z: q[2]})
	trans := r3.Vector{X: q[3], Y: q[4], Z: q[5]}
	return spatialmath.NewTransform(j.FrameAfter, j.FrameBefore, rot, trans), nil
}

// spquatToQuaternion converts the stereographic projection s of a unit
// quaternion back to that quaternion (RBD.jl's SPQuat parametrization).
// s is the zero vector at the identity rotation and blows up as the
// represented rotation approaches a full turn (angle → 2π), a known
// singularity of this chart.
func spquatToQuaternion(s r3.Vector) quat.Number {
	alpha2 := s.Dot(s)
	denom := 1 + alpha2
	return quat.Number{
		Real: (1 - alpha2) / denom,
		Imag: 2 * s.X / denom,
		Jmag: 2 * s.Y / denom,
		Kmag: 2 * s.Z / denom,
	}
}

// quaternionToSPQuat inverts spquatToQuaternion. q is assumed to have
// nonnegative real part (callers keep quaternions in that hemisphere,
// since q and -q represent the same rotation).
func quaternionToSPQuat(q quat.Number) r3.Vector {
	denom := 1 + q.Real
	return r3.Vector{X: q.Imag / denom, Y: q.Jmag / denom, Z: q.Kmag / denom}
}

// randUnitQuaternion samples a uniformly random unit quaternion with
// nonnegative real part.
func randUnitQuaternion(rng *rand.Rand) quat.Number {
	q := quat.Number{Real: rng.NormFloat64(), Imag: rng.NormFloat64(), Jmag: rng.NormFloat64(), Kmag: rng.NormFloat64()}
	norm := math.Sqrt(q.Real*q.Real + q.Imag*q.Imag + q.Jmag*q.Jmag + q.Kmag*q.Kmag)
	q.Real /= norm
	q.Imag /= norm
	q.Jmag /= norm
	q.Kmag /= norm
	if q.Real < 0 {
		q.Real, q.Imag, q.Jmag, q.Kmag = -q.Real, -q.Imag, -q.Jmag, -q.Kmag
	}
	return q
}

// quaternionKinematicDerivative returns q̇ = 1/2 * q ⊗ (0, ω) for
// body-fixed angular velocity ω.
func quaternionKinematicDerivative(q quat.Number, omega r3.Vector) quat.Number {
	omegaQuat := quat.Number{Imag: omega.X, Jmag: omega.Y, Kmag: omega.Z}
	return quat.Scale(0.5, quat.Mul(q, omegaQuat))
}

// quaternionAngularVelocity inverts quaternionKinematicDerivative: given
// q and q̇, recovers the body-fixed angular velocity ω = 2 * Im(q̄ ⊗ q̇).
func quaternionAngularVelocity(q, qdot quat.Number) r3.Vector {
	prod := quat.Mul(quat.Conj(q), qdot)
	return r3.Vector{X: 2 * prod.Imag, Y: 2 * prod.Jmag, Z: 2 * prod.Kmag}
}

func quaternionFloatingVelocityToConfigurationDerivative(q, v, qdot []float64) error {
	quatNum := quat.Number{Real: q[0], Imag: q[1], Jmag: q[2], Kmag: q[3]}
	omega := r3.Vector{X: v[0], Y: v[1], Z: v[2]}
	linear := r3.Vector{X: v[3], Y: v[4], Z: v[5]}

	qd := quaternionKinematicDerivative(quatNum, omega)
	qdot[0], qdot[1], qdot[2], qdot[3] = qd.Real, qd.Imag, qd.Jmag, qd.Kmag

	// position is expressed in FrameBefore; v's linear part is body-fixed
	// in FrameAfter, so rotate it into FrameBefore via the joint rotation.
	posDot := spatialmath.RotationMatrix(quatNum).MulVec(linear)
	qdot[4], qdot[5], qdot[6] = posDot.X, posDot.Y, posDot.Z
	return nil
}

func quaternionFloatingConfigurationDerivativeToVelocity(q, qdot, v []float64) error {
	quatNum := quat.Number{Real: q[0], Imag: q[1], Jmag: q[2], Kmag: q[3]}
	qd := quat.Number{Real: qdot[0], Imag: qdot[1], Jmag: qdot[2], Kmag: qdot[3]}

	omega := quaternionAngularVelocity(quatNum, qd)
	v[0], v[1], v[2] = omega.X, omega.Y, omega.Z

	posDot := r3.Vector{X: qdot[4], Y: qdot[5], Z: qdot[6]}
	linear := spatialmath.RotationMatrix(quatNum).Transpose().MulVec(posDot)
	v[3], v[4], v[5] = linear.X, linear.Y, linear.Z
	return nil
}

func spquatFloatingVelocityToConfigurationDerivative(q, v, qdot []float64) error {
	s := r3.Vector{X: q[0], Y: q[1], Z: q[2]}
	quatNum := spquatToQuaternion(s)
	omega := r3.Vector{X: v[0], Y: v[1], Z: v[2]}
	linear := r3.Vector{X: v[3], Y: v[4], Z: v[5]}

	qd := quaternionKinematicDerivative(quatNum, omega)

	// chain rule through s_i = qv_i/(1+qs)
	denom := 1 + quatNum.Real
	qvdot := r3.Vector{X: qd.Imag, Y: qd.Jmag, Z: qd.Kmag}
	qv := r3.Vector{X: quatNum.Imag, Y: quatNum.Jmag, Z: quatNum.Kmag}
	sdot := qvdot.Mul(1 / denom).Sub(qv.Mul(qd.Real / (denom * denom)))
	qdot[0], qdot[1], qdot[2] = sdot.X, sdot.Y, sdot.Z

	posDot := spatialmath.RotationMatrix(quatNum).MulVec(linear)
	qdot[3], qdot[4], qdot[5] = posDot.X, posDot.Y, posDot.Z
	return nil
}

func spquatFloatingConfigurationDerivativeToVelocity(q, qdot, v []float64) error {
	s := r3.Vector{X: q[0], Y: q[1], Z: q[2]}
	quatNum := spquatToQuaternion(s)

	// recover qdot by differentiating spquatToQuaternion analytically:
	// qs = (1-alpha2)/(1+alpha2) and qv = 2s/(1+alpha2), with alpha2 = s·s.
	alpha2 := s.Dot(s)
	denom := 1 + alpha2
	sdot := r3.Vector{X: qdot[0], Y: qdot[1], Z: qdot[2]}
	// d(alpha2)/dt = 2 s·sdot
	dAlpha2 := 2 * s.Dot(sdot)
	dDenom := dAlpha2
	qsdot := (-dAlpha2*denom - (1-alpha2)*dDenom) / (denom * denom)
	qvdot := sdot.Mul(2 / denom).Sub(s.Mul(2 * dDenom / (denom * denom)))

	qd := quat.Number{Real: qsdot, Imag: qvdot.X, Jmag: qvdot.Y, Kmag: qvdot.Z}
	omega := quaternionAngularVelocity(quatNum, qd)
	v[0], v[1], v[2] = omega.X, omega.Y, omega.Z

	posDot := r3.Vector{X: qdot[3], Y: qdot[4], Z: qdot[5]}
	linear := spatialmath.RotationMatrix(quatNum).Transpose().MulVec(posDot)
	v[3], v[4], v[5] = linear.X, linear.Y, linear.Z
	return nil
}
