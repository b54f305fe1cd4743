package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// R4AA is an axis-angle rotation: Theta radians about the axis (RX,RY,RZ),
// which need not be normalized by the caller. Adapted from
// go.viam.com/rdk/kinematics/kinmath's R4AA.
type R4AA struct {
	Theta        float64
	RX, RY, RZ   float64
}

// Normalize scales the axis components to unit length in place. A
// zero-length axis is left untouched; callers that need a hard failure
// should check that case with ConfigurationOutOfRange-style validation.
func (r *R4AA) Normalize() {
	norm := math.Sqrt(r.RX*r.RX + r.RY*r.RY + r.RZ*r.RZ)
	if norm == 0 {
		return
	}
	r.RX /= norm
	r.RY /= norm
	r.RZ /= norm
}

// ToQuat converts the axis-angle rotation to a unit quaternion.
func (r R4AA) ToQuat() quat.Number {
	r.Normalize()
	s, c := math.Sincos(r.Theta / 2)
	return quat.Number{Real: c, Imag: r.RX * s, Jmag: r.RY * s, Kmag: r.RZ * s}
}

// QuatToR4AA converts a unit quaternion to its axis-angle representation.
func QuatToR4AA(q quat.Number) R4AA {
	denom := math.Sqrt(q.Imag*q.Imag + q.Jmag*q.Jmag + q.Kmag*q.Kmag)
	theta := 2 * math.Atan2(denom, q.Real)
	if denom < 1e-12 {
		return R4AA{Theta: theta, RX: 0, RY: 0, RZ: 1}
	}
	return R4AA{Theta: theta, RX: q.Imag / denom, RY: q.Jmag / denom, RZ: q.Kmag / denom}
}

// Flip returns the antipodal quaternion representation -q, which rotates
// identically to q but interpolates the other way around the great
// circle. Adapted from go.viam.com/rdk/kinematics/kinmath.Flip.
func Flip(q quat.Number) quat.Number {
	return quat.Number{Real: -q.Real, Imag: -q.Imag, Jmag: -q.Jmag, Kmag: -q.Kmag}
}

// normQuat returns q scaled to unit norm. Used only at explicit
// renormalization points, never silently inside routine operations, per
// the spec's "routine operations do not silently renormalize" invariant.
func normQuat(q quat.Number) quat.Number {
	n := math.Sqrt(q.Real*q.Real + q.Imag*q.Imag + q.Jmag*q.Jmag + q.Kmag*q.Kmag)
	if n == 0 {
		return quat.Number{Real: 1}
	}
	return quat.Number{Real: q.Real / n, Imag: q.Imag / n, Jmag: q.Jmag / n, Kmag: q.Kmag / n}
}

// rotateVector rotates v by unit quaternion q using the optimized
// double-cross-product form (avoids a full quaternion multiply chain).
func rotateVector(q quat.Number, v r3.Vector) r3.Vector {
	qv := r3.Vector{X: q.Imag, Y: q.Jmag, Z: q.Kmag}
	t := qv.Cross(v).Mul(2)
	return v.Add(t.Mul(q.Real)).Add(qv.Cross(t))
}

// RotationMatrix converts a unit quaternion to its equivalent 3x3
// orthonormal rotation matrix.
func RotationMatrix(q quat.Number) Matrix3 {
	w, x, y, z := q.Real, q.Imag, q.Jmag, q.Kmag
	return Matrix3{
		{1 - 2*(y*y+z*z), 2 * (x*y - z*w), 2 * (x*z + y*w)},
		{2 * (x*y + z*w), 1 - 2*(x*x+z*z), 2 * (y*z - x*w)},
		{2 * (x*z - y*w), 2 * (y*z + x*w), 1 - 2*(x*x+y*y)},
	}
}
