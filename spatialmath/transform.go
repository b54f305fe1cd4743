package spatialmath

import (
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"

	"go.viam.com/rbd/rbderrors"
)

// Transform is a rigid transform from frame "from" to frame "to": for a
// point p expressed in "from", TransformPoint(p) gives its coordinates in
// "to". The rotation is stored as a unit quaternion and is not
// automatically renormalized; call Orthonormalize explicitly when drift
// matters (see spec §4.1).
type Transform struct {
	from, to *Frame
	rot      quat.Number
	trans    r3.Vector
}

// NewTransform builds a transform from "from" to "to" from a rotation
// quaternion (need not be pre-normalized) and a translation expressed in
// "to".
func NewTransform(from, to *Frame, rot quat.Number, trans r3.Vector) Transform {
	return Transform{from: from, to: to, rot: rot, trans: trans}
}

// Identity returns the identity transform on a single frame.
func Identity(f *Frame) Transform {
	return Transform{from: f, to: f, rot: quat.Number{Real: 1}, trans: r3.Vector{}}
}

// From returns the source frame.
func (t Transform) From() *Frame { return t.from }

// To returns the destination frame.
func (t Transform) To() *Frame { return t.to }

// Rotation returns the rotation quaternion (not guaranteed unit-norm
// unless Orthonormalize was called).
func (t Transform) Rotation() quat.Number { return t.rot }

// Translation returns the translation component, expressed in To().
func (t Transform) Translation() r3.Vector { return t.trans }

// TransformPoint maps a point expressed in From() to its coordinates in To().
func (t Transform) TransformPoint(p r3.Vector) r3.Vector {
	return rotateVector(t.rot, p).Add(t.trans)
}

// TransformDirection maps a free vector (direction, not a point) expressed
// in From() to its coordinates in To(); translation does not apply.
func (t Transform) TransformDirection(v r3.Vector) r3.Vector {
	return rotateVector(t.rot, v)
}

// Compose returns outer ∘ inner: given inner: A→B and outer: B→C, returns
// A→C. Fails with ErrFrameMismatch if inner.To() != outer.From().
func Compose(outer, inner Transform) (Transform, error) {
	if !sameFrame(outer.from, inner.to) {
		return Transform{}, rbderrors.FrameMismatch("spatialmath.Compose", inner.to, outer.from)
	}
	rot := quat.Mul(outer.rot, inner.rot)
	trans := rotateVector(outer.rot, inner.trans).Add(outer.trans)
	return Transform{from: inner.from, to: outer.to, rot: rot, trans: trans}, nil
}

// Inverse returns the inverse transform, To()→From().
func (t Transform) Inverse() Transform {
	inv := quat.Conj(t.rot)
	trans := rotateVector(inv, t.trans).Mul(-1)
	return Transform{from: t.to, to: t.from, rot: inv, trans: trans}
}

// Orthonormalize returns t with its rotation renormalized to unit length.
// Routine operations never call this implicitly; it is an explicit
// maintenance call for accumulated drift, per spec §4.1.
func (t Transform) Orthonormalize() Transform {
	t.rot = normQuat(t.rot)
	return t
}

// TransformAlmostEqual reports whether two transforms over the same frame pair
// agree within tol, comparing both translation and the rotated unit axes.
func TransformAlmostEqual(a, b Transform, tol float64) bool {
	if !sameFrame(a.from, b.from) || !sameFrame(a.to, b.to) {
		return false
	}
	if !r3VectorAlmostEqual(a.trans, b.trans, tol) {
		return false
	}
	ra, rb := RotationMatrix(normQuat(a.rot)), RotationMatrix(normQuat(b.rot))
	return ra.AlmostEqual(rb, tol)
}

func r3VectorAlmostEqual(a, b r3.Vector, tol float64) bool {
	d := a.Sub(b)
	return d.Dot(d) <= tol*tol
}
