package spatialmath

import (
	"github.com/golang/geo/r3"

	"go.viam.com/rbd/rbderrors"
)

// Twist is the angular and linear velocity of Body relative to Base,
// expressed in ExpressedIn. All three frame annotations participate in
// the contracts described in spec §3/§4.1.
type Twist struct {
	Body, Base, ExpressedIn *Frame
	Angular, Linear         r3.Vector
}

// NewTwist builds a Twist from its frame annotations and 3-vectors.
func NewTwist(body, base, expressedIn *Frame, angular, linear r3.Vector) Twist {
	return Twist{Body: body, Base: base, ExpressedIn: expressedIn, Angular: angular, Linear: linear}
}

// ZeroTwist returns the zero twist of body relative to base, expressed in expressedIn.
func ZeroTwist(body, base, expressedIn *Frame) Twist {
	return Twist{Body: body, Base: base, ExpressedIn: expressedIn}
}

func (t Twist) sameTriple(o Twist) bool {
	return sameFrame(t.Body, o.Body) && sameFrame(t.Base, o.Base) && sameFrame(t.ExpressedIn, o.ExpressedIn)
}

// Add returns the componentwise sum of two twists sharing an identical
// (Body, Base, ExpressedIn) triple.
func (t Twist) Add(o Twist) (Twist, error) {
	if !t.sameTriple(o) {
		return Twist{}, rbderrors.FrameMismatch("Twist.Add", o.ExpressedIn, t.ExpressedIn)
	}
	return Twist{
		Body: t.Body, Base: t.Base, ExpressedIn: t.ExpressedIn,
		Angular: t.Angular.Add(o.Angular), Linear: t.Linear.Add(o.Linear),
	}, nil
}

// Sub returns the componentwise difference t-o for two twists sharing an
// identical (Body, Base, ExpressedIn) triple.
func (t Twist) Sub(o Twist) (Twist, error) {
	if !t.sameTriple(o) {
		return Twist{}, rbderrors.FrameMismatch("Twist.Sub", o.ExpressedIn, t.ExpressedIn)
	}
	return Twist{
		Body: t.Body, Base: t.Base, ExpressedIn: t.ExpressedIn,
		Angular: t.Angular.Sub(o.Angular), Linear: t.Linear.Sub(o.Linear),
	}, nil
}

// ComposeTwists implements twist(A,C,F) = twist(A,B,F) + twist(B,C,F):
// ab is the twist of A relative to B, bc is the twist of B relative to C,
// both expressed in the same frame F. Returns the twist of A relative to C.
func ComposeTwists(ab, bc Twist) (Twist, error) {
	if !sameFrame(ab.ExpressedIn, bc.ExpressedIn) {
		return Twist{}, rbderrors.FrameMismatch("ComposeTwists", bc.ExpressedIn, ab.ExpressedIn)
	}
	if !sameFrame(ab.Base, bc.Body) {
		return Twist{}, rbderrors.FrameMismatch("ComposeTwists", bc.Body, ab.Base)
	}
	return Twist{
		Body: ab.Body, Base: bc.Base, ExpressedIn: ab.ExpressedIn,
		Angular: ab.Angular.Add(bc.Angular), Linear: ab.Linear.Add(bc.Linear),
	}, nil
}

// AdjointTwist re-expresses tw (expressed in t.From()) in t.To(), applying
// the spatial-velocity adjoint action Ad(t). Body and Base are unchanged;
// only ExpressedIn changes.
func AdjointTwist(t Transform, tw Twist) (Twist, error) {
	if !sameFrame(tw.ExpressedIn, t.from) {
		return Twist{}, rbderrors.FrameMismatch("AdjointTwist", tw.ExpressedIn, t.from)
	}
	omega := rotateVector(t.rot, tw.Angular)
	v := rotateVector(t.rot, tw.Linear).Add(t.trans.Cross(omega))
	return Twist{Body: tw.Body, Base: tw.Base, ExpressedIn: t.to, Angular: omega, Linear: v}, nil
}

// Cross returns the spatial cross product tw1 × tw2 (Coriolis-style
// bilinear term), requiring a shared ExpressedIn. Body/Base annotations
// are not meaningful on a cross-product result; the returned twist copies
// tw2's pair since that is the operand accelerations are being applied to
// in the RNEA/bias-acceleration recursions that use this operator.
func (t Twist) Cross(o Twist) Twist {
	angular := t.Angular.Cross(o.Angular)
	linear := t.Angular.Cross(o.Linear).Add(t.Linear.Cross(o.Angular))
	return Twist{Body: o.Body, Base: o.Base, ExpressedIn: t.ExpressedIn, Angular: angular, Linear: linear}
}

// CrossForce returns the spatial force cross product tw × f (the
// Coriolis/centrifugal term in the net-wrench equation of RNEA).
func (t Twist) CrossForce(w Wrench) Wrench {
	torque := t.Angular.Cross(w.Torque).Add(t.Linear.Cross(w.Force))
	force := t.Angular.Cross(w.Force)
	return Wrench{ExpressedIn: t.ExpressedIn, Torque: torque, Force: force}
}

// AlmostEqual reports whether two twists over the same triple agree within tol.
func (t Twist) AlmostEqual(o Twist, tol float64) bool {
	if !t.sameTriple(o) {
		return false
	}
	return r3VectorAlmostEqual(t.Angular, o.Angular, tol) && r3VectorAlmostEqual(t.Linear, o.Linear, tol)
}

// SpatialAcceleration is the spatial acceleration of Body relative to
// Base, expressed in ExpressedIn. It has the same algebraic shape as
// Twist but is kept as a distinct type so that velocity and acceleration
// quantities cannot be accidentally interchanged by the compiler.
type SpatialAcceleration struct {
	Body, Base, ExpressedIn *Frame
	Angular, Linear         r3.Vector
}

// Add returns the componentwise sum of two accelerations sharing an
// identical (Body, Base, ExpressedIn) triple.
func (a SpatialAcceleration) Add(o SpatialAcceleration) (SpatialAcceleration, error) {
	if !sameFrame(a.Body, o.Body) || !sameFrame(a.Base, o.Base) || !sameFrame(a.ExpressedIn, o.ExpressedIn) {
		return SpatialAcceleration{}, rbderrors.FrameMismatch("SpatialAcceleration.Add", o.ExpressedIn, a.ExpressedIn)
	}
	return SpatialAcceleration{
		Body: a.Body, Base: a.Base, ExpressedIn: a.ExpressedIn,
		Angular: a.Angular.Add(o.Angular), Linear: a.Linear.Add(o.Linear),
	}, nil
}

// AdjointAcceleration re-expresses a (expressed in t.From()) in t.To().
func AdjointAcceleration(t Transform, a SpatialAcceleration) (SpatialAcceleration, error) {
	if !sameFrame(a.ExpressedIn, t.from) {
		return SpatialAcceleration{}, rbderrors.FrameMismatch("AdjointAcceleration", a.ExpressedIn, t.from)
	}
	angular := rotateVector(t.rot, a.Angular)
	linear := rotateVector(t.rot, a.Linear).Add(t.trans.Cross(angular))
	return SpatialAcceleration{Body: a.Body, Base: a.Base, ExpressedIn: t.to, Angular: angular, Linear: linear}, nil
}

// AccelerationFromComponents builds a spatial acceleration of body
// relative to base, expressed in expressedIn, from its angular and linear
// parts. Used to seed the RNEA gravity trick, where the root's
// acceleration is set to -g.
func AccelerationFromComponents(body, base, expressedIn *Frame, angular, linear r3.Vector) SpatialAcceleration {
	return SpatialAcceleration{Body: body, Base: base, ExpressedIn: expressedIn, Angular: angular, Linear: linear}
}
