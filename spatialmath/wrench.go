package spatialmath

import (
	"github.com/golang/geo/r3"

	"go.viam.com/rbd/rbderrors"
)

// Wrench is a 6-vector of torque and force, annotated with the frame it is
// expressed in.
type Wrench struct {
	ExpressedIn *Frame
	Torque      r3.Vector
	Force       r3.Vector
}

// ZeroWrench returns the zero wrench expressed in f.
func ZeroWrench(f *Frame) Wrench {
	return Wrench{ExpressedIn: f}
}

// Add returns the componentwise sum of two wrenches expressed in the same frame.
func (w Wrench) Add(o Wrench) (Wrench, error) {
	if !sameFrame(w.ExpressedIn, o.ExpressedIn) {
		return Wrench{}, rbderrors.FrameMismatch("Wrench.Add", o.ExpressedIn, w.ExpressedIn)
	}
	return Wrench{ExpressedIn: w.ExpressedIn, Torque: w.Torque.Add(o.Torque), Force: w.Force.Add(o.Force)}, nil
}

// Sub returns the componentwise difference w-o for two wrenches expressed
// in the same frame.
func (w Wrench) Sub(o Wrench) (Wrench, error) {
	if !sameFrame(w.ExpressedIn, o.ExpressedIn) {
		return Wrench{}, rbderrors.FrameMismatch("Wrench.Sub", o.ExpressedIn, w.ExpressedIn)
	}
	return Wrench{ExpressedIn: w.ExpressedIn, Torque: w.Torque.Sub(o.Torque), Force: w.Force.Sub(o.Force)}, nil
}

// Power returns the scalar power w·tw (the bilinear pairing of a wrench
// with a twist expressed in the same frame): torque·omega + force·v.
func (w Wrench) Power(tw Twist) (float64, error) {
	if !sameFrame(w.ExpressedIn, tw.ExpressedIn) {
		return 0, rbderrors.FrameMismatch("Wrench.Power", tw.ExpressedIn, w.ExpressedIn)
	}
	return w.Torque.Dot(tw.Angular) + w.Force.Dot(tw.Linear), nil
}

// AdjointWrench re-expresses w (expressed in t.From()) in t.To(), applying
// the dual (force) adjoint action so that Power is frame-invariant:
// force' = R·force, torque' = R·torque + p×(R·force).
func AdjointWrench(t Transform, w Wrench) (Wrench, error) {
	if !sameFrame(w.ExpressedIn, t.from) {
		return Wrench{}, rbderrors.FrameMismatch("AdjointWrench", w.ExpressedIn, t.from)
	}
	force := rotateVector(t.rot, w.Force)
	torque := rotateVector(t.rot, w.Torque).Add(t.trans.Cross(force))
	return Wrench{ExpressedIn: t.to, Torque: torque, Force: force}, nil
}

// AlmostEqual reports whether two wrenches over the same frame agree within tol.
func (w Wrench) AlmostEqual(o Wrench, tol float64) bool {
	if !sameFrame(w.ExpressedIn, o.ExpressedIn) {
		return false
	}
	return r3VectorAlmostEqual(w.Torque, o.Torque, tol) && r3VectorAlmostEqual(w.Force, o.Force, tol)
}

// Momentum is the 6-vector momentum of Body relative to Base expressed in
// ExpressedIn: the image of a Twist under a SpatialInertia.
type Momentum struct {
	Body, Base, ExpressedIn *Frame
	Angular, Linear         r3.Vector
}

// Add returns the componentwise sum of two momenta sharing an identical
// (Body, Base, ExpressedIn) triple.
func (m Momentum) Add(o Momentum) (Momentum, error) {
	if !sameFrame(m.Body, o.Body) || !sameFrame(m.Base, o.Base) || !sameFrame(m.ExpressedIn, o.ExpressedIn) {
		return Momentum{}, rbderrors.FrameMismatch("Momentum.Add", o.ExpressedIn, m.ExpressedIn)
	}
	return Momentum{
		Body: m.Body, Base: m.Base, ExpressedIn: m.ExpressedIn,
		Angular: m.Angular.Add(o.Angular), Linear: m.Linear.Add(o.Linear),
	}, nil
}
