package spatialmath

import (
	"github.com/golang/geo/r3"

	"go.viam.com/rbd/rbderrors"
)

// SpatialInertia is the 6x6 operator mapping a Twist of a rigid body to
// its Momentum, annotated with the Frame it is expressed in. Internally it
// is stored as (mass, center of mass, rotational inertia about the center
// of mass) because that representation composes cleanly under Transform;
// Momentum and the CRBA composite sum convert to an about-origin
// representation internally where the arithmetic is additive.
type SpatialInertia struct {
	Frame           *Frame
	Mass            float64
	COM             r3.Vector // center of mass, relative to Frame's origin, in Frame's axes
	InertiaAboutCOM Matrix3   // rotational inertia about COM, in Frame's axes
}

// NewSpatialInertia builds a SpatialInertia from physical parameters.
func NewSpatialInertia(frame *Frame, mass float64, com r3.Vector, inertiaAboutCOM Matrix3) SpatialInertia {
	return SpatialInertia{Frame: frame, Mass: mass, COM: com, InertiaAboutCOM: inertiaAboutCOM}
}

// ZeroSpatialInertia returns a massless inertia in the given frame, used
// for the root body per spec §3 ("the root body has no inertia").
func ZeroSpatialInertia(frame *Frame) SpatialInertia {
	return SpatialInertia{Frame: frame}
}

// aboutOrigin returns the first moment (h = mass*COM) and the rotational
// inertia about Frame's origin (parallel-axis-shifted from InertiaAboutCOM).
func (si SpatialInertia) aboutOrigin() (h r3.Vector, iOrigin Matrix3) {
	h = si.COM.Mul(si.Mass)
	cc := si.COM.Dot(si.COM)
	iOrigin = si.InertiaAboutCOM.Add(Identity3.Scale(si.Mass * cc)).Sub(Outer(si.COM, si.COM).Scale(si.Mass))
	return h, iOrigin
}

func fromAboutOrigin(frame *Frame, mass float64, h r3.Vector, iOrigin Matrix3) SpatialInertia {
	if mass == 0 {
		return SpatialInertia{Frame: frame, InertiaAboutCOM: iOrigin}
	}
	com := h.Mul(1 / mass)
	cc := com.Dot(com)
	iCOM := iOrigin.Sub(Identity3.Scale(mass * cc)).Add(Outer(com, com).Scale(mass))
	return SpatialInertia{Frame: frame, Mass: mass, COM: com, InertiaAboutCOM: iCOM}
}

// Add returns the composite inertia of si and o, which must be expressed
// in the same frame (i.e. about the same origin point, in the same axes).
// This is the additive step of the CRBA bottom-up composite-inertia pass.
func (si SpatialInertia) Add(o SpatialInertia) (SpatialInertia, error) {
	if !sameFrame(si.Frame, o.Frame) {
		return SpatialInertia{}, rbderrors.FrameMismatch("SpatialInertia.Add", o.Frame, si.Frame)
	}
	h1, i1 := si.aboutOrigin()
	h2, i2 := o.aboutOrigin()
	return fromAboutOrigin(si.Frame, si.Mass+o.Mass, h1.Add(h2), i1.Add(i2)), nil
}

// Transform re-expresses si (in t.From()) in t.To(): the COM point is
// carried through the rigid transform, and the COM-relative inertia
// tensor is rotated (translation does not affect an inertia tensor taken
// about the center of mass).
func (si SpatialInertia) Transform(t Transform) (SpatialInertia, error) {
	if !sameFrame(si.Frame, t.from) {
		return SpatialInertia{}, rbderrors.FrameMismatch("SpatialInertia.Transform", si.Frame, t.from)
	}
	com := t.TransformPoint(si.COM)
	r := RotationMatrix(t.rot)
	inertia := r.Mul(si.InertiaAboutCOM).Mul(r.Transpose())
	return SpatialInertia{Frame: t.to, Mass: si.Mass, COM: com, InertiaAboutCOM: inertia}, nil
}

// Momentum returns the momentum of tw's Body relative to tw's Base under
// si, requiring tw.ExpressedIn == si.Frame.
func (si SpatialInertia) Momentum(tw Twist) (Momentum, error) {
	if !sameFrame(si.Frame, tw.ExpressedIn) {
		return Momentum{}, rbderrors.FrameMismatch("SpatialInertia.Momentum", tw.ExpressedIn, si.Frame)
	}
	h, iOrigin := si.aboutOrigin()
	angular := iOrigin.MulVec(tw.Angular).Add(h.Cross(tw.Linear))
	linear := tw.Linear.Mul(si.Mass).Sub(h.Cross(tw.Angular))
	return Momentum{Body: tw.Body, Base: tw.Base, ExpressedIn: si.Frame, Angular: angular, Linear: linear}, nil
}

// NetWrench returns the net wrench I·a + v×*(I·v) used by RNEA's forward
// sweep, where a is the body's spatial acceleration and v its twist, both
// expressed in si.Frame.
func (si SpatialInertia) NetWrench(a SpatialAcceleration, v Twist) (Wrench, error) {
	if !sameFrame(si.Frame, a.ExpressedIn) || !sameFrame(si.Frame, v.ExpressedIn) {
		return Wrench{}, rbderrors.FrameMismatch("SpatialInertia.NetWrench", a.ExpressedIn, si.Frame)
	}
	h, iOrigin := si.aboutOrigin()
	accelTerm := Wrench{
		ExpressedIn: si.Frame,
		Torque:      iOrigin.MulVec(a.Angular).Add(h.Cross(a.Linear)),
		Force:       a.Linear.Mul(si.Mass).Sub(h.Cross(a.Angular)),
	}
	velocityMomentum := Wrench{
		ExpressedIn: si.Frame,
		Torque:      iOrigin.MulVec(v.Angular).Add(h.Cross(v.Linear)),
		Force:       v.Linear.Mul(si.Mass).Sub(h.Cross(v.Angular)),
	}
	coriolis := v.CrossForce(velocityMomentum)
	return Wrench{
		ExpressedIn: si.Frame,
		Torque:      accelTerm.Torque.Add(coriolis.Torque),
		Force:       accelTerm.Force.Add(coriolis.Force),
	}, nil
}

// KineticEnergy returns 1/2 * tw · (si·tw), the rigid body's kinetic
// energy for the given twist.
func (si SpatialInertia) KineticEnergy(tw Twist) (float64, error) {
	m, err := si.Momentum(tw)
	if err != nil {
		return 0, err
	}
	w := Wrench{ExpressedIn: m.ExpressedIn, Torque: m.Angular, Force: m.Linear}
	p, err := w.Power(tw)
	if err != nil {
		return 0, err
	}
	return 0.5 * p, nil
}
