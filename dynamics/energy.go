package dynamics

import (
	"github.com/golang/geo/r3"

	"go.viam.com/rbd/mechanism"
	"go.viam.com/rbd/spatialmath"
	"go.viam.com/rbd/state"
)

// Mass returns the mechanism's total mass, summed over every body's
// inertia. Pure topology; does not require a state.
func Mass(mech *mechanism.Mechanism) float64 {
	var total float64
	for i := 0; i < mech.NumBodies(); i++ {
		total += mech.Body(mechanism.BodyIndex(i)).Inertia.Mass
	}
	return total
}

// CenterOfMass returns the whole-mechanism center of mass in world
// coordinates. The root's composite-rigid-body inertia already is the
// aggregate of every body's inertia (spec §4.5), so its COM field is
// exactly the system center of mass; no separate weighted sum is needed.
func CenterOfMass(s *state.MechanismState) (r3.Vector, error) {
	composite, err := s.CompositeInertia(mechanism.RootIndex)
	if err != nil {
		return r3.Vector{}, err
	}
	return composite.COM, nil
}

// Momentum returns the mechanism's total linear and angular momentum
// about the world origin, expressed in world. The result's Body/Base
// frames are both tagged as world: this is a whole-system aggregate, not
// a single body's momentum relative to another.
func Momentum(s *state.MechanismState) (spatialmath.Momentum, error) {
	mech := s.Mechanism()
	root := mech.Body(mechanism.RootIndex)
	var angular, linear r3.Vector
	for i := 0; i < mech.NumBodies(); i++ {
		idx := mechanism.BodyIndex(i)
		inertiaW, err := s.InertiaInWorld(idx)
		if err != nil {
			return spatialmath.Momentum{}, err
		}
		twist, err := s.TwistWrtWorld(idx)
		if err != nil {
			return spatialmath.Momentum{}, err
		}
		mom, err := inertiaW.Momentum(twist)
		if err != nil {
			return spatialmath.Momentum{}, err
		}
		angular = angular.Add(mom.Angular)
		linear = linear.Add(mom.Linear)
	}
	return spatialmath.Momentum{Body: root.Frame, Base: root.Frame, ExpressedIn: root.Frame, Angular: angular, Linear: linear}, nil
}

// KineticEnergy returns the mechanism's total kinetic energy, the sum of
// each body's 1/2·tw·(I·tw).
func KineticEnergy(s *state.MechanismState) (float64, error) {
	mech := s.Mechanism()
	var total float64
	for i := 0; i < mech.NumBodies(); i++ {
		idx := mechanism.BodyIndex(i)
		inertiaW, err := s.InertiaInWorld(idx)
		if err != nil {
			return 0, err
		}
		twist, err := s.TwistWrtWorld(idx)
		if err != nil {
			return 0, err
		}
		ke, err := inertiaW.KineticEnergy(twist)
		if err != nil {
			return 0, err
		}
		total += ke
	}
	return total, nil
}

// GravitationalPotentialEnergy returns the mechanism's total
// gravitational potential energy, -Σ m_i·(gravity·com_i), consistent
// with F = m·gravity under F = -∇PE.
func GravitationalPotentialEnergy(s *state.MechanismState) (float64, error) {
	mech := s.Mechanism()
	var total float64
	for i := 0; i < mech.NumBodies(); i++ {
		idx := mechanism.BodyIndex(i)
		inertiaW, err := s.InertiaInWorld(idx)
		if err != nil {
			return 0, err
		}
		total += -mech.Gravity.Dot(inertiaW.COM.Mul(inertiaW.Mass))
	}
	return total, nil
}
