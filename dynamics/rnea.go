package dynamics

import (
	"github.com/golang/geo/r3"

	"go.viam.com/rbd/mechanism"
	"go.viam.com/rbd/rbderrors"
	"go.viam.com/rbd/spatialmath"
	"go.viam.com/rbd/state"
)

// InverseDynamics computes the joint torques τ consistent with the given
// joint accelerations vdot and external body wrenches, via the
// recursive Newton-Euler algorithm (spec §4.6). outTau must be sized
// NV(). outJointWrenches, if non-nil, must be sized len(Mechanism().
// TreeEdges()) and receives the wrench transmitted through each tree
// joint (body(J)'s side of the cut, expressed in world).
//
// Gravity enters through the classic RNEA trick of seeding the root's
// acceleration with -gravity instead of zero: every body's forward-swept
// acceleration then already includes gravitational loading, with no
// separate gravity term needed in the net-wrench step.
func InverseDynamics(
	s *state.MechanismState,
	vdot []float64,
	extWrenches map[mechanism.BodyIndex]spatialmath.Wrench,
	outTau []float64,
	outJointWrenches []spatialmath.Wrench,
) error {
	mech := s.Mechanism()
	nv := mech.NV()
	if len(vdot) != nv {
		return rbderrors.Dimension("InverseDynamics", len(vdot), nv)
	}
	if len(outTau) != nv {
		return rbderrors.Dimension("InverseDynamics", len(outTau), nv)
	}
	edges := mech.TreeEdges()
	if outJointWrenches != nil && len(outJointWrenches) != len(edges) {
		return rbderrors.Dimension("InverseDynamics", len(outJointWrenches), len(edges))
	}

	n := mech.NumBodies()
	root := mech.Body(mechanism.RootIndex)
	accel := make([]spatialmath.SpatialAcceleration, n)
	accel[mechanism.RootIndex] = spatialmath.AccelerationFromComponents(
		root.Frame, root.Frame, root.Frame, r3.Vector{}, mech.Gravity.Mul(-1))

	for j, e := range edges {
		vdotSeg := vdot[e.VOffset : e.VOffset+e.Joint.NV()]
		motion, err := s.MotionSubspaceWorld(mechanism.JointIndex(j))
		if err != nil {
			return err
		}
		sVdot, err := motion.MulVelocity(vdotSeg)
		if err != nil {
			return err
		}
		jointTwist, err := s.RelativeTwist(e.Successor, e.Predecessor)
		if err != nil {
			return err
		}
		parentTwist, err := s.TwistWrtWorld(e.Predecessor)
		if err != nil {
			return err
		}
		coriolis := parentTwist.Cross(jointTwist)
		parentAccel := accel[e.Predecessor]
		accel[e.Successor] = spatialmath.AccelerationFromComponents(
			mech.Body(e.Successor).Frame, root.Frame, root.Frame,
			parentAccel.Angular.Add(sVdot.Angular).Add(coriolis.Angular),
			parentAccel.Linear.Add(sVdot.Linear).Add(coriolis.Linear),
		)
	}

	fAccum := make([]spatialmath.Wrench, n)
	for i := 0; i < n; i++ {
		idx := mechanism.BodyIndex(i)
		inertiaW, err := s.InertiaInWorld(idx)
		if err != nil {
			return err
		}
		twist, err := s.TwistWrtWorld(idx)
		if err != nil {
			return err
		}
		net, err := inertiaW.NetWrench(accel[idx], twist)
		if err != nil {
			return err
		}
		if ext, ok := extWrenches[idx]; ok {
			net, err = net.Sub(ext)
			if err != nil {
				return err
			}
		}
		fAccum[i] = net
	}

	for j := len(edges) - 1; j >= 0; j-- {
		e := edges[j]
		motion, err := s.MotionSubspaceWorld(mechanism.JointIndex(j))
		if err != nil {
			return err
		}
		if outJointWrenches != nil {
			outJointWrenches[j] = fAccum[e.Successor]
		}
		for c := 0; c < e.Joint.NV(); c++ {
			tau, err := fAccum[e.Successor].Power(motion.Column(c))
			if err != nil {
				return err
			}
			outTau[e.VOffset+c] = tau
		}
		merged, err := fAccum[e.Predecessor].Add(fAccum[e.Successor])
		if err != nil {
			return err
		}
		fAccum[e.Predecessor] = merged
	}
	return nil
}
