package dynamics

import (
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/rbd/mechanism"
	"go.viam.com/rbd/rbderrors"
	"go.viam.com/rbd/state"
)

// MassMatrix computes the mechanism's mass matrix M into the
// caller-supplied out, via the composite rigid body algorithm (spec
// §4.5). out must already be sized NV()xNV(); callers on a hot path
// should allocate it once and reuse it across calls.
//
// For each tree joint J, F holds the columns of I^c(body(J))·S_J (each
// column reinterpreted as a wrench via the bilinear pairing shared by
// momentum and wrench 6-vectors). For every ancestor A of body(J), up to
// and including J itself, M[range(J),range(A)] = S_A^T·F; SymDense.SetSym
// fills both triangles, so no separate reflection pass is needed. Loop
// joints make no contribution, per spec §4.5.
func MassMatrix(s *state.MechanismState, out *mat.SymDense) error {
	mech := s.Mechanism()
	nv := mech.NV()
	if n, _ := out.Dims(); n != nv {
		return rbderrors.Dimension("MassMatrix", n, nv)
	}
	edges := mech.TreeEdges()
	parentJoint := buildParentJoint(mech)

	for j, e := range edges {
		composite, err := s.CompositeInertia(e.Successor)
		if err != nil {
			return err
		}
		motion, err := s.MotionSubspaceWorld(mechanism.JointIndex(j))
		if err != nil {
			return err
		}
		nvJ := e.Joint.NV()
		wrenches := make([]wrenchPair, nvJ)
		for c := 0; c < nvJ; c++ {
			mom, err := composite.Momentum(motion.Column(c))
			if err != nil {
				return err
			}
			wrenches[c] = wrenchPair{torque: mom.Angular, force: mom.Linear}
		}

		for _, aIdx := range ancestorJointsInclusive(mech, parentJoint, j) {
			ae := edges[aIdx]
			aMotion, err := s.MotionSubspaceWorld(mechanism.JointIndex(aIdx))
			if err != nil {
				return err
			}
			nvA := ae.Joint.NV()
			for c := 0; c < nvJ; c++ {
				for d := 0; d < nvA; d++ {
					col := aMotion.Column(d)
					val := wrenches[c].torque.Dot(col.Angular) + wrenches[c].force.Dot(col.Linear)
					out.SetSym(e.VOffset+c, ae.VOffset+d, val)
				}
			}
		}
	}
	return nil
}

// wrenchPair is the raw (torque, force) pair used internally by CRBA to
// avoid constructing a full spatialmath.Wrench (and its frame check) for
// every matrix entry on this hot path.
type wrenchPair struct {
	torque, force r3.Vector
}
