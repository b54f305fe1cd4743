package state

import (
	"github.com/golang/geo/r3"

	"go.viam.com/rbd/mechanism"
	"go.viam.com/rbd/rbderrors"
	"go.viam.com/rbd/spatialmath"
)

// frameAfterToPredecessor returns the fixed-plus-configuration transform
// FrameAfter -> predecessor.Frame for tree edge e at the given q segment:
// JointPose ∘ Joint.Transform(q).
func frameAfterToPredecessor(e mechanism.TreeEdge, qSeg []float64) (spatialmath.Transform, error) {
	jq, err := e.Joint.Transform(qSeg)
	if err != nil {
		return spatialmath.Transform{}, err
	}
	return spatialmath.Compose(e.JointPose, jq)
}

// refreshTransform recomputes transform-to-root for every body in tree
// order (spec §4.4): T(successor→root) = T(predecessor→root) ∘
// JointPose ∘ Joint.Transform(q) ∘ SuccessorPose⁻¹, per the composition
// convention fixed in mechanism.TreeEdge's doc comment.
func (s *MechanismState) refreshTransform() error {
	root := s.mech.Body(mechanism.RootIndex)
	s.transformToRoot[mechanism.RootIndex] = spatialmath.Identity(root.Frame)
	for _, e := range s.mech.TreeEdges() {
		qSeg := s.q[e.QOffset : e.QOffset+e.Joint.NQ()]
		frameAfterToPred, err := frameAfterToPredecessor(e, qSeg)
		if err != nil {
			return err
		}
		localPose, err := spatialmath.Compose(frameAfterToPred, e.SuccessorPose.Inverse()) // successor -> predecessor
		if err != nil {
			return err
		}
		total, err := spatialmath.Compose(s.transformToRoot[e.Predecessor], localPose) // successor -> root
		if err != nil {
			return err
		}
		s.transformToRoot[e.Successor] = total
	}
	s.dirty &^= groupTransform
	return nil
}

// jointTwistWorld recomputes the world-expressed twist contributed by
// tree joint e alone. The joint's own twist is defined (FrameAfter,
// FrameBefore; FrameAfter); since FrameAfter is rigidly fixed to the
// successor body and FrameBefore to the predecessor, re-expressing it
// in world yields the same Angular/Linear components that
// twist(successor,predecessor;world) would (a spatial velocity
// expressed in a frame external to the body does not depend on which
// material point of the rigid body it was derived from), so the result
// is retagged (successor,predecessor) directly rather than
// independently recomputed.
func (s *MechanismState) jointTwistWorld(e mechanism.TreeEdge) (spatialmath.Twist, error) {
	qSeg := s.q[e.QOffset : e.QOffset+e.Joint.NQ()]
	vSeg := s.v[e.VOffset : e.VOffset+e.Joint.NV()]
	jointTwist, err := e.Joint.Twist(qSeg, vSeg)
	if err != nil {
		return spatialmath.Twist{}, err
	}
	frameAfterToPred, err := frameAfterToPredecessor(e, qSeg)
	if err != nil {
		return spatialmath.Twist{}, err
	}
	frameAfterToWorld, err := spatialmath.Compose(s.transformToRoot[e.Predecessor], frameAfterToPred)
	if err != nil {
		return spatialmath.Twist{}, err
	}
	worldComponents, err := spatialmath.AdjointTwist(frameAfterToWorld, jointTwist)
	if err != nil {
		return spatialmath.Twist{}, err
	}
	root := s.mech.Body(mechanism.RootIndex)
	successorBody := s.mech.Body(e.Successor)
	predecessorBody := s.mech.Body(e.Predecessor)
	return spatialmath.NewTwist(successorBody.Frame, predecessorBody.Frame, root.Frame, worldComponents.Angular, worldComponents.Linear), nil
}

// refreshTwist recomputes twist-w.r.t.-world for every body in tree order.
func (s *MechanismState) refreshTwist() error {
	if s.dirty&groupTransform != 0 {
		if err := s.refreshTransform(); err != nil {
			return err
		}
	}
	root := s.mech.Body(mechanism.RootIndex)
	s.twistWrtWorld[mechanism.RootIndex] = spatialmath.ZeroTwist(root.Frame, root.Frame, root.Frame)
	for _, e := range s.mech.TreeEdges() {
		relabeled, err := s.jointTwistWorld(e)
		if err != nil {
			return err
		}
		composed, err := spatialmath.ComposeTwists(relabeled, s.twistWrtWorld[e.Predecessor])
		if err != nil {
			return err
		}
		s.twistWrtWorld[e.Successor] = composed
	}
	s.dirty &^= groupTwist
	return nil
}

// refreshBias recomputes bias-acceleration for every body (spec §4.4:
// "bias(B;W) = Ad(T(P→W))·bias(P;W) + Ad(...)·joint_bias(qⱼ,vⱼ) +
// twist(P,W;W) × joint_twist(...)"). Every joint type implemented here
// has a configuration-independent motion subspace, so joint_bias is
// identically zero (joint.Joint.BiasAcceleration always returns the
// zero acceleration) and the middle term vanishes; since bias(P;W) is
// already expressed in world, propagating it needs no further adjoint,
// only direct componentwise accumulation with the Coriolis term.
// bias(root)=0: this is the pure velocity-product term at v̇=0 with no
// gravity; RNEA folds gravity in separately via its own root
// pseudo-acceleration trick (spec §4.6), not here.
func (s *MechanismState) refreshBias() error {
	if s.dirty&groupTwist != 0 {
		if err := s.refreshTwist(); err != nil {
			return err
		}
	}
	root := s.mech.Body(mechanism.RootIndex)
	s.bias[mechanism.RootIndex] = spatialmath.AccelerationFromComponents(root.Frame, root.Frame, root.Frame, r3.Vector{}, r3.Vector{})
	for _, e := range s.mech.TreeEdges() {
		successorBody := s.mech.Body(e.Successor)
		jointTwistWorld, err := s.jointTwistWorld(e)
		if err != nil {
			return err
		}
		coriolis := s.twistWrtWorld[e.Predecessor].Cross(jointTwistWorld)
		parentBias := s.bias[e.Predecessor]
		s.bias[e.Successor] = spatialmath.AccelerationFromComponents(
			successorBody.Frame, root.Frame, root.Frame,
			parentBias.Angular.Add(coriolis.Angular),
			parentBias.Linear.Add(coriolis.Linear),
		)
	}
	s.dirty &^= groupBias
	return nil
}

// refreshInertiaWorld recomputes each body's spatial inertia transformed
// into world-frame axes (needed by CRBA and RNEA's net-wrench step).
func (s *MechanismState) refreshInertiaWorld() error {
	if s.dirty&groupTransform != 0 {
		if err := s.refreshTransform(); err != nil {
			return err
		}
	}
	for i := 0; i < s.mech.NumBodies(); i++ {
		idx := mechanism.BodyIndex(i)
		transformed, err := s.mech.Body(idx).Inertia.Transform(s.transformToRoot[idx])
		if err != nil {
			return err
		}
		s.inertiaWorld[idx] = transformed
	}
	s.dirty &^= groupInertiaWorld
	return nil
}

// refreshCRB recomputes the composite-rigid-body inertia of the subtree
// rooted at each body (spec §4.5), by a single reverse-index sweep:
// tree ordering guarantees a body's index exceeds every ancestor's, so
// iterating from the last body down to the root and folding each body's
// accumulated composite into its parent yields the correct bottom-up
// accumulation in one pass.
func (s *MechanismState) refreshCRB() error {
	if s.dirty&groupInertiaWorld != 0 {
		if err := s.refreshInertiaWorld(); err != nil {
			return err
		}
	}
	copy(s.crbInertia, s.inertiaWorld)
	for i := s.mech.NumBodies() - 1; i > 0; i-- {
		idx := mechanism.BodyIndex(i)
		parentEdgeIdx := s.parentJoint[idx]
		parent := s.mech.TreeEdges()[parentEdgeIdx].Predecessor
		merged, err := s.crbInertia[parent].Add(s.crbInertia[idx])
		if err != nil {
			return err
		}
		s.crbInertia[parent] = merged
	}
	s.dirty &^= groupCRB
	return nil
}

// refreshSubspace recomputes every tree joint's motion subspace and
// every loop joint's constraint-wrench subspace, re-expressed in world.
//
// Motion subspace columns are genuine twists, so AdjointTwist re-expresses
// them correctly. Constraint-wrench subspace columns are (torque,force)
// pairs and must transform under the dual (wrench) adjoint instead, even
// though joint.ConstraintWrenchSubspace packs them into the same
// Twist-column GeometricJacobian container as motion subspaces (there is
// no separate WrenchJacobian type): each column is unpacked into a
// Wrench, adjoint-transformed with AdjointWrench, and repacked.
func (s *MechanismState) refreshSubspace() error {
	if s.dirty&groupTransform != 0 {
		if err := s.refreshTransform(); err != nil {
			return err
		}
	}
	for i, e := range s.mech.TreeEdges() {
		qSeg := s.q[e.QOffset : e.QOffset+e.Joint.NQ()]
		local, err := e.Joint.MotionSubspace(qSeg)
		if err != nil {
			return err
		}
		frameAfterToPred, err := frameAfterToPredecessor(e, qSeg)
		if err != nil {
			return err
		}
		frameAfterToWorld, err := spatialmath.Compose(s.transformToRoot[e.Predecessor], frameAfterToPred)
		if err != nil {
			return err
		}
		for c := 0; c < local.NumCols(); c++ {
			worldCol, err := spatialmath.AdjointTwist(frameAfterToWorld, local.Column(c))
			if err != nil {
				return err
			}
			if err := s.motionWorld[i].SetColumn(c, worldCol); err != nil {
				return err
			}
		}
	}
	for i, e := range s.mech.LoopEdges() {
		qSeg := make([]float64, e.Joint.NQ())
		if err := e.Joint.ZeroConfiguration(qSeg); err != nil {
			return err
		}
		local, err := e.Joint.ConstraintWrenchSubspace(qSeg)
		if err != nil {
			return err
		}
		frameAfterToWorld, err := spatialmath.Compose(s.transformToRoot[e.Successor], e.SuccessorPose)
		if err != nil {
			return err
		}
		for c := 0; c < local.NumCols(); c++ {
			col := local.Column(c)
			w := spatialmath.Wrench{ExpressedIn: col.ExpressedIn, Torque: col.Angular, Force: col.Linear}
			transformed, err := spatialmath.AdjointWrench(frameAfterToWorld, w)
			if err != nil {
				return err
			}
			dst := s.constraintWorld[i]
			packed := spatialmath.NewTwist(dst.Body, dst.Base, dst.ExpressedIn, transformed.Torque, transformed.Force)
			if err := dst.SetColumn(c, packed); err != nil {
				return err
			}
		}
	}
	s.dirty &^= groupSubspace
	return nil
}

// transformToRootForFrame returns the transform from an arbitrary
// registered frame (body default, auxiliary, or joint frame) to root,
// assuming the transform group is already fresh.
func (s *MechanismState) transformToRootForFrame(f *spatialmath.Frame) (spatialmath.Transform, error) {
	entry, ok := s.frames[f]
	if !ok {
		return spatialmath.Transform{}, rbderrors.Topology("frame not registered with this mechanism")
	}
	return spatialmath.Compose(s.transformToRoot[entry.body], entry.toBody)
}
