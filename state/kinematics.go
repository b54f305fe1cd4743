package state

import (
	"go.viam.com/rbd/mechanism"
	"go.viam.com/rbd/spatialmath"
)

// TransformToRoot returns the transform from f to the mechanism's root
// frame, for any frame registered with the mechanism (a body's default
// frame, one of its auxiliary frames, or a joint's frame_before/
// frame_after).
func (s *MechanismState) TransformToRoot(f *spatialmath.Frame) (spatialmath.Transform, error) {
	if err := s.checkFresh(); err != nil {
		return spatialmath.Transform{}, err
	}
	if s.dirty&groupTransform != 0 {
		if err := s.refreshTransform(); err != nil {
			return spatialmath.Transform{}, err
		}
	}
	return s.transformToRootForFrame(f)
}

// RelativeTransform returns the transform from "from" to "to", both
// registered frames.
func (s *MechanismState) RelativeTransform(from, to *spatialmath.Frame) (spatialmath.Transform, error) {
	fromToRoot, err := s.TransformToRoot(from)
	if err != nil {
		return spatialmath.Transform{}, err
	}
	toToRoot, err := s.TransformToRoot(to)
	if err != nil {
		return spatialmath.Transform{}, err
	}
	return spatialmath.Compose(toToRoot.Inverse(), fromToRoot)
}

// TwistWrtWorld returns the twist of body relative to the world (root),
// expressed in world.
func (s *MechanismState) TwistWrtWorld(body mechanism.BodyIndex) (spatialmath.Twist, error) {
	if err := s.checkFresh(); err != nil {
		return spatialmath.Twist{}, err
	}
	if s.dirty&groupTwist != 0 {
		if err := s.refreshTwist(); err != nil {
			return spatialmath.Twist{}, err
		}
	}
	return s.twistWrtWorld[body], nil
}

// RelativeTwist returns the twist of body relative to base, expressed in
// world: twist(body,root;W) - twist(base,root;W), which by the twist
// chain rule equals twist(body,base;W) regardless of their tree
// relationship.
func (s *MechanismState) RelativeTwist(body, base mechanism.BodyIndex) (spatialmath.Twist, error) {
	bodyTwist, err := s.TwistWrtWorld(body)
	if err != nil {
		return spatialmath.Twist{}, err
	}
	baseTwist, err := s.TwistWrtWorld(base)
	if err != nil {
		return spatialmath.Twist{}, err
	}
	bodyFrame := s.mech.Body(body).Frame
	baseFrame := s.mech.Body(base).Frame
	return spatialmath.NewTwist(bodyFrame, baseFrame, bodyTwist.ExpressedIn,
		bodyTwist.Angular.Sub(baseTwist.Angular), bodyTwist.Linear.Sub(baseTwist.Linear)), nil
}

// BiasAcceleration returns the cached bias acceleration of body (spec
// §4.4), the part of its spatial acceleration independent of v̇.
func (s *MechanismState) BiasAcceleration(body mechanism.BodyIndex) (spatialmath.SpatialAcceleration, error) {
	if err := s.checkFresh(); err != nil {
		return spatialmath.SpatialAcceleration{}, err
	}
	if s.dirty&groupBias != 0 {
		if err := s.refreshBias(); err != nil {
			return spatialmath.SpatialAcceleration{}, err
		}
	}
	return s.bias[body], nil
}

// InertiaInWorld returns body's spatial inertia transformed into world
// axes.
func (s *MechanismState) InertiaInWorld(body mechanism.BodyIndex) (spatialmath.SpatialInertia, error) {
	if err := s.checkFresh(); err != nil {
		return spatialmath.SpatialInertia{}, err
	}
	if s.dirty&groupInertiaWorld != 0 {
		if err := s.refreshInertiaWorld(); err != nil {
			return spatialmath.SpatialInertia{}, err
		}
	}
	return s.inertiaWorld[body], nil
}

// CompositeInertia returns the composite-rigid-body inertia (spec §4.5)
// of the subtree rooted at body, expressed in world.
func (s *MechanismState) CompositeInertia(body mechanism.BodyIndex) (spatialmath.SpatialInertia, error) {
	if err := s.checkFresh(); err != nil {
		return spatialmath.SpatialInertia{}, err
	}
	if s.dirty&groupCRB != 0 {
		if err := s.refreshCRB(); err != nil {
			return spatialmath.SpatialInertia{}, err
		}
	}
	return s.crbInertia[body], nil
}

// MotionSubspaceWorld returns tree joint jointIndex's motion subspace,
// re-expressed in world.
func (s *MechanismState) MotionSubspaceWorld(jointIndex mechanism.JointIndex) (spatialmath.GeometricJacobian, error) {
	if err := s.checkFresh(); err != nil {
		return spatialmath.GeometricJacobian{}, err
	}
	if s.dirty&groupSubspace != 0 {
		if err := s.refreshSubspace(); err != nil {
			return spatialmath.GeometricJacobian{}, err
		}
	}
	return s.motionWorld[jointIndex], nil
}

// ConstraintWrenchSubspaceWorld returns loop joint loopIndex's
// constraint-wrench subspace, re-expressed in world.
func (s *MechanismState) ConstraintWrenchSubspaceWorld(loopIndex int) (spatialmath.GeometricJacobian, error) {
	if err := s.checkFresh(); err != nil {
		return spatialmath.GeometricJacobian{}, err
	}
	if s.dirty&groupSubspace != 0 {
		if err := s.refreshSubspace(); err != nil {
			return spatialmath.GeometricJacobian{}, err
		}
	}
	return s.constraintWorld[loopIndex], nil
}

// ancestorJoints returns, for body, the set of tree-joint indices on its
// path to the root, as a membership set keyed by tree-joint index.
func (s *MechanismState) ancestorJoints(body mechanism.BodyIndex) map[int]bool {
	set := map[int]bool{}
	for idx := body; s.parentJoint[idx] >= 0; {
		j := s.parentJoint[idx]
		set[j] = true
		idx = s.mech.TreeEdges()[j].Predecessor
	}
	return set
}

// GeometricJacobian returns the Jacobian mapping the mechanism's full
// velocity vector v to the twist of body relative to base, expressed in
// expressedIn (spec §4.4's "geometric_jacobian" kinematics query).
// Columns for joints on neither body's nor base's root-path are zero;
// columns for joints ancestral to both (shared ancestors) are zero too,
// since their contribution to twist(body,root) and twist(base,root)
// cancels under subtraction. expressedIn must be a frame this state can
// resolve to a body (see TransformToRoot).
func (s *MechanismState) GeometricJacobian(body, base mechanism.BodyIndex, expressedIn *spatialmath.Frame) (spatialmath.GeometricJacobian, error) {
	if err := s.checkFresh(); err != nil {
		return spatialmath.GeometricJacobian{}, err
	}
	if s.dirty&groupSubspace != 0 {
		if err := s.refreshSubspace(); err != nil {
			return spatialmath.GeometricJacobian{}, err
		}
	}
	expressedInToRoot, err := s.TransformToRoot(expressedIn)
	if err != nil {
		return spatialmath.GeometricJacobian{}, err
	}
	rootToExpressedIn := expressedInToRoot.Inverse()

	bodyAncestors := s.ancestorJoints(body)
	baseAncestors := s.ancestorJoints(base)

	bodyFrame, baseFrame := s.mech.Body(body).Frame, s.mech.Body(base).Frame
	jac := spatialmath.NewGeometricJacobian(bodyFrame, baseFrame, expressedIn, s.mech.NV())
	for jIdx, e := range s.mech.TreeEdges() {
		sign := 0.0
		switch {
		case bodyAncestors[jIdx] && !baseAncestors[jIdx]:
			sign = 1
		case baseAncestors[jIdx] && !bodyAncestors[jIdx]:
			sign = -1
		default:
			continue
		}
		worldJac := s.motionWorld[jIdx]
		for c := 0; c < worldJac.NumCols(); c++ {
			col := worldJac.Column(c)
			reexpressed, err := spatialmath.AdjointTwist(rootToExpressedIn, col)
			if err != nil {
				return spatialmath.GeometricJacobian{}, err
			}
			tw := spatialmath.NewTwist(bodyFrame, baseFrame, expressedIn,
				reexpressed.Angular.Mul(sign), reexpressed.Linear.Mul(sign))
			if err := jac.SetColumn(e.VOffset+c, tw); err != nil {
				return spatialmath.GeometricJacobian{}, err
			}
		}
	}
	return jac, nil
}
