package mechanism

import (
	"github.com/golang/geo/r3"

	"go.viam.com/rbd/joint"
	"go.viam.com/rbd/rbderrors"
	"go.viam.com/rbd/spatialmath"
)

// TreeEdge is one edge of the spanning tree: a joint connecting a
// predecessor body (closer to the root) to a successor body.
//
// JointPose is the fixed transform from Joint.FrameBefore to the
// predecessor body's default frame; SuccessorPose is the fixed transform
// from Joint.FrameAfter to the successor body's default frame. Composed
// with the joint's own configuration-dependent transform, the one-step
// body-to-parent transform is:
//
//	T(successor→predecessor) = JointPose ∘ Joint.Transform(q) ∘ SuccessorPose⁻¹
//
// This is the convention chosen for the refresh formulas in package
// state (spec §4.4 leaves the exact composition to the implementer).
type TreeEdge struct {
	Joint                    *joint.Joint
	Predecessor, Successor   BodyIndex
	JointPose, SuccessorPose spatialmath.Transform
	QOffset, VOffset         int
}

// LoopEdge is a non-tree joint closing a kinematic cycle. It does not
// alter the spanning tree or body index assignment.
type LoopEdge struct {
	Joint                    *joint.Joint
	Predecessor, Successor   BodyIndex
	JointPose, SuccessorPose spatialmath.Transform
}

// Mechanism is the topological container for a tree of rigid bodies
// connected by joints, plus any loop joints (spec §3, §4.3).
//
// A Mechanism is built by repeated calls to Attach and becomes logically
// frozen once a state.MechanismState is constructed from it; subsequent
// RemoveFixedJoints or ChangeJointType calls bump Version, and any
// outstanding state built on the old version must be rebuilt.
type Mechanism struct {
	Gravity r3.Vector

	bodies     []*Body
	treeEdges  []TreeEdge
	loopEdges  []LoopEdge
	nq, nv     int
	version    int
	frameIndex map[*spatialmath.Frame]BodyIndex
}

// New creates a mechanism with the given root body and gravity vector
// (expressed in world, e.g. {Z: -9.81}).
func New(root *Body, gravity r3.Vector) *Mechanism {
	m := &Mechanism{
		Gravity:    gravity,
		bodies:     []*Body{root},
		frameIndex: map[*spatialmath.Frame]BodyIndex{root.Frame: 0},
	}
	return m
}

// NumBodies returns the number of bodies, including the root.
func (m *Mechanism) NumBodies() int { return len(m.bodies) }

// Body returns the body at index i.
func (m *Mechanism) Body(i BodyIndex) *Body { return m.bodies[i] }

// RootIndex is the body index of the root body, always 0.
const RootIndex BodyIndex = 0

// BodyIndexOf returns the index of the body owning frame f, and whether
// it was found.
func (m *Mechanism) BodyIndexOf(f *spatialmath.Frame) (BodyIndex, bool) {
	idx, ok := m.frameIndex[f]
	return idx, ok
}

// TreeEdges returns the spanning-tree joints in topological order
// (append order from construction, which Attach guarantees satisfies
// Predecessor < Successor).
func (m *Mechanism) TreeEdges() []TreeEdge { return m.treeEdges }

// LoopEdges returns the non-tree joints.
func (m *Mechanism) LoopEdges() []LoopEdge { return m.loopEdges }

// NQ returns the total configuration dimension Σnq over tree joints.
func (m *Mechanism) NQ() int { return m.nq }

// NV returns the total velocity dimension Σnv over tree joints.
func (m *Mechanism) NV() int { return m.nv }

// Version increments every time index assignment changes (RemoveFixedJoints,
// ChangeJointType). MechanismState compares against this to detect staleness.
func (m *Mechanism) Version() int { return m.version }

// Attach connects a new or existing successor body to predecessor via j.
//
// If successor is not yet part of the mechanism, it is appended and a
// TreeEdge is recorded, extending the spanning tree (successor's body
// index is always greater than predecessor's, satisfying the tree
// ordering guarantee in spec §4.3). If successor already belongs to the
// mechanism, j is recorded as a LoopEdge and the tree is unchanged.
//
// jointPose places j.FrameBefore on predecessor (Transform(j.FrameBefore
// → predecessor.Frame)); successorPose places successor's frame on
// j.FrameAfter (Transform(j.FrameAfter → successor.Frame)).
func (m *Mechanism) Attach(
	predecessor BodyIndex,
	successor *Body,
	j *joint.Joint,
	jointPose, successorPose spatialmath.Transform,
) (BodyIndex, error) {
	if int(predecessor) < 0 || int(predecessor) >= len(m.bodies) {
		return 0, rbderrors.Topology("Attach: predecessor index out of range")
	}
	if !sameFrame(jointPose.From(), j.FrameBefore) || !sameFrame(jointPose.To(), m.bodies[predecessor].Frame) {
		return 0, rbderrors.Topology("Attach: jointPose must map FrameBefore to predecessor's frame")
	}
	if !sameFrame(successorPose.From(), j.FrameAfter) || !sameFrame(successorPose.To(), successor.Frame) {
		return 0, rbderrors.Topology("Attach: successorPose must map FrameAfter to successor's frame")
	}

	if existing, ok := m.frameIndex[successor.Frame]; ok {
		m.loopEdges = append(m.loopEdges, LoopEdge{
			Joint: j, Predecessor: predecessor, Successor: existing,
			JointPose: jointPose, SuccessorPose: successorPose,
		})
		return existing, nil
	}

	idx := BodyIndex(len(m.bodies))
	m.bodies = append(m.bodies, successor)
	m.frameIndex[successor.Frame] = idx
	m.treeEdges = append(m.treeEdges, TreeEdge{
		Joint: j, Predecessor: predecessor, Successor: idx,
		JointPose: jointPose, SuccessorPose: successorPose,
		QOffset: m.nq, VOffset: m.nv,
	})
	m.nq += j.NQ()
	m.nv += j.NV()
	return idx, nil
}

func sameFrame(a, b *spatialmath.Frame) bool { return a == b }
