package mechanism

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"

	"go.viam.com/rbd/joint"
	"go.viam.com/rbd/spatialmath"
	"go.viam.com/test"
)

func singleRevoluteChain(n int) (*Mechanism, []*joint.Joint) {
	root := NewRootBody("world")
	m := New(root, r3.Vector{Z: -9.81})
	joints := make([]*joint.Joint, 0, n)
	pred := RootIndex
	for i := 0; i < n; i++ {
		bodyFrame := spatialmath.NewFrame("link")
		inertia := spatialmath.NewSpatialInertia(bodyFrame, 1, r3.Vector{}, spatialmath.Diagonal3(1.0/3, 1.0/3, 1.0/3))
		body := NewBody("link", inertia)
		frameBefore := spatialmath.NewFrame("frame_before")
		frameAfter := spatialmath.NewFrame("frame_after")
		j := &joint.Joint{Name: "j", Variant: joint.Revolute, Axis: r3.Vector{Z: 1}, FrameBefore: frameBefore, FrameAfter: frameAfter}
		jointPose := spatialmath.NewTransform(frameBefore, m.Body(pred).Frame, quat.Number{Real: 1}, r3.Vector{})
		successorPose := spatialmath.NewTransform(frameAfter, body.Frame, quat.Number{Real: 1}, r3.Vector{})
		newIdx, err := m.Attach(pred, body, j, jointPose, successorPose)
		if err != nil {
			panic(err)
		}
		joints = append(joints, j)
		pred = newIdx
	}
	return m, joints
}

func TestAttachGrowsTreeInOrder(t *testing.T) {
	m, _ := singleRevoluteChain(3)
	test.That(t, m.NumBodies(), test.ShouldEqual, 4)
	test.That(t, m.NQ(), test.ShouldEqual, 3)
	test.That(t, m.NV(), test.ShouldEqual, 3)
	for _, e := range m.TreeEdges() {
		test.That(t, e.Predecessor < e.Successor, test.ShouldBeTrue)
	}
}

func TestAttachExistingBodyCreatesLoopEdge(t *testing.T) {
	m, joints := singleRevoluteChain(2)
	lastBody := m.Body(BodyIndex(2))
	frameBefore := spatialmath.NewFrame("loop_before")
	frameAfter := spatialmath.NewFrame("loop_after")
	loopJoint := &joint.Joint{Name: "loop", Variant: joint.Revolute, Axis: r3.Vector{Z: 1}, FrameBefore: frameBefore, FrameAfter: frameAfter}
	jointPose := spatialmath.NewTransform(frameBefore, m.Body(RootIndex).Frame, quat.Number{Real: 1}, r3.Vector{})
	successorPose := spatialmath.NewTransform(frameAfter, lastBody.Frame, quat.Number{Real: 1}, r3.Vector{})

	before := m.NumBodies()
	_, err := m.Attach(RootIndex, lastBody, loopJoint, jointPose, successorPose)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, m.NumBodies(), test.ShouldEqual, before)
	test.That(t, len(m.LoopEdges()), test.ShouldEqual, 1)
	_ = joints
}

func TestRemoveFixedJointsPreservesMass(t *testing.T) {
	root := NewRootBody("world")
	m := New(root, r3.Vector{Z: -9.81})

	frameA := spatialmath.NewFrame("a")
	inertiaA := spatialmath.NewSpatialInertia(frameA, 2, r3.Vector{}, spatialmath.Diagonal3(1, 1, 1))
	bodyA := NewBody("a", inertiaA)
	fbA, faA := spatialmath.NewFrame("fbA"), spatialmath.NewFrame("faA")
	jA := &joint.Joint{Name: "jA", Variant: joint.Fixed, FrameBefore: fbA, FrameAfter: faA}
	poseA := spatialmath.NewTransform(fbA, root.Frame, quat.Number{Real: 1}, r3.Vector{})
	succPoseA := spatialmath.NewTransform(faA, bodyA.Frame, quat.Number{Real: 1}, r3.Vector{})
	idxA, err := m.Attach(RootIndex, bodyA, jA, poseA, succPoseA)
	test.That(t, err, test.ShouldBeNil)

	frameB := spatialmath.NewFrame("b")
	inertiaB := spatialmath.NewSpatialInertia(frameB, 3, r3.Vector{}, spatialmath.Diagonal3(1, 1, 1))
	bodyB := NewBody("b", inertiaB)
	fbB, faB := spatialmath.NewFrame("fbB"), spatialmath.NewFrame("faB")
	jB := &joint.Joint{Name: "jB", Variant: joint.Revolute, Axis: r3.Vector{Z: 1}, FrameBefore: fbB, FrameAfter: faB}
	poseB := spatialmath.NewTransform(fbB, bodyA.Frame, quat.Number{Real: 1}, r3.Vector{})
	succPoseB := spatialmath.NewTransform(faB, bodyB.Frame, quat.Number{Real: 1}, r3.Vector{})
	_, err = m.Attach(idxA, bodyB, jB, poseB, succPoseB)
	test.That(t, err, test.ShouldBeNil)

	totalMassBefore := 0.0
	for i := 0; i < m.NumBodies(); i++ {
		totalMassBefore += m.Body(BodyIndex(i)).Inertia.Mass
	}

	versionBefore := m.Version()
	err = m.RemoveFixedJoints()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, m.Version(), test.ShouldBeGreaterThan, versionBefore)
	test.That(t, m.NumBodies(), test.ShouldEqual, 2) // root (with a merged in) + b

	totalMassAfter := 0.0
	for i := 0; i < m.NumBodies(); i++ {
		totalMassAfter += m.Body(BodyIndex(i)).Inertia.Mass
	}
	test.That(t, math.Abs(totalMassBefore-totalMassAfter) < 1e-12, test.ShouldBeTrue)
	test.That(t, m.NV(), test.ShouldEqual, 1)
}

func TestChangeJointTypeReassignsOffsetsAndBumpsVersion(t *testing.T) {
	m, _ := singleRevoluteChain(2)
	versionBefore := m.Version()
	err := m.ChangeJointType(JointIndex(0), joint.Prismatic)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, m.Version(), test.ShouldBeGreaterThan, versionBefore)
	test.That(t, m.TreeEdges()[0].Joint.Variant, test.ShouldEqual, joint.Prismatic)
	test.That(t, m.TreeEdges()[1].QOffset, test.ShouldEqual, 1)
}
