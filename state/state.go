// Package state implements the cached MechanismState described in spec
// §4.4: configuration/velocity storage, per-body-index cache groups with
// dirty-bit invalidation, and lazy topological refresh. A state borrows
// its Mechanism by reference; the mechanism must not be mutated by a
// topology-changing call (RemoveFixedJoints, ChangeJointType) while the
// state is in use without rebuilding the state, or every subsequent call
// fails with rbderrors.ErrStaleState.
package state

import (
	"math/rand"

	"github.com/edaniels/golog"

	"go.viam.com/rbd/mechanism"
	"go.viam.com/rbd/rbderrors"
	"go.viam.com/rbd/spatialmath"
)

// group is a bit in the per-state dirty-bit mask. A set bit means the
// group is DIRTY (needs refresh before its cached values may be read).
type group uint8

const (
	groupTransform group = 1 << iota
	groupTwist
	groupBias
	groupInertiaWorld
	groupCRB
	groupSubspace
	groupAll = groupTransform | groupTwist | groupBias | groupInertiaWorld | groupCRB | groupSubspace
)

// frameEntry locates a registered frame relative to the body that owns
// it, so TransformToRoot/RelativeTransform can operate on any frame the
// mechanism knows about (body default frames, auxiliary frames, and
// joint frame_before/frame_after frames), not just body frames.
type frameEntry struct {
	body   mechanism.BodyIndex
	toBody spatialmath.Transform // frame -> owning body's default frame
}

// MechanismState holds configuration q, velocity v, and the per-body
// cache groups of spec §3/§4.4. It is not safe for concurrent use by
// multiple goroutines; build one state per goroutine from a shared,
// immutable Mechanism (spec §5).
type MechanismState struct {
	mech        *mechanism.Mechanism
	mechVersion int
	logger      golog.Logger

	q    []float64
	v    []float64
	vdot []float64

	dirty group

	frames map[*spatialmath.Frame]frameEntry

	transformToRoot []spatialmath.Transform
	twistWrtWorld   []spatialmath.Twist
	bias            []spatialmath.SpatialAcceleration
	inertiaWorld    []spatialmath.SpatialInertia
	crbInertia      []spatialmath.SpatialInertia
	motionWorld     []spatialmath.GeometricJacobian // per tree joint, indexed like mech.TreeEdges()
	constraintWorld []spatialmath.GeometricJacobian // per loop joint, indexed like mech.LoopEdges()

	// parentJoint[i] is the index into mech.TreeEdges() of the tree joint
	// whose Successor is body i, or -1 for the root. Fixed by topology;
	// rebuilt only when the mechanism version changes.
	parentJoint []int
}

// New builds a fresh state over mech, zero-initialized and fully dirty.
// logger may be nil, in which case a default golog logger is created. The
// state stores the logger; none of its operations write to it.
func New(mech *mechanism.Mechanism, logger golog.Logger) *MechanismState {
	if logger == nil {
		logger = golog.NewLogger("rbd.state")
	}
	n := mech.NumBodies()
	s := &MechanismState{
		mech:            mech,
		mechVersion:     mech.Version(),
		logger:          logger,
		q:               make([]float64, mech.NQ()),
		v:               make([]float64, mech.NV()),
		vdot:            make([]float64, mech.NV()),
		dirty:           groupAll,
		transformToRoot: make([]spatialmath.Transform, n),
		twistWrtWorld:   make([]spatialmath.Twist, n),
		bias:            make([]spatialmath.SpatialAcceleration, n),
		inertiaWorld:    make([]spatialmath.SpatialInertia, n),
		crbInertia:      make([]spatialmath.SpatialInertia, n),
		motionWorld:     make([]spatialmath.GeometricJacobian, len(mech.TreeEdges())),
		constraintWorld: make([]spatialmath.GeometricJacobian, len(mech.LoopEdges())),
		parentJoint:     make([]int, n),
	}
	root := mech.Body(mechanism.RootIndex)
	for i, e := range mech.TreeEdges() {
		s.motionWorld[i] = spatialmath.NewGeometricJacobian(e.Joint.FrameAfter, e.Joint.FrameBefore, root.Frame, e.Joint.NV())
	}
	for i, e := range mech.LoopEdges() {
		s.constraintWorld[i] = spatialmath.NewGeometricJacobian(e.Joint.FrameAfter, e.Joint.FrameBefore, root.Frame, e.Joint.NConstraint())
	}
	s.parentJoint[mechanism.RootIndex] = -1
	for i, e := range mech.TreeEdges() {
		s.parentJoint[e.Successor] = i
	}
	s.frames = buildFrameRegistry(mech)
	return s
}

// Mechanism returns the mechanism this state was built from.
func (s *MechanismState) Mechanism() *mechanism.Mechanism { return s.mech }

// checkFresh returns ErrStaleState if the mechanism's topology changed
// since this state was constructed.
func (s *MechanismState) checkFresh() error {
	if s.mech.Version() != s.mechVersion {
		return rbderrors.ErrStaleState
	}
	return nil
}

// Configuration returns the live configuration vector. Callers must not
// resize it; mutate entries via SetConfiguration or write directly and
// follow with SetDirty.
func (s *MechanismState) Configuration() []float64 { return s.q }

// Velocity returns the live velocity vector, with the same caveats as
// Configuration.
func (s *MechanismState) Velocity() []float64 { return s.v }

// Acceleration returns the live acceleration vector v̇ (typically written
// by the caller of dynamics.Solve / dynamics.InverseDynamics, not by the
// cache itself).
func (s *MechanismState) Acceleration() []float64 { return s.vdot }

// SetConfiguration writes values into the configuration segment owned by
// the tree joint at jointIndex, invalidating every group writing q
// affects (spec §4.4: transform, twist, bias, inertia-in-world, crb,
// subspace).
func (s *MechanismState) SetConfiguration(jointIndex mechanism.JointIndex, values []float64) error {
	if err := s.checkFresh(); err != nil {
		return err
	}
	e := s.mech.TreeEdges()[jointIndex]
	if len(values) != e.Joint.NQ() {
		return rbderrors.Dimension("SetConfiguration", len(values), e.Joint.NQ())
	}
	copy(s.q[e.QOffset:e.QOffset+e.Joint.NQ()], values)
	s.dirty |= groupAll
	return nil
}

// SetVelocity writes values into the velocity segment owned by the tree
// joint at jointIndex, invalidating twist and bias (spec §4.4).
func (s *MechanismState) SetVelocity(jointIndex mechanism.JointIndex, values []float64) error {
	if err := s.checkFresh(); err != nil {
		return err
	}
	e := s.mech.TreeEdges()[jointIndex]
	if len(values) != e.Joint.NV() {
		return rbderrors.Dimension("SetVelocity", len(values), e.Joint.NV())
	}
	copy(s.v[e.VOffset:e.VOffset+e.Joint.NV()], values)
	s.dirty |= groupTwist | groupBias
	return nil
}

// SetAcceleration writes v̇. This does not itself invalidate any
// MechanismState cache group: v̇ feeds only dynamics-package-local
// per-body acceleration scratch (RNEA's forward sweep), which that
// package recomputes on every call rather than caching here.
func (s *MechanismState) SetAcceleration(values []float64) error {
	if len(values) != len(s.vdot) {
		return rbderrors.Dimension("SetAcceleration", len(values), len(s.vdot))
	}
	copy(s.vdot, values)
	return nil
}

// SetDirty invalidates every cache group unconditionally.
func (s *MechanismState) SetDirty() {
	s.dirty = groupAll
}

// ZeroConfiguration writes each tree joint's zero configuration into q
// and marks all groups dirty.
func (s *MechanismState) ZeroConfiguration() error {
	if err := s.checkFresh(); err != nil {
		return err
	}
	for _, e := range s.mech.TreeEdges() {
		if err := e.Joint.ZeroConfiguration(s.q[e.QOffset : e.QOffset+e.Joint.NQ()]); err != nil {
			return err
		}
	}
	s.dirty |= groupAll
	return nil
}

// RandConfiguration writes a random valid configuration into q using rng
// and marks all groups dirty.
func (s *MechanismState) RandConfiguration(rng *rand.Rand) error {
	if err := s.checkFresh(); err != nil {
		return err
	}
	for _, e := range s.mech.TreeEdges() {
		if err := e.Joint.RandConfiguration(s.q[e.QOffset:e.QOffset+e.Joint.NQ()], rng); err != nil {
			return err
		}
	}
	s.dirty |= groupAll
	return nil
}

func buildFrameRegistry(mech *mechanism.Mechanism) map[*spatialmath.Frame]frameEntry {
	reg := map[*spatialmath.Frame]frameEntry{}
	for i := 0; i < mech.NumBodies(); i++ {
		b := mech.Body(mechanism.BodyIndex(i))
		reg[b.Frame] = frameEntry{body: mechanism.BodyIndex(i), toBody: spatialmath.Identity(b.Frame)}
		for f, t := range b.AuxFrames {
			reg[f] = frameEntry{body: mechanism.BodyIndex(i), toBody: t}
		}
	}
	for _, e := range mech.TreeEdges() {
		reg[e.Joint.FrameBefore] = frameEntry{body: e.Predecessor, toBody: e.JointPose}
		reg[e.Joint.FrameAfter] = frameEntry{body: e.Successor, toBody: e.SuccessorPose}
	}
	for _, e := range mech.LoopEdges() {
		reg[e.Joint.FrameBefore] = frameEntry{body: e.Predecessor, toBody: e.JointPose}
		reg[e.Joint.FrameAfter] = frameEntry{body: e.Successor, toBody: e.SuccessorPose}
	}
	return reg
}
