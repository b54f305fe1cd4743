// Package mechanism implements the mechanism data model: bodies, the
// spanning tree of tree joints, loop joints, and the construction API
// (spec §4.3). A Mechanism is built up with Attach calls and becomes
// immutable (modulo RemoveFixedJoints / ChangeJointType, both of which
// bump Version so outstanding MechanismStates detect staleness).
package mechanism

import (
	"go.viam.com/rbd/spatialmath"
)

// BodyIndex identifies a body within a Mechanism's body list. Index 0 is
// always the root.
type BodyIndex int

// JointIndex identifies a joint within a Mechanism's tree-joint list.
type JointIndex int

// Body is a rigid body: a default body-fixed frame, its spatial inertia
// expressed in that frame, and any auxiliary body-fixed frames (e.g.
// sensor or tool frames) with their transforms to the default frame. The
// root body carries a zero inertia; it represents the inertial world
// anchor, not a physical link.
type Body struct {
	Name      string
	Frame     *spatialmath.Frame
	Inertia   spatialmath.SpatialInertia
	AuxFrames map[*spatialmath.Frame]spatialmath.Transform
}

// NewBody allocates a body whose default frame is inertia.Frame; the
// caller constructs that frame and the inertia expressed in it together
// (e.g. f := spatialmath.NewFrame(name); NewBody(name, spatialmath.NewSpatialInertia(f, ...))).
func NewBody(name string, inertia spatialmath.SpatialInertia) *Body {
	return &Body{
		Name:      name,
		Frame:     inertia.Frame,
		Inertia:   inertia,
		AuxFrames: map[*spatialmath.Frame]spatialmath.Transform{},
	}
}

// NewRootBody allocates the distinguished root body, with zero inertia.
func NewRootBody(name string) *Body {
	f := spatialmath.NewFrame(name)
	return &Body{
		Name:      name,
		Frame:     f,
		Inertia:   spatialmath.ZeroSpatialInertia(f),
		AuxFrames: map[*spatialmath.Frame]spatialmath.Transform{},
	}
}

// AddAuxFrame registers a body-fixed auxiliary frame at the given
// transform from that frame to the body's default frame.
func (b *Body) AddAuxFrame(f *spatialmath.Frame, toDefault spatialmath.Transform) {
	b.AuxFrames[f] = toDefault
}
