// Package spatialmath implements the spatial-algebra primitives used by
// the rigid-body dynamics core: frames, rigid transforms, twists, spatial
// accelerations, wrenches, momenta, spatial inertias, and geometric
// Jacobians. Every quantity that carries physical meaning also carries the
// frame(s) it is expressed in, following the same "frame as identity tag"
// discipline as go.viam.com/rdk/referenceframe.
package spatialmath

import "fmt"

// Frame is an identity tag for a right-handed orthonormal coordinate
// frame. Frame equality is identity (pointer equality), not name equality:
// two frames created with the same name are distinct frames.
type Frame struct {
	name string
}

// NewFrame allocates a new, distinct Frame with the given display name.
func NewFrame(name string) *Frame {
	return &Frame{name: name}
}

// Name returns the frame's display name. Names are for diagnostics only;
// they do not participate in equality.
func (f *Frame) Name() string {
	if f == nil {
		return "<nil>"
	}
	return f.name
}

// String implements fmt.Stringer so Frame satisfies error-message helpers.
func (f *Frame) String() string {
	return fmt.Sprintf("Frame(%s)", f.Name())
}

// World is a shared inertial frame for standalone spatial-algebra use. A
// Mechanism does not use it: its transform-to-root chain ends at the root
// body's own frame (mechanism.NewRootBody allocates a fresh one).
var World = NewFrame("world")

// sameFrame reports whether two frame pointers refer to the same frame,
// treating nil as "no constraint" only when both sides are nil (which
// should never happen for a fully constructed quantity).
func sameFrame(a, b *Frame) bool {
	return a == b
}
