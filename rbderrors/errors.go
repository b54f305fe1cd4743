// Package rbderrors defines the sentinel error kinds shared across the
// rigid-body dynamics core, following the wrap-a-sentinel-with-context
// pattern used throughout go.viam.com/rdk.
package rbderrors

import (
	"fmt"

	"github.com/pkg/errors"
)

// Sentinel error kinds. Use errors.Is against these after wrapping with
// context via the constructors below, or with errors.Wrapf directly.
var (
	// ErrFrameMismatch indicates an operation received spatial quantities
	// whose declared frames violate its contract. Fatal for the call, not
	// for the state or mechanism.
	ErrFrameMismatch = errors.New("frame mismatch")

	// ErrTopology indicates an attach would create invalid mechanism
	// topology, e.g. a duplicate successor in the spanning tree.
	ErrTopology = errors.New("invalid mechanism topology")

	// ErrStaleState indicates a MechanismState was used after its
	// mechanism's topology changed; the caller must rebuild the state.
	ErrStaleState = errors.New("stale mechanism state")

	// ErrSingularInertia indicates CRBA produced a non-positive-definite
	// mass matrix, which indicates a modeling bug (zero or negative link
	// mass/inertia reachable by some joint velocity).
	ErrSingularInertia = errors.New("singular mass matrix")

	// ErrRedundantConstraint indicates the loop-constraint Schur
	// complement was singular during constrained forward dynamics.
	ErrRedundantConstraint = errors.New("redundant loop constraint")

	// ErrDimensionMismatch indicates a caller-supplied buffer has the
	// wrong size for the requested operation.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrConfigurationOutOfRange indicates configuration normalization
	// produced NaN, e.g. normalizing a zero quaternion.
	ErrConfigurationOutOfRange = errors.New("configuration out of range")
)

// FrameMismatch wraps ErrFrameMismatch with the offending operation name.
func FrameMismatch(op string, got, want fmt.Stringer) error {
	return errors.Wrapf(ErrFrameMismatch, "%s: got frame %s, want %s", op, got, want)
}

// Dimension wraps ErrDimensionMismatch with the expected/actual sizes.
func Dimension(op string, got, want int) error {
	return errors.Wrapf(ErrDimensionMismatch, "%s: got length %d, want %d", op, got, want)
}

// Topology wraps ErrTopology with a human-readable reason.
func Topology(reason string) error {
	return errors.Wrap(ErrTopology, reason)
}
