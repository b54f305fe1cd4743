package joint

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/rbd/spatialmath"
)

// AxisConfig is the JSON wire representation of a unit axis, mirroring
// the {x,y,z} triples used throughout go.viam.com/rdk's model JSON config.
type AxisConfig struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// ToR3 converts a parsed AxisConfig to an r3.Vector.
func (a AxisConfig) ToR3() r3.Vector {
	return r3.Vector{X: a.X, Y: a.Y, Z: a.Z}
}

// Config is the JSON description of a single joint within a mechanism
// model file, analogous to go.viam.com/rdk/referenceframe's JointConfig.
// Min/Max are carried through for fixture/debug round-tripping but are
// not enforced by any operation in this package; limit enforcement is a
// collaborator concern (e.g. a planner), per spec.md's Non-goals.
type Config struct {
	Name   string     `json:"name"`
	Type   string     `json:"type"`
	Axis   AxisConfig `json:"axis,omitempty"`
	Normal AxisConfig `json:"normal,omitempty"`
	Min    []float64  `json:"min,omitempty"`
	Max    []float64  `json:"max,omitempty"`
}

// variantByName maps the JSON "type" string to a Variant.
var variantByName = map[string]Variant{
	"revolute":            Revolute,
	"prismatic":           Prismatic,
	"planar":              Planar,
	"fixed":               Fixed,
	"quaternion_floating": QuaternionFloating,
	"spquat_floating":     SPQuatFloating,
}

// ParseVariant resolves a JSON joint-type string to a Variant.
func ParseVariant(name string) (Variant, error) {
	v, ok := variantByName[name]
	if !ok {
		return 0, errors.Errorf("unknown joint type %q", name)
	}
	return v, nil
}

// Build constructs a Joint from its Config, given the two frames it
// connects.
func (c Config) Build(frameBefore, frameAfter *spatialmath.Frame) (*Joint, error) {
	variant, err := ParseVariant(c.Type)
	if err != nil {
		return nil, errors.Wrapf(err, "joint %q", c.Name)
	}
	return &Joint{
		Name:        c.Name,
		Variant:     variant,
		Axis:        c.Axis.ToR3(),
		PlaneNormal: c.Normal.ToR3(),
		FrameBefore: frameBefore,
		FrameAfter:  frameAfter,
	}, nil
}
