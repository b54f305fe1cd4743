package state

import (
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// ValidateConfiguration checks every tree joint's current configuration
// segment against its joint-manifold constraints (currently: a
// QuaternionFloating joint's quaternion must not be degenerate, the same
// check NormalizeConfiguration performs). It is the direct generalization
// of the teacher's referenceframe "validInputs" check to a mechanism's
// full configuration vector: unlike NormalizeConfiguration, which a
// caller applies one joint at a time and which returns on that joint's
// first failure, ValidateConfiguration walks every tree joint and
// aggregates every failure it finds via multierr.Append, so a caller
// validating a whole configuration (e.g. after deserializing one from a
// planner or a file) sees every offending joint in a single error rather
// than only the first.
//
// ValidateConfiguration does not mutate q; NormalizeConfiguration is run
// against a scratch copy of each joint's segment.
func (s *MechanismState) ValidateConfiguration() error {
	if err := s.checkFresh(); err != nil {
		return err
	}
	var errs error
	for i, e := range s.mech.TreeEdges() {
		qSeg := s.q[e.QOffset : e.QOffset+e.Joint.NQ()]
		scratch := append([]float64(nil), qSeg...)
		if err := e.Joint.NormalizeConfiguration(scratch); err != nil {
			errs = multierr.Append(errs, errors.Wrapf(err, "joint %d (%s)", i, e.Joint.Name))
		}
	}
	return errs
}
