package joint

import (
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"

	"go.viam.com/rbd/spatialmath"
)

func (j *Joint) prismaticTransform(q []float64) (spatialmath.Transform, error) {
	return spatialmath.NewTransform(j.FrameAfter, j.FrameBefore, quat.Number{Real: 1}, j.axis().Mul(q[0])), nil
}

func (j *Joint) prismaticTwist(v []float64) spatialmath.Twist {
	return spatialmath.NewTwist(j.FrameAfter, j.FrameBefore, j.FrameAfter, r3.Vector{}, j.axis().Mul(v[0]))
}
