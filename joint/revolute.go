package joint

import (
	"github.com/golang/geo/r3"

	"go.viam.com/rbd/spatialmath"
)

func (j *Joint) revoluteTransform(q []float64) (spatialmath.Transform, error) {
	axis := j.axis()
	rot := spatialmath.R4AA{Theta: q[0], RX: axis.X, RY: axis.Y, RZ: axis.Z}.ToQuat()
	return spatialmath.NewTransform(j.FrameAfter, j.FrameBefore, rot, r3.Vector{}), nil
}

func (j *Joint) revoluteTwist(v []float64) spatialmath.Twist {
	return spatialmath.NewTwist(j.FrameAfter, j.FrameBefore, j.FrameAfter, j.axis().Mul(v[0]), r3.Vector{})
}
