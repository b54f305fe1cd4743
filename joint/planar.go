package joint

import (
	"go.viam.com/rbd/spatialmath"
)

func (j *Joint) planarTransform(q []float64) (spatialmath.Transform, error) {
	u, v, normal := j.planeBasis()
	trans := u.Mul(q[0]).Add(v.Mul(q[1]))
	rot := spatialmath.R4AA{Theta: q[2], RX: normal.X, RY: normal.Y, RZ: normal.Z}.ToQuat()
	return spatialmath.NewTransform(j.FrameAfter, j.FrameBefore, rot, trans), nil
}

func (j *Joint) planarTwist(v []float64) spatialmath.Twist {
	u, vb, normal := j.planeBasis()
	linear := u.Mul(v[0]).Add(vb.Mul(v[1]))
	angular := normal.Mul(v[2])
	return spatialmath.NewTwist(j.FrameAfter, j.FrameBefore, j.FrameAfter, angular, linear)
}
