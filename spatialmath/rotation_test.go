package spatialmath

import (
	"math"
	"testing"

	"go.viam.com/test"
)

func TestAngleAxisConversion(t *testing.T) {
	// adapted from go.viam.com/rdk/kinematics/kinmath.TestAngleAxisConversion
	startAA := R4AA{2.5980762, 0.577350, 0.577350, 0.577350}
	q := startAA.ToQuat()
	end1 := QuatToR4AA(q)
	test.That(t, math.Abs(end1.Theta-startAA.Theta), test.ShouldBeLessThan, 0.001)
	test.That(t, math.Abs(end1.RX-startAA.RX), test.ShouldBeLessThan, 0.001)
	test.That(t, math.Abs(end1.RY-startAA.RY), test.ShouldBeLessThan, 0.001)
	test.That(t, math.Abs(end1.RZ-startAA.RZ), test.ShouldBeLessThan, 0.001)
}

func TestFlip(t *testing.T) {
	startAA := R4AA{2.5980762, 0.577350, -0.577350, -0.577350}
	q1 := startAA.ToQuat()
	q2 := Flip(startAA.ToQuat())
	end1 := QuatToR4AA(q1)
	end2 := QuatToR4AA(q2)
	// Flip produces the antipodal quaternion, which represents the same
	// rotation up to sign; the recovered axis/angle should match the
	// original up to the theta/axis sign ambiguity.
	test.That(t, math.Abs(math.Abs(end1.Theta)-math.Abs(end2.Theta)) < 1e-6 || math.Abs(end1.Theta+end2.Theta-2*math.Pi) < 1e-6, test.ShouldBeTrue)
}

func TestRotationMatrixIsOrthonormal(t *testing.T) {
	r4 := R4AA{Theta: 1.2, RX: 0.2, RY: 0.4, RZ: 0.9}
	r := RotationMatrix(r4.ToQuat())
	rt := r.Transpose()
	shouldBeIdentity := r.Mul(rt)
	test.That(t, shouldBeIdentity.AlmostEqual(Identity3, 1e-9), test.ShouldBeTrue)
}
