package joint

import (
	"math"
	"math/rand"
	"testing"

	"github.com/golang/geo/r3"

	"go.viam.com/rbd/spatialmath"
	"go.viam.com/test"
)

func TestConstraintDimensionFormula(t *testing.T) {
	before, after := spatialmath.NewFrame("before"), spatialmath.NewFrame("after")
	cases := []struct {
		variant           Variant
		wantNQ, wantNV, wantNC int
	}{
		{Revolute, 1, 1, 5},
		{Prismatic, 1, 1, 5},
		{Planar, 3, 3, 3},
		{Fixed, 0, 0, 6},
		{QuaternionFloating, 7, 6, 0},
		{SPQuatFloating, 6, 6, 0},
	}
	for _, c := range cases {
		j := &Joint{Variant: c.variant, Axis: r3.Vector{Z: 1}, FrameBefore: before, FrameAfter: after}
		test.That(t, j.NQ(), test.ShouldEqual, c.wantNQ)
		test.That(t, j.NV(), test.ShouldEqual, c.wantNV)
		test.That(t, j.NConstraint(), test.ShouldEqual, c.wantNC)
	}
}

func TestRevoluteTransformRotatesAboutAxis(t *testing.T) {
	before, after := spatialmath.NewFrame("before"), spatialmath.NewFrame("after")
	j := &Joint{Variant: Revolute, Axis: r3.Vector{Z: 1}, FrameBefore: before, FrameAfter: after}
	xfm, err := j.Transform([]float64{math.Pi / 2})
	test.That(t, err, test.ShouldBeNil)
	got := xfm.TransformPoint(r3.Vector{X: 1})
	test.That(t, math.Abs(got.Y-1) < 1e-9, test.ShouldBeTrue)
}

func TestPrismaticTransformTranslatesAlongAxis(t *testing.T) {
	before, after := spatialmath.NewFrame("before"), spatialmath.NewFrame("after")
	j := &Joint{Variant: Prismatic, Axis: r3.Vector{X: 1}, FrameBefore: before, FrameAfter: after}
	xfm, err := j.Transform([]float64{2.5})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, xfm.Translation().X, test.ShouldEqual, 2.5)
}

func TestMotionSubspaceDimensionsMatchNV(t *testing.T) {
	before, after := spatialmath.NewFrame("before"), spatialmath.NewFrame("after")
	for _, variant := range []Variant{Revolute, Prismatic, Planar, Fixed, QuaternionFloating, SPQuatFloating} {
		j := &Joint{Variant: variant, Axis: r3.Vector{Z: 1}, FrameBefore: before, FrameAfter: after}
		q := make([]float64, j.NQ())
		test.That(t, j.ZeroConfiguration(q), test.ShouldBeNil)
		s, err := j.MotionSubspace(q)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, s.NumCols(), test.ShouldEqual, j.NV())

		c, err := j.ConstraintWrenchSubspace(q)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, c.NumCols(), test.ShouldEqual, j.NConstraint())
	}
}

func TestBiasAccelerationIsZero(t *testing.T) {
	before, after := spatialmath.NewFrame("before"), spatialmath.NewFrame("after")
	rng := rand.New(rand.NewSource(1))
	for _, variant := range []Variant{Revolute, Prismatic, Planar, Fixed, QuaternionFloating, SPQuatFloating} {
		j := &Joint{Variant: variant, Axis: r3.Vector{Z: 1}, FrameBefore: before, FrameAfter: after}
		q := make([]float64, j.NQ())
		v := make([]float64, j.NV())
		test.That(t, j.RandConfiguration(q, rng), test.ShouldBeNil)
		bias, err := j.BiasAcceleration(q, v)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, r3VectorAlmostEqual(bias.Angular, r3.Vector{}), test.ShouldBeTrue)
		test.That(t, r3VectorAlmostEqual(bias.Linear, r3.Vector{}), test.ShouldBeTrue)
	}
}

func r3VectorAlmostEqual(a, b r3.Vector) bool {
	const tol = 1e-9
	return math.Abs(a.X-b.X) < tol && math.Abs(a.Y-b.Y) < tol && math.Abs(a.Z-b.Z) < tol
}

func TestQuaternionFloatingVelocityRoundTrip(t *testing.T) {
	before, after := spatialmath.NewFrame("before"), spatialmath.NewFrame("after")
	j := &Joint{Variant: QuaternionFloating, FrameBefore: before, FrameAfter: after}
	rng := rand.New(rand.NewSource(7))
	q := make([]float64, j.NQ())
	test.That(t, j.RandConfiguration(q, rng), test.ShouldBeNil)
	v := []float64{0.1, -0.2, 0.3, 1, 2, 3}

	qdot := make([]float64, j.NQ())
	test.That(t, j.VelocityToConfigurationDerivative(q, v, qdot), test.ShouldBeNil)

	vBack := make([]float64, j.NV())
	test.That(t, j.ConfigurationDerivativeToVelocity(q, qdot, vBack), test.ShouldBeNil)

	for i := range v {
		test.That(t, math.Abs(v[i]-vBack[i]) < 1e-9, test.ShouldBeTrue)
	}
}

func TestSPQuatFloatingVelocityRoundTrip(t *testing.T) {
	before, after := spatialmath.NewFrame("before"), spatialmath.NewFrame("after")
	j := &Joint{Variant: SPQuatFloating, FrameBefore: before, FrameAfter: after}
	rng := rand.New(rand.NewSource(11))
	q := make([]float64, j.NQ())
	test.That(t, j.RandConfiguration(q, rng), test.ShouldBeNil)
	v := []float64{0.2, 0.1, -0.1, -1, 0.5, 2}

	qdot := make([]float64, j.NQ())
	test.That(t, j.VelocityToConfigurationDerivative(q, v, qdot), test.ShouldBeNil)

	vBack := make([]float64, j.NV())
	test.That(t, j.ConfigurationDerivativeToVelocity(q, qdot, vBack), test.ShouldBeNil)

	for i := range v {
		test.That(t, math.Abs(v[i]-vBack[i]) < 1e-7, test.ShouldBeTrue)
	}
}

func TestNormalizeConfigurationRejectsZeroQuaternion(t *testing.T) {
	before, after := spatialmath.NewFrame("before"), spatialmath.NewFrame("after")
	j := &Joint{Variant: QuaternionFloating, FrameBefore: before, FrameAfter: after}
	q := make([]float64, j.NQ())
	err := j.NormalizeConfiguration(q)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestConfigBuild(t *testing.T) {
	before, after := spatialmath.NewFrame("before"), spatialmath.NewFrame("after")
	cfg := Config{Name: "shoulder", Type: "revolute", Axis: AxisConfig{Z: 1}}
	j, err := cfg.Build(before, after)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, j.Variant, test.ShouldEqual, Revolute)
	test.That(t, j.NV(), test.ShouldEqual, 1)

	_, err = Config{Type: "bogus"}.Build(before, after)
	test.That(t, err, test.ShouldNotBeNil)
}
