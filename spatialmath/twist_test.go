package spatialmath

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"

	"go.viam.com/test"
)

func TestTwistAddRequiresSameTriple(t *testing.T) {
	bodyA, base, world := NewFrame("a"), NewFrame("base"), World
	t1 := NewTwist(bodyA, base, world, r3.Vector{X: 1}, r3.Vector{})
	t2 := NewTwist(bodyA, base, world, r3.Vector{X: 2}, r3.Vector{})
	sum, err := t1.Add(t2)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, sum.Angular.X, test.ShouldEqual, 3.0)

	bodyB := NewFrame("b")
	t3 := NewTwist(bodyB, base, world, r3.Vector{}, r3.Vector{})
	_, err = t1.Add(t3)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestComposeTwistsChainRule(t *testing.T) {
	a, b, c, world := NewFrame("a"), NewFrame("b"), NewFrame("c"), World
	ab := NewTwist(a, b, world, r3.Vector{Z: 1}, r3.Vector{X: 1})
	bc := NewTwist(b, c, world, r3.Vector{Z: 2}, r3.Vector{X: 2})
	ac, err := ComposeTwists(ab, bc)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, ac.Body, test.ShouldEqual, a)
	test.That(t, ac.Base, test.ShouldEqual, c)
	test.That(t, ac.Angular.Z, test.ShouldEqual, 3.0)
	test.That(t, ac.Linear.X, test.ShouldEqual, 3.0)
}

func TestAdjointTwistPreservesAngularNormUnderPureRotation(t *testing.T) {
	from, to := NewFrame("from"), NewFrame("to")
	body, base := NewFrame("body"), NewFrame("base")
	quarterTurnZ := R4AA{Theta: math.Pi / 2, RX: 0, RY: 0, RZ: 1}.ToQuat()
	xfm := NewTransform(from, to, quarterTurnZ, r3.Vector{})
	tw := NewTwist(body, base, from, r3.Vector{Z: 1}, r3.Vector{X: 1})
	got, err := AdjointTwist(xfm, tw)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, got.ExpressedIn, test.ShouldEqual, to)
	test.That(t, r3VectorAlmostEqual(got.Angular, r3.Vector{Z: 1}, 1e-9), test.ShouldBeTrue)
	test.That(t, r3VectorAlmostEqual(got.Linear, r3.Vector{Y: 1}, 1e-9), test.ShouldBeTrue)
}
