package spatialmath

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"

	"go.viam.com/test"
)

func TestTransformRoundTrip(t *testing.T) {
	a, b := NewFrame("a"), NewFrame("b")
	rot := R4AA{Theta: math.Pi / 3, RX: 0, RY: 0, RZ: 1}.ToQuat()
	ab := NewTransform(a, b, rot, r3.Vector{X: 1, Y: 2, Z: 3})

	ba := ab.Inverse()
	test.That(t, ba.From(), test.ShouldEqual, b)
	test.That(t, ba.To(), test.ShouldEqual, a)

	composed, err := Compose(ba, ab)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, TransformAlmostEqual(composed, Identity(a), 1e-9), test.ShouldBeTrue)
}

func TestComposeFrameMismatch(t *testing.T) {
	a, b, c := NewFrame("a"), NewFrame("b"), NewFrame("c")
	ab := NewTransform(a, b, quat.Number{Real: 1}, r3.Vector{})
	cb := NewTransform(c, b, quat.Number{Real: 1}, r3.Vector{})
	_, err := Compose(ab, cb)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestTransformPoint(t *testing.T) {
	a, b := NewFrame("a"), NewFrame("b")
	quarterTurnZ := R4AA{Theta: math.Pi / 2, RX: 0, RY: 0, RZ: 1}.ToQuat()
	ab := NewTransform(a, b, quarterTurnZ, r3.Vector{X: 1})
	got := ab.TransformPoint(r3.Vector{X: 1})
	want := r3.Vector{X: 1, Y: 1}
	test.That(t, r3VectorAlmostEqual(got, want, 1e-9), test.ShouldBeTrue)
}
