package spatialmath

import (
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/rbd/rbderrors"
)

// GeometricJacobian is a 6xn matrix whose columns are twists of Body
// relative to Base expressed in ExpressedIn, per unit of the
// corresponding joint velocity. Rows 0-2 are the angular part, rows 3-5
// the linear part, matching the stacking used by Twist.
type GeometricJacobian struct {
	Body, Base, ExpressedIn *Frame
	Mat                     *mat.Dense // 6 x n
}

// NewGeometricJacobian allocates a zeroed n-column Jacobian. Callers on
// the hot path should allocate once and reuse via SetColumn.
func NewGeometricJacobian(body, base, expressedIn *Frame, n int) GeometricJacobian {
	if n == 0 {
		// gonum rejects zero-sized dimensions; an empty Dense reports 0 columns.
		return GeometricJacobian{Body: body, Base: base, ExpressedIn: expressedIn, Mat: &mat.Dense{}}
	}
	return GeometricJacobian{Body: body, Base: base, ExpressedIn: expressedIn, Mat: mat.NewDense(6, n, nil)}
}

// NumCols returns n.
func (g GeometricJacobian) NumCols() int { return g.Mat.RawMatrix().Cols }

// SetColumn writes tw into column j, requiring tw's frame annotations to
// match the Jacobian's.
func (g GeometricJacobian) SetColumn(j int, tw Twist) error {
	if !sameFrame(g.Body, tw.Body) || !sameFrame(g.Base, tw.Base) || !sameFrame(g.ExpressedIn, tw.ExpressedIn) {
		return rbderrors.FrameMismatch("GeometricJacobian.SetColumn", tw.ExpressedIn, g.ExpressedIn)
	}
	g.Mat.Set(0, j, tw.Angular.X)
	g.Mat.Set(1, j, tw.Angular.Y)
	g.Mat.Set(2, j, tw.Angular.Z)
	g.Mat.Set(3, j, tw.Linear.X)
	g.Mat.Set(4, j, tw.Linear.Y)
	g.Mat.Set(5, j, tw.Linear.Z)
	return nil
}

// Column returns column j as a Twist.
func (g GeometricJacobian) Column(j int) Twist {
	return Twist{
		Body: g.Body, Base: g.Base, ExpressedIn: g.ExpressedIn,
		Angular: r3.Vector{X: g.Mat.At(0, j), Y: g.Mat.At(1, j), Z: g.Mat.At(2, j)},
		Linear:  r3.Vector{X: g.Mat.At(3, j), Y: g.Mat.At(4, j), Z: g.Mat.At(5, j)},
	}
}

// MulVelocity returns the twist Jv for a velocity vector v of length NumCols().
func (g GeometricJacobian) MulVelocity(v []float64) (Twist, error) {
	if len(v) != g.NumCols() {
		return Twist{}, rbderrors.Dimension("GeometricJacobian.MulVelocity", len(v), g.NumCols())
	}
	var col mat.VecDense
	col.MulVec(g.Mat, mat.NewVecDense(len(v), v))
	return Twist{
		Body: g.Body, Base: g.Base, ExpressedIn: g.ExpressedIn,
		Angular: r3.Vector{X: col.AtVec(0), Y: col.AtVec(1), Z: col.AtVec(2)},
		Linear:  r3.Vector{X: col.AtVec(3), Y: col.AtVec(4), Z: col.AtVec(5)},
	}, nil
}
