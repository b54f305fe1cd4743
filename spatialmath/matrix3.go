package spatialmath

import "github.com/golang/geo/r3"

// Matrix3 is a dense 3x3 matrix, stored by row. It backs rotation matrices
// and rotational-inertia tensors. It is a fixed-size value type so that
// the hot-path spatial-inertia and rotation operations never allocate.
type Matrix3 [3][3]float64

// Identity3 is the 3x3 identity matrix.
var Identity3 = Matrix3{
	{1, 0, 0},
	{0, 1, 0},
	{0, 0, 1},
}

// Diagonal3 builds a diagonal matrix from its three diagonal entries.
func Diagonal3(xx, yy, zz float64) Matrix3 {
	return Matrix3{
		{xx, 0, 0},
		{0, yy, 0},
		{0, 0, zz},
	}
}

// MulVec returns m*v.
func (m Matrix3) MulVec(v r3.Vector) r3.Vector {
	return r3.Vector{
		X: m[0][0]*v.X + m[0][1]*v.Y + m[0][2]*v.Z,
		Y: m[1][0]*v.X + m[1][1]*v.Y + m[1][2]*v.Z,
		Z: m[2][0]*v.X + m[2][1]*v.Y + m[2][2]*v.Z,
	}
}

// Mul returns m*n.
func (m Matrix3) Mul(n Matrix3) Matrix3 {
	var out Matrix3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			var sum float64
			for k := 0; k < 3; k++ {
				sum += m[i][k] * n[k][j]
			}
			out[i][j] = sum
		}
	}
	return out
}

// Add returns m+n.
func (m Matrix3) Add(n Matrix3) Matrix3 {
	var out Matrix3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[i][j] = m[i][j] + n[i][j]
		}
	}
	return out
}

// Sub returns m-n.
func (m Matrix3) Sub(n Matrix3) Matrix3 {
	var out Matrix3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[i][j] = m[i][j] - n[i][j]
		}
	}
	return out
}

// Scale returns s*m.
func (m Matrix3) Scale(s float64) Matrix3 {
	var out Matrix3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[i][j] = m[i][j] * s
		}
	}
	return out
}

// Transpose returns the transpose of m.
func (m Matrix3) Transpose() Matrix3 {
	var out Matrix3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[j][i] = m[i][j]
		}
	}
	return out
}

// Skew returns the skew-symmetric cross-product matrix of v, such that
// Skew(v).MulVec(w) == v.Cross(w).
func Skew(v r3.Vector) Matrix3 {
	return Matrix3{
		{0, -v.Z, v.Y},
		{v.Z, 0, -v.X},
		{-v.Y, v.X, 0},
	}
}

// Outer returns the outer product a*b^T.
func Outer(a, b r3.Vector) Matrix3 {
	return Matrix3{
		{a.X * b.X, a.X * b.Y, a.X * b.Z},
		{a.Y * b.X, a.Y * b.Y, a.Y * b.Z},
		{a.Z * b.X, a.Z * b.Y, a.Z * b.Z},
	}
}

// Trace returns the sum of the diagonal entries.
func (m Matrix3) Trace() float64 {
	return m[0][0] + m[1][1] + m[2][2]
}

// AlmostEqual reports whether m and n agree within tol componentwise.
func (m Matrix3) AlmostEqual(n Matrix3, tol float64) bool {
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			d := m[i][j] - n[i][j]
			if d > tol || d < -tol {
				return false
			}
		}
	}
	return true
}
