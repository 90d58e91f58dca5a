package d3

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// R3 vector helpers shared by the geometry packages.

// Epsilon is the relative size under which geometry is treated as
// degenerate: a sine of an angle, a length ratio or an area to squared
// edge length ratio. Dimensionless quantities such as cotangent weight
// sums are compared against it directly.
const Epsilon = 1e-12

func Elem(sides float64) r3.Vec {
	return r3.Vec{
		X: sides,
		Y: sides,
		Z: sides,
	}
}

// MinElem return a vector with the minimum components of two vectors.
func MinElem(a, b r3.Vec) r3.Vec {
	return r3.Vec{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y), Z: math.Min(a.Z, b.Z)}
}

// MaxElem return a vector with the maximum components of two vectors.
func MaxElem(a, b r3.Vec) r3.Vec {
	return r3.Vec{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y), Z: math.Max(a.Z, b.Z)}
}

// IsFinite returns false if any component is NaN or infinite.
func IsFinite(a r3.Vec) bool {
	return !(math.IsNaN(a.X) || math.IsInf(a.X, 0) ||
		math.IsNaN(a.Y) || math.IsInf(a.Y, 0) ||
		math.IsNaN(a.Z) || math.IsInf(a.Z, 0))
}

// Cot returns the cotangent of the angle between d0 and d1 and
// false if the vectors are (nearly) parallel or zero.
func Cot(d0, d1 r3.Vec) (float64, bool) {
	cross := r3.Norm(r3.Cross(d0, d1))
	if cross <= Epsilon*r3.Norm(d0)*r3.Norm(d1) {
		return 0, false
	}
	return r3.Dot(d0, d1) / cross, true
}

// Angle returns the angle between d0 and d1 in radians and false
// if either vector is zero or negligible next to the other.
func Angle(d0, d1 r3.Vec) (float64, bool) {
	n0, n1 := r3.Norm(d0), r3.Norm(d1)
	if n0 <= Epsilon*n1 || n1 <= Epsilon*n0 {
		return 0, false
	}
	cos := clamp(r3.Dot(d0, d1)/(n0*n1), -1, 1)
	return math.Acos(cos), true
}

// TriangleArea returns the area of the triangle pqr.
func TriangleArea(p, q, r r3.Vec) float64 {
	return 0.5 * r3.Norm(r3.Cross(r3.Sub(q, p), r3.Sub(r, p)))
}

// IsDegenerate reports whether the area of triangle pqr is negligible
// next to its squared edge lengths. Triangles with coincident corners
// are degenerate.
func IsDegenerate(p, q, r r3.Vec) bool {
	l2 := r3.Norm2(r3.Sub(q, p)) + r3.Norm2(r3.Sub(r, q)) + r3.Norm2(r3.Sub(p, r))
	return !(TriangleArea(p, q, r) > Epsilon*l2)
}

// Clamp x between a and b, assume a <= b
func clamp(x, a, b float64) float64 {
	return math.Min(b, math.Max(x, a))
}

type Set []r3.Vec

// Min return the minimum components of a set of vectors.
func (a Set) Min() r3.Vec {
	vmin := a[0]
	for _, v := range a[1:] {
		vmin = MinElem(vmin, v)
	}
	return vmin
}

// Max return the maximum components of a set of vectors.
func (a Set) Max() r3.Vec {
	vmax := a[0]
	for _, v := range a[1:] {
		vmax = MaxElem(vmax, v)
	}
	return vmax
}

// Centroid returns the mean of the set. The set must not be empty.
func (a Set) Centroid() r3.Vec {
	var sum r3.Vec
	for _, v := range a {
		sum = r3.Add(sum, v)
	}
	return r3.Scale(1/float64(len(a)), sum)
}
