package d3

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestCot(t *testing.T) {
	c, ok := Cot(r3.Vec{X: 1}, r3.Vec{Y: 1})
	assert.True(t, ok)
	assert.InDelta(t, 0, c, 1e-15)

	c, ok = Cot(r3.Vec{X: 1}, r3.Vec{X: 1, Y: 1})
	assert.True(t, ok)
	assert.InDelta(t, 1, c, 1e-12) // 45 degrees

	_, ok = Cot(r3.Vec{X: 1}, r3.Vec{X: 2})
	assert.False(t, ok, "parallel vectors have no cotangent")
	_, ok = Cot(r3.Vec{}, r3.Vec{X: 2})
	assert.False(t, ok)
}

func TestAngle(t *testing.T) {
	a, ok := Angle(r3.Vec{X: 1}, r3.Vec{X: -3})
	assert.True(t, ok)
	assert.InDelta(t, math.Pi, a, 1e-12)

	_, ok = Angle(r3.Vec{X: 1}, r3.Vec{})
	assert.False(t, ok)
}

func TestTriangleArea(t *testing.T) {
	area := TriangleArea(r3.Vec{}, r3.Vec{X: 2}, r3.Vec{Y: 2})
	assert.InDelta(t, 2, area, 1e-15)
	assert.Zero(t, TriangleArea(r3.Vec{}, r3.Vec{X: 1}, r3.Vec{X: 2}))
}

func TestDegeneracyIsScaleFree(t *testing.T) {
	for _, scale := range []float64{1, 1e-6, 1e-12, 1e6} {
		x, y := r3.Vec{X: scale}, r3.Vec{X: scale, Y: scale}
		c, ok := Cot(x, y)
		assert.True(t, ok, "scale %g", scale)
		assert.InDelta(t, 1, c, 1e-12, "scale %g", scale)

		a, ok := Angle(x, r3.Vec{Y: 3 * scale})
		assert.True(t, ok, "scale %g", scale)
		assert.InDelta(t, math.Pi/2, a, 1e-12, "scale %g", scale)

		assert.False(t, IsDegenerate(r3.Vec{}, x, y), "scale %g", scale)
		assert.True(t, IsDegenerate(r3.Vec{}, x, r3.Scale(2, x)), "scale %g", scale)
	}
	assert.True(t, IsDegenerate(r3.Vec{}, r3.Vec{}, r3.Vec{}))
	// A sliver is degenerate even when its sides are long.
	assert.True(t, IsDegenerate(r3.Vec{}, r3.Vec{X: 1}, r3.Vec{X: 0.5, Y: 1e-14}))
	_, ok := Angle(r3.Vec{X: 1}, r3.Vec{Y: 1e-13})
	assert.False(t, ok)
}

func TestIsFinite(t *testing.T) {
	assert.True(t, IsFinite(r3.Vec{X: 1, Y: -2, Z: 3}))
	assert.False(t, IsFinite(r3.Vec{Y: math.NaN()}))
	assert.False(t, IsFinite(r3.Vec{Z: math.Inf(-1)}))
}

func TestBoundingBox(t *testing.T) {
	s := Set{{X: -1, Y: 2}, {X: 3, Z: -4}, {Y: 5}}
	box := BoundingBox(s)
	assert.Equal(t, r3.Vec{X: -1, Y: 0, Z: -4}, box.Min)
	assert.Equal(t, r3.Vec{X: 3, Y: 5, Z: 0}, box.Max)
	c := s.Centroid()
	assert.InDelta(t, 2.0/3, c.X, 1e-15)
	assert.InDelta(t, 7.0/3, c.Y, 1e-15)
	assert.InDelta(t, -4.0/3, c.Z, 1e-15)
	assert.InDelta(t, math.Sqrt(16+25+16), box.Diagonal(), 1e-12)
}
