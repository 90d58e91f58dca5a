package render

import (
	"math"
	"slices"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/stat"
)

// Colormap maps scalars in [0,1] to colors by blending linearly between
// evenly spaced stops in RGB.
type Colormap []colorful.Color

// Rainbow is the blue, cyan, green, yellow, red ramp used for curvature.
var Rainbow = Colormap{
	{R: 0, G: 0, B: 1},
	{R: 0, G: 1, B: 1},
	{R: 0, G: 1, B: 0},
	{R: 1, G: 1, B: 0},
	{R: 1, G: 0, B: 0},
}

const (
	// DefaultClip discards the lowest and highest 5% of a field before
	// mapping it to colors.
	DefaultClip = 0.05
	// ValenceClip is the clip used for valence, which has few outliers.
	ValenceClip = 0.01
)

// At returns the color at t, which is clamped to [0,1].
func (c Colormap) At(t float64) colorful.Color {
	switch {
	case len(c) == 0:
		return colorful.Color{R: 1, G: 1, B: 1}
	case len(c) == 1 || math.IsNaN(t) || t <= 0:
		return c[0]
	case t >= 1:
		return c[len(c)-1]
	}
	seg := t * float64(len(c)-1)
	i := int(seg)
	return c[i].BlendRgb(c[i+1], seg-float64(i))
}

// Field returns one color per value. Values are normalized between the
// clip and 1-clip quantiles of the field so that outliers saturate
// instead of flattening the rest of the range. A constant field maps to
// the middle of the colormap.
func (c Colormap) Field(values []float64, clip float64) []colorful.Color {
	colors := make([]colorful.Color, len(values))
	if len(values) == 0 {
		return colors
	}
	lo, hi := Range(values, clip)
	for i, v := range values {
		t := 0.5
		if hi > lo {
			t = (v - lo) / (hi - lo)
		}
		colors[i] = c.At(t)
	}
	return colors
}

// Range returns the clip and 1-clip empirical quantiles of the non-NaN
// values. clip is clamped to [0, 0.5].
func Range(values []float64, clip float64) (lo, hi float64) {
	if len(values) == 0 {
		return 0, 0
	}
	clip = math.Max(0, math.Min(0.5, clip))
	sorted := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			sorted = append(sorted, v)
		}
	}
	if len(sorted) == 0 {
		return 0, 0
	}
	slices.Sort(sorted)
	lo = stat.Quantile(clip, stat.Empirical, sorted, nil)
	hi = stat.Quantile(1-clip, stat.Empirical, sorted, nil)
	return lo, hi
}
