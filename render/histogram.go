package render

import (
	"errors"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// HistogramPlot builds a histogram of the finite values of a scalar field
// clipped to the range returned by Range.
func HistogramPlot(values []float64, bins int, clip float64, title string) (*plot.Plot, error) {
	if bins <= 0 {
		bins = 32
	}
	lo, hi := Range(values, clip)
	vals := make(plotter.Values, 0, len(values))
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		vals = append(vals, math.Max(lo, math.Min(hi, v)))
	}
	if len(vals) == 0 {
		return nil, errors.New("render: no finite values to plot")
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "value"
	p.Y.Label.Text = "vertices"
	h, err := plotter.NewHist(vals, bins)
	if err != nil {
		return nil, err
	}
	p.Add(h)
	return p, nil
}

// SaveHistogram writes the histogram of values to path. The image format
// is chosen by extension.
func SaveHistogram(path string, values []float64, bins int, clip float64, title string) error {
	p, err := HistogramPlot(values, bins, clip, title)
	if err != nil {
		return err
	}
	return p.Save(6*vg.Inch, 4*vg.Inch, path)
}
