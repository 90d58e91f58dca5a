package fairing

import (
	"fmt"
	"math"

	"github.com/soypat/meshfair/halfedge"
	"github.com/soypat/meshfair/internal/logging"
	"gonum.org/v1/gonum/spatial/r3"
)

// Enhance sharpens m by unsharp masking. The mesh is smoothed with smooth
// (UniformSmooth if nil) and every vertex is then placed at
//
//	smoothed + coefficient*(original - smoothed)
//
// A coefficient of 0 keeps the smoothed result and 1 restores the original.
func Enhance(m *halfedge.Mesh, iterations int, coefficient float64, smooth Smoother) error {
	if math.IsNaN(coefficient) || math.IsInf(coefficient, 0) || coefficient < 0 {
		return fmt.Errorf("%w: got %v", ErrCoefficient, coefficient)
	}
	if smooth == nil {
		smooth = UniformSmooth
	}
	original := m.Positions()
	smooth(m, iterations)
	for v := range m.Vertices() {
		s := m.Position(v)
		m.SetPosition(v, r3.Add(s, r3.Scale(coefficient, r3.Sub(original[v], s))))
	}
	logging.Logger().Info("feature enhancement done", "iterations", iterations, "coefficient", coefficient)
	return nil
}
