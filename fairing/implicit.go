// Package fairing moves mesh vertices to smooth or sharpen a surface. It
// provides an implicit mean curvature flow step, a minimal surface solve
// with the boundary pinned, explicit uniform and cotangent Laplacian
// smoothers and Laplacian feature enhancement.
//
// Every operation assumes exclusive access to the mesh while it runs.
package fairing

import (
	"fmt"
	"math"

	"github.com/soypat/meshfair/diffgeo"
	"github.com/soypat/meshfair/halfedge"
	"github.com/soypat/meshfair/internal/logging"
	"github.com/soypat/meshfair/linsys"
)

// ImplicitSmooth performs one backward Euler step of mean curvature flow of
// size timestep. A timestep of zero leaves the mesh unchanged. If solver is
// nil linsys.Symmetric() is used.
//
// On failure the positions of m are not modified and the returned error is
// ErrTimestep or a *SolveError.
func ImplicitSmooth(m *halfedge.Mesh, timestep float64, solver linsys.Solver) error {
	if math.IsNaN(timestep) || math.IsInf(timestep, 0) || timestep < 0 {
		return fmt.Errorf("%w: got %v", ErrTimestep, timestep)
	}
	if m.NumVertices() == 0 {
		return nil
	}
	if solver == nil {
		solver = linsys.Symmetric()
	}
	w := diffgeo.ComputeWeights(m)
	a, b := ImplicitSystem(m, w, timestep)
	if err := solvePositions("implicit smoothing", m, a, b, solver); err != nil {
		return err
	}
	logging.Logger().Info("implicit smoothing done", "timestep", timestep, "vertices", m.NumVertices(), "nnz", a.NNZ())
	return nil
}
