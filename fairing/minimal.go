package fairing

import (
	"github.com/soypat/meshfair/diffgeo"
	"github.com/soypat/meshfair/halfedge"
	"github.com/soypat/meshfair/internal/logging"
	"github.com/soypat/meshfair/linsys"
)

// MinimalSurface replaces the interior of m with the harmonic extension of
// its boundary, where boundary positions are taken from ref, the snapshot
// of m taken when it was loaded. If solver is nil linsys.General() is used.
func MinimalSurface(m, ref *halfedge.Mesh, solver linsys.Solver) error {
	if ref == nil || ref.NumVertices() != m.NumVertices() || ref.NumFaces() != m.NumFaces() {
		return ErrMismatch
	}
	if !hasBorder(m) {
		return ErrNoBoundary
	}
	if solver == nil {
		solver = linsys.General()
	}
	w := diffgeo.ComputeWeights(m)
	log := logging.Logger()
	log.Info("minimal surface", "area", w.SurfaceArea(), "vertices", m.NumVertices())
	a, b, err := LaplaceSystem(m, ref, w)
	if err != nil {
		return err
	}
	if err := solvePositions("minimal surface", m, a, b, solver); err != nil {
		return err
	}
	log.Info("minimal surface done", "area", diffgeo.ComputeWeights(m).SurfaceArea())
	return nil
}

// hasBorder reports whether m has a vertex on a boundary loop. Isolated
// vertices do not count.
func hasBorder(m *halfedge.Mesh) bool {
	for v := range m.Vertices() {
		if m.IsBoundary(v) && !m.IsIsolated(v) {
			return true
		}
	}
	return false
}
