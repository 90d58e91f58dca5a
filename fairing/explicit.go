package fairing

import (
	"context"
	"log/slog"
	"math"

	"github.com/soypat/meshfair/diffgeo"
	"github.com/soypat/meshfair/halfedge"
	"github.com/soypat/meshfair/internal/d3"
	"github.com/soypat/meshfair/internal/logging"
	"gonum.org/v1/gonum/spatial/r3"
)

// Damping scales the Laplacian displacement of the explicit smoothers.
const Damping = 0.5

// Smoother runs an explicit smoothing pass of the given number of iterations.
type Smoother func(m *halfedge.Mesh, iterations int)

var (
	_ Smoother = UniformSmooth
	_ Smoother = CotanSmooth
)

// UniformSmooth moves every interior vertex half way toward the average of
// its neighbours, iterations times. All vertices of one iteration are
// computed from the positions of the previous iteration. Boundary vertices
// do not move.
func UniformSmooth(m *halfedge.Mesh, iterations int) {
	staged := make([]r3.Vec, m.NumVertices())
	for it := 0; it < iterations; it++ {
		for v := range m.Vertices() {
			p := m.Position(v)
			if m.IsBoundary(v) {
				staged[v] = p
				continue
			}
			staged[v] = r3.Add(p, r3.Scale(Damping, diffgeo.UniformLaplacian(m, v)))
		}
		commit(m, staged, "uniform", it)
	}
}

// CotanSmooth is UniformSmooth with neighbours weighted by the cotangent
// edge weights of the current iteration, normalized by their sum. A vertex
// whose weights sum to (nearly) zero does not move.
func CotanSmooth(m *halfedge.Mesh, iterations int) {
	staged := make([]r3.Vec, m.NumVertices())
	var weights []float64
	for it := 0; it < iterations; it++ {
		weights = diffgeo.EdgeWeights(m, weights)
		for v := range m.Vertices() {
			p := m.Position(v)
			staged[v] = p
			if m.IsBoundary(v) {
				continue
			}
			lap, wsum := diffgeo.CotanLaplacian(m, weights, v)
			if math.Abs(wsum) < d3.Epsilon {
				continue
			}
			staged[v] = r3.Add(p, r3.Scale(Damping/wsum, lap))
		}
		commit(m, staged, "cotan", it)
	}
}

func commit(m *halfedge.Mesh, staged []r3.Vec, name string, it int) {
	if err := m.SetPositions(staged); err != nil {
		panic(err)
	}
	log := logging.Logger()
	if log.Enabled(context.Background(), slog.LevelDebug) {
		log.Debug("smoothing iteration", "smoother", name, "iteration", it, "laplacian", MeanLaplacian(m))
	}
}

// MeanLaplacian returns the mean length of the uniform Laplacian over the
// interior vertices of m, or 0 if there are none.
func MeanLaplacian(m *halfedge.Mesh) float64 {
	var sum float64
	n := 0
	for v := range m.Vertices() {
		if m.IsBoundary(v) {
			continue
		}
		sum += r3.Norm(diffgeo.UniformLaplacian(m, v))
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
