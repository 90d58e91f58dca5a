package fairing

import (
	"fmt"
	"math"

	"github.com/soypat/meshfair/diffgeo"
	"github.com/soypat/meshfair/halfedge"
	"github.com/soypat/meshfair/internal/d3"
	"github.com/soypat/meshfair/linsys"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// ImplicitSystem assembles the backward Euler system of one mean curvature
// flow step of size timestep. Row i reads
//
//	(1/a_i + t*Σw_ij) x_i - t*Σ w_ij x_j = x_i/a_i
//
// where a_i is w.InvArea[i]. Vertices with a zero inverse area cannot be
// mass lumped and get an identity row holding their current position. Their
// known position is moved to the right hand side of neighbouring rows so
// the matrix stays symmetric.
func ImplicitSystem(m *halfedge.Mesh, w diffgeo.Weights, timestep float64) (*linsys.Matrix, *mat.Dense) {
	n := m.NumVertices()
	trip := linsys.NewTriplets(n, n+m.NumHalfedges())
	b := mat.NewDense(max(n, 1), 3, nil)
	for v := range m.Vertices() {
		p := m.Position(v)
		if w.InvArea[v] == 0 {
			trip.Add(int(v), int(v), 1)
			setRow(b, v, p)
			continue
		}
		mass := 1 / w.InvArea[v]
		diag := mass
		rhs := r3.Scale(mass, p)
		for h := range m.Outgoing(v) {
			nb := m.To(h)
			wij := timestep * w.Edge[m.EdgeOf(h)]
			diag += wij
			if w.InvArea[nb] == 0 {
				rhs = r3.Add(rhs, r3.Scale(wij, m.Position(nb)))
				continue
			}
			trip.Add(int(v), int(nb), -wij)
		}
		trip.Add(int(v), int(v), diag)
		setRow(b, v, rhs)
	}
	return trip.Matrix(), b
}

// LaplaceSystem assembles the discrete Laplace equation with Dirichlet
// conditions. Boundary vertices get an identity row whose right hand side
// is the vertex position in ref. Interior vertices get a cotangent Laplacian
// row with zero right hand side. An interior vertex whose weights sum to
// (nearly) zero is pinned at its current position.
func LaplaceSystem(m, ref *halfedge.Mesh, w diffgeo.Weights) (*linsys.Matrix, *mat.Dense, error) {
	if ref == nil || ref.NumVertices() != m.NumVertices() {
		return nil, nil, ErrMismatch
	}
	n := m.NumVertices()
	trip := linsys.NewTriplets(n, n+m.NumHalfedges())
	b := mat.NewDense(max(n, 1), 3, nil)
	for v := range m.Vertices() {
		if m.IsBoundary(v) {
			trip.Add(int(v), int(v), 1)
			setRow(b, v, ref.Position(v))
			continue
		}
		var sum float64
		for h := range m.Outgoing(v) {
			sum += w.Edge[m.EdgeOf(h)]
		}
		if math.Abs(sum) < d3.Epsilon {
			trip.Add(int(v), int(v), 1)
			setRow(b, v, m.Position(v))
			continue
		}
		for h := range m.Outgoing(v) {
			trip.Add(int(v), int(m.To(h)), -w.Edge[m.EdgeOf(h)])
		}
		trip.Add(int(v), int(v), sum)
	}
	return trip.Matrix(), b, nil
}

func setRow(b *mat.Dense, v halfedge.Vertex, p r3.Vec) {
	b.Set(int(v), 0, p.X)
	b.Set(int(v), 1, p.Y)
	b.Set(int(v), 2, p.Z)
}

// solvePositions solves a*x = b and writes the rows of x into the mesh
// positions. Nothing is written unless the solve succeeds.
func solvePositions(op string, m *halfedge.Mesh, a *linsys.Matrix, b *mat.Dense, s linsys.Solver) error {
	x, err := s.Solve(a, b)
	if err != nil {
		return &SolveError{Op: op, Err: err}
	}
	if r, c := x.Dims(); r != m.NumVertices() || c != 3 {
		return &SolveError{Op: op, Err: fmt.Errorf("solution is %d×%d: %w", r, c, linsys.ErrDimension)}
	}
	pos := make([]r3.Vec, m.NumVertices())
	for i := range pos {
		pos[i] = r3.Vec{X: x.At(i, 0), Y: x.At(i, 1), Z: x.At(i, 2)}
		if !d3.IsFinite(pos[i]) {
			return &SolveError{Op: op, Err: linsys.ErrNonFinite}
		}
	}
	return m.SetPositions(pos)
}
