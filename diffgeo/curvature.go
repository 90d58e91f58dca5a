package diffgeo

import (
	"math"

	"github.com/soypat/meshfair/halfedge"
	"github.com/soypat/meshfair/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Curvatures bundles the per-vertex scalar fields computed for a mesh.
type Curvatures struct {
	Uniform []float64 // uniform Laplacian mean curvature
	Mean    []float64 // Laplace-Beltrami mean curvature
	Gauss   []float64 // angle deficit Gaussian curvature
	Valence []float64
}

// ComputeCurvatures computes fresh weights and every curvature field of m.
func ComputeCurvatures(m *halfedge.Mesh) (Curvatures, Weights) {
	w := ComputeWeights(m)
	return Curvatures{
		Uniform: UniformMeanCurvature(m),
		Mean:    MeanCurvature(m, w),
		Gauss:   GaussianCurvature(m, w),
		Valence: Valence(m),
	}, w
}

// UniformLaplacian returns the mean of the vectors from v to each of its
// neighbours, or the zero vector if v has none.
func UniformLaplacian(m *halfedge.Mesh, v halfedge.Vertex) r3.Vec {
	p := m.Position(v)
	var lap r3.Vec
	n := 0
	for nb := range m.Neighbors(v) {
		lap = r3.Add(lap, r3.Sub(m.Position(nb), p))
		n++
	}
	if n == 0 {
		return r3.Vec{}
	}
	return r3.Scale(1/float64(n), lap)
}

// CotanLaplacian returns the edge weighted sum of the vectors from v to
// its neighbours together with the sum of the weights.
func CotanLaplacian(m *halfedge.Mesh, edgeWeight []float64, v halfedge.Vertex) (lap r3.Vec, wsum float64) {
	p := m.Position(v)
	for h := range m.Outgoing(v) {
		w := edgeWeight[m.EdgeOf(h)]
		lap = r3.Add(lap, r3.Scale(w, r3.Sub(m.Position(m.To(h)), p)))
		wsum += w
	}
	return lap, wsum
}

// UniformMeanCurvature returns half the length of the uniform Laplacian at
// every interior vertex. Boundary vertices are 0.
func UniformMeanCurvature(m *halfedge.Mesh) []float64 {
	curv := make([]float64, m.NumVertices())
	for v := range m.Vertices() {
		if m.IsBoundary(v) {
			continue
		}
		curv[v] = 0.5 * r3.Norm(UniformLaplacian(m, v))
	}
	return curv
}

// MeanCurvature returns half the length of the Laplace-Beltrami operator
// applied to the positions at every interior vertex. Boundary vertices are 0.
func MeanCurvature(m *halfedge.Mesh, w Weights) []float64 {
	curv := make([]float64, m.NumVertices())
	for v := range m.Vertices() {
		if m.IsBoundary(v) {
			continue
		}
		lap, _ := CotanLaplacian(m, w.Edge, v)
		curv[v] = 0.5 * r3.Norm(r3.Scale(w.InvArea[v], lap))
	}
	return curv
}

// GaussianCurvature returns the angle deficit of every interior vertex
// divided by its barycentric area. Boundary vertices are 0.
func GaussianCurvature(m *halfedge.Mesh, w Weights) []float64 {
	curv := make([]float64, m.NumVertices())
	var ring []r3.Vec
	for v := range m.Vertices() {
		if m.IsBoundary(v) {
			continue
		}
		p := m.Position(v)
		ring = ring[:0]
		for nb := range m.Neighbors(v) {
			ring = append(ring, r3.Sub(m.Position(nb), p))
		}
		var angles float64
		for i := range ring {
			angle, ok := d3.Angle(ring[i], ring[(i+1)%len(ring)])
			if ok {
				angles += angle
			}
		}
		curv[v] = (2*math.Pi - angles) * 2 * w.InvArea[v]
	}
	return curv
}

// Valence returns the number of edges incident to every vertex.
func Valence(m *halfedge.Mesh) []float64 {
	val := make([]float64, m.NumVertices())
	for v := range m.Vertices() {
		val[v] = float64(m.Valence(v))
	}
	return val
}

// VertexNormals returns area weighted vertex normals. Vertices without
// incident area get the zero vector.
func VertexNormals(m *halfedge.Mesh) []r3.Vec {
	normals := make([]r3.Vec, m.NumVertices())
	// total face normal length per vertex, to detect cancelling fans.
	total := make([]float64, m.NumVertices())
	for f := range m.Faces() {
		fv := m.FaceVertices(f)
		p0, p1, p2 := m.Position(fv[0]), m.Position(fv[1]), m.Position(fv[2])
		n := r3.Cross(r3.Sub(p1, p0), r3.Sub(p2, p0))
		for _, v := range fv {
			normals[v] = r3.Add(normals[v], n)
			total[v] += r3.Norm(n)
		}
	}
	for i, n := range normals {
		if norm := r3.Norm(n); norm > d3.Epsilon*total[i] {
			normals[i] = r3.Scale(1/norm, n)
		} else {
			normals[i] = r3.Vec{}
		}
	}
	return normals
}
