// Package diffgeo computes discrete differential quantities on half-edge
// triangle meshes: cotangent edge weights, barycentric vertex areas and the
// curvature estimators built on them.
//
// Degenerate geometry never produces NaN. Triangles with (near) zero area
// contribute nothing to cotangent weights and vertex areas, one-ring edges of
// (near) zero length contribute no angle, and vertices without incident area
// keep an inverse area of 0.
package diffgeo

import (
	"github.com/soypat/meshfair/halfedge"
	"github.com/soypat/meshfair/internal/d3"
	"github.com/soypat/meshfair/internal/logging"
	"gonum.org/v1/gonum/spatial/r3"
)

// Weights holds the cotangent Laplacian weights of a mesh for one
// configuration of vertex positions.
type Weights struct {
	// Edge is indexed by halfedge.Edge and holds the sum of the cotangents
	// of the angles opposite the edge. Values may be negative for obtuse
	// triangles.
	Edge []float64
	// InvArea is indexed by halfedge.Vertex and holds 0.5 divided by the
	// barycentric area around the vertex, or 0 if the vertex has no area.
	InvArea []float64
}

// ComputeWeights computes edge and vertex weights for the current positions of m.
func ComputeWeights(m *halfedge.Mesh) Weights {
	return Weights{
		Edge:    EdgeWeights(m, nil),
		InvArea: VertexWeights(m, nil),
	}
}

// EdgeWeights stores the cotangent weight of every edge of m in dst,
// growing it as needed, and returns it. Boundary edges have one term.
func EdgeWeights(m *halfedge.Mesh, dst []float64) []float64 {
	dst = resize(dst, m.NumEdges())
	skipped := 0
	for e := range m.Edges() {
		var w float64
		for i := 0; i < 2; i++ {
			h := m.EdgeHalfedge(e, i)
			if m.IsBoundaryHalfedge(h) {
				continue
			}
			p0 := m.Position(m.From(h))
			p1 := m.Position(m.To(h))
			p2 := m.Position(m.To(m.Next(h)))
			cot, ok := d3.Cot(r3.Sub(p0, p2), r3.Sub(p1, p2))
			if !ok {
				skipped++
				continue
			}
			w += cot
		}
		dst[e] = w
	}
	if skipped > 0 {
		logging.Logger().Warn("skipped degenerate corners in cotangent weights", "corners", skipped)
	}
	return dst
}

// VertexWeights stores the inverse barycentric area weight of every vertex
// of m in dst, growing it as needed, and returns it. Degenerate faces add
// no area.
func VertexWeights(m *halfedge.Mesh, dst []float64) []float64 {
	dst = resize(dst, m.NumVertices())
	areas := FaceAreas(m, nil)
	for f := range m.Faces() {
		fv := m.FaceVertices(f)
		if d3.IsDegenerate(m.Position(fv[0]), m.Position(fv[1]), m.Position(fv[2])) {
			areas[f] = 0
		}
	}
	for v := range m.Vertices() {
		var area float64
		for f := range m.VertexFaces(v) {
			area += areas[f] / 3
		}
		if area > 0 {
			dst[v] = 0.5 / area
		} else {
			dst[v] = 0
		}
	}
	return dst
}

// FaceAreas stores the area of every face of m in dst and returns it.
func FaceAreas(m *halfedge.Mesh, dst []float64) []float64 {
	dst = resize(dst, m.NumFaces())
	for f := range m.Faces() {
		fv := m.FaceVertices(f)
		dst[f] = d3.TriangleArea(m.Position(fv[0]), m.Position(fv[1]), m.Position(fv[2]))
	}
	return dst
}

// SurfaceArea returns the mesh area recovered from the vertex weights,
// that is the sum of the barycentric cell areas.
func (w Weights) SurfaceArea() float64 {
	var sum float64
	for _, inv := range w.InvArea {
		if inv > 0 {
			sum += 0.5 / inv
		}
	}
	return sum
}

func resize(dst []float64, n int) []float64 {
	if cap(dst) < n {
		return make([]float64, n)
	}
	return dst[:n]
}
