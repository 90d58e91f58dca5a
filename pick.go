package meshfair

import (
	"math"

	"github.com/soypat/meshfair/halfedge"
	"github.com/soypat/meshfair/internal/d3"
	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r3"
)

// ClosestVertexToRay returns the vertex with the smallest perpendicular
// distance to the line through origin with direction dir. It returns
// halfedge.NoVertex for an empty mesh or a zero direction.
func (p *Processor) ClosestVertexToRay(origin, dir r3.Vec) halfedge.Vertex {
	n := r3.Norm(dir)
	if n == 0 || !d3.IsFinite(dir) {
		return halfedge.NoVertex
	}
	dir = r3.Scale(1/n, dir)
	best, bestDist := halfedge.NoVertex, math.Inf(1)
	for v := range p.mesh.Vertices() {
		d := r3.Sub(p.mesh.Position(v), origin)
		perp := r3.Sub(d, r3.Scale(r3.Dot(d, dir), dir))
		if dist := r3.Norm2(perp); dist < bestDist {
			best, bestDist = v, dist
		}
	}
	return best
}

// NearestVertex returns the vertex closest to q and its distance using a
// k-d tree built from the current positions.
func (p *Processor) NearestVertex(q r3.Vec) (halfedge.Vertex, float64) {
	if p.mesh.NumVertices() == 0 {
		return halfedge.NoVertex, math.Inf(1)
	}
	pts := make(vertexPoints, p.mesh.NumVertices())
	for v := range p.mesh.Vertices() {
		pts[v] = vertexPoint{P: p.mesh.Position(v), V: v}
	}
	tree := kdtree.New(pts, false)
	got, dist2 := tree.Nearest(vertexPoint{P: q, V: halfedge.NoVertex})
	return got.(vertexPoint).V, math.Sqrt(dist2)
}

// vertexPoint is a kdtree.Comparable vertex position.
type vertexPoint struct {
	P r3.Vec
	V halfedge.Vertex
}

func (a vertexPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	b := c.(vertexPoint)
	switch d {
	case 0:
		return a.P.X - b.P.X
	case 1:
		return a.P.Y - b.P.Y
	case 2:
		return a.P.Z - b.P.Z
	}
	panic("unreachable")
}

func (a vertexPoint) Dims() int { return 3 }

func (a vertexPoint) Distance(c kdtree.Comparable) float64 {
	return r3.Norm2(r3.Sub(a.P, c.(vertexPoint).P))
}

// vertexPoints implements kdtree.Interface.
type vertexPoints []vertexPoint

func (s vertexPoints) Index(i int) kdtree.Comparable { return s[i] }
func (s vertexPoints) Len() int                      { return len(s) }

func (s vertexPoints) Pivot(d kdtree.Dim) int {
	return kdtree.Partition(vertexPlane{dim: d, pts: s}, kdtree.MedianOfMedians(vertexPlane{dim: d, pts: s}))
}

func (s vertexPoints) Slice(start, end int) kdtree.Interface { return s[start:end] }

type vertexPlane struct {
	dim kdtree.Dim
	pts vertexPoints
}

func (p vertexPlane) Less(i, j int) bool {
	return p.pts[i].Compare(p.pts[j], p.dim) < 0
}
func (p vertexPlane) Swap(i, j int) { p.pts[i], p.pts[j] = p.pts[j], p.pts[i] }
func (p vertexPlane) Len() int      { return len(p.pts) }
func (p vertexPlane) Slice(start, end int) kdtree.SortSlicer {
	p.pts = p.pts[start:end]
	return p
}
