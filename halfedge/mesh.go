// Package halfedge implements an index based half-edge triangle mesh.
//
// Entities are integer handles. The two halfedges of edge e are 2e and 2e+1,
// so Opposite and EdgeOf need no storage. Halfedges on the mesh border have
// no face (NoFace) and are linked to each other around every boundary loop,
// which lets the vertex circulators walk boundary fans without special cases.
package halfedge

import (
	"errors"
	"fmt"
	"iter"

	"github.com/soypat/meshfair/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

type (
	// Vertex is a vertex handle in [0, NumVertices).
	Vertex int
	// Halfedge is a directed edge handle in [0, NumHalfedges).
	Halfedge int
	// Edge is an undirected edge handle in [0, NumEdges).
	Edge int
	// Face is a triangle handle in [0, NumFaces).
	Face int
)

const (
	NoVertex   Vertex   = -1
	NoHalfedge Halfedge = -1
	NoFace     Face     = -1
)

var (
	ErrFaceIndex      = errors.New("halfedge: face references a vertex out of range")
	ErrDegenerateFace = errors.New("halfedge: face repeats a vertex")
	ErrNonManifold    = errors.New("halfedge: non-manifold or inconsistently oriented mesh")
	ErrPositionCount  = errors.New("halfedge: position count does not match vertex count")
)

// Mesh is a manifold triangle mesh, possibly with boundary.
// A Mesh is not safe for concurrent mutation.
type Mesh struct {
	pos []r3.Vec
	// outgoing halfedge of each vertex. Boundary vertices store their
	// outgoing boundary halfedge. NoHalfedge for isolated vertices.
	vhe   []Halfedge
	hto   []Vertex
	hnext []Halfedge
	hprev []Halfedge
	hface []Face
	fhe   []Halfedge
}

// New builds a mesh from vertex positions and counter-clockwise oriented
// triangles indexing into positions. positions is copied.
func New(positions []r3.Vec, faces [][3]int) (*Mesh, error) {
	nv := len(positions)
	m := &Mesh{
		pos: append([]r3.Vec(nil), positions...),
		vhe: make([]Halfedge, nv),
		fhe: make([]Halfedge, len(faces)),
	}
	for i := range m.vhe {
		m.vhe[i] = NoHalfedge
	}
	nh := 3 * len(faces)
	m.hto = make([]Vertex, 0, nh)
	m.hnext = make([]Halfedge, 0, nh)
	m.hprev = make([]Halfedge, 0, nh)
	m.hface = make([]Face, 0, nh)

	directed := make(map[[2]int]Halfedge, nh)
	for fi, f := range faces {
		for j := range f {
			if f[j] < 0 || f[j] >= nv {
				return nil, fmt.Errorf("face %d vertex %d: %w", fi, f[j], ErrFaceIndex)
			}
		}
		if f[0] == f[1] || f[1] == f[2] || f[2] == f[0] {
			return nil, fmt.Errorf("face %d %v: %w", fi, f, ErrDegenerateFace)
		}
		var hs [3]Halfedge
		for j := range f {
			h, err := m.halfedgeFor(directed, f[j], f[(j+1)%3])
			if err != nil {
				return nil, fmt.Errorf("face %d: %w", fi, err)
			}
			hs[j] = h
		}
		for j := range hs {
			m.hnext[hs[j]] = hs[(j+1)%3]
			m.hprev[hs[(j+1)%3]] = hs[j]
			m.hface[hs[j]] = Face(fi)
		}
		m.fhe[fi] = hs[0]
	}
	if err := m.linkBoundary(); err != nil {
		return nil, err
	}
	return m, nil
}

// halfedgeFor returns the halfedge a->b, creating the edge pair when the
// edge is seen for the first time.
func (m *Mesh) halfedgeFor(directed map[[2]int]Halfedge, a, b int) (Halfedge, error) {
	if h, ok := directed[[2]int{a, b}]; ok {
		if m.hface[h] != NoFace {
			return NoHalfedge, fmt.Errorf("edge %d->%d used twice: %w", a, b, ErrNonManifold)
		}
		return h, nil
	}
	h := Halfedge(len(m.hto))
	m.hto = append(m.hto, Vertex(b), Vertex(a))
	m.hnext = append(m.hnext, NoHalfedge, NoHalfedge)
	m.hprev = append(m.hprev, NoHalfedge, NoHalfedge)
	m.hface = append(m.hface, NoFace, NoFace)
	directed[[2]int{a, b}] = h
	directed[[2]int{b, a}] = h ^ 1
	return h, nil
}

// linkBoundary connects boundary halfedges into loops, picks the
// outgoing halfedge of every vertex and verifies every vertex has a
// single fan.
func (m *Mesh) linkBoundary() error {
	for h := range m.hto {
		from := m.hto[h^1]
		cur := m.vhe[from]
		switch {
		case cur == NoHalfedge:
			m.vhe[from] = Halfedge(h)
		case m.hface[h] == NoFace:
			if m.hface[cur] == NoFace {
				return fmt.Errorf("vertex %d has more than one boundary fan: %w", from, ErrNonManifold)
			}
			m.vhe[from] = Halfedge(h)
		}
	}
	for h := range m.hto {
		if m.hface[h] != NoFace {
			continue
		}
		next := m.vhe[m.hto[h]]
		m.hnext[h] = next
		m.hprev[next] = Halfedge(h)
	}
	valence := make([]int, len(m.vhe))
	for h := range m.hto {
		valence[m.hto[h^1]]++
	}
	for v := range m.vhe {
		if n := m.Valence(Vertex(v)); n != valence[v] {
			return fmt.Errorf("vertex %d fan reaches %d of %d edges: %w", v, n, valence[v], ErrNonManifold)
		}
	}
	return nil
}

func (m *Mesh) NumVertices() int  { return len(m.pos) }
func (m *Mesh) NumHalfedges() int { return len(m.hto) }
func (m *Mesh) NumEdges() int     { return len(m.hto) / 2 }
func (m *Mesh) NumFaces() int     { return len(m.fhe) }

// To returns the vertex h points to.
func (m *Mesh) To(h Halfedge) Vertex { return m.hto[h] }

// From returns the vertex h leaves.
func (m *Mesh) From(h Halfedge) Vertex { return m.hto[h^1] }

func (m *Mesh) Next(h Halfedge) Halfedge { return m.hnext[h] }
func (m *Mesh) Prev(h Halfedge) Halfedge { return m.hprev[h] }

// Opposite returns the other halfedge of h's edge.
func (m *Mesh) Opposite(h Halfedge) Halfedge { return h ^ 1 }

// EdgeOf returns the edge h belongs to.
func (m *Mesh) EdgeOf(h Halfedge) Edge { return Edge(h / 2) }

// FaceOf returns the face to the left of h or NoFace on the boundary.
func (m *Mesh) FaceOf(h Halfedge) Face { return m.hface[h] }

// EdgeHalfedge returns halfedge i (0 or 1) of e.
func (m *Mesh) EdgeHalfedge(e Edge, i int) Halfedge { return Halfedge(2*int(e) + i) }

// FaceHalfedge returns the first halfedge of f, leaving the face's first vertex.
func (m *Mesh) FaceHalfedge(f Face) Halfedge { return m.fhe[f] }

// VertexHalfedge returns an outgoing halfedge of v, the boundary one if v
// is on the boundary, or NoHalfedge if v is isolated.
func (m *Mesh) VertexHalfedge(v Vertex) Halfedge { return m.vhe[v] }

func (m *Mesh) IsBoundaryHalfedge(h Halfedge) bool { return m.hface[h] == NoFace }

func (m *Mesh) IsBoundaryEdge(e Edge) bool {
	return m.hface[2*e] == NoFace || m.hface[2*e+1] == NoFace
}

func (m *Mesh) IsIsolated(v Vertex) bool { return m.vhe[v] == NoHalfedge }

// IsBoundary reports whether v lies on the mesh border. Isolated vertices
// are considered boundary.
func (m *Mesh) IsBoundary(v Vertex) bool {
	h := m.vhe[v]
	return h == NoHalfedge || m.hface[h] == NoFace
}

func (m *Mesh) Position(v Vertex) r3.Vec       { return m.pos[v] }
func (m *Mesh) SetPosition(v Vertex, p r3.Vec) { m.pos[v] = p }

// Positions returns a copy of all vertex positions indexed by vertex.
func (m *Mesh) Positions() []r3.Vec {
	return append([]r3.Vec(nil), m.pos...)
}

// SetPositions overwrites all vertex positions with p.
func (m *Mesh) SetPositions(p []r3.Vec) error {
	if len(p) != len(m.pos) {
		return fmt.Errorf("got %d positions for %d vertices: %w", len(p), len(m.pos), ErrPositionCount)
	}
	copy(m.pos, p)
	return nil
}

// Triangles returns the vertex indices of every face.
func (m *Mesh) Triangles() [][3]int {
	tris := make([][3]int, len(m.fhe))
	for f := range m.fhe {
		fv := m.FaceVertices(Face(f))
		tris[f] = [3]int{int(fv[0]), int(fv[1]), int(fv[2])}
	}
	return tris
}

// Bounds returns the axis aligned bounding box of the vertex positions.
func (m *Mesh) Bounds() d3.Box {
	if len(m.pos) == 0 {
		return d3.Box{}
	}
	return d3.BoundingBox(m.pos)
}

// BoundaryVertices returns every vertex for which IsBoundary is true.
func (m *Mesh) BoundaryVertices() []Vertex {
	var bv []Vertex
	for v := range m.Vertices() {
		if m.IsBoundary(v) {
			bv = append(bv, v)
		}
	}
	return bv
}

// Clone returns a deep copy of m.
func (m *Mesh) Clone() *Mesh {
	return &Mesh{
		pos:   append([]r3.Vec(nil), m.pos...),
		vhe:   append([]Halfedge(nil), m.vhe...),
		hto:   append([]Vertex(nil), m.hto...),
		hnext: append([]Halfedge(nil), m.hnext...),
		hprev: append([]Halfedge(nil), m.hprev...),
		hface: append([]Face(nil), m.hface...),
		fhe:   append([]Halfedge(nil), m.fhe...),
	}
}

// Vertices iterates over all vertex handles in index order.
func (m *Mesh) Vertices() iter.Seq[Vertex] {
	return func(yield func(Vertex) bool) {
		for v := range len(m.pos) {
			if !yield(Vertex(v)) {
				return
			}
		}
	}
}

// Edges iterates over all edge handles in index order.
func (m *Mesh) Edges() iter.Seq[Edge] {
	return func(yield func(Edge) bool) {
		for e := range m.NumEdges() {
			if !yield(Edge(e)) {
				return
			}
		}
	}
}

// Faces iterates over all face handles in index order.
func (m *Mesh) Faces() iter.Seq[Face] {
	return func(yield func(Face) bool) {
		for f := range len(m.fhe) {
			if !yield(Face(f)) {
				return
			}
		}
	}
}
