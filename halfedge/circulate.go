package halfedge

import "iter"

// One-ring circulators. All of them start at VertexHalfedge(v) and rotate
// with h -> Next(Opposite(h)), so for an interior vertex two consecutive
// neighbours always share a face with v. Boundary vertices start at their
// boundary halfedge and visit the whole fan exactly once.

// Outgoing iterates over the halfedges leaving v.
func (m *Mesh) Outgoing(v Vertex) iter.Seq[Halfedge] {
	return func(yield func(Halfedge) bool) {
		start := m.vhe[v]
		if start == NoHalfedge {
			return
		}
		h := start
		for {
			if !yield(h) {
				return
			}
			h = m.hnext[h^1]
			if h == start {
				return
			}
		}
	}
}

// Neighbors iterates over the vertices adjacent to v.
func (m *Mesh) Neighbors(v Vertex) iter.Seq[Vertex] {
	return func(yield func(Vertex) bool) {
		for h := range m.Outgoing(v) {
			if !yield(m.hto[h]) {
				return
			}
		}
	}
}

// VertexFaces iterates over the faces incident to v. Boundary gaps are skipped.
func (m *Mesh) VertexFaces(v Vertex) iter.Seq[Face] {
	return func(yield func(Face) bool) {
		for h := range m.Outgoing(v) {
			f := m.hface[h]
			if f == NoFace {
				continue
			}
			if !yield(f) {
				return
			}
		}
	}
}

// FaceVertices returns the three vertices of f in the order it was created with.
func (m *Mesh) FaceVertices(f Face) [3]Vertex {
	h := m.fhe[f]
	next := m.hnext[h]
	return [3]Vertex{m.hto[h^1], m.hto[h], m.hto[next]}
}

// Valence returns the number of edges incident to v.
func (m *Mesh) Valence(v Vertex) int {
	n := 0
	for range m.Outgoing(v) {
		n++
	}
	return n
}
