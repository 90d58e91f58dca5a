package halfedge

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestGridTopology(t *testing.T) {
	m, err := Grid(2, 2, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 9, m.NumVertices())
	assert.Equal(t, 8, m.NumFaces())
	assert.Equal(t, 16, m.NumEdges())
	assert.Equal(t, 32, m.NumHalfedges())

	center := Vertex(4)
	assert.False(t, m.IsBoundary(center))
	assert.Equal(t, 6, m.Valence(center))
	for v := range m.Vertices() {
		if v != center {
			assert.True(t, m.IsBoundary(v), "vertex %d", v)
		}
	}
	assert.Len(t, m.BoundaryVertices(), 8)

	nb := slices.Sorted(m.Neighbors(center))
	assert.Equal(t, []Vertex{0, 1, 3, 5, 7, 8}, nb)

	boundaryEdges := 0
	for e := range m.Edges() {
		if m.IsBoundaryEdge(e) {
			boundaryEdges++
		}
	}
	assert.Equal(t, 8, boundaryEdges)
}

func TestConsecutiveNeighborsShareFace(t *testing.T) {
	m, err := Grid(3, 3, 1, 1)
	require.NoError(t, err)
	for v := range m.Vertices() {
		if m.IsBoundary(v) {
			continue
		}
		for h := range m.Outgoing(v) {
			assert.Equal(t, v, m.From(h))
			next := m.Next(m.Opposite(h))
			f := m.FaceOf(m.Opposite(h))
			require.NotEqual(t, NoFace, f)
			fv := m.FaceVertices(f)
			assert.Contains(t, fv[:], m.To(h))
			assert.Contains(t, fv[:], m.To(next))
			assert.Contains(t, fv[:], v)
		}
	}
}

func TestBoundaryFanVisitsAllFaces(t *testing.T) {
	m, err := Grid(2, 2, 1, 1)
	require.NoError(t, err)
	corner := Vertex(0)
	assert.True(t, m.IsBoundaryHalfedge(m.VertexHalfedge(corner)))
	faces := slices.Collect(m.VertexFaces(corner))
	assert.Len(t, faces, 2)
	assert.Equal(t, 3, m.Valence(corner))
	for h := range m.Outgoing(corner) {
		assert.Equal(t, h, m.Prev(m.Next(h)))
	}
}

func TestFanAndFaceVertices(t *testing.T) {
	m, err := Fan(6, 1, 0)
	require.NoError(t, err)
	assert.False(t, m.IsBoundary(0))
	assert.Equal(t, 6, m.Valence(0))
	for f := range m.Faces() {
		fv := m.FaceVertices(f)
		assert.Equal(t, Vertex(0), fv[0])
		assert.Equal(t, Vertex(int(f)+1), fv[1])
	}
	tris := m.Triangles()
	assert.Equal(t, [3]int{0, 6, 1}, tris[5])
}

func TestIcosphereClosed(t *testing.T) {
	for subdiv := 0; subdiv < 3; subdiv++ {
		m, err := Icosphere(subdiv)
		require.NoError(t, err)
		assert.Empty(t, m.BoundaryVertices())
		euler := m.NumVertices() - m.NumEdges() + m.NumFaces()
		assert.Equal(t, 2, euler, "subdivision %d", subdiv)
		for v := range m.Vertices() {
			assert.InDelta(t, 1, r3.Norm(m.Position(v)), 1e-12)
		}
	}
}

func TestNewErrors(t *testing.T) {
	pos := make([]r3.Vec, 5)
	for _, test := range []struct {
		name  string
		faces [][3]int
		want  error
	}{
		{name: "index", faces: [][3]int{{0, 1, 7}}, want: ErrFaceIndex},
		{name: "negative", faces: [][3]int{{0, -1, 2}}, want: ErrFaceIndex},
		{name: "repeated", faces: [][3]int{{0, 1, 1}}, want: ErrDegenerateFace},
		{name: "three faces on edge", faces: [][3]int{{0, 1, 2}, {1, 0, 3}, {0, 1, 4}}, want: ErrNonManifold},
		{name: "flipped", faces: [][3]int{{0, 1, 2}, {0, 1, 3}}, want: ErrNonManifold},
		{name: "bowtie", faces: [][3]int{{0, 1, 2}, {0, 3, 4}}, want: ErrNonManifold},
	} {
		_, err := New(pos, test.faces)
		assert.ErrorIs(t, err, test.want, test.name)
	}
}

func TestIsolatedVertex(t *testing.T) {
	pos := []r3.Vec{{}, {X: 1}, {Y: 1}, {Z: 5}}
	m, err := New(pos, [][3]int{{0, 1, 2}})
	require.NoError(t, err)
	assert.True(t, m.IsIsolated(3))
	assert.True(t, m.IsBoundary(3))
	assert.Zero(t, m.Valence(3))
	assert.Empty(t, slices.Collect(m.Neighbors(3)))
}

func TestCloneAndPositions(t *testing.T) {
	m, err := Fan(6, 2, 1)
	require.NoError(t, err)
	c := m.Clone()
	m.SetPosition(0, r3.Vec{Z: -3})
	assert.Equal(t, r3.Vec{Z: 1}, c.Position(0), "clone must not share positions")

	p := m.Positions()
	p[1] = r3.Vec{X: 100}
	assert.NotEqual(t, p[1], m.Position(1), "Positions must return a copy")
	require.NoError(t, m.SetPositions(p))
	assert.Equal(t, r3.Vec{X: 100}, m.Position(1))
	assert.ErrorIs(t, m.SetPositions(p[:2]), ErrPositionCount)

	box := c.Bounds()
	assert.InDelta(t, 1, box.Max.Z, 1e-15)
	assert.InDelta(t, -2, box.Min.X, 1e-12)
}
