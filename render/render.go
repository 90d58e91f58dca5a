// Package render moves meshes in and out of files and turns per-vertex
// scalar fields into images: binary STL, OFF, OBJ and PLY input, STL and
// OFF output, color coded PNG previews and histograms.
package render

import (
	"errors"
	"fmt"
	"math"

	"github.com/soypat/meshfair/halfedge"
	"github.com/soypat/meshfair/internal/d3"
	"github.com/soypat/meshfair/internal/logging"
	"gonum.org/v1/gonum/spatial/r3"
)

var ErrEmptyMesh = errors.New("render: mesh has no triangles")

// Triangles returns the triangle soup of m in face order.
func Triangles(m *halfedge.Mesh) []r3.Triangle {
	tris := make([]r3.Triangle, 0, m.NumFaces())
	for f := range m.Faces() {
		fv := m.FaceVertices(f)
		tris = append(tris, r3.Triangle{m.Position(fv[0]), m.Position(fv[1]), m.Position(fv[2])})
	}
	return tris
}

// Weld merges triangle corners that fall in the same cell of a grid of
// spacing tol and builds a mesh from the result. If tol is zero it is
// inferred from the shortest triangle side. Triangles that collapse to
// fewer than three distinct vertices are dropped.
func Weld(triangles []r3.Triangle, tol float64) (*halfedge.Mesh, error) {
	if len(triangles) == 0 {
		return nil, ErrEmptyMesh
	}
	bb := d3.Box{Min: d3.Elem(math.MaxFloat64), Max: d3.Elem(-math.MaxFloat64)}
	minDist2 := math.MaxFloat64
	maxDist2 := 0.0
	for _, tri := range triangles {
		for j, vert := range tri {
			if !d3.IsFinite(vert) {
				return nil, errors.New("render: inf/NaN triangle vertex")
			}
			bb = bb.Include(vert)
			side2 := r3.Norm2(r3.Sub(tri[(j+1)%3], vert))
			if side2 > 0 {
				minDist2 = math.Min(minDist2, side2)
			}
			maxDist2 = math.Max(maxDist2, side2)
		}
	}
	if maxDist2 == 0 {
		return nil, errors.New("render: all triangles are degenerate")
	}
	suggested := math.Sqrt(minDist2) / 256
	if tol > math.Sqrt(maxDist2)/2 {
		return nil, fmt.Errorf("render: vertex tolerance too large, suggested tolerance: %g", suggested)
	}
	if tol <= 0 {
		tol = suggested
	}
	if bb.Diagonal()/tol > math.MaxInt64/2 {
		return nil, errors.New("render: vertex tolerance too small, overflowed int64")
	}
	// vertex index cache keyed by position in tolerance space.
	cache := make(map[[3]int64]int)
	var positions []r3.Vec
	faces := make([][3]int, 0, len(triangles))
	ri := 1 / tol
	dropped := 0
	for _, tri := range triangles {
		var face [3]int
		for j, vert := range tri {
			v := r3.Sub(vert, bb.Min)
			key := [3]int64{int64(math.Round(v.X * ri)), int64(math.Round(v.Y * ri)), int64(math.Round(v.Z * ri))}
			idx, ok := cache[key]
			if !ok {
				idx = len(positions)
				cache[key] = idx
				positions = append(positions, vert)
			}
			face[j] = idx
		}
		if face[0] == face[1] || face[1] == face[2] || face[2] == face[0] {
			dropped++
			continue
		}
		faces = append(faces, face)
	}
	if len(faces) == 0 {
		return nil, ErrEmptyMesh
	}
	if dropped > 0 {
		logging.Logger().Warn("dropped collapsed triangles while welding", "count", dropped)
	}
	return halfedge.New(positions, faces)
}
