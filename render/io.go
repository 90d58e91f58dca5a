package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fogleman/fauxgl"
	"github.com/soypat/meshfair/halfedge"
	"github.com/soypat/meshfair/internal/logging"
	"gonum.org/v1/gonum/spatial/r3"
)

// Load reads a mesh from path. The format is chosen by extension: .off,
// .stl (binary), .obj and .ply. Triangle soups are welded with an inferred
// tolerance.
func Load(path string) (*halfedge.Mesh, error) {
	var (
		m   *halfedge.Mesh
		err error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".off":
		var fp *os.File
		fp, err = os.Open(path)
		if err != nil {
			return nil, err
		}
		defer fp.Close()
		m, err = ReadOFF(fp)
	case ".stl":
		var fp *os.File
		fp, err = os.Open(path)
		if err != nil {
			return nil, err
		}
		defer fp.Close()
		var tris []r3.Triangle
		tris, err = ReadSTL(fp)
		if err == nil {
			m, err = Weld(tris, 0)
		}
	case ".obj", ".ply":
		var fm *fauxgl.Mesh
		if ext == ".obj" {
			fm, err = fauxgl.LoadOBJ(path)
		} else {
			fm, err = fauxgl.LoadPLY(path)
		}
		if err == nil {
			m, err = Weld(fauxglTriangles(fm), 0)
		}
	default:
		return nil, fmt.Errorf("render: unsupported mesh format %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("render: loading %s: %w", path, err)
	}
	logging.Logger().Info("mesh loaded", "path", path, "vertices", m.NumVertices(), "faces", m.NumFaces())
	return m, nil
}

// Save writes m to path as .off or binary .stl by extension.
func Save(path string, m *halfedge.Mesh) error {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".off" && ext != ".stl" {
		return fmt.Errorf("render: unsupported output format %q", ext)
	}
	fp, err := os.Create(path)
	if err != nil {
		return err
	}
	if ext == ".off" {
		err = WriteOFF(fp, m)
	} else {
		err = WriteSTL(fp, Triangles(m))
	}
	if cerr := fp.Close(); err == nil {
		err = cerr
	}
	return err
}

func fauxglTriangles(fm *fauxgl.Mesh) []r3.Triangle {
	tris := make([]r3.Triangle, len(fm.Triangles))
	for i, t := range fm.Triangles {
		tris[i] = r3.Triangle{fromFauxgl(t.V1.Position), fromFauxgl(t.V2.Position), fromFauxgl(t.V3.Position)}
	}
	return tris
}

func fromFauxgl(v fauxgl.Vector) r3.Vec { return r3.Vec{X: v.X, Y: v.Y, Z: v.Z} }

func toFauxgl(v r3.Vec) fauxgl.Vector { return fauxgl.V(v.X, v.Y, v.Z) }
