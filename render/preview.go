package render

import (
	"errors"
	"image"
	"math"

	"github.com/fogleman/fauxgl"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/nfnt/resize"
	"github.com/soypat/meshfair/diffgeo"
	"github.com/soypat/meshfair/halfedge"
	"github.com/soypat/meshfair/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// View configures the camera of a preview.
type View struct {
	Width, Height int
	// Supersample renders at this multiple of the output size before
	// downsampling. Values below 1 mean 1.
	Supersample int
	// Eye is the camera position relative to a mesh fitted in [-1,1]^3.
	Eye, LookAt, Up r3.Vec
	Near, Far       float64
	// Fovy is the vertical field of view in degrees.
	Fovy       float64
	Background colorful.Color
}

// DefaultView looks at the mesh from an iso view.
var DefaultView = View{
	Width:       768,
	Height:      432,
	Supersample: 2,
	Eye:         d3.Elem(2.4),
	Up:          r3.Vec{Z: 1},
	Near:        1,
	Far:         10,
	Fovy:        30,
	Background:  colorful.Color{R: 1, G: 0.973, B: 0.89},
}

// Preview rasterizes m with per-vertex colors and headlight shading. colors
// must hold one color per vertex; if nil a uniform green is used.
func Preview(m *halfedge.Mesh, colors []colorful.Color, view View) (image.Image, error) {
	if m.NumFaces() == 0 {
		return nil, ErrEmptyMesh
	}
	if colors != nil && len(colors) != m.NumVertices() {
		return nil, errors.New("render: need one color per vertex")
	}
	if view.Width <= 0 || view.Height <= 0 {
		return nil, errors.New("render: preview size must be positive")
	}
	scale := max(view.Supersample, 1)
	normals := diffgeo.VertexNormals(m)
	vertex := func(v halfedge.Vertex) fauxgl.Vertex {
		c := fauxgl.HexColor("#468966")
		if colors != nil {
			c = fauxgl.Color{R: colors[v].R, G: colors[v].G, B: colors[v].B, A: 1}
		}
		return fauxgl.Vertex{
			Position: toFauxgl(m.Position(v)),
			Normal:   toFauxgl(normals[v]),
			Color:    c,
		}
	}
	tris := make([]*fauxgl.Triangle, 0, m.NumFaces())
	for f := range m.Faces() {
		fv := m.FaceVertices(f)
		tris = append(tris, &fauxgl.Triangle{V1: vertex(fv[0]), V2: vertex(fv[1]), V3: vertex(fv[2])})
	}
	mesh := fauxgl.NewTriangleMesh(tris)
	// fit mesh in a bi-unit cube centered at the origin
	mesh.BiUnitCube()

	ctx := fauxgl.NewContext(view.Width*scale, view.Height*scale)
	ctx.ClearColorBufferWith(fauxgl.Color{R: view.Background.R, G: view.Background.G, B: view.Background.B, A: 1})
	ctx.Cull = fauxgl.CullNone
	aspect := float64(view.Width) / float64(view.Height)
	eye := toFauxgl(view.Eye)
	matrix := fauxgl.LookAt(eye, toFauxgl(view.LookAt), toFauxgl(view.Up)).Perspective(view.Fovy, aspect, view.Near, view.Far)
	ctx.Shader = &vertexColorShader{matrix: matrix, eye: eye}
	ctx.DrawMesh(mesh)

	img := ctx.Image()
	if scale > 1 {
		// downsample image for antialiasing
		img = resize.Resize(uint(view.Width), uint(view.Height), img, resize.Bilinear)
	}
	return img, nil
}

// SavePreview renders m with the given colors and writes a PNG to path.
func SavePreview(path string, m *halfedge.Mesh, colors []colorful.Color, view View) error {
	img, err := Preview(m, colors, view)
	if err != nil {
		return err
	}
	return fauxgl.SavePNG(path, img)
}

// vertexColorShader interpolates vertex colors and shades them with a
// two sided diffuse light placed at the eye.
type vertexColorShader struct {
	matrix fauxgl.Matrix
	eye    fauxgl.Vector
}

func (s *vertexColorShader) Vertex(v fauxgl.Vertex) fauxgl.Vertex {
	v.Output = s.matrix.MulPositionW(v.Position)
	return v
}

func (s *vertexColorShader) Fragment(v fauxgl.Vertex) fauxgl.Color {
	const ambient = 0.35
	light := ambient
	if n := v.Normal; n.Length() > 0 {
		toEye := s.eye.Sub(v.Position).Normalize()
		light += (1 - ambient) * math.Abs(n.Normalize().Dot(toEye))
	}
	c := v.Color
	return fauxgl.Color{R: c.R * light, G: c.G * light, B: c.B * light, A: 1}
}
