// Package meshfair smooths, sharpens and analyses triangle meshes with
// discrete differential geometry operators.
//
// A Processor holds a working mesh and the snapshot of that mesh taken
// when it was loaded. Curvature estimates, implicit and explicit fairing,
// minimal surfaces and feature enhancement all operate on the working mesh.
// The snapshot supplies the boundary of minimal surface solves and is used
// by Reset.
package meshfair

import (
	"math"

	"github.com/soypat/meshfair/diffgeo"
	"github.com/soypat/meshfair/fairing"
	"github.com/soypat/meshfair/halfedge"
	"github.com/soypat/meshfair/internal/d3"
	"github.com/soypat/meshfair/linsys"
	"github.com/soypat/meshfair/render"
	"gonum.org/v1/gonum/spatial/r3"
)

// Processor is a mesh processing session. It is not safe for concurrent use.
type Processor struct {
	mesh *halfedge.Mesh
	// ref is the load time snapshot. It is never modified.
	ref    *halfedge.Mesh
	center r3.Vec
	radius float64

	symmetric linsys.Solver
	general   linsys.Solver
}

// New starts a session on m. The processor takes ownership of m.
func New(m *halfedge.Mesh) *Processor {
	p := &Processor{
		mesh:      m,
		ref:       m.Clone(),
		symmetric: linsys.Symmetric(),
		general:   linsys.General(),
	}
	p.center, p.radius = extent(m)
	Logger().Info("mesh processor ready",
		"vertices", m.NumVertices(), "faces", m.NumFaces(), "edges", m.NumEdges(),
		"boundary", len(m.BoundaryVertices()), "radius", p.radius)
	return p
}

// Load reads a mesh file and starts a session on it. See render.Load for
// the supported formats.
func Load(path string) (*Processor, error) {
	m, err := render.Load(path)
	if err != nil {
		return nil, err
	}
	return New(m), nil
}

// extent returns the vertex centroid and the largest distance from it.
func extent(m *halfedge.Mesh) (center r3.Vec, radius float64) {
	if m.NumVertices() == 0 {
		return center, 0
	}
	center = d3.Set(m.Positions()).Centroid()
	for v := range m.Vertices() {
		radius = math.Max(radius, r3.Norm(r3.Sub(m.Position(v), center)))
	}
	return center, radius
}

// WithSolvers replaces the solvers used for the symmetric implicit fairing
// system and the general minimal surface system. Nil arguments keep the
// current solver.
func (p *Processor) WithSolvers(symmetric, general linsys.Solver) *Processor {
	if symmetric != nil {
		p.symmetric = symmetric
	}
	if general != nil {
		p.general = general
	}
	return p
}

// Mesh returns the working mesh.
func (p *Processor) Mesh() *halfedge.Mesh { return p.mesh }

// Reference returns a copy of the load time snapshot.
func (p *Processor) Reference() *halfedge.Mesh { return p.ref.Clone() }

// Center returns the vertex centroid of the mesh at load time.
func (p *Processor) Center() r3.Vec { return p.center }

// Radius returns the largest distance from Center of a vertex at load time.
func (p *Processor) Radius() float64 { return p.radius }

// Reset restores the load time vertex positions.
func (p *Processor) Reset() {
	if err := p.mesh.SetPositions(p.ref.Positions()); err != nil {
		panic(err)
	}
}

// ImplicitSmooth performs one implicit mean curvature flow step.
func (p *Processor) ImplicitSmooth(timestep float64) error {
	return fairing.ImplicitSmooth(p.mesh, timestep, p.symmetric)
}

// MinimalSurface replaces the mesh with the minimal surface spanning the
// load time boundary.
func (p *Processor) MinimalSurface() error {
	return fairing.MinimalSurface(p.mesh, p.ref, p.general)
}

func (p *Processor) UniformSmooth(iterations int) { fairing.UniformSmooth(p.mesh, iterations) }

func (p *Processor) CotanSmooth(iterations int) { fairing.CotanSmooth(p.mesh, iterations) }

// UniformEnhance sharpens features using uniform smoothing as the low pass.
func (p *Processor) UniformEnhance(iterations int, coefficient float64) error {
	return fairing.Enhance(p.mesh, iterations, coefficient, fairing.UniformSmooth)
}

// CotanEnhance sharpens features using cotangent smoothing as the low pass.
func (p *Processor) CotanEnhance(iterations int, coefficient float64) error {
	return fairing.Enhance(p.mesh, iterations, coefficient, fairing.CotanSmooth)
}

// Curvatures recomputes the weights and every curvature field of the
// current mesh.
func (p *Processor) Curvatures() diffgeo.Curvatures {
	c, _ := diffgeo.ComputeCurvatures(p.mesh)
	return c
}

// Normals returns area weighted vertex normals of the current mesh.
func (p *Processor) Normals() []r3.Vec { return diffgeo.VertexNormals(p.mesh) }

// Save writes the working mesh to path.
func (p *Processor) Save(path string) error { return render.Save(path, p.mesh) }
