package meshfair

import (
	"bytes"
	"log/slog"
	"math"
	"path/filepath"
	"testing"

	"github.com/soypat/meshfair/halfedge"
	"github.com/soypat/meshfair/linsys"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func newCone(t *testing.T) *Processor {
	t.Helper()
	m, err := halfedge.Fan(8, 1, 0.5)
	require.NoError(t, err)
	return New(m)
}

func TestProcessorExtent(t *testing.T) {
	p := newCone(t)
	assert.InDelta(t, 0, p.Center().X, 1e-12)
	assert.InDelta(t, 0, p.Center().Y, 1e-12)
	assert.InDelta(t, 0.5/9, p.Center().Z, 1e-12)
	assert.InDelta(t, math.Hypot(1, 0.5/9), p.Radius(), 1e-12)
}

func TestProcessorMinimalSurfaceAndReset(t *testing.T) {
	p := newCone(t)
	require.NoError(t, p.MinimalSurface())
	assert.InDelta(t, 0, p.Mesh().Position(0).Z, 1e-12)

	p.Reset()
	assert.Equal(t, 0.5, p.Mesh().Position(0).Z)
	// The snapshot is unaffected by edits to the copy handed out.
	ref := p.Reference()
	ref.SetPosition(0, r3.Vec{})
	assert.Equal(t, 0.5, p.Reference().Position(0).Z)
}

func TestProcessorOperations(t *testing.T) {
	p := newCone(t)
	before := p.Curvatures()
	assert.Greater(t, before.Gauss[0], 0.0)
	assert.Equal(t, 8.0, before.Valence[0])

	require.NoError(t, p.ImplicitSmooth(0.01))
	assert.Less(t, p.Mesh().Position(0).Z, 0.5)

	for _, op := range []string{OpUniform, OpCotan, OpUniformEnhance, OpCotanEnhance, OpImplicit, OpMinimal, OpCurvature} {
		p.Reset()
		err := p.Apply(FairingConfig{Operation: op, Timestep: 0.01, Iterations: 3, Coefficient: 1.5})
		require.NoError(t, err, op)
	}
	assert.ErrorIs(t, p.Apply(FairingConfig{Operation: "explode"}), ErrConfig)
	assert.Error(t, p.UniformEnhance(1, -1))

	p.Reset()
	p.CotanSmooth(5)
	assert.Less(t, p.Mesh().Position(0).Z, 0.5)
	assert.Len(t, p.Normals(), p.Mesh().NumVertices())
}

func TestProcessorSolvers(t *testing.T) {
	p := newCone(t)
	p.WithSolvers(linsys.ConjugateGradient{Tolerance: 1e-12}, linsys.BiCGSTAB{Tolerance: 1e-12})
	require.NoError(t, p.MinimalSurface())
	assert.InDelta(t, 0, p.Mesh().Position(0).Z, 1e-9)
	p.WithSolvers(nil, nil)
	require.NoError(t, p.ImplicitSmooth(0.01))
}

func TestPicking(t *testing.T) {
	m, err := halfedge.Grid(4, 4, 4, 4)
	require.NoError(t, err)
	p := New(m)

	v := p.ClosestVertexToRay(r3.Vec{X: 1.1, Y: 2.9, Z: 10}, r3.Vec{Z: -3})
	require.NotEqual(t, halfedge.NoVertex, v)
	assert.Equal(t, r3.Vec{X: 1, Y: 3}, p.Mesh().Position(v))
	assert.Equal(t, halfedge.NoVertex, p.ClosestVertexToRay(r3.Vec{}, r3.Vec{}))

	nv, dist := p.NearestVertex(r3.Vec{X: 2.2, Y: 0.1, Z: 1})
	assert.Equal(t, r3.Vec{X: 2}, p.Mesh().Position(nv))
	assert.InDelta(t, math.Sqrt(0.04+0.01+1), dist, 1e-12)
	for v := range m.Vertices() {
		got, d := p.NearestVertex(m.Position(v))
		assert.Equal(t, v, got)
		assert.Zero(t, d)
	}
}

func TestLoadSave(t *testing.T) {
	p := newCone(t)
	path := filepath.Join(t.TempDir(), "cone.off")
	require.NoError(t, p.Save(path))
	back, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, p.Mesh().Positions(), back.Mesh().Positions())
	_, err = Load(filepath.Join(t.TempDir(), "missing.off"))
	assert.Error(t, err)
}

func TestConfig(t *testing.T) {
	cfg, err := ParseConfig(`
[Mesh]
Input = bunny.off
Output = out.stl
[Fairing]
Operation = Cotan-Enhance
Iterations = 4
Coefficient = 0.5
[Solver]
Method = iterative
Tolerance = 1e-8
[Output]
Field = gauss
Preview = p.png
`)
	require.NoError(t, err)
	assert.Equal(t, "bunny.off", cfg.Mesh.Input)
	assert.Equal(t, OpCotanEnhance, cfg.Fairing.Operation)
	assert.Equal(t, 4, cfg.Fairing.Iterations)
	assert.Equal(t, 0.5, cfg.Fairing.Coefficient)
	assert.Equal(t, 1e-5, cfg.Fairing.Timestep, "default kept")
	assert.Equal(t, FieldGauss, cfg.Output.Field)
	assert.Equal(t, 64, cfg.Output.Bins)

	sym, gen := cfg.Solver.Solvers()
	assert.Equal(t, linsys.ConjugateGradient{Tolerance: 1e-8}, sym)
	assert.Equal(t, linsys.BiCGSTAB{Tolerance: 1e-8}, gen)

	for name, src := range map[string]string{
		"no input":  "[Fairing]\nOperation = implicit\n",
		"bad op":    "[Mesh]\nInput = a.off\n[Fairing]\nOperation = melt\n",
		"neg step":  "[Mesh]\nInput = a.off\n[Fairing]\nTimestep = -1\n",
		"bad clip":  "[Mesh]\nInput = a.off\n[Output]\nClip = 0.7\n",
		"bad field": "[Mesh]\nInput = a.off\n[Output]\nField = torsion\n",
		"solver":    "[Mesh]\nInput = a.off\n[Solver]\nMethod = magic\n",
	} {
		_, err := ParseConfig(src)
		assert.ErrorIs(t, err, ErrConfig, name)
	}
	_, err = ParseConfig("[Mesh]\nInput = a.off\nColor = red\n")
	assert.Error(t, err, "unknown variable")

	// The example configuration is valid apart from its placeholder paths.
	example, err := ParseConfig(ExampleConfig)
	require.NoError(t, err)
	assert.Equal(t, OpImplicit, example.Fairing.Operation)
}

func TestField(t *testing.T) {
	p := newCone(t)
	c := p.Curvatures()
	for _, name := range []string{FieldUniform, FieldMean, FieldGauss, FieldValence} {
		f, clip, err := Field(c, name, 0.05)
		require.NoError(t, err)
		assert.Len(t, f, p.Mesh().NumVertices())
		assert.LessOrEqual(t, clip, 0.05)
	}
	_, _, err := Field(c, "nope", 0)
	assert.ErrorIs(t, err, ErrConfig)
}

func TestSetLogger(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	defer SetLogger(nil)
	p := newCone(t)
	p.UniformSmooth(1)
	require.NoError(t, p.MinimalSurface())
	assert.Contains(t, buf.String(), "mesh processor ready")
	assert.Contains(t, buf.String(), "smoothing iteration")
	assert.Contains(t, buf.String(), "minimal surface")

	SetLogger(nil)
	buf.Reset()
	newCone(t)
	assert.Zero(t, buf.Len())
}
