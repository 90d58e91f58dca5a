package meshfair

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/soypat/meshfair/diffgeo"
	"github.com/soypat/meshfair/linsys"
	"github.com/soypat/meshfair/render"
	"gopkg.in/gcfg.v1"
)

// ExampleConfig is a documented configuration file accepted by ReadConfig.
const ExampleConfig = `[Mesh]

#######################
# Required Parameters #
#######################

# Mesh to process. Supported formats: .off, .stl (binary), .obj, .ply
Input = path/to/input.off

#######################
# Optional Parameters #
#######################

# Where the processed mesh is written: .off or .stl
# Output = path/to/output.off

[Fairing]

# Operation is one of:
# [ curvature | implicit | minimal | uniform | cotan | uniform-enhance | cotan-enhance ]
Operation = implicit

# Implicit smoothing step size. Larger steps diffuse more.
# Timestep = 1e-5

# Number of explicit smoothing iterations, also used by enhancement.
# Iterations = 10

# Feature enhancement gain. 0 gives plain smoothing, 1 the original mesh.
# Coefficient = 2

[Solver]

# Method is one of [ auto | dense | iterative ]. auto uses dense
# factorizations up to DenseLimit vertices and iterative solvers above.
# Method = auto
# DenseLimit = 2000

# Iterative solver relative residual and iteration cap (0 = automatic).
# Tolerance = 1e-10
# MaxIterations = 0

[Output]

# Scalar field shown in the preview and histogram:
# [ uniform | mean | gauss | valence ]
# Field = mean

# Color coded PNG preview of the field.
# Preview = preview.png
# Width = 768
# Height = 432

# Histogram of the field, format chosen by extension.
# Histogram = hist.png
# Bins = 64

# Fraction of values clipped at each end of the color range.
# Clip = 0.05`

// Operations accepted in the [Fairing] section.
const (
	OpCurvature      = "curvature"
	OpImplicit       = "implicit"
	OpMinimal        = "minimal"
	OpUniform        = "uniform"
	OpCotan          = "cotan"
	OpUniformEnhance = "uniform-enhance"
	OpCotanEnhance   = "cotan-enhance"
)

// Fields accepted in the [Output] section.
const (
	FieldUniform = "uniform"
	FieldMean    = "mean"
	FieldGauss   = "gauss"
	FieldValence = "valence"
)

var ErrConfig = errors.New("meshfair: invalid configuration")

type MeshConfig struct {
	Input, Output string
}

type FairingConfig struct {
	Operation   string
	Timestep    float64
	Iterations  int
	Coefficient float64
}

type SolverConfig struct {
	Method        string
	DenseLimit    int
	Tolerance     float64
	MaxIterations int
}

type OutputConfig struct {
	Field     string
	Preview   string
	Width     int
	Height    int
	Histogram string
	Bins      int
	Clip      float64
}

// Config is the contents of a configuration file.
type Config struct {
	Mesh    MeshConfig
	Fairing FairingConfig
	Solver  SolverConfig
	Output  OutputConfig
}

// DefaultConfig returns a Config with every optional value set.
func DefaultConfig() Config {
	return Config{
		Fairing: FairingConfig{
			Operation:   OpCurvature,
			Timestep:    1e-5,
			Iterations:  10,
			Coefficient: 2,
		},
		Solver: SolverConfig{
			Method:     "auto",
			DenseLimit: linsys.DefaultDenseLimit,
		},
		Output: OutputConfig{
			Field:  FieldMean,
			Width:  render.DefaultView.Width,
			Height: render.DefaultView.Height,
			Bins:   64,
			Clip:   render.DefaultClip,
		},
	}
}

// ReadConfig reads a gcfg file over DefaultConfig and validates it.
func ReadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if err := gcfg.ReadFileInto(&cfg, path); err != nil {
		return Config{}, err
	}
	return cfg, cfg.CheckInit()
}

// ParseConfig is ReadConfig reading from a string.
func ParseConfig(src string) (Config, error) {
	cfg := DefaultConfig()
	if err := gcfg.ReadStringInto(&cfg, src); err != nil {
		return Config{}, err
	}
	return cfg, cfg.CheckInit()
}

// CheckInit normalizes names to lower case and reports the first invalid value.
func (c *Config) CheckInit() error {
	c.Fairing.Operation = strings.ToLower(strings.TrimSpace(c.Fairing.Operation))
	c.Solver.Method = strings.ToLower(strings.TrimSpace(c.Solver.Method))
	c.Output.Field = strings.ToLower(strings.TrimSpace(c.Output.Field))
	switch {
	case c.Mesh.Input == "":
		return fmt.Errorf("%w: missing [Mesh] Input", ErrConfig)
	case !validOperation(c.Fairing.Operation):
		return fmt.Errorf("%w: unknown operation %q", ErrConfig, c.Fairing.Operation)
	case !finiteNonNegative(c.Fairing.Timestep):
		return fmt.Errorf("%w: Timestep must be finite and non-negative", ErrConfig)
	case c.Fairing.Iterations < 0:
		return fmt.Errorf("%w: Iterations must be non-negative", ErrConfig)
	case !finiteNonNegative(c.Fairing.Coefficient):
		return fmt.Errorf("%w: Coefficient must be finite and non-negative", ErrConfig)
	case c.Solver.Method != "auto" && c.Solver.Method != "dense" && c.Solver.Method != "iterative":
		return fmt.Errorf("%w: unknown solver method %q", ErrConfig, c.Solver.Method)
	case c.Solver.DenseLimit < 0 || c.Solver.MaxIterations < 0 || !finiteNonNegative(c.Solver.Tolerance):
		return fmt.Errorf("%w: solver limits must be non-negative", ErrConfig)
	case c.Output.Field != FieldUniform && c.Output.Field != FieldMean && c.Output.Field != FieldGauss && c.Output.Field != FieldValence:
		return fmt.Errorf("%w: unknown field %q", ErrConfig, c.Output.Field)
	case c.Output.Width <= 0 || c.Output.Height <= 0:
		return fmt.Errorf("%w: preview size must be positive", ErrConfig)
	case c.Output.Bins <= 0:
		return fmt.Errorf("%w: Bins must be positive", ErrConfig)
	case !(c.Output.Clip >= 0 && c.Output.Clip < 0.5):
		return fmt.Errorf("%w: Clip must be in [0, 0.5)", ErrConfig)
	}
	return nil
}

func validOperation(op string) bool {
	switch op {
	case OpCurvature, OpImplicit, OpMinimal, OpUniform, OpCotan, OpUniformEnhance, OpCotanEnhance:
		return true
	}
	return false
}

func finiteNonNegative(x float64) bool {
	return x >= 0 && !math.IsInf(x, 1)
}

// Solvers returns the symmetric and general solvers described by c.
func (c SolverConfig) Solvers() (symmetric, general linsys.Solver) {
	cg := linsys.ConjugateGradient{Tolerance: c.Tolerance, MaxIterations: c.MaxIterations}
	bicg := linsys.BiCGSTAB{Tolerance: c.Tolerance, MaxIterations: c.MaxIterations}
	switch c.Method {
	case "dense":
		return linsys.Cholesky{}, linsys.LU{}
	case "iterative":
		return cg, bicg
	}
	return linsys.Auto{Dense: linsys.Cholesky{}, Iterative: cg, DenseLimit: c.DenseLimit},
		linsys.Auto{Dense: linsys.LU{}, Iterative: bicg, DenseLimit: c.DenseLimit}
}

// Apply runs the configured operation on p.
func (p *Processor) Apply(c FairingConfig) error {
	switch c.Operation {
	case OpCurvature:
		return nil
	case OpImplicit:
		return p.ImplicitSmooth(c.Timestep)
	case OpMinimal:
		return p.MinimalSurface()
	case OpUniform:
		p.UniformSmooth(c.Iterations)
	case OpCotan:
		p.CotanSmooth(c.Iterations)
	case OpUniformEnhance:
		return p.UniformEnhance(c.Iterations, c.Coefficient)
	case OpCotanEnhance:
		return p.CotanEnhance(c.Iterations, c.Coefficient)
	default:
		return fmt.Errorf("%w: unknown operation %q", ErrConfig, c.Operation)
	}
	return nil
}

// Field returns the named curvature field of c along with the clip
// fraction suited to its color coding.
func Field(c diffgeo.Curvatures, name string, clip float64) ([]float64, float64, error) {
	switch name {
	case FieldUniform:
		return c.Uniform, clip, nil
	case FieldMean:
		return c.Mean, clip, nil
	case FieldGauss:
		return c.Gauss, clip, nil
	case FieldValence:
		return c.Valence, math.Min(clip, render.ValenceClip), nil
	}
	return nil, 0, fmt.Errorf("%w: unknown field %q", ErrConfig, name)
}
