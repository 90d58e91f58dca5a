package linsys

import (
	"errors"
	"fmt"
	"math"

	"github.com/soypat/meshfair/internal/logging"
	"gonum.org/v1/gonum/mat"
)

// Solver solves A*X = B for an n×n sparse A and an n×k right hand side B.
// Implementations never modify a or b. On failure the returned error wraps
// one of the package sentinel errors and X is nil.
type Solver interface {
	Solve(a *Matrix, b *mat.Dense) (*mat.Dense, error)
}

// DefaultDenseLimit is the largest system Auto hands to its dense solver
// when DenseLimit is zero.
const DefaultDenseLimit = 2000

// Auto dispatches to Dense for systems of at most DenseLimit rows and
// to Iterative otherwise.
type Auto struct {
	Dense      Solver
	Iterative  Solver
	DenseLimit int
}

// Symmetric returns the default solver for symmetric positive definite systems.
func Symmetric() Auto {
	return Auto{Dense: Cholesky{}, Iterative: ConjugateGradient{}}
}

// General returns the default solver for general square systems.
func General() Auto {
	return Auto{Dense: LU{}, Iterative: BiCGSTAB{}}
}

func (s Auto) Solve(a *Matrix, b *mat.Dense) (*mat.Dense, error) {
	limit := s.DenseLimit
	if limit <= 0 {
		limit = DefaultDenseLimit
	}
	n, _ := a.Dims()
	switch {
	case s.Dense != nil && (n <= limit || s.Iterative == nil):
		return s.Dense.Solve(a, b)
	case s.Iterative != nil:
		return s.Iterative.Solve(a, b)
	}
	return nil, errors.New("linsys: Auto has no solver configured")
}

// Cholesky solves symmetric positive definite systems with a dense
// gonum Cholesky factorization.
type Cholesky struct {
	// SymmetryTol is the largest accepted |A(i,j)-A(j,i)|. Zero means 1e-12
	// relative to the largest entry.
	SymmetryTol float64
}

func (c Cholesky) Solve(a *Matrix, b *mat.Dense) (*mat.Dense, error) {
	if err := checkSystem(a, b); err != nil {
		return nil, err
	}
	tol := c.SymmetryTol
	if tol == 0 {
		tol = 1e-12 * maxAbs(a)
	}
	sym, err := a.SymDense(tol)
	if err != nil {
		return nil, fmt.Errorf("cholesky: %w", err)
	}
	var chol mat.Cholesky
	if ok := chol.Factorize(sym); !ok {
		return nil, fmt.Errorf("cholesky: %w", ErrNotPositiveDefinite)
	}
	var x mat.Dense
	if err := chol.SolveTo(&x, b); err != nil {
		return nil, fmt.Errorf("cholesky: %w: %v", ErrIllConditioned, err)
	}
	logging.Logger().Debug("cholesky solve", "n", a.n, "nnz", a.NNZ())
	return checkSolution(&x)
}

// LU solves general square systems with a dense gonum LU factorization
// with partial pivoting.
type LU struct{}

func (LU) Solve(a *Matrix, b *mat.Dense) (*mat.Dense, error) {
	if err := checkSystem(a, b); err != nil {
		return nil, err
	}
	var lu mat.LU
	lu.Factorize(a.Dense())
	if cond := lu.Cond(); math.IsInf(cond, 1) || math.IsNaN(cond) {
		return nil, fmt.Errorf("lu: %w", ErrSingular)
	}
	var x mat.Dense
	if err := lu.SolveTo(&x, false, b); err != nil {
		return nil, fmt.Errorf("lu: %w: %v", ErrSingular, err)
	}
	logging.Logger().Debug("lu solve", "n", a.n, "nnz", a.NNZ())
	return checkSolution(&x)
}

func checkSystem(a *Matrix, b *mat.Dense) error {
	if a == nil || b == nil {
		return ErrDimension
	}
	n, _ := a.Dims()
	r, _ := b.Dims()
	if n == 0 || r != n {
		return fmt.Errorf("%d×%d matrix with %d row right hand side: %w", n, n, r, ErrDimension)
	}
	if !a.IsFinite() || !denseFinite(b) {
		return ErrNonFinite
	}
	return nil
}

func checkSolution(x *mat.Dense) (*mat.Dense, error) {
	if !denseFinite(x) {
		return nil, ErrNonFinite
	}
	return x, nil
}

func denseFinite(d *mat.Dense) bool {
	r, c := d.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := d.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}

func maxAbs(a *Matrix) float64 {
	var m float64
	for _, v := range a.val {
		m = math.Max(m, math.Abs(v))
	}
	return m
}
