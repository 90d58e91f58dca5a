package linsys

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/soypat/meshfair/internal/logging"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const (
	defaultTolerance = 1e-10
	minIterations    = 1000
	// breakdownTol is the cosine between the shadow and current residual
	// under which BiCGSTAB restarts.
	breakdownTol = 1e-12
)

// ConjugateGradient solves symmetric positive definite systems column by
// column with the Jacobi preconditioned conjugate gradient method.
type ConjugateGradient struct {
	// Tolerance is the relative residual |b-Ax|/|b| at which the
	// iteration stops. Zero means 1e-10.
	Tolerance float64
	// MaxIterations per column. Zero means max(1000, 10n).
	MaxIterations int
}

// BiCGSTAB solves general square systems column by column with the
// Jacobi preconditioned stabilized bi-conjugate gradient method.
type BiCGSTAB struct {
	Tolerance     float64
	MaxIterations int
}

func (cg ConjugateGradient) Solve(a *Matrix, b *mat.Dense) (*mat.Dense, error) {
	return solveColumns("cg", a, b, func(x, rhs []float64, pc *jacobi) (int, error) {
		return conjugateGradient(a, x, rhs, pc, tolerance(cg.Tolerance), maxIter(cg.MaxIterations, a.n))
	})
}

func (bi BiCGSTAB) Solve(a *Matrix, b *mat.Dense) (*mat.Dense, error) {
	return solveColumns("bicgstab", a, b, func(x, rhs []float64, pc *jacobi) (int, error) {
		return biCGSTAB(a, x, rhs, shadowResidual(a.n), pc, tolerance(bi.Tolerance), maxIter(bi.MaxIterations, a.n))
	})
}

type columnSolver func(x, rhs []float64, pc *jacobi) (iterations int, err error)

func solveColumns(name string, a *Matrix, b *mat.Dense, solve columnSolver) (*mat.Dense, error) {
	if err := checkSystem(a, b); err != nil {
		return nil, err
	}
	n, k := b.Dims()
	pc := newJacobi(a)
	x := mat.NewDense(n, k, nil)
	rhs := make([]float64, n)
	col := make([]float64, n)
	for j := 0; j < k; j++ {
		mat.Col(rhs, j, b)
		for i := range col {
			col[i] = 0
		}
		iters, err := solve(col, rhs, pc)
		if err != nil {
			return nil, fmt.Errorf("%s column %d after %d iterations: %w", name, j, iters, err)
		}
		logging.Logger().Debug("iterative solve", "method", name, "column", j, "iterations", iters, "n", n)
		x.SetCol(j, col)
	}
	return checkSolution(x)
}

// jacobi is the diagonal preconditioner. Zero diagonal entries are
// replaced by one.
type jacobi struct {
	inv []float64
}

func newJacobi(a *Matrix) *jacobi {
	diag := a.Diagonal()
	for i, d := range diag {
		if d == 0 {
			diag[i] = 1
		} else {
			diag[i] = 1 / d
		}
	}
	return &jacobi{inv: diag}
}

func (p *jacobi) apply(dst, r []float64) { floats.MulTo(dst, p.inv, r) }

func conjugateGradient(a *Matrix, x, b []float64, pc *jacobi, tol float64, maxIter int) (int, error) {
	n := len(b)
	bnorm := floats.Norm(b, 2)
	if bnorm == 0 {
		return 0, nil
	}
	r := make([]float64, n)
	a.MulVecTo(r, x)
	floats.SubTo(r, b, r)
	z := make([]float64, n)
	pc.apply(z, r)
	p := append([]float64(nil), z...)
	ap := make([]float64, n)
	rz := floats.Dot(r, z)
	for k := 1; k <= maxIter; k++ {
		a.MulVecTo(ap, p)
		pAp := floats.Dot(p, ap)
		if pAp <= 0 {
			return k, ErrNotPositiveDefinite
		}
		alpha := rz / pAp
		floats.AddScaled(x, alpha, p)
		floats.AddScaled(r, -alpha, ap)
		if floats.Norm(r, 2) <= tol*bnorm {
			return k, nil
		}
		pc.apply(z, r)
		rzNew := floats.Dot(r, z)
		beta := rzNew / rz
		rz = rzNew
		floats.AddScaledTo(p, z, beta, p)
	}
	return maxIter, ErrNotConverged
}

// biCGSTAB solves a*x = b starting from x. rhat is the shadow residual and
// is overwritten when the iteration restarts.
func biCGSTAB(a *Matrix, x, b, rhat []float64, pc *jacobi, tol float64, maxIter int) (int, error) {
	n := len(b)
	bnorm := floats.Norm(b, 2)
	if bnorm == 0 {
		return 0, nil
	}
	r := make([]float64, n)
	a.MulVecTo(r, x)
	floats.SubTo(r, b, r)
	var (
		p    = make([]float64, n)
		v    = make([]float64, n)
		phat = make([]float64, n)
		s    = make([]float64, n)
		shat = make([]float64, n)
		t    = make([]float64, n)
	)
	rho, alpha, omega := 1.0, 1.0, 1.0
	restart := true
	for k := 1; k <= maxIter; k++ {
		rhoNew := floats.Dot(rhat, r)
		if math.Abs(rhoNew) <= breakdownTol*floats.Norm(rhat, 2)*floats.Norm(r, 2) {
			// Shadow residual went orthogonal to r: start over from r.
			copy(rhat, r)
			rhoNew = floats.Dot(r, r)
			restart = true
		}
		if restart {
			copy(p, r)
			restart = false
		} else {
			beta := (rhoNew / rho) * (alpha / omega)
			// p = r + beta*(p - omega*v)
			floats.AddScaled(p, -omega, v)
			floats.AddScaledTo(p, r, beta, p)
		}
		pc.apply(phat, p)
		a.MulVecTo(v, phat)
		rv := floats.Dot(rhat, v)
		if rv == 0 {
			return k, fmt.Errorf("breakdown rhat·v=0: %w", ErrNotConverged)
		}
		alpha = rhoNew / rv
		floats.AddScaledTo(s, r, -alpha, v)
		if floats.Norm(s, 2) <= tol*bnorm {
			floats.AddScaled(x, alpha, phat)
			return k, nil
		}
		pc.apply(shat, s)
		a.MulVecTo(t, shat)
		tt := floats.Dot(t, t)
		if tt == 0 {
			return k, fmt.Errorf("breakdown t=0: %w", ErrNotConverged)
		}
		omega = floats.Dot(t, s) / tt
		floats.AddScaled(x, alpha, phat)
		floats.AddScaled(x, omega, shat)
		floats.AddScaledTo(r, s, -omega, t)
		if floats.Norm(r, 2) <= tol*bnorm {
			return k, nil
		}
		if omega == 0 {
			return k, fmt.Errorf("breakdown omega=0: %w", ErrNotConverged)
		}
		rho = rhoNew
	}
	return maxIter, ErrNotConverged
}

// shadowResidual returns the fixed BiCGSTAB shadow vector. Its entries are
// dense, positive and seeded so solves are reproducible.
func shadowResidual(n int) []float64 {
	rng := rand.New(rand.NewPCG(0x5eed, uint64(n)))
	rhat := make([]float64, n)
	for i := range rhat {
		rhat[i] = 0.5 + rng.Float64()
	}
	return rhat
}

func tolerance(tol float64) float64 {
	if tol <= 0 {
		return defaultTolerance
	}
	return tol
}

func maxIter(maxIter, n int) int {
	if maxIter > 0 {
		return maxIter
	}
	return max(minIterations, 10*n)
}
