package linsys

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// laplacian1D returns the tridiagonal matrix of a path graph Laplacian
// plus shift on the diagonal.
func laplacian1D(n int, shift float64) *Matrix {
	t := NewTriplets(n, 3*n)
	for i := 0; i < n; i++ {
		t.Add(i, i, shift)
		if i > 0 {
			t.Add(i, i, 1)
			t.Add(i, i-1, -1)
		}
		if i < n-1 {
			t.Add(i, i, 1)
			t.Add(i, i+1, -1)
		}
	}
	return t.Matrix()
}

func TestTripletsSumDuplicates(t *testing.T) {
	tr := NewTriplets(3, 0)
	tr.Add(0, 0, 1)
	tr.Add(2, 1, 4)
	tr.Add(0, 0, 2)
	tr.Add(1, 2, -1)
	tr.Add(0, 0, 0.5)
	assert.Equal(t, 5, tr.Len())
	assert.Equal(t, 3, tr.Dim())
	m := tr.Matrix()
	assert.Equal(t, 3, m.NNZ())
	assert.Equal(t, 3.5, m.At(0, 0))
	assert.Equal(t, 4.0, m.At(2, 1))
	assert.Equal(t, -1.0, m.At(1, 2))
	assert.Zero(t, m.At(1, 1))
	assert.Equal(t, -1.0, m.RowSum(1))

	// Building again does not double count.
	assert.Equal(t, 3.5, tr.Matrix().At(0, 0))
	assert.Panics(t, func() { tr.Add(3, 0, 1) })
	assert.Panics(t, func() { tr.Add(0, -1, 1) })
}

func TestMatrixOps(t *testing.T) {
	m := laplacian1D(5, 0)
	r, c := m.Dims()
	assert.Equal(t, 5, r)
	assert.Equal(t, 5, c)
	for i := 0; i < 5; i++ {
		assert.Zero(t, m.RowSum(i))
	}
	assert.Equal(t, []float64{1, 2, 2, 2, 1}, m.Diagonal())
	assert.True(t, m.IsSymmetric(0))
	assert.True(t, m.IsFinite())

	x := []float64{1, 2, 3, 4, 5}
	got := make([]float64, 5)
	m.MulVecTo(got, x)
	var want mat.VecDense
	want.MulVec(m.Dense(), mat.NewVecDense(5, x))
	assert.Equal(t, want.RawVector().Data, got)
	assert.True(t, mat.Equal(m.T(), m.Dense()))

	tr := NewTriplets(2, 2)
	tr.Add(0, 1, 1)
	tr.Add(1, 0, 2)
	asym := tr.Matrix()
	assert.False(t, asym.IsSymmetric(0.5))
	_, err := asym.SymDense(0.5)
	assert.ErrorIs(t, err, ErrAsymmetric)
}

func TestSolvers(t *testing.T) {
	const n = 30
	a := laplacian1D(n, 0.1)
	xWant := mat.NewDense(n, 3, nil)
	for i := 0; i < n; i++ {
		xWant.Set(i, 0, float64(i))
		xWant.Set(i, 1, math.Sin(float64(i)))
		xWant.Set(i, 2, 1)
	}
	var b mat.Dense
	b.Mul(a.Dense(), xWant)

	for name, s := range map[string]Solver{
		"cholesky": Cholesky{},
		"lu":       LU{},
		"cg":       ConjugateGradient{Tolerance: 1e-13},
		"bicgstab": BiCGSTAB{Tolerance: 1e-13},
		"auto":     Symmetric(),
		"auto-it":  Auto{Dense: LU{}, Iterative: BiCGSTAB{Tolerance: 1e-13}, DenseLimit: 10},
	} {
		t.Run(name, func(t *testing.T) {
			x, err := s.Solve(a, &b)
			require.NoError(t, err)
			assert.True(t, mat.EqualApprox(xWant, x, 1e-8), "solution mismatch")
		})
	}
}

func TestNonSymmetricSolvers(t *testing.T) {
	// Dirichlet rows break symmetry like the minimal surface system.
	const n = 12
	tr := NewTriplets(n, 3*n)
	tr.Add(0, 0, 1)
	tr.Add(n-1, n-1, 1)
	for i := 1; i < n-1; i++ {
		tr.Add(i, i-1, -1)
		tr.Add(i, i, 2)
		tr.Add(i, i+1, -1)
	}
	a := tr.Matrix()
	assert.False(t, a.IsSymmetric(0))
	b := mat.NewDense(n, 1, nil)
	b.Set(0, 0, 0)
	b.Set(n-1, 0, 11)
	for name, s := range map[string]Solver{"lu": LU{}, "bicgstab": BiCGSTAB{Tolerance: 1e-13}} {
		t.Run(name, func(t *testing.T) {
			x, err := s.Solve(a, b)
			require.NoError(t, err)
			for i := 0; i < n; i++ {
				assert.InDelta(t, float64(i), x.At(i, 0), 1e-8)
			}
		})
	}
	_, err := Cholesky{}.Solve(a, b)
	assert.ErrorIs(t, err, ErrAsymmetric)
}

func TestBiCGSTABRestart(t *testing.T) {
	// With the right hand side as shadow residual the second step is
	// orthogonal to it: the right hand side lives on the identity rows and
	// the first step solves those exactly.
	const n = 12
	tr := NewTriplets(n, 3*n)
	tr.Add(0, 0, 1)
	tr.Add(n-1, n-1, 1)
	for i := 1; i < n-1; i++ {
		tr.Add(i, i-1, -1)
		tr.Add(i, i, 2)
		tr.Add(i, i+1, -1)
	}
	a := tr.Matrix()
	b := make([]float64, n)
	b[n-1] = 11
	x := make([]float64, n)
	rhat := append([]float64(nil), b...)
	iters, err := biCGSTAB(a, x, b, rhat, newJacobi(a), 1e-13, 100)
	require.NoError(t, err)
	assert.Greater(t, iters, 1)
	for i := range x {
		assert.InDelta(t, float64(i), x[i], 1e-8)
	}

	s1, s2 := shadowResidual(50), shadowResidual(50)
	assert.Equal(t, s1, s2)
	for _, v := range s1 {
		assert.True(t, v >= 0.5 && v < 1.5)
	}
}

func TestSolverFailures(t *testing.T) {
	singular := laplacian1D(6, 0) // constant vectors are in the null space
	b := mat.NewDense(6, 1, []float64{1, 0, 0, 0, 0, 0})

	_, err := LU{}.Solve(singular, b)
	assert.ErrorIs(t, err, ErrSingular)
	_, err = Cholesky{}.Solve(singular, b)
	assert.True(t, errors.Is(err, ErrNotPositiveDefinite) || errors.Is(err, ErrIllConditioned), "got %v", err)

	negdef := laplacian1D(6, -5)
	_, err = ConjugateGradient{}.Solve(negdef, b)
	assert.ErrorIs(t, err, ErrNotPositiveDefinite)
	_, err = Cholesky{}.Solve(negdef, b)
	assert.ErrorIs(t, err, ErrNotPositiveDefinite)

	_, err = ConjugateGradient{MaxIterations: 1}.Solve(laplacian1D(20, 0.01), mat.NewDense(20, 1, nil))
	assert.NoError(t, err, "zero right hand side converges immediately")

	rhs := mat.NewDense(20, 1, nil)
	rhs.Set(0, 0, 1)
	_, err = ConjugateGradient{MaxIterations: 1}.Solve(laplacian1D(20, 0.01), rhs)
	assert.ErrorIs(t, err, ErrNotConverged)

	_, err = LU{}.Solve(singular, mat.NewDense(5, 1, nil))
	assert.ErrorIs(t, err, ErrDimension)
	_, err = LU{}.Solve(nil, b)
	assert.ErrorIs(t, err, ErrDimension)

	nan := mat.NewDense(6, 1, []float64{math.NaN(), 0, 0, 0, 0, 0})
	_, err = Cholesky{}.Solve(laplacian1D(6, 1), nan)
	assert.ErrorIs(t, err, ErrNonFinite)

	_, err = Auto{}.Solve(singular, b)
	assert.Error(t, err)
}

func TestAutoRouting(t *testing.T) {
	a := laplacian1D(4, 1)
	b := mat.NewDense(4, 1, []float64{1, 2, 3, 4})
	dense := &recordingSolver{Solver: Cholesky{}}
	iter := &recordingSolver{Solver: ConjugateGradient{}}

	_, err := Auto{Dense: dense, Iterative: iter, DenseLimit: 4}.Solve(a, b)
	require.NoError(t, err)
	assert.Equal(t, 1, dense.calls)
	assert.Zero(t, iter.calls)

	_, err = Auto{Dense: dense, Iterative: iter, DenseLimit: 3}.Solve(a, b)
	require.NoError(t, err)
	assert.Equal(t, 1, iter.calls)

	_, err = Auto{Dense: dense, DenseLimit: 3}.Solve(a, b)
	require.NoError(t, err)
	assert.Equal(t, 2, dense.calls)
}

type recordingSolver struct {
	Solver
	calls int
}

func (r *recordingSolver) Solve(a *Matrix, b *mat.Dense) (*mat.Dense, error) {
	r.calls++
	return r.Solver.Solve(a, b)
}
