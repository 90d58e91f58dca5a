// Package linsys assembles sparse linear systems from (row, column, value)
// contributions and solves them with dense gonum factorizations or
// preconditioned iterative methods.
package linsys

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/mat"
)

var (
	ErrDimension           = errors.New("linsys: dimension mismatch")
	ErrAsymmetric          = errors.New("linsys: matrix is not symmetric")
	ErrNotPositiveDefinite = errors.New("linsys: matrix is not positive definite")
	ErrSingular            = errors.New("linsys: matrix is singular")
	ErrIllConditioned      = errors.New("linsys: matrix is ill-conditioned")
	ErrNotConverged        = errors.New("linsys: iterative solver did not converge")
	ErrNonFinite           = errors.New("linsys: NaN or Inf encountered")
)

// Triplet is a single contribution to a sparse matrix entry.
type Triplet struct {
	Row, Col int
	Value    float64
}

// Triplets accumulates contributions to an n×n matrix. Contributions to the
// same (row, column) are summed when the matrix is built, never overwritten.
type Triplets struct {
	n int
	t []Triplet
}

// NewTriplets returns an empty builder for an n×n matrix with room for
// capacity contributions.
func NewTriplets(n, capacity int) *Triplets {
	if n < 0 {
		panic("linsys: negative dimension")
	}
	return &Triplets{n: n, t: make([]Triplet, 0, capacity)}
}

// Add appends the contribution v to entry (i, j).
func (t *Triplets) Add(i, j int, v float64) {
	if uint(i) >= uint(t.n) || uint(j) >= uint(t.n) {
		panic(fmt.Sprintf("linsys: triplet (%d,%d) out of range for %d×%d matrix", i, j, t.n, t.n))
	}
	t.t = append(t.t, Triplet{Row: i, Col: j, Value: v})
}

// Len returns the number of contributions added.
func (t *Triplets) Len() int { return len(t.t) }

// Dim returns the matrix dimension n.
func (t *Triplets) Dim() int { return t.n }

// Matrix sums duplicate contributions and returns the compressed result.
// The builder may be reused afterwards.
func (t *Triplets) Matrix() *Matrix {
	sorted := slices.Clone(t.t)
	slices.SortFunc(sorted, func(a, b Triplet) int {
		if c := cmp.Compare(a.Row, b.Row); c != 0 {
			return c
		}
		return cmp.Compare(a.Col, b.Col)
	})
	m := &Matrix{
		n:      t.n,
		rowPtr: make([]int, t.n+1),
		col:    make([]int, 0, len(sorted)),
		val:    make([]float64, 0, len(sorted)),
	}
	for k, tr := range sorted {
		if k > 0 && sorted[k-1].Row == tr.Row && sorted[k-1].Col == tr.Col {
			m.val[len(m.val)-1] += tr.Value
			continue
		}
		m.col = append(m.col, tr.Col)
		m.val = append(m.val, tr.Value)
		m.rowPtr[tr.Row+1]++
	}
	for i := 0; i < t.n; i++ {
		m.rowPtr[i+1] += m.rowPtr[i]
	}
	return m
}

// Matrix is a square sparse matrix in compressed sparse row form.
// It implements mat.Matrix.
type Matrix struct {
	n      int
	rowPtr []int
	col    []int // sorted within each row
	val    []float64
}

var _ mat.Matrix = (*Matrix)(nil)

func (m *Matrix) Dims() (r, c int) { return m.n, m.n }

// At returns entry (i, j). Entries not stored are zero.
func (m *Matrix) At(i, j int) float64 {
	if uint(i) >= uint(m.n) || uint(j) >= uint(m.n) {
		panic(mat.ErrIndexOutOfRange)
	}
	cols := m.col[m.rowPtr[i]:m.rowPtr[i+1]]
	k, found := slices.BinarySearch(cols, j)
	if !found {
		return 0
	}
	return m.val[m.rowPtr[i]+k]
}

func (m *Matrix) T() mat.Matrix { return mat.Transpose{Matrix: m} }

// NNZ returns the number of stored entries.
func (m *Matrix) NNZ() int { return len(m.val) }

// DoRowNonZero calls fn for every stored entry of row i in column order.
func (m *Matrix) DoRowNonZero(i int, fn func(j int, v float64)) {
	for k := m.rowPtr[i]; k < m.rowPtr[i+1]; k++ {
		fn(m.col[k], m.val[k])
	}
}

// RowSum returns the sum of every entry of row i.
func (m *Matrix) RowSum(i int) float64 {
	var sum float64
	for _, v := range m.val[m.rowPtr[i]:m.rowPtr[i+1]] {
		sum += v
	}
	return sum
}

// Diagonal returns the main diagonal.
func (m *Matrix) Diagonal() []float64 {
	diag := make([]float64, m.n)
	for i := range diag {
		diag[i] = m.At(i, i)
	}
	return diag
}

// MulVecTo stores A*x in dst. Both slices must have length n.
func (m *Matrix) MulVecTo(dst, x []float64) {
	if len(dst) != m.n || len(x) != m.n {
		panic(ErrDimension)
	}
	for i := 0; i < m.n; i++ {
		var sum float64
		for k := m.rowPtr[i]; k < m.rowPtr[i+1]; k++ {
			sum += m.val[k] * x[m.col[k]]
		}
		dst[i] = sum
	}
}

// IsSymmetric reports whether |A(i,j) - A(j,i)| <= tol for all stored entries.
func (m *Matrix) IsSymmetric(tol float64) bool {
	for i := 0; i < m.n; i++ {
		for k := m.rowPtr[i]; k < m.rowPtr[i+1]; k++ {
			j := m.col[k]
			if j != i && math.Abs(m.val[k]-m.At(j, i)) > tol {
				return false
			}
		}
	}
	return true
}

// IsFinite reports whether every stored entry is a finite number.
func (m *Matrix) IsFinite() bool {
	for _, v := range m.val {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Dense returns a dense copy of the matrix.
func (m *Matrix) Dense() *mat.Dense {
	d := mat.NewDense(max(m.n, 1), max(m.n, 1), nil)
	for i := 0; i < m.n; i++ {
		m.DoRowNonZero(i, func(j int, v float64) { d.Set(i, j, v) })
	}
	return d
}

// SymDense returns a dense symmetric copy of the matrix or ErrAsymmetric
// if entries mirrored across the diagonal differ by more than tol.
func (m *Matrix) SymDense(tol float64) (*mat.SymDense, error) {
	if !m.IsSymmetric(tol) {
		return nil, ErrAsymmetric
	}
	s := mat.NewSymDense(max(m.n, 1), nil)
	for i := 0; i < m.n; i++ {
		m.DoRowNonZero(i, func(j int, v float64) {
			if j >= i {
				s.SetSym(i, j, v)
			}
		})
	}
	return s, nil
}
