// Package linsolve provides a small symmetric sparse matrix and a
// preconditioned conjugate gradient solver for pressure systems.
package linsolve

import "fmt"

// entry is one stored off-diagonal coefficient.
type entry struct {
	col int
	val float64
}

// SymMatrix is a symmetric sparse matrix. The diagonal is dense; each row keeps
// its off-diagonal entries in insertion order and both triangles are stored so
// a row can be walked without a transpose lookup.
type SymMatrix struct {
	n    int
	diag []float64
	off  [][]entry
}

// NewSymMatrix creates an n×n zero matrix.
func NewSymMatrix(n int) *SymMatrix {
	if n < 0 {
		panic(fmt.Sprintf("linsolve: negative dimension %d", n))
	}
	return &SymMatrix{
		n:    n,
		diag: make([]float64, n),
		off:  make([][]entry, n),
	}
}

// Dim returns the matrix dimension.
func (m *SymMatrix) Dim() int { return m.n }

// AddDiag adds v to the diagonal element (i, i).
func (m *SymMatrix) AddDiag(i int, v float64) {
	m.diag[i] += v
}

// AddSym adds v to both (i, j) and (j, i). i == j is treated as a diagonal update.
func (m *SymMatrix) AddSym(i, j int, v float64) {
	if i == j {
		m.diag[i] += v
		return
	}
	m.addOff(i, j, v)
	m.addOff(j, i, v)
}

func (m *SymMatrix) addOff(i, j int, v float64) {
	row := m.off[i]
	for k := range row {
		if row[k].col == j {
			row[k].val += v
			return
		}
	}
	m.off[i] = append(row, entry{col: j, val: v})
}

// Diag returns the diagonal element (i, i).
func (m *SymMatrix) Diag(i int) float64 { return m.diag[i] }

// At returns element (i, j).
func (m *SymMatrix) At(i, j int) float64 {
	if i == j {
		return m.diag[i]
	}
	for _, e := range m.off[i] {
		if e.col == j {
			return e.val
		}
	}
	return 0
}

// NonZeros returns the number of stored entries, counting both triangles.
func (m *SymMatrix) NonZeros() int {
	nnz := 0
	for i := 0; i < m.n; i++ {
		if m.diag[i] != 0 {
			nnz++
		}
		nnz += len(m.off[i])
	}
	return nnz
}

// MulVecTo computes dst = m * x. dst and x must not alias.
func (m *SymMatrix) MulVecTo(dst, x []float64) {
	if len(dst) != m.n || len(x) != m.n {
		panic(fmt.Sprintf("linsolve: dimension mismatch: matrix %d, dst %d, x %d", m.n, len(dst), len(x)))
	}
	for i := 0; i < m.n; i++ {
		sum := m.diag[i] * x[i]
		for _, e := range m.off[i] {
			sum += e.val * x[e.col]
		}
		dst[i] = sum
	}
}
