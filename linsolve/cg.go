package linsolve

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Preconditioner selects the preconditioner applied inside ConjugateGradient.
type Preconditioner int

const (
	// NoPreconditioner runs plain conjugate gradient.
	NoPreconditioner Preconditioner = iota
	// Jacobi scales the residual by the inverse diagonal.
	Jacobi
)

// String returns the config name of the preconditioner.
func (p Preconditioner) String() string {
	switch p {
	case NoPreconditioner:
		return "none"
	case Jacobi:
		return "jacobi"
	default:
		return fmt.Sprintf("Preconditioner(%d)", int(p))
	}
}

// ParsePreconditioner maps a config name to a Preconditioner.
func ParsePreconditioner(name string) (Preconditioner, error) {
	switch name {
	case "none", "":
		return NoPreconditioner, nil
	case "jacobi":
		return Jacobi, nil
	default:
		return NoPreconditioner, fmt.Errorf("unknown preconditioner %q", name)
	}
}

// Options controls a ConjugateGradient solve.
type Options struct {
	MaxIterations  int
	Tolerance      float64 // Relative residual ||b - Ax|| / ||b||
	Preconditioner Preconditioner
}

// DefaultOptions returns options suitable for pressure solves.
func DefaultOptions() Options {
	return Options{
		MaxIterations:  200,
		Tolerance:      1e-6,
		Preconditioner: Jacobi,
	}
}

// Result reports the outcome of a solve.
type Result struct {
	Iterations int
	Residual   float64 // Final relative residual
	Converged  bool
}

// ConjugateGradient solves a x = b for symmetric positive (semi-)definite a.
// x holds the initial guess on entry and the last iterate on return, whether
// or not the solve converged. Singular systems converge when b lies in the
// range of a.
func ConjugateGradient(a *SymMatrix, b, x []float64, opts Options) Result {
	n := a.Dim()
	if len(b) != n || len(x) != n {
		panic(fmt.Sprintf("linsolve: dimension mismatch: matrix %d, b %d, x %d", n, len(b), len(x)))
	}
	if n == 0 {
		return Result{Converged: true}
	}
	if opts.MaxIterations < 1 {
		opts.MaxIterations = n
	}

	bNorm := floats.Norm(b, 2)
	if bNorm == 0 {
		for i := range x {
			x[i] = 0
		}
		return Result{Converged: true}
	}

	var invDiag []float64
	if opts.Preconditioner == Jacobi {
		invDiag = make([]float64, n)
		for i := range invDiag {
			if d := a.Diag(i); d > 0 {
				invDiag[i] = 1 / d
			} else {
				invDiag[i] = 1
			}
		}
	}
	precondition := func(dst, r []float64) {
		if invDiag == nil {
			copy(dst, r)
			return
		}
		floats.MulTo(dst, invDiag, r)
	}

	r := make([]float64, n)
	z := make([]float64, n)
	p := make([]float64, n)
	ap := make([]float64, n)

	// r = b - A x
	a.MulVecTo(r, x)
	floats.SubTo(r, b, r)

	residual := floats.Norm(r, 2) / bNorm
	if residual <= opts.Tolerance {
		return Result{Residual: residual, Converged: true}
	}

	precondition(z, r)
	copy(p, z)
	rz := floats.Dot(r, z)

	for iter := 1; iter <= opts.MaxIterations; iter++ {
		a.MulVecTo(ap, p)
		pAp := floats.Dot(p, ap)
		if pAp <= 0 || math.IsNaN(pAp) {
			// Search direction fell into the null space; nothing more to gain.
			return Result{Iterations: iter - 1, Residual: residual}
		}
		alpha := rz / pAp
		floats.AddScaled(x, alpha, p)
		floats.AddScaled(r, -alpha, ap)

		residual = floats.Norm(r, 2) / bNorm
		if residual <= opts.Tolerance {
			return Result{Iterations: iter, Residual: residual, Converged: true}
		}

		precondition(z, r)
		rzNext := floats.Dot(r, z)
		beta := rzNext / rz
		rz = rzNext
		// p = z + beta p
		floats.AddScaledTo(p, z, beta, p)
	}

	return Result{Iterations: opts.MaxIterations, Residual: residual}
}
